package limits

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/lyssareba/flika-app-sub001/internal/http/middlewarectx"
	"github.com/lyssareba/flika-app-sub001/internal/lib/sl"
	"github.com/lyssareba/flika-app-sub001/internal/models"
	accessservice "github.com/lyssareba/flika-app-sub001/internal/services/access"
)

// MockService реализует интерфейс limits.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Limits(ctx context.Context, platform, userID string) (accessservice.LimitsReport, error) {
	args := m.Called(ctx, platform, userID)
	return args.Get(0).(accessservice.LimitsReport), args.Error(1)
}

func TestLimitsHandler(t *testing.T) {
	freeAtLimit := accessservice.LimitsReport{
		Limits:         models.FeatureLimits{MaxActiveProspects: 2, MaxArchivedProspects: 2, MaxDatesPerProspect: 2},
		Counts:         models.ProspectCounts{Active: 2, Archived: 0},
		CanAddProspect: false,
		CanArchiveMore: true,
	}

	tests := []struct {
		name           string
		userID         string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   []string
	}{
		{
			name:   "free пользователь на лимите",
			userID: "u1",
			setupMock: func(m *MockService) {
				m.On("Limits", mock.Anything, "android", "u1").Return(freeAtLimit, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   []string{`"can_add_prospect":false`, `"max_active_prospects":2`, `"can_archive_more":true`},
		},
		{
			name:           "нет пользователя в контексте",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   []string{`"error":"unauthorized"`},
		},
		{
			name:   "ошибка хранилища",
			userID: "u1",
			setupMock: func(m *MockService) {
				m.On("Limits", mock.Anything, "android", "u1").
					Return(accessservice.LimitsReport{}, errors.New("db down"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   []string{`"error":"could not get limits"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)
			handler := New(sl.Discard(), mockService)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/limits", nil)
			if tt.userID != "" {
				req = req.WithContext(middlewarectx.WithIdentity(req.Context(), tt.userID, "android"))
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			for _, part := range tt.expectedBody {
				assert.True(t, strings.Contains(w.Body.String(), part),
					"response body should contain %s, got %s", part, w.Body.String())
			}
			mockService.AssertExpectations(t)
		})
	}
}

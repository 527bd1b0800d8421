package promptshown

import (
	"bytes"
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
)

// MockService реализует интерфейс promptshown.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) RecordShown(ctx context.Context, userID, key string) error {
	args := m.Called(ctx, userID, key)
	return args.Error(0)
}

func TestShownHandler(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		userID         string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:   "показ записан",
			body:   `{"dismissal_key":"general_tip"}`,
			userID: "u1",
			setupMock: func(m *MockService) {
				m.On("RecordShown", mock.Anything, "u1", "general_tip").Return(nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"dismissal_key":"general_tip"`,
		},
		{
			name:           "некорректный JSON",
			body:           `{`,
			userID:         "u1",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"error":"invalid request body"`,
		},
		{
			name:           "пустой ключ",
			body:           `{"dismissal_key":""}`,
			userID:         "u1",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `field DismissalKey is a required field`,
		},
		{
			name:           "без пользователя",
			body:           `{"dismissal_key":"general_tip"}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `"error":"unauthorized"`,
		},
		{
			name:   "ошибка сервиса",
			body:   `{"dismissal_key":"general_tip"}`,
			userID: "u1",
			setupMock: func(m *MockService) {
				m.On("RecordShown", mock.Anything, "u1", "general_tip").Return(errors.New("boom"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `"error":"could not record shown prompt"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)
			handler := New(sl.Discard(), mockService)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/prompts/shown", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			if tt.userID != "" {
				req = req.WithContext(middlewarectx.WithIdentity(req.Context(), tt.userID, "ios"))
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())
			mockService.AssertExpectations(t)
		})
	}
}

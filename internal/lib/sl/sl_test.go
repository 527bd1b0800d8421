package sl

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErr_ReturnsCorrectAttr(t *testing.T) {
	err := errors.New("something went wrong")
	attr := Err(err)

	assert.Equal(t, "error", attr.Key)
	assert.Equal(t, slog.StringValue("something went wrong"), attr.Value)
}

func TestErr_NilError(t *testing.T) {
	assert.NotPanics(t, func() {
		attr := Err(nil)
		assert.Equal(t, "", attr.Value.String())
	})
}

func TestNew_LevelsByEnv(t *testing.T) {
	tests := []struct {
		env       string
		wantDebug bool
		wantJSON  bool
	}{
		{env: "local", wantDebug: true},
		{env: "dev", wantDebug: true, wantJSON: true},
		{env: "prod", wantJSON: true},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			var buf bytes.Buffer
			log := newWithWriter(tt.env, &buf)

			assert.Equal(t, tt.wantDebug, log.Enabled(context.Background(), slog.LevelDebug))

			log.Info("hello", Op("test.op"))
			if tt.wantJSON {
				assert.Contains(t, buf.String(), `"op":"test.op"`)
			} else {
				assert.Contains(t, buf.String(), "op=test.op")
			}
		})
	}
}

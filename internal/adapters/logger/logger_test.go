package logger_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/ferry/internal/adapters/logger"
	"go.trai.ch/ferry/internal/core/domain"
	"go.trai.ch/zerr"
)

// newTestLogger creates a logger writing to a buffer without ANSI escape codes.
func newTestLogger(t *testing.T) (*logger.Logger, *bytes.Buffer) {
	t.Helper()
	t.Setenv("NO_COLOR", "1")

	buf := &bytes.Buffer{}
	lg := logger.New().(*logger.Logger)
	lg.SetOutput(buf)
	return lg, buf
}

func TestLogger_Info(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.Info("created rust-binary -> jniLibs/arm64-v8a/libfungi.so (xxhash ef46db3751d8)")

	g := goldie.New(t)
	g.Assert(t, "info_basic", buf.Bytes())
}

func TestLogger_Warn(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.Warn("no artifacts declared")

	g := goldie.New(t)
	g.Assert(t, "warn_basic", buf.Bytes())
}

func TestLogger_Error(t *testing.T) {
	lg, buf := newTestLogger(t)

	err := zerr.With(
		zerr.With(zerr.Wrap(domain.ErrMissingSource, "failed to sync artifact rust-binary"),
			"source", "target/release/fungi"),
		"remediation", "cargo ndk -P 24 -t arm64-v8a build --bin fungi --release",
	)
	lg.Error(err)

	g := goldie.New(t)
	g.Assert(t, "error_missing_source", buf.Bytes())
}

func TestLogger_ErrorNil(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.Error(nil)
	assert.Empty(t, buf.String())
}

func TestLogger_JSON(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.SetJSON(true)

	lg.Error(errors.New("boom"))

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "ERROR", record["level"])
	assert.Equal(t, "operation failed", record["msg"])
	assert.Equal(t, "boom", record["error"])
}

func TestLogger_SetOutputKeepsJSONMode(t *testing.T) {
	lg, _ := newTestLogger(t)
	lg.SetJSON(true)

	buf := &bytes.Buffer{}
	lg.SetOutput(buf)
	lg.Info("hello")

	assert.True(t, json.Valid(bytes.TrimSpace(buf.Bytes())))
}

func TestNewFromEnv(t *testing.T) {
	tests := []struct {
		name     string
		format   string
		wantJSON bool
	}{
		{"unset", "", false},
		{"json", "json", true},
		{"json uppercase", " JSON ", true},
		{"unknown", "logfmt", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("NO_COLOR", "1")
			lg := logger.NewFromEnv(func(key string) string {
				if key == logger.FormatEnv {
					return tt.format
				}
				return ""
			})
			buf := &bytes.Buffer{}
			lg.SetOutput(buf)

			lg.Info("created lib")
			assert.Equal(t, tt.wantJSON, json.Valid(bytes.TrimSpace(buf.Bytes())))
		})
	}
}

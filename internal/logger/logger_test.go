package logger

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type kindErr struct{ expected bool }

func (e kindErr) Error() string  { return "kind error" }
func (e kindErr) Expected() bool { return e.expected }

func TestContextRequestID(t *testing.T) {
	var buf bytes.Buffer
	InitializeWithWriter("debug", "json", &buf)
	defer Initialize("info", "text")

	ctx := ContextWithRequestID(context.Background(), "req-123")
	assert.Equal(t, "req-123", RequestIDFromContext(ctx))
	assert.Equal(t, "", RequestIDFromContext(context.Background()))

	InfoContext(ctx, "hello", "k", "v")
	assert.Contains(t, buf.String(), `"request_id":"req-123"`)
	assert.Contains(t, buf.String(), `"k":"v"`)
}

func TestExitMethodWithErrorLevel(t *testing.T) {
	var buf bytes.Buffer
	InitializeWithWriter("info", "json", &buf)
	defer Initialize("info", "text")

	ExitMethodWithError("svc.Op", kindErr{expected: true})
	assert.Contains(t, buf.String(), `"level":"INFO"`)

	buf.Reset()
	ExitMethodWithError("svc.Op", errors.New("boom"))
	assert.Contains(t, buf.String(), `"level":"ERROR"`)
}

func TestParseLevel(t *testing.T) {
	var buf bytes.Buffer
	InitializeWithWriter("warn", "text", &buf)
	defer Initialize("info", "text")

	Info("hidden")
	Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_TextAddsRequestID(t *testing.T) {
	var buf bytes.Buffer
	l, c, err := New(Options{Service: "test", Writer: &buf})
	require.NoError(t, err)
	defer c.Close()

	l.InfoContext(WithRequestID(context.Background(), "req-1"), "hello")
	l.Info("plain")
	out := buf.String()
	assert.Contains(t, out, "request_id=req-1")
	assert.Contains(t, out, "service=test")
	assert.Equal(t, 1, strings.Count(out, "request_id"))
}

func TestNew_FileIsJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")
	l, c, err := New(Options{File: path, Level: "debug"})
	require.NoError(t, err)
	l.Debug("tui started", "view", "list")
	require.NoError(t, c.Close())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	var rec map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(b), &rec))
	assert.Equal(t, "tui started", rec["msg"])
	assert.Equal(t, "list", rec["view"])
}

func TestParseLevel(t *testing.T) {
	_, err := ParseLevel("loud")
	assert.Error(t, err)
	lvl, err := ParseLevel("WARN")
	require.NoError(t, err)
	assert.Equal(t, "WARN", lvl.String())
}

package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_KeepsOrderAndLevel(t *testing.T) {
	var r Recorder
	Success(&r, "saved")
	Error(&r, "failed")

	got := r.Notices()
	require.Len(t, got, 2)
	assert.Equal(t, LevelSuccess, got[0].Level)
	assert.Equal(t, "failed", got[1].Message)

	last, ok := r.Last()
	require.True(t, ok)
	assert.Equal(t, LevelError, last.Level)

	r.Reset()
	_, ok = r.Last()
	assert.False(t, ok)
}

func TestNotice_Expired(t *testing.T) {
	at := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	n := Notice{At: at}
	assert.False(t, n.Expired(at.Add(Lifetime-time.Millisecond)))
	assert.True(t, n.Expired(at.Add(Lifetime)))
}

func TestSend_NilNotifierIsNoop(t *testing.T) {
	assert.NotPanics(t, func() { Info(nil, "x") })
}

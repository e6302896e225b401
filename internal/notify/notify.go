// Package notify carries short-lived user-facing notices (toasts) and
// confirmation prompts between view-state controllers and the surface that
// renders them.
package notify

import (
	"sync"
	"time"
)

// Lifetime is how long a notice stays visible.
const Lifetime = 4 * time.Second

type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelInfo    Level = "info"
)

type Notice struct {
	Level   Level
	Message string
	At      time.Time
}

// Expired reports whether the notice has outlived Lifetime at now.
func (n Notice) Expired(now time.Time) bool {
	return now.Sub(n.At) >= Lifetime
}

type Notifier interface {
	Notify(n Notice)
}

// Func adapts a function to Notifier.
type Func func(n Notice)

func (f Func) Notify(n Notice) { f(n) }

func Success(n Notifier, msg string) { send(n, LevelSuccess, msg) }
func Error(n Notifier, msg string) { send(n, LevelError, msg) }
func Info(n Notifier, msg string) { send(n, LevelInfo, msg) }

func send(n Notifier, level Level, msg string) {
	if n == nil {
		return
	}
	n.Notify(Notice{Level: level, Message: msg, At: time.Now()})
}

// Recorder keeps every notice it receives; safe for concurrent use.
type Recorder struct {
	mu      sync.Mutex
	notices []Notice
}

func (r *Recorder) Notify(n Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

func (r *Recorder) Notices() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notice(nil), r.notices...)
}

func (r *Recorder) Last() (Notice, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notices) == 0 {
		return Notice{}, false
	}
	return r.notices[len(r.notices)-1], true
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = nil
}

// Drain returns and clears the recorded notices.
func (r *Recorder) Drain() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.notices
	r.notices = nil
	return out
}

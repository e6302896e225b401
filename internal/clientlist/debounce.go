package clientlist

import "sync"

// Debouncer tags keystrokes so that only the newest pending timer fires.
// Each Bump restarts the quiet period; Cancel drops whatever is pending.
type Debouncer struct {
	mu  sync.Mutex
	seq uint64
}

func (d *Debouncer) Bump() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seq++
	return d.seq
}

func (d *Debouncer) Cancel() { d.Bump() }

// Due reports whether the timer tagged tag is still the newest one.
func (d *Debouncer) Due(tag uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return tag == d.seq
}

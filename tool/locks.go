package tool

import "sync"

// docLocks serializes mutations per document. Handlers that rewrite a
// document acquire its lock for the whole read-modify-save cycle so two
// concurrent edits cannot interleave their saves.
type docLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newDocLocks() *docLocks {
	return &docLocks{locks: make(map[string]*sync.Mutex)}
}

// acquire locks the named document and returns its unlock func.
func (d *docLocks) acquire(name string) func() {
	d.mu.Lock()
	m, ok := d.locks[name]
	if !ok {
		m = &sync.Mutex{}
		d.locks[name] = m
	}
	d.mu.Unlock()

	m.Lock()
	return m.Unlock
}

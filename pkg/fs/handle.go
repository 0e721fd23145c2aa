package fs

import (
	"os"
	"sync"
)

// HandleID is an opaque identifier for an open file or directory stream.
// A handle exists exactly between the open-class call that created it
// and the release-class call that destroyed it; ids are never reused
// within a process lifetime.
type HandleID uint64

// HandleTable correlates handle ids with the open OS resources backing
// them. It is safe for concurrent use, but it does not police call
// ordering: issuing operations against a released id is a caller bug and
// surfaces as ErrBadHandle.
type HandleTable struct {
	mu   sync.Mutex
	next HandleID
	open map[HandleID]*os.File
}

// NewHandleTable creates an empty handle table.
func NewHandleTable() *HandleTable {
	return &HandleTable{
		open: make(map[HandleID]*os.File),
	}
}

// Add registers an open resource and returns its new handle id.
func (t *HandleTable) Add(f *os.File) HandleID {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.next++
	id := t.next
	t.open[id] = f
	return id
}

// Get returns the resource for an id, or false if the id is not open.
func (t *HandleTable) Get(id HandleID) (*os.File, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	f, ok := t.open[id]
	return f, ok
}

// Remove forgets an id and returns its resource for closing. The id is
// dead after this call regardless of the second return value.
func (t *HandleTable) Remove(id HandleID) (*os.File, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	f, ok := t.open[id]
	if ok {
		delete(t.open, id)
	}
	return f, ok
}

// Len returns the number of currently open handles.
func (t *HandleTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return len(t.open)
}

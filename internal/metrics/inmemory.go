package metrics

import "sync/atomic"

// Snapshot captures current in-memory counters.
type Snapshot struct {
	UserSignups  uint64
	UserLogins   uint64
	NotesCreated uint64
	NotesUpdated uint64
	NotesDeleted uint64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	userSignups  uint64
	userLogins   uint64
	notesCreated uint64
	notesUpdated uint64
	notesDeleted uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		UserSignups:  atomic.LoadUint64(&m.userSignups),
		UserLogins:   atomic.LoadUint64(&m.userLogins),
		NotesCreated: atomic.LoadUint64(&m.notesCreated),
		NotesUpdated: atomic.LoadUint64(&m.notesUpdated),
		NotesDeleted: atomic.LoadUint64(&m.notesDeleted),
	}
}

// IncUserSignup increments the signup counter.
func (m *InMemoryRecorder) IncUserSignup() {
	atomic.AddUint64(&m.userSignups, 1)
}

// IncUserLogin increments the login counter.
func (m *InMemoryRecorder) IncUserLogin() {
	atomic.AddUint64(&m.userLogins, 1)
}

// IncNoteCreated increments the note created counter.
func (m *InMemoryRecorder) IncNoteCreated() {
	atomic.AddUint64(&m.notesCreated, 1)
}

// IncNoteUpdated increments the note updated counter.
func (m *InMemoryRecorder) IncNoteUpdated() {
	atomic.AddUint64(&m.notesUpdated, 1)
}

// IncNoteDeleted increments the note deleted counter.
func (m *InMemoryRecorder) IncNoteDeleted() {
	atomic.AddUint64(&m.notesDeleted, 1)
}

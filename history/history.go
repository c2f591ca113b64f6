// Package history keeps undo and redo stacks of whole-state snapshots.
//
// Snapshots are opaque byte slices (serialized canvases in ggedit). Every
// Save records the state before a change; Undo and Redo trade the current
// state for the neighbor on the other stack.
package history

import (
	"slices"
	"sync"
)

// Record is one saved state together with the action that followed it.
type Record struct {
	// Action describes the change made after this state was saved,
	// for display.
	Action string

	// Data is the snapshot.
	Data []byte
}

// Stack is an undo/redo manager. The zero value is ready to use and has
// no limit. Stack is safe for concurrent use.
type Stack struct {
	mu    sync.Mutex
	undo  []Record
	redo  []Record
	limit int
}

// New returns a stack that keeps at most limit undo records; the oldest
// are dropped first. A limit <= 0 means unlimited.
func New(limit int) *Stack {
	return &Stack{limit: max(limit, 0)}
}

// Save pushes current onto the undo stack and clears the redo stack.
func (s *Stack) Save(action string, current []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.undo = append(s.undo, Record{Action: action, Data: slices.Clone(current)})
	if s.limit > 0 && len(s.undo) > s.limit {
		s.undo = slices.Delete(s.undo, 0, len(s.undo)-s.limit)
	}
	s.redo = nil
}

// Undo pops the most recent undo record and pushes current onto the redo
// stack. It returns false and leaves both stacks unchanged when there is
// nothing to undo.
func (s *Stack) Undo(current []byte) (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.undo) == 0 {
		return Record{}, false
	}
	prev := s.undo[len(s.undo)-1]
	s.undo = s.undo[:len(s.undo)-1]
	s.redo = append(s.redo, Record{Action: prev.Action, Data: slices.Clone(current)})
	return prev, true
}

// Redo is the inverse of Undo.
func (s *Stack) Redo(current []byte) (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.redo) == 0 {
		return Record{}, false
	}
	next := s.redo[len(s.redo)-1]
	s.redo = s.redo[:len(s.redo)-1]
	s.undo = append(s.undo, Record{Action: next.Action, Data: slices.Clone(current)})
	return next, true
}

// CanUndo reports whether Undo would succeed.
func (s *Stack) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.undo) > 0
}

// CanRedo reports whether Redo would succeed.
func (s *Stack) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.redo) > 0
}

// Len returns the number of undo and redo records.
func (s *Stack) Len() (undo, redo int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.undo), len(s.redo)
}

// Actions returns the action names on the undo stack, oldest first.
func (s *Stack) Actions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.undo))
	for i, r := range s.undo {
		out[i] = r.Action
	}
	return out
}

// Reset drops all records.
func (s *Stack) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.undo, s.redo = nil, nil
}

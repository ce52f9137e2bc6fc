package evaluator

import "sync"

// scopeEntry is a binding's current value together with the location it was
// declared at, used to render AlreadyInScope with the prior location
// (spec.md invariant 2).
type scopeEntry struct {
	Value    SourcedValue
	DeclLine int
	DeclCol  int
}

// Scope is one lexical frame: an ordered name -> value mapping. Frames are
// shared, mutex-guarded handles (spec.md §4.2) — a closure that captured a
// ScopeStack observes later mutations made through any other reference to
// the same frame, which is how scenario 5 (closures capture by reference)
// works.
type Scope struct {
	mu    sync.Mutex
	names map[string]scopeEntry
}

func newScope() *Scope {
	return &Scope{names: make(map[string]scopeEntry)}
}

// ScopeStack is an ordered sequence of shared Scope frames (spec.md §4.2).
// Push returns a new stack value (the slice header) that shares every prior
// frame pointer and appends one fresh frame — the stack itself behaves
// value-like while each frame remains shared.
type ScopeStack struct {
	frames []*Scope
}

// NewScopeStack returns a stack with a single, empty top-level frame.
func NewScopeStack() *ScopeStack {
	return &ScopeStack{frames: []*Scope{newScope()}}
}

// Push returns a new ScopeStack with a fresh frame on top, sharing all
// prior frames with the receiver.
func (s *ScopeStack) Push() *ScopeStack {
	frames := make([]*Scope, len(s.frames)+1)
	copy(frames, s.frames)
	frames[len(s.frames)] = newScope()
	return &ScopeStack{frames: frames}
}

// Declare inserts name into the topmost frame. It fails with the prior
// declaration's location if name already exists there (spec.md invariant
// 2); underscore is handled by callers before reaching here.
func (s *ScopeStack) Declare(name string, line, col int, value SourcedValue) error {
	top := s.frames[len(s.frames)-1]
	top.mu.Lock()
	defer top.mu.Unlock()
	if prev, ok := top.names[name]; ok {
		return errAlreadyInScope(name, prev.DeclLine, prev.DeclCol)
	}
	top.names[name] = scopeEntry{Value: value, DeclLine: line, DeclCol: col}
	return nil
}

// Get searches frames from top to bottom.
func (s *ScopeStack) Get(name string) (SourcedValue, bool) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		f := s.frames[i]
		f.mu.Lock()
		entry, ok := f.names[name]
		f.mu.Unlock()
		if ok {
			return entry.Value, true
		}
	}
	return SourcedValue{}, false
}

// Assign finds the innermost frame containing name and overwrites its
// value there, applying the copy policy (CopyForStore) spec.md §4.2
// describes: scalars end up independent, containers remain shared by
// handle. Returns false if name isn't bound anywhere in the stack.
func (s *ScopeStack) Assign(name string, value SourcedValue) bool {
	for i := len(s.frames) - 1; i >= 0; i-- {
		f := s.frames[i]
		f.mu.Lock()
		entry, ok := f.names[name]
		if ok {
			entry.Value = SourcedValue{V: CopyForStore(value.V), Source: value.Source}
			f.names[name] = entry
		}
		f.mu.Unlock()
		if ok {
			return true
		}
	}
	return false
}

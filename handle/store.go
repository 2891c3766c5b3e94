package handle

import (
	"sync"
)

// Store is a generation-checked allocator of records of one kind.
// Freed slots are reused with a bumped generation so stale handles fail lookup.
type Store[T any] struct {
	entries   []entry[T]
	freeList  []uint32
	observers []Observer
	mu        sync.RWMutex
	obsMu     sync.RWMutex
	kind      Kind
}

type entry[T any] struct {
	value      T
	generation uint32
	valid      bool
}

// NewStore creates an empty store issuing handles tagged with kind.
func NewStore[T any](kind Kind) *Store[T] {
	return &Store[T]{
		kind:     kind,
		entries:  make([]entry[T], 0, 16),
		freeList: make([]uint32, 0, 8),
	}
}

// Kind returns the tag of handles issued by this store.
func (s *Store[T]) Kind() Kind {
	return s.kind
}

// Alloc stores value and returns its handle.
func (s *Store[T]) Alloc(value T) Handle {
	s.mu.Lock()
	var h Handle
	if n := len(s.freeList); n > 0 {
		idx := s.freeList[n-1]
		s.freeList = s.freeList[:n-1]
		e := &s.entries[idx]
		e.generation = nextGeneration(e.generation)
		e.value = value
		e.valid = true
		h = makeHandle(s.kind, e.generation, idx)
	} else {
		s.entries = append(s.entries, entry[T]{value: value, generation: 1, valid: true})
		h = makeHandle(s.kind, 1, uint32(len(s.entries)-1))
	}
	s.mu.Unlock()

	s.notify(Event{Type: EventAllocated, Handle: h, Value: value})
	return h
}

func nextGeneration(g uint32) uint32 {
	g = (g + 1) & generationMask
	if g == 0 {
		g = 1
	}
	return g
}

// lookup must be called with s.mu held.
func (s *Store[T]) lookup(h Handle) (*entry[T], bool) {
	if h == 0 || h.Kind() != s.kind {
		return nil, false
	}
	idx := h.Index()
	if int(idx) >= len(s.entries) {
		return nil, false
	}
	e := &s.entries[idx]
	if !e.valid || e.generation != h.Generation() {
		return nil, false
	}
	return e, true
}

// Get retrieves a record by handle.
func (s *Store[T]) Get(h Handle) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.lookup(h)
	if !ok {
		var zero T
		return zero, false
	}
	return e.value, true
}

// Owns reports whether h refers to a live record of this store.
func (s *Store[T]) Owns(h Handle) bool {
	_, ok := s.Get(h)
	return ok
}

// Free removes a record and calls its Drop method if it has one.
func (s *Store[T]) Free(h Handle) (T, bool) {
	s.mu.Lock()
	e, ok := s.lookup(h)
	if !ok {
		s.mu.Unlock()
		var zero T
		return zero, false
	}
	value := e.value
	var zero T
	e.value = zero
	e.valid = false
	s.freeList = append(s.freeList, h.Index())
	s.mu.Unlock()

	if d, ok := any(value).(Dropper); ok {
		d.Drop()
	}
	s.notify(Event{Type: EventFreed, Handle: h, Value: value})
	return value, true
}

// Each iterates over live records until fn returns false. Order is unspecified.
func (s *Store[T]) Each(fn func(Handle, T) bool) {
	for _, h := range s.Handles() {
		v, ok := s.Get(h)
		if !ok {
			continue
		}
		if !fn(h, v) {
			return
		}
	}
}

// Find returns the first record matching pred.
func (s *Store[T]) Find(pred func(T) bool) (Handle, T, bool) {
	var (
		found Handle
		value T
	)
	s.Each(func(h Handle, v T) bool {
		if pred(v) {
			found, value = h, v
			return false
		}
		return true
	})
	return found, value, found != 0
}

// Handles returns a snapshot of live handles.
func (s *Store[T]) Handles() []Handle {
	s.mu.RLock()
	defer s.mu.RUnlock()

	handles := make([]Handle, 0, len(s.entries)-len(s.freeList))
	for i, e := range s.entries {
		if e.valid {
			handles = append(handles, makeHandle(s.kind, e.generation, uint32(i)))
		}
	}
	return handles
}

// Len returns the number of live records.
func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries) - len(s.freeList)
}

// Clear frees all records.
func (s *Store[T]) Clear() {
	// Collect handles first to avoid holding the lock during Free
	for _, h := range s.Handles() {
		s.Free(h)
	}
}

// Subscribe adds an observer for lifecycle events.
func (s *Store[T]) Subscribe(o Observer) {
	s.obsMu.Lock()
	defer s.obsMu.Unlock()
	s.observers = append(s.observers, o)
}

// Unsubscribe removes an observer.
func (s *Store[T]) Unsubscribe(o Observer) {
	s.obsMu.Lock()
	defer s.obsMu.Unlock()
	for i, obs := range s.observers {
		if obs == o {
			s.observers = append(s.observers[:i], s.observers[i+1:]...)
			return
		}
	}
}

func (s *Store[T]) notify(e Event) {
	s.obsMu.RLock()
	defer s.obsMu.RUnlock()
	for _, o := range s.observers {
		o.OnHandleEvent(e)
	}
}

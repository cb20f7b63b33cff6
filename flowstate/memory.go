package flowstate

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps flow states in process memory.
type MemoryStore struct {
	mu     sync.RWMutex
	states map[string]*FlowState
	closed bool
}

// Compile-time interface compliance check.
var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory flow-state store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: make(map[string]*FlowState)}
}

// Save stores a copy of state. An empty id takes state.FlowID, and when
// both are empty a new ID is generated and written back to state.FlowID.
func (s *MemoryStore) Save(_ context.Context, id string, state *FlowState) error {
	if state == nil {
		return ErrInvalidInput
	}
	id = resolveID(id, state)
	if state.StartTime.IsZero() {
		state.StartTime = time.Now()
	}

	cp, err := clone(state)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}
	s.states[id] = cp
	return nil
}

// Load returns a copy of the state stored under id.
func (s *MemoryStore) Load(_ context.Context, id string) (*FlowState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrStoreClosed
	}
	st, ok := s.states[id]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(st)
}

// List returns states ordered by start time, newest first.
func (s *MemoryStore) List(_ context.Context, query Query) (*ListResult, error) {
	offset, limit, err := page(query)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return nil, ErrStoreClosed
	}
	all := make([]*FlowState, 0, len(s.states))
	for _, st := range s.states {
		all = append(all, st)
	}
	s.mu.RUnlock()

	slices.SortFunc(all, func(a, b *FlowState) int {
		if c := b.StartTime.Compare(a.StartTime); c != 0 {
			return c
		}
		return cmp.Compare(a.FlowID, b.FlowID)
	})

	if offset >= len(all) {
		return &ListResult{FlowStates: []*FlowState{}}, nil
	}
	end := min(offset+limit, len(all))
	out := make([]*FlowState, 0, end-offset)
	for _, st := range all[offset:end] {
		cp, err := clone(st)
		if err != nil {
			return nil, err
		}
		out = append(out, cp)
	}
	return &ListResult{FlowStates: out, ContinuationToken: nextToken(offset, limit, end < len(all))}, nil
}

// Close marks the store closed; later calls fail with ErrStoreClosed.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func resolveID(id string, state *FlowState) string {
	if id == "" {
		id = state.FlowID
	}
	if id == "" {
		id = uuid.New().String()
	}
	if state.FlowID == "" {
		state.FlowID = id
	}
	return id
}

package tracestore

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore keeps traces in process memory. Suitable for development and
// tests.
type MemoryStore struct {
	mu     sync.RWMutex
	traces map[string]*TraceData
}

// Compile-time interface compliance check.
var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory trace store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{traces: make(map[string]*TraceData)}
}

// Save stores or merges a trace. A trace without an ID is given one.
func (s *MemoryStore) Save(_ context.Context, trace *TraceData) error {
	if trace == nil {
		return ErrInvalidInput
	}
	if trace.TraceID == "" {
		trace.TraceID = uuid.New().String()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.traces[trace.TraceID]; ok {
		s.traces[trace.TraceID] = merge(existing, trace)
		return nil
	}
	s.traces[trace.TraceID] = merge(&TraceData{TraceID: trace.TraceID}, trace)
	return nil
}

// Load returns a copy of the trace with the given ID.
func (s *MemoryStore) Load(_ context.Context, traceID string) (*TraceData, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.traces[traceID]
	if !ok {
		return nil, ErrNotFound
	}
	return merge(t, &TraceData{}), nil
}

// List returns traces ordered by start time, newest first.
func (s *MemoryStore) List(_ context.Context, query Query) (*ListResult, error) {
	offset, limit, err := page(query)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	all := make([]*TraceData, 0, len(s.traces))
	for _, t := range s.traces {
		all = append(all, t)
	}
	s.mu.RUnlock()

	slices.SortFunc(all, func(a, b *TraceData) int {
		if c := b.StartTime.Compare(a.StartTime); c != 0 {
			return c
		}
		return cmp.Compare(a.TraceID, b.TraceID)
	})

	if offset >= len(all) {
		return &ListResult{Traces: []*TraceData{}}, nil
	}
	end := min(offset+limit, len(all))
	out := make([]*TraceData, 0, end-offset)
	for _, t := range all[offset:end] {
		out = append(out, merge(t, &TraceData{}))
	}
	return &ListResult{Traces: out, ContinuationToken: nextToken(offset, limit, end < len(all))}, nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }

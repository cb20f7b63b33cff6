package tracestore

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newTrace(id string, start time.Time, spanIDs ...string) *TraceData {
	t := &TraceData{
		TraceID:     id,
		DisplayName: "flow " + id,
		StartTime:   start,
		EndTime:     start.Add(time.Second),
		Spans:       map[string]*SpanData{},
	}
	for _, s := range spanIDs {
		t.Spans[s] = &SpanData{
			SpanID:      s,
			TraceID:     id,
			DisplayName: "span " + s,
			StartTime:   start,
			EndTime:     start.Add(time.Millisecond),
			Attributes:  map[string]any{"flowreg:type": "flow"},
		}
	}
	return t
}

// runStoreContract exercises behavior every Store backend shares.
func runStoreContract(t *testing.T, newStore func(t *testing.T) Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("save and load", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Save(ctx, newTrace("t1", baseTime, "a")))

		got, err := s.Load(ctx, "t1")
		require.NoError(t, err)
		assert.Equal(t, "t1", got.TraceID)
		assert.Equal(t, "flow t1", got.DisplayName)
		assert.True(t, got.StartTime.Equal(baseTime))
		require.Contains(t, got.Spans, "a")
		assert.Equal(t, "span a", got.Spans["a"].DisplayName)
		assert.Equal(t, "flow", got.Spans["a"].Attributes["flowreg:type"])
	})

	t.Run("load missing", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Load(ctx, "nope")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("nil trace", func(t *testing.T) {
		s := newStore(t)
		assert.ErrorIs(t, s.Save(ctx, nil), ErrInvalidInput)
	})

	t.Run("generates id", func(t *testing.T) {
		s := newStore(t)
		tr := newTrace("", baseTime)
		require.NoError(t, s.Save(ctx, tr))
		require.NotEmpty(t, tr.TraceID)

		_, err := s.Load(ctx, tr.TraceID)
		assert.NoError(t, err)
	})

	t.Run("save merges spans", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Save(ctx, newTrace("t1", baseTime, "a")))

		update := &TraceData{
			TraceID: "t1",
			EndTime: baseTime.Add(time.Minute),
			Spans: map[string]*SpanData{
				"b": {SpanID: "b", TraceID: "t1", DisplayName: "span b"},
			},
		}
		require.NoError(t, s.Save(ctx, update))

		got, err := s.Load(ctx, "t1")
		require.NoError(t, err)
		assert.Len(t, got.Spans, 2)
		assert.Equal(t, "flow t1", got.DisplayName)
		assert.True(t, got.EndTime.Equal(baseTime.Add(time.Minute)))
	})

	t.Run("list newest first with paging", func(t *testing.T) {
		s := newStore(t)
		for i := 0; i < 5; i++ {
			id := fmt.Sprintf("t%d", i)
			require.NoError(t, s.Save(ctx, newTrace(id, baseTime.Add(time.Duration(i)*time.Minute))))
		}

		first, err := s.List(ctx, Query{Limit: 2})
		require.NoError(t, err)
		require.Len(t, first.Traces, 2)
		assert.Equal(t, "t4", first.Traces[0].TraceID)
		assert.Equal(t, "t3", first.Traces[1].TraceID)
		require.NotEmpty(t, first.ContinuationToken)

		second, err := s.List(ctx, Query{Limit: 2, ContinuationToken: first.ContinuationToken})
		require.NoError(t, err)
		require.Len(t, second.Traces, 2)
		assert.Equal(t, "t2", second.Traces[0].TraceID)

		last, err := s.List(ctx, Query{Limit: 2, ContinuationToken: second.ContinuationToken})
		require.NoError(t, err)
		require.Len(t, last.Traces, 1)
		assert.Equal(t, "t0", last.Traces[0].TraceID)
		assert.Empty(t, last.ContinuationToken)
	})

	t.Run("list default limit", func(t *testing.T) {
		s := newStore(t)
		for i := 0; i < 12; i++ {
			require.NoError(t, s.Save(ctx, newTrace(fmt.Sprintf("t%02d", i), baseTime.Add(time.Duration(i)*time.Second))))
		}
		res, err := s.List(ctx, Query{})
		require.NoError(t, err)
		assert.Len(t, res.Traces, defaultListLimit)
		assert.Equal(t, "10", res.ContinuationToken)
	})

	t.Run("list past end", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Save(ctx, newTrace("t1", baseTime)))
		res, err := s.List(ctx, Query{ContinuationToken: "50"})
		require.NoError(t, err)
		assert.Empty(t, res.Traces)
		assert.Empty(t, res.ContinuationToken)
	})

	t.Run("list invalid token", func(t *testing.T) {
		s := newStore(t)
		_, err := s.List(ctx, Query{ContinuationToken: "abc"})
		assert.ErrorIs(t, err, ErrInvalidToken)
		_, err = s.List(ctx, Query{ContinuationToken: "-1"})
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestMemoryStore(t *testing.T) {
	runStoreContract(t, func(t *testing.T) Store { return NewMemoryStore() })
}

func TestMemoryStore_LoadReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Save(ctx, newTrace("t1", baseTime, "a")))

	got, err := s.Load(ctx, "t1")
	require.NoError(t, err)
	got.DisplayName = "mutated"
	delete(got.Spans, "a")

	again, err := s.Load(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "flow t1", again.DisplayName)
	assert.Contains(t, again.Spans, "a")
}

func TestMemoryStore_SpansAreNotShared(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	in := newTrace("t1", baseTime, "a")
	in.Spans["a"].Attributes = map[string]any{"k": "v"}
	in.Spans["a"].Status = &SpanStatus{Code: 0}
	require.NoError(t, s.Save(ctx, in))

	// Edits to the saved value do not reach the store.
	in.Spans["a"].DisplayName = "edited"
	in.Spans["a"].Attributes["k"] = "edited"

	loaded, err := s.Load(ctx, "t1")
	require.NoError(t, err)
	loaded.Spans["a"].DisplayName = "edited"
	loaded.Spans["a"].Attributes["k"] = "edited"
	loaded.Spans["a"].Status.Code = 2

	page, err := s.List(ctx, Query{})
	require.NoError(t, err)
	require.Len(t, page.Traces, 1)
	page.Traces[0].Spans["a"].EndTime = time.Time{}

	again, err := s.Load(ctx, "t1")
	require.NoError(t, err)
	span := again.Spans["a"]
	assert.Equal(t, "span a", span.DisplayName)
	assert.Equal(t, "v", span.Attributes["k"])
	assert.Equal(t, 0, span.Status.Code)
	assert.False(t, span.EndTime.IsZero())
}

func TestMemoryStore_ConcurrentSaves(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = s.Save(ctx, &TraceData{
				TraceID: "shared",
				Spans:   map[string]*SpanData{fmt.Sprintf("s%d", i): {SpanID: fmt.Sprintf("s%d", i)}},
			})
		}(i)
	}
	wg.Wait()

	got, err := s.Load(ctx, "shared")
	require.NoError(t, err)
	assert.Len(t, got.Spans, 50)
}

func TestPage(t *testing.T) {
	tests := []struct {
		name       string
		query      Query
		wantOffset int
		wantLimit  int
		wantErr    bool
	}{
		{name: "defaults", query: Query{}, wantOffset: 0, wantLimit: defaultListLimit},
		{name: "explicit", query: Query{Limit: 5, ContinuationToken: "15"}, wantOffset: 15, wantLimit: 5},
		{name: "clamped", query: Query{Limit: 5000}, wantOffset: 0, wantLimit: maxListLimit},
		{name: "bad token", query: Query{ContinuationToken: "x"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			offset, limit, err := page(tt.query)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidToken)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantOffset, offset)
			assert.Equal(t, tt.wantLimit, limit)
		})
	}
}

// Package flowstate defines the flow-state store that a flowreg registry
// hands out per environment.
//
// Supported backends:
// - Memory: for development and tests (default)
// - Redis: for deployments sharing state across processes
package flowstate

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"
)

// Common errors
var (
	ErrNotFound     = errors.New("flow state not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrInvalidToken = errors.New("invalid continuation token")
	ErrStoreClosed  = errors.New("store is closed")
)

const (
	defaultListLimit = 10
	maxListLimit     = 1000
)

// OperationResult is the outcome of a finished flow operation.
type OperationResult struct {
	Response json.RawMessage `json:"response,omitempty"`
	Error    string          `json:"error,omitempty"`
}

// Operation tracks the progress of a flow run.
type Operation struct {
	Name   string           `json:"name"`
	Done   bool             `json:"done"`
	Result *OperationResult `json:"result,omitempty"`
}

// Execution is one attempt at running a flow.
type Execution struct {
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime,omitempty"`
	TraceIDs  []string  `json:"traceIds,omitempty"`
}

// FlowState is the persisted state of one flow instance.
type FlowState struct {
	FlowID     string          `json:"flowId"`
	Name       string          `json:"name,omitempty"`
	StartTime  time.Time       `json:"startTime"`
	Input      json.RawMessage `json:"input,omitempty"`
	Operation  Operation       `json:"operation"`
	Executions []Execution     `json:"executions,omitempty"`
}

// Query selects a page of flow states, newest first.
type Query struct {
	Limit             int    `json:"limit,omitempty"`
	ContinuationToken string `json:"continuationToken,omitempty"`
}

// ListResult is a page of flow states. An empty ContinuationToken marks the
// last page.
type ListResult struct {
	FlowStates        []*FlowState `json:"flowStates"`
	ContinuationToken string       `json:"continuationToken,omitempty"`
}

// Store persists flow states keyed by flow ID.
type Store interface {
	// Save stores state under id, replacing any previous state.
	Save(ctx context.Context, id string, state *FlowState) error
	// Load returns ErrNotFound when id is unknown.
	Load(ctx context.Context, id string) (*FlowState, error)
	List(ctx context.Context, query Query) (*ListResult, error)
	Close() error
}

func page(q Query) (offset, limit int, err error) {
	limit = q.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if q.ContinuationToken != "" {
		offset, err = strconv.Atoi(q.ContinuationToken)
		if err != nil || offset < 0 {
			return 0, 0, ErrInvalidToken
		}
	}
	return offset, limit, nil
}

func nextToken(offset, limit int, more bool) string {
	if !more {
		return ""
	}
	return strconv.Itoa(offset + limit)
}

// clone deep-copies a state through its JSON form.
func clone(s *FlowState) (*FlowState, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	var out FlowState
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

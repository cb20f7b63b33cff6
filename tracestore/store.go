// Package tracestore defines the trace store that a flowreg registry hands
// out per environment, with an in-memory backend for development and a
// GORM-backed SQL backend for deployments.
package tracestore

import (
	"context"
	"errors"
	"maps"
	"strconv"
	"time"
)

// Common errors
var (
	ErrNotFound     = errors.New("trace not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrInvalidToken = errors.New("invalid continuation token")
)

const (
	defaultListLimit = 10
	maxListLimit     = 1000
)

// SpanStatus is the final status of a span.
type SpanStatus struct {
	Code    int    `json:"code"`
	Message string `json:"message,omitempty"`
}

// SpanData is one span of a trace.
type SpanData struct {
	SpanID       string         `json:"spanId"`
	TraceID      string         `json:"traceId"`
	ParentSpanID string         `json:"parentSpanId,omitempty"`
	DisplayName  string         `json:"displayName"`
	StartTime    time.Time      `json:"startTime"`
	EndTime      time.Time      `json:"endTime"`
	Attributes   map[string]any `json:"attributes,omitempty"`
	Status       *SpanStatus    `json:"status,omitempty"`
}

// TraceData is a trace and the spans recorded for it so far.
type TraceData struct {
	TraceID     string               `json:"traceId"`
	DisplayName string               `json:"displayName,omitempty"`
	StartTime   time.Time            `json:"startTime"`
	EndTime     time.Time            `json:"endTime"`
	Spans       map[string]*SpanData `json:"spans"`
}

// Query selects a page of traces, newest first.
type Query struct {
	Limit             int    `json:"limit,omitempty"`
	ContinuationToken string `json:"continuationToken,omitempty"`
}

// ListResult is a page of traces. An empty ContinuationToken marks the last
// page.
type ListResult struct {
	Traces            []*TraceData `json:"traces"`
	ContinuationToken string       `json:"continuationToken,omitempty"`
}

// Store persists traces. Saving a trace that already exists merges the new
// spans into it.
type Store interface {
	Save(ctx context.Context, trace *TraceData) error
	Load(ctx context.Context, traceID string) (*TraceData, error)
	List(ctx context.Context, query Query) (*ListResult, error)
	Close() error
}

// merge folds update into a new trace built from base. Non-zero header
// fields of update win and spans are merged by span ID. The result shares
// no span with either argument.
func merge(base, update *TraceData) *TraceData {
	out := *base
	out.Spans = make(map[string]*SpanData, len(base.Spans)+len(update.Spans))
	for id, sp := range base.Spans {
		out.Spans[id] = cloneSpan(sp)
	}
	for id, sp := range update.Spans {
		out.Spans[id] = cloneSpan(sp)
	}
	if update.DisplayName != "" {
		out.DisplayName = update.DisplayName
	}
	if !update.StartTime.IsZero() {
		out.StartTime = update.StartTime
	}
	if !update.EndTime.IsZero() {
		out.EndTime = update.EndTime
	}
	return &out
}

func cloneSpan(sp *SpanData) *SpanData {
	if sp == nil {
		return nil
	}
	c := *sp
	c.Attributes = maps.Clone(sp.Attributes)
	if sp.Status != nil {
		st := *sp.Status
		c.Status = &st
	}
	return &c
}

// page resolves a query into an offset and a limit.
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

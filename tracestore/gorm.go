package tracestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TraceRecord is the table row of a trace. Spans are kept as a JSON
// document so that merges stay a single-row update.
type TraceRecord struct {
	TraceID     string    `gorm:"primaryKey;size:64"`
	DisplayName string    `gorm:"size:255"`
	StartTime   time.Time `gorm:"index"`
	EndTime     time.Time
	Spans       string `gorm:"type:text"`
	UpdatedAt   time.Time
}

// TableName returns the table the records live in.
func (TraceRecord) TableName() string {
	return "flowreg_traces"
}

// GormStore persists traces in a SQL database through GORM. The database
// handle is owned by the caller.
type GormStore struct {
	db     *gorm.DB
	logger *zap.Logger
}

// Compile-time interface compliance check.
var _ Store = (*GormStore)(nil)

// NewGormStore creates a trace store on db and migrates its table.
func NewGormStore(db *gorm.DB, logger *zap.Logger) (*GormStore, error) {
	if db == nil {
		return nil, fmt.Errorf("db cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := AutoMigrate(db); err != nil {
		return nil, err
	}
	return &GormStore{
		db:     db,
		logger: logger.With(zap.String("component", "trace_store")),
	}, nil
}

// AutoMigrate creates or updates the trace table.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&TraceRecord{}); err != nil {
		return fmt.Errorf("migrate trace table: %w", err)
	}
	return nil
}

// Save stores or merges a trace inside one transaction.
func (s *GormStore) Save(ctx context.Context, trace *TraceData) error {
	if trace == nil {
		return ErrInvalidInput
	}
	if trace.TraceID == "" {
		trace.TraceID = uuid.New().String()
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec TraceRecord
		merged := trace
		err := tx.First(&rec, "trace_id = ?", trace.TraceID).Error
		switch {
		case err == nil:
			existing, err := fromRecord(&rec)
			if err != nil {
				return err
			}
			merged = merge(existing, trace)
		case errors.Is(err, gorm.ErrRecordNotFound):
			merged = merge(&TraceData{TraceID: trace.TraceID}, trace)
		default:
			return fmt.Errorf("load trace %s: %w", trace.TraceID, err)
		}

		next, err := toRecord(merged)
		if err != nil {
			return err
		}
		if err := tx.Save(next).Error; err != nil {
			s.logger.Error("trace save failed", zap.String("trace_id", trace.TraceID), zap.Error(err))
			return fmt.Errorf("save trace %s: %w", trace.TraceID, err)
		}
		return nil
	})
}

// Load returns the trace with the given ID.
func (s *GormStore) Load(ctx context.Context, traceID string) (*TraceData, error) {
	var rec TraceRecord
	err := s.db.WithContext(ctx).First(&rec, "trace_id = ?", traceID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load trace %s: %w", traceID, err)
	}
	return fromRecord(&rec)
}

// List returns traces ordered by start time, newest first.
func (s *GormStore) List(ctx context.Context, query Query) (*ListResult, error) {
	offset, limit, err := page(query)
	if err != nil {
		return nil, err
	}

	var recs []TraceRecord
	err = s.db.WithContext(ctx).
		Order("start_time DESC").Order("trace_id ASC").
		Offset(offset).Limit(limit + 1).
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("list traces: %w", err)
	}

	more := len(recs) > limit
	if more {
		recs = recs[:limit]
	}
	out := make([]*TraceData, 0, len(recs))
	for i := range recs {
		t, err := fromRecord(&recs[i])
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return &ListResult{Traces: out, ContinuationToken: nextToken(offset, limit, more)}, nil
}

// Close is a no-op; the database handle belongs to the caller.
func (s *GormStore) Close() error { return nil }

func toRecord(t *TraceData) (*TraceRecord, error) {
	spans, err := json.Marshal(t.Spans)
	if err != nil {
		return nil, fmt.Errorf("marshal spans: %w", err)
	}
	return &TraceRecord{
		TraceID:     t.TraceID,
		DisplayName: t.DisplayName,
		StartTime:   t.StartTime,
		EndTime:     t.EndTime,
		Spans:       string(spans),
	}, nil
}

func fromRecord(rec *TraceRecord) (*TraceData, error) {
	t := &TraceData{
		TraceID:     rec.TraceID,
		DisplayName: rec.DisplayName,
		StartTime:   rec.StartTime,
		EndTime:     rec.EndTime,
		Spans:       map[string]*SpanData{},
	}
	if rec.Spans != "" {
		if err := json.Unmarshal([]byte(rec.Spans), &t.Spans); err != nil {
			return nil, fmt.Errorf("unmarshal spans of %s: %w", rec.TraceID, err)
		}
	}
	return t, nil
}

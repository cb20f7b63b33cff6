// =============================================================================
// 📦 测试数据工厂 - trace 与 flow state 样例
// =============================================================================
package fixtures

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/BaSui01/flowreg/flowstate"
	"github.com/BaSui01/flowreg/tracestore"
)

// BaseTime 是所有样例数据的起始时间
var BaseTime = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

// =============================================================================
// 🎯 Trace 工厂
// =============================================================================

// Trace 返回一个带 spanCount 个 span 的 trace，开始于 start
func Trace(id string, start time.Time, spanCount int) *tracestore.TraceData {
	spans := make(map[string]*tracestore.SpanData, spanCount)
	for i := range spanCount {
		spanID := fmt.Sprintf("%s-span-%d", id, i)
		span := &tracestore.SpanData{
			SpanID:      spanID,
			TraceID:     id,
			DisplayName: fmt.Sprintf("step-%d", i),
			StartTime:   start.Add(time.Duration(i) * time.Millisecond),
			EndTime:     start.Add(time.Duration(i+1) * time.Millisecond),
			Attributes:  map[string]any{"index": float64(i)},
			Status:      &tracestore.SpanStatus{Code: 0},
		}
		if i > 0 {
			span.ParentSpanID = fmt.Sprintf("%s-span-0", id)
		}
		spans[spanID] = span
	}
	return &tracestore.TraceData{
		TraceID:     id,
		DisplayName: "flow " + id,
		StartTime:   start,
		EndTime:     start.Add(time.Duration(spanCount) * time.Millisecond),
		Spans:       spans,
	}
}

// Traces 返回 n 个开始时间递增一分钟的 trace，id 为 trace-0..trace-(n-1)
func Traces(n int) []*tracestore.TraceData {
	traces := make([]*tracestore.TraceData, n)
	for i := range n {
		traces[i] = Trace(fmt.Sprintf("trace-%d", i), BaseTime.Add(time.Duration(i)*time.Minute), 2)
	}
	return traces
}

// =============================================================================
// 🌊 FlowState 工厂
// =============================================================================

// FlowState 返回一个已完成的 flow state
func FlowState(id string, start time.Time) *flowstate.FlowState {
	return &flowstate.FlowState{
		FlowID:    id,
		Name:      "sample",
		StartTime: start,
		Input:     json.RawMessage(`{"message":"hi"}`),
		Operation: flowstate.Operation{
			Name: id,
			Done: true,
			Result: &flowstate.OperationResult{
				Response: json.RawMessage(`{"message":"hi"}`),
			},
		},
		Executions: []flowstate.Execution{
			{StartTime: start, EndTime: start.Add(time.Second), TraceIDs: []string{"trace-" + id}},
		},
	}
}

// FlowStates 返回 n 个开始时间递增一分钟的 flow state，id 为 flow-0..flow-(n-1)
func FlowStates(n int) []*flowstate.FlowState {
	states := make([]*flowstate.FlowState, n)
	for i := range n {
		states[i] = FlowState(fmt.Sprintf("flow-%d", i), BaseTime.Add(time.Duration(i)*time.Minute))
	}
	return states
}

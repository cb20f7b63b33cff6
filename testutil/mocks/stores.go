// =============================================================================
// 🗄️ MockTraceStore / MockFlowStateStore - 存储模拟实现
// =============================================================================
// 包装内存存储，支持错误注入与调用记录
//
// 使用方法:
//
//	store := mocks.NewMockTraceStore().WithLoadError(errBoom)
//	reg.RegisterTraceStore("dev", store.Provider())
// =============================================================================
package mocks

import (
	"context"
	"sync"

	"github.com/BaSui01/flowreg/flowstate"
	"github.com/BaSui01/flowreg/registry"
	"github.com/BaSui01/flowreg/tracestore"
)

// =============================================================================
// 🎯 MockTraceStore
// =============================================================================

// MockTraceStore 是 tracestore.Store 的模拟实现
type MockTraceStore struct {
	mu    sync.Mutex
	inner *tracestore.MemoryStore

	// 错误注入
	saveErr error
	loadErr error
	listErr error

	// 调用记录
	saveCalls int
	loadCalls int
	listCalls int
	closed    bool
}

// NewMockTraceStore 创建新的 MockTraceStore
func NewMockTraceStore() *MockTraceStore {
	return &MockTraceStore{inner: tracestore.NewMemoryStore()}
}

// WithSaveError 设置 Save 返回的错误
func (m *MockTraceStore) WithSaveError(err error) *MockTraceStore {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveErr = err
	return m
}

// WithLoadError 设置 Load 返回的错误
func (m *MockTraceStore) WithLoadError(err error) *MockTraceStore {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loadErr = err
	return m
}

// WithListError 设置 List 返回的错误
func (m *MockTraceStore) WithListError(err error) *MockTraceStore {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listErr = err
	return m
}

// Provider 返回总是产出 m 的 provider
func (m *MockTraceStore) Provider() registry.TraceStoreProvider {
	return func(context.Context) (tracestore.Store, error) { return m, nil }
}

func (m *MockTraceStore) Save(ctx context.Context, trace *tracestore.TraceData) error {
	m.mu.Lock()
	m.saveCalls++
	err := m.saveErr
	m.mu.Unlock()
	if err != nil {
		return err
	}
	return m.inner.Save(ctx, trace)
}

func (m *MockTraceStore) Load(ctx context.Context, traceID string) (*tracestore.TraceData, error) {
	m.mu.Lock()
	m.loadCalls++
	err := m.loadErr
	m.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return m.inner.Load(ctx, traceID)
}

func (m *MockTraceStore) List(ctx context.Context, query tracestore.Query) (*tracestore.ListResult, error) {
	m.mu.Lock()
	m.listCalls++
	err := m.listErr
	m.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return m.inner.List(ctx, query)
}

func (m *MockTraceStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Calls 返回 Save、Load、List 的调用次数
func (m *MockTraceStore) Calls() (save, load, list int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveCalls, m.loadCalls, m.listCalls
}

// Closed 报告 Close 是否被调用
func (m *MockTraceStore) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// =============================================================================
// 🌊 MockFlowStateStore
// =============================================================================

// MockFlowStateStore 是 flowstate.Store 的模拟实现
type MockFlowStateStore struct {
	mu    sync.Mutex
	inner *flowstate.MemoryStore

	saveErr error
	loadErr error
	listErr error

	saveCalls int
	loadCalls int
	listCalls int
	closed    bool
}

// NewMockFlowStateStore 创建新的 MockFlowStateStore
func NewMockFlowStateStore() *MockFlowStateStore {
	return &MockFlowStateStore{inner: flowstate.NewMemoryStore()}
}

// WithSaveError 设置 Save 返回的错误
func (m *MockFlowStateStore) WithSaveError(err error) *MockFlowStateStore {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveErr = err
	return m
}

// WithLoadError 设置 Load 返回的错误
func (m *MockFlowStateStore) WithLoadError(err error) *MockFlowStateStore {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loadErr = err
	return m
}

// WithListError 设置 List 返回的错误
func (m *MockFlowStateStore) WithListError(err error) *MockFlowStateStore {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listErr = err
	return m
}

// Provider 返回总是产出 m 的 provider
func (m *MockFlowStateStore) Provider() registry.FlowStateStoreProvider {
	return func(context.Context) (flowstate.Store, error) { return m, nil }
}

func (m *MockFlowStateStore) Save(ctx context.Context, id string, state *flowstate.FlowState) error {
	m.mu.Lock()
	m.saveCalls++
	err := m.saveErr
	m.mu.Unlock()
	if err != nil {
		return err
	}
	return m.inner.Save(ctx, id, state)
}

func (m *MockFlowStateStore) Load(ctx context.Context, id string) (*flowstate.FlowState, error) {
	m.mu.Lock()
	m.loadCalls++
	err := m.loadErr
	m.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return m.inner.Load(ctx, id)
}

func (m *MockFlowStateStore) List(ctx context.Context, query flowstate.Query) (*flowstate.ListResult, error) {
	m.mu.Lock()
	m.listCalls++
	err := m.listErr
	m.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return m.inner.List(ctx, query)
}

func (m *MockFlowStateStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Calls 返回 Save、Load、List 的调用次数
func (m *MockFlowStateStore) Calls() (save, load, list int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveCalls, m.loadCalls, m.listCalls
}

// Closed 报告 Close 是否被调用
func (m *MockFlowStateStore) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

var (
	_ tracestore.Store = (*MockTraceStore)(nil)
	_ flowstate.Store  = (*MockFlowStateStore)(nil)
)

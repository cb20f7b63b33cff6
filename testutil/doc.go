// Copyright 2026 FlowReg Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license.

/*
Package testutil 提供 FlowReg 测试的共享工具和辅助函数。

# 概述

testutil 包为各包的单元测试提供统一的辅助能力，
避免重复实现相似的测试基础设施。

# 核心能力

  - 上下文辅助: TestContext / TestContextWithTimeout / CancelledContext，
    自动注册 Cleanup 防止泄漏
  - 注册表辅助: ScopedContext 返回绑定了指定注册表的测试上下文
  - 断言工具: AssertJSONEqual
  - 数据工具: MustParseJSON

# 子包

  - testutil/mocks: MockTraceStore、MockFlowStateStore 与
    RecordingObserver，支持错误注入与调用记录
  - testutil/fixtures: trace 与 flow state 样例数据工厂

# 使用示例

	ctx := testutil.ScopedContext(t, registry.New())
	store := mocks.NewMockTraceStore().WithSaveError(errBoom)
	registry.RegisterTraceStore(ctx, "dev", store.Provider())
*/
package testutil

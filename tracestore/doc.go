// Copyright (c) FlowReg Authors.
// Licensed under the MIT License.

/*
Package tracestore 定义 trace 持久化接口及其内存与 GORM 实现。

同一 trace 的多次 Save 会合并 span；List 按开始时间倒序分页，
continuation token 为下一页的偏移量。New 按 Config.Type 选择后端。
*/
package tracestore

// Package telemetry 负责 flowreg 的 OpenTelemetry SDK 初始化。
//
// 通过 Providers.TracerProvider 上报的 span:
//
//	registry.InitializePlugin   每次插件初始化器执行一个
//	registry.construct          每次 trace / flow state 存储构造一个
//	HTTP server span            反射 API 每个请求一个
//
// 遥测禁用时不创建任何 exporter, 注册表上报到当前全局 provider（默认 noop）。
package telemetry

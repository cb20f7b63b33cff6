// 版权所有 2024 FlowReg Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 metrics 提供基于 Prometheus 的指标采集能力，覆盖反射 API、
注册表与数据库三个维度。

# 核心类型

  - Collector：指标收集器，同时实现 registry.Observer，
    可通过 registry.WithObserver 挂载到注册表上。

# 主要能力

  - HTTP 指标：请求总数、请求耗时、响应体大小，
    状态码归类为 2xx/3xx/4xx/5xx。
  - 注册表指标：动作查找命中/未命中（按动作类型分组）、
    插件初始化次数与耗时、存储提供者构造次数与耗时。
  - 数据库指标：活跃/空闲连接数 Gauge。

所有指标注册在调用方传入的 prometheus.Registerer 上，
测试可以使用独立的 prometheus.NewRegistry()。
*/
package metrics

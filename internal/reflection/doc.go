// 版权所有 2024 FlowReg Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 reflection 提供开发环境下的注册表自省 HTTP API。

# 概述

Handler 把一个 registry.Registry 的内容以 JSON 形式暴露出来，
供本地开发工具查看动作列表、按环境读取 trace 与 flow state。
每个请求的 context 都绑定到该注册表，因此插件在列表请求中
触发的延迟注册会落在正确的节点上。

# 路由

  - GET /api/__health
  - GET /api/actions
  - GET /api/actions/{type}/{name...}
  - GET /api/envs/{env}/traces[/{id}]
  - GET /api/envs/{env}/flowStates[/{id}]
  - GET /metrics（配置 Gatherer 时）

# 中间件

Chain 串联 Recovery、RequestID、RequestLogger、Metrics、
OTelTracing、RateLimiter 与可选的 JWTAuth（HS256）。
*/
package reflection

// 版权所有 2024 FlowReg Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 server 管理反射 API 的 HTTP 服务器生命周期。

# 核心类型

  - Manager：封装 net/http.Server，提供非阻塞 Start、
    带超时的 Shutdown 以及阻塞直到 context 结束的 Run。
  - Config：监听地址、读写超时、空闲超时与优雅关闭超时，
    由 ConfigFrom 从 config.ReflectionConfig 派生。

Start 在返回前完成端口绑定，因此使用 ":0" 时 Addr 返回真实端口，
便于测试与本地工具发现服务。
*/
package server

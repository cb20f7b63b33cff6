// Copyright (c) FlowReg Authors.
// Licensed under the MIT License.

/*
Package main 提供 flowreg 命令行程序入口。

# 概述

cmd/flowreg 装配一个注册表：按 dev/prod 环境绑定 trace store 与
flow-state store 提供者，挂载内置插件，并在 dev 环境下启动反射 API。

# 主要能力

  - 子命令：serve（启动服务）、actions（打印动作列表）、version、health
  - 注册表作用域：serve 在 context 中绑定带 Prometheus 观察者与
    OTel TracerProvider 的注册表，后续所有查找都经由 registry.Current
  - 延迟构造：prod 环境的数据库与 Redis 连接在第一次查找对应存储时才建立
  - 优雅关闭：信号监听 → 关闭反射服务器 → 关闭存储 → 刷新遥测
  - 构建注入：Version、BuildTime、GitCommit 通过 ldflags 设置
*/
package main

// 版权所有 2024 FlowReg Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 database 负责打开 GORM 数据库连接并管理其连接池，
为 gorm 类型的 trace store 提供存储后端。

# 核心类型

  - Open/Dialector：按 config.DatabaseConfig 中的驱动选择
    postgres、mysql 或纯 Go 的 sqlite 方言。
  - PoolManager：连接池管理器，配置连接上限并在后台定时探活。
  - StatsReporter：健康检查成功后接收连接池统计，
    flowreg serve 用它把连接数写入 Prometheus。
*/
package database

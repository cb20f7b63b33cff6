// 版权所有 2024 FlowReg Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 migration 管理 gorm trace store 数据表的版本化 Schema 迁移，
支持 PostgreSQL、MySQL 与 SQLite，基于 golang-migrate 实现。

# 概述

各方言的 SQL 迁移文件通过 embed.FS 内嵌，迁移器直接复用
internal/database 打开的连接。gorm trace store 在启动时仍会
AutoMigrate；需要受控变更的生产库应改用 `flowreg migrate`。

# 核心接口与类型

  - Migrator：迁移器接口，定义 Up/Down/DownAll/Goto/Force/
    Version/Status/Info/Close。
  - DefaultMigrator：基于 golang-migrate 的默认实现，持有数据库连接。
  - CLI：命令行交互层，Run 按子命令分发并格式化输出。

# 主要能力

  - 工厂函数：NewMigratorFromConfig 从 config.DatabaseConfig 打开连接。
  - 辅助工具：ParseDatabaseType 解析类型字符串，MigrationsPath
    返回内嵌迁移目录。
*/
package migration

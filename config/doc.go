// Package config 提供 flowreg 的配置管理功能。
//
// 配置来源按优先级依次为默认值、YAML 文件和以 FLOWREG_ 为前缀的环境变量，
// 例如 FLOWREG_RUNTIME_ENV=dev 会在进程启动时开启反射 API。
package config

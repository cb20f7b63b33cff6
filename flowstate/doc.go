/*
Package flowstate 定义 flow state 持久化接口及其内存与 Redis 实现。

Save 以 flow ID 为键整体替换状态；List 按开始时间倒序分页。
Redis 实现把状态文档存为字符串键，并用有序集合维护时间索引。
*/
package flowstate

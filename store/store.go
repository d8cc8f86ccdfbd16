package store

// 注意：此包只包含实现，接口定义在 core 包。
// 使用 core.Store / core.KeyValueStore / core.VectorService 接口。
//
// 示例：
//   var kv core.KeyValueStore = NewMemoryStore()   // 评分明细 / 高分榜
//   var vs core.VectorService = NewMemoryVectorService() // 隐向量近邻

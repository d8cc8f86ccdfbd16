package store

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/rushteam/cinerec/core"
)

// MemoryVectorService 是内存实现的向量服务，用于测试/开发/单机演示。
// 训练完成后把电影隐向量发布到这里，Embedding 近邻召回按相似度检索。
//
// 特点：
//   - 纯内存实现，进程重启后数据丢失
//   - 支持余弦相似度、欧氏距离、内积等距离度量
//   - 线程安全
//   - 暴力扫描，适用于小规模目录（千级电影足够）
type MemoryVectorService struct {
	mu          sync.RWMutex
	collections map[string]*collection
}

type collection struct {
	dimension int
	vectors   map[string][]float64          // item ID -> vector
	metadata  map[string]map[string]any     // item ID -> metadata
}

// NewMemoryVectorService 创建内存向量服务实例。
func NewMemoryVectorService() *MemoryVectorService {
	return &MemoryVectorService{
		collections: make(map[string]*collection),
	}
}

func (m *MemoryVectorService) Name() string { return "memory_vector" }

// Search 实现 core.VectorService 接口。
func (m *MemoryVectorService) Search(ctx context.Context, req *core.VectorSearchRequest) (*core.VectorSearchResult, error) {
	if req == nil {
		return nil, core.NewDomainError(core.ModuleVector, core.ErrorCodeInvalidInput, "vector search request is nil")
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	col, ok := m.collections[req.Collection]
	if !ok {
		return &core.VectorSearchResult{Items: []core.VectorSearchItem{}}, nil
	}

	if len(req.Vector) != col.dimension {
		return nil, core.NewDomainError(core.ModuleVector, core.ErrorCodeInvalidInput, "vector dimension mismatch")
	}

	topK := req.TopK
	if topK <= 0 {
		topK = 10
	}

	metric := req.Metric
	if !core.ValidateVectorMetric(metric) {
		metric = "cosine"
	}

	// 暴力扫描全集合
	type scoredItem struct {
		id    string
		score float64
	}
	scoredItems := make([]scoredItem, 0, len(col.vectors))

	for itemID, itemVector := range col.vectors {
		var score float64
		switch metric {
		case "euclidean":
			// 欧氏距离转换为相似度分数（距离越小，分数越高）
			score = 1.0 / (1.0 + euclideanDistance(req.Vector, itemVector))
		case "inner_product":
			score = innerProduct(req.Vector, itemVector)
		default:
			score = cosineSimilarity(req.Vector, itemVector)
		}
		scoredItems = append(scoredItems, scoredItem{id: itemID, score: score})
	}

	// 按分数降序排序；并列按 ID 保证确定性
	sort.Slice(scoredItems, func(i, j int) bool {
		if scoredItems[i].score == scoredItems[j].score {
			return scoredItems[i].id < scoredItems[j].id
		}
		return scoredItems[i].score > scoredItems[j].score
	})

	if len(scoredItems) > topK {
		scoredItems = scoredItems[:topK]
	}

	items := make([]core.VectorSearchItem, len(scoredItems))
	for i, item := range scoredItems {
		items[i] = core.VectorSearchItem{
			ID:    item.id,
			Score: item.score,
		}
	}

	return &core.VectorSearchResult{Items: items}, nil
}

// Insert 实现 core.VectorService 接口。
// 集合不存在时按首个向量的维度自动创建；维度不一致时拒绝。
func (m *MemoryVectorService) Insert(ctx context.Context, coll string, id string, vector []float64, metadata map[string]any) error {
	if coll == "" || id == "" {
		return core.NewDomainError(core.ModuleVector, core.ErrorCodeInvalidInput, "collection and id are required")
	}
	if len(vector) == 0 {
		return core.NewDomainError(core.ModuleVector, core.ErrorCodeInvalidInput, "vector is empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	col, ok := m.collections[coll]
	if !ok {
		col = &collection{
			dimension: len(vector),
			vectors:   make(map[string][]float64),
			metadata:  make(map[string]map[string]any),
		}
		m.collections[coll] = col
	}

	if len(vector) != col.dimension {
		return core.NewDomainError(core.ModuleVector, core.ErrorCodeInvalidInput, "vector dimension mismatch")
	}

	col.vectors[id] = vector
	if metadata != nil {
		col.metadata[id] = metadata
	}
	return nil
}

// Close 实现 core.VectorService 接口。
func (m *MemoryVectorService) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.collections = make(map[string]*collection)
	return nil
}

// 相似度计算函数

// cosineSimilarity 计算余弦相似度
func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// euclideanDistance 计算欧氏距离
func euclideanDistance(a, b []float64) float64 {
	if len(a) != len(b) {
		return math.MaxFloat64
	}

	var sum float64
	for i := range a {
		diff := a[i] - b[i]
		sum += diff * diff
	}

	return math.Sqrt(sum)
}

// innerProduct 计算内积
func innerProduct(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}

	return sum
}

var _ core.VectorService = (*MemoryVectorService)(nil)

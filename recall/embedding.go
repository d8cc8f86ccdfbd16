package recall

import (
	"context"
	"fmt"
	"strconv"

	"github.com/rushteam/cinerec/core"
	"github.com/rushteam/cinerec/feature"
	"github.com/rushteam/cinerec/model"
	"github.com/rushteam/cinerec/pipeline"
	"github.com/rushteam/cinerec/pkg/utils"
)

// EmbeddingNeighbors 是 Embedding 近邻召回源（i2i）。
//
// 训练结束后把 film 侧隐向量发布到向量服务，在线按余弦相似度检索
// "看过这部，还可能看什么"。与隐因子全量打分相比，向量检索在候选
// 规模大时更省算力（以可召回性换精确性）。
type EmbeddingNeighbors struct {
	Vectors    core.VectorService
	Collection string // 集合名称，例如 "movie_embeddings"

	// Model 提供种子向量；FilmCodes 解析种子下标
	Model     *model.Recommender
	FilmCodes *feature.IdentityEncoding

	// Catalog 用于把结果解码回展示上下文
	Catalog *core.Catalog

	// TopK 返回条数。<= 0 时取 10。
	TopK int
}

func (r *EmbeddingNeighbors) Name() string        { return "recall.embedding" }
func (r *EmbeddingNeighbors) Kind() pipeline.Kind { return pipeline.KindRecall }

// Process 实现 Node 接口：种子标题取自 rctx.SeedTitle。
func (r *EmbeddingNeighbors) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

// Recall 实现 Source 接口。
func (r *EmbeddingNeighbors) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	if r.Vectors == nil || r.Model == nil || r.FilmCodes == nil || r.Catalog == nil {
		return nil, nil
	}
	if rctx == nil || rctx.SeedTitle == "" {
		return nil, nil
	}

	seed, ok := r.Catalog.ByTitle(rctx.SeedTitle)
	if !ok {
		return nil, core.NewDomainError(core.ModuleCatalog, core.ErrorCodeNotFound,
			fmt.Sprintf("embedding: title %q not found in catalog", rctx.SeedTitle))
	}
	seedIdx, ok := r.FilmCodes.Encode(seed.FilmCode)
	if !ok {
		return nil, core.NewDomainError(core.ModuleModel, core.ErrorCodeNotFound,
			fmt.Sprintf("embedding: film code %q not in encoding", seed.FilmCode))
	}
	seedVec, err := r.Model.FilmEmbedding(seedIdx)
	if err != nil {
		return nil, err
	}

	topK := r.TopK
	if topK <= 0 {
		topK = 10
	}
	// 多取一位，检索结果通常包含种子自身。
	result, err := r.Vectors.Search(ctx, &core.VectorSearchRequest{
		Collection: r.Collection,
		Vector:     seedVec,
		TopK:       topK + 1,
		Metric:     "cosine",
	})
	if err != nil {
		return nil, err
	}

	out := make([]*core.Item, 0, topK)
	for _, hit := range result.Items {
		id, err := strconv.ParseInt(hit.ID, 10, 64)
		if err != nil {
			continue
		}
		if id == seed.ID {
			continue
		}
		m, ok := r.Catalog.ByID(id)
		if !ok {
			continue
		}
		it := core.NewItem(id).WithMovie(m)
		it.Score = hit.Score
		it.PutLabel("recall_source", utils.Label{Value: "embedding", Source: "recall"})
		out = append(out, it)
		if len(out) == topK {
			break
		}
	}
	return out, nil
}

// PublishEmbeddings 把训练后的 film 侧隐向量批量写入向量服务。
// 重建模型后写入新集合再整体切换，不做原地覆盖。
func PublishEmbeddings(
	ctx context.Context,
	vectors core.VectorService,
	collection string,
	m *model.Recommender,
	filmCodes *feature.IdentityEncoding,
	catalog *core.Catalog,
) error {
	for idx := 0; idx < filmCodes.Len(); idx++ {
		code, ok := filmCodes.Decode(idx)
		if !ok {
			continue
		}
		movie, ok := catalog.ByFilmCode(code)
		if !ok {
			continue
		}
		vec, err := m.FilmEmbedding(idx)
		if err != nil {
			return err
		}
		meta := map[string]any{"title": movie.Title, "film_code": code}
		if err := vectors.Insert(ctx, collection, strconv.FormatInt(movie.ID, 10), vec, meta); err != nil {
			return err
		}
	}
	return nil
}

package recall

import (
	"context"
	"fmt"
	"sort"

	"github.com/rushteam/cinerec/core"
	"github.com/rushteam/cinerec/feature"
	"github.com/rushteam/cinerec/model"
	"github.com/rushteam/cinerec/pipeline"
	"github.com/rushteam/cinerec/pkg/conv"
	"github.com/rushteam/cinerec/pkg/utils"
)

// ContentRecommender 是内容相似度召回源。
//
// 构建路径（一次性，全静态）：
//
//	目录 → 内容 token（类型 + 标题长度）→ TF-IDF → 两两余弦矩阵
//
// 查询路径只读矩阵的一行：按相似度降序取 TopK，稳定排序保持目录
// 顺序打破并列，种子自身（相似度恒为 1.0）被排除。
//
// ContentRecommender 同时实现 Source 和 Node 接口，可以直接在
// Pipeline 中使用。
type ContentRecommender struct {
	catalog *core.Catalog
	matrix  *model.SimilarityMatrix
	vectors []feature.SparseVector

	// TopK 默认返回条数。<= 0 时取 10。
	TopK int
}

// BuildContentRecommender 对目录执行完整内容管线并返回召回源。
// 空目录/空语料在构建期即失败，不发布半成品索引。
func BuildContentRecommender(ctx context.Context, catalog *core.Catalog) (*ContentRecommender, error) {
	if catalog == nil || catalog.Len() == 0 {
		return nil, core.NewDomainError(core.ModuleCatalog, core.ErrorCodeEmptyCorpus,
			"content: empty catalog")
	}

	docs := feature.ComposeCatalog(catalog)
	vectorizer := feature.NewVectorizer()
	vectors, err := vectorizer.FitTransform(docs)
	if err != nil {
		return nil, err
	}

	movies := catalog.Movies()
	labels := make([]string, len(movies))
	for i, m := range movies {
		labels[i] = m.Label
	}

	builder := &model.SimilarityBuilder{}
	matrix, err := builder.Build(ctx, labels, vectors)
	if err != nil {
		return nil, err
	}

	return &ContentRecommender{
		catalog: catalog,
		matrix:  matrix,
		vectors: vectors,
	}, nil
}

// Matrix 返回底层相似度矩阵（只读）。
func (r *ContentRecommender) Matrix() *model.SimilarityMatrix { return r.matrix }

// Vectors 返回逐行的 TF-IDF 向量（只读，目录顺序）。
func (r *ContentRecommender) Vectors() []feature.SparseVector { return r.vectors }

// Recommend 按种子标题返回最多 k 部相似电影。
//
// 标题做大小写不敏感的精确匹配；未命中返回 NOT_FOUND（可恢复，
// 调用方用 core.IsNotFound 分支），不是空列表。同名冲突取目录中
// 第一条。两次同参调用返回完全一致的有序结果。
func (r *ContentRecommender) Recommend(title string, k int) ([]*core.Item, error) {
	if k <= 0 {
		k = r.TopK
	}
	if k <= 0 {
		k = 10
	}

	seed, ok := r.catalog.ByTitle(title)
	if !ok {
		return nil, core.NewDomainError(core.ModuleCatalog, core.ErrorCodeNotFound,
			fmt.Sprintf("content: title %q not found in catalog", title))
	}
	seedIdx, ok := r.matrix.Index(seed.Label)
	if !ok {
		return nil, core.NewDomainError(core.ModuleModel, core.ErrorCodeNotFound,
			fmt.Sprintf("content: label %q missing from similarity matrix", seed.Label))
	}

	movies := r.catalog.Movies()

	// 候选按目录顺序生成，稳定排序保证并列时保持目录顺序。
	candidates := make([]int, 0, len(movies)-1)
	for i := range movies {
		if i == seedIdx {
			continue
		}
		candidates = append(candidates, i)
	}
	sort.SliceStable(candidates, func(a, b int) bool {
		return r.matrix.At(seedIdx, candidates[a]) > r.matrix.At(seedIdx, candidates[b])
	})
	if len(candidates) > k {
		candidates = candidates[:k]
	}

	out := make([]*core.Item, 0, len(candidates))
	for _, idx := range candidates {
		m := movies[idx]
		it := core.NewItem(m.ID).WithMovie(m)
		it.Score = r.matrix.At(seedIdx, idx)
		it.PutLabel("recall_source", utils.Label{Value: "content", Source: "recall"})
		out = append(out, it)
	}
	return out, nil
}

func (r *ContentRecommender) Name() string        { return "recall.content" }
func (r *ContentRecommender) Kind() pipeline.Kind { return pipeline.KindRecall }

// Process 实现 Node 接口：种子标题取自 rctx.SeedTitle，
// 条数可由 rctx.Params["top_k"] 覆盖。
func (r *ContentRecommender) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	if rctx == nil || rctx.SeedTitle == "" {
		return nil, nil
	}
	k := conv.ConfigGetInt(rctx.Params, "top_k", r.TopK)
	return r.Recommend(rctx.SeedTitle, k)
}

// Recall 实现 Source 接口。
func (r *ContentRecommender) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	return r.Process(ctx, rctx, nil)
}

package recall

import (
	"context"
	"sort"
	"strconv"

	"github.com/rushteam/cinerec/core"
	"github.com/rushteam/cinerec/pipeline"
	"github.com/rushteam/cinerec/pkg/utils"
)

// TopRated 是高分召回源：按聚合评分取 TopK。
// - 如果配置了 KeyValueStore，优先用 ZRange 读取评分有序集合
//   （member 为电影 ID，score 为聚合评分，离线任务写入）
// - 否则回退到内存目录，按 Rating 降序排序
//
// TopRated 同时实现了 Source 和 Node 接口，可以直接在 Pipeline 中使用。
type TopRated struct {
	Store core.KeyValueStore
	Key   string // 存储 key，例如 "toprated:movies"

	// Catalog 内存回退数据源
	Catalog *core.Catalog

	// TopK 返回条数。<= 0 时取 10。
	TopK int
}

func (r *TopRated) Name() string        { return "recall.toprated" }
func (r *TopRated) Kind() pipeline.Kind { return pipeline.KindRecall }

// Process 实现 Node 接口，直接调用 Recall。
func (r *TopRated) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

// Recall 实现 Source 接口。
func (r *TopRated) Recall(
	ctx context.Context,
	_ *core.RecommendContext,
) ([]*core.Item, error) {
	topK := r.TopK
	if topK <= 0 {
		topK = 10
	}

	// 优先从有序集合读取（降序）。
	if r.Store != nil && r.Key != "" {
		members, err := r.Store.ZRange(ctx, r.Key, 0, int64(topK)-1)
		if err == nil && len(members) > 0 {
			out := make([]*core.Item, 0, len(members))
			for _, member := range members {
				id, err := strconv.ParseInt(member, 10, 64)
				if err != nil {
					continue
				}
				it := core.NewItem(id)
				if r.Catalog != nil {
					if m, ok := r.Catalog.ByID(id); ok {
						it.WithMovie(m)
						it.Score = m.Rating
					}
				}
				it.PutLabel("recall_source", utils.Label{Value: "toprated", Source: "recall"})
				out = append(out, it)
			}
			return out, nil
		}
	}

	// 回退：内存目录排序。
	if r.Catalog == nil {
		return nil, nil
	}
	movies := append([]*core.Movie{}, r.Catalog.Movies()...)
	sort.SliceStable(movies, func(i, j int) bool {
		return movies[i].Rating > movies[j].Rating
	})
	if len(movies) > topK {
		movies = movies[:topK]
	}
	out := make([]*core.Item, 0, len(movies))
	for _, m := range movies {
		it := core.NewItem(m.ID).WithMovie(m)
		it.Score = m.Rating
		it.PutLabel("recall_source", utils.Label{Value: "toprated", Source: "recall"})
		out = append(out, it)
	}
	return out, nil
}

// PublishTopRated 把目录的聚合评分写入有序集合，供在线召回使用。
// 离线构建完目录后调用一次；重建时写新 key 后整体切换。
func PublishTopRated(ctx context.Context, store core.KeyValueStore, key string, catalog *core.Catalog) error {
	for _, m := range catalog.Movies() {
		if err := store.ZAdd(ctx, key, m.Rating, strconv.FormatInt(m.ID, 10)); err != nil {
			return err
		}
	}
	return nil
}

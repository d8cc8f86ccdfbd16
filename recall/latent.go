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

// LatentRecommender 是隐因子模型召回源。
//
// 查询路径：种子长描述标签 → label 下标 → 全量 film 候选逐一过
// 训练后的模型打分 → 降序 TopN（并列按候选下标升序）→ 解码回
// 展示标签并附目录上下文。
//
// 基础行为对全候选集打分（含训练中出现过的配对）；显式要求时才
// 剔除与种子构成过训练样本的候选。
type LatentRecommender struct {
	// Scorer 训练完成并冻结的打分模型
	Scorer model.PairScorer

	// FilmCodes / Labels 两套独立的身份编码（不可混用）
	FilmCodes *feature.IdentityEncoding
	Labels    *feature.IdentityEncoding

	// Catalog 用于把结果解码回展示上下文
	Catalog *core.Catalog

	// TopN 默认返回条数。<= 0 时取 10。
	TopN int

	// ExcludeTrained 为 true 时剔除与种子构成过训练样本的候选
	ExcludeTrained bool

	// TrainedPairs film 下标 -> label 下标集合（由 dataset.Interactions 提供）
	TrainedPairs map[int]map[int]struct{}
}

// Recommend 按种子标签返回最多 topN 条预测偏好最高的电影。
// 标签未命中编码时返回 NOT_FOUND，模型不会被调用。
func (r *LatentRecommender) Recommend(seedLabel string, topN int) ([]*core.Item, error) {
	if topN <= 0 {
		topN = r.TopN
	}
	if topN <= 0 {
		topN = 10
	}
	if r.Scorer == nil || r.FilmCodes == nil || r.Labels == nil {
		return nil, core.NewDomainError(core.ModuleModel, core.ErrorCodeInvalidInput,
			"latent: recommender not fully wired")
	}

	labelIdx, ok := r.Labels.Encode(seedLabel)
	if !ok {
		return nil, core.NewDomainError(core.ModuleModel, core.ErrorCodeNotFound,
			fmt.Sprintf("latent: label %q not found in encoding", seedLabel))
	}

	type scoredFilm struct {
		filmIdx int
		score   float64
	}
	scores := make([]scoredFilm, 0, r.FilmCodes.Len())
	for filmIdx := 0; filmIdx < r.FilmCodes.Len(); filmIdx++ {
		if r.ExcludeTrained && r.trained(filmIdx, labelIdx) {
			continue
		}
		score, err := r.Scorer.Score(filmIdx, labelIdx)
		if err != nil {
			return nil, err
		}
		scores = append(scores, scoredFilm{filmIdx: filmIdx, score: score})
	}

	// 降序；并列按候选下标升序（候选本身按下标升序生成，稳定排序即可）。
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].score > scores[j].score
	})
	if len(scores) > topN {
		scores = scores[:topN]
	}

	out := make([]*core.Item, 0, len(scores))
	for _, s := range scores {
		code, ok := r.FilmCodes.Decode(s.filmIdx)
		if !ok {
			continue
		}
		var it *core.Item
		if r.Catalog != nil {
			if m, ok := r.Catalog.ByFilmCode(code); ok {
				it = core.NewItem(m.ID).WithMovie(m)
			}
		}
		if it == nil {
			it = core.NewItem(int64(s.filmIdx))
			it.Meta["film_code"] = code
		}
		it.Score = s.score
		it.PutLabel("recall_source", utils.Label{Value: "latent", Source: "recall"})
		out = append(out, it)
	}
	return out, nil
}

func (r *LatentRecommender) trained(filmIdx, labelIdx int) bool {
	labels, ok := r.TrainedPairs[filmIdx]
	if !ok {
		return false
	}
	_, ok = labels[labelIdx]
	return ok
}

func (r *LatentRecommender) Name() string        { return "recall.latent" }
func (r *LatentRecommender) Kind() pipeline.Kind { return pipeline.KindRecall }

// Process 实现 Node 接口：种子标签取自 rctx.SeedLabel，
// 条数可由 rctx.Params["top_n"] 覆盖。
func (r *LatentRecommender) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	if rctx == nil || rctx.SeedLabel == "" {
		return nil, nil
	}
	n := conv.ConfigGetInt(rctx.Params, "top_n", r.TopN)
	return r.Recommend(rctx.SeedLabel, n)
}

// Recall 实现 Source 接口。
func (r *LatentRecommender) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	return r.Process(ctx, rctx, nil)
}

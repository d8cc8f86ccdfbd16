package rank

import (
	"context"
	"fmt"
	"sort"

	"github.com/rushteam/cinerec/core"
	"github.com/rushteam/cinerec/feature"
	"github.com/rushteam/cinerec/model"
	"github.com/rushteam/cinerec/pipeline"
	"github.com/rushteam/cinerec/pkg/utils"
)

// LatentNode 是一个使用 PairScorer 的排序 Node：对上游候选逐一
// 相对种子标签重打分（不限定模型类型，隐因子模型只是默认实现之一）。
// - 写入 labels：rank_model
// - 更新 item.Score 并按分数降序排序
//
// 典型用法：内容通道 / 高分通道召回的候选，用训练后的隐因子模型
// 统一重排，两条通道的分数由此可比。
type LatentNode struct {
	Model model.PairScorer

	// Catalog / FilmCodes 把候选 ID 解析回 film 下标
	Catalog   *core.Catalog
	FilmCodes *feature.IdentityEncoding

	// Labels 把 rctx.SeedLabel 解析为 label 下标
	Labels *feature.IdentityEncoding
}

func (n *LatentNode) Name() string        { return "rank.latent" }
func (n *LatentNode) Kind() pipeline.Kind { return pipeline.KindRank }

func (n *LatentNode) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if n.Model == nil || len(items) == 0 {
		return items, nil
	}
	if rctx == nil || rctx.SeedLabel == "" {
		return items, nil
	}
	if n.Catalog == nil || n.FilmCodes == nil || n.Labels == nil {
		return items, nil
	}

	labelIdx, ok := n.Labels.Encode(rctx.SeedLabel)
	if !ok {
		return nil, core.NewDomainError(core.ModuleModel, core.ErrorCodeNotFound,
			fmt.Sprintf("rank: seed label %q not found in encoding", rctx.SeedLabel))
	}

	for _, it := range items {
		if it == nil {
			continue
		}
		m, ok := n.Catalog.ByID(it.ID)
		if !ok {
			continue
		}
		filmIdx, ok := n.FilmCodes.Encode(m.FilmCode)
		if !ok {
			continue
		}
		score, err := n.Model.Score(filmIdx, labelIdx)
		if err != nil {
			return nil, err
		}
		it.Score = score
		it.PutLabel("rank_model", utils.Label{Value: n.Model.Name(), Source: "rank"})
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i] == nil {
			return false
		}
		if items[j] == nil {
			return true
		}
		return items[i].Score > items[j].Score
	})
	return items, nil
}

package feast

import (
	"context"

	"github.com/rushteam/cinerec/core"
	"github.com/rushteam/cinerec/pipeline"
	"github.com/rushteam/cinerec/pkg/conv"
)

// MovieFeatureNode 是特征补全 Node：在排序前按 movie_id 批量取回
// 在线特征，写入 Item.Features。
//
// 典型接法：召回 → MovieFeatureNode → 排序。
// Feast 不可用或部分实体缺失时只影响对应特征，不中断链路。
type MovieFeatureNode struct {
	Client Client

	// Features 要取回的特征名称列表，
	// 例如 ["movie_stats:avg_rating", "movie_stats:rating_count"]
	Features []string

	// EntityKey 实体键名。空时取 "movie_id"。
	EntityKey string

	// Project 项目名称（可选，为空时取客户端默认）
	Project string
}

func (n *MovieFeatureNode) Name() string        { return "feature.feast" }
func (n *MovieFeatureNode) Kind() pipeline.Kind { return pipeline.KindPostProcess }

func (n *MovieFeatureNode) Process(
	ctx context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if n.Client == nil || len(n.Features) == 0 || len(items) == 0 {
		return items, nil
	}

	entityKey := n.EntityKey
	if entityKey == "" {
		entityKey = "movie_id"
	}

	entityRows := make([]map[string]interface{}, 0, len(items))
	rowIndex := make([]int, 0, len(items))
	for i, it := range items {
		if it == nil {
			continue
		}
		entityRows = append(entityRows, map[string]interface{}{entityKey: it.ID})
		rowIndex = append(rowIndex, i)
	}
	if len(entityRows) == 0 {
		return items, nil
	}

	resp, err := n.Client.GetOnlineFeatures(ctx, &GetOnlineFeaturesRequest{
		Features:   n.Features,
		EntityRows: entityRows,
		Project:    n.Project,
	})
	if err != nil {
		// 特征补全失败时降级放行，排序退化为召回分
		return items, nil
	}

	for i, fv := range resp.FeatureVectors {
		if i >= len(rowIndex) {
			break
		}
		it := items[rowIndex[i]]
		for name, value := range fv.Values {
			f, ok := conv.ToFloat64(value)
			if !ok {
				continue
			}
			if it.Features == nil {
				it.Features = make(map[string]float64)
			}
			it.Features[name] = f
		}
	}
	return items, nil
}

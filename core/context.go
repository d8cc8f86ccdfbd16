package core

import "github.com/rushteam/cinerec/pkg/utils"

// RecommendContext 承载请求级信息，贯穿整个 Pipeline 透传。
type RecommendContext struct {
	// UserID 发起请求的用户（可为空：纯内容查询不依赖用户）
	UserID string

	// Scene 场景标识（如 "similar_movies" / "for_you"）
	Scene string

	// SeedTitle 内容通道的种子标题（大小写不敏感的精确匹配）
	SeedTitle string

	// SeedLabel 隐因子通道的种子长描述标签
	SeedLabel string

	// Labels 是请求级标签，可驱动整个 Pipeline 行为
	Labels map[string]utils.Label

	// Params 请求级上下文参数（top_k、exclude_rated 等）
	Params map[string]any
}

// PutLabel 写入请求级 Label。
func (rctx *RecommendContext) PutLabel(key string, lbl utils.Label) {
	if rctx.Labels == nil {
		rctx.Labels = make(map[string]utils.Label)
	}
	if old, ok := rctx.Labels[key]; ok {
		rctx.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	rctx.Labels[key] = lbl
}

// GetLabel 获取请求级 Label。
func (rctx *RecommendContext) GetLabel(key string) (utils.Label, bool) {
	if rctx.Labels == nil {
		return utils.Label{}, false
	}
	lbl, ok := rctx.Labels[key]
	return lbl, ok
}

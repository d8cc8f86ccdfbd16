package filter

import (
	"context"

	"github.com/rushteam/cinerec/core"
	"github.com/rushteam/cinerec/pkg/dsl"
)

// DSLFilter 是基于 CEL 表达式的策略过滤器。
// 表达式返回 true 表示保留，false 表示过滤（与 Filter 语义相反，
// 表达式写的是"想要什么"而不是"不要什么"）。
//
// 示例：
//   - `label.recall_source == "content"` → 只保留内容召回的结果
//   - `item.score > 0.7` → 预测分阈值
//   - `item.meta.rating >= 4.0` → 高分电影
type DSLFilter struct {
	// Expr CEL 表达式。空表达式恒保留。
	Expr string
}

func (f *DSLFilter) Name() string {
	return "filter.dsl"
}

func (f *DSLFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if f.Expr == "" || item == nil {
		return false, nil
	}
	if rctx == nil {
		rctx = &core.RecommendContext{}
	}
	keep, err := dsl.NewEval(item, rctx).Evaluate(f.Expr)
	if err != nil {
		return false, err
	}
	return !keep, nil
}

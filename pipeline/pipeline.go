package pipeline

import (
	"context"

	"github.com/rushteam/cinerec/core"
)

// Pipeline 是核心抽象：把推荐逻辑拆成可组合的 Node 链。
// 内容通道与隐因子通道都可以被包装为 Recall Node 接入同一条链。
type Pipeline struct {
	Nodes []Node
}

func (p *Pipeline) Run(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	cur := items
	for _, node := range p.Nodes {
		next, err := node.Process(ctx, rctx, cur)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}

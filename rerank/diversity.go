package rerank

import (
	"context"
	"strings"

	"github.com/rushteam/cinerec/core"
	"github.com/rushteam/cinerec/pipeline"
)

// GenreDiversity 是一个多样性 ReRank 节点：限制每个类型（genre）
// 最多出现 MaxPerGenre 次，保留先出现的。
//
// 电影通常有多个类型；以第一个类型为主类型参与计数，避免
// "Adventure|Animation|..." 的组合把去重打穿。
// 类型来源优先级：
// - meta["genres"]（空格分隔，取首个）
// - label["genre"].Value
type GenreDiversity struct {
	// MaxPerGenre 每个主类型最多保留的条数。<= 0 时取 2。
	MaxPerGenre int
}

func (n *GenreDiversity) Name() string {
	return "rerank.diversity"
}

func (n *GenreDiversity) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *GenreDiversity) Process(
	_ context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) == 0 {
		return items, nil
	}

	max := n.MaxPerGenre
	if max <= 0 {
		max = 2
	}

	count := make(map[string]int, 32)
	out := make([]*core.Item, 0, len(items))

	for _, it := range items {
		if it == nil {
			continue
		}

		genre := primaryGenre(it)
		if genre == "" {
			out = append(out, it)
			continue
		}
		if count[genre] >= max {
			continue
		}
		count[genre]++
		out = append(out, it)
	}

	return out, nil
}

func primaryGenre(it *core.Item) string {
	if it.Meta != nil {
		if v, ok := it.Meta["genres"]; ok {
			if s, ok := v.(string); ok && s != "" {
				if idx := strings.IndexByte(s, ' '); idx > 0 {
					return s[:idx]
				}
				return s
			}
		}
	}
	if it.Labels != nil {
		if lbl, ok := it.Labels["genre"]; ok {
			return lbl.Value
		}
	}
	return ""
}

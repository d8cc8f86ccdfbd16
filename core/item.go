package core

import "github.com/rushteam/cinerec/pkg/utils"

// Item 是推荐链路中的统一承载结构：特征、分数、元信息、标签。
// Labels 用于解释与策略驱动；Score 用于排序决策。
// ID 为目录中的电影 ID；标题/类型/评分等展示上下文放在 Meta。
type Item struct {
	ID       int64
	Score    float64
	Features map[string]float64
	Meta     map[string]any
	Labels   map[string]utils.Label
}

func NewItem(id int64) *Item {
	return &Item{
		ID:       id,
		Score:    0,
		Features: make(map[string]float64),
		Meta:     make(map[string]any),
		Labels:   make(map[string]utils.Label),
	}
}

// PutLabel 写入 Label；若已存在同名 key，则按默认 Merge 规则累积。
func (it *Item) PutLabel(key string, lbl utils.Label) {
	if it.Labels == nil {
		it.Labels = make(map[string]utils.Label)
	}
	if old, ok := it.Labels[key]; ok {
		it.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	it.Labels[key] = lbl
}

// WithMovie 把目录中的展示上下文（标题、类型、评分）附加到 Meta。
func (it *Item) WithMovie(m *Movie) *Item {
	if m == nil {
		return it
	}
	if it.Meta == nil {
		it.Meta = make(map[string]any)
	}
	it.Meta["title"] = m.Title
	it.Meta["genres"] = m.GenreString()
	it.Meta["rating"] = m.Rating
	it.Meta["label"] = m.Label
	return it
}

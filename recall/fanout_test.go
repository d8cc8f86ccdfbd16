package recall

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rushteam/cinerec/core"
)

// stubSource 返回固定结果的召回源。
type stubSource struct {
	name  string
	items []*core.Item
	err   error
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Recall(_ context.Context, _ *core.RecommendContext) ([]*core.Item, error) {
	if s.err != nil {
		return nil, s.err
	}
	// 每次返回新实例，避免跨测试共享 Label
	out := make([]*core.Item, 0, len(s.items))
	for _, it := range s.items {
		c := core.NewItem(it.ID)
		c.Score = it.Score
		out = append(out, c)
	}
	return out, nil
}

func items(ids ...int64) []*core.Item {
	out := make([]*core.Item, 0, len(ids))
	for _, id := range ids {
		out = append(out, core.NewItem(id))
	}
	return out
}

func TestFanoutMergeFirst(t *testing.T) {
	n := &Fanout{
		Sources: []Source{
			&stubSource{name: "a", items: items(1, 2)},
			&stubSource{name: "b", items: items(2, 3)},
		},
		Dedup: true,
	}

	got, err := n.Process(context.Background(), &core.RecommendContext{}, nil)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d items, want 3 after dedup", len(got))
	}

	seen := map[int64]bool{}
	for _, it := range got {
		if seen[it.ID] {
			t.Errorf("duplicate id %d after dedup", it.ID)
		}
		seen[it.ID] = true
	}
}

func TestFanoutSourceErrorSwallowed(t *testing.T) {
	n := &Fanout{
		Sources: []Source{
			&stubSource{name: "bad", err: errors.New("backend down")},
			&stubSource{name: "good", items: items(7)},
		},
		Dedup: true,
	}

	got, err := n.Process(context.Background(), &core.RecommendContext{}, nil)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if len(got) != 1 || got[0].ID != 7 {
		t.Errorf("got %v, want only item 7 from the healthy source", got)
	}
}

func TestFanoutPriorityMerge(t *testing.T) {
	n := &Fanout{
		Sources: []Source{
			&stubSource{name: "high", items: items(1)},
			&stubSource{name: "low", items: items(1, 2)},
		},
		Dedup:         true,
		MergeStrategy: "priority",
	}

	got, err := n.Process(context.Background(), &core.RecommendContext{}, nil)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d items, want 2", len(got))
	}

	// 冲突 ID 保留优先级更高（索引更小）的来源；
	// 低优先级来源的 label 可能按 Merge 规则追加在后面
	for _, it := range got {
		if it.ID == 1 {
			if lbl := it.Labels["recall_source"]; !strings.HasPrefix(lbl.Value, "high") {
				t.Errorf("item 1 source = %q, want high-first", lbl.Value)
			}
		}
	}
}

func TestFanoutSourceLabels(t *testing.T) {
	n := &Fanout{
		Sources: []Source{&stubSource{name: "only", items: items(5)}},
	}

	got, err := n.Process(context.Background(), &core.RecommendContext{}, nil)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d items, want 1", len(got))
	}

	if lbl, ok := got[0].Labels["recall_source"]; !ok || lbl.Value != "only" {
		t.Errorf("recall_source = %v, want only", lbl)
	}
	if lbl, ok := got[0].Labels["recall_priority"]; !ok || lbl.Value != "0" {
		t.Errorf("recall_priority = %v, want 0", lbl)
	}
}

func TestFanoutEmpty(t *testing.T) {
	n := &Fanout{}
	got, err := n.Process(context.Background(), &core.RecommendContext{}, nil)
	if err != nil || got != nil {
		t.Errorf("Process() = (%v, %v), want (nil, nil)", got, err)
	}
}

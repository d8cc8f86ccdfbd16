package filter

import (
	"context"
	"testing"

	"github.com/rushteam/cinerec/core"
	"github.com/rushteam/cinerec/pkg/utils"
)

func TestDSLFilter(t *testing.T) {
	it := core.NewItem(1)
	it.Score = 0.8
	it.Meta["rating"] = 4.5
	it.PutLabel("recall_source", utils.Label{Value: "content", Source: "recall"})

	tests := []struct {
		name string
		expr string
		want bool // true 表示被过滤
	}{
		{"score above threshold kept", `item.score > 0.5`, false},
		{"score below threshold filtered", `item.score > 0.9`, true},
		{"label match kept", `label.recall_source == "content"`, false},
		{"label mismatch filtered", `label.recall_source == "latent"`, true},
		{"meta rating kept", `item.meta.rating >= 4.0`, false},
		{"combined", `item.score > 0.5 && label.recall_source == "content"`, false},
		{"empty expr keeps all", ``, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &DSLFilter{Expr: tt.expr}
			got, err := f.ShouldFilter(context.Background(), &core.RecommendContext{}, it)
			if err != nil {
				t.Fatalf("ShouldFilter() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ShouldFilter() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDSLFilterContextAccess(t *testing.T) {
	it := core.NewItem(1)
	rctx := &core.RecommendContext{Scene: "similar_movies"}

	f := &DSLFilter{Expr: `rctx.scene == "similar_movies"`}
	got, err := f.ShouldFilter(context.Background(), rctx, it)
	if err != nil {
		t.Fatalf("ShouldFilter() error = %v", err)
	}
	if got {
		t.Error("matching scene should keep the item")
	}
}

func TestDSLFilterNilContext(t *testing.T) {
	f := &DSLFilter{Expr: `item.score > 0.0`}
	got, err := f.ShouldFilter(context.Background(), nil, core.NewItem(1))
	if err != nil {
		t.Fatalf("ShouldFilter() error = %v", err)
	}
	// score 为 0 不满足保留条件
	if !got {
		t.Error("zero-score item should be filtered by score > 0.0")
	}
}

func TestDSLFilterCompileError(t *testing.T) {
	f := &DSLFilter{Expr: `item.score >`}
	_, err := f.ShouldFilter(context.Background(), &core.RecommendContext{}, core.NewItem(1))
	if err == nil {
		t.Error("malformed expression should return error")
	}
}

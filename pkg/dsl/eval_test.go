package dsl

import (
	"testing"

	"github.com/rushteam/cinerec/core"
	"github.com/rushteam/cinerec/pkg/utils"
)

func evalItem() *core.Item {
	it := core.NewItem(42)
	it.Score = 0.75
	it.Meta["rating"] = 4.5
	it.Meta["title"] = "Heat (1995)"
	it.PutLabel("recall_source", utils.Label{Value: "content", Source: "recall"})
	return it
}

func evalCtx() *core.RecommendContext {
	return &core.RecommendContext{
		UserID:    "42",
		Scene:     "similar_movies",
		SeedTitle: "Toy Story (1995)",
	}
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want bool
	}{
		{"empty expr is true", ``, true},
		{"score compare", `item.score > 0.7`, true},
		{"score compare false", `item.score > 0.8`, false},
		{"label accessor", `label.recall_source == "content"`, true},
		{"label contains", `label.recall_source.contains("cont")`, true},
		{"meta number", `item.meta.rating >= 4.0`, true},
		{"meta string", `item.meta.title.contains("Heat")`, true},
		{"rctx scene", `rctx.scene == "similar_movies"`, true},
		{"rctx user", `rctx.user_id == "42"`, true},
		{"logic and", `item.score > 0.5 && label.recall_source == "content"`, true},
		{"logic or", `item.score > 0.9 || rctx.scene == "similar_movies"`, true},
		{"negation", `!(item.score > 0.9)`, true},
		{"item id", `item.id == 42`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewEval(evalItem(), evalCtx()).Evaluate(tt.expr)
			if err != nil {
				t.Fatalf("Evaluate(%q) error = %v", tt.expr, err)
			}
			if got != tt.want {
				t.Errorf("Evaluate(%q) = %v, want %v", tt.expr, got, tt.want)
			}
		})
	}
}

func TestEvaluateErrors(t *testing.T) {
	e := NewEval(evalItem(), evalCtx())

	// 语法错误
	if _, err := e.Evaluate(`item.score >`); err == nil {
		t.Error("malformed expression should fail")
	}

	// 非布尔返回值
	if _, err := e.Evaluate(`item.score`); err == nil {
		t.Error("non-boolean expression should fail")
	}

	// 访问不存在的 label key 报运行期错误（CEL 语义）
	if _, err := e.Evaluate(`label.nonexistent == "x"`); err == nil {
		t.Error("missing key access should fail")
	}
}

func TestEvaluateLabelSource(t *testing.T) {
	// labels 全量视图下可以检查 source
	got, err := NewEval(evalItem(), evalCtx()).Evaluate(`item.labels.recall_source.source == "recall"`)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if !got {
		t.Error("label source accessor should match")
	}
}

package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rushteam/cinerec/core"
)

// noopNode 按构建配置把固定数量的 item 透传或生成，用于工厂测试。
type noopNode struct {
	name string
}

func (n *noopNode) Name() string { return n.name }
func (n *noopNode) Kind() Kind   { return KindRecall }

func (n *noopNode) Process(_ context.Context, _ *core.RecommendContext, items []*core.Item) ([]*core.Item, error) {
	return append(items, core.NewItem(int64(len(items)+1))), nil
}

const yamlConfig = `
pipeline:
  name: similar_movies
  nodes:
    - type: test.noop
      config:
        tag: first
    - type: test.noop
      config:
        tag: second
`

const jsonConfig = `{
  "pipeline": {
    "name": "similar_movies",
    "nodes": [
      {"type": "test.noop", "config": {"tag": "only"}}
    ]
  }
}`

func writeTempConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadFromYAML(t *testing.T) {
	path := writeTempConfig(t, "pipeline.yaml", yamlConfig)

	cfg, err := LoadFromYAML(path)
	if err != nil {
		t.Fatalf("LoadFromYAML() error = %v", err)
	}
	if cfg.Pipeline.Name != "similar_movies" {
		t.Errorf("name = %q, want similar_movies", cfg.Pipeline.Name)
	}
	if len(cfg.Pipeline.Nodes) != 2 {
		t.Fatalf("got %d nodes, want 2", len(cfg.Pipeline.Nodes))
	}
	if cfg.Pipeline.Nodes[0].Type != "test.noop" {
		t.Errorf("node type = %q, want test.noop", cfg.Pipeline.Nodes[0].Type)
	}
	if tag, _ := cfg.Pipeline.Nodes[1].Config["tag"].(string); tag != "second" {
		t.Errorf("node config tag = %q, want second", tag)
	}
}

func TestLoadFromJSON(t *testing.T) {
	path := writeTempConfig(t, "pipeline.json", jsonConfig)

	cfg, err := LoadFromJSON(path)
	if err != nil {
		t.Fatalf("LoadFromJSON() error = %v", err)
	}
	if len(cfg.Pipeline.Nodes) != 1 {
		t.Fatalf("got %d nodes, want 1", len(cfg.Pipeline.Nodes))
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := LoadFromYAML("/nonexistent/pipeline.yaml"); err == nil {
		t.Error("LoadFromYAML(missing) should fail")
	}
	if _, err := LoadFromJSON("/nonexistent/pipeline.json"); err == nil {
		t.Error("LoadFromJSON(missing) should fail")
	}
}

func TestBuildPipeline(t *testing.T) {
	path := writeTempConfig(t, "pipeline.yaml", yamlConfig)
	cfg, err := LoadFromYAML(path)
	if err != nil {
		t.Fatalf("LoadFromYAML() error = %v", err)
	}

	factory := NewNodeFactory()
	factory.Register("test.noop", func(config map[string]interface{}) (Node, error) {
		tag, _ := config["tag"].(string)
		return &noopNode{name: tag}, nil
	})

	p, err := cfg.BuildPipeline(factory)
	if err != nil {
		t.Fatalf("BuildPipeline() error = %v", err)
	}
	if len(p.Nodes) != 2 {
		t.Fatalf("got %d nodes, want 2", len(p.Nodes))
	}
	if p.Nodes[0].Name() != "first" || p.Nodes[1].Name() != "second" {
		t.Errorf("node names = [%s, %s]", p.Nodes[0].Name(), p.Nodes[1].Name())
	}

	// 链式执行：每个 noop 追加一个 item
	out, err := p.Run(context.Background(), &core.RecommendContext{}, nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(out) != 2 {
		t.Errorf("got %d items after run, want 2", len(out))
	}
}

func TestBuildPipelineUnknownType(t *testing.T) {
	cfg := &Config{}
	cfg.Pipeline.Nodes = []NodeConfig{{Type: "does.not.exist"}}

	if _, err := cfg.BuildPipeline(NewNodeFactory()); err == nil {
		t.Error("BuildPipeline with unregistered type should fail")
	}
}

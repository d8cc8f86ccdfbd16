package config

import (
	"fmt"
	"time"

	"github.com/rushteam/cinerec/core"
	"github.com/rushteam/cinerec/dataset"
	"github.com/rushteam/cinerec/filter"
	"github.com/rushteam/cinerec/pipeline"
	"github.com/rushteam/cinerec/pkg/conv"
	"github.com/rushteam/cinerec/rank"
	"github.com/rushteam/cinerec/recall"
	"github.com/rushteam/cinerec/rerank"
)

// Deps 是配置驱动构建时需要注入的运行期依赖。
// 目录、存储、训练产物没法写在 YAML 里，由调用方装配好后传入。
type Deps struct {
	// Catalog 电影目录（离线构建产物）
	Catalog *core.Catalog

	// Store 可选的 KV 存储（高分榜 / 评分明细）
	Store core.KeyValueStore

	// Content 内容通道推荐器（可选）
	Content *recall.ContentRecommender

	// Latent 隐因子通道推荐器（可选）
	Latent *recall.LatentRecommender

	// Interactions 训练数据（可选，rated 过滤用）
	Interactions *dataset.Interactions
}

// DefaultFactory 返回一个包含所有内置 Node 的默认工厂。
// 需要运行期依赖的 Node（召回、排序）通过 deps 注入。
func DefaultFactory(deps Deps) *pipeline.NodeFactory {
	factory := pipeline.NewNodeFactory()

	// 注册 Recall Nodes
	factory.Register("recall.toprated", func(config map[string]interface{}) (pipeline.Node, error) {
		return buildTopRatedNode(deps, config)
	})
	factory.Register("recall.content", func(config map[string]interface{}) (pipeline.Node, error) {
		return buildContentNode(deps, config)
	})
	factory.Register("recall.latent", func(config map[string]interface{}) (pipeline.Node, error) {
		return buildLatentNode(deps, config)
	})
	factory.Register("recall.fanout", func(config map[string]interface{}) (pipeline.Node, error) {
		return buildFanoutNode(deps, config)
	})

	// 注册 Rank Nodes
	factory.Register("rank.latent", func(config map[string]interface{}) (pipeline.Node, error) {
		return buildRankNode(deps, config)
	})

	// 注册 Filter Nodes
	factory.Register("filter", func(config map[string]interface{}) (pipeline.Node, error) {
		return buildFilterNode(deps, config)
	})

	// 注册 ReRank Nodes
	factory.Register("rerank.topn", buildTopNNode)
	factory.Register("rerank.diversity", buildDiversityNode)

	return factory
}

func buildTopRatedNode(deps Deps, config map[string]interface{}) (pipeline.Node, error) {
	if deps.Catalog == nil && deps.Store == nil {
		return nil, fmt.Errorf("toprated requires a catalog or a store")
	}
	return &recall.TopRated{
		Store:   deps.Store,
		Key:     conv.ConfigGet[string](config, "key", ""),
		Catalog: deps.Catalog,
		TopK:    conv.ConfigGetInt(config, "top_k", 10),
	}, nil
}

func buildContentNode(deps Deps, config map[string]interface{}) (pipeline.Node, error) {
	if deps.Content == nil {
		return nil, fmt.Errorf("content recommender not provided")
	}
	if k := conv.ConfigGetInt(config, "top_k", 0); k > 0 {
		deps.Content.TopK = k
	}
	return deps.Content, nil
}

func buildLatentNode(deps Deps, config map[string]interface{}) (pipeline.Node, error) {
	if deps.Latent == nil {
		return nil, fmt.Errorf("latent recommender not provided")
	}
	if n := conv.ConfigGetInt(config, "top_n", 0); n > 0 {
		deps.Latent.TopN = n
	}
	if conv.ConfigGet[bool](config, "exclude_trained", false) {
		deps.Latent.ExcludeTrained = true
		if deps.Latent.TrainedPairs == nil && deps.Interactions != nil {
			deps.Latent.TrainedPairs = deps.Interactions.PairSet()
		}
	}
	return deps.Latent, nil
}

func buildFanoutNode(deps Deps, config map[string]interface{}) (pipeline.Node, error) {
	sourcesConfig, ok := config["sources"].([]interface{})
	if !ok {
		return nil, fmt.Errorf("sources not found or invalid")
	}

	sources := make([]recall.Source, 0, len(sourcesConfig))
	for _, sc := range sourcesConfig {
		sourceMap, ok := sc.(map[string]interface{})
		if !ok {
			continue
		}
		sourceType := conv.ConfigGet[string](sourceMap, "type", "")
		switch sourceType {
		case "toprated":
			node, err := buildTopRatedNode(deps, sourceMap)
			if err != nil {
				return nil, err
			}
			sources = append(sources, node.(*recall.TopRated))
		case "content":
			node, err := buildContentNode(deps, sourceMap)
			if err != nil {
				return nil, err
			}
			sources = append(sources, node.(*recall.ContentRecommender))
		case "latent":
			node, err := buildLatentNode(deps, sourceMap)
			if err != nil {
				return nil, err
			}
			sources = append(sources, node.(*recall.LatentRecommender))
		default:
			return nil, fmt.Errorf("unknown source type: %s", sourceType)
		}
	}

	fanout := &recall.Fanout{
		Sources:       sources,
		Dedup:         conv.ConfigGet[bool](config, "dedup", true),
		MergeStrategy: conv.ConfigGet[string](config, "merge_strategy", "first"),
	}
	if sec := conv.ConfigGetInt(config, "timeout", 0); sec > 0 {
		fanout.Timeout = time.Duration(sec) * time.Second
	}
	if n := conv.ConfigGetInt(config, "max_concurrent", 0); n > 0 {
		fanout.MaxConcurrent = n
	}
	return fanout, nil
}

func buildFilterNode(deps Deps, config map[string]interface{}) (pipeline.Node, error) {
	filtersConfig, ok := config["filters"].([]interface{})
	if !ok {
		return nil, fmt.Errorf("filters not found or invalid")
	}

	filters := make([]filter.Filter, 0, len(filtersConfig))
	for _, fc := range filtersConfig {
		filterMap, ok := fc.(map[string]interface{})
		if !ok {
			continue
		}
		filterType := conv.ConfigGet[string](filterMap, "type", "")
		switch filterType {
		case "rated":
			f := &filter.RatedFilter{
				KeyPrefix: conv.ConfigGet[string](filterMap, "key_prefix", ""),
			}
			if deps.Store != nil {
				f.Store = filter.NewStoreAdapter(deps.Store)
			}
			filters = append(filters, f)

		case "dsl":
			expr := conv.ConfigGet[string](filterMap, "expr", "")
			if expr == "" {
				return nil, fmt.Errorf("dsl filter requires expr")
			}
			filters = append(filters, &filter.DSLFilter{Expr: expr})

		default:
			return nil, fmt.Errorf("unknown filter type: %s", filterType)
		}
	}

	return &filter.FilterNode{Filters: filters}, nil
}

// buildRankNode 复用隐因子通道已装配好的模型与编码。
func buildRankNode(deps Deps, _ map[string]interface{}) (pipeline.Node, error) {
	if deps.Latent == nil {
		return nil, fmt.Errorf("latent recommender not provided")
	}
	return &rank.LatentNode{
		Model:     deps.Latent.Scorer,
		Catalog:   deps.Latent.Catalog,
		FilmCodes: deps.Latent.FilmCodes,
		Labels:    deps.Latent.Labels,
	}, nil
}

func buildTopNNode(config map[string]interface{}) (pipeline.Node, error) {
	return &rerank.TopNNode{N: conv.ConfigGetInt(config, "n", 0)}, nil
}

func buildDiversityNode(config map[string]interface{}) (pipeline.Node, error) {
	return &rerank.GenreDiversity{
		MaxPerGenre: conv.ConfigGetInt(config, "max_per_genre", 2),
	}, nil
}

package dataset

import (
	"fmt"
	"math/rand"

	"github.com/rushteam/cinerec/core"
	"github.com/rushteam/cinerec/feature"
	"github.com/rushteam/cinerec/model"
)

// Interactions 是隐因子通道的训练准备产物：两套身份编码 + 归一化
// 训练样本。构建一次后不可变。
//
// 注意：样本的两侧都来自同一电影全集（film code 侧与 display label
// 侧），这是对真实 user/item 协同过滤的刻意简化。
type Interactions struct {
	// FilmCodes 紧凑标识 -> 稠密下标
	FilmCodes *feature.IdentityEncoding

	// Labels 长描述标签 -> 稠密下标（与 FilmCodes 互相独立，不可混用）
	Labels *feature.IdentityEncoding

	// Examples 洗牌后的全部样本
	Examples []model.TrainingExample

	// MinRating / MaxRating 归一化所用的观测极值
	MinRating float64
	MaxRating float64
}

// InteractionsConfig 控制样本准备。零值字段取默认。
type InteractionsConfig struct {
	// Seed 上游一次性洗牌的随机种子。0 时取 42。
	Seed int64

	// TrainFraction 训练切分比例。<= 0 或 >= 1 时取 0.8。
	TrainFraction float64
}

func (c *InteractionsConfig) withDefaults() InteractionsConfig {
	out := *c
	if out.Seed == 0 {
		out.Seed = 42
	}
	if out.TrainFraction <= 0 || out.TrainFraction >= 1 {
		out.TrainFraction = 0.8
	}
	return out
}

// BuildInteractions 从目录构建训练数据。
//
// 每部（已评分的）电影产出一条样本：(film 下标, label 下标, 归一化评分)，
// 评分按观测 min/max 做 min-max 归一化到 [0,1]。样本整体用固定种子
// 洗牌一次；切分在 Split 中按位置切出，不做每 epoch 重洗。
func BuildInteractions(catalog *core.Catalog, cfg InteractionsConfig) (*Interactions, error) {
	movies := catalog.Movies()
	if len(movies) == 0 {
		return nil, core.NewDomainError(core.ModuleDataset, core.ErrorCodeEmptyCorpus,
			"dataset: empty catalog")
	}
	c := cfg.withDefaults()

	codes := make([]string, len(movies))
	labels := make([]string, len(movies))
	for i, m := range movies {
		codes[i] = m.FilmCode
		labels[i] = m.Label
	}
	filmEnc := feature.NewIdentityEncoding(codes)
	labelEnc := feature.NewIdentityEncoding(labels)

	minR, maxR := movies[0].Rating, movies[0].Rating
	for _, m := range movies[1:] {
		if m.Rating < minR {
			minR = m.Rating
		}
		if m.Rating > maxR {
			maxR = m.Rating
		}
	}
	if maxR == minR {
		return nil, core.NewDomainError(core.ModuleDataset, core.ErrorCodeInvalidInput,
			fmt.Sprintf("dataset: all ratings equal (%v), cannot establish [0,1] scale", minR))
	}

	examples := make([]model.TrainingExample, 0, len(movies))
	for _, m := range movies {
		filmIdx, ok := filmEnc.Encode(m.FilmCode)
		if !ok {
			continue
		}
		labelIdx, ok := labelEnc.Encode(m.Label)
		if !ok {
			continue
		}
		examples = append(examples, model.TrainingExample{
			Film:   filmIdx,
			Label:  labelIdx,
			Rating: (m.Rating - minR) / (maxR - minR),
		})
	}

	rng := rand.New(rand.NewSource(c.Seed))
	rng.Shuffle(len(examples), func(i, j int) {
		examples[i], examples[j] = examples[j], examples[i]
	})

	return &Interactions{
		FilmCodes: filmEnc,
		Labels:    labelEnc,
		Examples:  examples,
		MinRating: minR,
		MaxRating: maxR,
	}, nil
}

// Split 按固定比例做位置切分，返回 (train, val)。
// 返回的切片与 Examples 共享底层数组，调用方不应修改。
func (in *Interactions) Split(fraction float64) ([]model.TrainingExample, []model.TrainingExample) {
	if fraction <= 0 || fraction >= 1 {
		fraction = 0.8
	}
	cut := int(fraction * float64(len(in.Examples)))
	return in.Examples[:cut], in.Examples[cut:]
}

// PairSet 返回训练样本覆盖的 (film, label) 配对集合，
// 供召回侧按需剔除已训练配对。
func (in *Interactions) PairSet() map[int]map[int]struct{} {
	out := make(map[int]map[int]struct{})
	for _, ex := range in.Examples {
		labels, ok := out[ex.Film]
		if !ok {
			labels = make(map[int]struct{})
			out[ex.Film] = labels
		}
		labels[ex.Label] = struct{}{}
	}
	return out
}

// Denormalize 把 [0,1] 的预测分还原到原始评分尺度。
func (in *Interactions) Denormalize(score float64) float64 {
	return in.MinRating + score*(in.MaxRating-in.MinRating)
}

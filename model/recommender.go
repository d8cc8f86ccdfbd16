package model

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/rushteam/cinerec/core"
)

// Recommender 是隐因子交互模型（Embedding + 偏置 + Sigmoid）。
//
// 打分函数：
//
//	score(f, l) = sigmoid( dot(E_film[f], E_label[l]) + bias_film[f] + bias_label[l] )
//
// 两侧下标都来自同一电影全集：film 侧用紧凑标识编码，label 侧用
// 长描述标签编码。两张 Embedding 表结构对称但作为独立参数训练——
// 这是对真实 user/item 模型的刻意简化，换成真正的用户下标空间即可
// 得到标准协同过滤模型。
//
// 正则化层（训练时以固定概率随机置零预激活）只在训练路径生效，
// 推理路径恒等直通。参数只被 Trainer 在梯度步中修改，训练结束后
// 冻结只读。
type Recommender struct {
	numFilms  int
	numLabels int
	dim       int
	dropout   float64

	embedFilm  [][]float64
	embedLabel [][]float64
	biasFilm   []float64
	biasLabel  []float64

	rng *rand.Rand
}

// RecommenderConfig 是模型超参。零值字段取默认。
type RecommenderConfig struct {
	// EmbeddingDim 隐向量维度。<= 0 时取 20。
	EmbeddingDim int

	// Dropout 训练期置零预激活的概率。< 0 时取 0.30。
	Dropout float64

	// Seed 参数初始化与正则化层的随机种子。0 时取 42。
	Seed int64
}

func (c *RecommenderConfig) withDefaults() RecommenderConfig {
	out := *c
	if out.EmbeddingDim <= 0 {
		out.EmbeddingDim = 20
	}
	if out.Dropout < 0 {
		out.Dropout = 0.30
	}
	if out.Seed == 0 {
		out.Seed = 42
	}
	return out
}

// DefaultRecommenderConfig 返回默认超参（dim=20, dropout=0.30, seed=42）。
func DefaultRecommenderConfig() RecommenderConfig {
	return RecommenderConfig{EmbeddingDim: 20, Dropout: 0.30, Seed: 42}
}

// NewRecommender 创建并随机初始化模型参数。
// Embedding 用 He 初始化（正态，方差 2/dim），偏置置零。
func NewRecommender(numFilms, numLabels int, cfg RecommenderConfig) (*Recommender, error) {
	if numFilms <= 0 || numLabels <= 0 {
		return nil, core.NewDomainError(core.ModuleModel, core.ErrorCodeInvalidInput,
			fmt.Sprintf("recommender: invalid vocabulary sizes %d/%d", numFilms, numLabels))
	}
	c := cfg.withDefaults()

	m := &Recommender{
		numFilms:  numFilms,
		numLabels: numLabels,
		dim:       c.EmbeddingDim,
		dropout:   c.Dropout,
		rng:       rand.New(rand.NewSource(c.Seed)),
	}

	std := math.Sqrt(2.0 / float64(c.EmbeddingDim))
	m.embedFilm = randomTable(m.rng, numFilms, c.EmbeddingDim, std)
	m.embedLabel = randomTable(m.rng, numLabels, c.EmbeddingDim, std)
	m.biasFilm = make([]float64, numFilms)
	m.biasLabel = make([]float64, numLabels)
	return m, nil
}

func randomTable(rng *rand.Rand, rows, cols int, std float64) [][]float64 {
	table := make([][]float64, rows)
	for i := range table {
		row := make([]float64, cols)
		for j := range row {
			row[j] = rng.NormFloat64() * std
		}
		table[i] = row
	}
	return table
}

func (m *Recommender) Name() string { return "latent_factor" }

// NumFilms 返回 film 侧的编码域大小。
func (m *Recommender) NumFilms() int { return m.numFilms }

// NumLabels 返回 label 侧的编码域大小。
func (m *Recommender) NumLabels() int { return m.numLabels }

// Dim 返回隐向量维度。
func (m *Recommender) Dim() int { return m.dim }

// Score 实现 PairScorer：推理模式打分，正则化层恒等直通。
func (m *Recommender) Score(filmIdx, labelIdx int) (float64, error) {
	pre, err := m.preActivation(filmIdx, labelIdx)
	if err != nil {
		return 0, err
	}
	return sigmoid(pre), nil
}

// FilmEmbedding 返回 film 侧隐向量的拷贝（用于发布到向量服务）。
func (m *Recommender) FilmEmbedding(filmIdx int) ([]float64, error) {
	if filmIdx < 0 || filmIdx >= m.numFilms {
		return nil, core.NewDomainError(core.ModuleModel, core.ErrorCodeInvalidInput,
			fmt.Sprintf("recommender: film index %d out of range", filmIdx))
	}
	out := make([]float64, m.dim)
	copy(out, m.embedFilm[filmIdx])
	return out, nil
}

// preActivation 计算 dot + 双侧偏置，不含正则化与激活。
func (m *Recommender) preActivation(filmIdx, labelIdx int) (float64, error) {
	if filmIdx < 0 || filmIdx >= m.numFilms {
		return 0, core.NewDomainError(core.ModuleModel, core.ErrorCodeInvalidInput,
			fmt.Sprintf("recommender: film index %d out of range", filmIdx))
	}
	if labelIdx < 0 || labelIdx >= m.numLabels {
		return 0, core.NewDomainError(core.ModuleModel, core.ErrorCodeInvalidInput,
			fmt.Sprintf("recommender: label index %d out of range", labelIdx))
	}
	ef := m.embedFilm[filmIdx]
	el := m.embedLabel[labelIdx]
	var dot float64
	for k := 0; k < m.dim; k++ {
		dot += ef[k] * el[k]
	}
	return dot + m.biasFilm[filmIdx] + m.biasLabel[labelIdx], nil
}

// dropoutScale 训练路径的反向缩放系数：置零时 0，保留时 1/(1-p)。
// 推理路径不调用此函数。
func (m *Recommender) dropoutScale() float64 {
	if m.dropout <= 0 {
		return 1
	}
	if m.rng.Float64() < m.dropout {
		return 0
	}
	return 1 / (1 - m.dropout)
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

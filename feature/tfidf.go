package feature

import (
	"math"
	"sort"
	"strings"

	"github.com/rushteam/cinerec/core"
)

// SparseVector 是稀疏加权词向量：term -> weight。
// 只保存非零项；目录规模在万级时远比稠密表示省内存。
type SparseVector map[string]float64

// Dot 计算与另一个稀疏向量的点积。
func (v SparseVector) Dot(other SparseVector) float64 {
	// 遍历较小的一侧
	a, b := v, other
	if len(b) < len(a) {
		a, b = b, a
	}
	var sum float64
	for term, w := range a {
		if w2, ok := b[term]; ok {
			sum += w * w2
		}
	}
	return sum
}

// Norm 计算 L2 范数。
func (v SparseVector) Norm() float64 {
	var sum float64
	for _, w := range v {
		sum += w * w
	}
	return math.Sqrt(sum)
}

// Vectorizer 对内容 token 串做 TF-IDF 加权。
//
// 契约（与标准 TF-IDF 一致）：
//   - 词表 = 语料中全部不同的空白分隔 token，fit 后固定
//   - idf = ln((1+N) / (1+df)) + 1（平滑，避免除零且未见词不为负）
//   - 文档向量做 L2 归一化
//   - fit 后出现的新词不可见（封闭离线语料，不做 OOV 处理）
//
// 空语料（零文档或全空文档）在 fit 期即失败，不发布半成品索引。
type Vectorizer struct {
	vocab  []string
	idf    map[string]float64
	docs   int
	fitted bool
}

func NewVectorizer() *Vectorizer {
	return &Vectorizer{}
}

// Fit 在语料上拟合词表与 IDF。
func (v *Vectorizer) Fit(corpus []string) error {
	if len(corpus) == 0 {
		return core.NewDomainError(core.ModuleFeature, core.ErrorCodeEmptyCorpus,
			"tfidf: empty corpus, nothing to fit")
	}

	df := make(map[string]int)
	for _, doc := range corpus {
		seen := make(map[string]struct{})
		for _, term := range strings.Fields(doc) {
			if _, ok := seen[term]; ok {
				continue
			}
			seen[term] = struct{}{}
			df[term]++
		}
	}
	if len(df) == 0 {
		return core.NewDomainError(core.ModuleFeature, core.ErrorCodeEmptyCorpus,
			"tfidf: corpus contains no terms")
	}

	v.docs = len(corpus)
	v.vocab = make([]string, 0, len(df))
	for term := range df {
		v.vocab = append(v.vocab, term)
	}
	sort.Strings(v.vocab)

	n := float64(v.docs)
	v.idf = make(map[string]float64, len(df))
	for term, count := range df {
		v.idf[term] = math.Log((1+n)/(1+float64(count))) + 1
	}
	v.fitted = true
	return nil
}

// Transform 把文档转为 L2 归一化的 TF-IDF 稀疏向量。
// fit 时未见过的 token 被忽略；全 OOV 的文档得到零向量（合法，不报错）。
func (v *Vectorizer) Transform(corpus []string) []SparseVector {
	out := make([]SparseVector, len(corpus))
	for i, doc := range corpus {
		out[i] = v.transformOne(doc)
	}
	return out
}

// FitTransform 等价于 Fit 后 Transform 同一语料。
func (v *Vectorizer) FitTransform(corpus []string) ([]SparseVector, error) {
	if err := v.Fit(corpus); err != nil {
		return nil, err
	}
	return v.Transform(corpus), nil
}

// Vocabulary 返回 fit 时固定的词表（字典序）。
func (v *Vectorizer) Vocabulary() []string { return v.vocab }

// Fitted 返回是否已拟合。
func (v *Vectorizer) Fitted() bool { return v.fitted }

func (v *Vectorizer) transformOne(doc string) SparseVector {
	vec := make(SparseVector)
	if !v.fitted {
		return vec
	}
	for _, term := range strings.Fields(doc) {
		if idf, ok := v.idf[term]; ok {
			vec[term] += idf // tf 累加 1 次即 tf*idf 累积
		}
	}
	if norm := vec.Norm(); norm > 0 {
		for term := range vec {
			vec[term] /= norm
		}
	}
	return vec
}

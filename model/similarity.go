package model

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/cinerec/core"
	"github.com/rushteam/cinerec/feature"
)

// SimilarityMatrix 是 N×N 的余弦相似度稠密表，两个轴都以电影标签索引。
//
// 不变式：
//   - 对称：At(i,j) == At(j,i)
//   - 非退化行的对角线恰为 1.0
//   - 所有值落在 [0,1]
//   - 两部电影无公共词项时为 0.0
//
// 构建一次、只读复用；目录更新时重建新实例做原子替换，不做原地修改。
type SimilarityMatrix struct {
	labels []string
	index  map[string]int
	rows   [][]float64
}

// Labels 返回轴标签（目录顺序）。
func (m *SimilarityMatrix) Labels() []string { return m.labels }

// Len 返回矩阵维度 N。
func (m *SimilarityMatrix) Len() int { return len(m.rows) }

// At 返回第 i 行第 j 列的相似度。
func (m *SimilarityMatrix) At(i, j int) float64 { return m.rows[i][j] }

// Row 返回标签对应的整行相似度。返回的切片不可修改。
func (m *SimilarityMatrix) Row(label string) ([]float64, bool) {
	i, ok := m.index[label]
	if !ok {
		return nil, false
	}
	return m.rows[i], true
}

// Index 返回标签对应的行号。
func (m *SimilarityMatrix) Index(label string) (int, bool) {
	i, ok := m.index[label]
	return i, ok
}

// SimilarityBuilder 构建全量两两余弦相似度矩阵。
//
// O(N²) 的时间与内存在目录万级规模时是主要成本：按行块计算以约束
// 峰值内存，行块之间无共享可变状态，用 errgroup 并发执行。
type SimilarityBuilder struct {
	// BlockSize 每个行块的行数。<= 0 时取 256。
	BlockSize int

	// Workers 并发 worker 数。<= 0 时取 GOMAXPROCS。
	Workers int
}

// Build 由逐行的稀疏向量构建相似度矩阵。labels 与 vectors 按行对应。
//
// 零范数向量（无任何词项的行）与所有行的相似度为 0.0，不视为错误。
func (b *SimilarityBuilder) Build(
	ctx context.Context,
	labels []string,
	vectors []feature.SparseVector,
) (*SimilarityMatrix, error) {
	if len(labels) != len(vectors) {
		return nil, core.NewDomainError(core.ModuleModel, core.ErrorCodeInvalidInput,
			fmt.Sprintf("similarity: %d labels vs %d vectors", len(labels), len(vectors)))
	}
	n := len(vectors)
	if n == 0 {
		return nil, core.NewDomainError(core.ModuleModel, core.ErrorCodeEmptyCorpus,
			"similarity: no vectors to compare")
	}

	norms := make([]float64, n)
	for i, v := range vectors {
		norms[i] = v.Norm()
	}

	rows := make([][]float64, n)
	for i := range rows {
		rows[i] = make([]float64, n)
	}

	blockSize := b.BlockSize
	if blockSize <= 0 {
		blockSize = 256
	}
	workers := b.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	eg, _ := errgroup.WithContext(ctx)
	eg.SetLimit(workers)

	// 每个行块只写自己的行、只计算上三角，避免共享写与浮点求和
	// 顺序差异破坏对称性。
	for lo := 0; lo < n; lo += blockSize {
		lo := lo
		hi := lo + blockSize
		if hi > n {
			hi = n
		}
		eg.Go(func() error {
			for i := lo; i < hi; i++ {
				if norms[i] == 0 {
					continue
				}
				rows[i][i] = 1.0
				for j := i + 1; j < n; j++ {
					if norms[j] == 0 {
						continue
					}
					sim := vectors[i].Dot(vectors[j]) / (norms[i] * norms[j])
					rows[i][j] = clamp01(sim)
				}
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	// 镜像下三角，保证严格对称。
	for i := 0; i < n; i++ {
		for j := 0; j < i; j++ {
			rows[i][j] = rows[j][i]
		}
	}

	index := make(map[string]int, n)
	for i, label := range labels {
		if _, ok := index[label]; !ok {
			index[label] = i
		}
	}

	return &SimilarityMatrix{
		labels: labels,
		index:  index,
		rows:   rows,
	}, nil
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

package model

import (
	"fmt"
	"math"

	"github.com/rushteam/cinerec/core"
)

// TrainingExample 是一条训练样本：film 侧下标、label 侧下标、
// 归一化到 [0,1] 的偏好强度。
type TrainingExample struct {
	Film   int
	Label  int
	Rating float64
}

// EpochMetrics 是单个 epoch 结束时在两个切分上的观测指标。
type EpochMetrics struct {
	Epoch     int
	TrainLoss float64
	ValLoss   float64
	TrainRMSE float64
	ValRMSE   float64
}

// History 是训练全程的指标序列，用于收敛/过拟合诊断。
// 不收敛不是错误：调用方检查曲线自行决策。
type History struct {
	Epochs []EpochMetrics
}

// Final 返回最后一个 epoch 的指标。
func (h *History) Final() EpochMetrics {
	if len(h.Epochs) == 0 {
		return EpochMetrics{}
	}
	return h.Epochs[len(h.Epochs)-1]
}

// Trainer 以 mini-batch 梯度下降训练 Recommender。
//
// - 损失：预测分与归一化评分之间的二元交叉熵
//   （目标并非严格二值，这是已知且刻意的近似）
// - 优化器：Adam，固定学习率
// - 不做 early-stopping：始终训练配置的 epoch 数
type Trainer struct {
	// BatchSize mini-batch 大小。<= 0 时取 32。
	BatchSize int

	// Epochs 训练轮数。<= 0 时取 50。
	Epochs int

	// LearningRate 学习率。<= 0 时取 0.001。
	LearningRate float64

	// L2 Embedding 权重衰减系数。< 0 时取 0；默认 1e-4。
	L2 float64

	// Adam 动量参数。零值时取 0.9 / 0.999 / 1e-8。
	Beta1   float64
	Beta2   float64
	Epsilon float64
}

// DefaultTrainer 返回默认超参的 Trainer（batch=32, epochs=50, lr=0.001）。
func DefaultTrainer() *Trainer {
	return &Trainer{
		BatchSize:    32,
		Epochs:       50,
		LearningRate: 0.001,
		L2:           1e-4,
	}
}

// Fit 在给定切分上训练模型，返回逐 epoch 指标。
// train/val 切分由调用方（dataset 包）一次性洗牌后按位置切出，
// 每个 epoch 按固定顺序遍历，不做重新洗牌。
func (t *Trainer) Fit(m *Recommender, train, val []TrainingExample) (*History, error) {
	if m == nil {
		return nil, core.NewDomainError(core.ModuleModel, core.ErrorCodeInvalidInput,
			"trainer: nil model")
	}
	if len(train) == 0 {
		return nil, core.NewDomainError(core.ModuleModel, core.ErrorCodeInvalidInput,
			"trainer: empty training set")
	}
	for _, ex := range append(append([]TrainingExample{}, train...), val...) {
		if ex.Film < 0 || ex.Film >= m.numFilms || ex.Label < 0 || ex.Label >= m.numLabels {
			return nil, core.NewDomainError(core.ModuleModel, core.ErrorCodeInvalidInput,
				fmt.Sprintf("trainer: example index (%d,%d) out of range", ex.Film, ex.Label))
		}
		if ex.Rating < 0 || ex.Rating > 1 {
			return nil, core.NewDomainError(core.ModuleModel, core.ErrorCodeOutOfRange,
				fmt.Sprintf("trainer: rating %v outside [0,1]", ex.Rating))
		}
	}

	batchSize := t.BatchSize
	if batchSize <= 0 {
		batchSize = 32
	}
	epochs := t.Epochs
	if epochs <= 0 {
		epochs = 50
	}
	lr := t.LearningRate
	if lr <= 0 {
		lr = 0.001
	}
	l2 := t.L2
	if l2 < 0 {
		l2 = 0
	}
	beta1 := t.Beta1
	if beta1 == 0 {
		beta1 = 0.9
	}
	beta2 := t.Beta2
	if beta2 == 0 {
		beta2 = 0.999
	}
	eps := t.Epsilon
	if eps == 0 {
		eps = 1e-8
	}

	opt := newAdam(m, lr, beta1, beta2, eps)
	history := &History{Epochs: make([]EpochMetrics, 0, epochs)}

	for epoch := 1; epoch <= epochs; epoch++ {
		for start := 0; start < len(train); start += batchSize {
			end := start + batchSize
			if end > len(train) {
				end = len(train)
			}
			t.step(m, opt, train[start:end], l2)
		}

		trainLoss, trainRMSE := evaluate(m, train)
		valLoss, valRMSE := evaluate(m, val)
		history.Epochs = append(history.Epochs, EpochMetrics{
			Epoch:     epoch,
			TrainLoss: trainLoss,
			ValLoss:   valLoss,
			TrainRMSE: trainRMSE,
			ValRMSE:   valRMSE,
		})
	}

	return history, nil
}

// step 在一个 mini-batch 上累积梯度并执行一次 Adam 更新。
// 正则化层作用在预激活上：置零的样本不产生梯度，保留的样本梯度
// 按 1/(1-p) 缩放（与前向的反向缩放一致）。
func (t *Trainer) step(m *Recommender, opt *adam, batch []TrainingExample, l2 float64) {
	gradEF := make(map[int][]float64)
	gradEL := make(map[int][]float64)
	gradBF := make(map[int]float64)
	gradBL := make(map[int]float64)

	inv := 1 / float64(len(batch))
	for _, ex := range batch {
		pre, _ := m.preActivation(ex.Film, ex.Label)
		scale := m.dropoutScale()
		yhat := sigmoid(pre * scale)

		// BCE + sigmoid 的组合梯度：dL/dz = yhat - y
		dpre := (yhat - ex.Rating) * scale * inv
		if dpre == 0 {
			continue
		}

		ef := m.embedFilm[ex.Film]
		el := m.embedLabel[ex.Label]

		gf, ok := gradEF[ex.Film]
		if !ok {
			gf = make([]float64, m.dim)
			gradEF[ex.Film] = gf
		}
		gl, ok := gradEL[ex.Label]
		if !ok {
			gl = make([]float64, m.dim)
			gradEL[ex.Label] = gl
		}
		for k := 0; k < m.dim; k++ {
			gf[k] += dpre * el[k]
			gl[k] += dpre * ef[k]
		}
		gradBF[ex.Film] += dpre
		gradBL[ex.Label] += dpre
	}

	// Embedding 权重衰减只作用于本批次触达的行。
	if l2 > 0 {
		for i, g := range gradEF {
			for k := 0; k < m.dim; k++ {
				g[k] += l2 * m.embedFilm[i][k]
			}
		}
		for i, g := range gradEL {
			for k := 0; k < m.dim; k++ {
				g[k] += l2 * m.embedLabel[i][k]
			}
		}
	}

	opt.apply(m, gradEF, gradEL, gradBF, gradBL)
}

// evaluate 在推理模式下计算平均 BCE 损失与 RMSE（归一化评分尺度）。
func evaluate(m *Recommender, examples []TrainingExample) (loss, rmse float64) {
	if len(examples) == 0 {
		return 0, 0
	}
	const clip = 1e-7
	var sumLoss, sumSq float64
	for _, ex := range examples {
		yhat, _ := m.Score(ex.Film, ex.Label)
		p := math.Min(math.Max(yhat, clip), 1-clip)
		sumLoss += -(ex.Rating*math.Log(p) + (1-ex.Rating)*math.Log(1-p))
		diff := yhat - ex.Rating
		sumSq += diff * diff
	}
	n := float64(len(examples))
	return sumLoss / n, math.Sqrt(sumSq / n)
}

// adam 是按参数张量维护一阶/二阶动量的优化器状态。
// 只对本批次触达的下标做稀疏更新（lazy update）。
type adam struct {
	lr, beta1, beta2, eps float64
	t                     int

	mEF, vEF [][]float64
	mEL, vEL [][]float64
	mBF, vBF []float64
	mBL, vBL []float64
}

func newAdam(m *Recommender, lr, beta1, beta2, eps float64) *adam {
	zeros := func(rows, cols int) [][]float64 {
		out := make([][]float64, rows)
		for i := range out {
			out[i] = make([]float64, cols)
		}
		return out
	}
	return &adam{
		lr: lr, beta1: beta1, beta2: beta2, eps: eps,
		mEF: zeros(m.numFilms, m.dim), vEF: zeros(m.numFilms, m.dim),
		mEL: zeros(m.numLabels, m.dim), vEL: zeros(m.numLabels, m.dim),
		mBF: make([]float64, m.numFilms), vBF: make([]float64, m.numFilms),
		mBL: make([]float64, m.numLabels), vBL: make([]float64, m.numLabels),
	}
}

func (a *adam) apply(
	m *Recommender,
	gradEF, gradEL map[int][]float64,
	gradBF, gradBL map[int]float64,
) {
	a.t++
	c1 := 1 - math.Pow(a.beta1, float64(a.t))
	c2 := 1 - math.Pow(a.beta2, float64(a.t))

	update := func(param, mom, vel []float64, grad []float64) {
		for k, g := range grad {
			mom[k] = a.beta1*mom[k] + (1-a.beta1)*g
			vel[k] = a.beta2*vel[k] + (1-a.beta2)*g*g
			mHat := mom[k] / c1
			vHat := vel[k] / c2
			param[k] -= a.lr * mHat / (math.Sqrt(vHat) + a.eps)
		}
	}

	for i, g := range gradEF {
		update(m.embedFilm[i], a.mEF[i], a.vEF[i], g)
	}
	for i, g := range gradEL {
		update(m.embedLabel[i], a.mEL[i], a.vEL[i], g)
	}
	for i, g := range gradBF {
		a.mBF[i] = a.beta1*a.mBF[i] + (1-a.beta1)*g
		a.vBF[i] = a.beta2*a.vBF[i] + (1-a.beta2)*g*g
		m.biasFilm[i] -= a.lr * (a.mBF[i] / c1) / (math.Sqrt(a.vBF[i]/c2) + a.eps)
	}
	for i, g := range gradBL {
		a.mBL[i] = a.beta1*a.mBL[i] + (1-a.beta1)*g
		a.vBL[i] = a.beta2*a.vBL[i] + (1-a.beta2)*g*g
		m.biasLabel[i] -= a.lr * (a.mBL[i] / c1) / (math.Sqrt(a.vBL[i]/c2) + a.eps)
	}
}

package model

// PairScorer 是隐因子通道的最小抽象：输入一对稠密下标，输出预测的
// 归一化偏好分。具体实现可以是本地 Embedding 模型，也可以是远程服务。
type PairScorer interface {
	Name() string

	// Score 推理模式打分（正则化层恒等直通），输出在 (0,1) 区间。
	Score(filmIdx, labelIdx int) (float64, error)
}

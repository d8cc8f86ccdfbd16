// Package cinerec 是一个电影推荐工具包（Cinema Recommender Kit）。
//
// 设计要点：
// - 双通道：内容相似度（TF-IDF + 余弦矩阵）与隐因子模型（Embedding + 偏置）各自独立构建、独立查询
// - Pipeline-first: 推荐逻辑通过 Node 串联（Recall → Filter → Rank → ReRank）
// - Labels-first: labels 全链路透传与标准化 merge，支持 explain / 观测 / 策略驱动
// - 构建一次、只读复用：相似度矩阵与训练后的模型参数发布后不可变，重建采用原子替换
package cinerec

import "github.com/rushteam/cinerec/pipeline"

// 轻量 facade：便于用户直接 import "cinerec" 使用核心抽象。
type Pipeline = pipeline.Pipeline
type Node = pipeline.Node
type Kind = pipeline.Kind

const (
	KindRecall      = pipeline.KindRecall
	KindFilter      = pipeline.KindFilter
	KindRank        = pipeline.KindRank
	KindReRank      = pipeline.KindReRank
	KindPostProcess = pipeline.KindPostProcess
)

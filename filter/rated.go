package filter

import (
	"context"
	"strconv"

	"github.com/rushteam/cinerec/core"
)

// RatedFilter 是已评分过滤器：过滤掉用户已经打过分的电影，
// 避免把看过的片子再推一遍。
//
// 支持两种数据源：
//  1. 内存集合（离线评估 / 单机演示）- 直接传入 RatedIDs
//  2. 存储后端（在线服务）- 通过 RatedStore 按用户读取
type RatedFilter struct {
	// RatedIDs 内存数据源：已评分电影 ID 集合
	RatedIDs map[int64]struct{}

	// Store 存储数据源（可选，优先级高于 RatedIDs）
	Store RatedStore

	// KeyPrefix 是 Store 中的 key 前缀，实际 key 为 {KeyPrefix}:{UserID}
	KeyPrefix string
}

// RatedStore 是用户评分历史的存储接口。
type RatedStore interface {
	// GetRatedMovies 获取用户已评分的电影 ID 列表
	GetRatedMovies(ctx context.Context, userID string, keyPrefix string) ([]int64, error)
}

func (f *RatedFilter) Name() string {
	return "filter.rated"
}

func (f *RatedFilter) ShouldFilter(
	ctx context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return false, nil
	}

	if f.Store != nil && rctx != nil && rctx.UserID != "" {
		keyPrefix := f.KeyPrefix
		if keyPrefix == "" {
			keyPrefix = "user:rated"
		}
		ids, err := f.Store.GetRatedMovies(ctx, rctx.UserID, keyPrefix)
		if err != nil {
			// 未命中或读取失败时放行，过滤失效不应打断推荐
			return false, nil
		}
		for _, id := range ids {
			if item.ID == id {
				return true, nil
			}
		}
		return false, nil
	}

	if f.RatedIDs != nil {
		_, ok := f.RatedIDs[item.ID]
		return ok, nil
	}
	return false, nil
}

// StoreAdapter 将 core.KeyValueStore 适配为 RatedStore。
// 评分明细存在 Hash 中：key 为 {keyPrefix}:{userID}，
// field 为电影 ID，value 为评分原值。
type StoreAdapter struct {
	store core.KeyValueStore
}

// NewStoreAdapter 创建一个 core.KeyValueStore 适配器。
func NewStoreAdapter(s core.KeyValueStore) *StoreAdapter {
	return &StoreAdapter{store: s}
}

// GetRatedMovies 从 Hash 读取用户已评分的电影 ID 列表。
func (a *StoreAdapter) GetRatedMovies(ctx context.Context, userID string, keyPrefix string) ([]int64, error) {
	key := keyPrefix + ":" + userID
	fields, err := a.store.HGetAll(ctx, key)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(fields))
	for field := range fields {
		id, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// RecordRating 把一条评分写入 Hash（交互日志回写路径）。
func (a *StoreAdapter) RecordRating(ctx context.Context, keyPrefix, userID string, movieID int64, rating float64) error {
	key := keyPrefix + ":" + userID
	field := strconv.FormatInt(movieID, 10)
	value := strconv.FormatFloat(rating, 'f', -1, 64)
	return a.store.HSet(ctx, key, field, []byte(value))
}

package dataset

import (
	"context"
	"fmt"

	"github.com/rushteam/cinerec/core"
	"github.com/rushteam/cinerec/feast"
	"github.com/rushteam/cinerec/pkg/conv"
)

// FeastCatalogSource 从 Feast 在线存储拉取目录行，替代 CSV 摄入。
// 离线任务把标题、类型串、聚合评分物化到 Feast 后，目录可以直接
// 从特征仓库重建，不再依赖本地文件。
//
// 特征命名沿用约定（FeatureView:feature）：
//   - "movie_meta:title"        标题
//   - "movie_meta:genres"       '|' 分隔的类型串
//   - "movie_stats:avg_rating"  聚合评分
type FeastCatalogSource struct {
	Client feast.Client

	// EntityKey 实体键名。空时取 "movie_id"。
	EntityKey string

	// Project 项目名称（可选，为空时取客户端默认）
	Project string

	// TitleFeature / GenresFeature / RatingFeature 覆盖默认特征名
	TitleFeature  string
	GenresFeature string
	RatingFeature string
}

func (s *FeastCatalogSource) features() (title, genres, rating string) {
	title = s.TitleFeature
	if title == "" {
		title = "movie_meta:title"
	}
	genres = s.GenresFeature
	if genres == "" {
		genres = "movie_meta:genres"
	}
	rating = s.RatingFeature
	if rating == "" {
		rating = "movie_stats:avg_rating"
	}
	return
}

// Rows 按电影 ID 批量取回目录行。
// 标题缺失的实体跳过（不视为错误）；评分缺失时取 0。
func (s *FeastCatalogSource) Rows(ctx context.Context, movieIDs []int64) ([]core.CatalogRow, error) {
	if s.Client == nil {
		return nil, core.NewDomainError(core.ModuleDataset, core.ErrorCodeInvalidInput,
			"feast catalog source: client not configured")
	}
	if len(movieIDs) == 0 {
		return nil, nil
	}

	entityKey := s.EntityKey
	if entityKey == "" {
		entityKey = "movie_id"
	}
	titleFeat, genresFeat, ratingFeat := s.features()

	entityRows := make([]map[string]interface{}, 0, len(movieIDs))
	for _, id := range movieIDs {
		entityRows = append(entityRows, map[string]interface{}{entityKey: id})
	}

	resp, err := s.Client.GetOnlineFeatures(ctx, &feast.GetOnlineFeaturesRequest{
		Features:   []string{titleFeat, genresFeat, ratingFeat},
		EntityRows: entityRows,
		Project:    s.Project,
	})
	if err != nil {
		return nil, fmt.Errorf("feast catalog source: %w", err)
	}

	rows := make([]core.CatalogRow, 0, len(resp.FeatureVectors))
	for i, fv := range resp.FeatureVectors {
		if i >= len(movieIDs) {
			break
		}
		title, ok := conv.ToString(fv.Values[titleFeat])
		if !ok || title == "" {
			continue
		}
		genres, _ := conv.ToString(fv.Values[genresFeat])
		rating, _ := conv.ToFloat64(fv.Values[ratingFeat])
		rows = append(rows, core.CatalogRow{
			ID:     movieIDs[i],
			Title:  title,
			Genres: genres,
			Rating: rating,
		})
	}
	return rows, nil
}

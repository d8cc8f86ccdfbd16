// Package dataset 负责离线数据摄入：目录 CSV、交互日志 CSV，
// 以及训练样本的编码/归一化/切分。所有产物构建一次后不可变。
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/rushteam/cinerec/core"
)

// MovieRow 是目录 CSV 的一行：movieId,title,genres（'|' 分隔）。
type MovieRow struct {
	ID     int64
	Title  string
	Genres string
}

// RatingRow 是交互日志 CSV 的一行：userId,movieId,rating,timestamp。
type RatingRow struct {
	UserID    int64
	MovieID   int64
	Rating    float64
	Timestamp int64
}

// 评分的合法区间。超界评分在摄入期拒绝而非截断，避免污染
// 归一化后的 [0,1] 不变式。
const (
	MinRating = 0.5
	MaxRating = 5.0
)

// LoadMovies 读取目录 CSV（带表头）。
func LoadMovies(path string) ([]MovieRow, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open movies: %w", err)
	}
	defer file.Close()
	return ReadMovies(file)
}

// ReadMovies 从 reader 解析目录行。
func ReadMovies(r io.Reader) ([]MovieRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	var rows []MovieRow
	first := true
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read movies: %w", err)
		}
		if first {
			first = false
			continue // 表头
		}
		if len(record) < 3 {
			return nil, core.NewDomainError(core.ModuleDataset, core.ErrorCodeInvalidInput,
				fmt.Sprintf("dataset: malformed movie row %v", record))
		}
		id, err := strconv.ParseInt(record[0], 10, 64)
		if err != nil {
			return nil, core.NewDomainError(core.ModuleDataset, core.ErrorCodeInvalidInput,
				fmt.Sprintf("dataset: invalid movie id %q", record[0]))
		}
		rows = append(rows, MovieRow{
			ID:     id,
			Title:  record[1],
			Genres: record[2],
		})
	}
	return rows, nil
}

// LoadRatings 读取交互日志 CSV（带表头），摄入期校验评分区间。
func LoadRatings(path string) ([]RatingRow, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ratings: %w", err)
	}
	defer file.Close()
	return ReadRatings(file)
}

// ReadRatings 从 reader 解析交互日志行。
func ReadRatings(r io.Reader) ([]RatingRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	var rows []RatingRow
	first := true
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read ratings: %w", err)
		}
		if first {
			first = false
			continue // 表头
		}
		if len(record) < 4 {
			return nil, core.NewDomainError(core.ModuleDataset, core.ErrorCodeInvalidInput,
				fmt.Sprintf("dataset: malformed rating row %v", record))
		}
		userID, err := strconv.ParseInt(record[0], 10, 64)
		if err != nil {
			return nil, core.NewDomainError(core.ModuleDataset, core.ErrorCodeInvalidInput,
				fmt.Sprintf("dataset: invalid user id %q", record[0]))
		}
		movieID, err := strconv.ParseInt(record[1], 10, 64)
		if err != nil {
			return nil, core.NewDomainError(core.ModuleDataset, core.ErrorCodeInvalidInput,
				fmt.Sprintf("dataset: invalid movie id %q", record[1]))
		}
		rating, err := strconv.ParseFloat(record[2], 64)
		if err != nil {
			return nil, core.NewDomainError(core.ModuleDataset, core.ErrorCodeInvalidInput,
				fmt.Sprintf("dataset: invalid rating %q", record[2]))
		}
		if rating < MinRating || rating > MaxRating {
			return nil, core.NewDomainError(core.ModuleDataset, core.ErrorCodeOutOfRange,
				fmt.Sprintf("dataset: rating %v outside [%v, %v]", rating, MinRating, MaxRating))
		}
		ts, err := strconv.ParseInt(record[3], 10, 64)
		if err != nil {
			return nil, core.NewDomainError(core.ModuleDataset, core.ErrorCodeInvalidInput,
				fmt.Sprintf("dataset: invalid timestamp %q", record[3]))
		}
		rows = append(rows, RatingRow{
			UserID:    userID,
			MovieID:   movieID,
			Rating:    rating,
			Timestamp: ts,
		})
	}
	return rows, nil
}

// BuildCatalog 把目录行与交互日志合并为目录快照。
//
// 与离线数据准备的约定一致：只保留出现在交互日志中的电影，顺序为
// 日志中首次出现的顺序，聚合评分取该电影的首条评分。
func BuildCatalog(movies []MovieRow, ratings []RatingRow) (*core.Catalog, error) {
	byID := make(map[int64]MovieRow, len(movies))
	for _, m := range movies {
		if _, ok := byID[m.ID]; !ok {
			byID[m.ID] = m
		}
	}

	var rows []core.CatalogRow
	seen := make(map[int64]struct{}, len(movies))
	for _, r := range ratings {
		if _, ok := seen[r.MovieID]; ok {
			continue
		}
		m, ok := byID[r.MovieID]
		if !ok {
			continue // 日志里出现但目录缺失的电影直接跳过
		}
		seen[r.MovieID] = struct{}{}
		rows = append(rows, core.CatalogRow{
			ID:     m.ID,
			Title:  m.Title,
			Genres: m.Genres,
			Rating: r.Rating,
		})
	}

	if len(rows) == 0 {
		return nil, core.NewDomainError(core.ModuleDataset, core.ErrorCodeEmptyCorpus,
			"dataset: no rated movies to build catalog from")
	}
	return core.NewCatalog(rows)
}

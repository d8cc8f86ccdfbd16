package core

import (
	"fmt"
	"strings"
)

// CatalogRow 是目录的外部输入行：id + 标题 + 以 '|' 分隔的类型串 + 聚合评分。
type CatalogRow struct {
	ID     int64
	Title  string
	Genres string
	Rating float64
}

// Catalog 是电影目录的不可变快照。
//
// 设计要点：
//   - 构建一次，只读复用；增量更新时重建新实例做原子替换
//   - 标题查询走类型化索引（lower(title) -> *Movie），O(1)，不做逐行扫描
//   - 标题冲突时保留第一条（与输入顺序一致）
type Catalog struct {
	movies     []*Movie
	byID       map[int64]*Movie
	byTitle    map[string]*Movie
	byLabel    map[string]*Movie
	byFilmCode map[string]*Movie
}

// NewCatalog 从输入行构建目录快照。
//
// 规则：
//   - 按 ID 去重，保留首次出现的行
//   - 类型串按 '|' 切分，去重且保持顺序，标签原样使用（不归一大小写）
//   - 空标题或非正 ID 视为目录损坏，构建中止（INVALID_INPUT）
func NewCatalog(rows []CatalogRow) (*Catalog, error) {
	c := &Catalog{
		movies:     make([]*Movie, 0, len(rows)),
		byID:       make(map[int64]*Movie, len(rows)),
		byTitle:    make(map[string]*Movie, len(rows)),
		byLabel:    make(map[string]*Movie, len(rows)),
		byFilmCode: make(map[string]*Movie, len(rows)),
	}

	for _, row := range rows {
		if row.ID <= 0 {
			return nil, NewDomainError(ModuleCatalog, ErrorCodeInvalidInput,
				fmt.Sprintf("catalog: invalid movie id %d", row.ID))
		}
		if strings.TrimSpace(row.Title) == "" {
			return nil, NewDomainError(ModuleCatalog, ErrorCodeInvalidInput,
				fmt.Sprintf("catalog: empty title for movie id %d", row.ID))
		}
		if _, ok := c.byID[row.ID]; ok {
			continue
		}

		m := &Movie{
			ID:          row.ID,
			Title:       row.Title,
			Genres:      splitGenres(row.Genres),
			TitleLength: len(row.Title),
			Rating:      row.Rating,
		}
		m.FilmCode = filmCode(m.Title, len(c.movies))
		m.Label = m.Title + " (" + m.GenreString() + ")"

		c.movies = append(c.movies, m)
		c.byID[m.ID] = m
		lower := strings.ToLower(m.Title)
		if _, ok := c.byTitle[lower]; !ok {
			c.byTitle[lower] = m
		}
		if _, ok := c.byLabel[m.Label]; !ok {
			c.byLabel[m.Label] = m
		}
		// 目录序号后缀保证唯一，直接写入
		c.byFilmCode[m.FilmCode] = m
	}

	return c, nil
}

// Movies 返回目录顺序的电影列表。返回的切片不可修改。
func (c *Catalog) Movies() []*Movie { return c.movies }

// Len 返回目录中的电影数。
func (c *Catalog) Len() int { return len(c.movies) }

// ByID 按电影 ID 查询。
func (c *Catalog) ByID(id int64) (*Movie, bool) {
	m, ok := c.byID[id]
	return m, ok
}

// ByTitle 按标题精确查询，大小写不敏感。冲突时返回第一条。
func (c *Catalog) ByTitle(title string) (*Movie, bool) {
	m, ok := c.byTitle[strings.ToLower(title)]
	return m, ok
}

// ByLabel 按长描述标签精确查询。
func (c *Catalog) ByLabel(label string) (*Movie, bool) {
	m, ok := c.byLabel[label]
	return m, ok
}

// ByFilmCode 按紧凑标识查询。Embedding 发布路径对每个编码各查一次，
// 必须是 O(1)。
func (c *Catalog) ByFilmCode(code string) (*Movie, bool) {
	m, ok := c.byFilmCode[code]
	return m, ok
}

// splitGenres 按 '|' 切分类型串，去重且保持顺序。
func splitGenres(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, "|")
	out := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

package core

import (
	"fmt"
	"strings"
)

// Movie 是目录中的一部电影。目录构建完成后即不可变：
// 内容管线（分词、向量化、相似度）只读取，不修改。
type Movie struct {
	// ID 是目录中的唯一电影 ID（来自 movieId 列）
	ID int64

	// Title 是电影标题（含年份，如 "Toy Story (1995)"）
	Title string

	// Genres 是类型标签，保持输入顺序、去重，不做大小写归一
	Genres []string

	// TitleLength 是标题字符数，作为内容特征中的数值 token
	TitleLength int

	// Rating 是该电影的聚合评分（来自交互日志的首条评分）
	Rating float64

	// FilmCode 是紧凑的人读标识：标题首词前三个字符大写 + 目录序号，
	// 如 "TOY0"。与 Label 各自独立编码，不可混用。
	FilmCode string

	// Label 是长描述标签："Title (Genre1 Genre2 ...)"
	Label string
}

// GenreString 返回空格连接的类型标签（用于展示与 Label 构造）。
func (m *Movie) GenreString() string {
	return strings.Join(m.Genres, " ")
}

// filmCode 由标题与目录序号推导紧凑标识。
// 标题首词不足三个字符时取全部。
func filmCode(title string, index int) string {
	word := title
	if i := strings.IndexByte(title, ' '); i > 0 {
		word = title[:i]
	}
	if len(word) > 3 {
		word = word[:3]
	}
	return strings.ToUpper(word) + fmt.Sprintf("%d", index)
}

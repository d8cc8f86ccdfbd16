package feature

import (
	"strconv"
	"strings"

	"github.com/rushteam/cinerec/core"
)

// ComposeContentTokens 把一部电影的内容特征组合为单个 token 串：
// 空格连接的类型标签 + 标题长度字面量，例如
// "Adventure Animation Children 16"。
//
// 契约：纯函数、确定性；类型标签按给定顺序原样使用，不做大小写
// 或标点归一化。标题长度作为数值 token 参与词表，让"标题形状"
// 相近的电影在向量空间中靠近。
func ComposeContentTokens(genres []string, title string) string {
	var b strings.Builder
	for i, g := range genres {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(g)
	}
	if b.Len() > 0 {
		b.WriteByte(' ')
	}
	b.WriteString(strconv.Itoa(len(title)))
	return b.String()
}

// ComposeCatalog 按目录顺序为每部电影生成内容 token 串。
// 输出顺序与 catalog.Movies() 一致，供 Vectorizer 按行对应。
func ComposeCatalog(catalog *core.Catalog) []string {
	movies := catalog.Movies()
	docs := make([]string, len(movies))
	for i, m := range movies {
		docs[i] = ComposeContentTokens(m.Genres, m.Title)
	}
	return docs
}

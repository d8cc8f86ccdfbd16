package feature

// IdentityEncoding 是标签与稠密下标之间的双射：label -> index 与
// index -> label，按首次出现顺序构建一次，之后只读。
//
// 隐因子模型的 Embedding 表要求从 0 开始的连续下标；交互日志中
// 观测到的标签集合决定定义域（不是完整目录）。
//
// 注意：紧凑标识（film code）与长描述标签（display label）各建
// 各的编码，两套下标不可混用。
type IdentityEncoding struct {
	toIndex map[string]int
	toLabel []string
}

// NewIdentityEncoding 按首次出现顺序对标签去重编码。
func NewIdentityEncoding(labels []string) *IdentityEncoding {
	e := &IdentityEncoding{
		toIndex: make(map[string]int, len(labels)),
		toLabel: make([]string, 0, len(labels)),
	}
	for _, label := range labels {
		if _, ok := e.toIndex[label]; ok {
			continue
		}
		e.toIndex[label] = len(e.toLabel)
		e.toLabel = append(e.toLabel, label)
	}
	return e
}

// Encode 返回标签的稠密下标。
func (e *IdentityEncoding) Encode(label string) (int, bool) {
	idx, ok := e.toIndex[label]
	return idx, ok
}

// Decode 返回下标对应的标签。
func (e *IdentityEncoding) Decode(index int) (string, bool) {
	if index < 0 || index >= len(e.toLabel) {
		return "", false
	}
	return e.toLabel[index], true
}

// Len 返回编码域大小（观测到的不同标签数）。
func (e *IdentityEncoding) Len() int { return len(e.toLabel) }

// Labels 返回编码顺序的标签列表。返回的切片不可修改。
func (e *IdentityEncoding) Labels() []string { return e.toLabel }

package domain

// Variant 是某个读音分组下的一种写法（surface form）及使用它的菜谱 ID。
type Variant struct {
	Surface   string   `json:"surface"`
	RecipeIDs []string `json:"recipe_ids"` // 升序、去重
}

// PhoneticGroup 是共享同一读音 key 的写法集合。
//
// 只有 len(Variants) > 1 的分组才会对外报告（表記ゆれ）。
type PhoneticGroup struct {
	Key      string    `json:"key"`
	Variants []Variant `json:"variants"` // 按 Surface 字典序
}

package domain

// Recipe 是从目录文档（catalog）中解析出的一条菜谱记录。
//
// 约束：
// - ID 非空，且在一次解析结果中作为主键使用
// - 可选字段缺失时取零值（空串/空切片），记录本身不会被丢弃
// - 创建后不再修改（由 catalog.Index 持有）
type Recipe struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Reading   string   `json:"reading"`
	Genre     string   `json:"genre"`
	Materials []string `json:"materials"`
	Image     string   `json:"image"`
}

// EmptyRecipe 返回“未找到”时使用的零值记录（materials 为 [] 而不是 null）。
func EmptyRecipe() Recipe {
	return Recipe{Materials: []string{}}
}

package domain

// PageFile 是批处理扫描到的一个菜谱页文件。
type PageFile struct {
	AbsPath string
	RelPath string // 相对扫描根目录，作为 report 中的 file
	Size    int64
}

// GeneratedPage 是从已生成的菜谱页反向解析出的内容。
type GeneratedPage struct {
	Name      string   `json:"name"`
	Genre     string   `json:"genre"`
	Materials []string `json:"materials"`
	Steps     []string `json:"steps"`
	Image     string   `json:"image"`
}

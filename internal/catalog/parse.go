package catalog

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/John-Robertt/recipekit/internal/domain"
)

// GenreCellIndex 是 genre 所在单元格的位置（第 4 个 td，0 起算为 3）。
//
// 这是对目录文档版式的结构性假设，而不是语义查找：版式变化会直接导致 genre 取错。
// 不要改成“按表头查找”之类的容错逻辑，否则会悄悄改变既有行为。
const GenreCellIndex = 3

const (
	rowSelector     = "tr[data-id]"
	idAttr          = "data-id"
	nameSelector    = ".recipe-name a"
	readingSelector = ".recipe-name .hidden-reading"
	materialClass   = ".material"
)

// Parse 把目录文档解析为 Recipe 列表（按文档顺序）。
//
// 约束：
// - 只处理带 data-id 的行；没有 data-id（或 data-id 为空白）的行直接忽略
// - 子元素缺失一律降级为空串/空切片，不报错
// - 不校验 ID 唯一性（由 Index 决定覆盖策略）
//
// 只有文档本身无法读取/解析时才返回 error。
func Parse(r io.Reader) ([]domain.Recipe, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Recipe, 0, 64)
	doc.Find(rowSelector).Each(func(_ int, row *goquery.Selection) {
		rec, ok := parseRow(row)
		if !ok {
			return
		}
		out = append(out, rec)
	})
	return out, nil
}

// ParseFile 读取完整文件后再解析（文件句柄不会跨越解析过程）。
func ParseFile(path string) ([]domain.Recipe, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取 catalog 失败：%w", err)
	}
	recs, err := Parse(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("解析 catalog 失败：%q：%w", path, err)
	}
	return recs, nil
}

func parseRow(row *goquery.Selection) (domain.Recipe, bool) {
	id, ok := row.Attr(idAttr)
	if !ok {
		return domain.Recipe{}, false
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Recipe{}, false
	}

	rec := domain.EmptyRecipe()
	rec.ID = id
	rec.Name = strippedText(row.Find(nameSelector).First())
	rec.Reading = strippedText(row.Find(readingSelector).First())

	if cell := row.Find("td").Eq(GenreCellIndex); cell.Length() > 0 {
		rec.Genre = strippedText(cell)
	}

	seen := make(map[string]struct{}, 8)
	row.Find(materialClass).Each(func(_ int, s *goquery.Selection) {
		m := strippedText(s)
		if m == "" {
			return
		}
		if _, dup := seen[m]; dup {
			return
		}
		seen[m] = struct{}{}
		rec.Materials = append(rec.Materials, m)
	})

	// 只看第一个 img：它没有 src 时不再回退到后面的图片。
	if src, ok := row.Find("img").First().Attr("src"); ok {
		rec.Image = baseName(src)
	}
	return rec, true
}

// strippedText 把每个文本节点 trim 后直接拼接（不插入分隔符）。
// 与 normSpace 不同：相邻节点之间的空白会被整体去掉。
func strippedText(s *goquery.Selection) string {
	if s == nil || s.Length() == 0 {
		return ""
	}
	var b strings.Builder
	for _, n := range s.Nodes {
		appendText(&b, n)
	}
	return b.String()
}

func appendText(b *strings.Builder, n *html.Node) {
	if n.Type == html.TextNode {
		b.WriteString(strings.TrimSpace(n.Data))
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		appendText(b, c)
	}
}

// baseName 取最后一个 '/' 之后的部分；"images/" 这类以 '/' 结尾的路径得到空串。
func baseName(src string) string {
	src = strings.TrimSpace(src)
	if i := strings.LastIndex(src, "/"); i >= 0 {
		return src[i+1:]
	}
	return src
}

// Package restructure 把菜谱页中“材料 | 作り方”两列表格改写为上下堆叠的两个单列分区。
//
// 改写只作用于表格内部：表格的开/闭标签原样保留，表格以外的字节一概不动。
// 输出不再含有 thead，因此再次执行时不会被识别为两列表格（幂等）。
package restructure

import (
	"bytes"
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	DefaultTableClass       = "recipe-table"
	DefaultIngredientsLabel = "ingredients"
	DefaultStepsLabel       = "steps"
)

// Options 控制哪些表格参与改写以及分区标题。
//
// TableClass 为空表示不按 class 过滤（任何表格都是候选）。
// 标签为空时使用默认值。
type Options struct {
	TableClass       string
	IngredientsLabel string
	StepsLabel       string
}

func DefaultOptions() Options {
	return Options{
		TableClass:       DefaultTableClass,
		IngredientsLabel: DefaultIngredientsLabel,
		StepsLabel:       DefaultStepsLabel,
	}
}

func (o Options) withDefaults() Options {
	o.TableClass = strings.TrimSpace(o.TableClass)
	if strings.TrimSpace(o.IngredientsLabel) == "" {
		o.IngredientsLabel = DefaultIngredientsLabel
	}
	if strings.TrimSpace(o.StepsLabel) == "" {
		o.StepsLabel = DefaultStepsLabel
	}
	return o
}

// Restructure 返回改写后的内容；没有可改写的表格时原样返回 src（逐字节相同）。
func Restructure(src []byte, opts Options) []byte {
	out, _ := Changed(src, opts)
	return out
}

// Changed 与 Restructure 相同，但额外返回内容是否发生变化。
func Changed(src []byte, opts Options) ([]byte, bool) {
	opts = opts.withDefaults()

	spans := tableSpans(src)
	if len(spans) == 0 {
		return src, false
	}

	var (
		b       bytes.Buffer
		last    int
		touched bool
	)
	for _, sp := range spans {
		if opts.TableClass != "" && !hasClass(sp.class, opts.TableClass) {
			continue
		}
		inner, ok := rebuild(src[sp.start:sp.end], opts)
		if !ok {
			continue
		}
		if !touched {
			b.Grow(len(src))
		}
		b.Write(src[last:sp.openEnd])
		b.WriteString(inner)
		b.Write(src[sp.closeStart:sp.end])
		last = sp.end
		touched = true
	}
	if !touched {
		return src, false
	}
	b.Write(src[last:])

	out := b.Bytes()
	if bytes.Equal(out, src) {
		return src, false
	}
	return out, true
}

// rebuild 解析单个表格并生成新的内部内容。
// ok=false 表示该表格不是“thead + 单个 tbody”的两列结构（包括已改写过的表格）。
func rebuild(table []byte, opts Options) (string, bool) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(table))
	if err != nil {
		return "", false
	}
	t := doc.Find("table").First()
	if t.Length() == 0 {
		return "", false
	}

	heads := t.ChildrenFiltered("thead")
	bodies := t.ChildrenFiltered("tbody")
	if heads.Length() != 1 || bodies.Length() != 1 {
		return "", false
	}
	if heads.Find("tr").First().ChildrenFiltered("th, td").Length() != 2 {
		return "", false
	}

	// 单元格内容取自原始字节（逐字节保留引号、实体与 void 标签的写法）；
	// 原始结构与解析树的行数对不上时，退回到 goquery 的序列化结果。
	lay := tableLayout(table)
	trs := bodies.ChildrenFiltered("tr")
	aligned := len(lay.rows) == trs.Length()

	var materials, steps []string
	trs.Each(func(i int, tr *goquery.Selection) {
		cells := tr.Children()
		if cells.Length() != 2 || cells.Filter("td").Length() != 2 {
			// 不是严格的两格行：跳过（容忍杂散标记）。
			return
		}
		m, st := cellHTML(cells.Eq(0)), cellHTML(cells.Eq(1))
		if aligned && isTwoTD(lay.rows[i]) {
			m, st = rawCell(table, lay.rows[i][0]), rawCell(table, lay.rows[i][1])
		}
		if m != "" {
			materials = append(materials, "<tr><td>"+m+"</td></tr>")
		}
		if st != "" {
			steps = append(steps, "<tr><td>"+st+"</td></tr>")
		}
	})

	var b strings.Builder
	seen := map[string]int{}
	writePart := func(_ int, s *goquery.Selection) {
		name := goquery.NodeName(s)
		n := seen[name]
		seen[name]++
		b.WriteString("\n")
		if raw, ok := rawPart(table, lay.parts, name, n); ok {
			b.WriteString(raw)
			return
		}
		if h, err := goquery.OuterHtml(s); err == nil {
			b.WriteString(h)
		}
	}
	// caption/colgroup 属于表格本身而不是 header+body 区域，保留在分区之前。
	t.ChildrenFiltered("caption, colgroup").Each(writePart)
	writeSection(&b, opts.IngredientsLabel, materials)
	writeSection(&b, opts.StepsLabel, steps)
	t.ChildrenFiltered("tfoot").Each(writePart)
	b.WriteString("\n")
	return b.String(), true
}

// writeSection 写出一个 tbody 分区；没有内容行时整个分区省略（不输出只有标题的分区）。
func writeSection(b *strings.Builder, label string, rows []string) {
	if len(rows) == 0 {
		return
	}
	b.WriteString("\n<tbody>\n\t<tr><th>")
	b.WriteString(html.EscapeString(label))
	b.WriteString("</th></tr>\n\t")
	b.WriteString(strings.Join(rows, "\n\t"))
	b.WriteString("\n</tbody>")
}

func cellHTML(s *goquery.Selection) string {
	h, err := s.Html()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(h)
}

func isTwoTD(cells []cell) bool {
	return len(cells) == 2 && cells[0].tag == "td" && cells[1].tag == "td"
}

func rawCell(table []byte, c cell) string {
	return strings.TrimSpace(string(table[c.start:c.end]))
}

// rawPart 返回第 n 个名为 name 的附属元素的原始字节。
func rawPart(table []byte, parts []part, name string, n int) (string, bool) {
	for _, p := range parts {
		if p.name != name {
			continue
		}
		if n == 0 {
			return string(table[p.start:p.end]), true
		}
		n--
	}
	return "", false
}

func hasClass(attr, class string) bool {
	for _, c := range strings.Fields(attr) {
		if c == class {
			return true
		}
	}
	return false
}

package restructure

import (
	"bytes"

	"golang.org/x/net/html"
)

// span 是一个顶层 table 元素在原始字节中的位置。
//
//	src[start:openEnd]      开标签 <table ...>
//	src[openEnd:closeStart] 内部内容
//	src[closeStart:end]     闭标签 </table>
type span struct {
	start      int
	openEnd    int
	closeStart int
	end        int
	class      string
}

// tableSpans 流式扫描 src，返回所有已闭合的顶层 table 的字节区间。
//
// tokenizer 的 Raw() 覆盖连续且不重叠的字节，累加长度即可得到精确偏移；
// script/style 等原始文本元素由 tokenizer 自己处理，其中的 "<table>" 不会被误判。
// 未闭合的 table 不返回（视为无法解码的表格）。
func tableSpans(src []byte) []span {
	z := html.NewTokenizer(bytes.NewReader(src))

	var (
		spans []span
		cur   span
		depth int
		off   int
	)
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		start := off
		off += len(z.Raw())

		switch tt {
		case html.StartTagToken:
			name, hasAttr := z.TagName()
			if string(name) != "table" {
				continue
			}
			depth++
			if depth != 1 {
				continue
			}
			cur = span{start: start, openEnd: off}
			for hasAttr {
				var key, val []byte
				key, val, hasAttr = z.TagAttr()
				if string(key) == "class" {
					cur.class = string(val)
				}
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if string(name) != "table" || depth == 0 {
				continue
			}
			depth--
			if depth == 0 {
				cur.closeStart = start
				cur.end = off
				spans = append(spans, cur)
			}
		}
	}
	return spans
}

// cell 是 tbody 行内一个单元格的内部字节区间 table[start:end]。
type cell struct {
	tag        string
	start, end int
}

// part 是表格直属的 caption/colgroup/tfoot 元素（含标签）的字节区间。
type part struct {
	name       string
	start, end int
}

// layout 是单个表格按原始字节划分的结构：tbody 行的单元格与附属元素。
type layout struct {
	rows  [][]cell
	parts []part
}

// tableLayout 流式扫描一个完整的 table（以 <table 开头），记录最外层表格中
// tbody 行的单元格内部区间，以及显式闭合的 caption/colgroup/tfoot 区间。
//
// 省略的 </td>、</tr> 按下一个单元格/行或 tbody/table 的结束来闭合；
// 嵌套表格整体算作所在单元格的内容。
func tableLayout(table []byte) layout {
	z := html.NewTokenizer(bytes.NewReader(table))

	var (
		lay    layout
		depth  int
		off    int
		inBody bool
		row    []cell
		inRow  bool
		open   *cell
		extra  *part
	)
	closeCell := func(at int) {
		if open != nil {
			open.end = at
			row = append(row, *open)
			open = nil
		}
	}
	closeRow := func(at int) {
		closeCell(at)
		if inRow {
			lay.rows = append(lay.rows, row)
		}
		row, inRow = nil, false
	}

	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		start := off
		off += len(z.Raw())
		if tt != html.StartTagToken && tt != html.EndTagToken {
			continue
		}
		raw, _ := z.TagName()
		name := string(raw)

		if name == "table" {
			if tt == html.StartTagToken {
				depth++
				continue
			}
			if depth == 1 {
				closeRow(start)
				inBody = false
			}
			if depth > 0 {
				depth--
			}
			continue
		}
		if depth != 1 {
			continue
		}

		if tt == html.StartTagToken {
			switch name {
			case "tbody":
				closeRow(start)
				inBody = true
			case "thead", "tfoot", "caption", "colgroup":
				closeRow(start)
				inBody = false
				extra = &part{name: name, start: start}
			case "tr":
				if inBody {
					closeRow(start)
					inRow = true
				}
			case "td", "th":
				if inBody && inRow {
					closeCell(start)
					open = &cell{tag: name, start: off}
				}
			}
			continue
		}

		switch name {
		case "td", "th":
			closeCell(start)
		case "tr":
			closeRow(start)
		case "tbody":
			closeRow(start)
			inBody = false
		case "thead", "tfoot", "caption", "colgroup":
			if extra != nil && extra.name == name {
				extra.end = off
				if name != "thead" {
					lay.parts = append(lay.parts, *extra)
				}
				extra = nil
			}
		}
	}
	return lay
}

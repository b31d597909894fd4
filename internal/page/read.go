package page

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/John-Robertt/recipekit/internal/domain"
	"github.com/John-Robertt/recipekit/internal/restructure"
)

const genrePrefix = "ジャンル："

// Parse 从菜谱页中取回名称、ジャンル、材料、步骤与图片名。
//
// 表格既可以是生成时的两列版式，也可以是 restructure 之后的上下分区版式；
// 分区按标题行文本（opts 中的标签）归类，标题无法识别时按出现顺序归类。
func Parse(r io.Reader, opts restructure.Options) (domain.GeneratedPage, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return domain.GeneratedPage{}, err
	}
	if opts.TableClass == "" {
		opts.TableClass = restructure.DefaultTableClass
	}
	if opts.IngredientsLabel == "" {
		opts.IngredientsLabel = restructure.DefaultIngredientsLabel
	}
	if opts.StepsLabel == "" {
		opts.StepsLabel = restructure.DefaultStepsLabel
	}

	g := domain.GeneratedPage{
		Name:      strings.TrimSpace(doc.Find("h1").First().Text()),
		Materials: []string{},
		Steps:     []string{},
	}

	doc.Find("p").EachWithBreak(func(_ int, p *goquery.Selection) bool {
		txt := strings.TrimSpace(p.Text())
		if !strings.HasPrefix(txt, genrePrefix) {
			return true
		}
		g.Genre = strings.TrimSpace(strings.TrimPrefix(txt, genrePrefix))
		return false
	})

	if src, ok := doc.Find("img[src]").First().Attr("src"); ok {
		src = strings.TrimSpace(src)
		if i := strings.LastIndex(src, "/"); i >= 0 {
			src = src[i+1:]
		}
		g.Image = src
	}

	t := doc.Find("table." + opts.TableClass).First()
	if t.ChildrenFiltered("thead").Length() > 0 {
		t.ChildrenFiltered("tbody").ChildrenFiltered("tr").Each(func(_ int, tr *goquery.Selection) {
			cells := tr.ChildrenFiltered("td")
			if cells.Length() != 2 {
				return
			}
			g.Materials = appendText(g.Materials, cells.Eq(0))
			g.Steps = appendText(g.Steps, cells.Eq(1))
		})
		return g, nil
	}

	t.ChildrenFiltered("tbody").Each(func(i int, body *goquery.Selection) {
		label := strings.TrimSpace(body.Find("tr > th").First().Text())
		var dst *[]string
		switch {
		case label == opts.IngredientsLabel:
			dst = &g.Materials
		case label == opts.StepsLabel:
			dst = &g.Steps
		case i == 0:
			dst = &g.Materials
		default:
			dst = &g.Steps
		}
		body.ChildrenFiltered("tr").ChildrenFiltered("td").Each(func(_ int, td *goquery.Selection) {
			*dst = appendText(*dst, td)
		})
	})
	return g, nil
}

// Read 读取 dir 下 id 对应的菜谱页；页面不存在时 ok=false（不是错误）。
func Read(dir, id string, opts restructure.Options) (g domain.GeneratedPage, ok bool, err error) {
	name, err := FileName(id)
	if err != nil {
		return domain.GeneratedPage{}, false, err
	}
	b, err := os.ReadFile(filepath.Join(dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return domain.GeneratedPage{}, false, nil
	}
	if err != nil {
		return domain.GeneratedPage{}, false, err
	}
	g, err = Parse(bytes.NewReader(b), opts)
	if err != nil {
		return domain.GeneratedPage{}, false, err
	}
	return g, true, nil
}

func appendText(dst []string, s *goquery.Selection) []string {
	if txt := strings.TrimSpace(s.Text()); txt != "" {
		dst = append(dst, txt)
	}
	return dst
}

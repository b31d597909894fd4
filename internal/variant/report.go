package variant

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/John-Robertt/recipekit/internal/domain"
)

// WriteReport 输出人类可读的表記ゆれ报告（顺序与 DetectUsages 一致，可复现）。
func WriteReport(w io.Writer, groups []domain.PhoneticGroup) error {
	if len(groups) == 0 {
		_, err := fmt.Fprintln(w, "表記ゆれは見つかりませんでした。")
		return err
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"読み", "表記", "使用レシピID"})
	for i, g := range groups {
		for j, v := range g.Variants {
			key := ""
			if j == 0 {
				key = g.Key
			}
			tw.AppendRow(table.Row{key, v.Surface, strings.Join(v.RecipeIDs, ", ")})
		}
		if i < len(groups)-1 {
			tw.AppendSeparator()
		}
	}

	if _, err := fmt.Fprintf(w, "表記ゆれのある材料：%d 件\n", len(groups)); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, tw.Render())
	return err
}

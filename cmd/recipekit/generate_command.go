package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/John-Robertt/recipekit/internal/catalog"
	"github.com/John-Robertt/recipekit/internal/config"
	"github.com/John-Robertt/recipekit/internal/infra/fsx"
	"github.com/John-Robertt/recipekit/internal/page"
	"github.com/John-Robertt/recipekit/internal/restructure"
)

// generated 是 generate 的逐页结果（非 TTY 时作为 JSON 数组输出）。
type generated struct {
	ID           string `json:"id"`
	Path         string `json:"path"`
	Written      bool   `json:"written"`
	Restructured bool   `json:"restructured"`
}

func newGenerateCommand(ctx *commandContext) *cobra.Command {
	var (
		ids         []string
		steps       []string
		overwrite   bool
		restructPgs bool
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "按 catalog 记录生成菜谱页（两列表格），可选地立即改写表格",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(steps) > 0 && len(ids) != 1 {
				return fail(2, errors.New("--step 只能与单个 --id 一起使用"))
			}
			eff, logger, err := ctx.load(config.CLIArgs{})
			if err != nil {
				return err
			}
			idx, err := catalog.Load(eff.Catalog, logger)
			if err != nil {
				return fail(1, err)
			}

			if len(ids) == 0 {
				ids = idx.IDs()
			}

			out := make([]generated, 0, len(ids))
			for _, id := range ids {
				rec, ok := idx.Lookup(id)
				if !ok {
					return fail(1, fmt.Errorf("catalog 中不存在 id：%q", id))
				}
				path, written, err := page.Write(eff.PagesDir, page.Data{Recipe: rec, Steps: steps, Table: eff.Table}, overwrite)
				if err != nil {
					return fail(1, fmt.Errorf("生成 %s 失败：%w", id, err))
				}
				g := generated{ID: rec.ID, Path: path, Written: written}
				if written && restructPgs {
					if g.Restructured, err = restructureInPlace(path, eff.Table); err != nil {
						return fail(1, fmt.Errorf("改写 %s 失败：%w", path, err))
					}
				}
				logger.Info("已生成菜谱页", "id", rec.ID, "path", path, "written", written, "restructured", g.Restructured)
				out = append(out, g)
			}

			if !ctx.std.outTTY {
				return writeJSON(ctx.std, out)
			}
			for _, g := range out {
				state := "kept"
				if g.Written {
					state = "written"
				}
				fmt.Fprintf(ctx.std.out, "%s %s %s\n", g.ID, state, g.Path)
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&ids, "id", nil, "只生成指定 id（可重复；默认全部）")
	cmd.Flags().StringArrayVar(&steps, "step", nil, "步骤文本（可重复；仅限单个 --id）")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "覆盖已存在的页面")
	cmd.Flags().BoolVar(&restructPgs, "restructure", false, "生成后立即改写表格")
	return cmd
}

func restructureInPlace(path string, opts restructure.Options) (bool, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	out, changed := restructure.Changed(src, opts)
	if !changed {
		return false, nil
	}
	return true, fsx.ReplaceFile(path, out)
}

package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/John-Robertt/recipekit/internal/catalog"
	"github.com/John-Robertt/recipekit/internal/config"
	"github.com/John-Robertt/recipekit/internal/domain"
	"github.com/John-Robertt/recipekit/internal/phonetic"
	"github.com/John-Robertt/recipekit/internal/variant"
)

// newReader 允许测试替换形态素解析器（IPA 词典加载较慢）。
var newReader = func() (phonetic.Reader, error) {
	return phonetic.NewKagome()
}

func newVariantsCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "variants",
		Short: "检测读音相同但写法不同的材料名（表記ゆれ）",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			eff, logger, err := ctx.load(config.CLIArgs{})
			if err != nil {
				return err
			}
			idx, err := catalog.Load(eff.Catalog, logger)
			if err != nil {
				return fail(1, err)
			}

			fallback, err := newReader()
			if err != nil {
				return fail(1, fmt.Errorf("初始化形态素解析器失败：%w", err))
			}
			reader := phonetic.MapReader{Readings: eff.Readings, Fallback: fallback}

			groups := variant.New(reader).Detect(idx.Records())
			logger.Info("表記ゆれ检测完成", "recipes", idx.Len(), "groups", len(groups))

			if asJSON || !ctx.std.outTTY {
				return writeJSON(ctx.std, groupsOrEmpty(groups))
			}
			if err := variant.WriteReport(ctx.std.out, groups); err != nil {
				return fail(1, err)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "以 JSON 输出（stdout 非 TTY 时默认如此）")
	return cmd
}

func groupsOrEmpty(gs []domain.PhoneticGroup) []domain.PhoneticGroup {
	if gs == nil {
		return []domain.PhoneticGroup{}
	}
	return gs
}

func writeJSON(s streams, v any) error {
	enc := json.NewEncoder(s.out)
	enc.SetEscapeHTML(false)
	if s.outTTY {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		return fail(1, err)
	}
	return nil
}

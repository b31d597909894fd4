package main

import (
	"github.com/spf13/cobra"

	"github.com/John-Robertt/recipekit/internal/catalog"
	"github.com/John-Robertt/recipekit/internal/config"
	"github.com/John-Robertt/recipekit/internal/domain"
)

func newRecordsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "records [id...]",
		Short: "以 JSON 输出 catalog 中的菜谱记录（未知 id 输出空记录）",
		RunE: func(cmd *cobra.Command, args []string) error {
			eff, logger, err := ctx.load(config.CLIArgs{})
			if err != nil {
				return err
			}
			idx, err := catalog.Load(eff.Catalog, logger)
			if err != nil {
				return fail(1, err)
			}

			if len(args) == 0 {
				return writeJSON(ctx.std, idx.Records())
			}
			if len(args) == 1 {
				return writeJSON(ctx.std, idx.Get(args[0]))
			}
			out := make([]domain.Recipe, 0, len(args))
			for _, id := range args {
				out = append(out, idx.Get(id))
			}
			return writeJSON(ctx.std, out)
		},
	}
}

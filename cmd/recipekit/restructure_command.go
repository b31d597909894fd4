package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/John-Robertt/recipekit/internal/app/batch"
	"github.com/John-Robertt/recipekit/internal/config"
	"github.com/John-Robertt/recipekit/internal/domain"
)

func newRestructureCommand(ctx *commandContext) *cobra.Command {
	var (
		dryRun      bool
		concurrency int
	)
	cmd := &cobra.Command{
		Use:   "restructure [dir]",
		Short: "把目录中菜谱页的两列表格改写为上下两个分区（只在内容变化时写回）",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cli := config.CLIArgs{
				DryRun:         dryRun,
				DryRunSet:      cmd.Flags().Changed("dry-run"),
				Concurrency:    concurrency,
				ConcurrencySet: cmd.Flags().Changed("concurrency"),
			}
			if len(args) == 1 {
				cli.Dir = args[0]
			}
			eff, logger, err := ctx.load(cli)
			if err != nil {
				return err
			}

			var obs batch.Observer
			if ctx.std.errTTY {
				obs = newProgressUI(ctx.std.err)
			}

			rr, err := batch.Execute(cmd.Context(), eff, logger, obs)
			if err != nil {
				return fail(1, err)
			}
			if err := emitReport(ctx.std, rr); err != nil {
				return fail(1, err)
			}
			if rr.Summary.Failed > 0 {
				return fail(1, nil)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "只统计不写回；支持 --dry-run=false 覆盖配置")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "并发处理的文件数（1-32，默认 4）")
	return cmd
}

// emitReport 遵守 stdout 契约：非 TTY 时 stdout 只输出一个 BatchReport JSON，摘要走 stderr。
func emitReport(s streams, rr domain.BatchReport) error {
	summary := fmt.Sprintf("完成：modified=%d unchanged=%d failed=%d",
		rr.Summary.Modified, rr.Summary.Unchanged, rr.Summary.Failed)
	if rr.DryRun {
		summary += "（dry-run，未写回）"
	}

	if !s.outTTY {
		enc := json.NewEncoder(s.out)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(rr); err != nil {
			return err
		}
		fmt.Fprintln(s.err, summary)
		return nil
	}

	fmt.Fprintln(s.out, summary)
	for _, it := range rr.Items {
		if it.Status != domain.StatusFailed {
			continue
		}
		fmt.Fprintf(s.err, "%s %s: %s\n", it.File, it.ErrorCode, it.ErrorMsg)
	}
	return nil
}

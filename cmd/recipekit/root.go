package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/John-Robertt/recipekit/internal/config"
	"github.com/John-Robertt/recipekit/internal/logging"
)

// streams 把 stdout/stderr 与 TTY 判断集中起来，测试可以替换。
type streams struct {
	out, err       io.Writer
	outTTY, errTTY bool
}

func newStreams() streams {
	return streams{
		out:    os.Stdout,
		err:    os.Stderr,
		outTTY: isTTY(os.Stdout),
		errTTY: isTTY(os.Stderr),
	}
}

func isTTY(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// commandContext 持有全局 flag，并负责把它们与配置文件合并。
type commandContext struct {
	std streams

	configPath string
	catalog    string
	logLevel   string
	logFormat  string
}

func (c *commandContext) load(cli config.CLIArgs) (config.EffectiveConfig, *slog.Logger, error) {
	cli.ConfigPath = c.configPath
	cli.Catalog = c.catalog
	cli.LogLevel = c.logLevel
	cli.LogFormat = c.logFormat

	cwd, err := os.Getwd()
	if err != nil {
		return config.EffectiveConfig{}, nil, fail(1, err)
	}
	eff, err := config.LoadEffective(cwd, cli)
	if err != nil {
		return config.EffectiveConfig{}, nil, fail(1, err)
	}
	logger, err := logging.New(logging.Options{Level: eff.LogLevel, Format: eff.LogFormat, Writer: c.std.err})
	if err != nil {
		return config.EffectiveConfig{}, nil, fail(1, err)
	}
	if eff.ConfigFile != "" {
		logger.Debug("已读取配置文件", "config", eff.ConfigFile)
	}
	return eff, logger, nil
}

func newRootCommand(s streams) *cobra.Command {
	ctx := &commandContext{std: s}

	root := &cobra.Command{
		Use:           "recipekit",
		Short:         "菜谱目录解析、菜谱页表格改写与表記ゆれ检测",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	root.SetOut(s.out)
	root.SetErr(s.err)

	pf := root.PersistentFlags()
	pf.StringVarP(&ctx.configPath, "config", "c", "", "配置文件路径（默认读取 <dir>/"+config.FileName+"，可选）")
	pf.StringVar(&ctx.catalog, "catalog", "", "catalog 文档路径（默认 index.html）")
	pf.StringVar(&ctx.logLevel, "log-level", "", "日志级别：debug|info|warn|error")
	pf.StringVar(&ctx.logFormat, "log-format", "", "日志格式：text|json")

	root.AddCommand(newRestructureCommand(ctx))
	root.AddCommand(newVariantsCommand(ctx))
	root.AddCommand(newRecordsCommand(ctx))
	root.AddCommand(newGenerateCommand(ctx))
	root.AddCommand(newServeCommand(ctx))
	return root
}

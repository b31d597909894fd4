package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/John-Robertt/recipekit/internal/domain"
	"github.com/John-Robertt/recipekit/internal/restructure"
	"github.com/John-Robertt/recipekit/internal/scan"
)

// FileName 是配置文件的固定文件名。
const FileName = "recipekit.toml"

const (
	// ErrCodeNotFound 表示 --config 显式指定的文件不存在。
	ErrCodeNotFound = domain.ErrCodeConfigNotFound
	// ErrCodeInvalid 表示配置文件无法读取/解析，或字段不合法。
	ErrCodeInvalid = domain.ErrCodeConfigInvalid
)

const (
	DefaultCatalog     = "index.html"
	DefaultPagesDir    = "output"
	DefaultConcurrency = 4
	DefaultListen      = "127.0.0.1:5000"
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "text"
)

// CLIArgs 只包含 CLI 暴露的入口，并保留“是否显式指定”的信息，
// 这样 --dry-run=false 才能覆盖配置中的 dry_run = true。
type CLIArgs struct {
	Dir        string
	ConfigPath string
	Catalog    string

	DryRun    bool
	DryRunSet bool

	Concurrency    int
	ConcurrencySet bool

	LogLevel  string
	LogFormat string
	Listen    string
}

// FileConfig 对应 recipekit.toml 的解析结构。
type FileConfig struct {
	Dir         string            `toml:"dir"`
	Catalog     string            `toml:"catalog"`
	PagesDir    string            `toml:"pages_dir"`
	Extension   string            `toml:"extension"`
	Recursive   bool              `toml:"recursive"`
	ExcludeDirs []string          `toml:"exclude_dirs"`
	Concurrency int               `toml:"concurrency"`
	DryRun      *bool             `toml:"dry_run"`
	Table       TableConfig       `toml:"table"`
	Readings    map[string]string `toml:"readings"`
	Log         LogConfig         `toml:"log"`
	Server      ServerConfig      `toml:"server"`
}

type TableConfig struct {
	Class            *string `toml:"class"`
	IngredientsLabel string  `toml:"ingredients_label"`
	StepsLabel       string  `toml:"steps_label"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type ServerConfig struct {
	Listen string `toml:"listen"`
}

// EffectiveConfig 是合并并做最小规范化后的最终配置（实现层直接消费，不再做二次默认/优先级判断）。
type EffectiveConfig struct {
	Dir      string // 批处理目标目录（绝对路径）
	Catalog  string // catalog 文档（绝对路径）
	PagesDir string // generate 的输出目录（绝对路径）

	Scan   scan.Options
	Table  restructure.Options
	DryRun bool

	Concurrency int
	Readings    map[string]string

	LogLevel  string
	LogFormat string
	Listen    string

	// ConfigFile 是实际读取到的配置文件；未读取时为空。
	ConfigFile string
}

// Error 是配置阶段的结构化错误（带 error_code）。
type Error struct {
	Code string
	Path string
	Err  error
}

func (e *Error) Error() string {
	switch e.Code {
	case ErrCodeNotFound:
		return fmt.Sprintf("%s：未找到配置文件 %q", e.Code, e.Path)
	case ErrCodeInvalid:
		if e.Err != nil {
			return fmt.Sprintf("%s：配置文件 %q 无效：%v", e.Code, e.Path, e.Err)
		}
		return fmt.Sprintf("%s：配置文件 %q 无效", e.Code, e.Path)
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s：%v", e.Code, e.Err)
		}
		return e.Code
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Code 从 error 中提取 error_code；若不是 *Error 则返回空串。
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// LoadEffective 发现并读取配置文件，然后与 CLI 参数合并为最终配置。
//
// 发现规则（固定）：
// 1) --config 指定：必须存在
// 2) 否则 CLI 提供 dir：尝试读取 <dir>/recipekit.toml（可选）
// 3) 否则：尝试读取 <cwd>/recipekit.toml（可选）
//
// 相对路径：CLI 给出的相对 cwd；配置文件给出的相对配置文件所在目录。
//
// 覆盖优先级（固定）：CLI > 配置文件 > 默认值。dir 最终默认为 cwd。
func LoadEffective(cwd string, cli CLIArgs) (EffectiveConfig, error) {
	cwdAbs, err := filepath.Abs(cwd)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cwd, Err: err}
	}

	var (
		cfgPath  string
		required bool
	)
	switch {
	case strings.TrimSpace(cli.ConfigPath) != "":
		cfgPath = absCleanFrom(cwdAbs, cli.ConfigPath)
		required = true
	case strings.TrimSpace(cli.Dir) != "":
		cfgPath = filepath.Join(absCleanFrom(cwdAbs, cli.Dir), FileName)
	default:
		cfgPath = filepath.Join(cwdAbs, FileName)
	}

	fc, exists, err := readFileConfig(cfgPath)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}
	if !exists && required {
		return EffectiveConfig{}, &Error{Code: ErrCodeNotFound, Path: cfgPath, Err: os.ErrNotExist}
	}
	if !exists {
		cfgPath = ""
	}

	return merge(cwdAbs, cli, fc, cfgPath)
}

func merge(cwdAbs string, cli CLIArgs, fc FileConfig, cfgPath string) (EffectiveConfig, error) {
	cfgBase := cwdAbs
	if cfgPath != "" {
		cfgBase = filepath.Dir(cfgPath)
	}
	invalid := func(err error) error {
		return &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}

	// dir：CLI > config > cwd
	dir := cwdAbs
	if strings.TrimSpace(cli.Dir) != "" {
		dir = absCleanFrom(cwdAbs, cli.Dir)
	} else if strings.TrimSpace(fc.Dir) != "" {
		dir = absCleanFrom(cfgBase, fc.Dir)
	}

	catalog := filepath.Join(cfgBase, DefaultCatalog)
	if strings.TrimSpace(cli.Catalog) != "" {
		catalog = absCleanFrom(cwdAbs, cli.Catalog)
	} else if strings.TrimSpace(fc.Catalog) != "" {
		catalog = absCleanFrom(cfgBase, fc.Catalog)
	}

	pagesDir := filepath.Join(cfgBase, DefaultPagesDir)
	if strings.TrimSpace(fc.PagesDir) != "" {
		pagesDir = absCleanFrom(cfgBase, fc.PagesDir)
	}

	// dry_run：CLI > config > 默认 false
	dryRun := false
	if cli.DryRunSet {
		dryRun = cli.DryRun
	} else if fc.DryRun != nil {
		dryRun = *fc.DryRun
	}

	concurrency := fc.Concurrency
	if cli.ConcurrencySet {
		concurrency = cli.Concurrency
	}
	if concurrency == 0 {
		concurrency = DefaultConcurrency
	}
	// 范围 [1, 32]；超出截断。
	if concurrency < 1 {
		concurrency = 1
	}
	if concurrency > 32 {
		concurrency = 32
	}

	table := restructure.DefaultOptions()
	if fc.Table.Class != nil {
		// 显式写 class = "" 表示不按 class 过滤。
		table.TableClass = strings.TrimSpace(*fc.Table.Class)
	}
	if s := strings.TrimSpace(fc.Table.IngredientsLabel); s != "" {
		table.IngredientsLabel = s
	}
	if s := strings.TrimSpace(fc.Table.StepsLabel); s != "" {
		table.StepsLabel = s
	}

	level := pick(cli.LogLevel, fc.Log.Level, DefaultLogLevel)
	switch strings.ToLower(level) {
	case "debug", "info", "warn", "error":
		level = strings.ToLower(level)
	default:
		return EffectiveConfig{}, invalid(fmt.Errorf("log.level 只能是 debug/info/warn/error，实际是 %q", level))
	}
	format := pick(cli.LogFormat, fc.Log.Format, DefaultLogFormat)
	switch strings.ToLower(format) {
	case "text", "json":
		format = strings.ToLower(format)
	default:
		return EffectiveConfig{}, invalid(fmt.Errorf("log.format 只能是 text 或 json，实际是 %q", format))
	}

	readings := make(map[string]string, len(fc.Readings))
	for k, v := range fc.Readings {
		k, v = strings.TrimSpace(k), strings.TrimSpace(v)
		if k == "" || v == "" {
			return EffectiveConfig{}, invalid(fmt.Errorf("readings 的键和值都不能为空：%q = %q", k, v))
		}
		readings[k] = v
	}

	return EffectiveConfig{
		Dir:      dir,
		Catalog:  catalog,
		PagesDir: pagesDir,
		Scan: scan.Options{
			Ext:         fc.Extension,
			Recursive:   fc.Recursive,
			ExcludeDirs: append([]string(nil), fc.ExcludeDirs...),
		},
		Table:       table,
		DryRun:      dryRun,
		Concurrency: concurrency,
		Readings:    readings,
		LogLevel:    level,
		LogFormat:   format,
		Listen:      pick(cli.Listen, fc.Server.Listen, DefaultListen),
		ConfigFile:  cfgPath,
	}, nil
}

func pick(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// absCleanFrom 以 base 为基准，把 p 变为 clean + absolute。
func absCleanFrom(base, p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	p = filepath.Clean(p)
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Clean(filepath.Join(base, p))
}

// readFileConfig 读取并解析 TOML 配置文件。
// 返回值 exists 表示该文件是否存在（不存在不算错误）。
func readFileConfig(path string) (fc FileConfig, exists bool, err error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, false, nil
		}
		return FileConfig{}, false, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return FileConfig{}, true, err
	}
	return fc, true, nil
}

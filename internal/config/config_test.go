package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path string, b []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, b, 0o644))
}

func TestLoadEffective_DefaultsWithoutConfig(t *testing.T) {
	cwd := t.TempDir()

	eff, err := LoadEffective(cwd, CLIArgs{})
	require.NoError(t, err)

	assert.Equal(t, cwd, eff.Dir)
	assert.Equal(t, filepath.Join(cwd, "index.html"), eff.Catalog)
	assert.Equal(t, filepath.Join(cwd, "output"), eff.PagesDir)
	assert.Equal(t, DefaultConcurrency, eff.Concurrency)
	assert.False(t, eff.DryRun)
	assert.Equal(t, "recipe-table", eff.Table.TableClass)
	assert.Equal(t, "ingredients", eff.Table.IngredientsLabel)
	assert.Equal(t, "info", eff.LogLevel)
	assert.Equal(t, "text", eff.LogFormat)
	assert.Equal(t, DefaultListen, eff.Listen)
	assert.Equal(t, "", eff.ConfigFile)
}

func TestLoadEffective_ExplicitConfigNotFound(t *testing.T) {
	cwd := t.TempDir()

	_, err := LoadEffective(cwd, CLIArgs{ConfigPath: "missing.toml"})
	assert.Equal(t, ErrCodeNotFound, Code(err), "err=%v", err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadEffective_InvalidTOML(t *testing.T) {
	cwd := t.TempDir()
	writeFile(t, filepath.Join(cwd, FileName), []byte("dir = [\n"))

	_, err := LoadEffective(cwd, CLIArgs{})
	assert.Equal(t, ErrCodeInvalid, Code(err), "err=%v", err)
}

func TestLoadEffective_FileValuesRelativeToConfig(t *testing.T) {
	cwd := t.TempDir()
	writeFile(t, filepath.Join(cwd, "conf", "site.toml"), []byte(`
dir = "output"
catalog = "../index.html"
extension = "htm"
recursive = true
exclude_dirs = ["old"]
concurrency = 99
dry_run = true

[table]
class = ""
ingredients_label = "材料"
steps_label = "作り方"

[readings]
"玉葱" = "タマネギ"

[log]
level = "DEBUG"
format = "json"
`))

	eff, err := LoadEffective(cwd, CLIArgs{ConfigPath: filepath.Join("conf", "site.toml")})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(cwd, "conf", "output"), eff.Dir)
	assert.Equal(t, filepath.Join(cwd, "index.html"), eff.Catalog)
	assert.Equal(t, "htm", eff.Scan.Ext)
	assert.True(t, eff.Scan.Recursive)
	assert.Equal(t, []string{"old"}, eff.Scan.ExcludeDirs)
	assert.Equal(t, 32, eff.Concurrency)
	assert.True(t, eff.DryRun)
	assert.Equal(t, "", eff.Table.TableClass)
	assert.Equal(t, "材料", eff.Table.IngredientsLabel)
	assert.Equal(t, "作り方", eff.Table.StepsLabel)
	assert.Equal(t, map[string]string{"玉葱": "タマネギ"}, eff.Readings)
	assert.Equal(t, "debug", eff.LogLevel)
	assert.Equal(t, "json", eff.LogFormat)
	assert.Equal(t, filepath.Join(cwd, "conf", "site.toml"), eff.ConfigFile)
}

func TestLoadEffective_CLIOverridesFile(t *testing.T) {
	cwd := t.TempDir()
	dir := filepath.Join(cwd, "pages")
	writeFile(t, filepath.Join(dir, FileName), []byte("dry_run = true\nconcurrency = 8\n"))

	eff, err := LoadEffective(cwd, CLIArgs{
		Dir:            "pages",
		DryRun:         false,
		DryRunSet:      true, // --dry-run=false
		Concurrency:    0,
		ConcurrencySet: true,
		Catalog:        "cat.html",
	})
	require.NoError(t, err)

	assert.Equal(t, dir, eff.Dir)
	assert.False(t, eff.DryRun)
	assert.Equal(t, DefaultConcurrency, eff.Concurrency)
	assert.Equal(t, filepath.Join(cwd, "cat.html"), eff.Catalog)
	assert.Equal(t, filepath.Join(dir, FileName), eff.ConfigFile)
}

func TestLoadEffective_InvalidLogLevel(t *testing.T) {
	cwd := t.TempDir()

	_, err := LoadEffective(cwd, CLIArgs{LogLevel: "loud"})
	assert.Equal(t, ErrCodeInvalid, Code(err))
}

func TestLoadEffective_EmptyReadingRejected(t *testing.T) {
	cwd := t.TempDir()
	writeFile(t, filepath.Join(cwd, FileName), []byte("[readings]\n\"鯖\" = \"\"\n"))

	_, err := LoadEffective(cwd, CLIArgs{})
	assert.Equal(t, ErrCodeInvalid, Code(err))
}

func TestCode_NonConfigError(t *testing.T) {
	assert.Equal(t, "", Code(os.ErrNotExist))
}

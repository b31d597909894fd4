package scan

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/John-Robertt/recipekit/internal/domain"
)

// DefaultExt 是批处理默认选择的页面扩展名。
const DefaultExt = ".html"

// Options 控制页面扫描范围。
type Options struct {
	Ext         string   // 含前导 '.'，大小写不敏感；为空时使用 DefaultExt
	Recursive   bool     // false：只看 root 这一层
	ExcludeDirs []string // 相对 root（若是绝对路径，则按绝对路径处理）
}

// ScanPages 扫描 root 下扩展名匹配的页面文件。
//
// 规则：
// - 隐藏文件（以 '.' 开头，例如原子写入的临时文件）一律跳过
// - 非递归时子目录整体跳过；递归时 ExcludeDirs 命中的目录整体跳过
//
// 注意：扫描阶段只做 stat（DirEntry.Info），不读文件内容。
func ScanPages(root string, opts Options) ([]domain.PageFile, error) {
	root = filepath.Clean(root)
	ext := normExt(opts.Ext)
	excluded := buildExcluded(root, opts.ExcludeDirs)

	files := make([]domain.PageFile, 0, 128)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		if d.IsDir() {
			if path == root {
				return nil
			}
			if !opts.Recursive || isExcluded(path, excluded) || strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}

		name := d.Name()
		if strings.HasPrefix(name, ".") {
			return nil
		}
		if strings.ToLower(filepath.Ext(name)) != ext {
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		files = append(files, domain.PageFile{
			AbsPath: path,
			RelPath: filepath.ToSlash(rel),
			Size:    info.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	// 强制稳定输出，避免不同平台/文件系统行为差异带来的不确定性。
	sort.Slice(files, func(i, j int) bool { return files[i].RelPath < files[j].RelPath })
	return files, nil
}

func normExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	// 兼容 "*.html" / "html" 这类写法。
	ext = strings.TrimPrefix(ext, "*")
	if ext == "" {
		return DefaultExt
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

func buildExcluded(root string, excludeDirs []string) []string {
	excluded := make([]string, 0, len(excludeDirs))
	for _, x := range excludeDirs {
		x = strings.TrimSpace(x)
		if x == "" {
			continue
		}
		if filepath.IsAbs(x) {
			excluded = append(excluded, filepath.Clean(x))
			continue
		}
		excluded = append(excluded, filepath.Clean(filepath.Join(root, x)))
	}
	sort.Strings(excluded)
	return excluded
}

func isExcluded(path string, excluded []string) bool {
	path = filepath.Clean(path)
	for _, base := range excluded {
		if isUnder(path, base) {
			return true
		}
	}
	return false
}

func isUnder(path, base string) bool {
	if path == base {
		return true
	}
	sep := string(filepath.Separator)
	return strings.HasPrefix(path, base+sep)
}

// Package batch 对目标目录中的菜谱页批量执行表格改写。
package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/John-Robertt/recipekit/internal/config"
	"github.com/John-Robertt/recipekit/internal/domain"
	"github.com/John-Robertt/recipekit/internal/infra/fsx"
	"github.com/John-Robertt/recipekit/internal/logging"
	"github.com/John-Robertt/recipekit/internal/restructure"
	"github.com/John-Robertt/recipekit/internal/scan"
)

var (
	// ErrDirNotFound 表示目标目录不存在：整个批处理中止。
	ErrDirNotFound = errors.New("目标目录不存在")
	// ErrNotDir 表示目标路径存在但不是目录：整个批处理中止。
	ErrNotDir = errors.New("目标路径不是目录")
)

// Execute 对 eff.Dir 下的页面逐个执行 restructure，返回对外稳定的 BatchReport。
//
// - 目录缺失/不是目录/扫描失败：返回 error（批处理中止）
// - 单个文件的读取/编码/写入失败：记为该文件 failed，继续处理其它文件
// - 只有内容确实变化时才写回（原子替换）；dry-run 只统计不写
//
// 文件之间没有共享可变状态，按 eff.Concurrency 并发处理。
func Execute(ctx context.Context, eff config.EffectiveConfig, logger *slog.Logger, obs Observer) (domain.BatchReport, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	rr := domain.BatchReport{
		Dir:       eff.Dir,
		DryRun:    eff.DryRun,
		StartedAt: time.Now().UTC(),
	}

	fi, err := os.Stat(eff.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return rr, fmt.Errorf("%w：%q", ErrDirNotFound, eff.Dir)
		}
		return rr, fmt.Errorf("读取目标目录失败：%q：%w", eff.Dir, err)
	}
	if !fi.IsDir() {
		return rr, fmt.Errorf("%w：%q", ErrNotDir, eff.Dir)
	}

	files, err := scan.ScanPages(eff.Dir, eff.Scan)
	if err != nil {
		return rr, fmt.Errorf("扫描失败：%w", err)
	}
	logger.Debug("扫描完成", "dir", eff.Dir, "files", len(files))

	if obs != nil {
		obs.OnStart(eff, len(files))
	}

	workers := eff.Concurrency
	if workers < 1 {
		workers = 1
	}

	results := make([]domain.FileResult, len(files))
	var done atomic.Int64

	// 单个文件失败不应取消其它文件，所以这里不用 errgroup.WithContext。
	var g errgroup.Group
	g.SetLimit(workers)
	for i := range files {
		f := files[i]
		g.Go(func() error {
			started := time.Now()
			res := processOne(ctx, eff, f)
			results[i] = res
			logResult(logger, res)
			if obs != nil {
				obs.OnFileDone(int(done.Add(1)), len(files), res, time.Since(started))
			}
			return nil
		})
	}
	_ = g.Wait()

	rr.Items = results
	rr.FinishedAt = time.Now().UTC()
	rr.Finalize()

	logger.Info("restructure 完成",
		"dir", eff.Dir,
		"modified", rr.Summary.Modified,
		"unchanged", rr.Summary.Unchanged,
		"failed", rr.Summary.Failed,
		"dry_run", eff.DryRun,
	)
	return rr, nil
}

func processOne(ctx context.Context, eff config.EffectiveConfig, f domain.PageFile) domain.FileResult {
	res := domain.FileResult{File: f.RelPath}

	if err := ctx.Err(); err != nil {
		return failed(res, domain.ErrCodeCanceled, err.Error())
	}

	b, err := os.ReadFile(f.AbsPath)
	if err != nil {
		return failed(res, domain.ErrCodeIOFailed, fmt.Sprintf("读取失败：%v", err))
	}
	if !utf8.Valid(b) {
		return failed(res, domain.ErrCodeUnreadableText, "不是合法的 UTF-8 文本")
	}

	out, changed := restructure.Changed(b, eff.Table)
	if !changed {
		res.Status = domain.StatusUnchanged
		return res
	}
	if !eff.DryRun {
		if err := fsx.ReplaceFile(f.AbsPath, out); err != nil {
			return failed(res, domain.ErrCodeIOFailed, fmt.Sprintf("写回失败：%v", err))
		}
	}
	res.Status = domain.StatusModified
	return res
}

func failed(res domain.FileResult, code, msg string) domain.FileResult {
	res.Status = domain.StatusFailed
	res.ErrorCode = code
	res.ErrorMsg = msg
	return res
}

func logResult(logger *slog.Logger, res domain.FileResult) {
	switch res.Status {
	case domain.StatusModified:
		logger.Info("已改写", "file", res.File)
	case domain.StatusFailed:
		logger.Warn("处理失败", "file", res.File, "error_code", res.ErrorCode, "error", res.ErrorMsg)
	default:
		logger.Debug("无变化", "file", res.File)
	}
}

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/John-Robertt/recipekit/internal/app/batch"
	"github.com/John-Robertt/recipekit/internal/config"
	"github.com/John-Robertt/recipekit/internal/domain"
)

var _ batch.Observer = (*progressUI)(nil)

// progressUI 是交互终端下的逐文件进度输出。
//
// 所有内容写到 stderr，不污染 stdout 的 JSON 输出契约；batch 层只发事件，这里决定如何展示。
type progressUI struct {
	w io.Writer

	mu        sync.Mutex
	startedAt time.Time

	total     int
	modified  int
	unchanged int
	fail      int
}

func newProgressUI(w io.Writer) *progressUI {
	return &progressUI{w: w}
}

func (p *progressUI) OnStart(eff config.EffectiveConfig, total int) {
	now := time.Now()

	p.mu.Lock()
	defer p.mu.Unlock()

	p.startedAt = now
	p.total = total

	mode := "write"
	modeHint := ""
	if eff.DryRun {
		mode = "dry-run"
		modeHint = " (不写回)"
	}

	fmt.Fprintf(p.w, "[%s] recipekit restructure (%s)\n", now.Format("15:04:05"), mode)
	fmt.Fprintln(p.w, "配置（生效）:")
	fmt.Fprintf(p.w, "  dir: %s\n", eff.Dir)
	fmt.Fprintf(p.w, "  mode: %s%s\n", mode, modeHint)
	fmt.Fprintf(p.w, "  extension: %s recursive=%s\n", eff.Scan.Ext, onOff(eff.Scan.Recursive))
	fmt.Fprintf(p.w, "  exclude_dirs: %s\n", formatStringListJSON(eff.Scan.ExcludeDirs))
	fmt.Fprintf(p.w, "  table_class: %s\n", orAny(eff.Table.TableClass))
	fmt.Fprintf(p.w, "  labels: %s / %s\n", eff.Table.IngredientsLabel, eff.Table.StepsLabel)
	fmt.Fprintf(p.w, "  concurrency: %d\n", eff.Concurrency)
	if eff.ConfigFile != "" {
		fmt.Fprintf(p.w, "  config: %s\n", eff.ConfigFile)
	}
	fmt.Fprintf(p.w, "文件: %d\n\n", total)
}

func (p *progressUI) OnFileDone(done, total int, res domain.FileResult, dur time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch res.Status {
	case domain.StatusModified:
		p.modified++
	case domain.StatusUnchanged:
		p.unchanged++
	case domain.StatusFailed:
		p.fail++
	}

	switch res.Status {
	case domain.StatusFailed:
		fmt.Fprintf(p.w, "[%d/%d] %s FAIL %s: %s (%s)\n",
			done, total, res.File, res.ErrorCode, truncate(res.ErrorMsg, 160), formatShortDuration(dur),
		)
	case domain.StatusModified:
		fmt.Fprintf(p.w, "[%d/%d] %s MOD (%s)\n", done, total, res.File, formatShortDuration(dur))
	default:
		fmt.Fprintf(p.w, "[%d/%d] %s SAME (%s)\n", done, total, res.File, formatShortDuration(dur))
	}

	if done >= total {
		fmt.Fprintf(p.w, "\n进度: done=%d/%d modified=%d unchanged=%d fail=%d elapsed=%s\n",
			done, total, p.modified, p.unchanged, p.fail, formatElapsed(time.Since(p.startedAt)),
		)
	}
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

func orAny(class string) string {
	if strings.TrimSpace(class) == "" {
		return "(any)"
	}
	return class
}

func formatStringListJSON(xs []string) string {
	// json.Marshal(nil slice) => "null"；对用户更友好的是 "[]"
	if xs == nil {
		xs = []string{}
	}
	b, err := json.Marshal(xs)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if max <= 0 || len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}

func formatShortDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

func formatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	sec := int(d.Seconds())
	h := sec / 3600
	m := (sec % 3600) / 60
	s := sec % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

package batch

import (
	"time"

	"github.com/John-Robertt/recipekit/internal/config"
	"github.com/John-Robertt/recipekit/internal/domain"
)

// Observer 用于把“进度/逐文件结果”从批处理流程中解耦出来。
//
// 约束：
// - batch 包只负责发事件，不做任何输出（避免污染 stdout 的 JSON 契约）
// - 实现必须并发安全：OnFileDone 可能来自多个 goroutine
type Observer interface {
	// OnStart 在扫描完成、开始处理文件之前调用。
	OnStart(eff config.EffectiveConfig, total int)
	// OnFileDone 在单个文件处理完成时调用；done 为已完成数（1 起算）。
	OnFileDone(done, total int, res domain.FileResult, dur time.Duration)
}

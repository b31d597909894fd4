package domain

import (
	"encoding/json"
	"sort"
	"time"
)

const (
	StatusModified  = "modified"
	StatusUnchanged = "unchanged"
	StatusFailed    = "failed"
)

const (
	ErrCodeIOFailed       = "io_failed"
	ErrCodeUnreadableText = "unreadable_text"
	ErrCodeCanceled       = "canceled"
	ErrCodeConfigNotFound = "config_not_found"
	ErrCodeConfigInvalid  = "config_invalid"
)

// BatchReport 是批量 restructure 的对外稳定输出（stdout JSON）。
type BatchReport struct {
	Dir    string `json:"dir"`
	DryRun bool   `json:"dry_run"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Summary BatchSummary `json:"summary"`
	Items   []FileResult `json:"items"`
}

type BatchSummary struct {
	Modified  int `json:"modified"`
	Unchanged int `json:"unchanged"`
	Failed    int `json:"failed"`
}

type FileResult struct {
	File      string `json:"file"`
	Status    string `json:"status"`
	ErrorCode string `json:"error_code"`
	ErrorMsg  string `json:"error_msg"`
}

// Finalize 做三件事：
// 1) 时间统一为 UTC
// 2) items 稳定排序：按 file 字典序；file=="" 的合成条目排在最后
// 3) summary 由 items 计算得出
func (r *BatchReport) Finalize() {
	r.StartedAt = r.StartedAt.UTC()
	r.FinishedAt = r.FinishedAt.UTC()
	if r.Items == nil {
		r.Items = []FileResult{}
	}

	sort.SliceStable(r.Items, func(i, j int) bool {
		a := r.Items[i].File
		b := r.Items[j].File
		if a == "" {
			return false
		}
		if b == "" {
			return true
		}
		return a < b
	})

	var s BatchSummary
	for _, it := range r.Items {
		switch it.Status {
		case StatusModified:
			s.Modified++
		case StatusUnchanged:
			s.Unchanged++
		case StatusFailed:
			s.Failed++
		}
	}
	r.Summary = s
}

// MarshalJSON 仅用于集中约束输出的稳定性。
func (r BatchReport) MarshalJSON() ([]byte, error) {
	type Alias BatchReport
	return json.Marshal(Alias(r))
}

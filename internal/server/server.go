// Package server 通过 HTTP 只读地暴露 catalog 记录。
package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/John-Robertt/recipekit/internal/catalog"
	"github.com/John-Robertt/recipekit/internal/logging"
	"github.com/John-Robertt/recipekit/internal/page"
	"github.com/John-Robertt/recipekit/internal/restructure"
)

// Options 指定已生成菜谱页的位置与表格版式。
type Options struct {
	PagesDir string
	Table    restructure.Options
}

// New 返回记录查询 handler。
//
//	GET /api/recipes        -> 升序 ID 列表
//	GET /api/recipe/{id}    -> 记录 JSON；未知 id 返回零值记录（200），调用方无需区分“未找到”
//	GET /api/generated/{id} -> 从 PagesDir 中已生成的页面解析出的内容；页面不存在时返回 {}
//
// idx 在构造后只读，handler 可被并发调用。
func New(idx *catalog.Index, opts Options, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = logging.Discard()
	}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/recipes", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, logger, idx.IDs())
	})
	mux.HandleFunc("GET /api/recipe/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, logger, idx.Get(r.PathValue("id")))
	})
	mux.HandleFunc("GET /api/generated/{id}", func(w http.ResponseWriter, r *http.Request) {
		g, ok, err := page.Read(opts.PagesDir, r.PathValue("id"), opts.Table)
		switch {
		case errors.Is(err, page.ErrInvalidID):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case err != nil:
			logger.Warn("读取生成页失败", "id", r.PathValue("id"), "error", err)
			http.Error(w, "读取生成页失败", http.StatusInternalServerError)
		case !ok:
			writeJSON(w, logger, struct{}{})
		default:
			writeJSON(w, logger, g)
		}
	})
	return logRequests(mux, logger)
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		logger.Warn("写响应失败", "error", err)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func logRequests(next http.Handler, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Debug("http",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"dur", time.Since(started),
		)
	})
}

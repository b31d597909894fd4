package catalog

import (
	"log/slog"
	"sort"

	"github.com/John-Robertt/recipekit/internal/domain"
)

// Index 是按 ID 索引的只读记录表。
//
// 由一次加载构造，之后只读；重新加载意味着构造新的 Index，而不是原地修改。
// 因此并发读取无需加锁。
type Index struct {
	byID       map[string]domain.Recipe
	ids        []string
	duplicates []string
}

// NewIndex 按顺序建立索引；重复 ID 时后出现的记录覆盖先出现的记录。
func NewIndex(records []domain.Recipe) *Index {
	idx := &Index{byID: make(map[string]domain.Recipe, len(records))}
	for _, r := range records {
		if r.ID == "" {
			continue
		}
		if _, ok := idx.byID[r.ID]; ok {
			idx.duplicates = append(idx.duplicates, r.ID)
		} else {
			idx.ids = append(idx.ids, r.ID)
		}
		idx.byID[r.ID] = r
	}
	sort.Strings(idx.ids)
	return idx
}

// Load 读取并解析 catalog 文件，返回新的 Index。
// 重复 ID 会以 WARN 记录（后者覆盖前者）。
func Load(path string, logger *slog.Logger) (*Index, error) {
	recs, err := ParseFile(path)
	if err != nil {
		return nil, err
	}
	idx := NewIndex(recs)
	if logger != nil {
		for _, id := range idx.duplicates {
			logger.Warn("catalog 中存在重复 ID，后出现的记录覆盖先出现的记录", "id", id, "catalog", path)
		}
		logger.Debug("catalog 已加载", "catalog", path, "rows", len(recs), "records", idx.Len())
	}
	return idx, nil
}

// Get 返回 id 对应的记录；未知 id 返回零值记录（不区分“未找到”与“字段为空”）。
func (x *Index) Get(id string) domain.Recipe {
	if x == nil {
		return domain.EmptyRecipe()
	}
	r, ok := x.byID[id]
	if !ok {
		return domain.EmptyRecipe()
	}
	return r
}

// Lookup 与 Get 相同，但额外返回是否存在。
func (x *Index) Lookup(id string) (domain.Recipe, bool) {
	if x == nil {
		return domain.EmptyRecipe(), false
	}
	r, ok := x.byID[id]
	if !ok {
		return domain.EmptyRecipe(), false
	}
	return r, true
}

// IDs 返回升序排列的全部 ID（副本）。
func (x *Index) IDs() []string {
	if x == nil {
		return []string{}
	}
	return append([]string{}, x.ids...)
}

// Records 按 ID 升序返回全部记录。
func (x *Index) Records() []domain.Recipe {
	if x == nil {
		return []domain.Recipe{}
	}
	out := make([]domain.Recipe, 0, len(x.ids))
	for _, id := range x.ids {
		out = append(out, x.byID[id])
	}
	return out
}

func (x *Index) Len() int {
	if x == nil {
		return 0
	}
	return len(x.ids)
}

// Duplicates 返回被覆盖过的 ID（按出现顺序，可能重复）。
func (x *Index) Duplicates() []string {
	if x == nil {
		return nil
	}
	return append([]string(nil), x.duplicates...)
}

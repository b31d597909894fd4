package variant

import (
	"sort"
	"strings"

	"github.com/John-Robertt/recipekit/internal/domain"
	"github.com/John-Robertt/recipekit/internal/phonetic"
)

// Usage 是一次“某菜谱使用了某写法”的事实。
type Usage struct {
	Surface  string
	RecipeID string
}

// Detector 按读音 key 对食材写法分组。
//
// key 在一个 Detector 内按写法缓存（分词是主要开销）；Detector 不是并发安全的。
type Detector struct {
	reader phonetic.Reader
	keys   map[string]string
}

func New(r phonetic.Reader) *Detector {
	return &Detector{reader: r, keys: make(map[string]string, 256)}
}

// SurfaceForm 去掉第一个冒号（半角或全角）及其后的数量注记，并 trim。
func SurfaceForm(material string) string {
	if i := strings.IndexAny(material, ":："); i >= 0 {
		material = material[:i]
	}
	return strings.TrimSpace(material)
}

// Usages 把记录展开为 (写法, 菜谱 ID) 序列；空写法（只有数量注记）被排除。
func Usages(records []domain.Recipe) []Usage {
	out := make([]Usage, 0, len(records)*4)
	for _, r := range records {
		for _, m := range r.Materials {
			s := SurfaceForm(m)
			if s == "" {
				continue
			}
			out = append(out, Usage{Surface: s, RecipeID: r.ID})
		}
	}
	return out
}

// Detect 返回所有可报告的分组（写法数 > 1）。
func (d *Detector) Detect(records []domain.Recipe) []domain.PhoneticGroup {
	return d.DetectUsages(Usages(records))
}

// DetectUsages 对任意 (写法, 菜谱 ID) 对做分组。
//
// - 写法按字符串相等判定同一性；规范化只用于计算 key，不改写写法本身
// - 同一写法出现在多个菜谱中时聚合为一个 ID 集合
// - 输出稳定：分组按 key、写法按字典序、ID 升序
func (d *Detector) DetectUsages(usages []Usage) []domain.PhoneticGroup {
	byKey := make(map[string]map[string]map[string]struct{}, 128)
	for _, u := range usages {
		surface := strings.TrimSpace(u.Surface)
		if surface == "" {
			continue
		}
		key := d.Key(surface)
		if key == "" {
			continue
		}
		forms, ok := byKey[key]
		if !ok {
			forms = make(map[string]map[string]struct{}, 2)
			byKey[key] = forms
		}
		ids, ok := forms[surface]
		if !ok {
			ids = make(map[string]struct{}, 4)
			forms[surface] = ids
		}
		ids[u.RecipeID] = struct{}{}
	}

	out := make([]domain.PhoneticGroup, 0, 16)
	for key, forms := range byKey {
		if len(forms) < 2 {
			continue
		}
		g := domain.PhoneticGroup{Key: key, Variants: make([]domain.Variant, 0, len(forms))}
		for surface, ids := range forms {
			g.Variants = append(g.Variants, domain.Variant{Surface: surface, RecipeIDs: sortedSet(ids)})
		}
		sort.Slice(g.Variants, func(i, j int) bool { return g.Variants[i].Surface < g.Variants[j].Surface })
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Key 返回 surface 的读音 key（带缓存）。
func (d *Detector) Key(surface string) string {
	if k, ok := d.keys[surface]; ok {
		return k
	}
	k := phonetic.Key(d.reader, surface)
	d.keys[surface] = k
	return k
}

func sortedSet(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for s := range m {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

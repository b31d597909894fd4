// Package page 把一条菜谱记录渲染为单独的菜谱页（两列表格版式）。
//
// 生成的页面正是 restructure 的输入：之后可以就地改写为上下两个分区。
package page

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/John-Robertt/recipekit/internal/domain"
	"github.com/John-Robertt/recipekit/internal/infra/fsx"
	"github.com/John-Robertt/recipekit/internal/restructure"
)

//go:embed templates/recipe.html.tmpl
var templatesFS embed.FS

var recipeTmpl = template.Must(template.ParseFS(templatesFS, "templates/recipe.html.tmpl"))

// Data 是渲染一页所需的全部输入。
type Data struct {
	Recipe domain.Recipe
	Steps  []string
	Table  restructure.Options
}

type row struct {
	Ingredient string
	Step       string
}

type view struct {
	Recipe           domain.Recipe
	TableClass       string
	IngredientsLabel string
	StepsLabel       string
	Rows             []row
}

// Render 渲染菜谱页：第 i 行 = 第 i 个材料 | 第 i 个步骤，较短的一列用空单元格补齐。
func Render(w io.Writer, d Data) error {
	opts := d.Table
	if opts.TableClass == "" {
		opts.TableClass = restructure.DefaultTableClass
	}
	if opts.IngredientsLabel == "" {
		opts.IngredientsLabel = restructure.DefaultIngredientsLabel
	}
	if opts.StepsLabel == "" {
		opts.StepsLabel = restructure.DefaultStepsLabel
	}

	n := max(len(d.Recipe.Materials), len(d.Steps))
	rows := make([]row, n)
	for i := range rows {
		if i < len(d.Recipe.Materials) {
			rows[i].Ingredient = d.Recipe.Materials[i]
		}
		if i < len(d.Steps) {
			rows[i].Step = d.Steps[i]
		}
	}

	return recipeTmpl.Execute(w, view{
		Recipe:           d.Recipe,
		TableClass:       opts.TableClass,
		IngredientsLabel: opts.IngredientsLabel,
		StepsLabel:       opts.StepsLabel,
		Rows:             rows,
	})
}

// ErrInvalidID 表示 id 无法安全地映射为页面文件名。
var ErrInvalidID = errors.New("非法 id")

// FileName 返回菜谱页文件名：recipe_<id>.html，id 不足 3 位时左侧补 0（"1" -> "001"）。
func FileName(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", fmt.Errorf("%w：id 不能为空", ErrInvalidID)
	}
	if strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return "", fmt.Errorf("%w：%q", ErrInvalidID, id)
	}
	if n := len([]rune(id)); n < 3 {
		id = strings.Repeat("0", 3-n) + id
	}
	return "recipe_" + id + ".html", nil
}

// Write 渲染并原子写入 dir/recipe_<id>.html。
//
// overwrite=false 时已存在的页面保持不变，返回 written=false（不是错误）。
func Write(dir string, d Data, overwrite bool) (path string, written bool, err error) {
	name, err := FileName(d.Recipe.ID)
	if err != nil {
		return "", false, err
	}
	path = filepath.Join(dir, name)

	var buf bytes.Buffer
	if err := Render(&buf, d); err != nil {
		return path, false, fmt.Errorf("渲染失败：%w", err)
	}

	if overwrite {
		err = fsx.WriteFileAtomicReplace(dir, name, buf.Bytes())
	} else {
		err = fsx.WriteFileAtomicNoOverwrite(dir, name, buf.Bytes())
		if errors.Is(err, os.ErrExist) {
			return path, false, nil
		}
	}
	if err != nil {
		return path, false, err
	}
	return path, true, nil
}

package restructure

import (
	"bytes"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct{ ingredient, step string }

func twoColumnTable(rows []row) string {
	var b strings.Builder
	b.WriteString(`<table class="recipe-table" id="t1">
  <thead><tr><th>材料</th><th>作り方</th></tr></thead>
  <tbody>
`)
	for _, r := range rows {
		fmt.Fprintf(&b, "    <tr><td>%s</td><td class=\"step\">%s</td></tr>\n", r.ingredient, r.step)
	}
	b.WriteString("  </tbody>\n</table>")
	return b.String()
}

func TestRestructure_SaltPepperScenario(t *testing.T) {
	in := `<table class="recipe-table"><thead><tr><th>ingredient</th><th>step</th></tr></thead><tbody>` +
		`<tr><td>Salt</td><td>Mix well</td></tr>` +
		`<tr><td></td><td>Bake 20 min</td></tr>` +
		`<tr><td>Pepper</td><td></td></tr>` +
		`</tbody></table>`

	want := `<table class="recipe-table">` +
		"\n<tbody>\n\t<tr><th>ingredients</th></tr>\n\t<tr><td>Salt</td></tr>\n\t<tr><td>Pepper</td></tr>\n</tbody>" +
		"\n<tbody>\n\t<tr><th>steps</th></tr>\n\t<tr><td>Mix well</td></tr>\n\t<tr><td>Bake 20 min</td></tr>\n</tbody>" +
		"\n</table>"

	got, changed := Changed([]byte(in), DefaultOptions())
	assert.True(t, changed)
	assert.Equal(t, want, string(got))
}

func TestRestructure_Idempotent(t *testing.T) {
	in := []byte(twoColumnTable([]row{
		{"じゃがいも：2個", "皮をむく"},
		{"玉ねぎ：1個", "<b>炒める</b>"},
		{"", "煮込む"},
	}))

	once := Restructure(in, DefaultOptions())
	require.NotEqual(t, string(in), string(once))

	twice, changed := Changed(once, DefaultOptions())
	assert.False(t, changed)
	assert.Equal(t, string(once), string(twice))
}

func TestRestructure_NoTableIsByteIdentical(t *testing.T) {
	cases := map[string]string{
		"no table":        "<html><body><p>ただの段落</p></body></html>",
		"unclosed table":  `<table class="recipe-table"><thead><tr><th>a</th><th>b</th></tr></thead><tbody><tr><td>x</td><td>y</td></tr>`,
		"no thead":        `<table class="recipe-table"><tbody><tr><td>x</td><td>y</td></tr></tbody></table>`,
		"three headers":   `<table class="recipe-table"><thead><tr><th>a</th><th>b</th><th>c</th></tr></thead><tbody><tr><td>x</td><td>y</td></tr></tbody></table>`,
		"two bodies":      `<table class="recipe-table"><thead><tr><th>a</th><th>b</th></tr></thead><tbody></tbody><tbody></tbody></table>`,
		"other class":     `<table class="nutrition"><thead><tr><th>a</th><th>b</th></tr></thead><tbody><tr><td>x</td><td>y</td></tr></tbody></table>`,
		"table in script": `<script>var s = "<table class=\"recipe-table\"><thead></thead><tbody></tbody></table>";</script>`,
		"empty":           "",
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			src := []byte(in)
			got, changed := Changed(src, DefaultOptions())
			assert.False(t, changed)
			assert.True(t, bytes.Equal(src, got), "期望逐字节相同，实际=%q", got)
		})
	}
}

func TestRestructure_PreservesSurroundingBytesAndTableTag(t *testing.T) {
	head := "<!DOCTYPE html>\n<html><head><title>肉じゃが</title></head>\n<body>\n<h1>肉じゃが</h1>\n<!-- keep me -->\n"
	open := `<table  class="recipe-table wide" data-x='1'>`
	tail := "\n<p>ジャンル：和食</p>\n</body></html>\n"
	in := head + open + `<thead><tr><th>材料</th><th>作り方</th></tr></thead><tbody><tr><td>牛肉</td><td>切る</td></tr></tbody></table>` + tail

	got := string(Restructure([]byte(in), DefaultOptions()))

	assert.True(t, strings.HasPrefix(got, head+open), "表格之前的字节与开标签必须原样保留")
	assert.True(t, strings.HasSuffix(got, "</table>"+tail), "闭标签与之后的字节必须原样保留")
	assert.NotContains(t, got, "<thead>")
}

func TestRestructure_BothEmptyYieldsEmptyInner(t *testing.T) {
	in := `<table class="recipe-table"><thead><tr><th>a</th><th>b</th></tr></thead><tbody><tr><td> </td><td></td></tr></tbody></table>`

	got, changed := Changed([]byte(in), DefaultOptions())
	assert.True(t, changed)
	assert.Equal(t, "<table class=\"recipe-table\">\n</table>", string(got))

	// 退化结果同样是幂等的。
	again, changed := Changed(got, DefaultOptions())
	assert.False(t, changed)
	assert.Equal(t, string(got), string(again))
}

func TestRestructure_SkipsRowsThatAreNotTwoCells(t *testing.T) {
	in := `<table class="recipe-table"><thead><tr><th>a</th><th>b</th></tr></thead><tbody>` +
		`<tr><td>only one</td></tr>` +
		`<tr><th>x</th><td>y</td></tr>` +
		`<tr><td>a</td><td>b</td><td>c</td></tr>` +
		`<tr> <td class="m">卵</td>  <td>割る</td> </tr>` +
		`</tbody></table>`

	got := string(Restructure([]byte(in), DefaultOptions()))
	assert.Contains(t, got, "<tr><td>卵</td></tr>")
	assert.Contains(t, got, "<tr><td>割る</td></tr>")
	assert.NotContains(t, got, "only one")
	assert.NotContains(t, got, ">c<")
}

func TestRestructure_CustomLabelsAreEscaped(t *testing.T) {
	in := twoColumnTable([]row{{"塩", "振る"}})

	got := string(Restructure([]byte(in), Options{
		TableClass:       "recipe-table",
		IngredientsLabel: "材料",
		StepsLabel:       "作り方 & コツ",
	}))
	assert.Contains(t, got, "<tr><th>材料</th></tr>")
	assert.Contains(t, got, "<tr><th>作り方 &amp; コツ</th></tr>")
	assert.Less(t, strings.Index(got, "材料"), strings.Index(got, "作り方"))
}

func TestRestructure_EmptyClassMatchesAnyTable(t *testing.T) {
	in := `<table><thead><tr><th>a</th><th>b</th></tr></thead><tbody><tr><td>x</td><td>y</td></tr></tbody></table>`

	_, changed := Changed([]byte(in), DefaultOptions())
	assert.False(t, changed)

	_, changed = Changed([]byte(in), Options{})
	assert.True(t, changed)
}

func TestRestructure_KeepsCaption(t *testing.T) {
	in := `<table class="recipe-table"><caption>2人分</caption><thead><tr><th>a</th><th>b</th></tr></thead><tbody><tr><td>x</td><td>y</td></tr></tbody></table>`

	got := string(Restructure([]byte(in), DefaultOptions()))
	assert.Contains(t, got, "<caption>2人分</caption>")
	assert.Less(t, strings.Index(got, "<caption>"), strings.Index(got, "<tbody>"))
}

func TestRestructure_MultipleTablesIndependently(t *testing.T) {
	a := twoColumnTable([]row{{"A", "1"}})
	b := twoColumnTable([]row{{"B", "2"}})
	in := a + "\n<hr>\n" + b

	got := string(Restructure([]byte(in), DefaultOptions()))
	assert.Equal(t, 2, strings.Count(got, "<tr><th>ingredients</th></tr>"))
	assert.Contains(t, got, "\n<hr>\n")
	assert.Less(t, strings.Index(got, "<td>A</td>"), strings.Index(got, "<td>B</td>"))
}

// 性质测试：随机生成两列表格，检查幂等与内容守恒。
func TestRestructure_Properties(t *testing.T) {
	words := []string{"", "", "塩", "砂糖", "Salt", "Mix well", "卵 & 牛乳", "焼く", "  ", "<i>強火</i>", "水：200ml"}
	rnd := rand.New(rand.NewSource(42))

	for i := 0; i < 200; i++ {
		n := rnd.Intn(8)
		rows := make([]row, n)
		for j := range rows {
			rows[j] = row{words[rnd.Intn(len(words))], words[rnd.Intn(len(words))]}
		}
		in := []byte(twoColumnTable(rows))

		once := Restructure(in, DefaultOptions())
		twice := Restructure(once, DefaultOptions())
		require.Equal(t, string(once), string(twice), "第 %d 组：不幂等", i)

		assert.Equal(t, cellTexts(t, in), cellTexts(t, once), "第 %d 组：内容不守恒", i)
	}
}

func TestRestructure_ContentKeepsOrderPerSection(t *testing.T) {
	in := []byte(twoColumnTable([]row{{"1", "a"}, {"2", ""}, {"", "b"}, {"3", "c"}}))

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(Restructure(in, DefaultOptions())))
	require.NoError(t, err)

	bodies := doc.Find("table > tbody")
	require.Equal(t, 2, bodies.Length())
	assert.Equal(t, []string{"1", "2", "3"}, texts(bodies.Eq(0).Find("td")))
	assert.Equal(t, []string{"a", "b", "c"}, texts(bodies.Eq(1).Find("td")))
}

// cellTexts 返回 td 中非空 trim 文本的多重集合（排序后的切片）。
func cellTexts(t *testing.T, src []byte) []string {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(src))
	require.NoError(t, err)
	out := texts(doc.Find("td"))
	sort.Strings(out)
	return out
}

func texts(s *goquery.Selection) []string {
	out := []string{}
	s.Each(func(_ int, c *goquery.Selection) {
		if txt := strings.TrimSpace(c.Text()); txt != "" {
			out = append(out, txt)
		}
	})
	return out
}

func TestRestructure_CellBytesAreVerbatim(t *testing.T) {
	in := `<table class="recipe-table"><thead><tr><th>a</th><th>b</th></tr></thead><tbody>` +
		`<tr><td> Tom's "salt" </td><td>a<br>b &amp; c</td></tr>` +
		`<tr><td><img src=x.png alt='卵'></td><td>&#x5F37;火</td></tr>` +
		`</tbody></table>`

	got, changed := Changed([]byte(in), DefaultOptions())
	require.True(t, changed)
	s := string(got)
	assert.Contains(t, s, `<tr><td>Tom's "salt"</td></tr>`)
	assert.Contains(t, s, `<tr><td>a<br>b &amp; c</td></tr>`)
	assert.Contains(t, s, `<tr><td><img src=x.png alt='卵'></td></tr>`)
	assert.Contains(t, s, `<tr><td>&#x5F37;火</td></tr>`)

	again, changed := Changed(got, DefaultOptions())
	assert.False(t, changed)
	assert.Equal(t, s, string(again))
}

func TestRestructure_OmittedEndTags(t *testing.T) {
	in := "<table class=\"recipe-table\"><thead><tr><th>a<th>b</thead><tbody>\n" +
		"<tr><td>塩 <td>振る\n" +
		"<tr><td>胡椒<td>\n" +
		"</tbody></table>"

	got := string(Restructure([]byte(in), DefaultOptions()))
	assert.Equal(t, `<table class="recipe-table">`+
		"\n<tbody>\n\t<tr><th>ingredients</th></tr>\n\t<tr><td>塩</td></tr>\n\t<tr><td>胡椒</td></tr>\n</tbody>"+
		"\n<tbody>\n\t<tr><th>steps</th></tr>\n\t<tr><td>振る</td></tr>\n</tbody>"+
		"\n</table>", got)
}

func TestRestructure_CaptionBytesAreVerbatim(t *testing.T) {
	in := `<table class="recipe-table"><caption title='量'>2人分<br></caption><thead><tr><th>a</th><th>b</th></tr></thead>` +
		`<tbody><tr><td>x</td><td>y</td></tr></tbody><tfoot><tr><td colspan=2>メモ</td></tr></tfoot></table>`

	got := string(Restructure([]byte(in), DefaultOptions()))
	assert.Contains(t, got, `<caption title='量'>2人分<br></caption>`)
	assert.Contains(t, got, `<tfoot><tr><td colspan=2>メモ</td></tr></tfoot>`)
	assert.Less(t, strings.Index(got, "<caption"), strings.Index(got, "<tbody>"))
	assert.Less(t, strings.Index(got, "</tbody>"), strings.Index(got, "<tfoot>"))
}

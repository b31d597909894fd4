// Package phonetic 从食材名推导“读音 key”，用于发现同音异表记（表記ゆれ）。
//
// 读音来源被抽象为 Reader：任何能把文本切分为词素并给出读音的分词器都可以替换进来。
// key 只是发音同一性的近似：读音来源较粗时，不同的发音也可能得到相同的 key。
package phonetic

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Token 是一个词素。Reading 为空表示没有可用读音（外来语、符号、未知词等）。
type Token struct {
	Surface string
	Reading string
}

// Reader 把文本切分为词素并给出每个词素的读音。
type Reader interface {
	Tokens(text string) []Token
}

// Key 计算 surface 的读音 key：逐词素取读音，没有读音时退回词素本身的写法，按顺序拼接后规范化。
func Key(r Reader, surface string) string {
	if r == nil {
		return Normalize(surface)
	}
	var b strings.Builder
	for _, t := range r.Tokens(surface) {
		if t.Reading != "" {
			b.WriteString(t.Reading)
			continue
		}
		b.WriteString(t.Surface)
	}
	return Normalize(b.String())
}

var folder = cases.Fold()

// Normalize 让词典读音（片假名）与回退的原始写法处在同一表示下：
// NFKC（全角/半角统一）→ 大小写折叠 → 平假名转片假名 → 去掉空白。
func Normalize(s string) string {
	s = norm.NFKC.String(s)
	s = folder.String(s)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(hiraganaToKatakana(r))
	}
	return b.String()
}

func hiraganaToKatakana(r rune) rune {
	// ぁ(U+3041)..ゖ(U+3096) 与 ァ(U+30A1)..ヶ(U+30F6) 一一对应；ゝゞ 同理。
	if (r >= 0x3041 && r <= 0x3096) || r == 0x309D || r == 0x309E {
		return r + 0x60
	}
	return r
}

// MapReader 是基于读音表的 Reader：整段文本命中表项时给出读音，否则交给 Fallback。
//
// 用于测试，也用于用户提供的读音覆盖（词典给不出或给错读音的食材名）。
type MapReader struct {
	Readings map[string]string
	Fallback Reader
}

func (m MapReader) Tokens(text string) []Token {
	if r, ok := m.Readings[text]; ok && r != "" {
		return []Token{{Surface: text, Reading: r}}
	}
	if m.Fallback != nil {
		return m.Fallback.Tokens(text)
	}
	return []Token{{Surface: text}}
}

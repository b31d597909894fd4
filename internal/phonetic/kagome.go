package phonetic

import (
	"fmt"

	"github.com/ikawaha/kagome-dict/ipa"
	"github.com/ikawaha/kagome/v2/tokenizer"
)

// Kagome 是基于 kagome（IPA 词典）的 Reader。
type Kagome struct {
	t *tokenizer.Tokenizer
}

// NewKagome 构造分词器；词典内嵌在二进制中，首次构造会有可感知的加载耗时。
func NewKagome() (*Kagome, error) {
	t, err := tokenizer.New(ipa.Dict(), tokenizer.OmitBosEos())
	if err != nil {
		return nil, fmt.Errorf("初始化 kagome 分词器失败：%w", err)
	}
	return &Kagome{t: t}, nil
}

func (k *Kagome) Tokens(text string) []Token {
	toks := k.t.Tokenize(text)
	out := make([]Token, 0, len(toks))
	for _, tok := range toks {
		reading, ok := tok.Reading()
		// 未知词的特征列缺失或为 "*"：视为没有读音。
		if !ok || reading == "*" {
			reading = ""
		}
		out = append(out, Token{Surface: tok.Surface, Reading: reading})
	}
	return out
}

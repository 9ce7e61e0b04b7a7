package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// TextSanitizer はカタログから受け取った表示用テキスト（食品名、食品群名）から
// マークアップを取り除き、プレーンテキストにする。
// 端末とJSONのどちらに出しても同じ見た目になるよう、HTMLエスケープは元に戻す。
type TextSanitizer struct {
	policy *bluemonday.Policy
}

// NewTextSanitizer はすべてのタグを除去するbluemondayのStrictPolicyで初期化する。
// script, styleタグは中身ごと除去される。
func NewTextSanitizer() *TextSanitizer {
	return &TextSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// SanitizeText はタグを除去し、連続する空白を1つにまとめる。
// 同一入力に対して常に同一出力を返す。
func (s *TextSanitizer) SanitizeText(raw string) string {
	if raw == "" {
		return ""
	}
	stripped := html.UnescapeString(s.policy.Sanitize(raw))
	return strings.Join(strings.Fields(stripped), " ")
}

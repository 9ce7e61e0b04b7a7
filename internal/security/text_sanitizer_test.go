package security

import (
	"strings"
	"testing"
)

// TestSanitizeText はタグ除去と空白の正規化を検証する。
func TestSanitizeText(t *testing.T) {
	sanitizer := NewTextSanitizer()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"プレーンテキストはそのまま", "Mjölk, standard, 3% fett", "Mjölk, standard, 3% fett"},
		{"空文字列", "", ""},
		{"タグを除去", "Ost <b>hårdost</b>", "Ost hårdost"},
		{"scriptは中身ごと除去", "<script>alert(1)</script>Mjöl", "Mjöl"},
		{"アンパサンドを保持", "Kex & kakor", "Kex & kakor"},
		{"エンティティを復元", "Fisk &amp; skaldjur", "Fisk & skaldjur"},
		{"空白を正規化", "  Bröd \n  fullkorn\t", "Bröd fullkorn"},
		{"イベント属性付きタグ", `<img src=x onerror="alert(1)">Smör`, "Smör"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitizer.SanitizeText(tt.input); got != tt.want {
				t.Errorf("SanitizeText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// TestSanitizeText_Idempotent は同じ入力を繰り返しても結果が変わらないことを検証する。
func TestSanitizeText_Idempotent(t *testing.T) {
	sanitizer := NewTextSanitizer()

	inputs := []string{
		"Mjölk <em>ekologisk</em>",
		"Kött & chark",
		"Ägg, hela, kokta",
	}
	for _, input := range inputs {
		first := sanitizer.SanitizeText(input)
		second := sanitizer.SanitizeText(first)
		if first != second {
			t.Errorf("not idempotent: %q -> %q -> %q", input, first, second)
		}
	}
}

// TestSanitizeText_NoMarkupInOutput はXSSペイロードからタグが残らないことを検証する。
func TestSanitizeText_NoMarkupInOutput(t *testing.T) {
	sanitizer := NewTextSanitizer()

	payloads := []string{
		`<iframe src="https://evil.example"></iframe>Lax`,
		`<a href="javascript:alert(1)">Sill</a>`,
		`<svg onload=alert(1)>Torsk`,
		`<style>body{}</style>Räkor`,
	}
	for _, p := range payloads {
		got := sanitizer.SanitizeText(p)
		if strings.ContainsAny(got, "<>") {
			t.Errorf("SanitizeText(%q) = %q, markup remained", p, got)
		}
	}
}

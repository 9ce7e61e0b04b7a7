package model

import (
	"fmt"
	"strings"
)

// Language はカタログAPIの sprak パラメータを表す。
type Language int

const (
	// LanguageSwedish は主言語（スウェーデン語）。
	LanguageSwedish Language = 1
	// LanguageEnglish は副言語（英語）。
	LanguageEnglish Language = 2
)

// DefaultLanguage は言語未指定時に使用する言語。
const DefaultLanguage = LanguageSwedish

// Valid は言語がカタログAPIでサポートされているかを返す。
func (l Language) Valid() bool {
	return l == LanguageSwedish || l == LanguageEnglish
}

// String は言語の短縮名（sv / en）を返す。
func (l Language) String() string {
	switch l {
	case LanguageSwedish:
		return "sv"
	case LanguageEnglish:
		return "en"
	default:
		return fmt.Sprintf("Language(%d)", int(l))
	}
}

// Toggle はもう一方の言語を返す。
func (l Language) Toggle() Language {
	if l == LanguageEnglish {
		return LanguageSwedish
	}
	return LanguageEnglish
}

// ParseLanguage は "1", "2", "sv", "en" などの文字列から言語を解析する。
func ParseLanguage(s string) (Language, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "sv", "svenska", "swedish":
		return LanguageSwedish, nil
	case "2", "en", "engelska", "english":
		return LanguageEnglish, nil
	default:
		return 0, fmt.Errorf("unsupported language: %q (allowed: 1, 2, sv, en)", s)
	}
}

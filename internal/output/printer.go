// Package output はワンショットCLI（list / show / top）の端末出力を提供する。
package output

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

// Printer は色付きの見出しやメッセージを書き込む。
type Printer struct {
	out       io.Writer
	useColors bool
}

// NewPrinter は新しいPrinterを生成する。
func NewPrinter(out io.Writer, useColors bool) *Printer {
	return &Printer{out: out, useColors: useColors}
}

// ResolveColors は色付き出力を使うかを決める。
// --no-colorフラグ、NO_COLOR環境変数、TERM=dumb のいずれかで無効になる。
func ResolveColors(noColorFlag bool) bool {
	if noColorFlag {
		return false
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	return os.Getenv("TERM") != "dumb"
}

// Heading は見出しを出力する。
func (p *Printer) Heading(format string, args ...any) {
	p.print(color.New(color.FgCyan, color.Bold), format, args...)
}

// Notice は補足情報を出力する。
func (p *Printer) Notice(format string, args ...any) {
	p.print(color.New(color.FgYellow), format, args...)
}

// Error はエラーメッセージを出力する。
func (p *Printer) Error(format string, args ...any) {
	p.print(color.New(color.FgRed, color.Bold), format, args...)
}

func (p *Printer) print(c *color.Color, format string, args ...any) {
	if p.useColors {
		c.Fprintf(p.out, format+"\n", args...)
		return
	}
	fmt.Fprintf(p.out, format+"\n", args...)
}

package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/hitoshi/livsmedel/internal/app"
)

func main() {
	if err := app.Run(os.Stdout, os.Args[1:]); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

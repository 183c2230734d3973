package main

import (
	"github.com/Frefreak/otlp-toolkit/internal/cli"
	"github.com/fatih/color"
	"os"
)

func main() {
	app := cli.NewApp()
	if err := app.Run(os.Args); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

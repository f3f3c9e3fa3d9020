package main

import (
	"os"

	"github.com/finwatch-dev/finwatch/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"os"

	"github.com/slayken/slayken/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

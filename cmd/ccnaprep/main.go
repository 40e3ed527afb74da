package main

import (
	"os"

	"github.com/ccnaprep/ccnaprep/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

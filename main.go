package main

import (
	"os"

	"github.com/lectio/pollgen/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

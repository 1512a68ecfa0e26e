package main

import (
	"os"

	"github.com/tormodhaugland/twig/cmd/twig/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

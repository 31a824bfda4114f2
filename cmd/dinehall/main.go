package main

import (
	"os"

	"github.com/dinehall/dinehall/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

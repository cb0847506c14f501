package main

import (
	"os"

	"github.com/nWish8/Sandbox/cmd/sandbox/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"os"

	"rootfinder/cmd/rootfind/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// Package main is the entry point for the sitemapper CLI.
package main

import (
	"os"

	"github.com/jmylchreest/sitemapper/cmd/sitemapper/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}

// Package main is the entry point for the sitesync CLI.
package main

import (
	"os"

	"github.com/patino82/construction-app/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

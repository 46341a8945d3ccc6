// Package main is the entry point for the brokerage CLI.
package main

import (
	"os"

	"github.com/shunichi-ikebuchi/brokerage/cmd/brokerage/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

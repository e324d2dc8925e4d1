// Package main is the entry point for mm-ledger CLI.
package main

import (
	"os"

	"github.com/shunichi-ikebuchi/mm-ledger/cmd/mm-ledger/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

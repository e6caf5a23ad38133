// Package main provides the entry point for the ccindex CLI.
package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/Aman-CERP/ccindex/cmd/ccindex/cmd"
)

func main() {
	// A missing .env is the normal case.
	_ = godotenv.Load()

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"os"

	"github.com/wonny/tradecalc/cmd/tradecalc/commands"
)

// main is the entry point for the tradecalc CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/tradecalc [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"os"

	"github.com/wonny/radar/cmd/radar/commands"
)

// main is the entry point for the radar CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/radar [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"os"

	"github.com/bestchoice-b3/b3-daily/cmd/dailyb3/commands"
)

// main is the entry point for the dailyb3 CLI
// ⭐ single CLI entry point: go run ./cmd/dailyb3 [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}

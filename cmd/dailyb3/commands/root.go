package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cpfFlag string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "dailyb3",
	Short: "Daily B3 - personal stock watchlist",
	Long: `Daily B3 CLI

Watchlist of B3 stocks per CPF holder: a daily checklist, a score,
live prices with the 200-day average and upside to the target price.

Usage:
  go run ./cmd/dailyb3 [command]

Examples:
  go run ./cmd/dailyb3 api
  go run ./cmd/dailyb3 session set 11144477735
  go run ./cmd/dailyb3 stocks add PETR4 --target 45
  go run ./cmd/dailyb3 stocks list --sort score --output yaml`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cpfFlag, "cpf", "", "CPF of the watchlist (default is the saved session)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

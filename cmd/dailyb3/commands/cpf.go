package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bestchoice-b3/b3-daily/internal/cpf"
)

// cpfCmd groups CPF utilities
var cpfCmd = &cobra.Command{
	Use:   "cpf",
	Short: "CPF utilities",
}

var cpfValidateCmd = &cobra.Command{
	Use:   "validate [cpf...]",
	Short: "Validate CPF numbers (modulo 11 check digits)",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCPFValidate,
}

func init() {
	rootCmd.AddCommand(cpfCmd)
	cpfCmd.AddCommand(cpfValidateCmd)
}

func runCPFValidate(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	invalid := 0
	for _, value := range args {
		if cpf.Validate(value) {
			fmt.Fprintf(out, "✅ %-16s valid    %s\n", value, cpf.Format(value))
			continue
		}
		invalid++
		fmt.Fprintf(out, "❌ %-16s invalid\n", value)
	}

	if invalid > 0 {
		return fmt.Errorf("%d of %d CPFs are invalid", invalid, len(args))
	}
	return nil
}

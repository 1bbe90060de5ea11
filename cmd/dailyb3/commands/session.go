package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bestchoice-b3/b3-daily/internal/cpf"
)

// sessionCmd manages the saved CPF
var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage the saved CPF",
	Long: `The saved CPF selects the watchlist used when --cpf is not given.

Subcommands:
  show   - print the saved CPF
  set    - save a CPF
  clear  - forget the saved CPF`,
}

var (
	sessionShowCmd = &cobra.Command{
		Use:   "show",
		Short: "Print the saved CPF",
		Args:  cobra.NoArgs,
		RunE:  runSessionShow,
	}

	sessionSetCmd = &cobra.Command{
		Use:   "set [cpf]",
		Short: "Save a CPF",
		Args:  cobra.ExactArgs(1),
		RunE:  runSessionSet,
	}

	sessionClearCmd = &cobra.Command{
		Use:   "clear",
		Short: "Forget the saved CPF",
		Args:  cobra.NoArgs,
		RunE:  runSessionClear,
	}
)

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionShowCmd, sessionSetCmd, sessionClearCmd)
}

func runSessionShow(cmd *cobra.Command, args []string) error {
	return withApp(func(ctx context.Context, a *app) error {
		value, ok, err := a.sessions.Get(ctx)
		if err != nil {
			return fmt.Errorf("read session: %w", err)
		}
		if !ok {
			fmt.Fprintln(cmd.OutOrStdout(), "No saved CPF")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), value)
		return nil
	})
}

func runSessionSet(cmd *cobra.Command, args []string) error {
	return withApp(func(ctx context.Context, a *app) error {
		if err := a.sessions.Set(ctx, args[0]); err != nil {
			return fmt.Errorf("save session: %w", err)
		}
		if !cpf.Validate(args[0]) {
			PrintWarning(cmd.OutOrStdout(), "CPF is invalid: new stocks will be rejected")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✅ Saved CPF %s\n", args[0])
		return nil
	})
}

func runSessionClear(cmd *cobra.Command, args []string) error {
	return withApp(func(ctx context.Context, a *app) error {
		if err := a.sessions.Clear(ctx); err != nil {
			return fmt.Errorf("clear session: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "✅ Session cleared")
		return nil
	})
}

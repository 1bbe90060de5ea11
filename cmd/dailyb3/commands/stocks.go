package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bestchoice-b3/b3-daily/internal/api/handlers"
	"github.com/bestchoice-b3/b3-daily/internal/contracts"
	"github.com/bestchoice-b3/b3-daily/internal/watchlist"
)

// stocksCmd groups the watchlist operations
var stocksCmd = &cobra.Command{
	Use:   "stocks",
	Short: "Manage the watchlist",
	Long: `Operations on the watchlist of the saved CPF (or --cpf).

Subcommands:
  list         - filtered and sorted view
  show         - one stock with checklist and annotations
  add          - watch a new symbol
  toggle       - flip a checklist item
  observer     - flip the buy/sell flag
  refresh      - re-quote one stock and stamp the check date
  refresh-all  - re-quote every stock
  edit         - manual edit of prices, thresholds and rent link
  annotate     - add or remove a note

Example:
  go run ./cmd/dailyb3 stocks add PETR4 --target 45
  go run ./cmd/dailyb3 stocks toggle PETR4 insider
  go run ./cmd/dailyb3 stocks list --filter observerTo=C --sort score`,
}

var (
	stocksListCmd = &cobra.Command{
		Use:   "list",
		Short: "List the watchlist",
		Args:  cobra.NoArgs,
		RunE:  runStocksList,
	}

	stocksShowCmd = &cobra.Command{
		Use:   "show [symbol]",
		Short: "Show one stock",
		Args:  cobra.ExactArgs(1),
		RunE:  runStocksShow,
	}

	stocksAddCmd = &cobra.Command{
		Use:   "add [symbol]",
		Short: "Watch a new symbol",
		Args:  cobra.ExactArgs(1),
		RunE:  runStocksAdd,
	}

	stocksToggleCmd = &cobra.Command{
		Use:   "toggle [symbol] [item]",
		Short: "Flip a checklist item",
		Long:  "Flip a checklist item. Items: " + checklistKeys(),
		Args:  cobra.ExactArgs(2),
		RunE:  runStocksToggle,
	}

	stocksObserverCmd = &cobra.Command{
		Use:   "observer [symbol]",
		Short: "Flip the buy/sell flag (C/V)",
		Args:  cobra.ExactArgs(1),
		RunE:  runStocksObserver,
	}

	stocksRefreshCmd = &cobra.Command{
		Use:   "refresh [symbol]",
		Short: "Re-quote one stock and stamp the check date",
		Args:  cobra.ExactArgs(1),
		RunE:  runStocksRefresh,
	}

	stocksRefreshAllCmd = &cobra.Command{
		Use:   "refresh-all",
		Short: "Re-quote every stock",
		Args:  cobra.NoArgs,
		RunE:  runStocksRefreshAll,
	}

	stocksEditCmd = &cobra.Command{
		Use:   "edit [symbol]",
		Short: "Edit prices, thresholds and rent link",
		Long: `Edit a stock. Flags not given keep the stored value.
The live quote still overrides the typed price when it succeeds.`,
		Args: cobra.ExactArgs(1),
		RunE: runStocksEdit,
	}

	stocksAnnotateCmd = &cobra.Command{
		Use:   "annotate [symbol] [text]",
		Short: "Add a note, or remove one with --remove",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  runStocksAnnotate,
	}
)

var (
	listFilters map[string]string
	listSort    string
	listOutput  string

	addTarget float64

	editPrice   float64
	editDistNeg float64
	editDistPos float64
	editTarget  float64
	editRent    string

	annotateType   string
	annotateRemove int
)

func init() {
	rootCmd.AddCommand(stocksCmd)
	stocksCmd.AddCommand(
		stocksListCmd,
		stocksShowCmd,
		stocksAddCmd,
		stocksToggleCmd,
		stocksObserverCmd,
		stocksRefreshCmd,
		stocksRefreshAllCmd,
		stocksEditCmd,
		stocksAnnotateCmd,
	)

	stocksListCmd.Flags().StringToStringVar(&listFilters, "filter", nil, "field filter, e.g. observerTo=C or dateLastCheck=2024-01-15")
	stocksListCmd.Flags().StringVar(&listSort, "sort", "", "sort field (score, dateLastCheck, ...)")
	stocksListCmd.Flags().StringVarP(&listOutput, "output", "o", OutputTable, "output format (table|json|yaml)")
	stocksShowCmd.Flags().StringVarP(&listOutput, "output", "o", OutputTable, "output format (table|json|yaml)")

	stocksAddCmd.Flags().Float64Var(&addTarget, "target", 0, "target price")

	stocksEditCmd.Flags().Float64Var(&editPrice, "price", 0, "current price")
	stocksEditCmd.Flags().Float64Var(&editDistNeg, "distance-negative", 0, "lower threshold for the 200-day deviation")
	stocksEditCmd.Flags().Float64Var(&editDistPos, "distance-positive", 0, "upper threshold for the 200-day deviation")
	stocksEditCmd.Flags().Float64Var(&editTarget, "target", 0, "target price")
	stocksEditCmd.Flags().StringVar(&editRent, "rent", "", "rent page URL, empty to remove")

	stocksAnnotateCmd.Flags().StringVar(&annotateType, "type", string(contracts.AnnotationInfo), "note type (info|warning|error)")
	stocksAnnotateCmd.Flags().IntVar(&annotateRemove, "remove", -1, "remove the note at this index instead")
}

func checklistKeys() string {
	keys := ""
	for i, item := range contracts.ChecklistItems {
		if i > 0 {
			keys += ", "
		}
		keys += item.Key
	}
	return keys
}

func views(stocks []contracts.Stock) []handlers.StockView {
	out := make([]handlers.StockView, 0, len(stocks))
	for _, s := range stocks {
		out = append(out, handlers.NewStockView(s))
	}
	return out
}

func runStocksList(cmd *cobra.Command, args []string) error {
	return withWatchlist(func(ctx context.Context, a *app, c *watchlist.Controller) error {
		if len(listFilters) > 0 {
			c.SetFilters(listFilters)
		}

		stocks := c.View()
		if listSort != "" {
			stocks = c.Sort(listSort)
		}

		out := cmd.OutOrStdout()
		if listOutput == OutputTable {
			printStockTable(out, views(stocks))
			return nil
		}
		return writeOutput(out, listOutput, views(stocks))
	})
}

func runStocksShow(cmd *cobra.Command, args []string) error {
	return withWatchlist(func(ctx context.Context, a *app, c *watchlist.Controller) error {
		s, ok := c.Find(args[0])
		if !ok {
			return fmt.Errorf("%w: %s", watchlist.ErrStockNotFound, args[0])
		}

		out := cmd.OutOrStdout()
		if listOutput == OutputTable {
			printStockDetail(out, handlers.NewStockView(s))
			return nil
		}
		return writeOutput(out, listOutput, handlers.NewStockView(s))
	})
}

func runStocksAdd(cmd *cobra.Command, args []string) error {
	return withWatchlist(func(ctx context.Context, a *app, c *watchlist.Controller) error {
		var target *float64
		if cmd.Flags().Changed("target") {
			target = contracts.Float(addTarget)
		}

		s, err := c.Add(ctx, args[0], target)
		if err != nil {
			return err
		}

		printStockDetail(cmd.OutOrStdout(), handlers.NewStockView(s))
		return nil
	})
}

func runStocksToggle(cmd *cobra.Command, args []string) error {
	return withWatchlist(func(ctx context.Context, a *app, c *watchlist.Controller) error {
		s, err := c.ToggleChecklist(ctx, args[0], args[1])
		if err != nil {
			return err
		}

		value, _ := s.Checklist.Get(args[1])
		fmt.Fprintf(cmd.OutOrStdout(), "✅ %s %s=%t score=%d\n", s.Symbol, args[1], value, s.Score)
		return nil
	})
}

func runStocksObserver(cmd *cobra.Command, args []string) error {
	return withWatchlist(func(ctx context.Context, a *app, c *watchlist.Controller) error {
		s, ok := c.Find(args[0])
		if !ok {
			return fmt.Errorf("%w: %s", watchlist.ErrStockNotFound, args[0])
		}
		if err := c.ToggleObserver(ctx, s.Symbol); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "✅ %s observer %s → %s\n", s.Symbol, s.ObserverTo, s.ObserverTo.Toggle())
		return nil
	})
}

func runStocksRefresh(cmd *cobra.Command, args []string) error {
	return withWatchlist(func(ctx context.Context, a *app, c *watchlist.Controller) error {
		if err := c.Refresh(ctx, args[0]); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "✅ %s refreshed\n", args[0])
		return nil
	})
}

func runStocksRefreshAll(cmd *cobra.Command, args []string) error {
	return withWatchlist(func(ctx context.Context, a *app, c *watchlist.Controller) error {
		report := c.RefreshAll(ctx)

		out := cmd.OutOrStdout()
		for _, r := range report.Results {
			if r.Err != nil {
				fmt.Fprintf(out, "❌ %-8s %s\n", r.Symbol, r.Error)
				continue
			}
			fmt.Fprintf(out, "✅ %s\n", r.Symbol)
		}
		PrintSeparator(out)
		fmt.Fprintf(out, "%d refreshed, %d failed in %s\n", report.Succeeded, report.Failed, report.Duration)

		if report.Failed > 0 {
			return fmt.Errorf("%d of %d stocks failed to refresh", report.Failed, report.Total)
		}
		return nil
	})
}

func runStocksEdit(cmd *cobra.Command, args []string) error {
	return withWatchlist(func(ctx context.Context, a *app, c *watchlist.Controller) error {
		s, ok := c.Find(args[0])
		if !ok {
			return fmt.Errorf("%w: %s", watchlist.ErrStockNotFound, args[0])
		}

		flags := cmd.Flags()
		form := watchlist.EditForm{
			CurrentPrice:     s.CurrentPrice,
			DistanceNegative: s.DistanceNegative,
			DistancePositive: s.DistancePositive,
			TargetPrice:      s.TargetPrice,
			Annotations:      s.Annotations,
		}
		if s.RentURL != nil {
			form.RentURL = *s.RentURL
		}

		if flags.Changed("price") {
			form.CurrentPrice = editPrice
		}
		if flags.Changed("distance-negative") {
			form.DistanceNegative = editDistNeg
		}
		if flags.Changed("distance-positive") {
			form.DistancePositive = editDistPos
		}
		if flags.Changed("target") {
			form.TargetPrice = contracts.Float(editTarget)
		}
		if flags.Changed("rent") {
			form.RentURL = editRent
		}

		if err := c.Edit(ctx, s.Symbol, form); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "✅ %s updated\n", s.Symbol)
		return nil
	})
}

func runStocksAnnotate(cmd *cobra.Command, args []string) error {
	return withWatchlist(func(ctx context.Context, a *app, c *watchlist.Controller) error {
		symbol := args[0]

		if cmd.Flags().Changed("remove") {
			if err := c.RemoveAnnotation(ctx, symbol, annotateRemove); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✅ %s note #%d removed\n", symbol, annotateRemove)
			return nil
		}

		if len(args) < 2 {
			return fmt.Errorf("note text is required")
		}
		if err := c.AddAnnotation(ctx, symbol, args[1], contracts.AnnotationType(annotateType)); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "✅ %s note added\n", symbol)
		return nil
	})
}

package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/bestchoice-b3/b3-daily/internal/api/handlers"
	"github.com/bestchoice-b3/b3-daily/internal/calculator"
	"github.com/bestchoice-b3/b3-daily/internal/contracts"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// every command prints through these helpers
// ═══════════════════════════════════════════════════════════

// Output formats of list style commands
const (
	OutputTable = "table"
	OutputJSON  = "json"
	OutputYAML  = "yaml"
)

// PrintSeparator prints a visual separator
func PrintSeparator(w io.Writer) {
	fmt.Fprintln(w, "───────────────────────────────────────────────────────────────────────────────")
}

// PrintDoubleSeparator prints a double-line separator
func PrintDoubleSeparator(w io.Writer) {
	fmt.Fprintln(w, "═══════════════════════════════════════════════════════════════════════════════")
}

// PrintWarning prints a warning message
func PrintWarning(w io.Writer, message string) {
	fmt.Fprintf(w, "⚠️  %s\n", message)
}

// writeOutput renders v in the requested format. table is handled by the caller.
func writeOutput(w io.Writer, format string, v interface{}) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case OutputYAML:
		return writeYAML(w, v)
	default:
		return fmt.Errorf("unknown output format %q (table, json, yaml)", format)
	}
}

// writeYAML renders v as YAML keeping the JSON field names and order
func writeYAML(w io.Writer, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return fmt.Errorf("convert to yaml: %w", err)
	}
	blockStyle(&node)

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&node); err != nil {
		return fmt.Errorf("write yaml: %w", err)
	}
	return enc.Close()
}

// blockStyle drops the flow and quoting style JSON input leaves on every node
func blockStyle(n *yaml.Node) {
	n.Style &^= yaml.FlowStyle | yaml.DoubleQuotedStyle
	for _, child := range n.Content {
		blockStyle(child)
	}
}

// printStockTable prints one row per stock
func printStockTable(w io.Writer, views []handlers.StockView) {
	PrintDoubleSeparator(w)
	fmt.Fprintf(w, "%-8s %-3s %10s %10s %9s %9s %5s  %-10s %s\n",
		"SYMBOL", "OBS", "PRICE", "TARGET", "UPSIDE%", "AVG200%", "SCORE", "CHECKED", "SIGNALS")
	PrintSeparator(w)

	for _, v := range views {
		fmt.Fprintf(w, "%-8s %-3s %10s %10s %9s %9s %5d  %-10s %s\n",
			v.Symbol,
			string(v.ObserverTo),
			calculator.FormatDisplay(contracts.Float(v.CurrentPrice)),
			calculator.FormatDisplay(v.TargetPrice),
			calculator.FormatDisplay(v.Upside),
			calculator.FormatDisplay(v.AveragePercent200),
			v.Score,
			shortDate(v.DateLastCheck),
			signals(v),
		)
	}

	PrintSeparator(w)
	fmt.Fprintf(w, "%d stocks\n", len(views))
}

// printStockDetail prints one stock with its checklist and annotations
func printStockDetail(w io.Writer, v handlers.StockView) {
	PrintDoubleSeparator(w)
	fmt.Fprintf(w, "  %s (%s)  score %d\n", v.Symbol, v.ObserverTo, v.Score)
	PrintSeparator(w)
	fmt.Fprintf(w, "  Price      : %s\n", calculator.FormatDisplay(contracts.Float(v.CurrentPrice)))
	fmt.Fprintf(w, "  Target     : %s (upside %s%%)\n", calculator.FormatDisplay(v.TargetPrice), calculator.FormatDisplay(v.Upside))
	fmt.Fprintf(w, "  Media 200  : %s (%s%%)\n", calculator.FormatDisplay(v.Media200), calculator.FormatDisplay(v.AveragePercent200))
	fmt.Fprintf(w, "  Distance   : -%s / +%s\n",
		calculator.FormatDisplay(contracts.Float(v.DistanceNegative)),
		calculator.FormatDisplay(contracts.Float(v.DistancePositive)))
	fmt.Fprintf(w, "  Last check : %s\n", v.DateLastCheck)

	PrintSeparator(w)
	values := v.Checklist.Values()
	for i, item := range contracts.ChecklistItems {
		mark := "[ ]"
		if values[i] {
			mark = "[x]"
		}
		fmt.Fprintf(w, "  %s %-22s (%s)\n", mark, item.Label, item.Key)
	}

	if len(v.Annotations) > 0 {
		PrintSeparator(w)
		for i, a := range v.Annotations {
			fmt.Fprintf(w, "  #%d %-7s %s  %s\n", i, a.Type, shortDate(a.Date), a.Text)
		}
	}

	PrintSeparator(w)
	fmt.Fprintf(w, "  %s\n  %s\n  %s\n", v.Links.StatusInvest, v.Links.Insiders, v.Links.Rent)
}

func signals(v handlers.StockView) string {
	var s []string
	if v.AverageSignal {
		s = append(s, "avg200")
	}
	if v.UpsideSignal {
		s = append(s, "upside")
	}
	return strings.Join(s, ",")
}

// shortDate keeps the date part of an ISO timestamp
func shortDate(s string) string {
	if len(s) >= 10 && s[4] == '-' && s[7] == '-' {
		return s[:10]
	}
	return s
}

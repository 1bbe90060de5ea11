package watchlist

import (
	"sort"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/bestchoice-b3/b3-daily/internal/contracts"
)

// sortStocks orders stocks by field: numbers descending, dates ascending,
// other strings ascending in pt-BR collation. Stocks missing the field go
// last. Pairs of any other shape keep their relative order.
func sortStocks(stocks []contracts.Stock, field string, loc *time.Location) {
	values := make([]any, len(stocks))
	for i, s := range stocks {
		values[i] = s.Fields()[field]
	}

	col := collate.New(language.BrazilianPortuguese)

	idx := make([]int, len(stocks))
	for i := range idx {
		idx[i] = i
	}

	sort.SliceStable(idx, func(i, j int) bool {
		return compareValues(values[idx[i]], values[idx[j]], col, loc) < 0
	})

	sorted := make([]contracts.Stock, len(stocks))
	for i, k := range idx {
		sorted[i] = stocks[k]
	}
	copy(stocks, sorted)
}

func compareValues(a, b any, col *collate.Collator, loc *time.Location) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}

	switch x := a.(type) {
	case float64:
		y, ok := b.(float64)
		if !ok {
			return 0
		}
		switch {
		case y > x:
			return 1
		case y < x:
			return -1
		}
		return 0

	case string:
		y, ok := b.(string)
		if !ok {
			return 0
		}
		ta, okA := parseDate(x, loc)
		tb, okB := parseDate(y, loc)
		if okA && okB {
			return ta.Compare(tb)
		}
		return col.CompareString(x, y)
	}
	return 0
}

package watchlist

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/bestchoice-b3/b3-daily/internal/contracts"
)

// Filters maps a stock field name to the substring it must contain
type Filters map[string]string

// DateField is filtered by calendar day instead of substring
const DateField = "dateLastCheck"

// ObserverField is the field flipped by the observer filter toggle
const ObserverField = "observerTo"

// Clone returns a copy of f
func (f Filters) Clone() Filters {
	out := make(Filters, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Keys returns the filtered field names in order
func (f Filters) Keys() []string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// applyFilters keeps the stocks matching every filter. An empty filter
// set keeps everything in order.
func applyFilters(stocks []contracts.Stock, filters Filters, loc *time.Location) []contracts.Stock {
	out := make([]contracts.Stock, 0, len(stocks))
	if len(filters) == 0 {
		return append(out, stocks...)
	}

	for _, s := range stocks {
		if matches(s.Fields(), filters, loc) {
			out = append(out, s)
		}
	}
	return out
}

func matches(fields map[string]any, filters Filters, loc *time.Location) bool {
	for key, want := range filters {
		if key == DateField {
			got, _ := fields[key].(string)
			if !sameDay(got, want, loc) {
				return false
			}
			continue
		}

		v, ok := fields[key]
		if !strings.Contains(strings.ToLower(render(v, ok)), strings.ToLower(want)) {
			return false
		}
	}
	return true
}

// render turns a field into the text the substring filter looks at
func render(v any, present bool) string {
	if !present {
		return "undefined"
	}

	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case map[string]any:
		return "[object Object]"
	case []any:
		parts := make([]string, len(x))
		for i, e := range x {
			if e != nil {
				parts[i] = render(e, true)
			}
		}
		return strings.Join(parts, ",")
	default:
		return ""
	}
}

package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/bestchoice-b3/b3-daily/internal/calculator"
	"github.com/bestchoice-b3/b3-daily/internal/contracts"
)

// ErrDocumentNotFound is returned by Update when no document has the symbol
var ErrDocumentNotFound = errors.New("document not found")

// Decode rebuilds a Stock from a stored document.
// A field whose stored value does not fit its type is left unset; the
// rest of the document still decodes. The stored checklist is merged over
// the all-false default; a checklist that is not an object is ignored.
// A stored score is kept when it is a whole number, anything else is
// recomputed from the checklist.
func Decode(doc contracts.Document) (contracts.Stock, error) {
	rest := make(map[string]any, len(doc.Data))
	for k, v := range doc.Data {
		if k == "checklist" || k == "score" || k == "id" {
			continue
		}
		if !fits(k, v) {
			continue
		}
		rest[k] = v
	}

	raw, err := json.Marshal(rest)
	if err != nil {
		return contracts.Stock{}, fmt.Errorf("encode document %s: %w", doc.ID, err)
	}

	var stock contracts.Stock
	if err := json.Unmarshal(raw, &stock); err != nil {
		return contracts.Stock{}, fmt.Errorf("decode document %s: %w", doc.ID, err)
	}
	stock.ID = doc.ID

	if m, ok := doc.Data["checklist"].(map[string]any); ok {
		for _, item := range contracts.ChecklistItems {
			if v, ok := m[item.Key].(bool); ok {
				stock.Checklist, _ = stock.Checklist.With(item.Key, v)
			}
		}
	}

	if n, ok := doc.Data["score"].(float64); ok && wholeScore(n) {
		stock.Score = int(n)
	} else {
		stock.Score = calculator.ComputeScore(stock.Checklist)
	}

	return stock, nil
}

// fits reports whether field k alone decodes into a Stock
func fits(k string, v any) bool {
	raw, err := json.Marshal(map[string]any{k: v})
	if err != nil {
		return false
	}
	var scratch contracts.Stock
	return json.Unmarshal(raw, &scratch) == nil
}

func wholeScore(n float64) bool {
	return !math.IsNaN(n) && !math.IsInf(n, 0) && n == math.Trunc(n) &&
		n >= math.MinInt32 && n <= math.MaxInt32
}

// encodeStock renders a stock as stored document fields
func encodeStock(stock contracts.Stock) map[string]any {
	fields := stock.Fields()
	delete(fields, "id")
	return fields
}

// splitPatch separates deletions from values and normalizes the values
// through JSON so both stores hold the same field shapes.
func splitPatch(fields map[string]any) (map[string]any, []string, error) {
	values := make(map[string]any, len(fields))
	deleted := []string{}

	for k, v := range fields {
		if contracts.IsDeleteField(v) {
			deleted = append(deleted, k)
			continue
		}
		values[k] = v
	}

	raw, err := json.Marshal(values)
	if err != nil {
		return nil, nil, fmt.Errorf("encode patch: %w", err)
	}

	normalized := make(map[string]any, len(values))
	if err := json.Unmarshal(raw, &normalized); err != nil {
		return nil, nil, fmt.Errorf("normalize patch: %w", err)
	}

	return normalized, deleted, nil
}

// emit delivers the latest snapshot, replacing an unread older one
func emit(ch chan []contracts.Document, docs []contracts.Document) {
	select {
	case ch <- docs:
		return
	default:
	}

	select {
	case <-ch:
	default:
	}

	select {
	case ch <- docs:
	default:
	}
}

package contracts

import (
	"errors"
	"fmt"
)

// Checklist holds the qualitative investment criteria of a stock
type Checklist struct {
	Insider           bool `json:"insider"`
	Volume            bool `json:"volume"`
	OBV               bool `json:"obv"`
	ADX               bool `json:"adx"`
	MargemLiquida     bool `json:"margemLiquida"`
	DividendYield     bool `json:"dividendYield"`
	MagicFormula      bool `json:"magicFormula"`
	DistanciaMedia200 bool `json:"distanciaMedia200"`
	Upside            bool `json:"upside"`
	PLAverage         bool `json:"plAverage"`
	Rent              bool `json:"rent"`
}

// ChecklistItem describes one checklist flag
type ChecklistItem struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// ChecklistItems lists every flag in display order
var ChecklistItems = []ChecklistItem{
	{Key: "insider", Label: "Insider"},
	{Key: "volume", Label: "Volume"},
	{Key: "obv", Label: "OBV"},
	{Key: "adx", Label: "ADX"},
	{Key: "margemLiquida", Label: "Margem Líquida"},
	{Key: "dividendYield", Label: "Dividend Yield"},
	{Key: "magicFormula", Label: "Magic Formula"},
	{Key: "distanciaMedia200", Label: "Distância Média 200"},
	{Key: "upside", Label: "Upside"},
	{Key: "plAverage", Label: "PL Médio"},
	{Key: "rent", Label: "Aluguéis"},
}

// ErrUnknownChecklistItem is returned for a key outside ChecklistItems
var ErrUnknownChecklistItem = errors.New("unknown checklist item")

func (c *Checklist) field(key string) (*bool, error) {
	switch key {
	case "insider":
		return &c.Insider, nil
	case "volume":
		return &c.Volume, nil
	case "obv":
		return &c.OBV, nil
	case "adx":
		return &c.ADX, nil
	case "margemLiquida":
		return &c.MargemLiquida, nil
	case "dividendYield":
		return &c.DividendYield, nil
	case "magicFormula":
		return &c.MagicFormula, nil
	case "distanciaMedia200":
		return &c.DistanciaMedia200, nil
	case "upside":
		return &c.Upside, nil
	case "plAverage":
		return &c.PLAverage, nil
	case "rent":
		return &c.Rent, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownChecklistItem, key)
}

// Get returns the flag named key
func (c Checklist) Get(key string) (bool, error) {
	f, err := c.field(key)
	if err != nil {
		return false, err
	}
	return *f, nil
}

// With returns a copy of c with the flag named key set to value
func (c Checklist) With(key string, value bool) (Checklist, error) {
	f, err := c.field(key)
	if err != nil {
		return c, err
	}
	*f = value
	return c, nil
}

// Values returns the flags in ChecklistItems order
func (c Checklist) Values() []bool {
	return []bool{
		c.Insider, c.Volume, c.OBV, c.ADX, c.MargemLiquida, c.DividendYield,
		c.MagicFormula, c.DistanciaMedia200, c.Upside, c.PLAverage, c.Rent,
	}
}

// AllChecked returns a checklist with every flag set
func AllChecked() Checklist {
	var c Checklist
	for _, item := range ChecklistItems {
		c, _ = c.With(item.Key, true)
	}
	return c
}

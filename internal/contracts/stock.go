package contracts

import (
	"encoding/json"
	"fmt"
)

// ObserverTo marks whether a stock is watched for buying or selling
type ObserverTo string

const (
	ObserveBuy  ObserverTo = "C" // compra
	ObserveSell ObserverTo = "V" // venda
)

// Toggle flips C and V. Anything else becomes C.
func (o ObserverTo) Toggle() ObserverTo {
	if o == ObserveBuy {
		return ObserveSell
	}
	return ObserveBuy
}

// Valid reports whether o is C or V
func (o ObserverTo) Valid() bool {
	return o == ObserveBuy || o == ObserveSell
}

// AnnotationType is the severity of a note attached to a stock
type AnnotationType string

const (
	AnnotationInfo    AnnotationType = "info"
	AnnotationWarning AnnotationType = "warning"
	AnnotationError   AnnotationType = "error"
)

// Valid reports whether t is one of info, warning, error
func (t AnnotationType) Valid() bool {
	switch t {
	case AnnotationInfo, AnnotationWarning, AnnotationError:
		return true
	}
	return false
}

// Annotation is a dated free-text note
type Annotation struct {
	Date string         `json:"date"`
	Text string         `json:"text"`
	Type AnnotationType `json:"type"`
}

// Stock is one watched ticker for one CPF holder.
// JSON names are the document field names in the store.
// ⭐ SSOT: the watchlist document shape is defined only here
type Stock struct {
	ID                string     `json:"id,omitempty"`
	Symbol            string     `json:"symbol"`
	CurrentPrice      float64    `json:"currentPrice"`
	DistanceNegative  float64    `json:"distanceNegative"`
	DistancePositive  float64    `json:"distancePositive"`
	TargetPrice       *float64   `json:"targetPrice,omitempty"`
	Upside            *float64   `json:"upside,omitempty"`
	Checklist         Checklist  `json:"checklist"`
	Score             int        `json:"score"`
	CPF               string     `json:"cpf"`
	Media200          *float64   `json:"media200,omitempty"`
	ObserverTo        ObserverTo `json:"observerTo,omitempty"`
	DateLastCheck     string     `json:"dateLastCheck,omitempty"`
	AveragePercent200 *float64   `json:"averagePercent200,omitempty"`

	// Fundamentals kept on the document by older clients. Carried untouched.
	PL                         *float64 `json:"pl,omitempty"`
	PLAverage                  *float64 `json:"plAverage,omitempty"`
	PLTarget                   *float64 `json:"plTarget,omitempty"`
	PLTargetPercent            *float64 `json:"plTargetPercent,omitempty"`
	PLTargetPrice              *float64 `json:"plTargetPrice,omitempty"`
	DividendYield              *float64 `json:"dividendYield,omitempty"`
	DividendYieldTarget        *float64 `json:"dividendYieldTarget,omitempty"`
	DividendYieldTargetPercent *float64 `json:"dividendYieldTargetPercent,omitempty"`
	DividendYieldTargetPrice   *float64 `json:"dividendYieldTargetPrice,omitempty"`

	RentURL     *string      `json:"rentUrl,omitempty"`
	Annotations []Annotation `json:"annotations,omitempty"`
}

// Fields returns the stock as a generic field map, the shape used by
// filtering and sorting. Absent optional fields are missing from the map.
func (s Stock) Fields() map[string]any {
	data, err := json.Marshal(s)
	if err != nil {
		return map[string]any{}
	}

	fields := make(map[string]any)
	if err := json.Unmarshal(data, &fields); err != nil {
		return map[string]any{}
	}
	return fields
}

// AsUpdate returns an update carrying every defined field of s
func (s Stock) AsUpdate() StockUpdate {
	checklist := s.Checklist
	score := s.Score
	u := StockUpdate{
		Symbol:                     ptr(s.Symbol),
		CurrentPrice:               ptr(s.CurrentPrice),
		DistanceNegative:           ptr(s.DistanceNegative),
		DistancePositive:           ptr(s.DistancePositive),
		TargetPrice:                s.TargetPrice,
		Upside:                     s.Upside,
		Checklist:                  &checklist,
		Score:                      &score,
		CPF:                        ptr(s.CPF),
		Media200:                   s.Media200,
		AveragePercent200:          s.AveragePercent200,
		PL:                         s.PL,
		PLAverage:                  s.PLAverage,
		PLTarget:                   s.PLTarget,
		PLTargetPercent:            s.PLTargetPercent,
		PLTargetPrice:              s.PLTargetPrice,
		DividendYield:              s.DividendYield,
		DividendYieldTarget:        s.DividendYieldTarget,
		DividendYieldTargetPercent: s.DividendYieldTargetPercent,
		DividendYieldTargetPrice:   s.DividendYieldTargetPrice,
	}
	if s.ObserverTo != "" {
		u.ObserverTo = ptr(s.ObserverTo)
	}
	if s.DateLastCheck != "" {
		u.DateLastCheck = ptr(s.DateLastCheck)
	}
	if s.RentURL != nil {
		u.RentURL = SetString(*s.RentURL)
	}
	if s.Annotations != nil {
		annotations := append([]Annotation(nil), s.Annotations...)
		u.Annotations = &annotations
	}
	return u
}

// Clone returns a deep copy of s
func (s Stock) Clone() Stock {
	c := s
	c.TargetPrice = clonePtr(s.TargetPrice)
	c.Upside = clonePtr(s.Upside)
	c.Media200 = clonePtr(s.Media200)
	c.AveragePercent200 = clonePtr(s.AveragePercent200)
	c.PL = clonePtr(s.PL)
	c.PLAverage = clonePtr(s.PLAverage)
	c.PLTarget = clonePtr(s.PLTarget)
	c.PLTargetPercent = clonePtr(s.PLTargetPercent)
	c.PLTargetPrice = clonePtr(s.PLTargetPrice)
	c.DividendYield = clonePtr(s.DividendYield)
	c.DividendYieldTarget = clonePtr(s.DividendYieldTarget)
	c.DividendYieldTargetPercent = clonePtr(s.DividendYieldTargetPercent)
	c.DividendYieldTargetPrice = clonePtr(s.DividendYieldTargetPrice)
	c.RentURL = clonePtr(s.RentURL)
	if s.Annotations != nil {
		c.Annotations = append([]Annotation(nil), s.Annotations...)
	}
	return c
}

// String implements fmt.Stringer for log lines
func (s Stock) String() string {
	return fmt.Sprintf("%s(score=%d, price=%.2f)", s.Symbol, s.Score, s.CurrentPrice)
}

func ptr[T any](v T) *T {
	return &v
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Float returns a pointer to v
func Float(v float64) *float64 {
	return &v
}

// Quote is a live quote. Nil fields mean the source did not report them.
type Quote struct {
	Price    *float64 `json:"price,omitempty"`
	Media200 *float64 `json:"media200,omitempty"`
}

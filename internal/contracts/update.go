package contracts

import (
	"encoding/json"
)

type deleteField struct{}

// DeleteField is a patch value that removes the key from the stored document
var DeleteField any = deleteField{}

// IsDeleteField reports whether v is the DeleteField sentinel
func IsDeleteField(v any) bool {
	_, ok := v.(deleteField)
	return ok
}

// NullString is a three-state string: absent, explicit null, or a value
type NullString struct {
	Set   bool
	Null  bool
	Value string
}

// SetString returns a present, non-null NullString
func SetString(v string) NullString {
	return NullString{Set: true, Value: v}
}

// NullValue returns a present, explicitly null NullString
func NullValue() NullString {
	return NullString{Set: true, Null: true}
}

// IsZero makes omitzero skip absent values
func (n NullString) IsZero() bool {
	return !n.Set
}

// UnmarshalJSON implements json.Unmarshaler
func (n *NullString) UnmarshalJSON(data []byte) error {
	n.Set = true
	if string(data) == "null" {
		n.Null = true
		n.Value = ""
		return nil
	}
	n.Null = false
	return json.Unmarshal(data, &n.Value)
}

// MarshalJSON implements json.Marshaler
func (n NullString) MarshalJSON() ([]byte, error) {
	if !n.Set || n.Null {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

// StockUpdate is a partial stock. Nil fields are left untouched.
type StockUpdate struct {
	Symbol            *string     `json:"symbol,omitempty"`
	CurrentPrice      *float64    `json:"currentPrice,omitempty"`
	DistanceNegative  *float64    `json:"distanceNegative,omitempty"`
	DistancePositive  *float64    `json:"distancePositive,omitempty"`
	TargetPrice       *float64    `json:"targetPrice,omitempty"`
	Upside            *float64    `json:"upside,omitempty"`
	Checklist         *Checklist  `json:"checklist,omitempty"`
	Score             *int        `json:"score,omitempty"`
	CPF               *string     `json:"cpf,omitempty"`
	Media200          *float64    `json:"media200,omitempty"`
	ObserverTo        *ObserverTo `json:"observerTo,omitempty"`
	DateLastCheck     *string     `json:"dateLastCheck,omitempty"`
	AveragePercent200 *float64    `json:"averagePercent200,omitempty"`

	PL                         *float64 `json:"pl,omitempty"`
	PLAverage                  *float64 `json:"plAverage,omitempty"`
	PLTarget                   *float64 `json:"plTarget,omitempty"`
	PLTargetPercent            *float64 `json:"plTargetPercent,omitempty"`
	PLTargetPrice              *float64 `json:"plTargetPrice,omitempty"`
	DividendYield              *float64 `json:"dividendYield,omitempty"`
	DividendYieldTarget        *float64 `json:"dividendYieldTarget,omitempty"`
	DividendYieldTargetPercent *float64 `json:"dividendYieldTargetPercent,omitempty"`
	DividendYieldTargetPrice   *float64 `json:"dividendYieldTargetPrice,omitempty"`

	RentURL     NullString    `json:"rentUrl,omitzero"`
	Annotations *[]Annotation `json:"annotations,omitempty"`
}

// Fields returns the patch sent to the store. A null or empty rentUrl
// becomes DeleteField.
func (u StockUpdate) Fields() map[string]any {
	fields := make(map[string]any)

	putString(fields, "symbol", u.Symbol)
	putFloat(fields, "currentPrice", u.CurrentPrice)
	putFloat(fields, "distanceNegative", u.DistanceNegative)
	putFloat(fields, "distancePositive", u.DistancePositive)
	putFloat(fields, "targetPrice", u.TargetPrice)
	putFloat(fields, "upside", u.Upside)
	if u.Checklist != nil {
		fields["checklist"] = *u.Checklist
	}
	if u.Score != nil {
		fields["score"] = *u.Score
	}
	putString(fields, "cpf", u.CPF)
	putFloat(fields, "media200", u.Media200)
	if u.ObserverTo != nil {
		fields["observerTo"] = string(*u.ObserverTo)
	}
	putString(fields, "dateLastCheck", u.DateLastCheck)
	putFloat(fields, "averagePercent200", u.AveragePercent200)

	putFloat(fields, "pl", u.PL)
	putFloat(fields, "plAverage", u.PLAverage)
	putFloat(fields, "plTarget", u.PLTarget)
	putFloat(fields, "plTargetPercent", u.PLTargetPercent)
	putFloat(fields, "plTargetPrice", u.PLTargetPrice)
	putFloat(fields, "dividendYield", u.DividendYield)
	putFloat(fields, "dividendYieldTarget", u.DividendYieldTarget)
	putFloat(fields, "dividendYieldTargetPercent", u.DividendYieldTargetPercent)
	putFloat(fields, "dividendYieldTargetPrice", u.DividendYieldTargetPrice)

	if u.RentURL.Set {
		if u.RentURL.Null || u.RentURL.Value == "" {
			fields["rentUrl"] = DeleteField
		} else {
			fields["rentUrl"] = u.RentURL.Value
		}
	}
	if u.Annotations != nil {
		fields["annotations"] = *u.Annotations
	}

	return fields
}

// ApplyTo returns s with the update applied, the local mirror of Fields
func (u StockUpdate) ApplyTo(s Stock) Stock {
	out := s.Clone()
	if u.Symbol != nil {
		out.Symbol = *u.Symbol
	}
	if u.CurrentPrice != nil {
		out.CurrentPrice = *u.CurrentPrice
	}
	if u.DistanceNegative != nil {
		out.DistanceNegative = *u.DistanceNegative
	}
	if u.DistancePositive != nil {
		out.DistancePositive = *u.DistancePositive
	}
	if u.TargetPrice != nil {
		out.TargetPrice = clonePtr(u.TargetPrice)
	}
	if u.Upside != nil {
		out.Upside = clonePtr(u.Upside)
	}
	if u.Checklist != nil {
		out.Checklist = *u.Checklist
	}
	if u.Score != nil {
		out.Score = *u.Score
	}
	if u.CPF != nil {
		out.CPF = *u.CPF
	}
	if u.Media200 != nil {
		out.Media200 = clonePtr(u.Media200)
	}
	if u.ObserverTo != nil {
		out.ObserverTo = *u.ObserverTo
	}
	if u.DateLastCheck != nil {
		out.DateLastCheck = *u.DateLastCheck
	}
	if u.AveragePercent200 != nil {
		out.AveragePercent200 = clonePtr(u.AveragePercent200)
	}
	if u.RentURL.Set {
		if u.RentURL.Null || u.RentURL.Value == "" {
			out.RentURL = nil
		} else {
			out.RentURL = ptr(u.RentURL.Value)
		}
	}
	if u.Annotations != nil {
		out.Annotations = append([]Annotation(nil), (*u.Annotations)...)
	}
	return out
}

func putString(fields map[string]any, key string, v *string) {
	if v != nil {
		fields[key] = *v
	}
}

func putFloat(fields map[string]any, key string, v *float64) {
	if v != nil {
		fields[key] = *v
	}
}

package contracts

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserverToToggle(t *testing.T) {
	tests := []struct {
		in   ObserverTo
		want ObserverTo
	}{
		{ObserveBuy, ObserveSell},
		{ObserveSell, ObserveBuy},
		{"", ObserveBuy},
	}

	for _, tt := range tests {
		t.Run(string(tt.in), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Toggle())
		})
	}
}

func TestChecklistWith(t *testing.T) {
	var c Checklist

	c2, err := c.With("magicFormula", true)
	require.NoError(t, err)
	assert.True(t, c2.MagicFormula)
	assert.False(t, c.MagicFormula, "original must not change")

	v, err := c2.Get("magicFormula")
	require.NoError(t, err)
	assert.True(t, v)

	_, err = c.With("nope", true)
	assert.ErrorIs(t, err, ErrUnknownChecklistItem)
}

func TestChecklistItemsCoverEveryFlag(t *testing.T) {
	all := AllChecked()
	for _, v := range all.Values() {
		assert.True(t, v)
	}
	assert.Len(t, ChecklistItems, len(all.Values()))
}

func TestStockUpdateFields_RentURL(t *testing.T) {
	tests := []struct {
		name       string
		rent       NullString
		wantKey    bool
		wantDelete bool
		wantValue  string
	}{
		{name: "absent", rent: NullString{}},
		{name: "null", rent: NullValue(), wantKey: true, wantDelete: true},
		{name: "empty", rent: SetString(""), wantKey: true, wantDelete: true},
		{name: "value", rent: SetString("https://x"), wantKey: true, wantValue: "https://x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := StockUpdate{RentURL: tt.rent}.Fields()
			v, ok := fields["rentUrl"]
			assert.Equal(t, tt.wantKey, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.wantDelete, IsDeleteField(v))
			if !tt.wantDelete {
				assert.Equal(t, tt.wantValue, v)
			}
		})
	}
}

func TestStockUpdateFields_OmitsNil(t *testing.T) {
	price := 12.5
	fields := StockUpdate{CurrentPrice: &price}.Fields()
	assert.Equal(t, map[string]any{"currentPrice": 12.5}, fields)
}

func TestStockUpdateJSON(t *testing.T) {
	var u StockUpdate
	require.NoError(t, json.Unmarshal([]byte(`{"rentUrl":null,"targetPrice":30}`), &u))
	assert.True(t, u.RentURL.Set)
	assert.True(t, u.RentURL.Null)
	require.NotNil(t, u.TargetPrice)
	assert.Equal(t, 30.0, *u.TargetPrice)

	var absent StockUpdate
	require.NoError(t, json.Unmarshal([]byte(`{"targetPrice":30}`), &absent))
	assert.False(t, absent.RentURL.Set)
}

func TestAsUpdateRoundTrip(t *testing.T) {
	rent := "https://rent"
	s := Stock{
		Symbol:       "ABC3",
		CurrentPrice: 40,
		TargetPrice:  Float(50),
		CPF:          "11144477735",
		ObserverTo:   ObserveBuy,
		RentURL:      &rent,
		Annotations:  []Annotation{{Date: "2024-01-01", Text: "x", Type: AnnotationInfo}},
	}

	got := s.AsUpdate().ApplyTo(Stock{})
	assert.Equal(t, s, got)

	fields := s.AsUpdate().Fields()
	assert.NotContains(t, fields, "upside")
	assert.NotContains(t, fields, "media200")
	assert.Equal(t, "https://rent", fields["rentUrl"])
}

func TestStockFields(t *testing.T) {
	s := Stock{Symbol: "ABC3", CurrentPrice: 40, Score: 2}
	fields := s.Fields()

	assert.Equal(t, "ABC3", fields["symbol"])
	assert.Equal(t, 40.0, fields["currentPrice"])
	assert.Equal(t, 2.0, fields["score"])
	assert.NotContains(t, fields, "upside")
}

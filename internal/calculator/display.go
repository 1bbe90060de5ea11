package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/bestchoice-b3/b3-daily/internal/contracts"
)

// DisplayPlaces is the number of decimals shown for prices and percentages
const DisplayPlaces = 2

// Round rounds v half away from zero to places decimals
func Round(v float64, places int32) float64 {
	f, _ := decimal.NewFromFloat(v).Round(places).Float64()
	return f
}

// RoundPtr is Round for optional values
func RoundPtr(v *float64, places int32) *float64 {
	if v == nil {
		return nil
	}
	r := Round(*v, places)
	return &r
}

// FormatDisplay renders an optional value with DisplayPlaces decimals, "-" when unset
func FormatDisplay(v *float64) string {
	if v == nil {
		return "-"
	}
	return decimal.NewFromFloat(*v).StringFixed(DisplayPlaces)
}

// Links are the external pages shown next to a stock
type Links struct {
	StatusInvest string `json:"statusInvest"`
	Insiders     string `json:"insiders"`
	Rent         string `json:"rent"`
}

// StockLinks builds the external pages of s. A stored rentUrl replaces the
// default rent page.
func StockLinks(s contracts.Stock) Links {
	links := Links{
		StatusInvest: "https://statusinvest.com.br/acoes/" + s.Symbol,
		Insiders:     "https://www.fundamentus.com.br/insiders.php?papel=" + s.Symbol + "&tipo=1",
		Rent:         "https://www.investsite.com.br/graficos_aluguel_posicao.php?cod_negociacao=" + s.Symbol,
	}
	if s.RentURL != nil && *s.RentURL != "" {
		links.Rent = *s.RentURL
	}
	return links
}

package calculator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bestchoice-b3/b3-daily/internal/contracts"
)

func TestRound(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{25, 25},
		{12.345, 12.35},
		{-12.345, -12.35},
		{33.333333, 33.33},
		{0.004, 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Round(tt.in, DisplayPlaces), "Round(%v)", tt.in)
	}

	assert.Nil(t, RoundPtr(nil, 2))
	assert.Equal(t, 1.5, *RoundPtr(contracts.Float(1.499999), 2))
}

func TestFormatDisplay(t *testing.T) {
	assert.Equal(t, "-", FormatDisplay(nil))
	assert.Equal(t, "40.00", FormatDisplay(contracts.Float(40)))
	assert.Equal(t, "-3.14", FormatDisplay(contracts.Float(-3.14159)))
}

func TestStockLinks(t *testing.T) {
	links := StockLinks(contracts.Stock{Symbol: "PETR4"})
	assert.Equal(t, "https://statusinvest.com.br/acoes/PETR4", links.StatusInvest)
	assert.Equal(t, "https://www.fundamentus.com.br/insiders.php?papel=PETR4&tipo=1", links.Insiders)
	assert.Equal(t, "https://www.investsite.com.br/graficos_aluguel_posicao.php?cod_negociacao=PETR4", links.Rent)

	rent := "https://example.com/rent/PETR4"
	links = StockLinks(contracts.Stock{Symbol: "PETR4", RentURL: &rent})
	assert.Equal(t, rent, links.Rent)

	empty := ""
	links = StockLinks(contracts.Stock{Symbol: "PETR4", RentURL: &empty})
	assert.Contains(t, links.Rent, "investsite")
}

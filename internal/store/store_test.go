package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bestchoice-b3/b3-daily/internal/contracts"
	"github.com/bestchoice-b3/b3-daily/pkg/config"
)

const testCPF = "11144477735"

func TestDecode(t *testing.T) {
	tests := []struct {
		name         string
		data         map[string]any
		wantScore    int
		wantInsider  bool
		wantMagic    bool
		wantObserver contracts.ObserverTo
	}{
		{
			name: "stored score is kept",
			data: map[string]any{
				"symbol":    "ABC3",
				"cpf":       testCPF,
				"checklist": map[string]any{"insider": true},
				"score":     float64(7),
			},
			wantScore:   7,
			wantInsider: true,
		},
		{
			name: "missing score is recomputed",
			data: map[string]any{
				"symbol":    "ABC3",
				"checklist": map[string]any{"insider": true, "magicFormula": true, "bogus": true},
			},
			wantScore:   2,
			wantInsider: true,
			wantMagic:   true,
		},
		{
			name: "non numeric score is recomputed",
			data: map[string]any{
				"symbol":    "ABC3",
				"checklist": map[string]any{"insider": true},
				"score":     "9",
			},
			wantScore:   1,
			wantInsider: true,
		},
		{
			name: "legacy checklist array is ignored",
			data: map[string]any{
				"symbol":     "ABC3",
				"checklist":  []any{"insider"},
				"observerTo": "V",
			},
			wantScore:    0,
			wantObserver: contracts.ObserveSell,
		},
		{
			name: "fractional score is recomputed",
			data: map[string]any{
				"symbol":    "ABC3",
				"checklist": map[string]any{"insider": true, "magicFormula": true},
				"score":     3.7,
			},
			wantScore:   2,
			wantInsider: true,
			wantMagic:   true,
		},
		{
			name: "mistyped field is skipped",
			data: map[string]any{
				"symbol":       "ABC3",
				"currentPrice": "x",
				"observerTo":   "V",
				"checklist":    map[string]any{"insider": true},
			},
			wantScore:    1,
			wantInsider:  true,
			wantObserver: contracts.ObserveSell,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stock, err := Decode(contracts.Document{ID: "ABC3", Data: tt.data})
			require.NoError(t, err)
			assert.Equal(t, "ABC3", stock.ID)
			assert.Equal(t, tt.wantScore, stock.Score)
			assert.Equal(t, tt.wantInsider, stock.Checklist.Insider)
			assert.Equal(t, tt.wantMagic, stock.Checklist.MagicFormula)
			assert.Equal(t, tt.wantObserver, stock.ObserverTo)
		})
	}
}

func TestDecode_KeepsDocumentWithLegacyStringPrice(t *testing.T) {
	stock, err := Decode(contracts.Document{ID: "PETR4", Data: map[string]any{
		"symbol":       "PETR4",
		"cpf":          testCPF,
		"currentPrice": 38.5,
		"targetPrice":  "50",
		"annotations":  "not a list",
	}})
	require.NoError(t, err)

	assert.Equal(t, "PETR4", stock.Symbol)
	assert.Equal(t, testCPF, stock.CPF)
	assert.Equal(t, 38.5, stock.CurrentPrice)
	assert.Nil(t, stock.TargetPrice)
	assert.Empty(t, stock.Annotations)
}

func TestMemoryStore_SetAndList(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Set(ctx, contracts.Stock{Symbol: "XYZ4", CPF: testCPF}))
	require.NoError(t, s.Set(ctx, contracts.Stock{Symbol: "ABC3", CPF: testCPF}))
	require.NoError(t, s.Set(ctx, contracts.Stock{Symbol: "OTH3", CPF: "52998224725"}))

	docs, err := s.List(ctx, testCPF)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "ABC3", docs[0].ID)
	assert.Equal(t, "XYZ4", docs[1].ID)
}

func TestMemoryStore_UpdateDeletesField(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	rent := "https://rent"

	require.NoError(t, s.Set(ctx, contracts.Stock{Symbol: "ABC3", CPF: testCPF, RentURL: &rent}))
	doc, _ := s.Document("ABC3")
	assert.Equal(t, "https://rent", doc["rentUrl"])

	err := s.Update(ctx, "ABC3", contracts.StockUpdate{RentURL: contracts.SetString("")}.Fields())
	require.NoError(t, err)

	doc, _ = s.Document("ABC3")
	assert.NotContains(t, doc, "rentUrl")
}

func TestMemoryStore_UpdateNormalizesValues(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Set(ctx, contracts.Stock{Symbol: "ABC3", CPF: testCPF}))

	checklist := contracts.Checklist{Insider: true}
	score := 1
	require.NoError(t, s.Update(ctx, "ABC3", contracts.StockUpdate{Checklist: &checklist, Score: &score}.Fields()))

	doc, _ := s.Document("ABC3")
	assert.Equal(t, float64(1), doc["score"])
	assert.Equal(t, true, doc["checklist"].(map[string]any)["insider"])
}

func TestMemoryStore_UpdateMissing(t *testing.T) {
	s := NewMemoryStore()
	err := s.Update(context.Background(), "NOPE3", map[string]any{"score": 1})
	assert.ErrorIs(t, err, ErrDocumentNotFound)
}

func TestMemoryStore_Subscribe(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := NewMemoryStore()

	ch, err := s.Subscribe(ctx, testCPF)
	require.NoError(t, err)

	first := <-ch
	assert.Empty(t, first)

	require.NoError(t, s.Set(context.Background(), contracts.Stock{Symbol: "ABC3", CPF: testCPF}))

	select {
	case docs := <-ch:
		require.Len(t, docs, 1)
		assert.Equal(t, "ABC3", docs[0].ID)
	case <-time.After(time.Second):
		t.Fatal("no snapshot after write")
	}

	cancel()
	assert.Eventually(t, func() bool {
		_, ok := <-ch
		return !ok
	}, time.Second, 10*time.Millisecond)
}

func TestNew(t *testing.T) {
	st, err := New(&config.Config{StoreBackend: "memory"}, nil, nil)
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, st)

	_, err = New(&config.Config{StoreBackend: "postgres"}, nil, nil)
	assert.Error(t, err)
}

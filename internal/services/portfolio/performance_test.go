package portfolio

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daniele21/portfolio-pilot/internal/models"
)

func TestPortfolioPerformance_SingleAcquisition(t *testing.T) {
	storage := newMemStorage()
	svc := newTestService(storage, nil)
	ctx := context.Background()

	_, err := storage.txs.SaveTransactions(ctx, "main", []*models.Transaction{
		{Ticker: "AAPL", Quantity: 5, Price: 100, Date: "2024-01-02", Label: "buy"},
	})
	require.NoError(t, err)
	seedHistory(storage, "AAPL", map[string]float64{
		"2024-01-02": 100,
		"2024-01-03": 110,
	})

	entries, err := svc.PortfolioPerformance(ctx, "main")
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Buy day: market value equals cost, nothing gained yet.
	assert.Equal(t, "2024-01-02", entries[0].Date)
	assert.Equal(t, 500.0, entries[0].AbsValue)
	assert.Equal(t, 0.0, entries[0].Value)
	assert.Equal(t, 0.0, entries[0].Pct)
	assert.Equal(t, 0.0, *entries[0].PctFromFirst)

	assert.Equal(t, 550.0, entries[1].AbsValue)
	assert.Equal(t, 50.0, entries[1].Value)
	assert.InDelta(t, 10.0, entries[1].Pct, 1e-9)
	assert.InDelta(t, 10.0, *entries[1].PctFromFirst, 1e-9)
}

func TestPortfolioPerformance_PctFromFirstAnchorsAtFirstNonzero(t *testing.T) {
	storage := newMemStorage()
	svc := newTestService(storage, nil)
	ctx := context.Background()

	// Price data starts before the first acquisition: the early dates have
	// zero holdings and zero abs_value.
	_, err := storage.txs.SaveTransactions(ctx, "main", []*models.Transaction{
		{Ticker: "AAPL", Quantity: 10, Price: 102, Date: "2024-01-04", Label: "buy"},
	})
	require.NoError(t, err)
	seedHistory(storage, "AAPL", map[string]float64{
		"2024-01-02": 100,
		"2024-01-03": 101,
		"2024-01-04": 102,
		"2024-01-05": 112.2,
	})

	entries, err := svc.PortfolioPerformance(ctx, "main")
	require.NoError(t, err)
	require.Len(t, entries, 4)

	assert.Equal(t, 0.0, entries[0].AbsValue)
	assert.Equal(t, 0.0, *entries[0].PctFromFirst)
	assert.Equal(t, 0.0, *entries[1].PctFromFirst)

	// Anchor is the first nonzero abs_value (1020 at Jan 4).
	assert.Equal(t, 1020.0, entries[2].AbsValue)
	assert.Equal(t, 0.0, *entries[2].PctFromFirst)
	assert.InDelta(t, 10.0, *entries[3].PctFromFirst, 1e-9)
}

func TestPortfolioPerformance_SkipsTickersWithoutPrices(t *testing.T) {
	storage := newMemStorage()
	svc := newTestService(storage, nil)
	ctx := context.Background()

	_, err := storage.txs.SaveTransactions(ctx, "main", []*models.Transaction{
		{Ticker: "AAPL", Quantity: 5, Price: 100, Date: "2024-01-02", Label: "buy"},
		{Ticker: "GHOST", Quantity: 3, Price: 50, Date: "2024-01-02", Label: "buy"},
	})
	require.NoError(t, err)
	seedHistory(storage, "AAPL", map[string]float64{"2024-01-02": 100})

	entries, err := svc.PortfolioPerformance(ctx, "main")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 500.0, entries[0].AbsValue, "the unpriceable instrument contributes no dates and no value")
	assert.Equal(t, 0.0, entries[0].Value)
}

func TestPortfolioPerformance_Empty(t *testing.T) {
	storage := newMemStorage()
	svc := newTestService(storage, nil)

	entries, err := svc.PortfolioPerformance(context.Background(), "main")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestPortfolioPerformance_Idempotent(t *testing.T) {
	storage := newMemStorage()
	svc := newTestService(storage, nil)
	ctx := context.Background()

	_, err := storage.txs.SaveTransactions(ctx, "main", []*models.Transaction{
		{Ticker: "AAPL", Quantity: 7, Price: 99.5, Date: "2024-01-02", Label: "buy"},
		{Ticker: "AAPL", Quantity: -2, Price: 103.25, Date: "2024-01-04", Label: "sell"},
	})
	require.NoError(t, err)
	seedHistory(storage, "AAPL", map[string]float64{
		"2024-01-02": 99.5,
		"2024-01-03": 101.75,
		"2024-01-04": 103.25,
	})

	first, err := svc.PortfolioPerformance(ctx, "main")
	require.NoError(t, err)
	second, err := svc.PortfolioPerformance(ctx, "main")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// Bypassing the cache must not change values either.
	recomputed, err := svc.computePortfolioPerformance(ctx, "main")
	require.NoError(t, err)
	assert.Equal(t, first, recomputed)
}

func TestTickerPerformance_FirstEntryPctFromStartAlwaysZero(t *testing.T) {
	storage := newMemStorage()
	svc := newTestService(storage, nil)
	ctx := context.Background()

	// Prices begin before the acquisition, so the series starts with
	// abs_value 0.
	_, err := storage.txs.SaveTransactions(ctx, "main", []*models.Transaction{
		{Ticker: "AAPL", Quantity: 10, Price: 101, Date: "2024-01-03", Label: "buy"},
	})
	require.NoError(t, err)
	seedHistory(storage, "AAPL", map[string]float64{
		"2024-01-02": 100,
		"2024-01-03": 101,
		"2024-01-04": 103,
	})

	entries, err := svc.TickerPerformance(ctx, "main", "AAPL", "")
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, 0.0, entries[0].AbsValue)
	assert.Equal(t, 0.0, *entries[0].PctFromStart)
	// With a zero anchor every subsequent pct_from_start is defined as 0.
	assert.Equal(t, 0.0, *entries[1].PctFromStart)
	assert.Equal(t, 0.0, *entries[2].PctFromStart)
}

func TestTickerPerformance_StartDateFilter(t *testing.T) {
	storage := newMemStorage()
	svc := newTestService(storage, nil)
	ctx := context.Background()

	_, err := storage.txs.SaveTransactions(ctx, "main", []*models.Transaction{
		{Ticker: "AAPL", Quantity: 10, Price: 100, Date: "2024-01-02", Label: "buy"},
	})
	require.NoError(t, err)
	seedHistory(storage, "AAPL", map[string]float64{
		"2024-01-02": 100,
		"2024-01-03": 105,
		"2024-01-04": 110,
	})

	entries, err := svc.TickerPerformance(ctx, "main", "AAPL", "2024-01-03")
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "2024-01-03", entries[0].Date)
	assert.Equal(t, 1050.0, entries[0].AbsValue)
	assert.Equal(t, 0.0, *entries[0].PctFromStart, "first entry of the filtered range is the anchor")
	assert.InDelta(t, 110.0/105.0*100-100, *entries[1].PctFromStart, 1e-9)

	// A start after all data yields an empty series.
	entries, err = svc.TickerPerformance(ctx, "main", "AAPL", "2025-01-01")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestBenchmarkPerformance(t *testing.T) {
	storage := newMemStorage()
	svc := newTestService(storage, nil)
	ctx := context.Background()

	seedHistory(storage, "SPY", map[string]float64{
		"2024-01-02": 0, // pre-listing pad
		"2024-01-03": 400,
		"2024-01-04": 440,
	})

	entries, err := svc.BenchmarkPerformance(ctx, "spy")
	require.NoError(t, err)
	require.Len(t, entries, 3)

	// Percent change anchors at the first nonzero price.
	assert.Equal(t, 0.0, entries[0].Pct)
	assert.Equal(t, 0.0, entries[1].Pct)
	assert.InDelta(t, 10.0, entries[2].Pct, 1e-9)

	for _, e := range entries {
		assert.Equal(t, e.AbsValue, e.Value, "benchmark has no cost basis")
		assert.Equal(t, e.Pct, *e.PctFromFirst)
	}
}

func TestPerformanceEntry_ZeroPercentagesStayOnTheWire(t *testing.T) {
	storage := newMemStorage()
	svc := newTestService(storage, nil)
	ctx := context.Background()

	_, err := storage.txs.SaveTransactions(ctx, "main", []*models.Transaction{
		{Ticker: "AAPL", Quantity: 5, Price: 100, Date: "2024-01-02", Label: "buy"},
	})
	require.NoError(t, err)
	seedHistory(storage, "AAPL", map[string]float64{"2024-01-02": 100, "2024-01-03": 110})

	// The first ticker entry's pct_from_start is exactly 0 and must still be
	// serialized; the key the series does not carry stays off the wire.
	entries, err := svc.TickerPerformance(ctx, "main", "AAPL", "")
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	raw, err := json.Marshal(entries[0])
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"pct_from_start":0`)
	assert.NotContains(t, string(raw), "pct_from_first")

	perf, err := svc.PortfolioPerformance(ctx, "main")
	require.NoError(t, err)
	require.NotEmpty(t, perf)
	raw, err = json.Marshal(perf[0])
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"pct_from_first":0`)
	assert.NotContains(t, string(raw), "pct_from_start")
}

func TestMultiTickerPerformance(t *testing.T) {
	storage := newMemStorage()
	svc := newTestService(storage, nil)
	ctx := context.Background()

	_, err := storage.txs.SaveTransactions(ctx, "main", []*models.Transaction{
		{Ticker: "AAPL", Quantity: 5, Price: 100, Date: "2024-01-02", Label: "buy"},
		{Ticker: "MSFT", Quantity: 2, Price: 300, Date: "2024-01-02", Label: "buy"},
	})
	require.NoError(t, err)
	seedHistory(storage, "AAPL", map[string]float64{"2024-01-02": 100, "2024-01-03": 110})
	seedHistory(storage, "MSFT", map[string]float64{"2024-01-02": 300, "2024-01-03": 310})

	// Duplicates and lowercase input collapse to one computation per symbol.
	results, err := svc.MultiTickerPerformance(ctx, "main", []string{"aapl", "AAPL", "msft", ""}, "")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Len(t, results["AAPL"], 2)
	assert.Len(t, results["MSFT"], 2)

	// A ticker with no transactions yields an empty series, not an error.
	results, err = svc.MultiTickerPerformance(ctx, "main", []string{"SPY"}, "")
	require.NoError(t, err)
	assert.Empty(t, results["SPY"])
}

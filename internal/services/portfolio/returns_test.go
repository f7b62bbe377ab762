package portfolio

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daniele21/portfolio-pilot/internal/models"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(models.DateFormat, s)
	require.NoError(t, err)
	return d
}

func seedReturnsFixture(t *testing.T) (*memStorage, *Service) {
	t.Helper()
	storage := newMemStorage()
	svc := newTestService(storage, nil)
	ctx := context.Background()

	_, err := storage.txs.SaveTransactions(ctx, "main", []*models.Transaction{
		{Ticker: "AAPL", Quantity: 10, Price: 100, Date: "2024-01-02", Label: "buy"},
		{Ticker: "MSFT", Quantity: 2, Price: 300, Date: "2024-01-03", Label: "buy"},
	})
	require.NoError(t, err)
	seedHistory(storage, "AAPL", map[string]float64{
		"2024-01-02": 100,
		"2024-01-03": 102,
		"2024-01-04": 105,
	})
	seedHistory(storage, "MSFT", map[string]float64{
		"2024-01-03": 300,
		"2024-01-04": 315,
	})
	return storage, svc
}

func TestReturnsSince(t *testing.T) {
	_, svc := seedReturnsFixture(t)
	ctx := context.Background()

	summary, err := svc.ReturnsSince(ctx, "main", mustDate(t, "2024-01-03"))
	require.NoError(t, err)
	require.NotNil(t, summary.Portfolio)

	// Effective bracketing: start 2024-01-03, end 2024-01-04.
	// Start: 10×102 + 2×300 = 1620. End: 10×105 + 2×315 = 1680.
	assert.Equal(t, 1620.0, summary.Portfolio.StartValue)
	assert.Equal(t, 1680.0, summary.Portfolio.EndValue)
	assert.InDelta(t, (1680.0-1620.0)/1620.0*100, summary.Portfolio.ReturnPct, 1e-9)

	require.Contains(t, summary.Tickers, "AAPL")
	require.Contains(t, summary.Tickers, "MSFT")
	assert.Equal(t, 1020.0, summary.Tickers["AAPL"].StartValue)
	assert.Equal(t, 1050.0, summary.Tickers["AAPL"].EndValue)
}

func TestReturnsSince_StartBeforeAllDataMeasuresFullHistory(t *testing.T) {
	_, svc := seedReturnsFixture(t)

	summary, err := svc.ReturnsSince(context.Background(), "main", mustDate(t, "2020-01-01"))
	require.NoError(t, err)
	require.NotNil(t, summary.Portfolio)
	// Start clamps to 2024-01-02: only AAPL is held and priced.
	assert.Equal(t, 1000.0, summary.Portfolio.StartValue)
	assert.Equal(t, 1680.0, summary.Portfolio.EndValue)
}

func TestReturnsSince_FutureDateSentinel(t *testing.T) {
	_, svc := seedReturnsFixture(t)

	summary, err := svc.ReturnsSince(context.Background(), "main", mustDate(t, "2030-01-01"))
	require.NoError(t, err)
	assert.Nil(t, summary.Portfolio)
	assert.Empty(t, summary.Tickers)
}

func TestReturnsSince_NoTransactionsSentinel(t *testing.T) {
	storage := newMemStorage()
	svc := newTestService(storage, nil)

	summary, err := svc.ReturnsSince(context.Background(), "empty", mustDate(t, "2024-01-01"))
	require.NoError(t, err)
	assert.Nil(t, summary.Portfolio)
	assert.NotNil(t, summary.Tickers)
	assert.Empty(t, summary.Tickers)
}

func TestReturnsSince_ExcludesTickersWithoutTransactionsByEnd(t *testing.T) {
	storage, svc := seedReturnsFixture(t)
	ctx := context.Background()

	// A holding bought after the data window's end date has no exposure
	// inside it.
	_, err := storage.txs.SaveTransactions(ctx, "main", []*models.Transaction{
		{Ticker: "SPY", Quantity: 1, Price: 500, Date: "2024-06-01", Label: "buy"},
	})
	require.NoError(t, err)
	seedHistory(storage, "SPY", map[string]float64{"2024-01-03": 480, "2024-01-04": 481})

	summary, err := svc.ReturnsSince(ctx, "main", mustDate(t, "2024-01-03"))
	require.NoError(t, err)
	assert.NotContains(t, summary.Tickers, "SPY")
}

func TestLastDayPossibleReturns(t *testing.T) {
	_, svc := seedReturnsFixture(t)

	summary, err := svc.lastDayPossibleReturns(context.Background(), "main")
	require.NoError(t, err)
	require.NotNil(t, summary.Portfolio)
	// Second-to-last distinct date is 2024-01-03.
	assert.Equal(t, 1620.0, summary.Portfolio.StartValue)
	assert.Equal(t, 1680.0, summary.Portfolio.EndValue)
}

func TestLastDayPossibleReturns_SingleDateSentinel(t *testing.T) {
	storage := newMemStorage()
	svc := newTestService(storage, nil)
	ctx := context.Background()

	_, err := storage.txs.SaveTransactions(ctx, "main", []*models.Transaction{
		{Ticker: "AAPL", Quantity: 1, Price: 100, Date: "2024-01-02", Label: "buy"},
	})
	require.NoError(t, err)
	seedHistory(storage, "AAPL", map[string]float64{"2024-01-02": 100})

	summary, err := svc.lastDayPossibleReturns(ctx, "main")
	require.NoError(t, err)
	assert.Nil(t, summary.Portfolio, "fewer than two distinct dates means no completed interval")
}

func TestPeriodReturns_Offsets(t *testing.T) {
	storage := newMemStorage()
	svc := newTestService(storage, nil)
	svc.now = func() time.Time { return mustDate(t, "2024-03-15") }
	ctx := context.Background()

	_, err := storage.txs.SaveTransactions(ctx, "main", []*models.Transaction{
		{Ticker: "AAPL", Quantity: 1, Price: 100, Date: "2024-01-02", Label: "buy"},
	})
	require.NoError(t, err)
	seedHistory(storage, "AAPL", map[string]float64{
		"2024-01-02": 100, // covered by YTD (Jan 1) and one-year, not by shorter windows
		"2024-03-11": 120, // inside weekly (>= Mar 8)
		"2024-03-14": 130,
	})

	set, err := svc.PeriodReturns(ctx, "main")
	require.NoError(t, err)

	require.NotNil(t, set.Weekly.Portfolio)
	assert.Equal(t, 120.0, set.Weekly.Portfolio.StartValue)
	assert.Equal(t, 130.0, set.Weekly.Portfolio.EndValue)

	require.NotNil(t, set.YTD.Portfolio)
	assert.Equal(t, 100.0, set.YTD.Portfolio.StartValue)

	require.NotNil(t, set.ThreeDays.Portfolio)
	// Three-day window starts Mar 12: only Mar 14 has data, start == end.
	assert.Equal(t, 130.0, set.ThreeDays.Portfolio.StartValue)
	assert.Equal(t, 130.0, set.ThreeDays.Portfolio.EndValue)
	assert.Equal(t, 0.0, set.ThreeDays.Portfolio.ReturnPct)

	require.NotNil(t, set.Yesterday.Portfolio)
	assert.Equal(t, 120.0, set.Yesterday.Portfolio.StartValue)

	require.NotNil(t, set.Monthly.Portfolio)
	require.NotNil(t, set.ThreeMonth.Portfolio)
	require.NotNil(t, set.OneYear.Portfolio)
}

func TestTickerReturnsSince(t *testing.T) {
	_, svc := seedReturnsFixture(t)
	ctx := context.Background()

	ret, err := svc.TickerReturnsSince(ctx, "main", "AAPL", mustDate(t, "2024-01-03"))
	require.NoError(t, err)
	require.NotNil(t, ret)
	assert.Equal(t, 1020.0, ret.StartValue)
	assert.Equal(t, 1050.0, ret.EndValue)

	// Unknown holdings and future dates return nil, not an error.
	ret, err = svc.TickerReturnsSince(ctx, "main", "SPY", mustDate(t, "2024-01-03"))
	require.NoError(t, err)
	assert.Nil(t, ret)

	ret, err = svc.TickerReturnsSince(ctx, "main", "AAPL", mustDate(t, "2030-01-01"))
	require.NoError(t, err)
	assert.Nil(t, ret)
}

func TestTickerPeriodReturns(t *testing.T) {
	storage := newMemStorage()
	svc := newTestService(storage, nil)
	svc.now = func() time.Time { return mustDate(t, "2024-01-10") }
	ctx := context.Background()

	_, err := storage.txs.SaveTransactions(ctx, "main", []*models.Transaction{
		{Ticker: "AAPL", Quantity: 2, Price: 100, Date: "2024-01-02", Label: "buy"},
	})
	require.NoError(t, err)
	seedHistory(storage, "AAPL", map[string]float64{
		"2024-01-02": 100,
		"2024-01-08": 105,
		"2024-01-09": 110,
	})

	set, err := svc.TickerPeriodReturns(ctx, "main", "aapl")
	require.NoError(t, err)

	require.NotNil(t, set.Weekly)
	assert.Equal(t, 210.0, set.Weekly.StartValue)
	assert.Equal(t, 220.0, set.Weekly.EndValue)

	// The last-day anchor is the final date of the ticker's own history, so
	// start and end coincide.
	require.NotNil(t, set.Yesterday)
	assert.Equal(t, set.Yesterday.StartValue, set.Yesterday.EndValue)
	assert.Equal(t, 0.0, set.Yesterday.ReturnPct)

	require.NotNil(t, set.YTD)
	require.NotNil(t, set.Monthly)
	require.NotNil(t, set.ThreeMonth)
}

package portfolio

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/daniele21/portfolio-pilot/internal/models"
)

func TestAggregatePositions(t *testing.T) {
	txs := []*models.Transaction{
		{Ticker: "AAPL", Quantity: 10, Date: "2024-01-10"},
		{Ticker: "AAPL", Quantity: -4, Date: "2024-02-01"},
		{Ticker: "MSFT", Quantity: 5, Date: "2024-01-20"},
		{Ticker: "VWCE.DE", Quantity: 2, Date: "2024-03-01"},
	}

	positions := AggregatePositions(txs, "")
	assert.Equal(t, 6.0, positions["AAPL"])
	assert.Equal(t, 5.0, positions["MSFT"])
	assert.Equal(t, 2.0, positions["VWCE.DE"])
}

func TestAggregatePositions_Cutoff(t *testing.T) {
	txs := []*models.Transaction{
		{Ticker: "AAPL", Quantity: 10, Date: "2024-01-10"},
		{Ticker: "AAPL", Quantity: -4, Date: "2024-02-01"},
	}

	positions := AggregatePositions(txs, "2024-01-31")
	assert.Equal(t, 10.0, positions["AAPL"], "disposal after the cutoff does not count")

	positions = AggregatePositions(txs, "2024-02-01")
	assert.Equal(t, 6.0, positions["AAPL"], "cutoff date is inclusive")
}

func TestAggregatePositions_NetZero(t *testing.T) {
	txs := []*models.Transaction{
		{Ticker: "AAPL", Quantity: 10, Date: "2024-01-10"},
		{Ticker: "AAPL", Quantity: -10, Date: "2024-02-01"},
	}

	positions := AggregatePositions(txs, "")
	assert.Equal(t, 0.0, positions["AAPL"], "fully closed positions stay in the map at zero")
}

func TestExposureSweepMatchesDirectComputation(t *testing.T) {
	txs := []*models.Transaction{
		{Ticker: "AAPL", Quantity: 10, Price: 100, Date: "2024-01-10"},
		{Ticker: "AAPL", Quantity: -4, Price: 120, Date: "2024-02-01"},
		{Ticker: "AAPL", Quantity: 3, Price: 110, Date: "2024-03-15"},
	}

	exp := newExposure(txs)
	for _, date := range []string{"2024-01-10", "2024-02-01", "2024-02-15", "2024-03-15", "2024-04-01"} {
		exp.advance(date)
		qty, cost := exposureAt(txs, date)
		assert.Equal(t, qty, exp.qty, "quantity at %s", date)
		assert.Equal(t, cost, exp.cost, "cost at %s", date)
	}

	// Disposals never reduce cost basis.
	_, cost := exposureAt(txs, "2024-04-01")
	assert.Equal(t, 10*100.0+3*110.0, cost)
}

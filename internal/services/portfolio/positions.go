package portfolio

import (
	"github.com/daniele21/portfolio-pilot/internal/models"
)

// AggregatePositions reduces transactions to net quantity held per ticker.
// With a non-empty asOf date (YYYY-MM-DD), only transactions dated at or
// before it contribute. Net-zero positions remain in the map; valuation
// callers skip them.
func AggregatePositions(txs []*models.Transaction, asOf string) map[string]float64 {
	positions := make(map[string]float64)
	for _, tx := range txs {
		if asOf != "" && tx.Date > asOf {
			continue
		}
		positions[tx.Ticker] += tx.Quantity
	}
	return positions
}

// distinctTickers returns the unique tickers of a transaction list in
// first-seen order.
func distinctTickers(txs []*models.Transaction) []string {
	seen := make(map[string]bool)
	tickers := make([]string, 0)
	for _, tx := range txs {
		if !seen[tx.Ticker] {
			seen[tx.Ticker] = true
			tickers = append(tickers, tx.Ticker)
		}
	}
	return tickers
}

// tickerTransactions filters a transaction list to one ticker, preserving
// order.
func tickerTransactions(txs []*models.Transaction, ticker string) []*models.Transaction {
	filtered := make([]*models.Transaction, 0)
	for _, tx := range txs {
		if tx.Ticker == ticker {
			filtered = append(filtered, tx)
		}
	}
	return filtered
}

// exposure sweeps a date-sorted transaction list and accumulates quantity and
// cost basis up to a cutoff date. Cost basis counts acquisitions only;
// disposals never reduce it.
type exposure struct {
	txs  []*models.Transaction
	next int
	qty  float64
	cost float64
}

func newExposure(txs []*models.Transaction) *exposure {
	return &exposure{txs: txs}
}

// advance consumes transactions dated at or before date. Dates must be fed in
// ascending order.
func (e *exposure) advance(date string) {
	for e.next < len(e.txs) && e.txs[e.next].Date <= date {
		tx := e.txs[e.next]
		e.qty += tx.Quantity
		if tx.Quantity > 0 {
			e.cost += tx.Quantity * tx.Price
		}
		e.next++
	}
}

// exposureAt computes quantity and cost up to a date without a running sweep,
// for callers that jump between arbitrary dates.
func exposureAt(txs []*models.Transaction, date string) (qty, cost float64) {
	for _, tx := range txs {
		if tx.Date > date {
			continue
		}
		qty += tx.Quantity
		if tx.Quantity > 0 {
			cost += tx.Quantity * tx.Price
		}
	}
	return qty, cost
}

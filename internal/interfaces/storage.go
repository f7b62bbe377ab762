// Package interfaces defines service contracts for Portfolio Pilot
package interfaces

import (
	"context"
	"time"

	"github.com/daniele21/portfolio-pilot/internal/models"
)

// InvalidationHook is called by transaction mutators after a change to a
// portfolio's transactions, before the mutation returns. The performance
// cache registers itself here; the store never depends on the engine.
type InvalidationHook func(portfolio string, tickers ...string)

// StorageManager coordinates all storage areas.
type StorageManager interface {
	Transactions() TransactionStore
	MarketData() MarketDataStore
	Reports() ReportStore
	Close() error
}

// TransactionStore persists portfolio transactions.
// Mutators fire the registered invalidation hook for the affected portfolio.
type TransactionStore interface {
	// SaveTransactions appends transactions to a portfolio, assigning IDs.
	// Rows with an empty ticker are rejected.
	SaveTransactions(ctx context.Context, portfolio string, txs []*models.Transaction) ([]*models.Transaction, error)

	// GetTransactions returns transactions ordered by date then insertion ID.
	// An empty portfolio name returns all transactions.
	GetTransactions(ctx context.Context, portfolio string) ([]*models.Transaction, error)

	GetTransaction(ctx context.Context, id uint64) (*models.Transaction, error)
	DeleteTransaction(ctx context.Context, portfolio string, id uint64) error

	// DeletePortfolio removes the portfolio and cascades to its transactions.
	DeletePortfolio(ctx context.Context, portfolio string) error

	ListPortfolios(ctx context.Context) ([]string, error)

	SavePortfolioStatus(ctx context.Context, status *models.PortfolioStatus) error
	GetPortfolioStatus(ctx context.Context, portfolio string) (*models.PortfolioStatus, error)

	// SetInvalidationHook registers the cache purge callback.
	SetInvalidationHook(hook InvalidationHook)
}

// MarketDataStore persists ticker metadata and daily price history.
type MarketDataStore interface {
	// GetPriceHistory returns the ticker's price points sorted by date
	// ascending. A ticker with no stored data returns an empty slice.
	GetPriceHistory(ctx context.Context, ticker string) ([]models.PricePoint, error)

	// SavePriceHistory upserts points by (ticker, date).
	SavePriceHistory(ctx context.Context, ticker string, points []models.PricePoint) error

	GetTickerData(ctx context.Context, ticker string) (*models.TickerData, error)
	SaveTickerData(ctx context.Context, data *models.TickerData) error
	ListTickers(ctx context.Context) ([]string, error)

	// GetStaleTickers returns tickers whose data is older than maxAge.
	GetStaleTickers(ctx context.Context, maxAge time.Duration) ([]string, error)
}

// ReportStore persists generated reports.
type ReportStore interface {
	SavePortfolioReport(ctx context.Context, report *models.Report) error
	// GetPortfolioReport returns the report for the reference day, or the
	// latest one when referenceDate is empty. Missing reports return nil.
	GetPortfolioReport(ctx context.Context, portfolio, referenceDate string) (*models.Report, error)

	SaveTickerReport(ctx context.Context, report *models.Report) error
	GetTickerReport(ctx context.Context, ticker, referenceDate string) (*models.Report, error)
}

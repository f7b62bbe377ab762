package interfaces

import (
	"context"
	"time"

	"github.com/daniele21/portfolio-pilot/internal/models"
)

// PortfolioService computes valuations, returns, and derived metrics from
// transaction history and price history.
type PortfolioService interface {
	// Valuation series
	PortfolioPerformance(ctx context.Context, portfolio string) ([]models.PerformanceEntry, error)
	TickerPerformance(ctx context.Context, portfolio, ticker, startDate string) ([]models.PerformanceEntry, error)
	BenchmarkPerformance(ctx context.Context, ticker string) ([]models.PerformanceEntry, error)
	MultiTickerPerformance(ctx context.Context, portfolio string, tickers []string, startDate string) (map[string][]models.PerformanceEntry, error)

	// Returns
	ReturnsSince(ctx context.Context, portfolio string, since time.Time) (*models.ReturnsSummary, error)
	PeriodReturns(ctx context.Context, portfolio string) (*models.PeriodReturnsSet, error)
	TickerReturnsSince(ctx context.Context, portfolio, ticker string, since time.Time) (*models.PeriodReturn, error)
	TickerPeriodReturns(ctx context.Context, portfolio, ticker string) (*models.TickerPeriodReturns, error)

	// Current state and derived metrics
	Status(ctx context.Context, portfolio string) (*models.PortfolioStatus, error)
	LiveStatus(ctx context.Context, portfolio string) (*models.PortfolioStatus, error)
	OverallAllocation(ctx context.Context, portfolio string) ([]models.AllocationEntry, error)
	AllocationByQuoteType(ctx context.Context, portfolio string) (map[string]float64, error)
	KPIs(ctx context.Context, portfolio string) (*models.PortfolioKPIs, error)

	PortfolioVolatility(ctx context.Context, portfolio string) (*float64, error)
	PortfolioVolatility1D(ctx context.Context, portfolio string) ([]float64, error)
	TickerVolatility(ctx context.Context, portfolio string) (map[string]*float64, error)
	TickerVolatility1D(ctx context.Context, portfolio string) (map[string][]float64, error)

	// PerformanceChart renders the portfolio performance series as a PNG.
	PerformanceChart(ctx context.Context, portfolio string) ([]byte, error)

	// RefreshTicker fetches and persists external data for a symbol when the
	// stored copy is missing or stale.
	RefreshTicker(ctx context.Context, symbol string, force bool) error

	// InvalidateCache purges memoized performance data for a portfolio.
	InvalidateCache(portfolio string, tickers ...string)
}

// ReportService generates LLM-backed analysis reports.
type ReportService interface {
	PortfolioReport(ctx context.Context, portfolio string, force bool) (*models.Report, error)
	TickerReport(ctx context.Context, portfolio, ticker string, force bool) (*models.Report, error)
	MultiTickerReport(ctx context.Context, portfolio string, tickers []string) (*models.Report, error)
}

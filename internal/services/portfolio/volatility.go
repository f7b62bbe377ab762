package portfolio

import (
	"context"
	"math"

	"github.com/daniele21/portfolio-pilot/internal/models"
)

// tradingDaysPerYear is the standard annualization base for daily returns.
const tradingDaysPerYear = 252

// dailyReturns converts a value series into day-over-day fractional changes.
// Days where the previous value is 0 are skipped; a change from nothing is
// undefined, not infinite.
func dailyReturns(values []float64) []float64 {
	returns := make([]float64, 0, len(values))
	for i := 1; i < len(values); i++ {
		if values[i-1] == 0 {
			continue
		}
		returns = append(returns, (values[i]-values[i-1])/values[i-1])
	}
	return returns
}

// annualizedVolatility is the sample standard deviation of daily returns
// scaled by √252. Nil when fewer than two returns exist.
func annualizedVolatility(returns []float64) *float64 {
	if len(returns) < 2 {
		return nil
	}

	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	variance := 0.0
	for _, r := range returns {
		d := r - mean
		variance += d * d
	}
	variance /= float64(len(returns) - 1)

	vol := math.Sqrt(variance) * math.Sqrt(tradingDaysPerYear) * 100
	return &vol
}

// pointVolatilitySeries maps each daily return to its annualized magnitude,
// the per-day view the 1d endpoints expose.
func pointVolatilitySeries(returns []float64) []float64 {
	series := make([]float64, len(returns))
	for i, r := range returns {
		series[i] = math.Abs(r) * math.Sqrt(tradingDaysPerYear) * 100
	}
	return series
}

// portfolioValueSeries extracts the gross value series from the portfolio
// performance entries.
func portfolioValueSeries(entries []models.PerformanceEntry) []float64 {
	values := make([]float64, len(entries))
	for i, e := range entries {
		values[i] = e.AbsValue
	}
	return values
}

// PortfolioVolatility returns the annualized volatility of the portfolio's
// daily value changes, or nil with fewer than two usable days.
func (s *Service) PortfolioVolatility(ctx context.Context, portfolio string) (*float64, error) {
	entries, err := s.PortfolioPerformance(ctx, portfolio)
	if err != nil {
		return nil, err
	}
	return annualizedVolatility(dailyReturns(portfolioValueSeries(entries))), nil
}

// PortfolioVolatility1D returns the per-day annualized volatility series of
// the portfolio value.
func (s *Service) PortfolioVolatility1D(ctx context.Context, portfolio string) ([]float64, error) {
	entries, err := s.PortfolioPerformance(ctx, portfolio)
	if err != nil {
		return nil, err
	}
	return pointVolatilitySeries(dailyReturns(portfolioValueSeries(entries))), nil
}

// TickerVolatility returns the annualized volatility of each held
// instrument's daily closes. Instruments without enough price data map to
// nil.
func (s *Service) TickerVolatility(ctx context.Context, portfolio string) (map[string]*float64, error) {
	series, err := s.heldTickerSeries(ctx, portfolio)
	if err != nil {
		return nil, err
	}

	result := make(map[string]*float64, len(series))
	for ticker, ps := range series {
		result[ticker] = annualizedVolatility(dailyReturns(ps.closes))
	}
	return result, nil
}

// TickerVolatility1D returns the per-day annualized volatility series for
// each held instrument.
func (s *Service) TickerVolatility1D(ctx context.Context, portfolio string) (map[string][]float64, error) {
	series, err := s.heldTickerSeries(ctx, portfolio)
	if err != nil {
		return nil, err
	}

	result := make(map[string][]float64, len(series))
	for ticker, ps := range series {
		result[ticker] = pointVolatilitySeries(dailyReturns(ps.closes))
	}
	return result, nil
}

// heldTickerSeries resolves the price series of every instrument appearing in
// the portfolio's transactions.
func (s *Service) heldTickerSeries(ctx context.Context, portfolio string) (map[string]*priceSeries, error) {
	txs, err := s.storage.Transactions().GetTransactions(ctx, portfolio)
	if err != nil {
		return nil, err
	}
	return s.resolveAllSeries(ctx, distinctTickers(txs))
}

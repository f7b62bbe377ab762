package portfolio

import (
	"context"
	"math"

	"github.com/daniele21/portfolio-pilot/internal/models"
)

// KPIs computes the headline numbers for the dashboard cards: current
// portfolio value, net performance, and the best, worst, and highest-value
// instruments by their latest per-ticker performance entry.
func (s *Service) KPIs(ctx context.Context, portfolio string) (*models.PortfolioKPIs, error) {
	perf, err := s.PortfolioPerformance(ctx, portfolio)
	if err != nil {
		return nil, err
	}

	kpis := &models.PortfolioKPIs{}
	if len(perf) > 0 {
		last := perf[len(perf)-1]
		kpis.PortfolioValue.AbsValue = last.AbsValue
		kpis.PortfolioValue.NetValue = last.Value
		kpis.NetPerformance = last.Pct
	}

	txs, err := s.storage.Transactions().GetTransactions(ctx, portfolio)
	if err != nil {
		return nil, err
	}
	tickers := distinctTickers(txs)
	perTicker, err := s.MultiTickerPerformance(ctx, portfolio, tickers, "")
	if err != nil {
		return nil, err
	}

	bestPct := math.Inf(-1)
	worstPct := math.Inf(1)
	highestValue := math.Inf(-1)
	for ticker, entries := range perTicker {
		if len(entries) == 0 {
			continue
		}
		last := entries[len(entries)-1]
		name := s.tickerDisplayName(ctx, ticker)
		if last.Pct > bestPct {
			bestPct = last.Pct
			kpis.BestTicker = &models.TickerKPI{Symbol: ticker, TickerName: name, Pct: models.Float(last.Pct)}
		}
		if last.Pct < worstPct {
			worstPct = last.Pct
			kpis.WorstTicker = &models.TickerKPI{Symbol: ticker, TickerName: name, Pct: models.Float(last.Pct)}
		}
		if last.AbsValue > highestValue {
			highestValue = last.AbsValue
			kpis.HighestValueTicker = &models.TickerKPI{Symbol: ticker, TickerName: name, AbsValue: models.Float(last.AbsValue)}
		}
	}

	return kpis, nil
}

package portfolio

import (
	"context"
	"sort"
	"strings"

	"github.com/daniele21/portfolio-pilot/internal/models"
)

// priceSeries is a date-sorted close series supporting forward-filled
// lookups.
type priceSeries struct {
	dates  []string
	closes []float64
}

func newPriceSeries(points []models.PricePoint) *priceSeries {
	s := &priceSeries{
		dates:  make([]string, len(points)),
		closes: make([]float64, len(points)),
	}
	for i, p := range points {
		s.dates[i] = p.Date
		s.closes[i] = p.Close
	}
	return s
}

func (s *priceSeries) empty() bool {
	return len(s.dates) == 0
}

// priceAt returns the close at the latest date at or before the target, or 0
// when no price exists that early. Every price lookup in the engine goes
// through this forward-fill.
func (s *priceSeries) priceAt(date string) float64 {
	idx := sort.Search(len(s.dates), func(i int) bool { return s.dates[i] > date })
	if idx == 0 {
		return 0
	}
	return s.closes[idx-1]
}

// datesFrom returns the series dates at or after start; an empty start keeps
// all of them.
func (s *priceSeries) datesFrom(start string) []string {
	idx := sort.SearchStrings(s.dates, start)
	return s.dates[idx:]
}

// resolveSeries reads a ticker's stored price history, fetching and
// persisting from the external source when the store has nothing. Fetch
// failures degrade to an empty series so one symbol cannot abort the
// computation for its siblings.
func (s *Service) resolveSeries(ctx context.Context, ticker string) (*priceSeries, error) {
	history, err := s.storage.MarketData().GetPriceHistory(ctx, ticker)
	if err != nil {
		return nil, err
	}

	if len(history) == 0 {
		data, err := s.market.FetchTicker(ctx, ticker)
		if err != nil {
			s.logger.Warn().Err(err).Str("ticker", ticker).Msg("Price fetch failed")
			return newPriceSeries(nil), nil
		}
		if data == nil || len(data.History) == 0 {
			return newPriceSeries(nil), nil
		}
		if err := s.storage.MarketData().SaveTickerData(ctx, data); err != nil {
			return nil, err
		}
		history, err = s.storage.MarketData().GetPriceHistory(ctx, ticker)
		if err != nil {
			return nil, err
		}
	}

	return newPriceSeries(history), nil
}

// resolveAllSeries resolves every ticker's series, dropping tickers with no
// data at all.
func (s *Service) resolveAllSeries(ctx context.Context, tickers []string) (map[string]*priceSeries, error) {
	series := make(map[string]*priceSeries, len(tickers))
	for _, ticker := range tickers {
		ps, err := s.resolveSeries(ctx, ticker)
		if err != nil {
			return nil, err
		}
		if ps.empty() {
			continue
		}
		series[ticker] = ps
	}
	return series, nil
}

// dateUniverse unions the dates of all series, sorted ascending. Only start
// dates at or after the floor survive; an empty floor keeps everything.
func dateUniverse(series map[string]*priceSeries, floor string) []string {
	seen := make(map[string]bool)
	dates := make([]string, 0)
	for _, ps := range series {
		for _, d := range ps.dates {
			if floor != "" && d < floor {
				continue
			}
			if !seen[d] {
				seen[d] = true
				dates = append(dates, d)
			}
		}
	}
	sort.Strings(dates)
	return dates
}

func normalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

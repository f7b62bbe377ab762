package portfolio

import (
	"context"
	"sort"
	"time"

	"github.com/daniele21/portfolio-pilot/internal/models"
)

// emptyReturns is the defined "no data" result: not an error.
func emptyReturns() *models.ReturnsSummary {
	return &models.ReturnsSummary{Tickers: map[string]*models.PeriodReturn{}}
}

func returnPct(startValue, endValue float64) float64 {
	if startValue == 0 {
		return 0
	}
	return (endValue - startValue) / startValue * 100
}

// ReturnsSince computes the point-to-point return of the portfolio and each
// of its instruments since a date. The effective start and end are the
// nearest dates with price data bracketing the request, so a start before all
// data measures full history and a start after all data yields the empty
// sentinel.
func (s *Service) ReturnsSince(ctx context.Context, portfolio string, since time.Time) (*models.ReturnsSummary, error) {
	txs, err := s.storage.Transactions().GetTransactions(ctx, portfolio)
	if err != nil {
		return nil, err
	}
	if len(txs) == 0 {
		return emptyReturns(), nil
	}

	tickers := distinctTickers(txs)
	series, err := s.resolveAllSeries(ctx, tickers)
	if err != nil {
		return nil, err
	}
	if len(series) == 0 {
		return emptyReturns(), nil
	}

	dates := dateUniverse(series, since.Format(models.DateFormat))
	if len(dates) == 0 {
		return emptyReturns(), nil
	}
	effectiveStart := dates[0]
	effectiveEnd := dates[len(dates)-1]

	portfolioValueAt := func(date string) float64 {
		total := 0.0
		for _, ticker := range tickers {
			ps, ok := series[ticker]
			if !ok {
				continue
			}
			qty, _ := exposureAt(tickerTransactions(txs, ticker), date)
			total += qty * ps.priceAt(date)
		}
		return total
	}
	startValue := portfolioValueAt(effectiveStart)
	endValue := portfolioValueAt(effectiveEnd)

	summary := &models.ReturnsSummary{
		Portfolio: &models.PeriodReturn{
			StartValue: startValue,
			EndValue:   endValue,
			ReturnPct:  returnPct(startValue, endValue),
		},
		Tickers: make(map[string]*models.PeriodReturn),
	}

	// Per-ticker returns reuse the portfolio's bracketing dates. Instruments
	// with no transactions by the end date carry no exposure and are left out.
	for _, ticker := range tickers {
		ps, ok := series[ticker]
		if !ok {
			continue
		}
		tickerTxs := tickerTransactions(txs, ticker)
		if !hasTransactionBy(tickerTxs, effectiveEnd) {
			continue
		}
		qtyStart, _ := exposureAt(tickerTxs, effectiveStart)
		qtyEnd, _ := exposureAt(tickerTxs, effectiveEnd)
		startVal := qtyStart * ps.priceAt(effectiveStart)
		endVal := qtyEnd * ps.priceAt(effectiveEnd)

		summary.Tickers[ticker] = &models.PeriodReturn{
			TickerName: s.tickerDisplayName(ctx, ticker),
			StartValue: startVal,
			EndValue:   endVal,
			ReturnPct:  returnPct(startVal, endVal),
		}
	}

	return summary, nil
}

func hasTransactionBy(txs []*models.Transaction, date string) bool {
	for _, tx := range txs {
		if tx.Date <= date {
			return true
		}
	}
	return false
}

func (s *Service) tickerDisplayName(ctx context.Context, ticker string) string {
	data, err := s.storage.MarketData().GetTickerData(ctx, ticker)
	if err != nil || data == nil {
		return ticker
	}
	if name := data.Info.DisplayName(); name != "" {
		return name
	}
	return ticker
}

// lastDayPossibleReturns measures the return over the most recent completed
// interval: from the second-to-last distinct date in the combined price
// universe to the last one. It tolerates market closures where a literal
// "yesterday" would find no data.
func (s *Service) lastDayPossibleReturns(ctx context.Context, portfolio string) (*models.ReturnsSummary, error) {
	txs, err := s.storage.Transactions().GetTransactions(ctx, portfolio)
	if err != nil {
		return nil, err
	}
	if len(txs) == 0 {
		return emptyReturns(), nil
	}

	series, err := s.resolveAllSeries(ctx, distinctTickers(txs))
	if err != nil {
		return nil, err
	}
	dates := dateUniverse(series, "")
	if len(dates) < 2 {
		return emptyReturns(), nil
	}

	since, err := time.Parse(models.DateFormat, dates[len(dates)-2])
	if err != nil {
		return emptyReturns(), nil
	}
	return s.ReturnsSince(ctx, portfolio, since)
}

// PeriodReturns computes the returns summary for every named period.
// Offsets are calendar days, not trading days.
func (s *Service) PeriodReturns(ctx context.Context, portfolio string) (*models.PeriodReturnsSet, error) {
	today := s.today()

	set := &models.PeriodReturnsSet{}
	periods := []struct {
		dest  **models.ReturnsSummary
		since time.Time
	}{
		{&set.ThreeDays, today.AddDate(0, 0, -3)},
		{&set.Weekly, today.AddDate(0, 0, -7)},
		{&set.Monthly, today.AddDate(0, 0, -30)},
		{&set.ThreeMonth, today.AddDate(0, 0, -90)},
		{&set.YTD, time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)},
		{&set.OneYear, today.AddDate(0, 0, -365)},
	}

	yesterday, err := s.lastDayPossibleReturns(ctx, portfolio)
	if err != nil {
		return nil, err
	}
	set.Yesterday = yesterday

	for _, p := range periods {
		summary, err := s.ReturnsSince(ctx, portfolio, p.since)
		if err != nil {
			return nil, err
		}
		*p.dest = summary
	}

	return set, nil
}

// TickerReturnsSince computes the point-to-point return of one instrument
// over its own price dates at or after since. Nil means no data: the ticker
// has no transactions or no price history in range.
func (s *Service) TickerReturnsSince(ctx context.Context, portfolio, ticker string, since time.Time) (*models.PeriodReturn, error) {
	ticker = normalizeSymbol(ticker)

	all, err := s.storage.Transactions().GetTransactions(ctx, portfolio)
	if err != nil {
		return nil, err
	}
	txs := tickerTransactions(all, ticker)
	if len(txs) == 0 {
		return nil, nil
	}

	series, err := s.resolveSeries(ctx, ticker)
	if err != nil {
		return nil, err
	}
	if series.empty() {
		return nil, nil
	}

	dates := series.datesFrom(since.Format(models.DateFormat))
	if len(dates) == 0 {
		return nil, nil
	}
	effectiveStart := dates[0]
	effectiveEnd := dates[len(dates)-1]

	qtyStart, _ := exposureAt(txs, effectiveStart)
	qtyEnd, _ := exposureAt(txs, effectiveEnd)
	startVal := qtyStart * series.priceAt(effectiveStart)
	endVal := qtyEnd * series.priceAt(effectiveEnd)

	return &models.PeriodReturn{
		StartValue: startVal,
		EndValue:   endVal,
		ReturnPct:  returnPct(startVal, endVal),
	}, nil
}

// tickerLastDayReturns anchors at the last date of the ticker's own history.
func (s *Service) tickerLastDayReturns(ctx context.Context, portfolio, ticker string) (*models.PeriodReturn, error) {
	series, err := s.resolveSeries(ctx, ticker)
	if err != nil {
		return nil, err
	}
	if series.empty() {
		return nil, nil
	}

	last := series.dates[len(series.dates)-1]
	since, err := time.Parse(models.DateFormat, last)
	if err != nil {
		return nil, nil
	}
	return s.TickerReturnsSince(ctx, portfolio, ticker, since)
}

// TickerPeriodReturns computes one instrument's returns for the named
// periods.
func (s *Service) TickerPeriodReturns(ctx context.Context, portfolio, ticker string) (*models.TickerPeriodReturns, error) {
	ticker = normalizeSymbol(ticker)
	today := s.today()

	yesterday, err := s.tickerLastDayReturns(ctx, portfolio, ticker)
	if err != nil {
		return nil, err
	}

	set := &models.TickerPeriodReturns{Yesterday: yesterday}
	periods := []struct {
		dest  **models.PeriodReturn
		since time.Time
	}{
		{&set.Weekly, today.AddDate(0, 0, -7)},
		{&set.Monthly, today.AddDate(0, 0, -30)},
		{&set.ThreeMonth, today.AddDate(0, 0, -90)},
		{&set.YTD, time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, p := range periods {
		ret, err := s.TickerReturnsSince(ctx, portfolio, ticker, p.since)
		if err != nil {
			return nil, err
		}
		*p.dest = ret
	}

	return set, nil
}

// today returns the current date truncated to midnight UTC.
func (s *Service) today() time.Time {
	now := s.now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// sortedTickers returns map keys sorted, for deterministic iteration where
// output order matters.
func sortedTickers(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

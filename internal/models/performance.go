package models

// PerformanceEntry is one point of a valuation time series.
//
// AbsValue is the gross market value (quantity × price) at the date.
// Value is AbsValue minus the cost basis accumulated up to the date.
// Pct is Value relative to that cost basis, in percent.
// PctFromFirst measures AbsValue against the first nonzero AbsValue of the
// series; PctFromStart measures it against the AbsValue at the series start
// and is always exactly 0 for the first entry. A series carries one of the
// two depending on which engine produced it; the other is nil and its key is
// omitted. A carried value always serializes, zero included.
type PerformanceEntry struct {
	Date         string   `json:"date"`
	Value        float64  `json:"value"`
	AbsValue     float64  `json:"abs_value"`
	Pct          float64  `json:"pct"`
	PctFromFirst *float64 `json:"pct_from_first,omitempty"`
	PctFromStart *float64 `json:"pct_from_start,omitempty"`
}

// Float returns a pointer to v, for optional numeric JSON fields.
func Float(v float64) *float64 {
	return &v
}

// PeriodReturn is a point-to-point return between two valuation dates.
type PeriodReturn struct {
	TickerName string  `json:"ticker_name,omitempty"`
	StartValue float64 `json:"start_value"`
	EndValue   float64 `json:"end_value"`
	ReturnPct  float64 `json:"return_pct"`
}

// ReturnsSummary aggregates the portfolio-level and per-ticker returns for a
// period. Portfolio is nil when no price data exists on or after the period
// start; that is a valid "no data" result, not an error.
type ReturnsSummary struct {
	Portfolio *PeriodReturn            `json:"portfolio"`
	Tickers   map[string]*PeriodReturn `json:"tickers"`
}

// PeriodReturnsSet holds the summaries for every named period.
type PeriodReturnsSet struct {
	Yesterday  *ReturnsSummary `json:"yesterday"`
	ThreeDays  *ReturnsSummary `json:"three_days"`
	Weekly     *ReturnsSummary `json:"weekly"`
	Monthly    *ReturnsSummary `json:"monthly"`
	ThreeMonth *ReturnsSummary `json:"three_month"`
	YTD        *ReturnsSummary `json:"ytd"`
	OneYear    *ReturnsSummary `json:"one_year"`
}

// TickerPeriodReturns holds the per-period returns for one ticker.
type TickerPeriodReturns struct {
	Yesterday  *PeriodReturn `json:"yesterday"`
	Weekly     *PeriodReturn `json:"weekly"`
	Monthly    *PeriodReturn `json:"monthly"`
	ThreeMonth *PeriodReturn `json:"three_month"`
	YTD        *PeriodReturn `json:"ytd"`
}

// AllocationEntry is one ticker's share of the portfolio's current value.
type AllocationEntry struct {
	Ticker        string  `json:"ticker"`
	Name          string  `json:"name"`
	Quantity      float64 `json:"quantity"`
	Value         float64 `json:"value"`
	AllocationPct float64 `json:"allocation_pct"`
}

// TickerKPI identifies a ticker for a dashboard card. Each card carries
// either Pct or AbsValue; the field the card does not use stays nil.
type TickerKPI struct {
	Symbol     string   `json:"symbol"`
	TickerName string   `json:"ticker_name"`
	Pct        *float64 `json:"pct,omitempty"`
	AbsValue   *float64 `json:"abs_value,omitempty"`
}

// PortfolioKPIs holds the headline numbers for the dashboard cards.
type PortfolioKPIs struct {
	PortfolioValue struct {
		AbsValue float64 `json:"abs_value"`
		NetValue float64 `json:"net_value"`
	} `json:"portfolio_value"`
	NetPerformance     float64    `json:"net_performance"`
	BestTicker         *TickerKPI `json:"best_ticker"`
	HighestValueTicker *TickerKPI `json:"highest_value_ticker"`
	WorstTicker        *TickerKPI `json:"worst_ticker"`
}

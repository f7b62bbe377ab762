package models

import (
	"sort"
	"time"
)

// PricePoint represents one day of OHLCV data for a ticker.
// At most one point exists per (ticker, date).
type PricePoint struct {
	Date   string  `json:"date"` // YYYY-MM-DD
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
}

// DateTime parses the price point date.
func (p *PricePoint) DateTime() time.Time {
	d, _ := time.Parse(DateFormat, p.Date)
	return d
}

// TickerInfo holds the quote metadata the engine and the reports consume.
// The external source returns far more fields; only these are kept.
type TickerInfo struct {
	Ticker             string  `json:"ticker"`
	ShortName          string  `json:"short_name"`
	LongName           string  `json:"long_name,omitempty"`
	Currency           string  `json:"currency,omitempty"`
	Exchange           string  `json:"exchange,omitempty"`
	QuoteType          string  `json:"quote_type,omitempty"` // EQUITY, ETF, ...
	Sector             string  `json:"sector,omitempty"`
	Industry           string  `json:"industry,omitempty"`
	RegularMarketPrice float64 `json:"regular_market_price"`
	PreviousClose      float64 `json:"previous_close,omitempty"`
	MarketCap          float64 `json:"market_cap,omitempty"`
	FiftyTwoWeekHigh   float64 `json:"fifty_two_week_high,omitempty"`
	FiftyTwoWeekLow    float64 `json:"fifty_two_week_low,omitempty"`
}

// DisplayName returns the short name, falling back to the symbol.
func (i *TickerInfo) DisplayName() string {
	if i != nil && i.ShortName != "" {
		return i.ShortName
	}
	if i != nil {
		return i.Ticker
	}
	return ""
}

// TickerData is the stored unit for one instrument: quote metadata plus
// its daily price history.
type TickerData struct {
	Ticker      string       `json:"ticker" badgerhold:"key"`
	Info        TickerInfo   `json:"info"`
	History     []PricePoint `json:"history"`
	LastUpdated time.Time    `json:"last_updated"`
}

// SortHistory orders the price history by date ascending.
func (d *TickerData) SortHistory() {
	sort.Slice(d.History, func(i, j int) bool {
		return d.History[i].Date < d.History[j].Date
	})
}

// MergeHistory upserts points into the history keyed by date, keeping the
// result sorted ascending.
func (d *TickerData) MergeHistory(points []PricePoint) {
	byDate := make(map[string]PricePoint, len(d.History)+len(points))
	for _, p := range d.History {
		byDate[p.Date] = p
	}
	for _, p := range points {
		byDate[p.Date] = p
	}
	merged := make([]PricePoint, 0, len(byDate))
	for _, p := range byDate {
		merged = append(merged, p)
	}
	d.History = merged
	d.SortHistory()
}

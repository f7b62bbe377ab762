// Package models defines data structures for Portfolio Pilot
package models

import (
	"strings"
	"time"
)

// DateFormat is the calendar-date layout used throughout the system.
// Transaction and price dates carry no time component.
const DateFormat = "2006-01-02"

// Transaction is a single buy/sell record in a portfolio.
// Transactions are immutable once persisted; a change is a delete + reinsert.
type Transaction struct {
	ID        uint64  `json:"id" badgerhold:"key"`
	Portfolio string  `json:"portfolio" badgerhold:"index"`
	Ticker    string  `json:"ticker"`
	Quantity  float64 `json:"quantity"` // positive = acquisition, negative = disposal
	Price     float64 `json:"price"`    // unit price at transaction time
	Date      string  `json:"date"`     // YYYY-MM-DD
	Label     string  `json:"label,omitempty"`
	Name      string  `json:"name,omitempty"`
}

// DateTime parses the transaction date. A malformed date returns the zero time,
// which compares before every real date and therefore contributes from the start.
func (t *Transaction) DateTime() time.Time {
	d, _ := time.Parse(DateFormat, t.Date)
	return d
}

// IsBuy reports whether the transaction label marks an acquisition.
func (t *Transaction) IsBuy() bool {
	return strings.EqualFold(t.Label, "buy")
}

// IsSell reports whether the transaction label marks a disposal.
func (t *Transaction) IsSell() bool {
	l := strings.ToLower(t.Label)
	return l == "sell" || l == "sale"
}

// Holding is one position within a computed portfolio status.
type Holding struct {
	Ticker   string  `json:"ticker"`
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Price    float64 `json:"price"`
	Value    float64 `json:"value"`
}

// PortfolioStatus holds the current holdings and total value of a portfolio.
type PortfolioStatus struct {
	Portfolio   string    `json:"portfolio" badgerhold:"key"`
	Holdings    []Holding `json:"holdings"`
	TotalValue  float64   `json:"total_value"`
	LastUpdated time.Time `json:"last_updated"`
}

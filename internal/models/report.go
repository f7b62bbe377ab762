package models

import "time"

// Report is a generated analysis for a portfolio or a single ticker,
// cached by reference day so a report is produced at most once per day
// unless a refresh is forced.
type Report struct {
	ID            string          `json:"id" badgerhold:"key"`
	Portfolio     string          `json:"portfolio,omitempty" badgerhold:"index"`
	Ticker        string          `json:"ticker,omitempty" badgerhold:"index"`
	Sections      map[string]any  `json:"report"`
	Cost          float64         `json:"cost"` // USD spent on the generation call
	Usage         *TokenUsage     `json:"usage,omitempty"`
	ReferenceDate string          `json:"reference_date"` // YYYY-MM-DD
	CreatedAt     time.Time       `json:"created_at"`
}

// TokenUsage records the token counts of one generation call.
type TokenUsage struct {
	Model        string `json:"model"`
	InputTokens  int32  `json:"input_tokens"`
	OutputTokens int32  `json:"output_tokens"`
}

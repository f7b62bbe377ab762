package interfaces

import (
	"context"

	"github.com/daniele21/portfolio-pilot/internal/models"
)

// MarketDataClient fetches instrument data from an external source.
type MarketDataClient interface {
	// FetchTicker retrieves quote metadata and daily price history.
	// An unknown symbol returns (nil, nil): "no data available", not an error.
	FetchTicker(ctx context.Context, symbol string) (*models.TickerData, error)
}

// GenerateResult is the text and token usage of one LLM call.
type GenerateResult struct {
	Text  string
	Usage models.TokenUsage
}

// LLMClient generates analysis text and structures freeform input.
type LLMClient interface {
	GenerateContent(ctx context.Context, prompt string) (*GenerateResult, error)

	// ParseTransactions extracts structured transactions from freeform text
	// (CSV exports, broker confirmations, pasted tables).
	ParseTransactions(ctx context.Context, text string) ([]*models.Transaction, *models.TokenUsage, error)
}

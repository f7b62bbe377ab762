// Package gemini provides a client for the Google Gemini API
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/daniele21/portfolio-pilot/internal/common"
	"github.com/daniele21/portfolio-pilot/internal/interfaces"
	"github.com/daniele21/portfolio-pilot/internal/models"
)

const DefaultModel = Gemini20Flash

const parseTransactionsPrompt = `Extract all transactions from the text below. ` +
	`Return directly just the VALID JSON list where each item has fields: ` +
	`ticker, quantity, price, date (YYYY-MM-DD), label, and name. ` +
	`The output JSON MUST be a list of objects, each with these keys: ` +
	`'ticker' (string), 'quantity' (number), 'price' (number), 'date' (YYYY-MM-DD), 'label' (string), 'name' (string). ` +
	`If any field is missing in the input, set it to null or an empty string. ` +
	`All final values must be in English for each field. ` +
	`DO NOT ADD ANYTHING ELSE. Output only the JSON list.` + "\n" +
	`Example JSON schema: [` + "\n" +
	`  {"ticker": "AAPL", "quantity": 10, "price": 150.0, "date": "2024-06-01", "label": "Buy", "name": "Apple Inc."}` + "\n" +
	`]`

// Client implements the LLMClient interface
type Client struct {
	client *genai.Client
	model  string
	logger *common.Logger
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithModel sets the model to use
func WithModel(model string) ClientOption {
	return func(c *Client) {
		c.model = model
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new Gemini client
func NewClient(ctx context.Context, apiKey string, opts ...ClientOption) (*Client, error) {
	genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	c := &Client{
		client: genaiClient,
		model:  DefaultModel,
		logger: common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

// GenerateContent generates text from a prompt and reports token usage.
func (c *Client) GenerateContent(ctx context.Context, prompt string) (*interfaces.GenerateResult, error) {
	c.logger.Debug().Str("model", c.model).Msg("Generating content")

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0.0),
	}
	result, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), config)
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	text, err := extractTextFromResponse(result)
	if err != nil {
		return nil, err
	}

	usage := models.TokenUsage{Model: c.model}
	if result.UsageMetadata != nil {
		usage.InputTokens = result.UsageMetadata.PromptTokenCount
		usage.OutputTokens = result.UsageMetadata.CandidatesTokenCount
	}

	if cost, err := CallCost(c.model, usage.InputTokens, usage.OutputTokens); err == nil {
		c.logger.Info().
			Str("model", c.model).
			Int32("input_tokens", usage.InputTokens).
			Int32("output_tokens", usage.OutputTokens).
			Float64("cost_usd", cost).
			Msg("Generation call completed")
	}

	return &interfaces.GenerateResult{Text: text, Usage: usage}, nil
}

// ParseTransactions extracts structured transactions from freeform text.
func (c *Client) ParseTransactions(ctx context.Context, text string) ([]*models.Transaction, *models.TokenUsage, error) {
	result, err := c.GenerateContent(ctx, parseTransactionsPrompt+"\n\n"+text)
	if err != nil {
		return nil, nil, err
	}

	txs, err := decodeTransactionList(result.Text)
	if err != nil {
		return nil, nil, err
	}

	c.logger.Debug().Int("count", len(txs)).Msg("Transactions parsed from text")
	return txs, &result.Usage, nil
}

// decodeTransactionList extracts the JSON list from model output, tolerating
// markdown fences and surrounding prose.
func decodeTransactionList(raw string) ([]*models.Transaction, error) {
	cleaned := strings.Trim(raw, "` \n")
	start := strings.Index(cleaned, "[")
	end := strings.LastIndex(cleaned, "]")
	if start == -1 || end == -1 || end < start {
		return nil, fmt.Errorf("no JSON list found in model output")
	}
	cleaned = cleaned[start : end+1]

	var txs []*models.Transaction
	if err := json.Unmarshal([]byte(cleaned), &txs); err != nil {
		return nil, fmt.Errorf("could not decode transactions from model output: %w", err)
	}

	// Rows without a ticker cannot be saved
	valid := txs[:0]
	for _, tx := range txs {
		if strings.TrimSpace(tx.Ticker) != "" {
			valid = append(valid, tx)
		}
	}
	return valid, nil
}

// extractTextFromResponse extracts text from a generate content response
func extractTextFromResponse(result *genai.GenerateContentResponse) (string, error) {
	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no content generated")
	}

	text := ""
	for _, part := range result.Candidates[0].Content.Parts {
		if part.Text != "" {
			text += part.Text
		}
	}

	return text, nil
}

// Ensure Client implements LLMClient
var _ interfaces.LLMClient = (*Client)(nil)

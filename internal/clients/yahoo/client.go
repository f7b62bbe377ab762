// Package yahoo provides a client for the Yahoo Finance chart API
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/daniele21/portfolio-pilot/internal/common"
	"github.com/daniele21/portfolio-pilot/internal/interfaces"
	"github.com/daniele21/portfolio-pilot/internal/models"
)

const (
	DefaultBaseURL   = "https://query2.finance.yahoo.com"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 5 // requests per second
	DefaultRange     = "1y"

	fetchAttempts  = 3
	fetchBaseDelay = 500 * time.Millisecond

	userAgent = "portfolio-pilot/1.0"
)

// Client implements the MarketDataClient interface against the v8 chart API
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
	dataRange  string
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithRange sets the history window requested from the chart API
func WithRange(dataRange string) ClientOption {
	return func(c *Client) {
		c.dataRange = dataRange
	}
}

// NewClient creates a new Yahoo Finance client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter:   rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:    common.NewSilentLogger(),
		dataRange: DefaultRange,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents an API error
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Yahoo API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// chartResponse mirrors the v8 chart payload
type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Meta struct {
		Symbol             string  `json:"symbol"`
		ShortName          string  `json:"shortName"`
		LongName           string  `json:"longName"`
		Currency           string  `json:"currency"`
		ExchangeName       string  `json:"exchangeName"`
		InstrumentType     string  `json:"instrumentType"`
		RegularMarketPrice float64 `json:"regularMarketPrice"`
		PreviousClose      float64 `json:"previousClose"`
		RegularMarketTime  int64   `json:"regularMarketTime"`
		FiftyTwoWeekHigh   float64 `json:"fiftyTwoWeekHigh"`
		FiftyTwoWeekLow    float64 `json:"fiftyTwoWeekLow"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Open   []float64 `json:"open"`
			High   []float64 `json:"high"`
			Low    []float64 `json:"low"`
			Close  []float64 `json:"close"`
			Volume []float64 `json:"volume"`
		} `json:"quote"`
	} `json:"indicators"`
}

// FetchTicker retrieves quote metadata and daily price history for a symbol.
// An unknown symbol returns (nil, nil).
func (c *Client) FetchTicker(ctx context.Context, symbol string) (*models.TickerData, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, fmt.Errorf("symbol is required")
	}

	params := url.Values{}
	params.Set("interval", "1d")
	params.Set("range", c.dataRange)
	path := fmt.Sprintf("/v8/finance/chart/%s", url.PathEscape(symbol))

	var resp chartResponse
	if err := c.get(ctx, path, params, &resp); err != nil {
		if apiErr, ok := err.(*APIError); ok && apiErr.StatusCode == http.StatusNotFound {
			c.logger.Warn().Str("symbol", symbol).Msg("Symbol not found")
			return nil, nil
		}
		return nil, err
	}

	if resp.Chart.Error != nil {
		c.logger.Warn().
			Str("symbol", symbol).
			Str("code", resp.Chart.Error.Code).
			Msg("Chart API returned an error")
		return nil, nil
	}
	if len(resp.Chart.Result) == 0 {
		return nil, nil
	}

	data := c.buildTickerData(symbol, &resp.Chart.Result[0])

	c.logger.Debug().
		Str("symbol", symbol).
		Int("history", len(data.History)).
		Msg("Ticker fetched")

	return data, nil
}

func (c *Client) buildTickerData(symbol string, result *chartResult) *models.TickerData {
	data := &models.TickerData{
		Ticker: symbol,
		Info: models.TickerInfo{
			Ticker:             symbol,
			ShortName:          result.Meta.ShortName,
			LongName:           result.Meta.LongName,
			Currency:           result.Meta.Currency,
			Exchange:           result.Meta.ExchangeName,
			QuoteType:          result.Meta.InstrumentType,
			RegularMarketPrice: result.Meta.RegularMarketPrice,
			PreviousClose:      result.Meta.PreviousClose,
			FiftyTwoWeekHigh:   result.Meta.FiftyTwoWeekHigh,
			FiftyTwoWeekLow:    result.Meta.FiftyTwoWeekLow,
		},
		LastUpdated: time.Now(),
	}

	if len(result.Indicators.Quote) == 0 {
		return data
	}
	quote := result.Indicators.Quote[0]

	history := make([]models.PricePoint, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(quote.Close) || quote.Close[i] <= 0 {
			// Yahoo pads the series with nulls for days without a close
			continue
		}
		point := models.PricePoint{
			Date:  time.Unix(ts, 0).UTC().Format(models.DateFormat),
			Close: quote.Close[i],
		}
		if i < len(quote.Open) {
			point.Open = quote.Open[i]
		}
		if i < len(quote.High) {
			point.High = quote.High[i]
		}
		if i < len(quote.Low) {
			point.Low = quote.Low[i]
		}
		if i < len(quote.Volume) {
			point.Volume = quote.Volume[i]
		}
		history = append(history, point)
	}
	data.History = history
	data.SortHistory()

	return data
}

// get performs a rate-limited GET request with retries on transient failures
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	delay := fetchBaseDelay
	var lastErr error
	for attempt := 0; attempt < fetchAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("User-Agent", userAgent)

		c.logger.Debug().Str("url", c.baseURL+path).Int("attempt", attempt+1).Msg("Yahoo API request")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("failed to execute request: %w", err)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			apiErr := &APIError{
				StatusCode: resp.StatusCode,
				Message:    strings.TrimSpace(string(body)),
				Endpoint:   path,
			}
			// Retry server-side failures and throttling, surface the rest
			if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
				lastErr = apiErr
				continue
			}
			return apiErr
		}

		err = json.NewDecoder(resp.Body).Decode(result)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
		return nil
	}

	return lastErr
}

// Ensure Client implements MarketDataClient
var _ interfaces.MarketDataClient = (*Client)(nil)

// Package report generates LLM-backed analysis reports for portfolios and
// tickers, cached by reference day.
package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/daniele21/portfolio-pilot/internal/clients/gemini"
	"github.com/daniele21/portfolio-pilot/internal/common"
	"github.com/daniele21/portfolio-pilot/internal/interfaces"
	"github.com/daniele21/portfolio-pilot/internal/models"
)

// Service implements ReportService
type Service struct {
	portfolio interfaces.PortfolioService
	llm       interfaces.LLMClient
	storage   interfaces.StorageManager
	logger    *common.Logger

	now func() time.Time
}

// NewService creates a new report service
func NewService(
	portfolio interfaces.PortfolioService,
	llm interfaces.LLMClient,
	storage interfaces.StorageManager,
	logger *common.Logger,
) *Service {
	return &Service{
		portfolio: portfolio,
		llm:       llm,
		storage:   storage,
		logger:    logger,
		now:       time.Now,
	}
}

// PortfolioReport generates an analysis report for a portfolio. A report
// already stored for today is reused unless force is set.
func (s *Service) PortfolioReport(ctx context.Context, portfolio string, force bool) (*models.Report, error) {
	if s.llm == nil {
		return nil, fmt.Errorf("no LLM client configured")
	}
	today := s.today()

	if !force {
		existing, err := s.storage.Reports().GetPortfolioReport(ctx, portfolio, today)
		if err != nil {
			return nil, fmt.Errorf("load portfolio report: %w", err)
		}
		if existing != nil {
			s.logger.Info().
				Str("portfolio", portfolio).
				Str("date", today).
				Msg("Reusing stored portfolio report")
			return existing, nil
		}
	}

	// Step 1: Collect the report inputs
	status, err := s.portfolio.Status(ctx, portfolio)
	if err != nil {
		return nil, fmt.Errorf("portfolio status: %w", err)
	}
	returns, err := s.portfolio.PeriodReturns(ctx, portfolio)
	if err != nil {
		s.logger.Warn().Err(err).Str("portfolio", portfolio).Msg("Period returns unavailable (continuing)")
		returns = nil
	}

	// Step 2: Generate
	prompt := fmt.Sprintf(portfolioPromptTemplate, portfolio, promptJSON(status), promptJSON(returns))
	report, err := s.generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate portfolio report: %w", err)
	}
	report.Portfolio = portfolio
	report.ReferenceDate = today

	// Step 3: Persist
	if err := s.storage.Reports().SavePortfolioReport(ctx, report); err != nil {
		return nil, fmt.Errorf("save portfolio report: %w", err)
	}

	s.logger.Info().
		Str("portfolio", portfolio).
		Float64("cost_usd", report.Cost).
		Msg("Portfolio report generated and stored")
	return report, nil
}

// TickerReport generates an analysis report for one holding of a portfolio,
// reusing today's stored report unless force is set.
func (s *Service) TickerReport(ctx context.Context, portfolio, ticker string, force bool) (*models.Report, error) {
	if s.llm == nil {
		return nil, fmt.Errorf("no LLM client configured")
	}
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return nil, fmt.Errorf("ticker is required")
	}
	today := s.today()

	if !force {
		existing, err := s.storage.Reports().GetTickerReport(ctx, ticker, today)
		if err != nil {
			return nil, fmt.Errorf("load ticker report: %w", err)
		}
		if existing != nil {
			s.logger.Info().
				Str("ticker", ticker).
				Str("date", today).
				Msg("Reusing stored ticker report")
			return existing, nil
		}
	}

	// Step 1: Collect the report inputs
	status, err := s.portfolio.Status(ctx, portfolio)
	if err != nil {
		return nil, fmt.Errorf("portfolio status: %w", err)
	}
	holding, weight := holdingWeight(status, ticker)

	returns, err := s.portfolio.TickerPeriodReturns(ctx, portfolio, ticker)
	if err != nil {
		s.logger.Warn().Err(err).Str("ticker", ticker).Msg("Ticker returns unavailable (continuing)")
		returns = nil
	}

	var info *models.TickerInfo
	if data, err := s.storage.MarketData().GetTickerData(ctx, ticker); err == nil && data != nil {
		info = &data.Info
	}

	// Step 2: Generate
	prompt := fmt.Sprintf(tickerPromptTemplate,
		ticker, promptJSON(holding), weight, ticker,
		promptJSON(returns), promptJSON(status), promptJSON(info), ticker)
	report, err := s.generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate ticker report: %w", err)
	}
	report.Ticker = ticker
	report.ReferenceDate = today

	// Step 3: Persist
	if err := s.storage.Reports().SaveTickerReport(ctx, report); err != nil {
		return nil, fmt.Errorf("save ticker report: %w", err)
	}

	s.logger.Info().
		Str("ticker", ticker).
		Float64("cost_usd", report.Cost).
		Msg("Ticker report generated and stored")
	return report, nil
}

// MultiTickerReport generates one comparative report covering several holdings
// of a portfolio in a single generation call. At least two tickers are
// required. Multi-ticker reports are not cached.
func (s *Service) MultiTickerReport(ctx context.Context, portfolio string, tickers []string) (*models.Report, error) {
	if s.llm == nil {
		return nil, fmt.Errorf("no LLM client configured")
	}

	symbols := make([]string, 0, len(tickers))
	seen := make(map[string]bool, len(tickers))
	for _, t := range tickers {
		t = strings.ToUpper(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		symbols = append(symbols, t)
	}
	if len(symbols) < 2 {
		return nil, fmt.Errorf("at least two tickers are required, got %d", len(symbols))
	}

	status, err := s.portfolio.Status(ctx, portfolio)
	if err != nil {
		return nil, fmt.Errorf("portfolio status: %w", err)
	}

	type tickerInput struct {
		Ticker  string                      `json:"ticker"`
		Holding *models.Holding             `json:"holding"`
		Weight  float64                     `json:"weight"`
		Returns *models.TickerPeriodReturns `json:"returns"`
	}
	inputs := make([]tickerInput, 0, len(symbols))
	for _, symbol := range symbols {
		holding, weight := holdingWeight(status, symbol)
		returns, err := s.portfolio.TickerPeriodReturns(ctx, portfolio, symbol)
		if err != nil {
			s.logger.Warn().Err(err).Str("ticker", symbol).Msg("Ticker returns unavailable (continuing)")
			returns = nil
		}
		inputs = append(inputs, tickerInput{
			Ticker:  symbol,
			Holding: holding,
			Weight:  weight,
			Returns: returns,
		})
	}

	prompt := fmt.Sprintf(multiTickerPromptTemplate, promptJSON(status), promptJSON(inputs))
	report, err := s.generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate multi-ticker report: %w", err)
	}
	report.Portfolio = portfolio
	report.ReferenceDate = s.today()

	s.logger.Info().
		Str("portfolio", portfolio).
		Int("tickers", len(symbols)).
		Float64("cost_usd", report.Cost).
		Msg("Multi-ticker report generated")
	return report, nil
}

// generate runs one LLM call and wraps the decoded output and its cost in a
// Report. The caller fills in the identity fields and persists it.
func (s *Service) generate(ctx context.Context, prompt string) (*models.Report, error) {
	result, err := s.llm.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, err
	}

	sections, err := decodeReportSections(result.Text)
	if err != nil {
		return nil, err
	}

	usage := result.Usage
	cost, err := gemini.CallCost(usage.Model, usage.InputTokens, usage.OutputTokens)
	if err != nil {
		s.logger.Warn().Err(err).Str("model", usage.Model).Msg("Unknown model pricing, recording zero cost")
		cost = 0
	}

	return &models.Report{
		Sections:  sections,
		Cost:      cost,
		Usage:     &usage,
		CreatedAt: s.now(),
	}, nil
}

func (s *Service) today() string {
	return s.now().UTC().Format(models.DateFormat)
}

// holdingWeight finds the ticker's holding in the status and its weight as a
// percentage of the portfolio's total value.
func holdingWeight(status *models.PortfolioStatus, ticker string) (*models.Holding, float64) {
	if status == nil {
		return nil, 0
	}
	for i := range status.Holdings {
		if strings.EqualFold(status.Holdings[i].Ticker, ticker) {
			h := status.Holdings[i]
			if status.TotalValue != 0 {
				return &h, h.Value / status.TotalValue * 100
			}
			return &h, 0
		}
	}
	return nil, 0
}

// Ensure Service implements ReportService
var _ interfaces.ReportService = (*Service)(nil)

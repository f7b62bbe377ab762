package server

import (
	"context"
	"fmt"
	"time"

	"github.com/daniele21/portfolio-pilot/internal/app"
	"github.com/daniele21/portfolio-pilot/internal/common"
	"github.com/daniele21/portfolio-pilot/internal/interfaces"
	"github.com/daniele21/portfolio-pilot/internal/models"
)

// mockPortfolioService implements interfaces.PortfolioService for testing.
// Only the function fields a test sets are answered; the rest return zeros.
type mockPortfolioService struct {
	portfolioPerformance func(ctx context.Context, portfolio string) ([]models.PerformanceEntry, error)
	periodReturns        func(ctx context.Context, portfolio string) (*models.PeriodReturnsSet, error)
	returnsSince         func(ctx context.Context, portfolio string, since time.Time) (*models.ReturnsSummary, error)
	status               func(ctx context.Context, portfolio string) (*models.PortfolioStatus, error)
	liveStatus           func(ctx context.Context, portfolio string) (*models.PortfolioStatus, error)
	overallAllocation    func(ctx context.Context, portfolio string) ([]models.AllocationEntry, error)
	allocationByQuote    func(ctx context.Context, portfolio string) (map[string]float64, error)
	kpis                 func(ctx context.Context, portfolio string) (*models.PortfolioKPIs, error)
	refreshTicker        func(ctx context.Context, symbol string, force bool) error
}

func (m *mockPortfolioService) PortfolioPerformance(ctx context.Context, portfolio string) ([]models.PerformanceEntry, error) {
	if m.portfolioPerformance != nil {
		return m.portfolioPerformance(ctx, portfolio)
	}
	return nil, nil
}

func (m *mockPortfolioService) TickerPerformance(ctx context.Context, portfolio, ticker, startDate string) ([]models.PerformanceEntry, error) {
	return nil, nil
}

func (m *mockPortfolioService) BenchmarkPerformance(ctx context.Context, ticker string) ([]models.PerformanceEntry, error) {
	return nil, nil
}

func (m *mockPortfolioService) MultiTickerPerformance(ctx context.Context, portfolio string, tickers []string, startDate string) (map[string][]models.PerformanceEntry, error) {
	return nil, nil
}

func (m *mockPortfolioService) ReturnsSince(ctx context.Context, portfolio string, since time.Time) (*models.ReturnsSummary, error) {
	if m.returnsSince != nil {
		return m.returnsSince(ctx, portfolio, since)
	}
	return &models.ReturnsSummary{Tickers: map[string]*models.PeriodReturn{}}, nil
}

func (m *mockPortfolioService) PeriodReturns(ctx context.Context, portfolio string) (*models.PeriodReturnsSet, error) {
	if m.periodReturns != nil {
		return m.periodReturns(ctx, portfolio)
	}
	return &models.PeriodReturnsSet{}, nil
}

func (m *mockPortfolioService) TickerReturnsSince(ctx context.Context, portfolio, ticker string, since time.Time) (*models.PeriodReturn, error) {
	return nil, nil
}

func (m *mockPortfolioService) TickerPeriodReturns(ctx context.Context, portfolio, ticker string) (*models.TickerPeriodReturns, error) {
	return nil, nil
}

func (m *mockPortfolioService) Status(ctx context.Context, portfolio string) (*models.PortfolioStatus, error) {
	if m.status != nil {
		return m.status(ctx, portfolio)
	}
	return &models.PortfolioStatus{Portfolio: portfolio}, nil
}

func (m *mockPortfolioService) LiveStatus(ctx context.Context, portfolio string) (*models.PortfolioStatus, error) {
	if m.liveStatus != nil {
		return m.liveStatus(ctx, portfolio)
	}
	return &models.PortfolioStatus{Portfolio: portfolio}, nil
}

func (m *mockPortfolioService) OverallAllocation(ctx context.Context, portfolio string) ([]models.AllocationEntry, error) {
	if m.overallAllocation != nil {
		return m.overallAllocation(ctx, portfolio)
	}
	return nil, nil
}

func (m *mockPortfolioService) AllocationByQuoteType(ctx context.Context, portfolio string) (map[string]float64, error) {
	if m.allocationByQuote != nil {
		return m.allocationByQuote(ctx, portfolio)
	}
	return nil, nil
}

func (m *mockPortfolioService) KPIs(ctx context.Context, portfolio string) (*models.PortfolioKPIs, error) {
	if m.kpis != nil {
		return m.kpis(ctx, portfolio)
	}
	return &models.PortfolioKPIs{}, nil
}

func (m *mockPortfolioService) PortfolioVolatility(ctx context.Context, portfolio string) (*float64, error) {
	return nil, nil
}

func (m *mockPortfolioService) PortfolioVolatility1D(ctx context.Context, portfolio string) ([]float64, error) {
	return nil, nil
}

func (m *mockPortfolioService) TickerVolatility(ctx context.Context, portfolio string) (map[string]*float64, error) {
	return nil, nil
}

func (m *mockPortfolioService) TickerVolatility1D(ctx context.Context, portfolio string) (map[string][]float64, error) {
	return nil, nil
}

func (m *mockPortfolioService) PerformanceChart(ctx context.Context, portfolio string) ([]byte, error) {
	return nil, fmt.Errorf("not rendered in tests")
}

func (m *mockPortfolioService) RefreshTicker(ctx context.Context, symbol string, force bool) error {
	if m.refreshTicker != nil {
		return m.refreshTicker(ctx, symbol, force)
	}
	return nil
}

func (m *mockPortfolioService) InvalidateCache(portfolio string, tickers ...string) {}

// mockReportService implements interfaces.ReportService for testing.
type mockReportService struct {
	portfolioReport   func(ctx context.Context, portfolio string, force bool) (*models.Report, error)
	tickerReport      func(ctx context.Context, portfolio, ticker string, force bool) (*models.Report, error)
	multiTickerReport func(ctx context.Context, portfolio string, tickers []string) (*models.Report, error)
}

func (m *mockReportService) PortfolioReport(ctx context.Context, portfolio string, force bool) (*models.Report, error) {
	if m.portfolioReport != nil {
		return m.portfolioReport(ctx, portfolio, force)
	}
	return &models.Report{Sections: map[string]any{}}, nil
}

func (m *mockReportService) TickerReport(ctx context.Context, portfolio, ticker string, force bool) (*models.Report, error) {
	if m.tickerReport != nil {
		return m.tickerReport(ctx, portfolio, ticker, force)
	}
	return &models.Report{Ticker: ticker, Sections: map[string]any{}}, nil
}

func (m *mockReportService) MultiTickerReport(ctx context.Context, portfolio string, tickers []string) (*models.Report, error) {
	if m.multiTickerReport != nil {
		return m.multiTickerReport(ctx, portfolio, tickers)
	}
	return &models.Report{Sections: map[string]any{}}, nil
}

// mockTransactionStore is an in-memory interfaces.TransactionStore.
type mockTransactionStore struct {
	nextID     uint64
	txs        []*models.Transaction
	statuses   map[string]*models.PortfolioStatus
	portfolios []string
}

func newMockTransactionStore() *mockTransactionStore {
	return &mockTransactionStore{statuses: map[string]*models.PortfolioStatus{}}
}

func (m *mockTransactionStore) SaveTransactions(ctx context.Context, portfolio string, txs []*models.Transaction) ([]*models.Transaction, error) {
	for _, tx := range txs {
		if tx.Ticker == "" {
			return nil, fmt.Errorf("transaction with empty ticker")
		}
		m.nextID++
		tx.ID = m.nextID
		tx.Portfolio = portfolio
		m.txs = append(m.txs, tx)
	}
	return txs, nil
}

func (m *mockTransactionStore) GetTransactions(ctx context.Context, portfolio string) ([]*models.Transaction, error) {
	out := []*models.Transaction{}
	for _, tx := range m.txs {
		if portfolio == "" || tx.Portfolio == portfolio {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (m *mockTransactionStore) GetTransaction(ctx context.Context, id uint64) (*models.Transaction, error) {
	for _, tx := range m.txs {
		if tx.ID == id {
			return tx, nil
		}
	}
	return nil, nil
}

func (m *mockTransactionStore) DeleteTransaction(ctx context.Context, portfolio string, id uint64) error {
	for i, tx := range m.txs {
		if tx.ID == id && tx.Portfolio == portfolio {
			m.txs = append(m.txs[:i], m.txs[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("transaction %d not found in portfolio %s", id, portfolio)
}

func (m *mockTransactionStore) DeletePortfolio(ctx context.Context, portfolio string) error {
	kept := m.txs[:0]
	for _, tx := range m.txs {
		if tx.Portfolio != portfolio {
			kept = append(kept, tx)
		}
	}
	m.txs = kept
	delete(m.statuses, portfolio)
	return nil
}

func (m *mockTransactionStore) ListPortfolios(ctx context.Context) ([]string, error) {
	return m.portfolios, nil
}

func (m *mockTransactionStore) SavePortfolioStatus(ctx context.Context, status *models.PortfolioStatus) error {
	m.statuses[status.Portfolio] = status
	return nil
}

func (m *mockTransactionStore) GetPortfolioStatus(ctx context.Context, portfolio string) (*models.PortfolioStatus, error) {
	return m.statuses[portfolio], nil
}

func (m *mockTransactionStore) SetInvalidationHook(hook interfaces.InvalidationHook) {}

// mockMarketStore is an in-memory interfaces.MarketDataStore.
type mockMarketStore struct {
	data map[string]*models.TickerData
}

func newMockMarketStore() *mockMarketStore {
	return &mockMarketStore{data: map[string]*models.TickerData{}}
}

func (m *mockMarketStore) GetPriceHistory(ctx context.Context, ticker string) ([]models.PricePoint, error) {
	if d, ok := m.data[ticker]; ok {
		return d.History, nil
	}
	return []models.PricePoint{}, nil
}

func (m *mockMarketStore) SavePriceHistory(ctx context.Context, ticker string, points []models.PricePoint) error {
	return nil
}

func (m *mockMarketStore) GetTickerData(ctx context.Context, ticker string) (*models.TickerData, error) {
	return m.data[ticker], nil
}

func (m *mockMarketStore) SaveTickerData(ctx context.Context, data *models.TickerData) error {
	m.data[data.Ticker] = data
	return nil
}

func (m *mockMarketStore) ListTickers(ctx context.Context) ([]string, error) { return nil, nil }

func (m *mockMarketStore) GetStaleTickers(ctx context.Context, maxAge time.Duration) ([]string, error) {
	return nil, nil
}

// mockStorage bundles the stores behind interfaces.StorageManager.
type mockStorage struct {
	txs    *mockTransactionStore
	market *mockMarketStore
}

func newMockStorage() *mockStorage {
	return &mockStorage{txs: newMockTransactionStore(), market: newMockMarketStore()}
}

func (m *mockStorage) Transactions() interfaces.TransactionStore { return m.txs }
func (m *mockStorage) MarketData() interfaces.MarketDataStore    { return m.market }
func (m *mockStorage) Reports() interfaces.ReportStore           { return nil }
func (m *mockStorage) Close() error                              { return nil }

// newTestServer builds a full server (routes + middleware) over mocks.
func newTestServer(cfg *common.Config, portfolioSvc interfaces.PortfolioService, reportSvc interfaces.ReportService, storage *mockStorage) *Server {
	if cfg == nil {
		cfg = common.DefaultConfig()
	}
	if portfolioSvc == nil {
		portfolioSvc = &mockPortfolioService{}
	}
	if reportSvc == nil {
		reportSvc = &mockReportService{}
	}
	if storage == nil {
		storage = newMockStorage()
	}
	logger := common.NewSilentLogger()
	a := &app.App{
		Config:           cfg,
		Logger:           logger,
		Storage:          storage,
		PortfolioService: portfolioSvc,
		ReportService:    reportSvc,
		StartupTime:      time.Now(),
	}
	return NewServer(a)
}

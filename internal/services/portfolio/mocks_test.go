package portfolio

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/daniele21/portfolio-pilot/internal/common"
	"github.com/daniele21/portfolio-pilot/internal/interfaces"
	"github.com/daniele21/portfolio-pilot/internal/models"
)

// memStorage is an in-memory StorageManager for engine tests.
type memStorage struct {
	txs     *memTransactionStore
	market  *memMarketStore
	reports *memReportStore
}

func newMemStorage() *memStorage {
	return &memStorage{
		txs:     &memTransactionStore{},
		market:  &memMarketStore{data: map[string]*models.TickerData{}},
		reports: &memReportStore{reports: map[string]*models.Report{}},
	}
}

func (m *memStorage) Transactions() interfaces.TransactionStore { return m.txs }
func (m *memStorage) MarketData() interfaces.MarketDataStore    { return m.market }
func (m *memStorage) Reports() interfaces.ReportStore           { return m.reports }
func (m *memStorage) Close() error                              { return nil }

type memTransactionStore struct {
	records []*models.Transaction
	nextID  uint64
	hook    interfaces.InvalidationHook
}

func (s *memTransactionStore) SetInvalidationHook(hook interfaces.InvalidationHook) {
	s.hook = hook
}

func (s *memTransactionStore) fire(portfolio string, tickers ...string) {
	if s.hook != nil {
		s.hook(portfolio, tickers...)
	}
}

func (s *memTransactionStore) SaveTransactions(ctx context.Context, portfolio string, txs []*models.Transaction) ([]*models.Transaction, error) {
	saved := make([]*models.Transaction, 0, len(txs))
	tickers := make([]string, 0, len(txs))
	for _, tx := range txs {
		if strings.TrimSpace(tx.Ticker) == "" {
			return nil, fmt.Errorf("transaction has no ticker")
		}
		record := *tx
		record.Portfolio = portfolio
		record.Ticker = strings.ToUpper(strings.TrimSpace(record.Ticker))
		s.nextID++
		record.ID = s.nextID
		s.records = append(s.records, &record)
		saved = append(saved, &record)
		tickers = append(tickers, record.Ticker)
	}
	s.fire(portfolio, tickers...)
	return saved, nil
}

func (s *memTransactionStore) GetTransactions(ctx context.Context, portfolio string) ([]*models.Transaction, error) {
	out := make([]*models.Transaction, 0)
	for _, tx := range s.records {
		if portfolio == "" || tx.Portfolio == portfolio {
			out = append(out, tx)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *memTransactionStore) GetTransaction(ctx context.Context, id uint64) (*models.Transaction, error) {
	for _, tx := range s.records {
		if tx.ID == id {
			return tx, nil
		}
	}
	return nil, nil
}

func (s *memTransactionStore) DeleteTransaction(ctx context.Context, portfolio string, id uint64) error {
	for i, tx := range s.records {
		if tx.ID == id && tx.Portfolio == portfolio {
			ticker := tx.Ticker
			s.records = append(s.records[:i], s.records[i+1:]...)
			s.fire(portfolio, ticker)
			return nil
		}
	}
	return fmt.Errorf("transaction %d not found", id)
}

func (s *memTransactionStore) DeletePortfolio(ctx context.Context, portfolio string) error {
	kept := s.records[:0]
	for _, tx := range s.records {
		if tx.Portfolio != portfolio {
			kept = append(kept, tx)
		}
	}
	s.records = kept
	s.fire(portfolio)
	return nil
}

func (s *memTransactionStore) ListPortfolios(ctx context.Context) ([]string, error) {
	seen := map[string]bool{}
	names := []string{}
	for _, tx := range s.records {
		if !seen[tx.Portfolio] {
			seen[tx.Portfolio] = true
			names = append(names, tx.Portfolio)
		}
	}
	sort.Strings(names)
	return names, nil
}

func (s *memTransactionStore) SavePortfolioStatus(ctx context.Context, status *models.PortfolioStatus) error {
	return nil
}

func (s *memTransactionStore) GetPortfolioStatus(ctx context.Context, portfolio string) (*models.PortfolioStatus, error) {
	return nil, nil
}

type memMarketStore struct {
	data map[string]*models.TickerData
}

func (s *memMarketStore) GetPriceHistory(ctx context.Context, ticker string) ([]models.PricePoint, error) {
	d, ok := s.data[ticker]
	if !ok {
		return []models.PricePoint{}, nil
	}
	return d.History, nil
}

func (s *memMarketStore) SavePriceHistory(ctx context.Context, ticker string, points []models.PricePoint) error {
	d, ok := s.data[ticker]
	if !ok {
		d = &models.TickerData{Ticker: ticker, Info: models.TickerInfo{Ticker: ticker}}
		s.data[ticker] = d
	}
	d.MergeHistory(points)
	d.LastUpdated = time.Now()
	return nil
}

func (s *memMarketStore) GetTickerData(ctx context.Context, ticker string) (*models.TickerData, error) {
	return s.data[ticker], nil
}

func (s *memMarketStore) SaveTickerData(ctx context.Context, data *models.TickerData) error {
	data.SortHistory()
	s.data[data.Ticker] = data
	return nil
}

func (s *memMarketStore) ListTickers(ctx context.Context) ([]string, error) {
	out := []string{}
	for t := range s.data {
		out = append(out, t)
	}
	sort.Strings(out)
	return out, nil
}

func (s *memMarketStore) GetStaleTickers(ctx context.Context, maxAge time.Duration) ([]string, error) {
	out := []string{}
	for t, d := range s.data {
		if !common.IsFresh(d.LastUpdated, maxAge) {
			out = append(out, t)
		}
	}
	sort.Strings(out)
	return out, nil
}

type memReportStore struct {
	reports map[string]*models.Report
}

func (s *memReportStore) SavePortfolioReport(ctx context.Context, report *models.Report) error {
	s.reports["p:"+report.Portfolio+":"+report.ReferenceDate] = report
	return nil
}

func (s *memReportStore) GetPortfolioReport(ctx context.Context, portfolio, referenceDate string) (*models.Report, error) {
	if referenceDate != "" {
		return s.reports["p:"+portfolio+":"+referenceDate], nil
	}
	var latest *models.Report
	for _, r := range s.reports {
		if r.Portfolio == portfolio && (latest == nil || r.ReferenceDate > latest.ReferenceDate) {
			latest = r
		}
	}
	return latest, nil
}

func (s *memReportStore) SaveTickerReport(ctx context.Context, report *models.Report) error {
	s.reports["t:"+report.Ticker+":"+report.ReferenceDate] = report
	return nil
}

func (s *memReportStore) GetTickerReport(ctx context.Context, ticker, referenceDate string) (*models.Report, error) {
	if referenceDate != "" {
		return s.reports["t:"+ticker+":"+referenceDate], nil
	}
	var latest *models.Report
	for _, r := range s.reports {
		if r.Ticker == ticker && (latest == nil || r.ReferenceDate > latest.ReferenceDate) {
			latest = r
		}
	}
	return latest, nil
}

// fakeMarketClient serves canned ticker data and counts fetches.
type fakeMarketClient struct {
	data    map[string]*models.TickerData
	err     error
	fetches int
}

func (c *fakeMarketClient) FetchTicker(ctx context.Context, symbol string) (*models.TickerData, error) {
	c.fetches++
	if c.err != nil {
		return nil, c.err
	}
	return c.data[symbol], nil
}

// newTestService wires a service over in-memory storage with a controllable
// clock.
func newTestService(storage *memStorage, client *fakeMarketClient) *Service {
	if client == nil {
		client = &fakeMarketClient{}
	}
	svc := NewService(storage, client, common.NewSilentLogger())
	storage.txs.SetInvalidationHook(svc.InvalidateCache)
	return svc
}

// seedHistory stores a close-only price history for a ticker.
func seedHistory(storage *memStorage, ticker string, closes map[string]float64) {
	points := make([]models.PricePoint, 0, len(closes))
	for date, close := range closes {
		points = append(points, models.PricePoint{Date: date, Close: close})
	}
	data := &models.TickerData{
		Ticker:      ticker,
		Info:        models.TickerInfo{Ticker: ticker},
		History:     points,
		LastUpdated: time.Now(),
	}
	data.SortHistory()
	storage.market.data[ticker] = data
}

// seedInfo stores quote metadata for a ticker without touching history.
func seedInfo(storage *memStorage, ticker, name, quoteType string, price float64) {
	d, ok := storage.market.data[ticker]
	if !ok {
		d = &models.TickerData{Ticker: ticker}
		storage.market.data[ticker] = d
	}
	d.Info = models.TickerInfo{
		Ticker:             ticker,
		ShortName:          name,
		QuoteType:          quoteType,
		RegularMarketPrice: price,
	}
}

package badger

import (
	"context"
	"fmt"

	"github.com/timshannon/badgerhold/v4"

	"github.com/daniele21/portfolio-pilot/internal/common"
	"github.com/daniele21/portfolio-pilot/internal/interfaces"
	"github.com/daniele21/portfolio-pilot/internal/models"
)

// reportStore implements interfaces.ReportStore on BadgerHold.
type reportStore struct {
	store  *Store
	logger *common.Logger
}

// NewReportStore creates a report store backed by the given store.
func NewReportStore(store *Store) interfaces.ReportStore {
	return &reportStore{
		store:  store,
		logger: store.logger,
	}
}

func portfolioReportID(portfolio, referenceDate string) string {
	return fmt.Sprintf("portfolio:%s:%s", portfolio, referenceDate)
}

func tickerReportID(ticker, referenceDate string) string {
	return fmt.Sprintf("ticker:%s:%s", ticker, referenceDate)
}

func (s *reportStore) SavePortfolioReport(ctx context.Context, report *models.Report) error {
	if report.Portfolio == "" || report.ReferenceDate == "" {
		return fmt.Errorf("portfolio report requires portfolio and reference date")
	}
	report.ID = portfolioReportID(report.Portfolio, report.ReferenceDate)
	return s.save(report)
}

func (s *reportStore) GetPortfolioReport(ctx context.Context, portfolio, referenceDate string) (*models.Report, error) {
	if referenceDate != "" {
		return s.get(portfolioReportID(portfolio, referenceDate))
	}
	return s.latest(badgerhold.Where("Portfolio").Eq(portfolio).Index("Portfolio"))
}

func (s *reportStore) SaveTickerReport(ctx context.Context, report *models.Report) error {
	if report.Ticker == "" || report.ReferenceDate == "" {
		return fmt.Errorf("ticker report requires ticker and reference date")
	}
	report.ID = tickerReportID(report.Ticker, report.ReferenceDate)
	return s.save(report)
}

func (s *reportStore) GetTickerReport(ctx context.Context, ticker, referenceDate string) (*models.Report, error) {
	if referenceDate != "" {
		return s.get(tickerReportID(ticker, referenceDate))
	}
	return s.latest(badgerhold.Where("Ticker").Eq(ticker).Index("Ticker"))
}

func (s *reportStore) save(report *models.Report) error {
	err := s.store.withRetry("save report", func() error {
		return s.store.db.Upsert(report.ID, report)
	})
	if err != nil {
		return fmt.Errorf("failed to save report %s: %w", report.ID, err)
	}

	s.logger.Debug().
		Str("id", report.ID).
		Float64("cost", report.Cost).
		Msg("Report saved")
	return nil
}

func (s *reportStore) get(id string) (*models.Report, error) {
	var report models.Report
	err := s.store.db.Get(id, &report)
	if err == badgerhold.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report %s: %w", id, err)
	}
	return &report, nil
}

func (s *reportStore) latest(query *badgerhold.Query) (*models.Report, error) {
	var reports []*models.Report
	if err := s.store.db.Find(&reports, query); err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	if len(reports) == 0 {
		return nil, nil
	}

	latest := reports[0]
	for _, r := range reports[1:] {
		if r.ReferenceDate > latest.ReferenceDate {
			latest = r
		}
	}
	return latest, nil
}

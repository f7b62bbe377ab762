package badger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/timshannon/badgerhold/v4"

	"github.com/daniele21/portfolio-pilot/internal/common"
	"github.com/daniele21/portfolio-pilot/internal/interfaces"
	"github.com/daniele21/portfolio-pilot/internal/models"
)

// transactionStore implements interfaces.TransactionStore on BadgerHold.
type transactionStore struct {
	store      *Store
	logger     *common.Logger
	invalidate interfaces.InvalidationHook
}

// NewTransactionStore creates a transaction store backed by the given store.
func NewTransactionStore(store *Store) interfaces.TransactionStore {
	return &transactionStore{
		store:  store,
		logger: store.logger,
	}
}

func (s *transactionStore) SetInvalidationHook(hook interfaces.InvalidationHook) {
	s.invalidate = hook
}

func (s *transactionStore) fireInvalidation(portfolio string, tickers ...string) {
	if s.invalidate != nil {
		s.invalidate(portfolio, tickers...)
	}
}

func (s *transactionStore) SaveTransactions(ctx context.Context, portfolio string, txs []*models.Transaction) ([]*models.Transaction, error) {
	if portfolio == "" {
		return nil, errors.New("portfolio name is required")
	}

	for _, tx := range txs {
		if strings.TrimSpace(tx.Ticker) == "" {
			return nil, fmt.Errorf("transaction for portfolio %s has no ticker", portfolio)
		}
	}

	saved := make([]*models.Transaction, 0, len(txs))
	tickers := make([]string, 0, len(txs))
	err := s.store.withRetry("save transactions", func() error {
		saved = saved[:0]
		tickers = tickers[:0]
		for _, tx := range txs {
			record := *tx
			record.Portfolio = portfolio
			record.Ticker = strings.ToUpper(strings.TrimSpace(record.Ticker))
			if err := s.store.db.Insert(badgerhold.NextSequence(), &record); err != nil {
				return err
			}
			saved = append(saved, &record)
			tickers = append(tickers, record.Ticker)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save transactions for %s: %w", portfolio, err)
	}

	s.logger.Debug().
		Str("portfolio", portfolio).
		Int("count", len(saved)).
		Msg("Transactions saved")

	s.fireInvalidation(portfolio, tickers...)
	return saved, nil
}

func (s *transactionStore) GetTransactions(ctx context.Context, portfolio string) ([]*models.Transaction, error) {
	var txs []*models.Transaction
	var query *badgerhold.Query
	if portfolio != "" {
		query = badgerhold.Where("Portfolio").Eq(portfolio).Index("Portfolio")
	}

	if err := s.store.db.Find(&txs, query); err != nil {
		return nil, fmt.Errorf("failed to get transactions for %s: %w", portfolio, err)
	}

	// Date ascending, insertion order within a day.
	sort.Slice(txs, func(i, j int) bool {
		if txs[i].Date != txs[j].Date {
			return txs[i].Date < txs[j].Date
		}
		return txs[i].ID < txs[j].ID
	})

	return txs, nil
}

func (s *transactionStore) GetTransaction(ctx context.Context, id uint64) (*models.Transaction, error) {
	var tx models.Transaction
	err := s.store.db.Get(id, &tx)
	if errors.Is(err, badgerhold.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction %d: %w", id, err)
	}
	return &tx, nil
}

func (s *transactionStore) DeleteTransaction(ctx context.Context, portfolio string, id uint64) error {
	tx, err := s.GetTransaction(ctx, id)
	if err != nil {
		return err
	}
	if tx == nil || tx.Portfolio != portfolio {
		return fmt.Errorf("transaction %d not found in portfolio %s", id, portfolio)
	}

	err = s.store.withRetry("delete transaction", func() error {
		return s.store.db.Delete(id, &models.Transaction{})
	})
	if err != nil {
		return fmt.Errorf("failed to delete transaction %d: %w", id, err)
	}

	s.logger.Debug().
		Str("portfolio", portfolio).
		Uint64("id", id).
		Str("ticker", tx.Ticker).
		Msg("Transaction deleted")

	s.fireInvalidation(portfolio, tx.Ticker)
	return nil
}

func (s *transactionStore) DeletePortfolio(ctx context.Context, portfolio string) error {
	if portfolio == "" {
		return errors.New("portfolio name is required")
	}

	err := s.store.withRetry("delete portfolio", func() error {
		if err := s.store.db.DeleteMatching(&models.Transaction{},
			badgerhold.Where("Portfolio").Eq(portfolio).Index("Portfolio")); err != nil {
			return err
		}
		if err := s.store.db.Delete(portfolio, &models.PortfolioStatus{}); err != nil &&
			!errors.Is(err, badgerhold.ErrNotFound) {
			return err
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete portfolio %s: %w", portfolio, err)
	}

	s.logger.Info().Str("portfolio", portfolio).Msg("Portfolio deleted")

	s.fireInvalidation(portfolio)
	return nil
}

func (s *transactionStore) ListPortfolios(ctx context.Context) ([]string, error) {
	var txs []*models.Transaction
	if err := s.store.db.Find(&txs, nil); err != nil {
		return nil, fmt.Errorf("failed to list portfolios: %w", err)
	}

	seen := make(map[string]bool)
	names := make([]string, 0)
	for _, tx := range txs {
		if !seen[tx.Portfolio] {
			seen[tx.Portfolio] = true
			names = append(names, tx.Portfolio)
		}
	}
	sort.Strings(names)
	return names, nil
}

func (s *transactionStore) SavePortfolioStatus(ctx context.Context, status *models.PortfolioStatus) error {
	if status.Portfolio == "" {
		return errors.New("portfolio name is required")
	}

	err := s.store.withRetry("save portfolio status", func() error {
		return s.store.db.Upsert(status.Portfolio, status)
	})
	if err != nil {
		return fmt.Errorf("failed to save status for %s: %w", status.Portfolio, err)
	}
	return nil
}

func (s *transactionStore) GetPortfolioStatus(ctx context.Context, portfolio string) (*models.PortfolioStatus, error) {
	var status models.PortfolioStatus
	err := s.store.db.Get(portfolio, &status)
	if errors.Is(err, badgerhold.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get status for %s: %w", portfolio, err)
	}
	return &status, nil
}

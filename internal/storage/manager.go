// Package storage wires the concrete stores behind the storage interfaces.
package storage

import (
	"fmt"

	"github.com/daniele21/portfolio-pilot/internal/common"
	"github.com/daniele21/portfolio-pilot/internal/interfaces"
	"github.com/daniele21/portfolio-pilot/internal/storage/badger"
)

// Manager implements interfaces.StorageManager over a single BadgerHold store.
type Manager struct {
	store        *badger.Store
	transactions interfaces.TransactionStore
	marketData   interfaces.MarketDataStore
	reports      interfaces.ReportStore
}

// NewManager opens the store at the configured path and builds all stores.
func NewManager(logger *common.Logger, config *common.Config) (*Manager, error) {
	store, err := badger.NewStore(logger, config.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	return &Manager{
		store:        store,
		transactions: badger.NewTransactionStore(store),
		marketData:   badger.NewMarketDataStore(store),
		reports:      badger.NewReportStore(store),
	}, nil
}

// Transactions returns the transaction store.
func (m *Manager) Transactions() interfaces.TransactionStore {
	return m.transactions
}

// MarketData returns the market data store.
func (m *Manager) MarketData() interfaces.MarketDataStore {
	return m.marketData
}

// Reports returns the report store.
func (m *Manager) Reports() interfaces.ReportStore {
	return m.reports
}

// Close closes the underlying store.
func (m *Manager) Close() error {
	return m.store.Close()
}

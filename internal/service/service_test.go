package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/yizeng/gab/gin/gorm/pharmacy-ledger/internal/domain"
	"github.com/yizeng/gab/gin/gorm/pharmacy-ledger/internal/pkg/keylock"
	"github.com/yizeng/gab/gin/gorm/pharmacy-ledger/internal/repository"
	"github.com/yizeng/gab/gin/gorm/pharmacy-ledger/internal/repository/dao"
)

var today = time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

func fixedClock() time.Time {
	return today
}

type fixture struct {
	catalog    *CatalogService
	ledger     *LedgerService
	dispense   *DispenseService
	classifier *ClassifierService
	locker     *keylock.Locker[uint]
}

func newFixture(t *testing.T, lockTimeout time.Duration) *fixture {
	t.Helper()

	store := dao.NewMemoryStore()
	products := repository.NewProductRepository(store)
	stock := repository.NewStockRepository(store)
	sales := repository.NewSaleRepository(store)
	locker := keylock.New[uint](lockTimeout)

	classifier, err := NewClassifierService(products, stock, DefaultThresholds())
	require.NoError(t, err)

	return &fixture{
		catalog:    NewCatalogService(products),
		ledger:     NewLedgerService(products, stock, locker, fixedClock),
		dispense:   NewDispenseService(products, stock, sales, locker, fixedClock),
		classifier: classifier,
		locker:     locker,
	}
}

func (f *fixture) product(t *testing.T, name, retail string) domain.Product {
	t.Helper()

	p, err := f.catalog.CreateProduct(context.Background(), domain.Product{
		Name:        name,
		Category:    "analgesic",
		RetailPrice: decimal.RequireFromString(retail),
	})
	require.NoError(t, err)

	return p
}

func (f *fixture) batch(t *testing.T, productID uint, quantity, expiresInDays int, number string) domain.StockBatch {
	t.Helper()

	b, err := f.ledger.AddBatch(context.Background(), productID, quantity, today.AddDate(0, 0, expiresInDays), number, "Acme Pharma")
	require.NoError(t, err)

	return b
}

package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/yizeng/gab/gin/gorm/pharmacy-ledger/internal/domain"
)

// Thresholds are the defaults the HTTP layer uses when a request does not
// carry its own.
type Thresholds struct {
	LowStockThreshold  int
	ExpiringWindowDays int
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		LowStockThreshold:  domain.DefaultLowStockThreshold,
		ExpiringWindowDays: domain.DefaultExpiringWindowDays,
	}
}

func (t Thresholds) Validate() error {
	if t.LowStockThreshold <= 0 {
		return domain.NewConfigurationError("low_stock_threshold", t.LowStockThreshold)
	}
	if t.ExpiringWindowDays <= 0 {
		return domain.NewConfigurationError("expiring_window_days", t.ExpiringWindowDays)
	}
	return nil
}

type ClassifierService struct {
	products   ProductRepository
	stock      StockRepository
	thresholds atomic.Pointer[Thresholds]
}

func NewClassifierService(products ProductRepository, stock StockRepository, thresholds Thresholds) (*ClassifierService, error) {
	s := &ClassifierService{
		products: products,
		stock:    stock,
	}
	if err := s.SetThresholds(thresholds); err != nil {
		return nil, err
	}

	return s, nil
}

// SetThresholds replaces the defaults. It is safe to call while requests are
// being served.
func (s *ClassifierService) SetThresholds(t Thresholds) error {
	if err := t.Validate(); err != nil {
		return err
	}
	s.thresholds.Store(&t)

	zap.L().Info("classifier thresholds updated",
		zap.Int("low_stock_threshold", t.LowStockThreshold),
		zap.Int("expiring_window_days", t.ExpiringWindowDays))

	return nil
}

func (s *ClassifierService) Thresholds() Thresholds {
	return *s.thresholds.Load()
}

// Classify derives the stock status of one product and returns its total.
func (s *ClassifierService) Classify(ctx context.Context, productID uint, lowStockThreshold int) (domain.StockStatus, int, error) {
	threshold, err := checkThreshold(lowStockThreshold)
	if err != nil {
		return "", 0, err
	}

	if _, err := s.products.FindByID(ctx, productID); err != nil {
		return "", 0, fmt.Errorf("s.products.FindByID -> %w", err)
	}

	total, err := s.stock.SumQuantity(ctx, productID)
	if err != nil {
		return "", 0, fmt.Errorf("s.stock.SumQuantity -> %w", err)
	}

	status, err := domain.ClassifyStock(total, threshold)
	if err != nil {
		return "", 0, err
	}

	return status, total, nil
}

func (s *ClassifierService) ClassifyBatch(batch domain.StockBatch, windowDays int, asOf time.Time) (domain.ClassifiedBatch, error) {
	window, err := checkWindow(windowDays)
	if err != nil {
		return domain.ClassifiedBatch{}, err
	}

	return classifyBatch(batch, window, asOf)
}

func (s *ClassifierService) ClassifyBatches(batches []domain.StockBatch, windowDays int, asOf time.Time) ([]domain.ClassifiedBatch, error) {
	window, err := checkWindow(windowDays)
	if err != nil {
		return nil, err
	}

	classified := make([]domain.ClassifiedBatch, 0, len(batches))
	for _, b := range batches {
		c, err := classifyBatch(b, window, asOf)
		if err != nil {
			return nil, err
		}
		classified = append(classified, c)
	}

	return classified, nil
}

// InventoryOverview classifies every product. The nearest expiry and the
// expiry status of a product only consider batches that still hold stock.
func (s *ClassifierService) InventoryOverview(ctx context.Context, lowStockThreshold, windowDays int, asOf time.Time) ([]domain.ProductInventory, error) {
	threshold, err := checkThreshold(lowStockThreshold)
	if err != nil {
		return nil, err
	}
	window, err := checkWindow(windowDays)
	if err != nil {
		return nil, err
	}

	products, err := s.products.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.products.FindAll -> %w", err)
	}
	batches, err := s.stock.FindAllBatches(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.stock.FindAllBatches -> %w", err)
	}

	byProduct := make(map[uint][]domain.StockBatch, len(products))
	for _, b := range batches {
		byProduct[b.ProductID] = append(byProduct[b.ProductID], b)
	}

	overview := make([]domain.ProductInventory, 0, len(products))
	for _, p := range products {
		productBatches := byProduct[p.ID]
		domain.SortFEFO(productBatches)

		total := domain.TotalQuantity(productBatches)
		stockStatus, err := domain.ClassifyStock(total, threshold)
		if err != nil {
			return nil, err
		}

		row := domain.ProductInventory{
			Product:       p,
			TotalQuantity: total,
			StockStatus:   stockStatus,
			Batches:       make([]domain.ClassifiedBatch, 0, len(productBatches)),
		}
		for _, b := range productBatches {
			c, err := classifyBatch(b, window, asOf)
			if err != nil {
				return nil, err
			}
			row.Batches = append(row.Batches, c)

			if b.Quantity <= 0 {
				continue
			}
			if row.NearestExpiry == nil || b.ExpiryDate.Before(*row.NearestExpiry) {
				expiry := b.ExpiryDate
				row.NearestExpiry = &expiry
			}
			if row.ExpiryStatus == "" || c.ExpiryStatus.Worse(row.ExpiryStatus) {
				row.ExpiryStatus = c.ExpiryStatus
			}
		}

		overview = append(overview, row)
	}

	return overview, nil
}

func checkThreshold(v int) (int, error) {
	if v <= 0 {
		return 0, domain.NewConfigurationError("low_stock_threshold", v)
	}
	return v, nil
}

func checkWindow(v int) (int, error) {
	if v <= 0 {
		return 0, domain.NewConfigurationError("expiring_window_days", v)
	}
	return v, nil
}

func classifyBatch(b domain.StockBatch, windowDays int, asOf time.Time) (domain.ClassifiedBatch, error) {
	status, err := domain.ClassifyExpiry(b.ExpiryDate, asOf, windowDays)
	if err != nil {
		return domain.ClassifiedBatch{}, err
	}

	return domain.ClassifiedBatch{
		StockBatch:      b,
		DaysUntilExpiry: domain.DaysUntil(b.ExpiryDate, asOf),
		ExpiryStatus:    status,
	}, nil
}

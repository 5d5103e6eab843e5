package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/yizeng/gab/gin/gorm/pharmacy-ledger/internal/domain"
)

type StockRepository interface {
	CreateBatch(ctx context.Context, batch domain.StockBatch) (domain.StockBatch, error)
	FindBatchByID(ctx context.Context, id uint) (domain.StockBatch, error)
	FindBatchesByProductID(ctx context.Context, productID uint) ([]domain.StockBatch, error)
	FindAllBatches(ctx context.Context) ([]domain.StockBatch, error)
	SumQuantity(ctx context.Context, productID uint) (int, error)
	DecrementBatch(ctx context.Context, batch domain.StockBatch, amount int) (domain.StockBatch, error)
	CommitDispense(
		ctx context.Context, sale domain.Sale, plan func([]domain.StockBatch) ([]domain.SaleLine, error),
	) (domain.Sale, error)
}

// LedgerService owns every change to batch quantities.
type LedgerService struct {
	products ProductRepository
	stock    StockRepository
	locker   ProductLocker
	now      func() time.Time
}

func NewLedgerService(products ProductRepository, stock StockRepository, locker ProductLocker, now func() time.Time) *LedgerService {
	return &LedgerService{
		products: products,
		stock:    stock,
		locker:   locker,
		now:      now,
	}
}

// AddBatch records a stock receipt. Expiry dates in the past are accepted for
// stock entered late; such batches classify as expired.
func (s *LedgerService) AddBatch(ctx context.Context, productID uint, quantity int, expiryDate time.Time, batchNumber, supplier string) (domain.StockBatch, error) {
	if quantity <= 0 {
		return domain.StockBatch{}, domain.NewValidationError("quantity", "must be greater than zero", quantity)
	}
	if expiryDate.IsZero() {
		return domain.StockBatch{}, domain.NewValidationError("expiry_date", "is required", expiryDate)
	}
	batchNumber = strings.TrimSpace(batchNumber)
	if batchNumber == "" {
		return domain.StockBatch{}, domain.NewValidationError("batch_number", "cannot be empty", batchNumber)
	}

	if _, err := s.products.FindByID(ctx, productID); err != nil {
		return domain.StockBatch{}, fmt.Errorf("s.products.FindByID -> %w", err)
	}

	now := s.now()
	created, err := s.stock.CreateBatch(ctx, domain.StockBatch{
		ProductID:   productID,
		Quantity:    quantity,
		ExpiryDate:  domain.DateOf(expiryDate),
		BatchNumber: batchNumber,
		Supplier:    strings.TrimSpace(supplier),
		ReceivedAt:  now,
	})
	if err != nil {
		return domain.StockBatch{}, fmt.Errorf("s.stock.CreateBatch -> %w", err)
	}

	fields := []zap.Field{
		zap.Uint("product_id", productID),
		zap.Uint("batch_id", created.ID),
		zap.String("batch_number", created.BatchNumber),
		zap.Int("quantity", quantity),
	}
	if domain.DaysUntil(created.ExpiryDate, now) < 0 {
		zap.L().Warn("received batch is already expired", fields...)
	} else {
		zap.L().Info("batch received", fields...)
	}

	return created, nil
}

func (s *LedgerService) TotalQuantity(ctx context.Context, productID uint) (int, error) {
	total, err := s.stock.SumQuantity(ctx, productID)
	if err != nil {
		return 0, fmt.Errorf("s.stock.SumQuantity -> %w", err)
	}

	return total, nil
}

// ListBatches returns the product's batches earliest expiry first.
func (s *LedgerService) ListBatches(ctx context.Context, productID uint) ([]domain.StockBatch, error) {
	if _, err := s.products.FindByID(ctx, productID); err != nil {
		return nil, fmt.Errorf("s.products.FindByID -> %w", err)
	}

	batches, err := s.stock.FindBatchesByProductID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("s.stock.FindBatchesByProductID -> %w", err)
	}
	domain.SortFEFO(batches)

	return batches, nil
}

func (s *LedgerService) DecrementBatch(ctx context.Context, batchID uint, amount int) (domain.StockBatch, error) {
	if amount <= 0 {
		return domain.StockBatch{}, domain.NewValidationError("amount", "must be greater than zero", amount)
	}

	batch, err := s.stock.FindBatchByID(ctx, batchID)
	if err != nil {
		return domain.StockBatch{}, fmt.Errorf("s.stock.FindBatchByID -> %w", err)
	}

	release, err := lockProduct(ctx, s.locker, batch.ProductID)
	if err != nil {
		return domain.StockBatch{}, err
	}
	defer release()

	updated, err := s.stock.DecrementBatch(ctx, batch, amount)
	if err != nil {
		return domain.StockBatch{}, fmt.Errorf("s.stock.DecrementBatch -> %w", err)
	}

	zap.L().Info("batch decremented",
		zap.Uint("product_id", updated.ProductID),
		zap.Uint("batch_id", updated.ID),
		zap.Int("amount", amount),
		zap.Int("remaining", updated.Quantity))

	return updated, nil
}

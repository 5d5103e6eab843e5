package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/yizeng/gab/gin/gorm/pharmacy-ledger/internal/domain"
)

type SaleRepository interface {
	FindByProductID(ctx context.Context, productID uint) ([]domain.Sale, error)
}

type DispenseService struct {
	products ProductRepository
	stock    StockRepository
	sales    SaleRepository
	locker   ProductLocker
	now      func() time.Time
}

func NewDispenseService(products ProductRepository, stock StockRepository, sales SaleRepository, locker ProductLocker, now func() time.Time) *DispenseService {
	return &DispenseService{
		products: products,
		stock:    stock,
		sales:    sales,
		locker:   locker,
		now:      now,
	}
}

// Dispense sells quantity units of a product, drawing from the batches that
// expire first. Either the whole quantity is dispensed or nothing changes.
func (s *DispenseService) Dispense(ctx context.Context, productID uint, quantity int, saleType domain.SaleType) (domain.DispenseResult, error) {
	if quantity <= 0 {
		return domain.DispenseResult{}, domain.NewInvalidQuantityError(quantity)
	}
	if saleType == "" {
		saleType = domain.SaleTypeRetail
	}
	if !saleType.Valid() {
		return domain.DispenseResult{}, domain.NewValidationError("sale_type", "must be retail or wholesale", saleType)
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return domain.DispenseResult{}, fmt.Errorf("s.products.FindByID -> %w", err)
	}
	if saleType == domain.SaleTypeWholesale && quantity < product.MinOrderQuantity {
		return domain.DispenseResult{}, domain.NewValidationError("quantity",
			fmt.Sprintf("wholesale orders need at least %d units", product.MinOrderQuantity), quantity)
	}

	release, err := lockProduct(ctx, s.locker, productID)
	if err != nil {
		return domain.DispenseResult{}, err
	}
	defer release()

	unitPrice := product.UnitPrice(saleType)
	sale := domain.Sale{
		ProductID:    productID,
		Quantity:     quantity,
		SaleType:     saleType,
		UnitPrice:    unitPrice,
		TotalRevenue: domain.Revenue(unitPrice, quantity),
		CreatedAt:    s.now(),
	}

	// plan runs on the locked batch rows inside the storage transaction
	var (
		available   int
		allocations []domain.BatchAllocation
	)
	plan := func(batches []domain.StockBatch) ([]domain.SaleLine, error) {
		available = domain.TotalQuantity(batches)

		var err error
		allocations, err = domain.AllocateFEFO(productID, batches, quantity)
		if err != nil {
			return nil, err
		}

		lines := make([]domain.SaleLine, len(allocations))
		for i, a := range allocations {
			lines[i] = domain.SaleLine{BatchID: a.BatchID, Quantity: a.Quantity}
		}
		return lines, nil
	}

	committed, err := s.stock.CommitDispense(ctx, sale, plan)
	if err != nil {
		return domain.DispenseResult{}, fmt.Errorf("s.stock.CommitDispense -> %w", err)
	}

	result := domain.DispenseResult{
		SaleID:            committed.ID,
		ProductID:         productID,
		SaleType:          saleType,
		QuantityDispensed: quantity,
		UnitPrice:         unitPrice,
		TotalRevenue:      committed.TotalRevenue,
		RemainingStock:    available - quantity,
		Allocations:       allocations,
		Timestamp:         committed.CreatedAt,
	}

	zap.L().Info("dispensed",
		zap.Uint("product_id", productID),
		zap.Uint("sale_id", result.SaleID),
		zap.String("sale_type", string(saleType)),
		zap.Int("quantity", quantity),
		zap.String("revenue", result.TotalRevenue.StringFixed(domain.RevenuePrecision)),
		zap.Int("remaining", result.RemainingStock))

	return result, nil
}

func (s *DispenseService) ListSales(ctx context.Context, productID uint) ([]domain.Sale, error) {
	if _, err := s.products.FindByID(ctx, productID); err != nil {
		return nil, fmt.Errorf("s.products.FindByID -> %w", err)
	}

	sales, err := s.sales.FindByProductID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("s.sales.FindByProductID -> %w", err)
	}

	return sales, nil
}

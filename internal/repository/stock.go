package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/yizeng/gab/gin/gorm/pharmacy-ledger/internal/domain"
	"github.com/yizeng/gab/gin/gorm/pharmacy-ledger/internal/repository/dao"
)

type StockDAO interface {
	InsertBatch(ctx context.Context, batch dao.StockBatch) (dao.StockBatch, error)
	FindBatchByID(ctx context.Context, id uint) (dao.StockBatch, error)
	FindBatchesByProductID(ctx context.Context, productID uint) ([]dao.StockBatch, error)
	FindAllBatches(ctx context.Context) ([]dao.StockBatch, error)
	SumQuantityByProductID(ctx context.Context, productID uint) (int, error)
	DecrementBatch(ctx context.Context, batchID uint, amount int) (dao.StockBatch, error)
	CommitDispense(ctx context.Context, sale dao.Sale, plan dao.DispensePlanner) (dao.Sale, error)
}

type StockRepository struct {
	dao StockDAO
}

func NewStockRepository(dao StockDAO) *StockRepository {
	return &StockRepository{
		dao: dao,
	}
}

func (r *StockRepository) CreateBatch(ctx context.Context, batch domain.StockBatch) (domain.StockBatch, error) {
	created, err := r.dao.InsertBatch(ctx, r.batchDomainToDao(batch))
	if err != nil {
		if errors.Is(err, dao.ErrProductNotFound) {
			return domain.StockBatch{}, domain.NewNotFoundError("product", batch.ProductID)
		}
		return domain.StockBatch{}, fmt.Errorf("r.dao.InsertBatch -> %w", err)
	}

	return r.batchDaoToDomain(created), nil
}

func (r *StockRepository) FindBatchByID(ctx context.Context, id uint) (domain.StockBatch, error) {
	found, err := r.dao.FindBatchByID(ctx, id)
	if err != nil {
		if errors.Is(err, dao.ErrBatchNotFound) {
			return domain.StockBatch{}, domain.NewNotFoundError("batch", id)
		}
		return domain.StockBatch{}, fmt.Errorf("r.dao.FindBatchByID -> %w", err)
	}

	return r.batchDaoToDomain(found), nil
}

func (r *StockRepository) FindBatchesByProductID(ctx context.Context, productID uint) ([]domain.StockBatch, error) {
	found, err := r.dao.FindBatchesByProductID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindBatchesByProductID -> %w", err)
	}

	return r.batchesDaoToDomain(found), nil
}

func (r *StockRepository) FindAllBatches(ctx context.Context) ([]domain.StockBatch, error) {
	found, err := r.dao.FindAllBatches(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindAllBatches -> %w", err)
	}

	return r.batchesDaoToDomain(found), nil
}

func (r *StockRepository) SumQuantity(ctx context.Context, productID uint) (int, error) {
	total, err := r.dao.SumQuantityByProductID(ctx, productID)
	if err != nil {
		return 0, fmt.Errorf("r.dao.SumQuantityByProductID -> %w", err)
	}

	return total, nil
}

func (r *StockRepository) DecrementBatch(ctx context.Context, batch domain.StockBatch, amount int) (domain.StockBatch, error) {
	updated, err := r.dao.DecrementBatch(ctx, batch.ID, amount)
	if err != nil {
		return domain.StockBatch{}, r.translateLedgerErr(batch.ProductID, fmt.Errorf("r.dao.DecrementBatch -> %w", err))
	}

	return r.batchDaoToDomain(updated), nil
}

// CommitDispense locks the product's batches, asks plan for the sale lines and
// persists the sale with its batch decrements atomically. plan receives the
// locked batches in expiry order; an error from it is returned unchanged.
func (r *StockRepository) CommitDispense(
	ctx context.Context, sale domain.Sale, plan func([]domain.StockBatch) ([]domain.SaleLine, error),
) (domain.Sale, error) {
	var planErr error
	daoPlan := func(batches []dao.StockBatch) ([]dao.SaleLine, error) {
		lines, err := plan(r.batchesDaoToDomain(batches))
		if err != nil {
			planErr = err
			return nil, err
		}
		return saleLinesDomainToDao(lines), nil
	}

	committed, err := r.dao.CommitDispense(ctx, saleDomainToDao(sale), daoPlan)
	if err != nil {
		if planErr != nil && errors.Is(err, planErr) {
			return domain.Sale{}, planErr
		}
		return domain.Sale{}, r.translateLedgerErr(sale.ProductID, fmt.Errorf("r.dao.CommitDispense -> %w", err))
	}

	return saleDaoToDomain(committed), nil
}

func (r *StockRepository) translateLedgerErr(productID uint, err error) error {
	var shortage *dao.ShortageError
	var missing *dao.MissingBatchError
	switch {
	case errors.As(err, &shortage):
		return domain.NewBatchInsufficientStockError(shortage.BatchID, shortage.Requested, shortage.Available)
	case errors.Is(err, dao.ErrInsufficientStock):
		return &domain.InsufficientStockError{ProductID: productID}
	case errors.Is(err, dao.ErrLockUnavailable):
		return domain.NewConcurrencyError(productID, err)
	case errors.As(err, &missing):
		return domain.NewNotFoundError("batch", missing.BatchID)
	}
	return err
}

func (r *StockRepository) batchesDaoToDomain(batches []dao.StockBatch) []domain.StockBatch {
	domainBatches := make([]domain.StockBatch, len(batches))
	for i, b := range batches {
		domainBatches[i] = r.batchDaoToDomain(b)
	}
	return domainBatches
}

func (r *StockRepository) batchDomainToDao(b domain.StockBatch) dao.StockBatch {
	return dao.StockBatch{
		ID:          b.ID,
		ProductID:   b.ProductID,
		Quantity:    b.Quantity,
		ExpiryDate:  domain.DateOf(b.ExpiryDate),
		BatchNumber: b.BatchNumber,
		Supplier:    b.Supplier,
		ReceivedAt:  b.ReceivedAt,
	}
}

func (r *StockRepository) batchDaoToDomain(b dao.StockBatch) domain.StockBatch {
	return domain.StockBatch{
		ID:          b.ID,
		ProductID:   b.ProductID,
		Quantity:    b.Quantity,
		ExpiryDate:  domain.DateOf(b.ExpiryDate),
		BatchNumber: b.BatchNumber,
		Supplier:    b.Supplier,
		ReceivedAt:  b.ReceivedAt,
	}
}

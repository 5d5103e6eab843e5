package dao

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StockBatch struct {
	ID          uint      `gorm:"primaryKey"`
	ProductID   uint      `gorm:"not null;index:idx_stock_batches_product_expiry,priority:1"`
	Quantity    int       `gorm:"not null;check:chk_stock_batches_quantity,quantity >= 0"`
	ExpiryDate  time.Time `gorm:"type:date;not null;index:idx_stock_batches_product_expiry,priority:2"`
	BatchNumber string    `gorm:"not null"`
	Supplier    string
	ReceivedAt  time.Time `gorm:"not null"`
}

type StockDAO struct {
	db          *gorm.DB
	lockTimeout time.Duration
}

// NewStockDAO returns a DAO whose locking statements give up after lockTimeout.
func NewStockDAO(db *gorm.DB, lockTimeout time.Duration) *StockDAO {
	return &StockDAO{
		db:          db,
		lockTimeout: lockTimeout,
	}
}

func (d *StockDAO) InsertBatch(ctx context.Context, batch StockBatch) (StockBatch, error) {
	result := d.db.WithContext(ctx).Create(&batch)
	if result.Error != nil {
		return StockBatch{}, translatePgError(result.Error)
	}

	return batch, nil
}

func (d *StockDAO) FindBatchByID(ctx context.Context, id uint) (StockBatch, error) {
	var batch StockBatch

	result := d.db.WithContext(ctx).First(&batch, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return StockBatch{}, &MissingBatchError{BatchID: id}
		}

		return StockBatch{}, result.Error
	}

	return batch, nil
}

func (d *StockDAO) FindBatchesByProductID(ctx context.Context, productID uint) ([]StockBatch, error) {
	var batches []StockBatch

	result := d.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("expiry_date, id").
		Find(&batches)
	if result.Error != nil {
		return nil, result.Error
	}

	return batches, nil
}

func (d *StockDAO) FindAllBatches(ctx context.Context) ([]StockBatch, error) {
	var batches []StockBatch

	result := d.db.WithContext(ctx).Order("product_id, expiry_date, id").Find(&batches)
	if result.Error != nil {
		return nil, result.Error
	}

	return batches, nil
}

func (d *StockDAO) SumQuantityByProductID(ctx context.Context, productID uint) (int, error) {
	var total int

	result := d.db.WithContext(ctx).
		Model(&StockBatch{}).
		Where("product_id = ?", productID).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&total)
	if result.Error != nil {
		return 0, result.Error
	}

	return total, nil
}

func (d *StockDAO) DecrementBatch(ctx context.Context, batchID uint, amount int) (StockBatch, error) {
	var batch StockBatch

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := d.setLockTimeout(tx); err != nil {
			return err
		}

		result := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&batch, batchID)
		if result.Error != nil {
			if errors.Is(result.Error, gorm.ErrRecordNotFound) {
				return &MissingBatchError{BatchID: batchID}
			}
			return result.Error
		}

		if batch.Quantity < amount {
			return &ShortageError{BatchID: batch.ID, Requested: amount, Available: batch.Quantity}
		}

		batch.Quantity -= amount
		return tx.Model(&StockBatch{}).Where("id = ?", batch.ID).Update("quantity", batch.Quantity).Error
	})
	if err != nil {
		return StockBatch{}, translatePgError(err)
	}

	return batch, nil
}

// DispensePlanner picks the sale lines for a dispense. It is called with the
// product's batches in expiry order while those rows are locked.
type DispensePlanner func(batches []StockBatch) ([]SaleLine, error)

// CommitDispense plans, applies and records a sale in a single transaction.
// The product's batches are locked in id order before plan sees them, so two
// dispenses of the same product never interleave.
func (d *StockDAO) CommitDispense(ctx context.Context, sale Sale, plan DispensePlanner) (Sale, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := d.setLockTimeout(tx); err != nil {
			return err
		}

		var batches []StockBatch
		result := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("product_id = ?", sale.ProductID).
			Order("id").
			Find(&batches)
		if result.Error != nil {
			return result.Error
		}

		byID := make(map[uint]StockBatch, len(batches))
		for _, b := range batches {
			byID[b.ID] = b
		}

		planned := make([]StockBatch, len(batches))
		copy(planned, batches)
		sortBatches(planned)

		lines, err := plan(planned)
		if err != nil {
			return err
		}
		sale.Lines = lines

		for _, line := range sale.Lines {
			b, ok := byID[line.BatchID]
			if !ok {
				return &MissingBatchError{BatchID: line.BatchID}
			}
			if b.Quantity < line.Quantity {
				return &ShortageError{BatchID: b.ID, Requested: line.Quantity, Available: b.Quantity}
			}
			b.Quantity -= line.Quantity
			byID[b.ID] = b

			if err := tx.Model(&StockBatch{}).Where("id = ?", b.ID).Update("quantity", b.Quantity).Error; err != nil {
				return err
			}
		}

		return tx.Create(&sale).Error
	})
	if err != nil {
		return Sale{}, translatePgError(err)
	}

	return sale, nil
}

func (d *StockDAO) setLockTimeout(tx *gorm.DB) error {
	if d.lockTimeout <= 0 {
		return nil
	}
	// SET does not accept bind parameters.
	return tx.Exec(fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", d.lockTimeout.Milliseconds())).Error
}

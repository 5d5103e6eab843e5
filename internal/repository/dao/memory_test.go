package dao

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedMemory(t *testing.T) (*MemoryStore, Product) {
	t.Helper()

	s := NewMemoryStore()
	p, err := s.InsertProduct(context.Background(), Product{
		Name:             "Paracetamol",
		RetailPrice:      decimal.RequireFromString("1.20"),
		MinOrderQuantity: 1,
	})
	require.NoError(t, err)

	return s, p
}

func fixedPlan(lines ...SaleLine) DispensePlanner {
	return func([]StockBatch) ([]SaleLine, error) {
		return lines, nil
	}
}

// earliestFirst takes qty units from the batches in the order they are given.
func earliestFirst(qty int) DispensePlanner {
	return func(batches []StockBatch) ([]SaleLine, error) {
		var lines []SaleLine
		for _, b := range batches {
			if qty == 0 {
				break
			}
			take := min(qty, b.Quantity)
			if take == 0 {
				continue
			}
			lines = append(lines, SaleLine{BatchID: b.ID, Quantity: take})
			qty -= take
		}
		if qty > 0 {
			return nil, ErrInsufficientStock
		}
		return lines, nil
	}
}

func TestMemoryStore_InsertProductDuplicateName(t *testing.T) {
	s, _ := seedMemory(t)

	_, err := s.InsertProduct(context.Background(), Product{Name: "Paracetamol"})
	assert.ErrorIs(t, err, ErrProductNameExists)
}

func TestMemoryStore_InsertBatchUnknownProduct(t *testing.T) {
	s := NewMemoryStore()

	_, err := s.InsertBatch(context.Background(), StockBatch{ProductID: 42, Quantity: 1})
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestMemoryStore_BatchesOrderedByExpiry(t *testing.T) {
	s, p := seedMemory(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	late, err := s.InsertBatch(ctx, StockBatch{ProductID: p.ID, Quantity: 3, ExpiryDate: base.AddDate(0, 2, 0)})
	require.NoError(t, err)
	early, err := s.InsertBatch(ctx, StockBatch{ProductID: p.ID, Quantity: 4, ExpiryDate: base})
	require.NoError(t, err)

	batches, err := s.FindBatchesByProductID(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, batches, 2)
	assert.Equal(t, early.ID, batches[0].ID)
	assert.Equal(t, late.ID, batches[1].ID)

	total, err := s.SumQuantityByProductID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, total)
}

func TestMemoryStore_DecrementBatch(t *testing.T) {
	s, p := seedMemory(t)
	ctx := context.Background()

	b, err := s.InsertBatch(ctx, StockBatch{ProductID: p.ID, Quantity: 5})
	require.NoError(t, err)

	updated, err := s.DecrementBatch(ctx, b.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, 0, updated.Quantity)

	_, err = s.DecrementBatch(ctx, b.ID, 1)
	assert.ErrorIs(t, err, ErrInsufficientStock)
	var shortage *ShortageError
	require.True(t, errors.As(err, &shortage))
	assert.Equal(t, 0, shortage.Available)

	_, err = s.DecrementBatch(ctx, 999, 1)
	assert.ErrorIs(t, err, ErrBatchNotFound)

	// emptied batches stay in the ledger
	kept, err := s.FindBatchByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, kept.Quantity)
}

func TestMemoryStore_CommitDispenseIsAllOrNothing(t *testing.T) {
	s, p := seedMemory(t)
	ctx := context.Background()

	b1, err := s.InsertBatch(ctx, StockBatch{ProductID: p.ID, Quantity: 5})
	require.NoError(t, err)
	b2, err := s.InsertBatch(ctx, StockBatch{ProductID: p.ID, Quantity: 2})
	require.NoError(t, err)

	_, err = s.CommitDispense(ctx, Sale{
		ProductID: p.ID,
		Quantity:  8,
	}, fixedPlan(SaleLine{BatchID: b1.ID, Quantity: 5}, SaleLine{BatchID: b2.ID, Quantity: 3}))
	assert.ErrorIs(t, err, ErrInsufficientStock)

	total, err := s.SumQuantityByProductID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, total)

	sale, err := s.CommitDispense(ctx, Sale{
		ProductID: p.ID,
		Quantity:  6,
	}, fixedPlan(SaleLine{BatchID: b1.ID, Quantity: 5}, SaleLine{BatchID: b2.ID, Quantity: 1}))
	require.NoError(t, err)
	assert.NotZero(t, sale.ID)
	assert.Equal(t, sale.ID, sale.Lines[0].SaleID)

	total, err = s.SumQuantityByProductID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	sales, err := s.FindSalesByProductID(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, sales, 1)
}

func TestMemoryStore_CommitDispenseRejectsForeignBatch(t *testing.T) {
	s, p := seedMemory(t)
	ctx := context.Background()

	other, err := s.InsertProduct(ctx, Product{Name: "Ibuprofen"})
	require.NoError(t, err)
	b, err := s.InsertBatch(ctx, StockBatch{ProductID: other.ID, Quantity: 5})
	require.NoError(t, err)

	_, err = s.CommitDispense(ctx, Sale{ProductID: p.ID, Quantity: 1}, fixedPlan(SaleLine{BatchID: b.ID, Quantity: 1}))
	assert.ErrorIs(t, err, ErrBatchNotFound)
}

func TestMemoryStore_CommitDispensePlansOnCurrentBatches(t *testing.T) {
	s, p := seedMemory(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	late, err := s.InsertBatch(ctx, StockBatch{ProductID: p.ID, Quantity: 10, ExpiryDate: base.AddDate(0, 2, 0)})
	require.NoError(t, err)
	early, err := s.InsertBatch(ctx, StockBatch{ProductID: p.ID, Quantity: 5, ExpiryDate: base})
	require.NoError(t, err)

	var seen []uint
	_, err = s.CommitDispense(ctx, Sale{ProductID: p.ID, Quantity: 5}, func(batches []StockBatch) ([]SaleLine, error) {
		for _, b := range batches {
			seen = append(seen, b.ID)
		}
		return earliestFirst(5)(batches)
	})
	require.NoError(t, err)
	assert.Equal(t, []uint{early.ID, late.ID}, seen)

	// the early batch is empty now, so the next plan has to move on
	sale, err := s.CommitDispense(ctx, Sale{ProductID: p.ID, Quantity: 5}, earliestFirst(5))
	require.NoError(t, err)
	require.Len(t, sale.Lines, 1)
	assert.Equal(t, late.ID, sale.Lines[0].BatchID)
}

func TestMemoryStore_CommitDispensePlanErrorLeavesStock(t *testing.T) {
	s, p := seedMemory(t)
	ctx := context.Background()

	_, err := s.InsertBatch(ctx, StockBatch{ProductID: p.ID, Quantity: 3})
	require.NoError(t, err)

	_, err = s.CommitDispense(ctx, Sale{ProductID: p.ID, Quantity: 4}, earliestFirst(4))
	assert.ErrorIs(t, err, ErrInsufficientStock)

	total, err := s.SumQuantityByProductID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, total)

	sales, err := s.FindSalesByProductID(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, sales)
}

func TestMemoryStore_MissingBatchCarriesID(t *testing.T) {
	s, _ := seedMemory(t)

	_, err := s.DecrementBatch(context.Background(), 777, 1)
	assert.ErrorIs(t, err, ErrBatchNotFound)

	var missing *MissingBatchError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, uint(777), missing.BatchID)
}

func TestMemoryStore_ConcurrentDecrements(t *testing.T) {
	s, p := seedMemory(t)
	ctx := context.Background()

	b, err := s.InsertBatch(ctx, StockBatch{ProductID: p.ID, Quantity: 50})
	require.NoError(t, err)

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 80; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.DecrementBatch(ctx, b.ID, 1); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, succeeded)
	got, err := s.FindBatchByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Quantity)
}

func TestMemoryStore_CanceledContext(t *testing.T) {
	s := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.FindAllProducts(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

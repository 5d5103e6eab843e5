package domain

import (
	"sort"
	"time"
)

type StockBatch struct {
	ID          uint      `json:"id"`
	ProductID   uint      `json:"product_id"`
	Quantity    int       `json:"quantity"`
	ExpiryDate  time.Time `json:"expiry_date"`
	BatchNumber string    `json:"batch_number"`
	Supplier    string    `json:"supplier,omitempty"`
	ReceivedAt  time.Time `json:"received_at"`
}

type BatchAllocation struct {
	BatchID     uint      `json:"batch_id"`
	BatchNumber string    `json:"batch_number"`
	ExpiryDate  time.Time `json:"expiry_date"`
	Quantity    int       `json:"quantity"`
}

// DateOf returns the calendar date of t as UTC midnight.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SortFEFO orders batches earliest expiry first, ties by ID.
func SortFEFO(batches []StockBatch) {
	sort.SliceStable(batches, func(i, j int) bool {
		if !batches[i].ExpiryDate.Equal(batches[j].ExpiryDate) {
			return batches[i].ExpiryDate.Before(batches[j].ExpiryDate)
		}
		return batches[i].ID < batches[j].ID
	})
}

func TotalQuantity(batches []StockBatch) int {
	total := 0
	for _, b := range batches {
		total += b.Quantity
	}
	return total
}

// AllocateFEFO plans how quantity units are drawn from batches, consuming the
// earliest-expiring batch first. Allocation is all-or-nothing: when the
// batches cannot cover quantity an InsufficientStockError is returned and no
// plan is produced. The input slice is not modified.
func AllocateFEFO(productID uint, batches []StockBatch, quantity int) ([]BatchAllocation, error) {
	if quantity <= 0 {
		return nil, NewInvalidQuantityError(quantity)
	}

	ordered := make([]StockBatch, len(batches))
	copy(ordered, batches)
	SortFEFO(ordered)

	available := TotalQuantity(ordered)
	if available < quantity {
		return nil, NewInsufficientStockError(productID, quantity, available)
	}

	var allocations []BatchAllocation
	remaining := quantity
	for _, b := range ordered {
		if remaining == 0 {
			break
		}
		if b.Quantity <= 0 {
			continue
		}
		take := b.Quantity
		if take > remaining {
			take = remaining
		}
		allocations = append(allocations, BatchAllocation{
			BatchID:     b.ID,
			BatchNumber: b.BatchNumber,
			ExpiryDate:  b.ExpiryDate,
			Quantity:    take,
		})
		remaining -= take
	}

	return allocations, nil
}

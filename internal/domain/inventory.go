package domain

import "time"

type ClassifiedBatch struct {
	StockBatch
	DaysUntilExpiry int          `json:"days_until_expiry"`
	ExpiryStatus    ExpiryStatus `json:"expiry_status"`
}

// ProductInventory is the per-product row of the inventory overview.
type ProductInventory struct {
	Product       Product           `json:"product"`
	TotalQuantity int               `json:"total_quantity"`
	StockStatus   StockStatus       `json:"stock_status"`
	NearestExpiry *time.Time        `json:"nearest_expiry,omitempty"`
	ExpiryStatus  ExpiryStatus      `json:"expiry_status,omitempty"`
	Batches       []ClassifiedBatch `json:"batches"`
}

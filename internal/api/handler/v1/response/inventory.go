package response

import "github.com/yizeng/gab/gin/gorm/pharmacy-ledger/internal/domain"

type StockStatusResponse struct {
	ProductID         uint               `json:"product_id"`
	TotalQuantity     int                `json:"total_quantity"`
	LowStockThreshold int                `json:"low_stock_threshold"`
	Status            domain.StockStatus `json:"status"`
}

type BatchesResponse struct {
	ProductID          uint                     `json:"product_id"`
	ExpiringWindowDays int                      `json:"expiring_window_days"`
	Batches            []domain.ClassifiedBatch `json:"batches"`
}

type InventoryResponse struct {
	LowStockThreshold  int                       `json:"low_stock_threshold"`
	ExpiringWindowDays int                       `json:"expiring_window_days"`
	Products           []domain.ProductInventory `json:"products"`
}

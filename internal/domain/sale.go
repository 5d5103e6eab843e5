package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type SaleType string

const (
	SaleTypeRetail    SaleType = "retail"
	SaleTypeWholesale SaleType = "wholesale"
)

func (t SaleType) Valid() bool {
	return t == SaleTypeRetail || t == SaleTypeWholesale
}

// RevenuePrecision is the number of decimal places revenue is rounded to.
const RevenuePrecision = 2

type Sale struct {
	ID           uint            `json:"id"`
	ProductID    uint            `json:"product_id"`
	Quantity     int             `json:"quantity"`
	SaleType     SaleType        `json:"sale_type"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	Lines        []SaleLine      `json:"lines"`
	CreatedAt    time.Time       `json:"created_at"`
}

type SaleLine struct {
	BatchID  uint `json:"batch_id"`
	Quantity int  `json:"quantity"`
}

type DispenseResult struct {
	SaleID            uint              `json:"sale_id"`
	ProductID         uint              `json:"product_id"`
	SaleType          SaleType          `json:"sale_type"`
	QuantityDispensed int               `json:"quantity_dispensed"`
	UnitPrice         decimal.Decimal   `json:"unit_price"`
	TotalRevenue      decimal.Decimal   `json:"total_revenue"`
	RemainingStock    int               `json:"remaining_stock"`
	Allocations       []BatchAllocation `json:"allocations"`
	Timestamp         time.Time         `json:"timestamp"`
}

// Revenue computes quantity × unitPrice in fixed-point arithmetic.
func Revenue(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity))).Round(RevenuePrecision)
}

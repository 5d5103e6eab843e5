package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID               uint             `json:"id"`
	Name             string           `json:"name"`
	Category         string           `json:"category"`
	Description      string           `json:"description"`
	RetailPrice      decimal.Decimal  `json:"retail_price"`
	WholesalePrice   *decimal.Decimal `json:"wholesale_price,omitempty"`
	MinOrderQuantity int              `json:"min_order_quantity"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// UnitPrice returns the price applicable to the given sale type. A product
// without a wholesale price sells wholesale at its retail price.
func (p Product) UnitPrice(saleType SaleType) decimal.Decimal {
	if saleType == SaleTypeWholesale && p.WholesalePrice != nil {
		return *p.WholesalePrice
	}
	return p.RetailPrice
}

func (p Product) Validate() error {
	if p.Name == "" {
		return NewValidationError("name", "cannot be empty", p.Name)
	}
	if err := validatePrice("retail_price", p.RetailPrice); err != nil {
		return err
	}
	if p.WholesalePrice != nil {
		if err := validatePrice("wholesale_price", *p.WholesalePrice); err != nil {
			return err
		}
	}
	if p.MinOrderQuantity < 1 {
		return NewValidationError("min_order_quantity", "must be a positive integer", p.MinOrderQuantity)
	}
	return nil
}

func validatePrice(field string, price decimal.Decimal) error {
	if price.IsNegative() {
		return NewValidationError(field, "must be non-negative", price)
	}
	if !price.Equal(price.Round(RevenuePrecision)) {
		return NewValidationError(field, "must have at most 2 decimal places", price)
	}
	return nil
}

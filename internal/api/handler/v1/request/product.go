package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/shopspring/decimal"
)

type CreateProductRequest struct {
	Name             string           `json:"name"`
	Category         string           `json:"category"`
	Description      string           `json:"description"`
	RetailPrice      decimal.Decimal  `json:"retail_price" swaggertype:"string" example:"1.20"`
	WholesalePrice   *decimal.Decimal `json:"wholesale_price,omitempty" swaggertype:"string" example:"0.95"`
	MinOrderQuantity int              `json:"min_order_quantity"`
}

func (req *CreateProductRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&req.Category, validation.Length(0, 50)),
		validation.Field(&req.Description, validation.Length(0, 500)),
		validation.Field(&req.MinOrderQuantity, validation.Min(0)),
	)
}

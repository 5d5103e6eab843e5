package request

import (
	"encoding/json"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/yizeng/gab/gin/gorm/pharmacy-ledger/internal/domain"
)

type DispenseRequest struct {
	InventoryID uint            `json:"inventory_id"`
	Quantity    json.RawMessage `json:"quantity" swaggertype:"integer" example:"2"`
	SaleType    domain.SaleType `json:"sale_type,omitempty" enums:"retail,wholesale"`
}

func (req *DispenseRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.InventoryID, validation.Required),
		validation.Field(&req.SaleType, validation.In(domain.SaleTypeRetail, domain.SaleTypeWholesale)),
	)
}

package request

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dlclark/regexp2"
	validation "github.com/go-ozzo/ozzo-validation"
)

const (
	ExpiryDateLayout = "2006-01-02"

	// any printable characters except whitespace
	batchNumberRegexPattern = `^[^\s\p{Cc}]+$`
	batchNumberMaxLength    = 64
)

var (
	batchNumberExp = regexp2.MustCompile(batchNumberRegexPattern, regexp2.None)

	errInvalidBatchNumber = errors.New("must not contain whitespace or control characters")
)

type AddStockRequest struct {
	ProductID   uint            `json:"product_id"`
	Quantity    json.RawMessage `json:"quantity" swaggertype:"integer" example:"50"`
	ExpiryDate  string          `json:"expiry_date" example:"2027-06-30"`
	BatchNumber string          `json:"batch_number" example:"PCM-2406"`
	Supplier    string          `json:"supplier"`
}

func (req *AddStockRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.ProductID, validation.Required),
		validation.Field(&req.ExpiryDate, validation.Required, validation.Date(ExpiryDateLayout)),
		validation.Field(&req.BatchNumber,
			validation.Required,
			validation.Length(1, batchNumberMaxLength),
			validation.By(matchBatchNumber),
		),
		validation.Field(&req.Supplier, validation.Length(0, 100)),
	)
}

// ParseExpiryDate must be called after Validate.
func (req *AddStockRequest) ParseExpiryDate() (time.Time, error) {
	t, err := time.Parse(ExpiryDateLayout, req.ExpiryDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid expiry_date: %w", err)
	}
	return t, nil
}

func matchBatchNumber(value interface{}) error {
	s, _ := value.(string)
	ok, err := batchNumberExp.MatchString(s)
	if err != nil {
		return err
	}
	if !ok {
		return errInvalidBatchNumber
	}
	return nil
}

package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestProductUnitPrice(t *testing.T) {
	wholesale := decimal.RequireFromString("0.85")
	p := Product{RetailPrice: decimal.RequireFromString("1.20"), WholesalePrice: &wholesale}

	assert.True(t, p.UnitPrice(SaleTypeRetail).Equal(decimal.RequireFromString("1.20")))
	assert.True(t, p.UnitPrice(SaleTypeWholesale).Equal(wholesale))

	p.WholesalePrice = nil
	assert.True(t, p.UnitPrice(SaleTypeWholesale).Equal(decimal.RequireFromString("1.20")))
}

func TestProductValidate(t *testing.T) {
	negative := decimal.NewFromInt(-1)

	cases := []struct {
		name    string
		product Product
		wantErr bool
	}{
		{"empty name", Product{RetailPrice: decimal.NewFromInt(1), MinOrderQuantity: 1}, true},
		{"negative retail", Product{Name: "A", RetailPrice: negative, MinOrderQuantity: 1}, true},
		{"negative wholesale", Product{Name: "A", RetailPrice: decimal.NewFromInt(1), WholesalePrice: &negative, MinOrderQuantity: 1}, true},
		{"sub-cent price", Product{Name: "A", RetailPrice: decimal.RequireFromString("1.005"), MinOrderQuantity: 1}, true},
		{"zero min order", Product{Name: "A", RetailPrice: decimal.NewFromInt(1)}, true},
		{"valid", Product{Name: "A", RetailPrice: decimal.Zero, MinOrderQuantity: 1}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.product.Validate()
			if tc.wantErr {
				assert.True(t, IsValidationError(err))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestRevenueIsExact(t *testing.T) {
	price := decimal.RequireFromString("0.10")
	total := decimal.Zero
	for i := 0; i < 1000; i++ {
		total = total.Add(Revenue(price, 3))
	}
	assert.Equal(t, "300.00", total.StringFixed(RevenuePrecision))
	assert.Equal(t, "3.57", Revenue(decimal.RequireFromString("1.19"), 3).StringFixed(2))
}

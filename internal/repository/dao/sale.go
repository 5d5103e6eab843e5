package dao

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Sale struct {
	ID           uint            `gorm:"primaryKey"`
	ProductID    uint            `gorm:"not null;index"`
	Quantity     int             `gorm:"not null"`
	SaleType     string          `gorm:"not null"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalRevenue decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Lines        []SaleLine      `gorm:"foreignKey:SaleID"`
	CreatedAt    time.Time       `gorm:"not null"`
}

type SaleLine struct {
	ID       uint `gorm:"primaryKey"`
	SaleID   uint `gorm:"not null;index"`
	BatchID  uint `gorm:"not null;index"`
	Quantity int  `gorm:"not null"`
}

type SaleDAO struct {
	db *gorm.DB
}

func NewSaleDAO(db *gorm.DB) *SaleDAO {
	return &SaleDAO{
		db: db,
	}
}

func (d *SaleDAO) FindSalesByProductID(ctx context.Context, productID uint) ([]Sale, error) {
	var sales []Sale

	result := d.db.WithContext(ctx).
		Preload("Lines").
		Where("product_id = ?", productID).
		Order("created_at DESC, id DESC").
		Find(&sales)
	if result.Error != nil {
		return nil, result.Error
	}

	return sales, nil
}

package dao

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Product struct {
	ID               uint                `gorm:"primaryKey"`
	Name             string              `gorm:"uniqueIndex:idx_products_name;not null"`
	Category         string              `gorm:"index"`
	Description      string
	RetailPrice      decimal.Decimal     `gorm:"type:decimal(12,2);not null"`
	WholesalePrice   decimal.NullDecimal `gorm:"type:decimal(12,2)"`
	MinOrderQuantity int                 `gorm:"not null;default:1"`
	Batches          []StockBatch        `gorm:"foreignKey:ProductID"`
	Sales            []Sale              `gorm:"foreignKey:ProductID"`
	CreatedAt        time.Time           `gorm:"not null"`
	UpdatedAt        time.Time           `gorm:"not null"`
}

type ProductDAO struct {
	db *gorm.DB
}

func NewProductDAO(db *gorm.DB) *ProductDAO {
	return &ProductDAO{
		db: db,
	}
}

func (d *ProductDAO) InsertProduct(ctx context.Context, product Product) (Product, error) {
	result := d.db.WithContext(ctx).Create(&product)
	if result.Error != nil {
		return Product{}, translatePgError(result.Error)
	}

	return product, nil
}

func (d *ProductDAO) FindProductByID(ctx context.Context, id uint) (Product, error) {
	var product Product

	result := d.db.WithContext(ctx).First(&product, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Product{}, ErrProductNotFound
		}

		return Product{}, result.Error
	}

	return product, nil
}

func (d *ProductDAO) FindAllProducts(ctx context.Context) ([]Product, error) {
	var products []Product

	result := d.db.WithContext(ctx).Order("id").Find(&products)
	if result.Error != nil {
		return nil, result.Error
	}

	return products, nil
}

package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/yizeng/gab/gin/gorm/pharmacy-ledger/internal/domain"
	"github.com/yizeng/gab/gin/gorm/pharmacy-ledger/internal/repository/dao"
)

var (
	ErrProductNameExists = dao.ErrProductNameExists
)

type ProductDAO interface {
	InsertProduct(ctx context.Context, product dao.Product) (dao.Product, error)
	FindProductByID(ctx context.Context, id uint) (dao.Product, error)
	FindAllProducts(ctx context.Context) ([]dao.Product, error)
}

type ProductRepository struct {
	dao ProductDAO
}

func NewProductRepository(dao ProductDAO) *ProductRepository {
	return &ProductRepository{
		dao: dao,
	}
}

func (r *ProductRepository) Create(ctx context.Context, product domain.Product) (domain.Product, error) {
	created, err := r.dao.InsertProduct(ctx, r.domainToDao(product))
	if err != nil {
		return domain.Product{}, fmt.Errorf("r.dao.InsertProduct -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id uint) (domain.Product, error) {
	found, err := r.dao.FindProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, dao.ErrProductNotFound) {
			return domain.Product{}, domain.NewNotFoundError("product", id)
		}
		return domain.Product{}, fmt.Errorf("r.dao.FindProductByID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *ProductRepository) FindAll(ctx context.Context) ([]domain.Product, error) {
	found, err := r.dao.FindAllProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindAllProducts -> %w", err)
	}

	products := make([]domain.Product, len(found))
	for i, p := range found {
		products[i] = r.daoToDomain(p)
	}

	return products, nil
}

func (r *ProductRepository) domainToDao(p domain.Product) dao.Product {
	var wholesale decimal.NullDecimal
	if p.WholesalePrice != nil {
		wholesale = decimal.NewNullDecimal(*p.WholesalePrice)
	}

	return dao.Product{
		ID:               p.ID,
		Name:             p.Name,
		Category:         p.Category,
		Description:      p.Description,
		RetailPrice:      p.RetailPrice,
		WholesalePrice:   wholesale,
		MinOrderQuantity: p.MinOrderQuantity,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

func (r *ProductRepository) daoToDomain(p dao.Product) domain.Product {
	product := domain.Product{
		ID:               p.ID,
		Name:             p.Name,
		Category:         p.Category,
		Description:      p.Description,
		RetailPrice:      p.RetailPrice,
		MinOrderQuantity: p.MinOrderQuantity,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}

	if p.WholesalePrice.Valid {
		wholesale := p.WholesalePrice.Decimal
		product.WholesalePrice = &wholesale
	}

	return product
}

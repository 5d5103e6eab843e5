package repository

import (
	"context"
	"fmt"

	"github.com/yizeng/gab/gin/gorm/pharmacy-ledger/internal/domain"
	"github.com/yizeng/gab/gin/gorm/pharmacy-ledger/internal/repository/dao"
)

type SaleDAO interface {
	FindSalesByProductID(ctx context.Context, productID uint) ([]dao.Sale, error)
}

type SaleRepository struct {
	dao SaleDAO
}

func NewSaleRepository(dao SaleDAO) *SaleRepository {
	return &SaleRepository{
		dao: dao,
	}
}

func (r *SaleRepository) FindByProductID(ctx context.Context, productID uint) ([]domain.Sale, error) {
	found, err := r.dao.FindSalesByProductID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindSalesByProductID -> %w", err)
	}

	sales := make([]domain.Sale, len(found))
	for i, s := range found {
		sales[i] = saleDaoToDomain(s)
	}

	return sales, nil
}

func saleLinesDomainToDao(lines []domain.SaleLine) []dao.SaleLine {
	daoLines := make([]dao.SaleLine, len(lines))
	for i, l := range lines {
		daoLines[i] = dao.SaleLine{
			BatchID:  l.BatchID,
			Quantity: l.Quantity,
		}
	}
	return daoLines
}

func saleDomainToDao(s domain.Sale) dao.Sale {
	return dao.Sale{
		ID:           s.ID,
		ProductID:    s.ProductID,
		Quantity:     s.Quantity,
		SaleType:     string(s.SaleType),
		UnitPrice:    s.UnitPrice,
		TotalRevenue: s.TotalRevenue,
		Lines:        saleLinesDomainToDao(s.Lines),
		CreatedAt:    s.CreatedAt,
	}
}

func saleDaoToDomain(s dao.Sale) domain.Sale {
	lines := make([]domain.SaleLine, len(s.Lines))
	for i, l := range s.Lines {
		lines[i] = domain.SaleLine{
			BatchID:  l.BatchID,
			Quantity: l.Quantity,
		}
	}

	return domain.Sale{
		ID:           s.ID,
		ProductID:    s.ProductID,
		Quantity:     s.Quantity,
		SaleType:     domain.SaleType(s.SaleType),
		UnitPrice:    s.UnitPrice,
		TotalRevenue: s.TotalRevenue,
		Lines:        lines,
		CreatedAt:    s.CreatedAt,
	}
}

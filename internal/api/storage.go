package api

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/yizeng/gab/gin/gorm/pharmacy-ledger/internal/repository"
	"github.com/yizeng/gab/gin/gorm/pharmacy-ledger/internal/repository/dao"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

var errNoDatabase = errors.New("postgres storage needs a database connection")

// Storage bundles the DAOs of one backend.
type Storage struct {
	Products repository.ProductDAO
	Stock    repository.StockDAO
	Sales    repository.SaleDAO
}

// NewStorage builds the storage for driver. db is only used by the postgres
// driver and may be nil otherwise.
func NewStorage(driver string, db *gorm.DB, lockTimeout time.Duration) (Storage, error) {
	switch driver {
	case StorageMemory:
		store := dao.NewMemoryStore()
		return Storage{Products: store, Stock: store, Sales: store}, nil
	case StoragePostgres, "":
		if db == nil {
			return Storage{}, errNoDatabase
		}
		return Storage{
			Products: dao.NewProductDAO(db),
			Stock:    dao.NewStockDAO(db, lockTimeout),
			Sales:    dao.NewSaleDAO(db),
		}, nil
	default:
		return Storage{}, fmt.Errorf("unknown storage driver: %s", driver)
	}
}

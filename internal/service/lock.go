package service

import (
	"context"
	"errors"

	"github.com/yizeng/gab/gin/gorm/pharmacy-ledger/internal/domain"
	"github.com/yizeng/gab/gin/gorm/pharmacy-ledger/internal/pkg/keylock"
)

// ProductLocker serializes ledger mutations of one product.
type ProductLocker interface {
	Acquire(ctx context.Context, key uint) (func(), error)
}

func lockProduct(ctx context.Context, locker ProductLocker, productID uint) (func(), error) {
	release, err := locker.Acquire(ctx, productID)
	if err != nil {
		if errors.Is(err, keylock.ErrTimeout) {
			return nil, domain.NewConcurrencyError(productID, err)
		}
		return nil, err
	}
	return release, nil
}

package api

import (
	"strconv"

	"github.com/yizeng/gab/gin/gorm/pharmacy-ledger/internal/service"
)

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func serviceThresholds(lowStock, windowDays int) service.Thresholds {
	return service.Thresholds{LowStockThreshold: lowStock, ExpiringWindowDays: windowDays}
}

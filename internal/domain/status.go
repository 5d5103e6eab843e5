package domain

import "time"

type StockStatus string

const (
	StockOK  StockStatus = "ok"
	StockLow StockStatus = "low"
	StockOut StockStatus = "out"
)

type ExpiryStatus string

const (
	ExpiryGood         ExpiryStatus = "good"
	ExpiryExpiringSoon ExpiryStatus = "expiring_soon"
	ExpiryExpired      ExpiryStatus = "expired"
)

const (
	DefaultLowStockThreshold  = 10
	DefaultExpiringWindowDays = 30
)

// severity orders expiry statuses so the worst one of a product can be picked.
func (s ExpiryStatus) severity() int {
	switch s {
	case ExpiryExpired:
		return 2
	case ExpiryExpiringSoon:
		return 1
	default:
		return 0
	}
}

// Worse reports whether s is more severe than other.
func (s ExpiryStatus) Worse(other ExpiryStatus) bool {
	return s.severity() > other.severity()
}

func ClassifyStock(total, lowStockThreshold int) (StockStatus, error) {
	if lowStockThreshold <= 0 {
		return "", NewConfigurationError("low_stock_threshold", lowStockThreshold)
	}

	switch {
	case total <= 0:
		return StockOut, nil
	case total <= lowStockThreshold:
		return StockLow, nil
	default:
		return StockOK, nil
	}
}

// DaysUntil counts whole calendar days from asOf to expiry. Negative values
// mean the expiry date has passed.
func DaysUntil(expiry, asOf time.Time) int {
	return int(DateOf(expiry).Sub(DateOf(asOf)).Hours() / 24)
}

func ClassifyExpiry(expiry, asOf time.Time, windowDays int) (ExpiryStatus, error) {
	if windowDays <= 0 {
		return "", NewConfigurationError("expiring_window_days", windowDays)
	}

	days := DaysUntil(expiry, asOf)
	switch {
	case days < 0:
		return ExpiryExpired, nil
	case days <= windowDays:
		return ExpiryExpiringSoon, nil
	default:
		return ExpiryGood, nil
	}
}

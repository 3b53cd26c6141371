package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Service услуга салона
type Service struct {
	ID              int64
	Name            string
	Price           decimal.Decimal
	DurationMinutes int
}

// Duration длительность услуги
func (s *Service) Duration() time.Duration {
	return time.Duration(s.DurationMinutes) * time.Minute
}

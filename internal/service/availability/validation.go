package availability

import "time"

// validateStart проверяет, что время начала задано, не в прошлом и не дальше горизонта.
// Горизонт считается через AddDate: переполнение месяца нормализуется календарем
// (31 января + 3 месяца = 1 мая). Граница включительная.
func (r *Resolver) validateStart(start, now time.Time) error {
	if start.IsZero() {
		return ErrInvalidStartTime
	}
	if start.Before(now) {
		return ErrStartTimeInPast
	}
	if start.After(r.Horizon(now)) {
		return ErrBeyondBookingHorizon
	}
	return nil
}

// Horizon последний допустимый момент начала записи
func (r *Resolver) Horizon(now time.Time) time.Time {
	return now.In(r.location).AddDate(0, r.horizonMonths, 0)
}

package types

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"time"
)

const (
	timeLayout    = "15:04"
	minutesPerDay = 24 * 60
)

var (
	// ErrInvalidTimeFormat возвращается, когда строка не соответствует формату HH:MM
	ErrInvalidTimeFormat = errors.New("types: invalid time format, expected HH:MM")

	// ErrTimeOverflow возвращается, когда результат выходит за пределы суток
	ErrTimeOverflow = errors.New("types: time is out of day bounds")
)

// TimeString время суток в формате HH:MM (без даты и часового пояса)
type TimeString string

// NewTimeString создает TimeString из time.Time (берется время суток в локации t)
func NewTimeString(t time.Time) TimeString {
	return TimeString(t.Format(timeLayout))
}

// NewTimeStringFromString создает TimeString из строки с валидацией
func NewTimeStringFromString(s string) (TimeString, error) {
	ts := TimeString(s)
	if err := ts.Validate(); err != nil {
		return "", err
	}
	return ts, nil
}

// Validate проверяет формат HH:MM
func (t TimeString) Validate() error {
	if len(t) != len(timeLayout) {
		return fmt.Errorf("%w: %q", ErrInvalidTimeFormat, string(t))
	}
	if _, err := time.Parse(timeLayout, string(t)); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidTimeFormat, string(t))
	}
	return nil
}

// IsZero возвращает true для пустого значения
func (t TimeString) IsZero() bool {
	return t == ""
}

// String реализует fmt.Stringer
func (t TimeString) String() string {
	return string(t)
}

// Minutes возвращает количество минут с полуночи.
// Для невалидного значения возвращает -1.
func (t TimeString) Minutes() int {
	parsed, err := time.Parse(timeLayout, string(t))
	if err != nil {
		return -1
	}
	return parsed.Hour()*60 + parsed.Minute()
}

// AddMinutes прибавляет минуты, результат должен оставаться в пределах суток
func (t TimeString) AddMinutes(minutes int) (TimeString, error) {
	if err := t.Validate(); err != nil {
		return "", err
	}
	total := t.Minutes() + minutes
	if total < 0 || total >= minutesPerDay {
		return "", fmt.Errorf("%w: %s%+d min", ErrTimeOverflow, t, minutes)
	}
	return TimeString(fmt.Sprintf("%02d:%02d", total/60, total%60)), nil
}

// IsBefore сравнивает время суток
func (t TimeString) IsBefore(other TimeString) bool {
	return t.Minutes() < other.Minutes()
}

// IsAfter сравнивает время суток
func (t TimeString) IsAfter(other TimeString) bool {
	return t.Minutes() > other.Minutes()
}

// Equal сравнивает время суток
func (t TimeString) Equal(other TimeString) bool {
	return t.Minutes() == other.Minutes()
}

// Scan реализует sql.Scanner.
// PostgreSQL TIME возвращается как "HH:MM:SS", секунды отбрасываются.
func (t *TimeString) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*t = ""
		return nil
	case time.Time:
		*t = NewTimeString(v)
		return nil
	case []byte:
		return t.scanString(string(v))
	case string:
		return t.scanString(v)
	default:
		return fmt.Errorf("%w: unsupported type %T", ErrInvalidTimeFormat, src)
	}
}

func (t *TimeString) scanString(s string) error {
	if len(s) > len(timeLayout) {
		s = s[:len(timeLayout)]
	}
	ts, err := NewTimeStringFromString(s)
	if err != nil {
		return err
	}
	*t = ts
	return nil
}

// Value реализует driver.Valuer
func (t TimeString) Value() (driver.Value, error) {
	if t.IsZero() {
		return nil, nil
	}
	return string(t), nil
}

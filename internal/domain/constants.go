package domain

import "github.com/m04kA/SMC-SalonBookingService/pkg/types"

// Значения по умолчанию
const (
	DefaultShopOpenTime  types.TimeString = "09:00"
	DefaultShopCloseTime types.TimeString = "21:00"

	DefaultShiftStart types.TimeString = "09:00"
	DefaultShiftEnd   types.TimeString = "21:00"

	DefaultBookingHorizonMonths   = 3
	DefaultDailyCancellationLimit = 2
)

// Правила отмены
const (
	MinCancellationNoticeHours = 2
	FullRefundNoticeHours      = 24
	PartialRefundPercent       = 80
)

// Ограничения входных данных
const (
	MaxCancellationReasonLength = 500
	MaxSettingKeyLength         = 100
	MaxSettingValueLength       = 1000
)

// Форматы времени
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// ActiveStatuses статусы, занимающие время мастера
var ActiveStatuses = []AppointmentStatus{
	StatusPending,
	StatusConfirmed,
	StatusCompleted,
}

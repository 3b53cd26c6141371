package domain

import "github.com/m04kA/SMC-SalonBookingService/pkg/types"

// Ключи настроек салона
const (
	SettingShopOpenTime  = "shopOpenTime"
	SettingShopCloseTime = "shopCloseTime"
)

// Setting пара ключ/значение
type Setting struct {
	Key   string
	Value string
}

// ShopHours часы работы салона
type ShopHours struct {
	Open  types.TimeString
	Close types.TimeString
}

// DefaultShopHours часы работы, если настройки не заданы
func DefaultShopHours() ShopHours {
	return ShopHours{
		Open:  DefaultShopOpenTime,
		Close: DefaultShopCloseTime,
	}
}

// IsTimeSetting возвращает true для настроек, значение которых должно быть HH:MM
func IsTimeSetting(key string) bool {
	return key == SettingShopOpenTime || key == SettingShopCloseTime
}

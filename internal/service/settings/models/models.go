package models

import "github.com/m04kA/SMC-SalonBookingService/internal/domain"

// UpdateSettingRequest запрос на изменение настройки
type UpdateSettingRequest struct {
	Actor domain.Actor
	Key   string
	Value string
}

// SettingsResponse все настройки салона
type SettingsResponse struct {
	Settings map[string]string `json:"settings"`
}

// SettingResponse одна настройка
type SettingResponse struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

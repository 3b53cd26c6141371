package settings

import (
	"context"
	"fmt"
	"strings"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
	"github.com/m04kA/SMC-SalonBookingService/internal/service/settings/models"
	"github.com/m04kA/SMC-SalonBookingService/pkg/types"
)

// Service сервис настроек салона
type Service struct {
	settingsRepo SettingsRepository
	logger       Logger
}

// NewService создает новый экземпляр сервиса настроек
func NewService(settingsRepo SettingsRepository, logger Logger) *Service {
	return &Service{
		settingsRepo: settingsRepo,
		logger:       logger,
	}
}

// GetAll возвращает все настройки. Часы работы заполняются значениями по умолчанию,
// если не заданы. Доступно без аутентификации.
func (s *Service) GetAll(ctx context.Context) (*models.SettingsResponse, error) {
	all, err := s.settingsRepo.GetAll(ctx)
	if err != nil {
		s.logger.Error("GetAll: repository error: %v", err)
		return nil, fmt.Errorf("%w: GetAll - repository error: %v", ErrInternal, err)
	}

	if _, ok := all[domain.SettingShopOpenTime]; !ok {
		all[domain.SettingShopOpenTime] = domain.DefaultShopOpenTime.String()
	}
	if _, ok := all[domain.SettingShopCloseTime]; !ok {
		all[domain.SettingShopCloseTime] = domain.DefaultShopCloseTime.String()
	}

	return &models.SettingsResponse{Settings: all}, nil
}

// GetShopHours возвращает часы работы салона.
// Отсутствующие или поврежденные значения заменяются значениями по умолчанию.
func (s *Service) GetShopHours(ctx context.Context) (domain.ShopHours, error) {
	values, err := s.settingsRepo.GetMany(ctx, domain.SettingShopOpenTime, domain.SettingShopCloseTime)
	if err != nil {
		s.logger.Error("GetShopHours: repository error: %v", err)
		return domain.ShopHours{}, fmt.Errorf("%w: GetShopHours - repository error: %v", ErrInternal, err)
	}

	hours := domain.DefaultShopHours()
	if v, ok := values[domain.SettingShopOpenTime]; ok {
		hours.Open = s.parseTimeOrDefault(domain.SettingShopOpenTime, v, hours.Open)
	}
	if v, ok := values[domain.SettingShopCloseTime]; ok {
		hours.Close = s.parseTimeOrDefault(domain.SettingShopCloseTime, v, hours.Close)
	}

	return hours, nil
}

func (s *Service) parseTimeOrDefault(key, value string, fallback types.TimeString) types.TimeString {
	ts, err := types.NewTimeStringFromString(strings.TrimSpace(value))
	if err != nil {
		s.logger.Warn("GetShopHours: setting %s=%q is not HH:MM, using %s", key, value, fallback)
		return fallback
	}
	return ts
}

// Update создает или обновляет настройку. Доступно только администратору.
func (s *Service) Update(ctx context.Context, req *models.UpdateSettingRequest) (*models.SettingResponse, error) {
	s.logger.Info("Update: setting %s by user=%d", req.Key, req.Actor.ID)

	if !req.Actor.IsAdmin() {
		s.logger.Warn("Update: user=%d with role=%s is not admin", req.Actor.ID, req.Actor.Role)
		return nil, ErrAccessDenied
	}

	setting, err := validateSetting(req.Key, req.Value)
	if err != nil {
		s.logger.Warn("Update: validation failed: %v", err)
		return nil, err
	}

	if err := s.settingsRepo.Upsert(ctx, setting); err != nil {
		s.logger.Error("Update: repository error for key=%s: %v", setting.Key, err)
		return nil, fmt.Errorf("%w: Update - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Update: setting %s=%s saved", setting.Key, setting.Value)
	return &models.SettingResponse{Key: setting.Key, Value: setting.Value}, nil
}

// validateSetting проверяет ключ и значение; для часов работы требуется HH:MM
func validateSetting(key, value string) (*domain.Setting, error) {
	key = strings.TrimSpace(key)
	value = strings.TrimSpace(value)

	if key == "" || len(key) > domain.MaxSettingKeyLength {
		return nil, fmt.Errorf("%w: key must be 1-%d characters", ErrInvalidInput, domain.MaxSettingKeyLength)
	}
	if len(value) > domain.MaxSettingValueLength {
		return nil, fmt.Errorf("%w: value is longer than %d characters", ErrInvalidInput, domain.MaxSettingValueLength)
	}
	if domain.IsTimeSetting(key) {
		if _, err := types.NewTimeStringFromString(value); err != nil {
			return nil, fmt.Errorf("%w: %s must be HH:MM", ErrInvalidInput, key)
		}
	}

	return &domain.Setting{Key: key, Value: value}, nil
}

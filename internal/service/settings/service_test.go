package settings

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
	"github.com/m04kA/SMC-SalonBookingService/internal/service/settings/models"
	"github.com/m04kA/SMC-SalonBookingService/pkg/logger"
	"github.com/m04kA/SMC-SalonBookingService/pkg/types"
)

type memorySettings struct {
	values map[string]string
	err    error
}

func (m *memorySettings) GetAll(context.Context) (map[string]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make(map[string]string, len(m.values))
	for k, v := range m.values {
		out[k] = v
	}
	return out, nil
}

func (m *memorySettings) GetMany(_ context.Context, keys ...string) (map[string]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make(map[string]string)
	for _, k := range keys {
		if v, ok := m.values[k]; ok {
			out[k] = v
		}
	}
	return out, nil
}

func (m *memorySettings) Upsert(_ context.Context, s *domain.Setting) error {
	if m.err != nil {
		return m.err
	}
	m.values[s.Key] = s.Value
	return nil
}

var admin = domain.Actor{ID: 1, Role: domain.RoleAdmin}

func TestGetShopHours_Defaults(t *testing.T) {
	svc := NewService(&memorySettings{values: map[string]string{}}, logger.NewNop())

	hours, err := svc.GetShopHours(context.Background())
	require.NoError(t, err)
	assert.Equal(t, types.TimeString("09:00"), hours.Open)
	assert.Equal(t, types.TimeString("21:00"), hours.Close)
}

func TestGetShopHours_StoredAndCorrupted(t *testing.T) {
	repo := &memorySettings{values: map[string]string{
		domain.SettingShopOpenTime:  "10:00",
		domain.SettingShopCloseTime: "late",
	}}
	svc := NewService(repo, logger.NewNop())

	hours, err := svc.GetShopHours(context.Background())
	require.NoError(t, err)
	assert.Equal(t, types.TimeString("10:00"), hours.Open)
	assert.Equal(t, types.TimeString("21:00"), hours.Close)
}

func TestGetShopHours_RepositoryError(t *testing.T) {
	svc := NewService(&memorySettings{err: errors.New("db down")}, logger.NewNop())

	_, err := svc.GetShopHours(context.Background())
	assert.ErrorIs(t, err, ErrInternal)
}

func TestGetAll_FillsDefaults(t *testing.T) {
	svc := NewService(&memorySettings{values: map[string]string{"currency": "USD"}}, logger.NewNop())

	resp, err := svc.GetAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"currency":                  "USD",
		domain.SettingShopOpenTime:  "09:00",
		domain.SettingShopCloseTime: "21:00",
	}, resp.Settings)
}

func TestUpdate(t *testing.T) {
	tests := []struct {
		name    string
		actor   domain.Actor
		key     string
		value   string
		wantErr error
	}{
		{name: "admin sets open time", actor: admin, key: domain.SettingShopOpenTime, value: "08:30"},
		{name: "admin sets free key", actor: admin, key: "salonName", value: "Bella"},
		{name: "worker forbidden", actor: domain.Actor{ID: 2, Role: domain.RoleWorker}, key: "salonName", value: "x", wantErr: domain.ErrForbidden},
		{name: "customer forbidden", actor: domain.Actor{ID: 3, Role: domain.RoleCustomer}, key: "salonName", value: "x", wantErr: ErrAccessDenied},
		{name: "bad time", actor: admin, key: domain.SettingShopCloseTime, value: "9pm", wantErr: domain.ErrValidation},
		{name: "empty key", actor: admin, key: "  ", value: "x", wantErr: ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &memorySettings{values: map[string]string{}}
			svc := NewService(repo, logger.NewNop())

			resp, err := svc.Update(context.Background(), &models.UpdateSettingRequest{Actor: tt.actor, Key: tt.key, Value: tt.value})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, repo.values)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.value, resp.Value)
			assert.Equal(t, tt.value, repo.values[tt.key])
		})
	}
}

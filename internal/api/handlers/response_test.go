package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: bad", domain.ErrValidation), http.StatusBadRequest},
		{fmt.Errorf("%w: appointment", domain.ErrNotFound), http.StatusNotFound},
		{domain.ErrForbidden, http.StatusForbidden},
		{fmt.Errorf("availability: %w", domain.ErrOutsideBusinessHours), http.StatusConflict},
		{domain.ErrNoQualifiedStaff, http.StatusConflict},
		{domain.ErrNoStaffAvailable, http.StatusConflict},
		{domain.ErrAlreadyCancelled, http.StatusConflict},
		{domain.ErrDailyCancellationLimitExceeded, http.StatusConflict},
		{domain.ErrTooLateToCancel, http.StatusConflict},
		{domain.ErrInvalidTransition, http.StatusConflict},
		{domain.ErrRefundProcessingFailed, http.StatusBadGateway},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFor(tt.err))
		})
	}
}

func TestRespondError(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondNotFound(rec, "запись не найдена")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, ErrorResponse{Code: 404, Message: "запись не найдена"}, body)
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		ServiceID int64 `json:"serviceId"`
	}

	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{name: "valid", body: `{"serviceId": 3}`},
		{name: "unknown field", body: `{"serviceId": 3, "extra": 1}`, wantErr: true},
		{name: "two objects", body: `{"serviceId": 3}{"serviceId": 4}`, wantErr: true},
		{name: "broken", body: `{"serviceId":`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			r.Header.Set("Content-Type", "application/json")

			var dst payload
			err := DecodeJSON(r, &dst)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, int64(3), dst.ServiceID)
		})
	}
}

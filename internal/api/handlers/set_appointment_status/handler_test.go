package set_appointment_status

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/m04kA/SMC-SalonBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
	"github.com/m04kA/SMC-SalonBookingService/internal/service/appointments"
	"github.com/m04kA/SMC-SalonBookingService/internal/service/appointments/models"
	"github.com/m04kA/SMC-SalonBookingService/pkg/logger"
)

type mockService struct {
	mock.Mock
}

func (m *mockService) SetStatus(ctx context.Context, req *models.SetStatusRequest) (*models.AppointmentResponse, error) {
	args := m.Called(req)
	resp, _ := args.Get(0).(*models.AppointmentResponse)
	return resp, args.Error(1)
}

func serve(svc *mockService, body string) *httptest.ResponseRecorder {
	r := mux.NewRouter()
	r.HandleFunc("/api/v1/appointments/{appointmentId}/status", NewHandler(svc, logger.NewNop()).Handle)

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/appointments/3/status", strings.NewReader(body))
	req = req.WithContext(middleware.WithActor(req.Context(), domain.Actor{ID: 1, Role: domain.RoleAdmin}))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHandle_Reassign(t *testing.T) {
	staffID := int64(12)
	svc := &mockService{}
	svc.On("SetStatus", mock.MatchedBy(func(r *models.SetStatusRequest) bool {
		return r.AppointmentID == 3 && r.Status == "confirmed" && r.ReassignStaffID != nil && *r.ReassignStaffID == 12
	})).Return(&models.AppointmentResponse{ID: 3, Status: "confirmed", StaffID: &staffID}, nil)

	rec := serve(svc, `{"status": "confirmed", "staffId": 12}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"staffId":12`)
}

func TestHandle_Errors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "not found", err: appointments.ErrAppointmentNotFound, want: http.StatusNotFound},
		{name: "staff not found", err: appointments.ErrStaffNotFound, want: http.StatusNotFound},
		{name: "forbidden", err: appointments.ErrAccessDenied, want: http.StatusForbidden},
		{name: "transition", err: appointments.ErrInvalidTransition, want: http.StatusConflict},
		{name: "staff busy", err: appointments.ErrStaffUnavailable, want: http.StatusConflict},
		{name: "bad status", err: appointments.ErrInvalidInput, want: http.StatusBadRequest},
		{name: "internal", err: appointments.ErrInternal, want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockService{}
			svc.On("SetStatus", mock.Anything).Return(nil, tt.err)
			assert.Equal(t, tt.want, serve(svc, `{"status": "completed"}`).Code)
		})
	}
}

package get_appointment

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-SalonBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-SalonBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-SalonBookingService/internal/service/appointments"
)

const (
	msgInvalidAppointmentID = "некорректный ID записи"
	msgNotFound             = "запись не найдена"
	msgMissingUser          = "требуется авторизация"
	msgForbidden            = "доступ запрещен"
)

type Handler struct {
	service AppointmentService
	logger  Logger
}

func NewHandler(service AppointmentService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/appointments/{appointmentId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	appointmentID, err := strconv.ParseInt(mux.Vars(r)["appointmentId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /appointments/{id} - Invalid appointment ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidAppointmentID)
		return
	}

	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		h.logger.Warn("GET /appointments/{id} - Missing user")
		handlers.RespondUnauthorized(w, msgMissingUser)
		return
	}

	// Права доступа проверяет сервис
	appointment, err := h.service.GetByID(r.Context(), appointmentID, actor)
	if err != nil {
		switch {
		case errors.Is(err, appointments.ErrAppointmentNotFound):
			h.logger.Warn("GET /appointments/{id} - Appointment not found: appointment_id=%d", appointmentID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, appointments.ErrAccessDenied):
			h.logger.Warn("GET /appointments/{id} - Access denied: appointment_id=%d, user_id=%d", appointmentID, actor.ID)
			handlers.RespondForbidden(w, msgForbidden)

		default:
			h.logger.Error("GET /appointments/{id} - Failed to get appointment: appointment_id=%d, error=%v", appointmentID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /appointments/{id} - Appointment retrieved: appointment_id=%d, user_id=%d", appointmentID, actor.ID)
	handlers.RespondJSON(w, http.StatusOK, appointment)
}

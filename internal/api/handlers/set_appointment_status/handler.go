package set_appointment_status

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-SalonBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-SalonBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
	"github.com/m04kA/SMC-SalonBookingService/internal/service/appointments"
	"github.com/m04kA/SMC-SalonBookingService/internal/service/appointments/models"
)

const (
	msgInvalidAppointmentID = "некорректный ID записи"
	msgInvalidRequestBody   = "некорректное тело запроса"
	msgMissingUser          = "требуется авторизация"
	msgInvalidInput         = "некорректный статус или мастер"
	msgNotFound             = "запись не найдена"
	msgStaffNotFound        = "мастер не найден или неактивен"
	msgForbidden            = "менять статус может назначенный мастер или администратор"
	msgInvalidTransition    = "недопустимая смена статуса"
	msgStaffUnavailable     = "у мастера уже есть запись на это время"
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

// Handle PATCH /api/v1/appointments/{appointmentId}/status
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	appointmentID, err := strconv.ParseInt(mux.Vars(r)["appointmentId"], 10, 64)
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidAppointmentID)
		return
	}

	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUser)
		return
	}

	var body SetStatusRequest
	if err := handlers.DecodeJSON(r, &body); err != nil {
		h.logger.Warn("PATCH /appointments/{id}/status - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.SetStatus(r.Context(), &models.SetStatusRequest{
		AppointmentID:   appointmentID,
		Actor:           actor,
		Status:          body.Status,
		ReassignStaffID: body.StaffID,
	})
	if err != nil {
		switch {
		case errors.Is(err, appointments.ErrStaffNotFound):
			handlers.RespondNotFound(w, msgStaffNotFound)
		case errors.Is(err, domain.ErrNotFound):
			handlers.RespondNotFound(w, msgNotFound)
		case errors.Is(err, domain.ErrValidation):
			handlers.RespondBadRequest(w, msgInvalidInput)
		case errors.Is(err, domain.ErrForbidden):
			handlers.RespondForbidden(w, msgForbidden)
		case errors.Is(err, domain.ErrInvalidTransition):
			handlers.RespondConflict(w, msgInvalidTransition)
		case errors.Is(err, appointments.ErrStaffUnavailable):
			handlers.RespondConflict(w, msgStaffUnavailable)
		default:
			h.logger.Error("PATCH /appointments/{id}/status - Failed: appointment_id=%d, error=%v", appointmentID, err)
			handlers.RespondInternalError(w)
			return
		}
		h.logger.Warn("PATCH /appointments/{id}/status - Rejected: appointment_id=%d, user_id=%d, reason=%v",
			appointmentID, actor.ID, err)
		return
	}

	h.logger.Info("PATCH /appointments/{id}/status - Appointment id=%d is now %s", appointmentID, result.Status)
	handlers.RespondJSON(w, http.StatusOK, result)
}

package record_payment

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-SalonBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-SalonBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-SalonBookingService/internal/service/appointments"
	"github.com/m04kA/SMC-SalonBookingService/internal/service/appointments/models"
)

const (
	msgInvalidAppointmentID = "некорректный ID записи"
	msgInvalidRequestBody   = "некорректное тело запроса"
	msgMissingUser          = "требуется авторизация"
	msgInvalidInput         = "оплата возможна только для онлайн-записи с ID платежа"
	msgAlreadyPaid          = "запись уже оплачена другим платежом"
	msgNotFound             = "запись не найдена"
	msgForbidden            = "доступ запрещен"
	msgCancelled            = "запись отменена"
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

// Handle POST /api/v1/appointments/{appointmentId}/payment
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

	var body RecordPaymentRequest
	if err := handlers.DecodeJSON(r, &body); err != nil {
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.RecordPayment(r.Context(), &models.RecordPaymentRequest{
		AppointmentID: appointmentID,
		Actor:         actor,
		TransactionID: body.TransactionID,
	})
	if err != nil {
		switch {
		case errors.Is(err, appointments.ErrAlreadyPaid):
			handlers.RespondConflict(w, msgAlreadyPaid)
		case errors.Is(err, appointments.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidInput)
		case errors.Is(err, appointments.ErrAppointmentNotFound):
			handlers.RespondNotFound(w, msgNotFound)
		case errors.Is(err, appointments.ErrAccessDenied):
			handlers.RespondForbidden(w, msgForbidden)
		case errors.Is(err, appointments.ErrInvalidTransition):
			handlers.RespondConflict(w, msgCancelled)
		default:
			h.logger.Error("POST /appointments/{id}/payment - Failed: appointment_id=%d, error=%v", appointmentID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /appointments/{id}/payment - Payment recorded: appointment_id=%d", appointmentID)
	handlers.RespondJSON(w, http.StatusOK, result)
}

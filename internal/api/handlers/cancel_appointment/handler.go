package cancel_appointment

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-SalonBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-SalonBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
	cancelAppointment "github.com/m04kA/SMC-SalonBookingService/internal/usecase/cancel_appointment"
)

const (
	msgInvalidAppointmentID = "некорректный ID записи"
	msgInvalidRequestBody   = "некорректное тело запроса"
	msgMissingUser          = "требуется авторизация"
	msgInvalidInput         = "некорректные данные отмены"
	msgNotFound             = "запись не найдена"
	msgForbidden            = "отменить запись может только клиент или администратор"
	msgAlreadyCancelled     = "запись уже отменена"
	msgNotCancellable       = "завершенную запись нельзя отменить"
	msgDailyLimit           = "превышен дневной лимит отмен"
	msgTooLate              = "отменить запись можно не позднее чем за 2 часа до начала"
	msgRefundFailed         = "не удалось оформить возврат, запись не отменена"
)

type Handler struct {
	useCase CancelAppointmentUseCase
	logger  Logger
}

func NewHandler(useCase CancelAppointmentUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/appointments/{appointmentId}/cancel
// Тело необязательно: {"reason": "..."}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	appointmentID, err := strconv.ParseInt(mux.Vars(r)["appointmentId"], 10, 64)
	if err != nil {
		h.logger.Warn("POST /appointments/{id}/cancel - Invalid appointment ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidAppointmentID)
		return
	}

	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUser)
		return
	}

	var body CancelAppointmentRequest
	if err := handlers.DecodeJSON(r, &body); err != nil && !errors.Is(err, io.EOF) {
		h.logger.Warn("POST /appointments/{id}/cancel - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.useCase.Execute(r.Context(), &cancelAppointment.Request{
		AppointmentID: appointmentID,
		Actor:         actor,
		Reason:        body.Reason,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrValidation):
			handlers.RespondBadRequest(w, msgInvalidInput)
		case errors.Is(err, domain.ErrNotFound):
			handlers.RespondNotFound(w, msgNotFound)
		case errors.Is(err, domain.ErrForbidden):
			handlers.RespondForbidden(w, msgForbidden)
		case errors.Is(err, domain.ErrAlreadyCancelled):
			handlers.RespondConflict(w, msgAlreadyCancelled)
		case errors.Is(err, domain.ErrInvalidTransition):
			handlers.RespondConflict(w, msgNotCancellable)
		case errors.Is(err, domain.ErrDailyCancellationLimitExceeded):
			handlers.RespondConflict(w, msgDailyLimit)
		case errors.Is(err, domain.ErrTooLateToCancel):
			handlers.RespondConflict(w, msgTooLate)
		case errors.Is(err, domain.ErrRefundProcessingFailed):
			h.logger.Error("POST /appointments/{id}/cancel - Refund failed: appointment_id=%d, error=%v", appointmentID, err)
			handlers.RespondBadGateway(w, msgRefundFailed)
		default:
			h.logger.Error("POST /appointments/{id}/cancel - Failed to cancel: appointment_id=%d, error=%v", appointmentID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /appointments/{id}/cancel - Appointment cancelled: appointment_id=%d, refund=%s %s",
		appointmentID, result.RefundKind, result.RefundAmount.StringFixed(2))
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}

package book_appointment

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-SalonBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-SalonBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
	"github.com/m04kA/SMC-SalonBookingService/internal/service/appointments/models"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidStartTime   = "некорректное время начала, ожидается RFC 3339"
	msgMissingUser        = "требуется авторизация"
	msgForbidden          = "записывать клиентов могут только клиенты и администраторы"
	msgCustomerRequired   = "администратор должен указать customerId"
	msgInvalidInput       = "некорректные данные записи"
	msgServiceNotFound    = "услуга не найдена"
	msgOutsideHours       = "время записи вне часов работы салона"
	msgNoQualifiedStaff   = "нет мастеров, выполняющих эту услугу"
	msgNoStaffAvailable   = "на это время нет свободных мастеров"
)

type Handler struct {
	useCase BookAppointmentUseCase
	logger  Logger
}

func NewHandler(useCase BookAppointmentUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/appointments
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUser)
		return
	}

	var req BookAppointmentRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /appointments - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	// Клиент записывает себя, администратор указывает клиента явно
	var customerID int64
	switch actor.Role {
	case domain.RoleCustomer:
		customerID = actor.ID
	case domain.RoleAdmin:
		if req.CustomerID == nil {
			handlers.RespondBadRequest(w, msgCustomerRequired)
			return
		}
		customerID = *req.CustomerID
	default:
		h.logger.Warn("POST /appointments - Forbidden for user_id=%d role=%s", actor.ID, actor.Role)
		handlers.RespondForbidden(w, msgForbidden)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(customerID)
	if err != nil {
		h.logger.Warn("POST /appointments - Invalid start time: %v", err)
		handlers.RespondBadRequest(w, msgInvalidStartTime)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			handlers.RespondNotFound(w, msgServiceNotFound)
		case errors.Is(err, domain.ErrValidation):
			handlers.RespondBadRequest(w, msgInvalidInput)
		case errors.Is(err, domain.ErrOutsideBusinessHours):
			handlers.RespondConflict(w, msgOutsideHours)
		case errors.Is(err, domain.ErrNoQualifiedStaff):
			handlers.RespondConflict(w, msgNoQualifiedStaff)
		case errors.Is(err, domain.ErrNoStaffAvailable):
			handlers.RespondConflict(w, msgNoStaffAvailable)
		default:
			h.logger.Error("POST /appointments - Failed to book: customer_id=%d, service_id=%d, error=%v",
				customerID, req.ServiceID, err)
			handlers.RespondInternalError(w)
			return
		}
		h.logger.Warn("POST /appointments - Rejected: customer_id=%d, service_id=%d, reason=%v", customerID, req.ServiceID, err)
		return
	}

	h.logger.Info("POST /appointments - Appointment created: appointment_id=%d, customer_id=%d", result.ID, customerID)
	handlers.RespondJSON(w, http.StatusCreated, models.FromDomainAppointment(result))
}

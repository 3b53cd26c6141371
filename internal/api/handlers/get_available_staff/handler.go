package get_available_staff

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-SalonBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
	getAvailableStaff "github.com/m04kA/SMC-SalonBookingService/internal/usecase/get_available_staff"
)

const (
	msgInvalidServiceID = "некорректный ID услуги"
	msgMissingStart     = "параметр start обязателен"
	msgInvalidStart     = "некорректное время начала, ожидается RFC 3339"
	msgInvalidInput     = "время начала в прошлом или за горизонтом бронирования"
	msgServiceNotFound  = "услуга не найдена"
	msgOutsideHours     = "время вне часов работы салона"
	msgNoQualifiedStaff = "нет мастеров, выполняющих эту услугу"
	msgNoStaffAvailable = "на это время нет свободных мастеров"
)

type Handler struct {
	useCase GetAvailableStaffUseCase
	logger  Logger
}

func NewHandler(useCase GetAvailableStaffUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/services/{serviceId}/available-staff?start=2026-03-10T10:00:00+03:00
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	serviceID, err := strconv.ParseInt(mux.Vars(r)["serviceId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /services/{id}/available-staff - Invalid service ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidServiceID)
		return
	}

	startStr := r.URL.Query().Get("start")
	if startStr == "" {
		handlers.RespondBadRequest(w, msgMissingStart)
		return
	}
	start, err := time.Parse(time.RFC3339, startStr)
	if err != nil {
		h.logger.Warn("GET /services/{id}/available-staff - Invalid start: %v", err)
		handlers.RespondBadRequest(w, msgInvalidStart)
		return
	}

	result, err := h.useCase.Execute(r.Context(), &getAvailableStaff.Request{ServiceID: serviceID, StartTime: start})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrValidation):
			handlers.RespondBadRequest(w, msgInvalidInput)
		case errors.Is(err, domain.ErrNotFound):
			handlers.RespondNotFound(w, msgServiceNotFound)
		case errors.Is(err, domain.ErrOutsideBusinessHours):
			handlers.RespondConflict(w, msgOutsideHours)
		case errors.Is(err, domain.ErrNoQualifiedStaff):
			handlers.RespondConflict(w, msgNoQualifiedStaff)
		case errors.Is(err, domain.ErrNoStaffAvailable):
			handlers.RespondConflict(w, msgNoStaffAvailable)
		default:
			h.logger.Error("GET /services/{id}/available-staff - Failed: service_id=%d, error=%v", serviceID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /services/{id}/available-staff - service_id=%d, start=%s: %d staff available",
		serviceID, startStr, len(result.Staff))
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}

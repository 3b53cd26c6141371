package get_available_slots

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-SalonBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
)

const (
	msgInvalidServiceID = "некорректный ID услуги"
	msgMissingDate      = "дата обязательна"
	msgInvalidQuery     = "некорректная дата (YYYY-MM-DD) или шаг в минутах"
	msgInvalidInput     = "шаг должен быть от 5 до 240 минут"
	msgServiceNotFound  = "услуга не найдена"
	msgNoQualifiedStaff = "нет мастеров, выполняющих эту услугу"
)

type Handler struct {
	useCase GetAvailableSlotsUseCase
	logger  Logger
}

func NewHandler(useCase GetAvailableSlotsUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/services/{serviceId}/slots
// Query params: date (required, YYYY-MM-DD), step (optional, минуты)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	serviceID, err := strconv.ParseInt(mux.Vars(r)["serviceId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /services/{id}/slots - Invalid service ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidServiceID)
		return
	}

	query := r.URL.Query()
	dateStr := query.Get("date")
	if dateStr == "" {
		handlers.RespondBadRequest(w, msgMissingDate)
		return
	}

	useCaseReq, err := ToUseCaseRequest(serviceID, dateStr, query.Get("step"))
	if err != nil {
		h.logger.Warn("GET /services/{id}/slots - Invalid query: %v", err)
		handlers.RespondBadRequest(w, msgInvalidQuery)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrValidation):
			handlers.RespondBadRequest(w, msgInvalidInput)
		case errors.Is(err, domain.ErrNotFound):
			h.logger.Warn("GET /services/{id}/slots - Service not found: service_id=%d", serviceID)
			handlers.RespondNotFound(w, msgServiceNotFound)
		case errors.Is(err, domain.ErrNoQualifiedStaff):
			handlers.RespondConflict(w, msgNoQualifiedStaff)
		default:
			h.logger.Error("GET /services/{id}/slots - Failed to get slots: service_id=%d, error=%v", serviceID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /services/{id}/slots - service_id=%d, date=%s, slots_count=%d", serviceID, dateStr, len(result.Slots))
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}

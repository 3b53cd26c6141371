package list_appointments

import (
	"net/http"

	"github.com/m04kA/SMC-SalonBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-SalonBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-SalonBookingService/internal/service/appointments/models"
)

const (
	msgMissingUser   = "требуется авторизация"
	msgInvalidFilter = "некорректный фильтр статуса"
	msgForbidden     = "доступ запрещен"
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

// Handle GET /api/v1/appointments?status=confirmed
// Клиент получает свои записи, мастер - назначенные ему, администратор - все
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUser)
		return
	}

	req := &models.ListRequest{Actor: actor}
	if status := r.URL.Query().Get("status"); status != "" {
		req.Status = &status
	}

	list, err := h.service.List(r.Context(), req)
	if err != nil {
		switch code := handlers.StatusFor(err); code {
		case http.StatusBadRequest:
			handlers.RespondBadRequest(w, msgInvalidFilter)
		case http.StatusForbidden:
			handlers.RespondForbidden(w, msgForbidden)
		default:
			h.logger.Error("GET /appointments - Failed to list: user_id=%d, error=%v", actor.ID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /appointments - Found %d appointments for user_id=%d (%s)", len(list.Appointments), actor.ID, actor.Role)
	handlers.RespondJSON(w, http.StatusOK, list)
}

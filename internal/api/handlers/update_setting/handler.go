package update_setting

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-SalonBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-SalonBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-SalonBookingService/internal/service/settings"
	"github.com/m04kA/SMC-SalonBookingService/internal/service/settings/models"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUser        = "требуется авторизация"
	msgInvalidSetting     = "некорректная настройка (время в формате HH:MM)"
	msgForbidden          = "изменять настройки может только администратор"
)

type Handler struct {
	service SettingsService
	logger  Logger
}

func NewHandler(service SettingsService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle PUT /api/v1/settings/{key}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]

	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUser)
		return
	}

	var body UpdateSettingRequest
	if err := handlers.DecodeJSON(r, &body); err != nil {
		h.logger.Warn("PUT /settings/{key} - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.Update(r.Context(), &models.UpdateSettingRequest{
		Actor: actor,
		Key:   key,
		Value: body.Value,
	})
	if err != nil {
		switch {
		case errors.Is(err, settings.ErrInvalidInput):
			h.logger.Warn("PUT /settings/{key} - Invalid setting %s: %v", key, err)
			handlers.RespondBadRequest(w, msgInvalidSetting)
		case errors.Is(err, settings.ErrAccessDenied):
			handlers.RespondForbidden(w, msgForbidden)
		default:
			h.logger.Error("PUT /settings/{key} - Failed to update %s: %v", key, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PUT /settings/{key} - Setting %s updated by user_id=%d", key, actor.ID)
	handlers.RespondJSON(w, http.StatusOK, result)
}

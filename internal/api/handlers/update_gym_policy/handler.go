package update_gym_policy

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/GMS-ClassBookingService/internal/api/handlers"
	"github.com/m04kA/GMS-ClassBookingService/internal/api/handlers/get_gym_policies"
	"github.com/m04kA/GMS-ClassBookingService/internal/api/middleware"
	"github.com/m04kA/GMS-ClassBookingService/internal/service/policies"
)

const (
	msgInvalidGymID       = "некорректный ID зала"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgValidationFailed   = "политика не прошла валидацию"
)

type Handler struct {
	service PolicyService
	logger  Logger
}

func NewHandler(service PolicyService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle PUT /api/v1/gyms/{gymId}/policies
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	gymID, err := strconv.ParseInt(vars["gymId"], 10, 64)
	if err != nil {
		h.logger.Warn("PUT /gyms/{id}/policies - Invalid gym ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidGymID)
		return
	}

	staffID, ok := middleware.GetStaffID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w)
		return
	}

	var req UpsertPolicyRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /gyms/{id}/policies - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	policy, err := h.service.UpsertPolicy(r.Context(), gymID, req.ToServiceInput())
	if err != nil {
		switch {
		case errors.Is(err, policies.ErrValidation):
			h.logger.Warn("PUT /gyms/{id}/policies - Validation failed: gym_id=%d, error=%v", gymID, err)
			handlers.RespondBadRequest(w, msgValidationFailed)

		default:
			h.logger.Error("PUT /gyms/{id}/policies - Failed: gym_id=%d, error=%v", gymID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PUT /gyms/{id}/policies - policy=%d saved by staff=%d", policy.ID, staffID)
	handlers.RespondSuccess(w, "", map[string]interface{}{
		"policy": get_gym_policies.ToResponse(policy),
	})
}

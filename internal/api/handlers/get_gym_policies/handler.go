package get_gym_policies

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/GMS-ClassBookingService/internal/api/handlers"
)

const msgInvalidGymID = "некорректный ID зала"

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

// Handle GET /api/v1/gyms/{gymId}/policies
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	gymID, err := strconv.ParseInt(vars["gymId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /gyms/{id}/policies - Invalid gym ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidGymID)
		return
	}

	list, err := h.service.GetGymPolicies(r.Context(), gymID)
	if err != nil {
		h.logger.Error("GET /gyms/{id}/policies - Failed: gym_id=%d, error=%v", gymID, err)
		handlers.RespondInternalError(w)
		return
	}

	items := make([]*PolicyResponse, 0, len(list))
	for _, p := range list {
		items = append(items, ToResponse(p))
	}

	handlers.RespondSuccess(w, "", map[string]interface{}{
		"policies": items,
	})
}

package get_client_penalties

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/m04kA/GMS-ClassBookingService/internal/api/handlers"
	"github.com/m04kA/GMS-ClassBookingService/internal/api/middleware"
)

const (
	msgInvalidClientID = "некорректный ID клиента"
	msgInvalidGymID    = "некорректный ID зала"
	msgForbidden       = "доступ запрещен"
)

type Handler struct {
	service BookingService
	logger  Logger
}

func NewHandler(service BookingService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/gyms/{gymId}/clients/{clientId}/penalties
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	gymID, err := strconv.ParseInt(vars["gymId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /gyms/{id}/clients/{id}/penalties - Invalid gym ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidGymID)
		return
	}

	pathClientID, err := strconv.ParseInt(vars["clientId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /gyms/{id}/clients/{id}/penalties - Invalid client ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidClientID)
		return
	}

	clientID, ok := middleware.GetClientID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w)
		return
	}
	if clientID != pathClientID {
		h.logger.Warn("GET /gyms/{id}/clients/{id}/penalties - Access denied: path_client_id=%d, client_id=%d",
			pathClientID, clientID)
		handlers.RespondForbidden(w, msgForbidden)
		return
	}

	list, err := h.service.GetClientPenalties(r.Context(), gymID, clientID)
	if err != nil {
		h.logger.Error("GET /gyms/{id}/clients/{id}/penalties - Failed: gym_id=%d, client_id=%d, error=%v",
			gymID, clientID, err)
		handlers.RespondInternalError(w)
		return
	}

	items := make([]map[string]interface{}, 0, len(list))
	for _, p := range list {
		item := map[string]interface{}{
			"id":        p.ID,
			"sessionId": p.SessionID,
			"bookingId": p.BookingID,
			"type":      string(p.Type),
			"reason":    p.Reason,
			"createdAt": p.CreatedAt.Format(time.RFC3339),
		}
		if p.Amount != nil {
			item["amount"] = *p.Amount
		}
		items = append(items, item)
	}

	handlers.RespondSuccess(w, "", map[string]interface{}{
		"penalties": items,
	})
}

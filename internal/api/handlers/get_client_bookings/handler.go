package get_client_bookings

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/m04kA/GMS-ClassBookingService/internal/api/handlers"
	"github.com/m04kA/GMS-ClassBookingService/internal/api/middleware"
	"github.com/m04kA/GMS-ClassBookingService/internal/domain"
)

const (
	msgInvalidClientID = "некорректный ID клиента"
	msgInvalidStatus   = "некорректный статус бронирования"
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

// Handle GET /api/v1/clients/{clientId}/bookings?status=confirmed
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	pathClientID, err := strconv.ParseInt(vars["clientId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /clients/{id}/bookings - Invalid client ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidClientID)
		return
	}

	clientID, ok := middleware.GetClientID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w)
		return
	}
	if clientID != pathClientID {
		h.logger.Warn("GET /clients/{id}/bookings - Access denied: path_client_id=%d, client_id=%d",
			pathClientID, clientID)
		handlers.RespondForbidden(w, msgForbidden)
		return
	}

	var status *domain.BookingStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		parsed := domain.BookingStatus(raw)
		switch parsed {
		case domain.StatusPending, domain.StatusConfirmed, domain.StatusCancelled:
			status = &parsed
		default:
			handlers.RespondBadRequest(w, msgInvalidStatus)
			return
		}
	}

	list, err := h.service.GetClientBookings(r.Context(), clientID, status)
	if err != nil {
		h.logger.Error("GET /clients/{id}/bookings - Failed: client_id=%d, error=%v", clientID, err)
		handlers.RespondInternalError(w)
		return
	}

	items := make([]map[string]interface{}, 0, len(list))
	for _, b := range list {
		item := map[string]interface{}{
			"id":               b.ID,
			"gymId":            b.GymID,
			"sessionId":        b.SessionID,
			"status":           string(b.Status),
			"attendanceStatus": string(b.AttendanceStatus),
			"createdAt":        b.CreatedAt.Format(time.RFC3339),
		}
		if b.CancelledAt != nil {
			item["cancelledAt"] = b.CancelledAt.Format(time.RFC3339)
		}
		items = append(items, item)
	}

	handlers.RespondSuccess(w, "", map[string]interface{}{
		"bookings": items,
	})
}

package create_booking

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/GMS-ClassBookingService/internal/api/handlers"
	"github.com/m04kA/GMS-ClassBookingService/internal/api/middleware"
	"github.com/m04kA/GMS-ClassBookingService/internal/usecase/book_class"
)

const (
	msgInvalidSessionID = "некорректный ID занятия"
	msgSessionNotFound  = "занятие не найдено"
)

type Handler struct {
	coordinator BookingCoordinator
	logger      Logger
}

func NewHandler(coordinator BookingCoordinator, logger Logger) *Handler {
	return &Handler{
		coordinator: coordinator,
		logger:      logger,
	}
}

// Handle POST /api/v1/sessions/{sessionId}/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	sessionID, err := strconv.ParseInt(vars["sessionId"], 10, 64)
	if err != nil {
		h.logger.Warn("POST /sessions/{id}/bookings - Invalid session ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidSessionID)
		return
	}

	clientID, ok := middleware.GetClientID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w)
		return
	}

	result, err := h.coordinator.Book(r.Context(), sessionID, clientID)
	if err != nil {
		switch {
		case errors.Is(err, book_class.ErrSessionNotFound):
			h.logger.Warn("POST /sessions/{id}/bookings - Session not found: session_id=%d", sessionID)
			handlers.RespondNotFound(w, msgSessionNotFound)

		default:
			h.logger.Error("POST /sessions/{id}/bookings - Failed: session_id=%d, client_id=%d, error=%v",
				sessionID, clientID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	decision := result.Decision
	if result.Booking != nil {
		decision.Data["booking_id"] = result.Booking.ID
		h.logger.Info("POST /sessions/{id}/bookings - Booking created: booking_id=%d, session_id=%d, client_id=%d",
			result.Booking.ID, sessionID, clientID)
	}

	handlers.RespondDecision(w, decision)
}

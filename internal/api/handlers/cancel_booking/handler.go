package cancel_booking

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/GMS-ClassBookingService/internal/api/handlers"
	"github.com/m04kA/GMS-ClassBookingService/internal/api/middleware"
	"github.com/m04kA/GMS-ClassBookingService/internal/domain"
	"github.com/m04kA/GMS-ClassBookingService/internal/usecase/cancel_booking"
)

const (
	msgInvalidBookingID   = "некорректный ID бронирования"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgNotFound           = "бронирование не найдено"
	msgForbidden          = "доступ запрещен"
)

type Handler struct {
	resolver CancellationResolver
	logger   Logger
}

func NewHandler(resolver CancellationResolver, logger Logger) *Handler {
	return &Handler{
		resolver: resolver,
		logger:   logger,
	}
}

// Handle POST /api/v1/bookings/{bookingId}/cancel
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	bookingID, err := strconv.ParseInt(vars["bookingId"], 10, 64)
	if err != nil {
		h.logger.Warn("POST /bookings/{id}/cancel - Invalid booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	clientID, ok := middleware.GetClientID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w)
		return
	}

	// Тело опционально: отмена без причины - валидный запрос
	var req CancelBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		h.logger.Warn("POST /bookings/{id}/cancel - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	reason := ""
	if req.Reason != nil {
		reason = *req.Reason
	}

	var decision *domain.Decision
	if req.DryRun {
		decision, err = h.resolver.CanCancel(r.Context(), bookingID, clientID)
	} else {
		decision, err = h.resolver.Cancel(r.Context(), bookingID, clientID, reason)
	}

	if err != nil {
		switch {
		case errors.Is(err, cancel_booking.ErrBookingNotFound):
			h.logger.Warn("POST /bookings/{id}/cancel - Booking not found: booking_id=%d", bookingID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, cancel_booking.ErrPermissionDenied):
			h.logger.Warn("POST /bookings/{id}/cancel - Access denied: booking_id=%d, client_id=%d",
				bookingID, clientID)
			handlers.RespondForbidden(w, msgForbidden)

		default:
			h.logger.Error("POST /bookings/{id}/cancel - Failed: booking_id=%d, error=%v", bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings/{id}/cancel - booking_id=%d, client_id=%d, dry_run=%v, allowed=%v",
		bookingID, clientID, req.DryRun, decision.Allowed)
	handlers.RespondDecision(w, decision)
}

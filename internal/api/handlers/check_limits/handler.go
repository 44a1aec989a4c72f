package check_limits

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
	checker LimitChecker
	logger  Logger
}

func NewHandler(checker LimitChecker, logger Logger) *Handler {
	return &Handler{
		checker: checker,
		logger:  logger,
	}
}

// Handle GET /api/v1/sessions/{sessionId}/limits
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	sessionID, err := strconv.ParseInt(vars["sessionId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /sessions/{id}/limits - Invalid session ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidSessionID)
		return
	}

	clientID, ok := middleware.GetClientID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w)
		return
	}

	decision, err := h.checker.CheckLimits(r.Context(), sessionID, clientID)
	if err != nil {
		switch {
		case errors.Is(err, book_class.ErrSessionNotFound):
			h.logger.Warn("GET /sessions/{id}/limits - Session not found: session_id=%d", sessionID)
			handlers.RespondNotFound(w, msgSessionNotFound)

		default:
			h.logger.Error("GET /sessions/{id}/limits - Failed: session_id=%d, client_id=%d, error=%v",
				sessionID, clientID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondDecision(w, decision)
}

package join_waitlist

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/GMS-ClassBookingService/internal/api/handlers"
	"github.com/m04kA/GMS-ClassBookingService/internal/api/middleware"
	"github.com/m04kA/GMS-ClassBookingService/internal/usecase/waitlist"
)

const (
	msgInvalidSessionID = "некорректный ID занятия"
	msgSessionNotFound  = "занятие не найдено"
)

type Handler struct {
	manager WaitlistManager
	logger  Logger
}

func NewHandler(manager WaitlistManager, logger Logger) *Handler {
	return &Handler{
		manager: manager,
		logger:  logger,
	}
}

// Handle POST /api/v1/sessions/{sessionId}/waitlist
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	sessionID, err := strconv.ParseInt(vars["sessionId"], 10, 64)
	if err != nil {
		h.logger.Warn("POST /sessions/{id}/waitlist - Invalid session ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidSessionID)
		return
	}

	clientID, ok := middleware.GetClientID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w)
		return
	}

	decision, err := h.manager.Join(r.Context(), sessionID, clientID)
	if err != nil {
		switch {
		case errors.Is(err, waitlist.ErrSessionNotFound):
			h.logger.Warn("POST /sessions/{id}/waitlist - Session not found: session_id=%d", sessionID)
			handlers.RespondNotFound(w, msgSessionNotFound)

		default:
			h.logger.Error("POST /sessions/{id}/waitlist - Failed: session_id=%d, client_id=%d, error=%v",
				sessionID, clientID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /sessions/{id}/waitlist - session_id=%d, client_id=%d, joined=%v",
		sessionID, clientID, decision.Allowed)
	handlers.RespondDecision(w, decision)
}

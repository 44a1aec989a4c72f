package leave_waitlist

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
	msgInvalidEntryID = "некорректный ID записи листа ожидания"
	msgEntryNotFound  = "запись листа ожидания не найдена"
	msgForbidden      = "доступ запрещен"
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

// Handle DELETE /api/v1/waitlist/{entryId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	entryID, err := strconv.ParseInt(vars["entryId"], 10, 64)
	if err != nil {
		h.logger.Warn("DELETE /waitlist/{id} - Invalid entry ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidEntryID)
		return
	}

	clientID, ok := middleware.GetClientID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w)
		return
	}

	decision, err := h.manager.Leave(r.Context(), entryID, clientID)
	if err != nil {
		switch {
		case errors.Is(err, waitlist.ErrEntryNotFound):
			h.logger.Warn("DELETE /waitlist/{id} - Entry not found: entry_id=%d", entryID)
			handlers.RespondNotFound(w, msgEntryNotFound)

		case errors.Is(err, waitlist.ErrPermissionDenied):
			h.logger.Warn("DELETE /waitlist/{id} - Access denied: entry_id=%d, client_id=%d",
				entryID, clientID)
			handlers.RespondForbidden(w, msgForbidden)

		default:
			h.logger.Error("DELETE /waitlist/{id} - Failed: entry_id=%d, error=%v", entryID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("DELETE /waitlist/{id} - entry_id=%d, client_id=%d, left=%v",
		entryID, clientID, decision.Allowed)
	handlers.RespondDecision(w, decision)
}

package promote_waitlist

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
	msgSessionGone    = "занятие не найдено"
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

// Handle POST /api/v1/waitlist/{entryId}/promote
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	entryID, err := strconv.ParseInt(vars["entryId"], 10, 64)
	if err != nil {
		h.logger.Warn("POST /waitlist/{id}/promote - Invalid entry ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidEntryID)
		return
	}

	staffID, ok := middleware.GetStaffID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w)
		return
	}

	decision, err := h.manager.Promote(r.Context(), entryID, staffID)
	if err != nil {
		switch {
		case errors.Is(err, waitlist.ErrEntryNotFound):
			h.logger.Warn("POST /waitlist/{id}/promote - Entry not found: entry_id=%d", entryID)
			handlers.RespondNotFound(w, msgEntryNotFound)

		case errors.Is(err, waitlist.ErrSessionNotFound):
			h.logger.Warn("POST /waitlist/{id}/promote - Session not found: entry_id=%d", entryID)
			handlers.RespondNotFound(w, msgSessionGone)

		default:
			h.logger.Error("POST /waitlist/{id}/promote - Failed: entry_id=%d, error=%v", entryID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /waitlist/{id}/promote - entry_id=%d, staff_id=%d, promoted=%v",
		entryID, staffID, decision.Allowed)
	handlers.RespondDecision(w, decision)
}

package leave_waitlist

import (
	"context"

	"github.com/m04kA/GMS-ClassBookingService/internal/domain"
)

type WaitlistManager interface {
	Leave(ctx context.Context, entryID, clientID int64) (*domain.Decision, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

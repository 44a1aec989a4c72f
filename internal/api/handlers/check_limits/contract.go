package check_limits

import (
	"context"

	"github.com/m04kA/GMS-ClassBookingService/internal/domain"
)

type LimitChecker interface {
	CheckLimits(ctx context.Context, sessionID, clientID int64) (*domain.Decision, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

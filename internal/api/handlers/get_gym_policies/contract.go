package get_gym_policies

import (
	"context"

	"github.com/m04kA/GMS-ClassBookingService/internal/domain"
)

type PolicyService interface {
	GetGymPolicies(ctx context.Context, gymID int64) ([]*domain.ActivityPolicy, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

package update_gym_policy

import (
	"context"

	"github.com/m04kA/GMS-ClassBookingService/internal/domain"
	"github.com/m04kA/GMS-ClassBookingService/internal/service/policies/models"
)

type PolicyService interface {
	UpsertPolicy(ctx context.Context, gymID int64, input *models.UpsertPolicyInput) (*domain.ActivityPolicy, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

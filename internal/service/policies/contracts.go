package policies

import (
	"context"

	"github.com/m04kA/GMS-ClassBookingService/internal/domain"
)

// PolicyRepo доступ к политикам записи
type PolicyRepo interface {
	GetByGymAndActivity(ctx context.Context, gymID int64, activityID *int64) (*domain.ActivityPolicy, error)
	GetAllByGym(ctx context.Context, gymID int64) ([]*domain.ActivityPolicy, error)
	Create(ctx context.Context, policy *domain.ActivityPolicy) (*domain.ActivityPolicy, error)
	Update(ctx context.Context, id int64, policy *domain.ActivityPolicy) (*domain.ActivityPolicy, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

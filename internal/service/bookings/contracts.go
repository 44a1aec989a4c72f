package bookings

import (
	"context"

	"github.com/m04kA/GMS-ClassBookingService/internal/domain"
)

// BookingRepo доступ к бронированиям
type BookingRepo interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	GetByClientID(ctx context.Context, clientID int64, status *domain.BookingStatus) ([]*domain.Booking, error)
}

// PenaltyRepo доступ к санкциям клиента
type PenaltyRepo interface {
	GetByClient(ctx context.Context, gymID, clientID int64) ([]*domain.Penalty, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

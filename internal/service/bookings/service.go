// Package bookings read-only сценарии просмотра бронирований и санкций
package bookings

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/GMS-ClassBookingService/internal/domain"
	storageBooking "github.com/m04kA/GMS-ClassBookingService/internal/infra/storage/booking"
)

// Service просмотр бронирований и санкций клиента
type Service struct {
	bookings  BookingRepo
	penalties PenaltyRepo
	logger    Logger
}

// NewService создает новый экземпляр сервиса просмотра бронирований
func NewService(bookings BookingRepo, penalties PenaltyRepo, logger Logger) *Service {
	return &Service{
		bookings:  bookings,
		penalties: penalties,
		logger:    logger,
	}
}

// GetByID возвращает бронирование клиента по идентификатору
// Чужие бронирования недоступны
func (s *Service) GetByID(ctx context.Context, bookingID, clientID int64) (*domain.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, storageBooking.ErrBookingNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("%w: GetByID: %v", ErrInternal, err)
	}

	if booking.ClientID != clientID {
		return nil, ErrPermissionDenied
	}

	return booking, nil
}

// GetClientBookings возвращает бронирования клиента, свежие первыми
func (s *Service) GetClientBookings(ctx context.Context, clientID int64, status *domain.BookingStatus) ([]*domain.Booking, error) {
	list, err := s.bookings.GetByClientID(ctx, clientID, status)
	if err != nil {
		return nil, fmt.Errorf("%w: GetClientBookings: %v", ErrInternal, err)
	}
	return list, nil
}

// GetClientPenalties возвращает санкции клиента в зале
func (s *Service) GetClientPenalties(ctx context.Context, gymID, clientID int64) ([]*domain.Penalty, error) {
	list, err := s.penalties.GetByClient(ctx, gymID, clientID)
	if err != nil {
		return nil, fmt.Errorf("%w: GetClientPenalties: %v", ErrInternal, err)
	}
	return list, nil
}

package bookings

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("service.bookings: booking not found")

	// ErrPermissionDenied возвращается при запросе чужого бронирования
	ErrPermissionDenied = errors.New("service.bookings: booking belongs to another client")

	// ErrInternal возвращается при инфраструктурных ошибках
	ErrInternal = errors.New("service.bookings: internal error")
)

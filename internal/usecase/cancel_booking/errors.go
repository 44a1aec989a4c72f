package cancel_booking

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("cancel_booking: booking not found")

	// ErrPermissionDenied возвращается при попытке отменить чужое бронирование
	ErrPermissionDenied = errors.New("cancel_booking: booking belongs to another client")

	// ErrInternal возвращается при инфраструктурных ошибках
	ErrInternal = errors.New("cancel_booking: internal error")
)

package waitlist

import "errors"

var (
	// ErrSessionNotFound возвращается, когда занятие не найдено
	ErrSessionNotFound = errors.New("waitlist: session not found")

	// ErrEntryNotFound возвращается, когда запись листа ожидания не найдена
	ErrEntryNotFound = errors.New("waitlist: entry not found")

	// ErrPermissionDenied возвращается при попытке управлять чужой записью
	ErrPermissionDenied = errors.New("waitlist: entry belongs to another client")

	// ErrInternal возвращается при инфраструктурных ошибках
	ErrInternal = errors.New("waitlist: internal error")
)

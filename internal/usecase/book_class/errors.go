package book_class

import "errors"

var (
	// ErrSessionNotFound возвращается, когда занятие не найдено
	ErrSessionNotFound = errors.New("book_class: session not found")

	// ErrInternal возвращается при инфраструктурных ошибках
	ErrInternal = errors.New("book_class: internal error")
)

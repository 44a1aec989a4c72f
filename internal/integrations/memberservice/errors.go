package memberservice

import "errors"

var (
	// ErrClientNotFound возвращается, когда клиент не найден в MemberService
	ErrClientNotFound = errors.New("memberservice client: client not found")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("memberservice client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от сервиса
	ErrInvalidResponse = errors.New("memberservice client: invalid response")

	// ErrServiceDegraded возвращается при применении graceful degradation
	// Указывает, что MemberService недоступен - вызывающий код может
	// продолжить с пустым VIP-статусом, но не с проверкой лимитов
	ErrServiceDegraded = errors.New("memberservice unavailable: graceful degradation applied")
)

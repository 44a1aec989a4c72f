package policies

import "errors"

var (
	// ErrPolicyNotFound возвращается, когда политика не найдена
	ErrPolicyNotFound = errors.New("service.policies: policy not found")

	// ErrValidation возвращается при некорректных данных политики
	ErrValidation = errors.New("service.policies: validation failed")

	// ErrInternal возвращается при инфраструктурных ошибках
	ErrInternal = errors.New("service.policies: internal error")
)

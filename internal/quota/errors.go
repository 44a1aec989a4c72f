package quota

import "errors"

var (
	// ErrInternal возвращается при инфраструктурных ошибках проверки лимитов
	ErrInternal = errors.New("quota: internal error")
)

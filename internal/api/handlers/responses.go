// Package handlers общие помощники HTTP-слоя
//
// Все ответы сервиса используют единый конверт {success, message, data}:
// и положительные решения, и бизнес-отказы уходят с кодом 200, различаясь
// полем success. Ошибки HTTP-уровня (не найдено, нет доступа) используют
// соответствующие статус-коды с тем же конвертом
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/m04kA/GMS-ClassBookingService/internal/domain"
)

const (
	msgInternalError = "внутренняя ошибка сервиса"
	msgUnauthorized  = "требуется аутентификация"
)

// Response единый конверт ответа API
type Response struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message,omitempty"`
	Data    map[string]interface{} `json:"data,omitempty"`
}

// DecodeJSON декодирует тело запроса, запрещая неизвестные поля
func DecodeJSON(r *http.Request, dst interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}

// RespondJSON пишет произвольный payload с указанным статусом
func RespondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

// RespondDecision пишет решение движка в едином конверте
// Бизнес-отказ не ошибка протокола, поэтому статус всегда 200
func RespondDecision(w http.ResponseWriter, decision *domain.Decision) {
	RespondJSON(w, http.StatusOK, Response{
		Success: decision.Allowed,
		Message: decision.Message,
		Data:    decision.Data,
	})
}

// RespondSuccess пишет положительный ответ с данными
func RespondSuccess(w http.ResponseWriter, message string, data map[string]interface{}) {
	RespondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// RespondBadRequest пишет 400 с сообщением
func RespondBadRequest(w http.ResponseWriter, message string) {
	RespondJSON(w, http.StatusBadRequest, Response{Success: false, Message: message})
}

// RespondUnauthorized пишет 401 без деталей
func RespondUnauthorized(w http.ResponseWriter) {
	RespondJSON(w, http.StatusUnauthorized, Response{Success: false, Message: msgUnauthorized})
}

// RespondForbidden пишет 403 с сообщением
func RespondForbidden(w http.ResponseWriter, message string) {
	RespondJSON(w, http.StatusForbidden, Response{Success: false, Message: message})
}

// RespondNotFound пишет 404 с сообщением
func RespondNotFound(w http.ResponseWriter, message string) {
	RespondJSON(w, http.StatusNotFound, Response{Success: false, Message: message})
}

// RespondInternalError пишет 500 без деталей внутренней ошибки
func RespondInternalError(w http.ResponseWriter) {
	RespondJSON(w, http.StatusInternalServerError, Response{Success: false, Message: msgInternalError})
}

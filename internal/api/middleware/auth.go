// Package middleware сквозные обработчики HTTP-запросов
package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/m04kA/GMS-ClassBookingService/internal/api/handlers"
)

type contextKey string

const (
	clientIDKey contextKey = "client_id"
	staffIDKey  contextKey = "staff_id"

	headerClientID = "X-Client-ID"
	headerStaffID  = "X-Staff-ID"
)

// ClientAuth требует заголовок X-Client-ID и кладет идентификатор в контекст
// Аутентификацию выполняет API-gateway, сервис доверяет заголовку
func ClientAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID, err := strconv.ParseInt(r.Header.Get(headerClientID), 10, 64)
		if err != nil || clientID <= 0 {
			handlers.RespondUnauthorized(w)
			return
		}

		ctx := context.WithValue(r.Context(), clientIDKey, clientID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// StaffAuth требует заголовок X-Staff-ID для административных операций
func StaffAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		staffID, err := strconv.ParseInt(r.Header.Get(headerStaffID), 10, 64)
		if err != nil || staffID <= 0 {
			handlers.RespondUnauthorized(w)
			return
		}

		ctx := context.WithValue(r.Context(), staffIDKey, staffID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetClientID извлекает идентификатор клиента из контекста запроса
func GetClientID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(clientIDKey).(int64)
	return id, ok
}

// GetStaffID извлекает идентификатор сотрудника из контекста запроса
func GetStaffID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(staffIDKey).(int64)
	return id, ok
}

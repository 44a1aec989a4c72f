package book_class

import "github.com/m04kA/GMS-ClassBookingService/internal/domain"

// Result результат попытки записи: решение движка и созданное бронирование
// Booking заполнен только при Decision.Allowed=true
type Result struct {
	Decision *domain.Decision
	Booking  *domain.Booking
}

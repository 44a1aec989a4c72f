package cancel_booking

import "github.com/m04kA/GMS-ClassBookingService/internal/domain"

// penaltyVerdict результат применения политики отмен к моменту времени
type penaltyVerdict struct {
	Applies bool
	Type    domain.PenaltyType
	// Fee задан только для типа fee
	Fee *float64
}

package domain

import "time"

// Penalty append-only запись о санкции за позднюю отмену или неявку
// Никогда не изменяется и не удаляется
type Penalty struct {
	ID        int64
	GymID     int64
	ClientID  int64
	SessionID int64
	BookingID int64
	Type      PenaltyType
	// Amount задан только для типа fee
	Amount    *float64
	Reason    string
	CreatedBy int64
	CreatedAt time.Time
}

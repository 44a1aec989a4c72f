package domain

import "time"

// ClientUsageFilter фильтр подсчета бронирований клиента для проверки лимитов
// Окно [From, To) задается по времени начала занятия в тайм-зоне зала
type ClientUsageFilter struct {
	GymID    int64
	ClientID int64
	From     time.Time
	To       time.Time

	// ActivityID ограничивает подсчет конкретной активностью (опционально)
	ActivityID *int64
	// CategoryID ограничивает подсчет категорией активностей (опционально)
	CategoryID *int64

	// Statuses статусы, попадающие в подсчет (по умолчанию - активные)
	Statuses []BookingStatus
}

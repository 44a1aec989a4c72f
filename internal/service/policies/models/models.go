package models

import "github.com/m04kA/GMS-ClassBookingService/pkg/types"

// UpsertPolicyInput входные данные создания или обновления политики записи
// ActivityID == nil означает политику зала по умолчанию
type UpsertPolicyInput struct {
	ActivityID *int64

	WindowMode           string
	WindowHoursBefore    int
	WindowOpenDaysBefore int
	// WindowOpenWeekday как time.Weekday: 0 - воскресенье
	WindowOpenWeekday int
	WindowOpenTime    types.TimeString

	WaitlistEnabled bool
	// WaitlistLimit 0 означает очередь без ограничения
	WaitlistLimit          int
	WaitlistMode           string
	AutoPromoteCutoffHours int

	CancellationWindowHours int
	PenaltyType             string
	PenaltyFee              float64

	VIPPlanIDs  []int64
	VIPGroupIDs []int64
}

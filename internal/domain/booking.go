package domain

import "time"

// BookingStatus represents the status of a class booking
type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCancelled BookingStatus = "cancelled"
)

// AttendanceStatus represents the attendance sub-state of a booking
type AttendanceStatus string

const (
	AttendancePending    AttendanceStatus = "pending"
	AttendanceAttended   AttendanceStatus = "attended"
	AttendanceNoShow     AttendanceStatus = "no_show"
	AttendanceLateCancel AttendanceStatus = "late_cancel"
)

// Booking represents a client's reservation for a class session
// Бронирования никогда не удаляются физически - только переводятся в cancelled
type Booking struct {
	ID               int64
	GymID            int64
	SessionID        int64
	ClientID         int64
	Status           BookingStatus
	AttendanceStatus AttendanceStatus

	CancellationReason *string
	CancelledAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive returns true if the booking still occupies a spot
func (b *Booking) IsActive() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed
}

// IsCancelled returns true if the booking has been cancelled
func (b *Booking) IsCancelled() bool {
	return b.Status == StatusCancelled
}

// CanBeCancelled returns true if the booking can still be cancelled
func (b *Booking) CanBeCancelled() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed
}

// ActiveStatuses статусы бронирований, занимающих место на занятии
var ActiveStatuses = []BookingStatus{
	StatusPending,
	StatusConfirmed,
}

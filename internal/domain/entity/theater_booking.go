package entity

import (
	"time"

	"github.com/google/uuid"
)

// BookingStatus represents the status of a theater booking
type BookingStatus string

const (
	BookingStatusProvisional BookingStatus = "provisional"
	BookingStatusConfirmed   BookingStatus = "confirmed"
	BookingStatusCancelled   BookingStatus = "cancelled"
)

// TheaterBooking reserves an operating-theater interval for a surgical case.
// A provisional booking is a short-lived pessimistic lock: once its TTL
// passes it is never swept, just excluded from conflict checks, so the slot
// can be re-acquired without an explicit release.
type TheaterBooking struct {
	ID             int64         `gorm:"primaryKey;autoIncrement" json:"id"`
	SurgicalCaseID string        `gorm:"type:varchar(30);not null;index" json:"surgical_case_id"`
	TheaterID      int           `gorm:"not null;index" json:"theater_id"`
	StartTime      time.Time     `gorm:"not null" json:"start_time"`
	EndTime        time.Time     `gorm:"not null" json:"end_time"`
	Status         BookingStatus `gorm:"type:varchar(20);not null;default:'provisional';index" json:"status"`
	LockedBy       uuid.UUID     `gorm:"type:uuid;not null" json:"locked_by"`
	LockedAt       time.Time     `gorm:"not null" json:"locked_at"`
	LockExpiresAt  time.Time     `gorm:"not null;index" json:"lock_expires_at"`
	ConfirmedBy    *uuid.UUID    `gorm:"type:uuid" json:"confirmed_by,omitempty"`
	CreatedAt      time.Time     `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time     `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Theater Theater `gorm:"foreignKey:TheaterID" json:"theater,omitempty"`
}

func (TheaterBooking) TableName() string {
	return "theater_bookings"
}

// IsProvisional checks if the booking is still an unconfirmed lock.
func (b *TheaterBooking) IsProvisional() bool {
	return b.Status == BookingStatusProvisional
}

// IsConfirmed checks if the booking has been confirmed.
func (b *TheaterBooking) IsConfirmed() bool {
	return b.Status == BookingStatusConfirmed
}

// IsLockActive reports whether the provisional lock still holds at now.
func (b *TheaterBooking) IsLockActive(now time.Time) bool {
	return b.Status == BookingStatusProvisional && b.LockExpiresAt.After(now)
}

// Overlaps applies the half-open interval intersection test: two intervals
// overlap unless one ends at or before the other starts.
func (b *TheaterBooking) Overlaps(start, end time.Time) bool {
	return b.StartTime.Before(end) && start.Before(b.EndTime)
}

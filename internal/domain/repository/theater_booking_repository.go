package repository

import (
	"time"

	"surgical-clinic-backend/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TheaterBookingRepository interface {
	// AcquireTheaterLock takes a transaction-scoped advisory lock on the
	// theater, serializing the read-check-insert sequence of concurrent slot
	// writers. Released automatically at commit or rollback.
	AcquireTheaterLock(db *gorm.DB, theaterID int) error
	Create(db *gorm.DB, booking *entity.TheaterBooking) error
	FindByID(db *gorm.DB, id int64) (*entity.TheaterBooking, error)
	Update(db *gorm.DB, booking *entity.TheaterBooking) error
	FindBySurgicalCaseID(db *gorm.DB, surgicalCaseID string) ([]entity.TheaterBooking, error)
	// CountActiveLocks counts the user's provisional bookings whose lock has
	// not yet expired, across all theaters.
	CountActiveLocks(db *gorm.DB, userID uuid.UUID, now time.Time) (int64, error)
	// FindConflicting returns the first booking on the theater overlapping
	// [start, end) that is confirmed or a live provisional lock, or nil.
	FindConflicting(db *gorm.DB, theaterID int, start, end, now time.Time) (*entity.TheaterBooking, error)
}

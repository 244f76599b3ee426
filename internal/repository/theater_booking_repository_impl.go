package repository

import (
	"errors"
	"time"

	"surgical-clinic-backend/internal/domain/entity"
	domainRepo "surgical-clinic-backend/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type theaterBookingRepository struct{}

func NewTheaterBookingRepository() domainRepo.TheaterBookingRepository {
	return &theaterBookingRepository{}
}

// liveLock is the single exclusion predicate for unexpired provisional
// bookings. Both the active-lock count and the overlap check go through it so
// the two can never drift apart. Expired provisional rows are never deleted;
// falling out of this predicate is what releases the slot.
func liveLock(now time.Time) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("status = ? AND lock_expires_at > ?", entity.BookingStatusProvisional, now)
	}
}

// theaterLockClass namespaces theater advisory locks so they cannot collide
// with other advisory-lock users sharing the database.
const theaterLockClass = 1217

func (r *theaterBookingRepository) AcquireTheaterLock(db *gorm.DB, theaterID int) error {
	return db.Exec("SELECT pg_advisory_xact_lock(?, ?)", theaterLockClass, theaterID).Error
}

func (r *theaterBookingRepository) Create(db *gorm.DB, booking *entity.TheaterBooking) error {
	return db.Create(booking).Error
}

func (r *theaterBookingRepository) FindByID(db *gorm.DB, id int64) (*entity.TheaterBooking, error) {
	var booking entity.TheaterBooking
	err := db.Where("id = ?", id).First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &booking, nil
}

func (r *theaterBookingRepository) Update(db *gorm.DB, booking *entity.TheaterBooking) error {
	return db.Save(booking).Error
}

func (r *theaterBookingRepository) FindBySurgicalCaseID(db *gorm.DB, surgicalCaseID string) ([]entity.TheaterBooking, error) {
	var bookings []entity.TheaterBooking
	err := db.Where("surgical_case_id = ?", surgicalCaseID).
		Order("created_at DESC").
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *theaterBookingRepository) CountActiveLocks(db *gorm.DB, userID uuid.UUID, now time.Time) (int64, error) {
	var count int64
	err := db.Model(&entity.TheaterBooking{}).
		Scopes(liveLock(now)).
		Where("locked_by = ?", userID).
		Count(&count).Error
	return count, err
}

func (r *theaterBookingRepository) FindConflicting(db *gorm.DB, theaterID int, start, end, now time.Time) (*entity.TheaterBooking, error) {
	// Half-open interval intersection: existing.start < end AND start < existing.end.
	overlap := db.Session(&gorm.Session{NewDB: true}).
		Where("status = ?", entity.BookingStatusConfirmed).
		Or(liveLock(now)(db.Session(&gorm.Session{NewDB: true})))

	var booking entity.TheaterBooking
	err := db.Where("theater_id = ? AND start_time < ? AND ? < end_time", theaterID, end, start).
		Where(overlap).
		Order("start_time ASC").
		First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &booking, nil
}

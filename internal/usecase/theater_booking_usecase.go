package usecase

import (
	"context"
	"errors"
	"time"

	"surgical-clinic-backend/config"
	"surgical-clinic-backend/internal/converter"
	"surgical-clinic-backend/internal/delivery/dto"
	"surgical-clinic-backend/internal/delivery/http/middleware"
	"surgical-clinic-backend/internal/domain/entity"
	"surgical-clinic-backend/internal/domain/repository"
	"surgical-clinic-backend/internal/infrastructure/database"
	"surgical-clinic-backend/internal/service"
	"surgical-clinic-backend/pkg/clock"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrBookingNotFound       = errors.New("booking not found")
	ErrTheaterNotFound       = errors.New("theater not found")
	ErrTheaterInactive       = errors.New("theater is not active")
	ErrCaseNotSchedulable    = errors.New("surgical case is not ready for scheduling")
	ErrSlotLocked            = errors.New("slot conflicts with an existing booking or active lock")
	ErrLockLimitExceeded     = errors.New("active slot lock limit reached")
	ErrLockExpired           = errors.New("slot lock has expired")
	ErrNotLockHolder         = errors.New("only the lock holder can act on this booking")
	ErrBookingNotProvisional = errors.New("booking is not a provisional lock")
)

type TheaterBookingUsecase interface {
	LockSlot(ctx context.Context, req *dto.LockSlotRequest) (*dto.TheaterBookingResponse, error)
	ConfirmBooking(ctx context.Context, bookingID int64) (*dto.TheaterBookingResponse, error)
	ReleaseLock(ctx context.Context, bookingID int64) error
	GetBookingsByCase(ctx context.Context, surgicalCaseID string) ([]dto.TheaterBookingResponse, error)
}

type theaterBookingUsecase struct {
	db           *gorm.DB
	log          *logrus.Logger
	transactor   database.Transactor
	bookingRepo  repository.TheaterBookingRepository
	caseRepo     repository.SurgicalCaseRepository
	theaterRepo  repository.TheaterRepository
	auditService service.AuditService
	notifier     *service.NotificationService
	clock        clock.Clock
	cfg          config.SchedulingConfig
}

func NewTheaterBookingUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	transactor database.Transactor,
	bookingRepo repository.TheaterBookingRepository,
	caseRepo repository.SurgicalCaseRepository,
	theaterRepo repository.TheaterRepository,
	auditService service.AuditService,
	notifier *service.NotificationService,
	clk clock.Clock,
	cfg config.SchedulingConfig,
) TheaterBookingUsecase {
	return &theaterBookingUsecase{
		db:           db,
		log:          log,
		transactor:   transactor,
		bookingRepo:  bookingRepo,
		caseRepo:     caseRepo,
		theaterRepo:  theaterRepo,
		auditService: auditService,
		notifier:     notifier,
		clock:        clk,
		cfg:          cfg,
	}
}

// LockSlot places a provisional hold on a theater slot for a surgical case.
//
// Flow (single transaction):
// 1. Case must exist and be ready for scheduling
// 2. Theater must exist and be active
// 3. Advisory lock on the theater serializes concurrent slot writers
// 4. User must be under the active-lock limit (expired locks don't count)
// 5. Slot must not overlap a confirmed booking or a live provisional lock
// 6. Insert provisional booking with a lock TTL
//
// The overlap check uses half-open intervals: a booking ending exactly when
// another starts is not a conflict.
func (u *theaterBookingUsecase) LockSlot(ctx context.Context, req *dto.LockSlotRequest) (*dto.TheaterBookingResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	now := u.clock.Now().UTC()

	var booking *entity.TheaterBooking
	err := u.transactor.Transaction(ctx, func(tx *gorm.DB) error {
		surgicalCase, err := u.caseRepo.FindByID(tx, req.SurgicalCaseID)
		if err != nil {
			u.log.Warnf("Failed to find surgical case %s: %+v", req.SurgicalCaseID, err)
			return err
		}
		if surgicalCase == nil {
			return ErrSurgicalCaseNotFound
		}
		if surgicalCase.Status != entity.CaseStatusReadyForScheduling {
			return ErrCaseNotSchedulable
		}

		theater, err := u.theaterRepo.FindByID(tx, req.TheaterID)
		if err != nil {
			u.log.Warnf("Failed to find theater %d: %+v", req.TheaterID, err)
			return err
		}
		if theater == nil {
			return ErrTheaterNotFound
		}
		if theater.IsActive != nil && !*theater.IsActive {
			return ErrTheaterInactive
		}

		// Serialize slot writers per theater for the rest of the
		// transaction. Without this, two concurrent locks for overlapping
		// intervals both pass the conflict read below: provisional rows are
		// invisible to each other at read committed and sit outside the
		// confirmed-only exclusion constraint.
		if err := u.bookingRepo.AcquireTheaterLock(tx, req.TheaterID); err != nil {
			u.log.Warnf("Failed to acquire theater lock %d: %+v", req.TheaterID, err)
			return err
		}

		activeLocks, err := u.bookingRepo.CountActiveLocks(tx, userID, now)
		if err != nil {
			u.log.Warnf("Failed to count active locks for user %s: %+v", userID, err)
			return err
		}
		if activeLocks >= int64(u.cfg.MaxActiveLocks) {
			return ErrLockLimitExceeded
		}

		conflict, err := u.bookingRepo.FindConflicting(tx, req.TheaterID, req.StartTime, req.EndTime, now)
		if err != nil {
			u.log.Warnf("Failed to check slot conflicts for theater %d: %+v", req.TheaterID, err)
			return err
		}
		if conflict != nil {
			return ErrSlotLocked
		}

		booking = &entity.TheaterBooking{
			SurgicalCaseID: req.SurgicalCaseID,
			TheaterID:      req.TheaterID,
			StartTime:      req.StartTime,
			EndTime:        req.EndTime,
			Status:         entity.BookingStatusProvisional,
			LockedBy:       userID,
			LockedAt:       now,
			LockExpiresAt:  now.Add(u.cfg.SlotLockTTL),
		}

		if err := u.bookingRepo.Create(tx, booking); err != nil {
			if isExclusionViolation(err) {
				return ErrSlotLocked
			}
			u.log.Warnf("Failed to create provisional booking: %+v", err)
			return err
		}

		return u.auditService.Log(ctx, tx, &userID, entity.AuditActionSlotLock, "theater_booking", req.SurgicalCaseID, map[string]interface{}{
			"theater_id": req.TheaterID,
			"start_time": req.StartTime,
			"end_time":   req.EndTime,
			"expires_at": booking.LockExpiresAt,
		})
	})
	if err != nil {
		return nil, err
	}

	u.notifier.Publish(service.EventBookingLocked, map[string]interface{}{
		"booking_id":       booking.ID,
		"surgical_case_id": booking.SurgicalCaseID,
		"theater_id":       booking.TheaterID,
		"expires_at":       booking.LockExpiresAt,
	})

	u.log.Infof("Slot locked: booking=%d, case=%s, theater=%d, expires=%s",
		booking.ID, booking.SurgicalCaseID, booking.TheaterID, booking.LockExpiresAt.Format(time.RFC3339))
	return converter.TheaterBookingToResponse(booking), nil
}

// ConfirmBooking promotes a live provisional lock to a confirmed booking and
// moves the surgical case to scheduled. Only the lock holder may confirm,
// except admins, who can confirm on anyone's behalf. An expired lock cannot
// be confirmed by anyone; the slot must be locked again.
func (u *theaterBookingUsecase) ConfirmBooking(ctx context.Context, bookingID int64) (*dto.TheaterBookingResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}
	roleID, _ := middleware.GetRoleIDFromContext(ctx)

	now := u.clock.Now().UTC()

	var booking *entity.TheaterBooking
	err := u.transactor.Transaction(ctx, func(tx *gorm.DB) error {
		var err error
		booking, err = u.bookingRepo.FindByID(tx, bookingID)
		if err != nil {
			u.log.Warnf("Failed to find booking %d: %+v", bookingID, err)
			return err
		}
		if booking == nil {
			return ErrBookingNotFound
		}
		if !booking.IsProvisional() {
			return ErrBookingNotProvisional
		}
		// Expiry is checked before authorization: an expired lock cannot be
		// confirmed by anyone.
		if !booking.IsLockActive(now) {
			return ErrLockExpired
		}
		if booking.LockedBy != userID && roleID != entity.RoleIDAdmin {
			return ErrNotLockHolder
		}

		booking.Status = entity.BookingStatusConfirmed
		booking.ConfirmedBy = &userID
		if err := u.bookingRepo.Update(tx, booking); err != nil {
			// Two holders confirming overlapping slots race here; the
			// exclusion constraint on confirmed bookings breaks the tie.
			if isExclusionViolation(err) {
				return ErrSlotLocked
			}
			u.log.Warnf("Failed to confirm booking %d: %+v", bookingID, err)
			return err
		}

		surgicalCase, err := u.caseRepo.FindByID(tx, booking.SurgicalCaseID)
		if err != nil {
			u.log.Warnf("Failed to find surgical case %s: %+v", booking.SurgicalCaseID, err)
			return err
		}
		if surgicalCase == nil {
			return ErrSurgicalCaseNotFound
		}
		if err := surgicalCase.TransitionTo(entity.CaseStatusScheduled); err != nil {
			return err
		}
		if err := u.caseRepo.Update(tx, surgicalCase); err != nil {
			u.log.Warnf("Failed to update surgical case %s: %+v", surgicalCase.ID, err)
			return err
		}

		return u.auditService.Log(ctx, tx, &userID, entity.AuditActionBookingConfirm, "theater_booking", booking.SurgicalCaseID, map[string]interface{}{
			"booking_id": booking.ID,
			"theater_id": booking.TheaterID,
			"start_time": booking.StartTime,
			"end_time":   booking.EndTime,
		})
	})
	if err != nil {
		return nil, err
	}

	u.notifier.Publish(service.EventBookingConfirmed, map[string]interface{}{
		"booking_id":       booking.ID,
		"surgical_case_id": booking.SurgicalCaseID,
		"theater_id":       booking.TheaterID,
	})
	u.notifier.Publish(service.EventCaseStatusChanged, map[string]interface{}{
		"surgical_case_id": booking.SurgicalCaseID,
		"status":           string(entity.CaseStatusScheduled),
	})

	u.log.Infof("Booking confirmed: booking=%d, case=%s, by=%s", booking.ID, booking.SurgicalCaseID, userID)
	return converter.TheaterBookingToResponse(booking), nil
}

// ReleaseLock cancels a provisional lock so the slot frees up immediately
// instead of waiting for expiry. Lock holder or admin only.
func (u *theaterBookingUsecase) ReleaseLock(ctx context.Context, bookingID int64) error {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return errors.New("user not found in context")
	}
	roleID, _ := middleware.GetRoleIDFromContext(ctx)

	return u.transactor.Transaction(ctx, func(tx *gorm.DB) error {
		booking, err := u.bookingRepo.FindByID(tx, bookingID)
		if err != nil {
			u.log.Warnf("Failed to find booking %d: %+v", bookingID, err)
			return err
		}
		if booking == nil {
			return ErrBookingNotFound
		}
		if !booking.IsProvisional() {
			return ErrBookingNotProvisional
		}
		if booking.LockedBy != userID && roleID != entity.RoleIDAdmin {
			return ErrNotLockHolder
		}

		booking.Status = entity.BookingStatusCancelled
		if err := u.bookingRepo.Update(tx, booking); err != nil {
			u.log.Warnf("Failed to release lock %d: %+v", bookingID, err)
			return err
		}

		return u.auditService.Log(ctx, tx, &userID, entity.AuditActionSlotLock, "theater_booking", booking.SurgicalCaseID, map[string]interface{}{
			"booking_id": booking.ID,
			"released":   true,
		})
	})
}

// GetBookingsByCase returns all bookings recorded for a surgical case.
func (u *theaterBookingUsecase) GetBookingsByCase(ctx context.Context, surgicalCaseID string) ([]dto.TheaterBookingResponse, error) {
	bookings, err := u.bookingRepo.FindBySurgicalCaseID(u.db.WithContext(ctx), surgicalCaseID)
	if err != nil {
		u.log.Warnf("Failed to find bookings for case %s: %+v", surgicalCaseID, err)
		return nil, err
	}

	responses := make([]dto.TheaterBookingResponse, 0, len(bookings))
	for i := range bookings {
		responses = append(responses, *converter.TheaterBookingToResponse(&bookings[i]))
	}
	return responses, nil
}

// isExclusionViolation reports whether err is a Postgres exclusion constraint
// violation (SQLSTATE 23P01), raised when two transactions insert overlapping
// theater slots concurrently.
func isExclusionViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23P01"
	}
	return false
}

// isUniqueViolation reports whether err is a Postgres unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

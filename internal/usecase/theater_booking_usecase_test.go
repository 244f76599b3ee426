package usecase

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"surgical-clinic-backend/config"
	"surgical-clinic-backend/internal/delivery/dto"
	"surgical-clinic-backend/internal/delivery/http/middleware"
	"surgical-clinic-backend/internal/domain/entity"
	"surgical-clinic-backend/internal/service"
	"surgical-clinic-backend/pkg/clock"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// fakeTransactor runs the callback directly; the fake repositories ignore
// the transaction handle.
type fakeTransactor struct{}

func (fakeTransactor) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type fakeAuditService struct{}

func (fakeAuditService) Log(ctx context.Context, tx *gorm.DB, userID *uuid.UUID, action, entityName, entityID string, detail interface{}) error {
	return nil
}

func (fakeAuditService) LogChange(ctx context.Context, tx *gorm.DB, userID *uuid.UUID, action, entityName, entityID string, oldValue, newValue interface{}) error {
	return nil
}

type fakeBookingRepo struct {
	bookings       []*entity.TheaterBooking
	nextID         int64
	lockedTheaters []int
	lockErr        error
}

func (r *fakeBookingRepo) AcquireTheaterLock(db *gorm.DB, theaterID int) error {
	if r.lockErr != nil {
		return r.lockErr
	}
	r.lockedTheaters = append(r.lockedTheaters, theaterID)
	return nil
}

func (r *fakeBookingRepo) Create(db *gorm.DB, booking *entity.TheaterBooking) error {
	r.nextID++
	booking.ID = r.nextID
	r.bookings = append(r.bookings, booking)
	return nil
}

func (r *fakeBookingRepo) FindByID(db *gorm.DB, id int64) (*entity.TheaterBooking, error) {
	for _, b := range r.bookings {
		if b.ID == id {
			return b, nil
		}
	}
	return nil, nil
}

func (r *fakeBookingRepo) Update(db *gorm.DB, booking *entity.TheaterBooking) error {
	return nil
}

func (r *fakeBookingRepo) FindBySurgicalCaseID(db *gorm.DB, surgicalCaseID string) ([]entity.TheaterBooking, error) {
	var out []entity.TheaterBooking
	for _, b := range r.bookings {
		if b.SurgicalCaseID == surgicalCaseID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *fakeBookingRepo) CountActiveLocks(db *gorm.DB, userID uuid.UUID, now time.Time) (int64, error) {
	var count int64
	for _, b := range r.bookings {
		if b.LockedBy == userID && b.Status == entity.BookingStatusProvisional && b.LockExpiresAt.After(now) {
			count++
		}
	}
	return count, nil
}

func (r *fakeBookingRepo) FindConflicting(db *gorm.DB, theaterID int, start, end, now time.Time) (*entity.TheaterBooking, error) {
	for _, b := range r.bookings {
		if b.TheaterID != theaterID || !b.Overlaps(start, end) {
			continue
		}
		if b.IsConfirmed() || b.IsLockActive(now) {
			return b, nil
		}
	}
	return nil, nil
}

type fakeCaseRepo struct {
	cases map[string]*entity.SurgicalCase
}

func (r *fakeCaseRepo) Create(db *gorm.DB, c *entity.SurgicalCase) error {
	r.cases[c.ID] = c
	return nil
}

func (r *fakeCaseRepo) FindByID(db *gorm.DB, id string) (*entity.SurgicalCase, error) {
	return r.cases[id], nil
}

func (r *fakeCaseRepo) Update(db *gorm.DB, c *entity.SurgicalCase) error {
	r.cases[c.ID] = c
	return nil
}

func (r *fakeCaseRepo) FindByPatientID(db *gorm.DB, patientID uuid.UUID) ([]entity.SurgicalCase, error) {
	return nil, nil
}

func (r *fakeCaseRepo) FindByStatus(db *gorm.DB, status entity.CaseStatus) ([]entity.SurgicalCase, error) {
	return nil, nil
}

func (r *fakeCaseRepo) SavePlan(db *gorm.DB, plan *entity.CasePlan) error {
	return nil
}

func (r *fakeCaseRepo) FindPlan(db *gorm.DB, surgicalCaseID string) (*entity.CasePlan, error) {
	return nil, nil
}

type fakeTheaterRepo struct {
	theaters map[int]*entity.Theater
}

func (r *fakeTheaterRepo) Create(db *gorm.DB, t *entity.Theater) error { return nil }

func (r *fakeTheaterRepo) FindByID(db *gorm.DB, id int) (*entity.Theater, error) {
	return r.theaters[id], nil
}

func (r *fakeTheaterRepo) FindAll(db *gorm.DB) ([]entity.Theater, error) { return nil, nil }

func (r *fakeTheaterRepo) Update(db *gorm.DB, t *entity.Theater) error { return nil }

func (r *fakeTheaterRepo) Delete(db *gorm.DB, id int) (int64, error) { return 0, nil }

type bookingFixture struct {
	usecase     TheaterBookingUsecase
	bookingRepo *fakeBookingRepo
	caseRepo    *fakeCaseRepo
	clock       *clock.ManagedClock
	base        time.Time
}

func newBookingFixture(t *testing.T) *bookingFixture {
	t.Helper()

	base := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	managed := clock.NewManaged(base)

	log := logrus.New()
	log.SetOutput(io.Discard)

	bookingRepo := &fakeBookingRepo{}
	caseRepo := &fakeCaseRepo{cases: map[string]*entity.SurgicalCase{}}
	theaterRepo := &fakeTheaterRepo{theaters: map[int]*entity.Theater{
		1: {ID: 1, Name: "Theater A"},
		2: {ID: 2, Name: "Theater B"},
	}}

	notifier := service.NewNotificationService(redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"}), log)

	cfg := config.SchedulingConfig{
		SlotLockTTL:    5 * time.Minute,
		MaxActiveLocks: 3,
	}

	uc := NewTheaterBookingUsecase(nil, log, fakeTransactor{}, bookingRepo, caseRepo, theaterRepo, fakeAuditService{}, notifier, managed, cfg)

	return &bookingFixture{
		usecase:     uc,
		bookingRepo: bookingRepo,
		caseRepo:    caseRepo,
		clock:       managed,
		base:        base,
	}
}

func (f *bookingFixture) addReadyCase(id string) {
	f.caseRepo.cases[id] = &entity.SurgicalCase{
		ID:     id,
		Status: entity.CaseStatusReadyForScheduling,
	}
}

func staffContext(userID uuid.UUID, roleID int) context.Context {
	ctx := context.WithValue(context.Background(), middleware.UserIDKey, userID)
	return context.WithValue(ctx, middleware.RoleIDKey, roleID)
}

func lockRequest(caseID string, theaterID int, start, end time.Time) *dto.LockSlotRequest {
	return &dto.LockSlotRequest{
		SurgicalCaseID: caseID,
		TheaterID:      theaterID,
		StartTime:      start,
		EndTime:        end,
	}
}

func TestLockSlot(t *testing.T) {
	surgeon := uuid.New()

	t.Run("locks a free slot provisionally", func(t *testing.T) {
		f := newBookingFixture(t)
		f.addReadyCase("SC-20260310-000001")
		ctx := staffContext(surgeon, entity.RoleIDSurgeon)

		start := f.base.Add(25 * time.Hour)
		resp, err := f.usecase.LockSlot(ctx, lockRequest("SC-20260310-000001", 1, start, start.Add(2*time.Hour)))
		if err != nil {
			t.Fatalf("LockSlot() error = %v", err)
		}
		if resp.Status != string(entity.BookingStatusProvisional) {
			t.Errorf("status = %s, want provisional", resp.Status)
		}
		wantExpiry := f.base.Add(5 * time.Minute)
		if !resp.LockExpiresAt.Equal(wantExpiry) {
			t.Errorf("LockExpiresAt = %v, want %v", resp.LockExpiresAt, wantExpiry)
		}
	})

	t.Run("rejects a case that is not ready for scheduling", func(t *testing.T) {
		f := newBookingFixture(t)
		f.caseRepo.cases["SC-X"] = &entity.SurgicalCase{ID: "SC-X", Status: entity.CaseStatusPlanning}
		ctx := staffContext(surgeon, entity.RoleIDSurgeon)

		start := f.base.Add(25 * time.Hour)
		_, err := f.usecase.LockSlot(ctx, lockRequest("SC-X", 1, start, start.Add(time.Hour)))
		if !errors.Is(err, ErrCaseNotSchedulable) {
			t.Errorf("error = %v, want ErrCaseNotSchedulable", err)
		}
	})

	t.Run("rejects an overlapping live lock", func(t *testing.T) {
		f := newBookingFixture(t)
		f.addReadyCase("SC-A")
		f.addReadyCase("SC-B")
		ctx := staffContext(surgeon, entity.RoleIDSurgeon)

		start := f.base.Add(25 * time.Hour)
		if _, err := f.usecase.LockSlot(ctx, lockRequest("SC-A", 1, start, start.Add(2*time.Hour))); err != nil {
			t.Fatalf("first LockSlot() error = %v", err)
		}

		other := staffContext(uuid.New(), entity.RoleIDSurgeon)
		_, err := f.usecase.LockSlot(other, lockRequest("SC-B", 1, start.Add(time.Hour), start.Add(3*time.Hour)))
		if !errors.Is(err, ErrSlotLocked) {
			t.Errorf("error = %v, want ErrSlotLocked", err)
		}
	})

	t.Run("back-to-back slots do not conflict", func(t *testing.T) {
		f := newBookingFixture(t)
		f.addReadyCase("SC-A")
		f.addReadyCase("SC-B")
		ctx := staffContext(surgeon, entity.RoleIDSurgeon)

		start := f.base.Add(25 * time.Hour)
		if _, err := f.usecase.LockSlot(ctx, lockRequest("SC-A", 1, start, start.Add(2*time.Hour))); err != nil {
			t.Fatalf("first LockSlot() error = %v", err)
		}
		if _, err := f.usecase.LockSlot(ctx, lockRequest("SC-B", 1, start.Add(2*time.Hour), start.Add(4*time.Hour))); err != nil {
			t.Errorf("adjacent LockSlot() error = %v, want nil", err)
		}
	})

	t.Run("same interval in another theater is free", func(t *testing.T) {
		f := newBookingFixture(t)
		f.addReadyCase("SC-A")
		f.addReadyCase("SC-B")
		ctx := staffContext(surgeon, entity.RoleIDSurgeon)

		start := f.base.Add(25 * time.Hour)
		if _, err := f.usecase.LockSlot(ctx, lockRequest("SC-A", 1, start, start.Add(2*time.Hour))); err != nil {
			t.Fatalf("first LockSlot() error = %v", err)
		}
		if _, err := f.usecase.LockSlot(ctx, lockRequest("SC-B", 2, start, start.Add(2*time.Hour))); err != nil {
			t.Errorf("other-theater LockSlot() error = %v, want nil", err)
		}
	})

	t.Run("enforces the active lock limit per user", func(t *testing.T) {
		f := newBookingFixture(t)
		ctx := staffContext(surgeon, entity.RoleIDSurgeon)

		start := f.base.Add(25 * time.Hour)
		for i := 0; i < 3; i++ {
			caseID := string(rune('A' + i))
			f.addReadyCase(caseID)
			slotStart := start.Add(time.Duration(i*3) * time.Hour)
			if _, err := f.usecase.LockSlot(ctx, lockRequest(caseID, 1, slotStart, slotStart.Add(2*time.Hour))); err != nil {
				t.Fatalf("LockSlot() %d error = %v", i, err)
			}
		}

		f.addReadyCase("SC-FOURTH")
		fourth := start.Add(12 * time.Hour)
		_, err := f.usecase.LockSlot(ctx, lockRequest("SC-FOURTH", 1, fourth, fourth.Add(2*time.Hour)))
		if !errors.Is(err, ErrLockLimitExceeded) {
			t.Errorf("error = %v, want ErrLockLimitExceeded", err)
		}

		// Another user is unaffected by this user's locks.
		other := staffContext(uuid.New(), entity.RoleIDSurgeon)
		if _, err := f.usecase.LockSlot(other, lockRequest("SC-FOURTH", 1, fourth, fourth.Add(2*time.Hour))); err != nil {
			t.Errorf("other user LockSlot() error = %v, want nil", err)
		}
	})

	t.Run("takes the per-theater advisory lock before checking conflicts", func(t *testing.T) {
		f := newBookingFixture(t)
		f.addReadyCase("SC-A")
		ctx := staffContext(surgeon, entity.RoleIDSurgeon)

		start := f.base.Add(25 * time.Hour)
		if _, err := f.usecase.LockSlot(ctx, lockRequest("SC-A", 2, start, start.Add(2*time.Hour))); err != nil {
			t.Fatalf("LockSlot() error = %v", err)
		}
		if len(f.bookingRepo.lockedTheaters) != 1 || f.bookingRepo.lockedTheaters[0] != 2 {
			t.Errorf("advisory locks taken = %v, want [2]", f.bookingRepo.lockedTheaters)
		}
	})

	t.Run("advisory lock failure aborts without inserting", func(t *testing.T) {
		f := newBookingFixture(t)
		f.addReadyCase("SC-A")
		f.bookingRepo.lockErr = errors.New("lock timeout")
		ctx := staffContext(surgeon, entity.RoleIDSurgeon)

		start := f.base.Add(25 * time.Hour)
		if _, err := f.usecase.LockSlot(ctx, lockRequest("SC-A", 1, start, start.Add(2*time.Hour))); err == nil {
			t.Fatal("LockSlot() error = nil, want failure")
		}
		if len(f.bookingRepo.bookings) != 0 {
			t.Errorf("bookings = %d, want none", len(f.bookingRepo.bookings))
		}
	})

	t.Run("expired locks free the slot and the limit", func(t *testing.T) {
		f := newBookingFixture(t)
		f.addReadyCase("SC-A")
		f.addReadyCase("SC-B")
		ctx := staffContext(surgeon, entity.RoleIDSurgeon)

		start := f.base.Add(25 * time.Hour)
		if _, err := f.usecase.LockSlot(ctx, lockRequest("SC-A", 1, start, start.Add(2*time.Hour))); err != nil {
			t.Fatalf("first LockSlot() error = %v", err)
		}

		f.clock.WarpForward(6 * time.Minute)

		if _, err := f.usecase.LockSlot(ctx, lockRequest("SC-B", 1, start, start.Add(2*time.Hour))); err != nil {
			t.Errorf("LockSlot() after expiry error = %v, want nil", err)
		}
	})
}

func TestConfirmBooking(t *testing.T) {
	surgeon := uuid.New()

	lockOne := func(t *testing.T, f *bookingFixture, ctx context.Context) int64 {
		t.Helper()
		f.addReadyCase("SC-A")
		start := f.base.Add(25 * time.Hour)
		resp, err := f.usecase.LockSlot(ctx, lockRequest("SC-A", 1, start, start.Add(2*time.Hour)))
		if err != nil {
			t.Fatalf("LockSlot() error = %v", err)
		}
		return resp.ID
	}

	t.Run("holder confirms and the case becomes scheduled", func(t *testing.T) {
		f := newBookingFixture(t)
		ctx := staffContext(surgeon, entity.RoleIDSurgeon)
		bookingID := lockOne(t, f, ctx)

		resp, err := f.usecase.ConfirmBooking(ctx, bookingID)
		if err != nil {
			t.Fatalf("ConfirmBooking() error = %v", err)
		}
		if resp.Status != string(entity.BookingStatusConfirmed) {
			t.Errorf("status = %s, want confirmed", resp.Status)
		}
		if got := f.caseRepo.cases["SC-A"].Status; got != entity.CaseStatusScheduled {
			t.Errorf("case status = %s, want scheduled", got)
		}
	})

	t.Run("non-holder cannot confirm", func(t *testing.T) {
		f := newBookingFixture(t)
		ctx := staffContext(surgeon, entity.RoleIDSurgeon)
		bookingID := lockOne(t, f, ctx)

		other := staffContext(uuid.New(), entity.RoleIDSurgeon)
		_, err := f.usecase.ConfirmBooking(other, bookingID)
		if !errors.Is(err, ErrNotLockHolder) {
			t.Errorf("error = %v, want ErrNotLockHolder", err)
		}
	})

	t.Run("admin may confirm another user's lock", func(t *testing.T) {
		f := newBookingFixture(t)
		ctx := staffContext(surgeon, entity.RoleIDSurgeon)
		bookingID := lockOne(t, f, ctx)

		admin := staffContext(uuid.New(), entity.RoleIDAdmin)
		if _, err := f.usecase.ConfirmBooking(admin, bookingID); err != nil {
			t.Errorf("admin ConfirmBooking() error = %v, want nil", err)
		}
	})

	t.Run("expired lock cannot be confirmed, even by the holder", func(t *testing.T) {
		f := newBookingFixture(t)
		ctx := staffContext(surgeon, entity.RoleIDSurgeon)
		bookingID := lockOne(t, f, ctx)

		f.clock.WarpForward(6 * time.Minute)

		_, err := f.usecase.ConfirmBooking(ctx, bookingID)
		if !errors.Is(err, ErrLockExpired) {
			t.Errorf("error = %v, want ErrLockExpired", err)
		}
		if got := f.caseRepo.cases["SC-A"].Status; got != entity.CaseStatusReadyForScheduling {
			t.Errorf("case status = %s, want ready_for_scheduling (unchanged)", got)
		}
	})

	t.Run("expired lock reports expiry to a non-holder, not authorization", func(t *testing.T) {
		f := newBookingFixture(t)
		ctx := staffContext(surgeon, entity.RoleIDSurgeon)
		bookingID := lockOne(t, f, ctx)

		f.clock.WarpForward(6 * time.Minute)

		other := staffContext(uuid.New(), entity.RoleIDSurgeon)
		_, err := f.usecase.ConfirmBooking(other, bookingID)
		if !errors.Is(err, ErrLockExpired) {
			t.Errorf("error = %v, want ErrLockExpired", err)
		}
	})

	t.Run("unknown booking", func(t *testing.T) {
		f := newBookingFixture(t)
		ctx := staffContext(surgeon, entity.RoleIDSurgeon)

		_, err := f.usecase.ConfirmBooking(ctx, 999)
		if !errors.Is(err, ErrBookingNotFound) {
			t.Errorf("error = %v, want ErrBookingNotFound", err)
		}
	})

	t.Run("confirmed booking cannot be confirmed twice", func(t *testing.T) {
		f := newBookingFixture(t)
		ctx := staffContext(surgeon, entity.RoleIDSurgeon)
		bookingID := lockOne(t, f, ctx)

		if _, err := f.usecase.ConfirmBooking(ctx, bookingID); err != nil {
			t.Fatalf("ConfirmBooking() error = %v", err)
		}
		_, err := f.usecase.ConfirmBooking(ctx, bookingID)
		if !errors.Is(err, ErrBookingNotProvisional) {
			t.Errorf("error = %v, want ErrBookingNotProvisional", err)
		}
	})
}

func TestReleaseLock(t *testing.T) {
	surgeon := uuid.New()

	t.Run("released slot frees immediately", func(t *testing.T) {
		f := newBookingFixture(t)
		f.addReadyCase("SC-A")
		f.addReadyCase("SC-B")
		ctx := staffContext(surgeon, entity.RoleIDSurgeon)

		start := f.base.Add(25 * time.Hour)
		resp, err := f.usecase.LockSlot(ctx, lockRequest("SC-A", 1, start, start.Add(2*time.Hour)))
		if err != nil {
			t.Fatalf("LockSlot() error = %v", err)
		}

		if err := f.usecase.ReleaseLock(ctx, resp.ID); err != nil {
			t.Fatalf("ReleaseLock() error = %v", err)
		}

		if _, err := f.usecase.LockSlot(ctx, lockRequest("SC-B", 1, start, start.Add(2*time.Hour))); err != nil {
			t.Errorf("LockSlot() after release error = %v, want nil", err)
		}
	})

	t.Run("non-holder cannot release", func(t *testing.T) {
		f := newBookingFixture(t)
		f.addReadyCase("SC-A")
		ctx := staffContext(surgeon, entity.RoleIDSurgeon)

		start := f.base.Add(25 * time.Hour)
		resp, err := f.usecase.LockSlot(ctx, lockRequest("SC-A", 1, start, start.Add(2*time.Hour)))
		if err != nil {
			t.Fatalf("LockSlot() error = %v", err)
		}

		other := staffContext(uuid.New(), entity.RoleIDReception)
		if err := f.usecase.ReleaseLock(other, resp.ID); !errors.Is(err, ErrNotLockHolder) {
			t.Errorf("error = %v, want ErrNotLockHolder", err)
		}
	})
}

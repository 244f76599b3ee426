package usecase

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"surgical-clinic-backend/internal/delivery/dto"
	"surgical-clinic-backend/internal/domain/entity"
	"surgical-clinic-backend/internal/service"
	"surgical-clinic-backend/pkg/clock"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// recordingAuditService captures audit actions so tests can assert on the
// trail without a database.
type recordingAuditService struct {
	actions []string
}

func (s *recordingAuditService) Log(ctx context.Context, tx *gorm.DB, userID *uuid.UUID, action, entityName, entityID string, detail interface{}) error {
	s.actions = append(s.actions, action)
	return nil
}

func (s *recordingAuditService) LogChange(ctx context.Context, tx *gorm.DB, userID *uuid.UUID, action, entityName, entityID string, oldValue, newValue interface{}) error {
	s.actions = append(s.actions, action)
	return nil
}

type fakeAppointmentRepo struct {
	appointments map[int64]*entity.Appointment
	nextID       int64
}

func (r *fakeAppointmentRepo) Create(db *gorm.DB, appointment *entity.Appointment) error {
	r.nextID++
	appointment.ID = r.nextID
	r.appointments[appointment.ID] = appointment
	return nil
}

func (r *fakeAppointmentRepo) FindByID(db *gorm.DB, id int64) (*entity.Appointment, error) {
	return r.appointments[id], nil
}

func (r *fakeAppointmentRepo) Update(db *gorm.DB, appointment *entity.Appointment) error {
	r.appointments[appointment.ID] = appointment
	return nil
}

func (r *fakeAppointmentRepo) FindByPatientID(db *gorm.DB, patientID uuid.UUID) ([]entity.Appointment, error) {
	return nil, nil
}

func (r *fakeAppointmentRepo) FindByDoctorAndDay(db *gorm.DB, doctorID uuid.UUID, day time.Time) ([]entity.Appointment, error) {
	return nil, nil
}

func (r *fakeAppointmentRepo) FindDueForNoShowSweep(db *gorm.DB, cutoff time.Time) ([]entity.Appointment, error) {
	return nil, nil
}

type fakePatientRepo struct {
	patients map[uuid.UUID]*entity.Patient
}

func (r *fakePatientRepo) Create(db *gorm.DB, patient *entity.Patient) error { return nil }

func (r *fakePatientRepo) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Patient, error) {
	return r.patients[id], nil
}

func (r *fakePatientRepo) FindByMRN(db *gorm.DB, mrn string) (*entity.Patient, error) {
	return nil, nil
}

func (r *fakePatientRepo) FindAll(db *gorm.DB, page, limit int) ([]entity.Patient, int64, error) {
	return nil, 0, nil
}

func (r *fakePatientRepo) Update(db *gorm.DB, patient *entity.Patient) error { return nil }

type fakeUserRepo struct {
	users map[uuid.UUID]*entity.User
}

func (r *fakeUserRepo) Create(db *gorm.DB, user *entity.User) error { return nil }

func (r *fakeUserRepo) FindByID(db *gorm.DB, id uuid.UUID) (*entity.User, error) {
	return r.users[id], nil
}

func (r *fakeUserRepo) FindByEmail(db *gorm.DB, email string) (*entity.User, error) {
	return nil, nil
}

type appointmentFixture struct {
	usecase   AppointmentUsecase
	apptRepo  *fakeAppointmentRepo
	audit     *recordingAuditService
	clock     *clock.ManagedClock
	base      time.Time
	patientID uuid.UUID
	doctorID  uuid.UUID
}

func newAppointmentFixture(t *testing.T) *appointmentFixture {
	t.Helper()

	base := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	managed := clock.NewManaged(base)

	log := logrus.New()
	log.SetOutput(io.Discard)

	patientID := uuid.New()
	doctorID := uuid.New()

	apptRepo := &fakeAppointmentRepo{appointments: map[int64]*entity.Appointment{}}
	patientRepo := &fakePatientRepo{patients: map[uuid.UUID]*entity.Patient{
		patientID: {ID: patientID, MRN: "MRN-000001", FullName: "Test Patient"},
	}}
	userRepo := &fakeUserRepo{users: map[uuid.UUID]*entity.User{
		doctorID: {ID: doctorID, RoleID: entity.RoleIDDoctor, FullName: "Test Doctor"},
	}}

	audit := &recordingAuditService{}
	notifier := service.NewNotificationService(redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"}), log)

	uc := NewAppointmentUsecase(nil, log, fakeTransactor{}, apptRepo, patientRepo, userRepo, audit, notifier, managed)

	return &appointmentFixture{
		usecase:   uc,
		apptRepo:  apptRepo,
		audit:     audit,
		clock:     managed,
		base:      base,
		patientID: patientID,
		doctorID:  doctorID,
	}
}

func (f *appointmentFixture) book(t *testing.T, ctx context.Context, offset time.Duration) int64 {
	t.Helper()
	resp, err := f.usecase.BookAppointment(ctx, &dto.BookAppointmentRequest{
		PatientID:   f.patientID,
		DoctorID:    f.doctorID,
		ScheduledAt: f.base.Add(offset),
		Type:        string(entity.AppointmentTypeConsultation),
	})
	if err != nil {
		t.Fatalf("BookAppointment() error = %v", err)
	}
	return resp.ID
}

func TestBookAppointment(t *testing.T) {
	reception := uuid.New()

	t.Run("books a pending appointment and audits it", func(t *testing.T) {
		f := newAppointmentFixture(t)
		ctx := staffContext(reception, entity.RoleIDReception)

		resp, err := f.usecase.BookAppointment(ctx, &dto.BookAppointmentRequest{
			PatientID:   f.patientID,
			DoctorID:    f.doctorID,
			ScheduledAt: f.base.Add(24 * time.Hour),
			Type:        string(entity.AppointmentTypeConsultation),
		})
		if err != nil {
			t.Fatalf("BookAppointment() error = %v", err)
		}
		if resp.Status != string(entity.AppointmentStatusPending) {
			t.Errorf("status = %s, want pending", resp.Status)
		}
		if len(f.audit.actions) != 1 || f.audit.actions[0] != entity.AuditActionAppointmentBook {
			t.Errorf("audit actions = %v, want [%s]", f.audit.actions, entity.AuditActionAppointmentBook)
		}
	})

	t.Run("rejects a scheduled time in the past", func(t *testing.T) {
		f := newAppointmentFixture(t)
		ctx := staffContext(reception, entity.RoleIDReception)

		_, err := f.usecase.BookAppointment(ctx, &dto.BookAppointmentRequest{
			PatientID:   f.patientID,
			DoctorID:    f.doctorID,
			ScheduledAt: f.base.Add(-time.Hour),
			Type:        string(entity.AppointmentTypeConsultation),
		})
		if !errors.Is(err, ErrScheduledInPast) {
			t.Errorf("error = %v, want ErrScheduledInPast", err)
		}
	})

	t.Run("rejects an unknown patient", func(t *testing.T) {
		f := newAppointmentFixture(t)
		ctx := staffContext(reception, entity.RoleIDReception)

		_, err := f.usecase.BookAppointment(ctx, &dto.BookAppointmentRequest{
			PatientID:   uuid.New(),
			DoctorID:    f.doctorID,
			ScheduledAt: f.base.Add(24 * time.Hour),
			Type:        string(entity.AppointmentTypeConsultation),
		})
		if !errors.Is(err, ErrPatientNotFound) {
			t.Errorf("error = %v, want ErrPatientNotFound", err)
		}
	})

	t.Run("rejects a doctor without a clinical role", func(t *testing.T) {
		f := newAppointmentFixture(t)
		ctx := staffContext(reception, entity.RoleIDReception)

		_, err := f.usecase.BookAppointment(ctx, &dto.BookAppointmentRequest{
			PatientID:   f.patientID,
			DoctorID:    uuid.New(),
			ScheduledAt: f.base.Add(24 * time.Hour),
			Type:        string(entity.AppointmentTypeConsultation),
		})
		if !errors.Is(err, ErrDoctorNotFound) {
			t.Errorf("error = %v, want ErrDoctorNotFound", err)
		}
	})
}

func TestAppointmentCheckIn(t *testing.T) {
	reception := uuid.New()

	t.Run("on-time check-in moves to scheduled", func(t *testing.T) {
		f := newAppointmentFixture(t)
		ctx := staffContext(reception, entity.RoleIDReception)
		id := f.book(t, ctx, 2*time.Hour)

		f.clock.WarpForward(90 * time.Minute)

		resp, err := f.usecase.CheckIn(ctx, id, &dto.CheckInRequest{})
		if err != nil {
			t.Fatalf("CheckIn() error = %v", err)
		}
		if resp.Status != string(entity.AppointmentStatusScheduled) {
			t.Errorf("status = %s, want scheduled", resp.Status)
		}
		if resp.CheckIn == nil || resp.CheckIn.IsLate {
			t.Errorf("check-in = %+v, want on time", resp.CheckIn)
		}
	})

	t.Run("late check-in records lateness in minutes", func(t *testing.T) {
		f := newAppointmentFixture(t)
		ctx := staffContext(reception, entity.RoleIDReception)
		id := f.book(t, ctx, time.Hour)

		f.clock.WarpForward(80 * time.Minute)

		resp, err := f.usecase.CheckIn(ctx, id, &dto.CheckInRequest{})
		if err != nil {
			t.Fatalf("CheckIn() error = %v", err)
		}
		if resp.CheckIn == nil || !resp.CheckIn.IsLate || resp.CheckIn.LateByMinutes != 20 {
			t.Errorf("check-in = %+v, want late by 20 minutes", resp.CheckIn)
		}
	})

	t.Run("check-in after no-show reverses it", func(t *testing.T) {
		f := newAppointmentFixture(t)
		ctx := staffContext(reception, entity.RoleIDReception)
		id := f.book(t, ctx, time.Hour)

		f.clock.WarpForward(2 * time.Hour)
		if _, err := f.usecase.MarkNoShow(ctx, id, &dto.MarkNoShowRequest{Reason: string(entity.NoShowReasonManual)}); err != nil {
			t.Fatalf("MarkNoShow() error = %v", err)
		}

		resp, err := f.usecase.CheckIn(ctx, id, &dto.CheckInRequest{})
		if err != nil {
			t.Fatalf("CheckIn() error = %v", err)
		}
		if resp.NoShow != nil {
			t.Errorf("no-show info = %+v, want cleared", resp.NoShow)
		}
		if resp.CheckIn == nil || resp.CheckIn.LateByMinutes != 60 {
			t.Errorf("check-in = %+v, want lateness from original scheduled time", resp.CheckIn)
		}
		last := f.audit.actions[len(f.audit.actions)-1]
		if last != entity.AuditActionAppointmentReverse {
			t.Errorf("last audit action = %s, want %s", last, entity.AuditActionAppointmentReverse)
		}
	})

	t.Run("unknown appointment", func(t *testing.T) {
		f := newAppointmentFixture(t)
		ctx := staffContext(reception, entity.RoleIDReception)

		_, err := f.usecase.CheckIn(ctx, 999, &dto.CheckInRequest{})
		if !errors.Is(err, ErrAppointmentNotFound) {
			t.Errorf("error = %v, want ErrAppointmentNotFound", err)
		}
	})
}

func TestAppointmentCancel(t *testing.T) {
	reception := uuid.New()

	t.Run("cancellation is a status change, not a deletion", func(t *testing.T) {
		f := newAppointmentFixture(t)
		ctx := staffContext(reception, entity.RoleIDReception)
		id := f.book(t, ctx, time.Hour)

		resp, err := f.usecase.CancelAppointment(ctx, id)
		if err != nil {
			t.Fatalf("CancelAppointment() error = %v", err)
		}
		if resp.Status != string(entity.AppointmentStatusCancelled) {
			t.Errorf("status = %s, want cancelled", resp.Status)
		}
		if f.apptRepo.appointments[id] == nil {
			t.Error("appointment row removed, want retained")
		}
	})
}

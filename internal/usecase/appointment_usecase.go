package usecase

import (
	"context"
	"errors"
	"strconv"
	"time"

	"surgical-clinic-backend/internal/converter"
	"surgical-clinic-backend/internal/delivery/dto"
	"surgical-clinic-backend/internal/delivery/http/middleware"
	"surgical-clinic-backend/internal/domain/entity"
	"surgical-clinic-backend/internal/domain/repository"
	"surgical-clinic-backend/internal/infrastructure/database"
	"surgical-clinic-backend/internal/service"
	"surgical-clinic-backend/pkg/clock"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrPatientNotFound     = errors.New("patient not found")
	ErrDoctorNotFound      = errors.New("doctor not found")
	ErrScheduledInPast     = errors.New("cannot book an appointment in the past")
)

type AppointmentUsecase interface {
	BookAppointment(ctx context.Context, req *dto.BookAppointmentRequest) (*dto.AppointmentResponse, error)
	GetAppointment(ctx context.Context, id int64) (*dto.AppointmentResponse, error)
	ListByDoctorAndDay(ctx context.Context, doctorID uuid.UUID, day time.Time) (*dto.AppointmentListResponse, error)
	CheckIn(ctx context.Context, id int64, req *dto.CheckInRequest) (*dto.AppointmentResponse, error)
	MarkNoShow(ctx context.Context, id int64, req *dto.MarkNoShowRequest) (*dto.AppointmentResponse, error)
	CancelAppointment(ctx context.Context, id int64) (*dto.AppointmentResponse, error)
}

type appointmentUsecase struct {
	db              *gorm.DB
	log             *logrus.Logger
	transactor      database.Transactor
	appointmentRepo repository.AppointmentRepository
	patientRepo     repository.PatientRepository
	userRepo        repository.UserRepository
	auditService    service.AuditService
	notifier        *service.NotificationService
	clock           clock.Clock
}

func NewAppointmentUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	transactor database.Transactor,
	appointmentRepo repository.AppointmentRepository,
	patientRepo repository.PatientRepository,
	userRepo repository.UserRepository,
	auditService service.AuditService,
	notifier *service.NotificationService,
	clk clock.Clock,
) AppointmentUsecase {
	return &appointmentUsecase{
		db:              db,
		log:             log,
		transactor:      transactor,
		appointmentRepo: appointmentRepo,
		patientRepo:     patientRepo,
		userRepo:        userRepo,
		auditService:    auditService,
		notifier:        notifier,
		clock:           clk,
	}
}

// BookAppointment creates a pending appointment for a patient with a doctor.
func (u *appointmentUsecase) BookAppointment(ctx context.Context, req *dto.BookAppointmentRequest) (*dto.AppointmentResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	if req.ScheduledAt.Before(u.clock.Now().UTC()) {
		return nil, ErrScheduledInPast
	}

	var appointment *entity.Appointment
	err := u.transactor.Transaction(ctx, func(tx *gorm.DB) error {
		patient, err := u.patientRepo.FindByID(tx, req.PatientID)
		if err != nil {
			u.log.Warnf("Failed to find patient %s: %+v", req.PatientID, err)
			return err
		}
		if patient == nil {
			return ErrPatientNotFound
		}

		doctor, err := u.userRepo.FindByID(tx, req.DoctorID)
		if err != nil {
			u.log.Warnf("Failed to find doctor %s: %+v", req.DoctorID, err)
			return err
		}
		if doctor == nil || (doctor.RoleID != entity.RoleIDDoctor && doctor.RoleID != entity.RoleIDSurgeon) {
			return ErrDoctorNotFound
		}

		appointment = &entity.Appointment{
			PatientID:   req.PatientID,
			DoctorID:    req.DoctorID,
			ScheduledAt: req.ScheduledAt,
			Type:        entity.AppointmentType(req.Type),
			Status:      entity.AppointmentStatusPending,
		}
		if err := u.appointmentRepo.Create(tx, appointment); err != nil {
			u.log.Warnf("Failed to create appointment: %+v", err)
			return err
		}

		return u.auditService.Log(ctx, tx, &userID, entity.AuditActionAppointmentBook, "appointment", appointmentEntityID(appointment), map[string]interface{}{
			"patient_id":   req.PatientID,
			"doctor_id":    req.DoctorID,
			"scheduled_at": req.ScheduledAt,
			"type":         req.Type,
		})
	})
	if err != nil {
		return nil, err
	}

	u.notifier.Publish(service.EventAppointmentBooked, map[string]interface{}{
		"appointment_id": appointment.ID,
		"patient_id":     appointment.PatientID,
		"scheduled_at":   appointment.ScheduledAt,
	})

	u.log.Infof("Appointment booked: id=%d, patient=%s, at=%s",
		appointment.ID, appointment.PatientID, appointment.ScheduledAt.Format(time.RFC3339))
	return converter.AppointmentToResponse(appointment), nil
}

func (u *appointmentUsecase) GetAppointment(ctx context.Context, id int64) (*dto.AppointmentResponse, error) {
	appointment, err := u.appointmentRepo.FindByID(u.db.WithContext(ctx), id)
	if err != nil {
		u.log.Warnf("Failed to find appointment %d: %+v", id, err)
		return nil, err
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}

	return converter.AppointmentToResponse(appointment), nil
}

func (u *appointmentUsecase) ListByDoctorAndDay(ctx context.Context, doctorID uuid.UUID, day time.Time) (*dto.AppointmentListResponse, error) {
	appointments, err := u.appointmentRepo.FindByDoctorAndDay(u.db.WithContext(ctx), doctorID, day)
	if err != nil {
		u.log.Warnf("Failed to list appointments for doctor %s: %+v", doctorID, err)
		return nil, err
	}

	return &dto.AppointmentListResponse{
		Appointments: converter.AppointmentsToResponses(appointments),
		Total:        len(appointments),
	}, nil
}

// CheckIn records patient arrival. When the appointment was already marked
// no-show (the patient turned up after auto-detection fired), the no-show is
// reversed and lateness is still computed from the original scheduled time.
func (u *appointmentUsecase) CheckIn(ctx context.Context, id int64, req *dto.CheckInRequest) (*dto.AppointmentResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	checkedInAt := u.clock.Now().UTC()
	if req.CheckedInAt != nil {
		checkedInAt = req.CheckedInAt.UTC()
	}

	var appointment *entity.Appointment
	reversed := false
	err := u.transactor.Transaction(ctx, func(tx *gorm.DB) error {
		var err error
		appointment, err = u.appointmentRepo.FindByID(tx, id)
		if err != nil {
			u.log.Warnf("Failed to find appointment %d: %+v", id, err)
			return err
		}
		if appointment == nil {
			return ErrAppointmentNotFound
		}

		action := entity.AuditActionAppointmentCheckIn
		if appointment.IsNoShow() {
			if err := appointment.ReverseNoShowWithCheckIn(checkedInAt, userID); err != nil {
				return err
			}
			action = entity.AuditActionAppointmentReverse
			reversed = true
		} else {
			if err := appointment.PerformCheckIn(checkedInAt, userID); err != nil {
				return err
			}
		}

		if err := u.appointmentRepo.Update(tx, appointment); err != nil {
			u.log.Warnf("Failed to update appointment %d: %+v", id, err)
			return err
		}

		return u.auditService.Log(ctx, tx, &userID, action, "appointment", appointmentEntityID(appointment), map[string]interface{}{
			"checked_in_at":   checkedInAt,
			"late_by_minutes": appointment.CheckIn.LateByMinutes,
		})
	})
	if err != nil {
		return nil, err
	}

	u.notifier.Publish(service.EventAppointmentCheckIn, map[string]interface{}{
		"appointment_id": appointment.ID,
		"is_late":        appointment.CheckIn.IsLate,
		"reversed":       reversed,
	})

	return converter.AppointmentToResponse(appointment), nil
}

// MarkNoShow records a staff-initiated no-show determination. Automatic
// detection goes through the sweeper, never this endpoint.
func (u *appointmentUsecase) MarkNoShow(ctx context.Context, id int64, req *dto.MarkNoShowRequest) (*dto.AppointmentResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	now := u.clock.Now().UTC()

	var appointment *entity.Appointment
	err := u.transactor.Transaction(ctx, func(tx *gorm.DB) error {
		var err error
		appointment, err = u.appointmentRepo.FindByID(tx, id)
		if err != nil {
			u.log.Warnf("Failed to find appointment %d: %+v", id, err)
			return err
		}
		if appointment == nil {
			return ErrAppointmentNotFound
		}

		if err := appointment.MarkNoShow(now, entity.NoShowReason(req.Reason), req.Notes); err != nil {
			return err
		}
		if err := u.appointmentRepo.Update(tx, appointment); err != nil {
			u.log.Warnf("Failed to update appointment %d: %+v", id, err)
			return err
		}

		return u.auditService.Log(ctx, tx, &userID, entity.AuditActionAppointmentNoShow, "appointment", appointmentEntityID(appointment), map[string]interface{}{
			"reason": req.Reason,
			"notes":  req.Notes,
		})
	})
	if err != nil {
		return nil, err
	}

	u.notifier.Publish(service.EventAppointmentNoShow, map[string]interface{}{
		"appointment_id": appointment.ID,
		"reason":         req.Reason,
	})

	return converter.AppointmentToResponse(appointment), nil
}

// CancelAppointment marks an appointment cancelled. Cancellation is a status,
// never a row deletion.
func (u *appointmentUsecase) CancelAppointment(ctx context.Context, id int64) (*dto.AppointmentResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	var appointment *entity.Appointment
	err := u.transactor.Transaction(ctx, func(tx *gorm.DB) error {
		var err error
		appointment, err = u.appointmentRepo.FindByID(tx, id)
		if err != nil {
			u.log.Warnf("Failed to find appointment %d: %+v", id, err)
			return err
		}
		if appointment == nil {
			return ErrAppointmentNotFound
		}

		if err := appointment.Cancel(); err != nil {
			return err
		}
		if err := u.appointmentRepo.Update(tx, appointment); err != nil {
			u.log.Warnf("Failed to update appointment %d: %+v", id, err)
			return err
		}

		return u.auditService.Log(ctx, tx, &userID, entity.AuditActionAppointmentCancel, "appointment", appointmentEntityID(appointment), nil)
	})
	if err != nil {
		return nil, err
	}

	return converter.AppointmentToResponse(appointment), nil
}

func appointmentEntityID(a *entity.Appointment) string {
	return strconv.FormatInt(a.ID, 10)
}

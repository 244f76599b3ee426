package usecase

import (
	"context"
	"errors"

	"surgical-clinic-backend/internal/converter"
	"surgical-clinic-backend/internal/delivery/dto"
	"surgical-clinic-backend/internal/delivery/http/middleware"
	"surgical-clinic-backend/internal/domain/entity"
	"surgical-clinic-backend/internal/domain/repository"
	"surgical-clinic-backend/internal/infrastructure/database"
	"surgical-clinic-backend/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrConsultationNotFound  = errors.New("consultation not found")
	ErrConsultationExists    = errors.New("a consultation already exists for this appointment")
	ErrAppointmentNotArrived = errors.New("patient has not checked in for this appointment")
)

type ConsultationUsecase interface {
	StartConsultation(ctx context.Context, req *dto.StartConsultationRequest) (*dto.ConsultationResponse, error)
	GetConsultation(ctx context.Context, id uuid.UUID) (*dto.ConsultationResponse, error)
	SaveDraft(ctx context.Context, id uuid.UUID, req *dto.SaveConsultationDraftRequest) (*dto.ConsultationResponse, error)
	CompleteConsultation(ctx context.Context, id uuid.UUID) (*dto.ConsultationResponse, error)
}

type consultationUsecase struct {
	db               *gorm.DB
	log              *logrus.Logger
	transactor       database.Transactor
	consultationRepo repository.ConsultationRepository
	appointmentRepo  repository.AppointmentRepository
	auditService     service.AuditService
	notifier         *service.NotificationService
}

func NewConsultationUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	transactor database.Transactor,
	consultationRepo repository.ConsultationRepository,
	appointmentRepo repository.AppointmentRepository,
	auditService service.AuditService,
	notifier *service.NotificationService,
) ConsultationUsecase {
	return &consultationUsecase{
		db:               db,
		log:              log,
		transactor:       transactor,
		consultationRepo: consultationRepo,
		appointmentRepo:  appointmentRepo,
		auditService:     auditService,
		notifier:         notifier,
	}
}

// StartConsultation opens a clinical note for a checked-in appointment. One
// consultation per appointment; the unique index backs up the read check.
func (u *consultationUsecase) StartConsultation(ctx context.Context, req *dto.StartConsultationRequest) (*dto.ConsultationResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	var consultation *entity.Consultation
	err := u.transactor.Transaction(ctx, func(tx *gorm.DB) error {
		appointment, err := u.appointmentRepo.FindByID(tx, req.AppointmentID)
		if err != nil {
			u.log.Warnf("Failed to find appointment %d: %+v", req.AppointmentID, err)
			return err
		}
		if appointment == nil {
			return ErrAppointmentNotFound
		}
		if !appointment.IsCheckedIn() {
			return ErrAppointmentNotArrived
		}

		existing, err := u.consultationRepo.FindByAppointmentID(tx, req.AppointmentID)
		if err != nil {
			u.log.Warnf("Failed to check existing consultation for appointment %d: %+v", req.AppointmentID, err)
			return err
		}
		if existing != nil {
			return ErrConsultationExists
		}

		consultation = &entity.Consultation{
			AppointmentID: req.AppointmentID,
			PatientID:     appointment.PatientID,
			DoctorID:      appointment.DoctorID,
			Status:        entity.ConsultationStatusInProgress,
			VersionToken:  uuid.New().String(),
		}
		if err := u.consultationRepo.Create(tx, consultation); err != nil {
			if isUniqueViolation(err) {
				return ErrConsultationExists
			}
			u.log.Warnf("Failed to create consultation: %+v", err)
			return err
		}

		return u.auditService.Log(ctx, tx, &userID, entity.AuditActionConsultationSave, "consultation", consultation.ID.String(), map[string]interface{}{
			"appointment_id": req.AppointmentID,
			"started":        true,
		})
	})
	if err != nil {
		return nil, err
	}

	u.log.Infof("Consultation started: id=%s, appointment=%d", consultation.ID, consultation.AppointmentID)
	return converter.ConsultationToResponse(consultation), nil
}

func (u *consultationUsecase) GetConsultation(ctx context.Context, id uuid.UUID) (*dto.ConsultationResponse, error) {
	consultation, err := u.consultationRepo.FindByID(u.db.WithContext(ctx), id)
	if err != nil {
		u.log.Warnf("Failed to find consultation %s: %+v", id, err)
		return nil, err
	}
	if consultation == nil {
		return nil, ErrConsultationNotFound
	}

	return converter.ConsultationToResponse(consultation), nil
}

// SaveDraft applies one draft save under optimistic concurrency. A stale
// version token fails the whole save; the caller must reload and re-apply.
func (u *consultationUsecase) SaveDraft(ctx context.Context, id uuid.UUID, req *dto.SaveConsultationDraftRequest) (*dto.ConsultationResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	var consultation *entity.Consultation
	err := u.transactor.Transaction(ctx, func(tx *gorm.DB) error {
		var err error
		consultation, err = u.consultationRepo.FindByID(tx, id)
		if err != nil {
			u.log.Warnf("Failed to find consultation %s: %+v", id, err)
			return err
		}
		if consultation == nil {
			return ErrConsultationNotFound
		}

		patch := entity.ConsultationPatch{
			Subjective:     req.Subjective,
			Examination:    req.Examination,
			Assessment:     req.Assessment,
			Recommendation: req.Recommendation,
		}
		if err := consultation.ApplyDraft(req.VersionToken, patch); err != nil {
			return err
		}

		if err := u.consultationRepo.Update(tx, consultation); err != nil {
			u.log.Warnf("Failed to save consultation draft %s: %+v", id, err)
			return err
		}

		return u.auditService.Log(ctx, tx, &userID, entity.AuditActionConsultationSave, "consultation", consultation.ID.String(), nil)
	})
	if err != nil {
		return nil, err
	}

	return converter.ConsultationToResponse(consultation), nil
}

// CompleteConsultation finalizes the note and completes the underlying
// appointment in the same transaction.
func (u *consultationUsecase) CompleteConsultation(ctx context.Context, id uuid.UUID) (*dto.ConsultationResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	var consultation *entity.Consultation
	err := u.transactor.Transaction(ctx, func(tx *gorm.DB) error {
		var err error
		consultation, err = u.consultationRepo.FindByID(tx, id)
		if err != nil {
			u.log.Warnf("Failed to find consultation %s: %+v", id, err)
			return err
		}
		if consultation == nil {
			return ErrConsultationNotFound
		}

		if err := consultation.Complete(); err != nil {
			return err
		}
		if err := u.consultationRepo.Update(tx, consultation); err != nil {
			u.log.Warnf("Failed to complete consultation %s: %+v", id, err)
			return err
		}

		appointment, err := u.appointmentRepo.FindByID(tx, consultation.AppointmentID)
		if err != nil {
			u.log.Warnf("Failed to find appointment %d: %+v", consultation.AppointmentID, err)
			return err
		}
		if appointment == nil {
			return ErrAppointmentNotFound
		}
		if err := appointment.Complete(); err != nil {
			return err
		}
		if err := u.appointmentRepo.Update(tx, appointment); err != nil {
			u.log.Warnf("Failed to complete appointment %d: %+v", appointment.ID, err)
			return err
		}

		return u.auditService.Log(ctx, tx, &userID, entity.AuditActionConsultationDone, "consultation", consultation.ID.String(), map[string]interface{}{
			"appointment_id": consultation.AppointmentID,
		})
	})
	if err != nil {
		return nil, err
	}

	u.notifier.Publish(service.EventConsultationDone, map[string]interface{}{
		"consultation_id": consultation.ID,
		"patient_id":      consultation.PatientID,
	})

	u.log.Infof("Consultation completed: id=%s", consultation.ID)
	return converter.ConsultationToResponse(consultation), nil
}

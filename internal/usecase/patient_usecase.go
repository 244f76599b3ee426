package usecase

import (
	"context"
	"errors"
	"time"

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
	ErrMRNAlreadyExists  = errors.New("MRN already exists")
	ErrInvalidDateFormat = errors.New("invalid date format, use YYYY-MM-DD")
)

type PatientUsecase interface {
	CreatePatient(ctx context.Context, req *dto.CreatePatientRequest) (*dto.PatientResponse, error)
	GetPatient(ctx context.Context, id uuid.UUID) (*dto.PatientResponse, error)
	ListPatients(ctx context.Context, page, limit int) (*dto.PatientListResponse, error)
	UpdatePatient(ctx context.Context, id uuid.UUID, req *dto.UpdatePatientRequest) (*dto.PatientResponse, error)
}

type patientUsecase struct {
	db           *gorm.DB
	log          *logrus.Logger
	transactor   database.Transactor
	patientRepo  repository.PatientRepository
	auditService service.AuditService
}

func NewPatientUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	transactor database.Transactor,
	patientRepo repository.PatientRepository,
	auditService service.AuditService,
) PatientUsecase {
	return &patientUsecase{
		db:           db,
		log:          log,
		transactor:   transactor,
		patientRepo:  patientRepo,
		auditService: auditService,
	}
}

// CreatePatient registers a patient record. Patients are clinical records
// entered by reception, not self-registered accounts.
func (u *patientUsecase) CreatePatient(ctx context.Context, req *dto.CreatePatientRequest) (*dto.PatientResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	dob, err := time.Parse("2006-01-02", req.DateOfBirth)
	if err != nil {
		return nil, ErrInvalidDateFormat
	}

	var patient *entity.Patient
	err = u.transactor.Transaction(ctx, func(tx *gorm.DB) error {
		patient = &entity.Patient{
			MRN:         req.MRN,
			FullName:    req.FullName,
			DateOfBirth: dob,
			Gender:      req.Gender,
			PhoneNumber: req.PhoneNumber,
			Address:     req.Address,
		}

		if err := u.patientRepo.Create(tx, patient); err != nil {
			if isUniqueViolation(err) {
				return ErrMRNAlreadyExists
			}
			u.log.Warnf("Failed to create patient: %+v", err)
			return err
		}

		return u.auditService.Log(ctx, tx, &userID, entity.AuditActionPatientCreate, "patient", patient.ID.String(), map[string]interface{}{
			"mrn": patient.MRN,
		})
	})
	if err != nil {
		return nil, err
	}

	u.log.Infof("Patient created: id=%s, mrn=%s", patient.ID, patient.MRN)
	return converter.PatientToResponse(patient), nil
}

func (u *patientUsecase) GetPatient(ctx context.Context, id uuid.UUID) (*dto.PatientResponse, error) {
	patient, err := u.patientRepo.FindByID(u.db.WithContext(ctx), id)
	if err != nil {
		u.log.Warnf("Failed to find patient %s: %+v", id, err)
		return nil, err
	}
	if patient == nil {
		return nil, ErrPatientNotFound
	}

	return converter.PatientToResponse(patient), nil
}

func (u *patientUsecase) ListPatients(ctx context.Context, page, limit int) (*dto.PatientListResponse, error) {
	patients, total, err := u.patientRepo.FindAll(u.db.WithContext(ctx), page, limit)
	if err != nil {
		u.log.Warnf("Failed to list patients: %+v", err)
		return nil, err
	}

	return &dto.PatientListResponse{
		Patients: converter.PatientsToResponses(patients),
		Total:    total,
	}, nil
}

func (u *patientUsecase) UpdatePatient(ctx context.Context, id uuid.UUID, req *dto.UpdatePatientRequest) (*dto.PatientResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	var patient *entity.Patient
	err := u.transactor.Transaction(ctx, func(tx *gorm.DB) error {
		var err error
		patient, err = u.patientRepo.FindByID(tx, id)
		if err != nil {
			u.log.Warnf("Failed to find patient %s: %+v", id, err)
			return err
		}
		if patient == nil {
			return ErrPatientNotFound
		}

		if req.FullName != "" {
			patient.FullName = req.FullName
		}
		if req.PhoneNumber != "" {
			patient.PhoneNumber = req.PhoneNumber
		}
		if req.Address != "" {
			patient.Address = req.Address
		}

		if err := u.patientRepo.Update(tx, patient); err != nil {
			u.log.Warnf("Failed to update patient %s: %+v", id, err)
			return err
		}

		return u.auditService.Log(ctx, tx, &userID, entity.AuditActionPatientUpdate, "patient", patient.ID.String(), nil)
	})
	if err != nil {
		return nil, err
	}

	return converter.PatientToResponse(patient), nil
}

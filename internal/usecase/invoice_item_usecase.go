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
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var ErrInvalidUnitPrice = errors.New("invalid unit price")

type InvoiceItemUsecase interface {
	CreateInvoiceItem(ctx context.Context, req *dto.CreateInvoiceItemRequest) (*dto.InvoiceItemResponse, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID) (*dto.InvoiceItemListResponse, error)
}

type invoiceItemUsecase struct {
	db           *gorm.DB
	log          *logrus.Logger
	transactor   database.Transactor
	invoiceRepo  repository.InvoiceItemRepository
	patientRepo  repository.PatientRepository
	auditService service.AuditService
}

func NewInvoiceItemUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	transactor database.Transactor,
	invoiceRepo repository.InvoiceItemRepository,
	patientRepo repository.PatientRepository,
	auditService service.AuditService,
) InvoiceItemUsecase {
	return &invoiceItemUsecase{
		db:           db,
		log:          log,
		transactor:   transactor,
		invoiceRepo:  invoiceRepo,
		patientRepo:  patientRepo,
		auditService: auditService,
	}
}

// CreateInvoiceItem records one billable line for a patient. Prices are
// decimal strings on the wire; float arithmetic never touches money.
func (u *invoiceItemUsecase) CreateInvoiceItem(ctx context.Context, req *dto.CreateInvoiceItemRequest) (*dto.InvoiceItemResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	unitPrice, err := decimal.NewFromString(req.UnitPrice)
	if err != nil || unitPrice.IsNegative() {
		return nil, ErrInvalidUnitPrice
	}

	var item *entity.InvoiceItem
	err = u.transactor.Transaction(ctx, func(tx *gorm.DB) error {
		patient, err := u.patientRepo.FindByID(tx, req.PatientID)
		if err != nil {
			u.log.Warnf("Failed to find patient %s: %+v", req.PatientID, err)
			return err
		}
		if patient == nil {
			return ErrPatientNotFound
		}

		item = &entity.InvoiceItem{
			PatientID:      req.PatientID,
			ConsultationID: req.ConsultationID,
			Description:    req.Description,
			Quantity:       req.Quantity,
			UnitPrice:      unitPrice,
		}

		if err := u.invoiceRepo.Create(tx, item); err != nil {
			u.log.Warnf("Failed to create invoice item: %+v", err)
			return err
		}

		return u.auditService.Log(ctx, tx, &userID, entity.AuditActionInvoiceItemCreate, "invoice_item", item.ID.String(), map[string]interface{}{
			"patient_id":  req.PatientID,
			"description": req.Description,
			"amount":      unitPrice.Mul(decimal.NewFromInt(int64(req.Quantity))).String(),
		})
	})
	if err != nil {
		return nil, err
	}

	return converter.InvoiceItemToResponse(item), nil
}

func (u *invoiceItemUsecase) ListByPatient(ctx context.Context, patientID uuid.UUID) (*dto.InvoiceItemListResponse, error) {
	items, err := u.invoiceRepo.FindByPatientID(u.db.WithContext(ctx), patientID)
	if err != nil {
		u.log.Warnf("Failed to list invoice items for patient %s: %+v", patientID, err)
		return nil, err
	}

	return &dto.InvoiceItemListResponse{
		Items: converter.InvoiceItemsToResponses(items),
		Total: len(items),
	}, nil
}

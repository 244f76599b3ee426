package usecase

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	"surgical-clinic-backend/internal/converter"
	"surgical-clinic-backend/internal/delivery/dto"
	"surgical-clinic-backend/internal/delivery/http/middleware"
	"surgical-clinic-backend/internal/domain/entity"
	"surgical-clinic-backend/internal/domain/repository"
	"surgical-clinic-backend/internal/infrastructure/database"
	"surgical-clinic-backend/internal/service"
	"surgical-clinic-backend/pkg/clock"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrSurgicalCaseNotFound   = errors.New("surgical case not found")
	ErrCasePlanNotFound       = errors.New("case plan not found")
	ErrChecklistIncomplete    = errors.New("case plan checklist is incomplete")
	ErrConsultationIncomplete = errors.New("consultation must be completed before opening a surgical case")
)

// TimelineValidationError carries the per-field findings of a rejected
// timeline write so the handler can report all of them at once.
type TimelineValidationError struct {
	Findings []entity.TimelineFieldError
}

func (e *TimelineValidationError) Error() string {
	parts := make([]string, len(e.Findings))
	for i, f := range e.Findings {
		parts[i] = fmt.Sprintf("%s: %s", f.Field, f.Message)
	}
	return "timeline validation failed: " + strings.Join(parts, "; ")
}

type SurgicalCaseUsecase interface {
	CreateCase(ctx context.Context, req *dto.CreateSurgicalCaseRequest) (*dto.SurgicalCaseResponse, error)
	GetCase(ctx context.Context, id string) (*dto.SurgicalCaseResponse, error)
	ListByStatus(ctx context.Context, status string) (*dto.SurgicalCaseListResponse, error)
	SavePlan(ctx context.Context, caseID string, req *dto.SaveCasePlanRequest) (*dto.CasePlanResponse, error)
	SubmitForScheduling(ctx context.Context, caseID string) (*dto.SurgicalCaseResponse, error)
	StartPrep(ctx context.Context, caseID string) (*dto.SurgicalCaseResponse, error)
	EnterTheater(ctx context.Context, caseID string) (*dto.SurgicalCaseResponse, error)
	RecordTimelineEvent(ctx context.Context, caseID string, req *dto.RecordTimelineEventRequest) (*dto.TimelineResponse, error)
	MoveToRecovery(ctx context.Context, caseID string) (*dto.SurgicalCaseResponse, error)
	CompleteCase(ctx context.Context, caseID string) (*dto.SurgicalCaseResponse, error)
	CancelCase(ctx context.Context, caseID string) (*dto.SurgicalCaseResponse, error)
}

type surgicalCaseUsecase struct {
	db               *gorm.DB
	log              *logrus.Logger
	transactor       database.Transactor
	caseRepo         repository.SurgicalCaseRepository
	consultationRepo repository.ConsultationRepository
	auditService     service.AuditService
	notifier         *service.NotificationService
	clock            clock.Clock
}

func NewSurgicalCaseUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	transactor database.Transactor,
	caseRepo repository.SurgicalCaseRepository,
	consultationRepo repository.ConsultationRepository,
	auditService service.AuditService,
	notifier *service.NotificationService,
	clk clock.Clock,
) SurgicalCaseUsecase {
	return &surgicalCaseUsecase{
		db:               db,
		log:              log,
		transactor:       transactor,
		caseRepo:         caseRepo,
		consultationRepo: consultationRepo,
		auditService:     auditService,
		notifier:         notifier,
		clock:            clk,
	}
}

// CreateCase opens a draft surgical case from a completed consultation. The
// patient and primary surgeon come from the consultation record.
func (u *surgicalCaseUsecase) CreateCase(ctx context.Context, req *dto.CreateSurgicalCaseRequest) (*dto.SurgicalCaseResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	var surgicalCase *entity.SurgicalCase
	err := u.transactor.Transaction(ctx, func(tx *gorm.DB) error {
		consultation, err := u.consultationRepo.FindByID(tx, req.ConsultationID)
		if err != nil {
			u.log.Warnf("Failed to find consultation %s: %+v", req.ConsultationID, err)
			return err
		}
		if consultation == nil {
			return ErrConsultationNotFound
		}
		if consultation.Status != entity.ConsultationStatusCompleted {
			return ErrConsultationIncomplete
		}

		consultationID := req.ConsultationID
		surgicalCase = &entity.SurgicalCase{
			ID:               generateCaseID(u.clock.Now().UTC()),
			PatientID:        consultation.PatientID,
			PrimarySurgeonID: consultation.DoctorID,
			ConsultationID:   &consultationID,
			Status:           entity.CaseStatusDraft,
			Urgency:          entity.CaseUrgency(req.Urgency),
			Diagnosis:        req.Diagnosis,
			ProcedureName:    req.ProcedureName,
		}

		if err := u.caseRepo.Create(tx, surgicalCase); err != nil {
			u.log.Warnf("Failed to create surgical case: %+v", err)
			return err
		}

		return u.auditService.Log(ctx, tx, &userID, entity.AuditActionCaseCreate, "surgical_case", surgicalCase.ID, map[string]interface{}{
			"consultation_id": req.ConsultationID,
			"urgency":         req.Urgency,
			"procedure":       req.ProcedureName,
		})
	})
	if err != nil {
		return nil, err
	}

	u.log.Infof("Surgical case created: id=%s, patient=%s", surgicalCase.ID, surgicalCase.PatientID)
	return converter.SurgicalCaseToResponse(surgicalCase), nil
}

func (u *surgicalCaseUsecase) GetCase(ctx context.Context, id string) (*dto.SurgicalCaseResponse, error) {
	surgicalCase, err := u.caseRepo.FindByID(u.db.WithContext(ctx), id)
	if err != nil {
		u.log.Warnf("Failed to find surgical case %s: %+v", id, err)
		return nil, err
	}
	if surgicalCase == nil {
		return nil, ErrSurgicalCaseNotFound
	}

	return converter.SurgicalCaseToResponse(surgicalCase), nil
}

func (u *surgicalCaseUsecase) ListByStatus(ctx context.Context, status string) (*dto.SurgicalCaseListResponse, error) {
	cases, err := u.caseRepo.FindByStatus(u.db.WithContext(ctx), entity.CaseStatus(status))
	if err != nil {
		u.log.Warnf("Failed to list surgical cases by status %s: %+v", status, err)
		return nil, err
	}

	return &dto.SurgicalCaseListResponse{
		Cases: converter.SurgicalCasesToResponses(cases),
		Total: len(cases),
	}, nil
}

// SavePlan writes one draft of the pre-surgical checklist under optimistic
// concurrency. A stale version token fails the whole save; nothing merges.
// The first plan save moves a draft case into planning.
func (u *surgicalCaseUsecase) SavePlan(ctx context.Context, caseID string, req *dto.SaveCasePlanRequest) (*dto.CasePlanResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	var plan *entity.CasePlan
	err := u.transactor.Transaction(ctx, func(tx *gorm.DB) error {
		surgicalCase, err := u.caseRepo.FindByID(tx, caseID)
		if err != nil {
			u.log.Warnf("Failed to find surgical case %s: %+v", caseID, err)
			return err
		}
		if surgicalCase == nil {
			return ErrSurgicalCaseNotFound
		}
		if surgicalCase.IsTerminal() {
			return fmt.Errorf("%w: case is %s", entity.ErrInvalidState, surgicalCase.Status)
		}

		plan, err = u.caseRepo.FindPlan(tx, caseID)
		if err != nil {
			u.log.Warnf("Failed to find case plan %s: %+v", caseID, err)
			return err
		}
		if plan == nil {
			plan = &entity.CasePlan{SurgicalCaseID: caseID}
		}

		patch := entity.CasePlanPatch{
			ProcedurePlan:    req.ProcedurePlan,
			RiskAssessment:   req.RiskAssessment,
			ConsentConfirmed: req.ConsentConfirmed,
			ImageryReviewed:  req.ImageryReviewed,
			ImplantRequired:  req.ImplantRequired,
			ImplantDetails:   req.ImplantDetails,
		}
		if err := plan.ApplyDraft(req.VersionToken, patch); err != nil {
			return err
		}

		if err := u.caseRepo.SavePlan(tx, plan); err != nil {
			u.log.Warnf("Failed to save case plan %s: %+v", caseID, err)
			return err
		}

		if surgicalCase.Status == entity.CaseStatusDraft {
			if err := surgicalCase.TransitionTo(entity.CaseStatusPlanning); err != nil {
				return err
			}
			if err := u.caseRepo.Update(tx, surgicalCase); err != nil {
				u.log.Warnf("Failed to update surgical case %s: %+v", caseID, err)
				return err
			}
		}

		return u.auditService.Log(ctx, tx, &userID, entity.AuditActionCasePlanSave, "case_plan", caseID, map[string]interface{}{
			"readiness": string(plan.ReadinessStatus()),
		})
	})
	if err != nil {
		return nil, err
	}

	return converter.CasePlanToResponse(plan), nil
}

// SubmitForScheduling gates the ready_for_scheduling transition on checklist
// completeness. The state machine enforces topology; this gate is business.
func (u *surgicalCaseUsecase) SubmitForScheduling(ctx context.Context, caseID string) (*dto.SurgicalCaseResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	var surgicalCase *entity.SurgicalCase
	err := u.transactor.Transaction(ctx, func(tx *gorm.DB) error {
		var err error
		surgicalCase, err = u.caseRepo.FindByID(tx, caseID)
		if err != nil {
			u.log.Warnf("Failed to find surgical case %s: %+v", caseID, err)
			return err
		}
		if surgicalCase == nil {
			return ErrSurgicalCaseNotFound
		}

		plan, err := u.caseRepo.FindPlan(tx, caseID)
		if err != nil {
			u.log.Warnf("Failed to find case plan %s: %+v", caseID, err)
			return err
		}
		if plan == nil {
			return ErrCasePlanNotFound
		}
		if !plan.ReadyForSurgery() {
			return fmt.Errorf("%w: missing %s", ErrChecklistIncomplete, strings.Join(plan.MissingChecklistItems(), ", "))
		}

		if err := surgicalCase.TransitionTo(entity.CaseStatusReadyForScheduling); err != nil {
			return err
		}
		if err := u.caseRepo.Update(tx, surgicalCase); err != nil {
			u.log.Warnf("Failed to update surgical case %s: %+v", caseID, err)
			return err
		}

		return u.auditService.Log(ctx, tx, &userID, entity.AuditActionCaseTransition, "surgical_case", caseID, map[string]interface{}{
			"status": string(entity.CaseStatusReadyForScheduling),
		})
	})
	if err != nil {
		return nil, err
	}

	u.publishStatusChange(surgicalCase)
	return converter.SurgicalCaseToResponse(surgicalCase), nil
}

func (u *surgicalCaseUsecase) StartPrep(ctx context.Context, caseID string) (*dto.SurgicalCaseResponse, error) {
	return u.transitionCase(ctx, caseID, entity.CaseStatusInPrep)
}

func (u *surgicalCaseUsecase) EnterTheater(ctx context.Context, caseID string) (*dto.SurgicalCaseResponse, error) {
	return u.transitionCase(ctx, caseID, entity.CaseStatusInTheater)
}

func (u *surgicalCaseUsecase) MoveToRecovery(ctx context.Context, caseID string) (*dto.SurgicalCaseResponse, error) {
	return u.transitionCase(ctx, caseID, entity.CaseStatusRecovery)
}

func (u *surgicalCaseUsecase) CompleteCase(ctx context.Context, caseID string) (*dto.SurgicalCaseResponse, error) {
	return u.transitionCase(ctx, caseID, entity.CaseStatusCompleted)
}

func (u *surgicalCaseUsecase) CancelCase(ctx context.Context, caseID string) (*dto.SurgicalCaseResponse, error) {
	return u.transitionCase(ctx, caseID, entity.CaseStatusCancelled)
}

// RecordTimelineEvent writes one intraoperative timestamp. The candidate
// timeline is validated before anything persists; a rejected write leaves the
// stored timeline untouched and reports every finding.
func (u *surgicalCaseUsecase) RecordTimelineEvent(ctx context.Context, caseID string, req *dto.RecordTimelineEventRequest) (*dto.TimelineResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	now := u.clock.Now().UTC()

	var surgicalCase *entity.SurgicalCase
	err := u.transactor.Transaction(ctx, func(tx *gorm.DB) error {
		var err error
		surgicalCase, err = u.caseRepo.FindByID(tx, caseID)
		if err != nil {
			u.log.Warnf("Failed to find surgical case %s: %+v", caseID, err)
			return err
		}
		if surgicalCase == nil {
			return ErrSurgicalCaseNotFound
		}
		if surgicalCase.IsTerminal() {
			return fmt.Errorf("%w: case is %s", entity.ErrInvalidState, surgicalCase.Status)
		}

		candidate := surgicalCase.Timeline
		if err := candidate.SetField(entity.TimelineField(req.Field), req.Timestamp); err != nil {
			return err
		}

		validation := candidate.Validate(now)
		if !validation.Valid {
			return &TimelineValidationError{Findings: validation.Errors}
		}

		surgicalCase.Timeline = candidate
		if err := u.caseRepo.Update(tx, surgicalCase); err != nil {
			u.log.Warnf("Failed to record timeline event for case %s: %+v", caseID, err)
			return err
		}

		return u.auditService.Log(ctx, tx, &userID, entity.AuditActionTimelineRecord, "surgical_case", caseID, map[string]interface{}{
			"field":     req.Field,
			"timestamp": req.Timestamp,
		})
	})
	if err != nil {
		return nil, err
	}

	return converter.TimelineToResponse(&surgicalCase.Timeline, surgicalCase.Status), nil
}

// transitionCase applies one state-machine transition with audit and event
// publication. Illegal transitions surface entity.ErrInvalidTransition.
func (u *surgicalCaseUsecase) transitionCase(ctx context.Context, caseID string, target entity.CaseStatus) (*dto.SurgicalCaseResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	var surgicalCase *entity.SurgicalCase
	err := u.transactor.Transaction(ctx, func(tx *gorm.DB) error {
		var err error
		surgicalCase, err = u.caseRepo.FindByID(tx, caseID)
		if err != nil {
			u.log.Warnf("Failed to find surgical case %s: %+v", caseID, err)
			return err
		}
		if surgicalCase == nil {
			return ErrSurgicalCaseNotFound
		}

		previous := surgicalCase.Status
		if err := surgicalCase.TransitionTo(target); err != nil {
			return err
		}
		if err := u.caseRepo.Update(tx, surgicalCase); err != nil {
			u.log.Warnf("Failed to update surgical case %s: %+v", caseID, err)
			return err
		}

		return u.auditService.LogChange(ctx, tx, &userID, entity.AuditActionCaseTransition, "surgical_case", caseID, string(previous), string(target))
	})
	if err != nil {
		return nil, err
	}

	u.publishStatusChange(surgicalCase)
	u.log.Infof("Surgical case transitioned: id=%s, status=%s", surgicalCase.ID, surgicalCase.Status)
	return converter.SurgicalCaseToResponse(surgicalCase), nil
}

func (u *surgicalCaseUsecase) publishStatusChange(surgicalCase *entity.SurgicalCase) {
	u.notifier.Publish(service.EventCaseStatusChanged, map[string]interface{}{
		"surgical_case_id": surgicalCase.ID,
		"status":           string(surgicalCase.Status),
	})
}

// generateCaseID builds a human-readable case identifier, e.g. SC-20260825-4F2A1C.
func generateCaseID(now time.Time) string {
	b := make([]byte, 3)
	rand.Read(b)
	return fmt.Sprintf("SC-%s-%02X%02X%02X", now.Format("20060102"), b[0], b[1], b[2])
}

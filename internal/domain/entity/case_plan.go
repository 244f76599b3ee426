package entity

import (
	"fmt"

	"time"

	"github.com/google/uuid"
)

// CaseReadiness summarizes how far the pre-surgical checklist has progressed
type CaseReadiness string

const (
	CaseReadinessNotStarted CaseReadiness = "not_started"
	CaseReadinessInProgress CaseReadiness = "in_progress"
	CaseReadinessReady      CaseReadiness = "ready"
)

// CasePlan is the pre-surgical planning checklist for a case. Draft edits are
// guarded by an opaque version token so concurrent editors cannot silently
// overwrite each other.
type CasePlan struct {
	SurgicalCaseID   string `gorm:"type:varchar(30);primaryKey" json:"surgical_case_id"`
	ProcedurePlan    string `gorm:"type:text" json:"procedure_plan,omitempty"`
	RiskAssessment   string `gorm:"type:text" json:"risk_assessment,omitempty"`
	ConsentConfirmed bool   `gorm:"not null;default:false" json:"consent_confirmed"`
	ImageryReviewed  bool   `gorm:"not null;default:false" json:"imagery_reviewed"`
	ImplantRequired  bool   `gorm:"not null;default:false" json:"implant_required"`
	ImplantDetails   string `gorm:"type:text" json:"implant_details,omitempty"`
	VersionToken     string `gorm:"type:varchar(36);not null" json:"version_token"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (CasePlan) TableName() string {
	return "case_plans"
}

// CasePlanPatch carries the draft fields of one save. Nil members are left
// unchanged.
type CasePlanPatch struct {
	ProcedurePlan    *string
	RiskAssessment   *string
	ConsentConfirmed *bool
	ImageryReviewed  *bool
	ImplantRequired  *bool
	ImplantDetails   *string
}

// ApplyDraft applies patch under optimistic concurrency. An empty incoming
// token means a first save and proceeds unconditionally; a mismatched token
// fails without touching the plan. Every successful save mints a fresh token.
func (p *CasePlan) ApplyDraft(incomingToken string, patch CasePlanPatch) error {
	if incomingToken != "" && incomingToken != p.VersionToken {
		return fmt.Errorf("%w: case plan", ErrVersionConflict)
	}

	if patch.ProcedurePlan != nil {
		p.ProcedurePlan = *patch.ProcedurePlan
	}
	if patch.RiskAssessment != nil {
		p.RiskAssessment = *patch.RiskAssessment
	}
	if patch.ConsentConfirmed != nil {
		p.ConsentConfirmed = *patch.ConsentConfirmed
	}
	if patch.ImageryReviewed != nil {
		p.ImageryReviewed = *patch.ImageryReviewed
	}
	if patch.ImplantRequired != nil {
		p.ImplantRequired = *patch.ImplantRequired
	}
	if patch.ImplantDetails != nil {
		p.ImplantDetails = *patch.ImplantDetails
	}

	p.VersionToken = uuid.New().String()
	return nil
}

// MissingChecklistItems returns the human-readable checklist items still
// outstanding, in fixed order.
func (p *CasePlan) MissingChecklistItems() []string {
	var missing []string
	if p.ProcedurePlan == "" {
		missing = append(missing, "procedure plan")
	}
	if p.RiskAssessment == "" {
		missing = append(missing, "risk assessment")
	}
	if !p.ConsentConfirmed {
		missing = append(missing, "patient consent")
	}
	if !p.ImageryReviewed {
		missing = append(missing, "imagery review")
	}
	if p.ImplantRequired && p.ImplantDetails == "" {
		missing = append(missing, "implant details")
	}
	return missing
}

// ReadyForSurgery is the readiness gate for scheduling: true once every
// checklist item is complete.
func (p *CasePlan) ReadyForSurgery() bool {
	return len(p.MissingChecklistItems()) == 0
}

// ReadinessStatus derives the coarse readiness state from the checklist.
func (p *CasePlan) ReadinessStatus() CaseReadiness {
	missing := p.MissingChecklistItems()
	switch {
	case len(missing) == 0:
		return CaseReadinessReady
	case p.ProcedurePlan != "" || p.RiskAssessment != "" || p.ConsentConfirmed || p.ImageryReviewed:
		return CaseReadinessInProgress
	default:
		return CaseReadinessNotStarted
	}
}

package entity

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func completePlan() *CasePlan {
	return &CasePlan{
		SurgicalCaseID:   "SC-20250601-000001",
		ProcedurePlan:    "arthroscopic partial meniscectomy",
		RiskAssessment:   "ASA II, no anticoagulants",
		ConsentConfirmed: true,
		ImageryReviewed:  true,
		VersionToken:     uuid.New().String(),
	}
}

func TestCasePlanReadiness(t *testing.T) {
	t.Run("empty plan is not started", func(t *testing.T) {
		p := &CasePlan{}
		if p.ReadinessStatus() != CaseReadinessNotStarted {
			t.Fatalf("got %s, want not_started", p.ReadinessStatus())
		}
		if p.ReadyForSurgery() {
			t.Fatal("empty plan must not be ready")
		}
	})

	t.Run("partial plan is in progress", func(t *testing.T) {
		p := &CasePlan{ProcedurePlan: "total hip replacement"}
		if p.ReadinessStatus() != CaseReadinessInProgress {
			t.Fatalf("got %s, want in_progress", p.ReadinessStatus())
		}
	})

	t.Run("complete checklist is ready", func(t *testing.T) {
		p := completePlan()
		if !p.ReadyForSurgery() {
			t.Fatalf("expected ready, missing %v", p.MissingChecklistItems())
		}
		if p.ReadinessStatus() != CaseReadinessReady {
			t.Fatalf("got %s, want ready", p.ReadinessStatus())
		}
	})

	t.Run("implant details required only when implant is needed", func(t *testing.T) {
		p := completePlan()
		p.ImplantRequired = true
		if p.ReadyForSurgery() {
			t.Fatal("implant case without details must not be ready")
		}
		p.ImplantDetails = "cementless acetabular cup, 52mm"
		if !p.ReadyForSurgery() {
			t.Fatalf("expected ready, missing %v", p.MissingChecklistItems())
		}
	})

	t.Run("missing items listed in fixed order", func(t *testing.T) {
		p := &CasePlan{ProcedurePlan: "laparoscopic cholecystectomy"}
		missing := p.MissingChecklistItems()
		want := []string{"risk assessment", "patient consent", "imagery review"}
		if len(missing) != len(want) {
			t.Fatalf("missing = %v, want %v", missing, want)
		}
		for i := range want {
			if missing[i] != want[i] {
				t.Fatalf("missing = %v, want %v", missing, want)
			}
		}
	})
}

func TestCasePlanApplyDraft(t *testing.T) {
	t.Run("stale token leaves plan untouched", func(t *testing.T) {
		p := completePlan()
		prev := p.VersionToken
		err := p.ApplyDraft(uuid.New().String(), CasePlanPatch{ProcedurePlan: strPtr("changed")})
		if !errors.Is(err, ErrVersionConflict) {
			t.Fatalf("expected ErrVersionConflict, got %v", err)
		}
		if p.ProcedurePlan == "changed" || p.VersionToken != prev {
			t.Fatal("plan mutated despite conflict")
		}
	})

	t.Run("current token applies and rotates", func(t *testing.T) {
		p := completePlan()
		prev := p.VersionToken
		err := p.ApplyDraft(prev, CasePlanPatch{
			ConsentConfirmed: boolPtr(false),
			RiskAssessment:   strPtr("updated risk notes"),
		})
		if err != nil {
			t.Fatalf("save failed: %v", err)
		}
		if p.ConsentConfirmed || p.RiskAssessment != "updated risk notes" {
			t.Fatal("patch not applied")
		}
		if p.VersionToken == prev {
			t.Fatal("token must rotate on write")
		}
	})
}

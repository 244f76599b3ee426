package entity

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestConsultationApplyDraft(t *testing.T) {
	t.Run("first save without token mints one", func(t *testing.T) {
		c := &Consultation{Status: ConsultationStatusInProgress}
		err := c.ApplyDraft("", ConsultationPatch{Subjective: strPtr("knee pain for 3 weeks")})
		if err != nil {
			t.Fatalf("first save failed: %v", err)
		}
		if c.VersionToken == "" {
			t.Fatal("expected a version token after first save")
		}
		if c.Subjective != "knee pain for 3 weeks" {
			t.Errorf("patch not applied: %q", c.Subjective)
		}
	})

	t.Run("matching token succeeds and rotates the token", func(t *testing.T) {
		c := &Consultation{Status: ConsultationStatusInProgress, VersionToken: uuid.New().String()}
		prev := c.VersionToken
		if err := c.ApplyDraft(prev, ConsultationPatch{Assessment: strPtr("meniscal tear suspected")}); err != nil {
			t.Fatalf("save failed: %v", err)
		}
		if c.VersionToken == prev {
			t.Fatal("version token must change on every write")
		}
	})

	t.Run("stale token fails without mutation", func(t *testing.T) {
		c := &Consultation{
			Status:       ConsultationStatusInProgress,
			Subjective:   "original",
			VersionToken: uuid.New().String(),
		}
		prev := c.VersionToken
		err := c.ApplyDraft(uuid.New().String(), ConsultationPatch{Subjective: strPtr("clobbered")})
		if !errors.Is(err, ErrVersionConflict) {
			t.Fatalf("expected ErrVersionConflict, got %v", err)
		}
		if c.Subjective != "original" || c.VersionToken != prev {
			t.Fatal("record mutated despite version conflict")
		}
	})

	t.Run("completed consultation rejects drafts", func(t *testing.T) {
		c := &Consultation{Status: ConsultationStatusCompleted, VersionToken: uuid.New().String()}
		err := c.ApplyDraft(c.VersionToken, ConsultationPatch{Subjective: strPtr("late edit")})
		if !errors.Is(err, ErrInvalidState) {
			t.Fatalf("expected ErrInvalidState, got %v", err)
		}
	})

	t.Run("nil patch members leave fields unchanged", func(t *testing.T) {
		c := &Consultation{
			Status:      ConsultationStatusInProgress,
			Subjective:  "keep me",
			Examination: "keep me too",
		}
		if err := c.ApplyDraft("", ConsultationPatch{Assessment: strPtr("new")}); err != nil {
			t.Fatalf("save failed: %v", err)
		}
		if c.Subjective != "keep me" || c.Examination != "keep me too" {
			t.Fatal("unpatched fields were overwritten")
		}
	})
}

func TestConsultationComplete(t *testing.T) {
	c := &Consultation{Status: ConsultationStatusInProgress}
	if err := c.Complete(); err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if err := c.Complete(); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState on double complete, got %v", err)
	}
}

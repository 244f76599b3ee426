package entity

import (
	"errors"
	"testing"
)

var allCaseStatuses = []CaseStatus{
	CaseStatusDraft,
	CaseStatusPlanning,
	CaseStatusReadyForScheduling,
	CaseStatusScheduled,
	CaseStatusInPrep,
	CaseStatusInTheater,
	CaseStatusRecovery,
	CaseStatusCompleted,
	CaseStatusCancelled,
}

func TestCaseTransitionTable(t *testing.T) {
	legal := map[CaseStatus][]CaseStatus{
		CaseStatusDraft:              {CaseStatusPlanning, CaseStatusCancelled},
		CaseStatusPlanning:           {CaseStatusReadyForScheduling, CaseStatusCancelled},
		CaseStatusReadyForScheduling: {CaseStatusScheduled, CaseStatusPlanning, CaseStatusCancelled},
		CaseStatusScheduled:          {CaseStatusInPrep, CaseStatusCancelled},
		CaseStatusInPrep:             {CaseStatusInTheater, CaseStatusCancelled},
		CaseStatusInTheater:          {CaseStatusRecovery},
		CaseStatusRecovery:           {CaseStatusCompleted},
		CaseStatusCompleted:          {},
		CaseStatusCancelled:          {},
	}

	for _, from := range allCaseStatuses {
		for _, to := range allCaseStatuses {
			want := false
			for _, allowed := range legal[from] {
				if allowed == to {
					want = true
				}
			}

			c := &SurgicalCase{ID: "SC-20250601-000001", Status: from}
			err := c.TransitionTo(to)
			if want && err != nil {
				t.Errorf("%s -> %s should be allowed, got %v", from, to, err)
			}
			if !want {
				if !errors.Is(err, ErrInvalidTransition) {
					t.Errorf("%s -> %s should fail with ErrInvalidTransition, got %v", from, to, err)
				}
				if c.Status != from {
					t.Errorf("rejected transition mutated status: %s -> %s", from, c.Status)
				}
			}
			if want && c.Status != to {
				t.Errorf("allowed transition did not apply: %s -> %s left %s", from, to, c.Status)
			}
		}
	}
}

func TestCaseTerminalStates(t *testing.T) {
	for _, status := range []CaseStatus{CaseStatusCompleted, CaseStatusCancelled} {
		c := &SurgicalCase{Status: status}
		if !c.IsTerminal() {
			t.Errorf("%s should be terminal", status)
		}
	}
	c := &SurgicalCase{Status: CaseStatusInTheater}
	if c.IsTerminal() {
		t.Error("in_theater should not be terminal")
	}
}

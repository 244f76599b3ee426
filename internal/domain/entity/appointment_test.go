package entity

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

var (
	testScheduledAt = time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	testStaffID     = uuid.MustParse("6f1d2e3c-0000-4000-8000-000000000001")
)

func newTestAppointment() *Appointment {
	return &Appointment{
		ID:          1,
		PatientID:   uuid.New(),
		DoctorID:    uuid.New(),
		ScheduledAt: testScheduledAt,
		Type:        AppointmentTypeConsultation,
		Status:      AppointmentStatusPending,
	}
}

func TestPerformCheckInLateness(t *testing.T) {
	tests := []struct {
		name        string
		checkedInAt time.Time
		wantLate    bool
		wantMinutes int
	}{
		{"exactly on time", testScheduledAt, false, 0},
		{"five minutes early", testScheduledAt.Add(-5 * time.Minute), false, 0},
		{"thirty seconds late", testScheduledAt.Add(30 * time.Second), true, 1},
		{"ninety seconds late", testScheduledAt.Add(90 * time.Second), true, 2},
		{"fifteen minutes late", testScheduledAt.Add(15 * time.Minute), true, 15},
		{"one minute late", testScheduledAt.Add(time.Minute), true, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appt := newTestAppointment()
			if err := appt.PerformCheckIn(tt.checkedInAt, testStaffID); err != nil {
				t.Fatalf("check-in failed: %v", err)
			}
			if appt.CheckIn == nil {
				t.Fatal("expected CheckInInfo to be set")
			}
			if appt.CheckIn.IsLate != tt.wantLate {
				t.Errorf("IsLate = %v, want %v", appt.CheckIn.IsLate, tt.wantLate)
			}
			if appt.CheckIn.LateByMinutes != tt.wantMinutes {
				t.Errorf("LateByMinutes = %d, want %d", appt.CheckIn.LateByMinutes, tt.wantMinutes)
			}
			if appt.Status != AppointmentStatusScheduled {
				t.Errorf("pending appointment should become scheduled on check-in, got %s", appt.Status)
			}
		})
	}
}

func TestPerformCheckInInvalidStates(t *testing.T) {
	t.Run("double check-in", func(t *testing.T) {
		appt := newTestAppointment()
		if err := appt.PerformCheckIn(testScheduledAt, testStaffID); err != nil {
			t.Fatalf("first check-in failed: %v", err)
		}
		if err := appt.PerformCheckIn(testScheduledAt, testStaffID); !errors.Is(err, ErrInvalidState) {
			t.Fatalf("expected ErrInvalidState, got %v", err)
		}
	})

	for _, status := range []AppointmentStatus{AppointmentStatusCancelled, AppointmentStatusCompleted} {
		t.Run(string(status), func(t *testing.T) {
			appt := newTestAppointment()
			appt.Status = status
			if err := appt.PerformCheckIn(testScheduledAt, testStaffID); !errors.Is(err, ErrInvalidState) {
				t.Fatalf("expected ErrInvalidState for %s appointment, got %v", status, err)
			}
		})
	}
}

func TestMarkNoShow(t *testing.T) {
	now := testScheduledAt.Add(40 * time.Minute)

	t.Run("success", func(t *testing.T) {
		appt := newTestAppointment()
		if err := appt.MarkNoShow(now, NoShowReasonPatientCalled, "patient called to say they cannot come"); err != nil {
			t.Fatalf("mark no-show failed: %v", err)
		}
		if appt.Status != AppointmentStatusNoShow {
			t.Errorf("status = %s, want no_show", appt.Status)
		}
		if appt.NoShow == nil || appt.NoShow.Reason != NoShowReasonPatientCalled {
			t.Errorf("unexpected NoShowInfo: %+v", appt.NoShow)
		}
	})

	t.Run("rejected when already no-show", func(t *testing.T) {
		appt := newTestAppointment()
		if err := appt.MarkNoShow(now, NoShowReasonManual, ""); err != nil {
			t.Fatalf("first mark failed: %v", err)
		}
		if err := appt.MarkNoShow(now, NoShowReasonManual, ""); !errors.Is(err, ErrInvalidState) {
			t.Fatalf("expected ErrInvalidState on repeat no-show, got %v", err)
		}
	})

	t.Run("rejected when checked in", func(t *testing.T) {
		appt := newTestAppointment()
		if err := appt.PerformCheckIn(testScheduledAt, testStaffID); err != nil {
			t.Fatalf("check-in failed: %v", err)
		}
		if err := appt.MarkNoShow(now, NoShowReasonManual, ""); !errors.Is(err, ErrInvalidState) {
			t.Fatalf("expected ErrInvalidState after check-in, got %v", err)
		}
	})
}

func TestAutoDetectNoShow(t *testing.T) {
	threshold := 30 * time.Minute

	t.Run("below threshold leaves appointment unchanged", func(t *testing.T) {
		appt := newTestAppointment()
		if changed := appt.AutoDetectNoShow(testScheduledAt.Add(20*time.Minute), threshold); changed {
			t.Fatal("expected no change at +20 minutes")
		}
		if appt.Status != AppointmentStatusPending || appt.NoShow != nil {
			t.Fatal("appointment was mutated despite not crossing threshold")
		}
	})

	t.Run("past threshold transitions to no-show", func(t *testing.T) {
		appt := newTestAppointment()
		now := testScheduledAt.Add(35 * time.Minute)
		if changed := appt.AutoDetectNoShow(now, threshold); !changed {
			t.Fatal("expected transition at +35 minutes")
		}
		if appt.Status != AppointmentStatusNoShow {
			t.Errorf("status = %s, want no_show", appt.Status)
		}
		if appt.NoShow == nil || appt.NoShow.Reason != NoShowReasonAuto {
			t.Errorf("expected auto reason, got %+v", appt.NoShow)
		}
	})

	t.Run("never overrides a check-in", func(t *testing.T) {
		appt := newTestAppointment()
		if err := appt.PerformCheckIn(testScheduledAt.Add(90*time.Minute), testStaffID); err != nil {
			t.Fatalf("check-in failed: %v", err)
		}
		if changed := appt.AutoDetectNoShow(testScheduledAt.Add(6*time.Hour), threshold); changed {
			t.Fatal("auto-detect must never override a checked-in appointment")
		}
		if appt.NoShow != nil {
			t.Fatal("NoShowInfo set on a checked-in appointment")
		}
	})

	t.Run("idempotent on existing no-show", func(t *testing.T) {
		appt := newTestAppointment()
		now := testScheduledAt.Add(time.Hour)
		if changed := appt.AutoDetectNoShow(now, threshold); !changed {
			t.Fatal("expected first detection to apply")
		}
		firstAt := appt.NoShow.NoShowAt
		if changed := appt.AutoDetectNoShow(now.Add(time.Hour), threshold); changed {
			t.Fatal("second detection should be a no-op")
		}
		if !appt.NoShow.NoShowAt.Equal(firstAt) {
			t.Fatal("NoShowInfo was rewritten by repeated detection")
		}
	})
}

func TestReverseNoShowWithCheckIn(t *testing.T) {
	t.Run("requires an existing no-show", func(t *testing.T) {
		appt := newTestAppointment()
		err := appt.ReverseNoShowWithCheckIn(testScheduledAt, testStaffID)
		if !errors.Is(err, ErrInvalidState) {
			t.Fatalf("expected ErrInvalidState, got %v", err)
		}
	})

	t.Run("clears no-show and recomputes lateness from scheduled time", func(t *testing.T) {
		appt := newTestAppointment()
		if err := appt.MarkNoShow(testScheduledAt.Add(45*time.Minute), NoShowReasonAuto, ""); err != nil {
			t.Fatalf("mark no-show failed: %v", err)
		}

		checkedInAt := testScheduledAt.Add(50 * time.Minute)
		if err := appt.ReverseNoShowWithCheckIn(checkedInAt, testStaffID); err != nil {
			t.Fatalf("reversal failed: %v", err)
		}
		if appt.NoShow != nil {
			t.Fatal("NoShowInfo should be cleared")
		}
		if appt.CheckIn == nil {
			t.Fatal("expected CheckInInfo after reversal")
		}
		if appt.CheckIn.LateByMinutes != 50 {
			t.Errorf("lateness = %d, want 50 (measured from scheduled time)", appt.CheckIn.LateByMinutes)
		}
	})
}

// Check-in and no-show must never coexist, whichever order transitions run in.
func TestCheckInNoShowExclusive(t *testing.T) {
	now := testScheduledAt.Add(time.Hour)

	appt := newTestAppointment()
	_ = appt.PerformCheckIn(now, testStaffID)
	_ = appt.MarkNoShow(now, NoShowReasonManual, "")
	appt.AutoDetectNoShow(now.Add(time.Hour), 30*time.Minute)
	if appt.IsCheckedIn() && appt.IsNoShow() {
		t.Fatal("appointment is both checked-in and no-show")
	}

	appt = newTestAppointment()
	_ = appt.MarkNoShow(now, NoShowReasonManual, "")
	_ = appt.PerformCheckIn(now, testStaffID)
	if appt.IsCheckedIn() && appt.IsNoShow() {
		t.Fatal("appointment is both checked-in and no-show")
	}
	if err := appt.ReverseNoShowWithCheckIn(now, testStaffID); err != nil {
		t.Fatalf("reversal failed: %v", err)
	}
	if appt.IsCheckedIn() && appt.IsNoShow() {
		t.Fatal("appointment is both checked-in and no-show after reversal")
	}
}

func TestAppointmentCancelAndComplete(t *testing.T) {
	appt := newTestAppointment()
	if err := appt.Complete(); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("complete without check-in should fail, got %v", err)
	}

	if err := appt.PerformCheckIn(testScheduledAt, testStaffID); err != nil {
		t.Fatalf("check-in failed: %v", err)
	}
	if err := appt.Complete(); err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if err := appt.Cancel(); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("cancelling a completed appointment should fail, got %v", err)
	}
}

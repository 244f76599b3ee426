package entity

import (
	"testing"
	"time"
)

func tp(t time.Time) *time.Time { return &t }

func TestTimelineValidateOrdering(t *testing.T) {
	now := time.Date(2025, 6, 2, 14, 0, 0, 0, time.UTC)
	base := now.Add(-4 * time.Hour)

	t.Run("empty timeline is valid", func(t *testing.T) {
		tl := &OperativeTimeline{}
		res := tl.Validate(now)
		if !res.Valid || len(res.Errors) != 0 {
			t.Fatalf("expected valid, got %+v", res)
		}
	})

	t.Run("fully populated strictly increasing is valid", func(t *testing.T) {
		tl := &OperativeTimeline{
			WheelsIn:        tp(base),
			AnesthesiaStart: tp(base.Add(10 * time.Minute)),
			IncisionTime:    tp(base.Add(25 * time.Minute)),
			ClosureTime:     tp(base.Add(115 * time.Minute)),
			AnesthesiaEnd:   tp(base.Add(125 * time.Minute)),
			WheelsOut:       tp(base.Add(135 * time.Minute)),
		}
		res := tl.Validate(now)
		if !res.Valid {
			t.Fatalf("expected valid, got errors %+v", res.Errors)
		}
	})

	t.Run("closure before incision is rejected", func(t *testing.T) {
		tl := &OperativeTimeline{
			IncisionTime: tp(base.Add(30 * time.Minute)),
			ClosureTime:  tp(base.Add(10 * time.Minute)),
		}
		res := tl.Validate(now)
		if res.Valid {
			t.Fatal("expected invalid timeline")
		}
		if len(res.Errors) != 1 || res.Errors[0].Field != TimelineFieldClosureTime {
			t.Fatalf("expected one closure_time error, got %+v", res.Errors)
		}
	})

	t.Run("equal adjacent timestamps are rejected", func(t *testing.T) {
		tl := &OperativeTimeline{
			WheelsIn:        tp(base),
			AnesthesiaStart: tp(base),
		}
		if res := tl.Validate(now); res.Valid {
			t.Fatal("equal timestamps must not validate")
		}
	})

	t.Run("gaps skip to the nearest populated neighbor", func(t *testing.T) {
		// anesthesia_start and closure_time are absent: incision is compared
		// against wheels_in, anesthesia_end against incision.
		tl := &OperativeTimeline{
			WheelsIn:      tp(base),
			IncisionTime:  tp(base.Add(20 * time.Minute)),
			AnesthesiaEnd: tp(base.Add(90 * time.Minute)),
		}
		if res := tl.Validate(now); !res.Valid {
			t.Fatalf("expected valid sparse timeline, got %+v", res.Errors)
		}

		tl.AnesthesiaEnd = tp(base.Add(10 * time.Minute))
		if res := tl.Validate(now); res.Valid {
			t.Fatal("anesthesia_end before its populated predecessor must fail")
		}
	})
}

func TestTimelineValidateRange(t *testing.T) {
	now := time.Date(2025, 6, 2, 14, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		value time.Time
		valid bool
	}{
		{"just inside past bound", now.Add(-47 * time.Hour), true},
		{"more than 48h in the past", now.Add(-49 * time.Hour), false},
		{"four minutes in the future", now.Add(4 * time.Minute), true},
		{"six minutes in the future", now.Add(6 * time.Minute), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tl := &OperativeTimeline{WheelsIn: tp(tt.value)}
			res := tl.Validate(now)
			if res.Valid != tt.valid {
				t.Fatalf("valid = %v, want %v (errors %+v)", res.Valid, tt.valid, res.Errors)
			}
		})
	}

	t.Run("multiple violations accumulate", func(t *testing.T) {
		tl := &OperativeTimeline{
			WheelsIn:  tp(now.Add(-50 * time.Hour)),
			WheelsOut: tp(now.Add(10 * time.Minute)),
		}
		res := tl.Validate(now)
		if len(res.Errors) != 2 {
			t.Fatalf("expected 2 range errors, got %+v", res.Errors)
		}
	})
}

func TestDerivedDurations(t *testing.T) {
	base := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)

	t.Run("nil when endpoints missing", func(t *testing.T) {
		tl := &OperativeTimeline{WheelsIn: tp(base)}
		d := tl.DerivedDurations()
		if d.ORTimeMinutes != nil || d.SurgeryTimeMinutes != nil || d.PrepTimeMinutes != nil ||
			d.CloseOutTimeMinutes != nil || d.AnesthesiaTimeMinutes != nil {
			t.Fatalf("expected all nil durations, got %+v", d)
		}
	})

	t.Run("rounded to nearest minute", func(t *testing.T) {
		tl := &OperativeTimeline{
			WheelsIn:  tp(base),
			WheelsOut: tp(base.Add(90 * time.Second)),
		}
		d := tl.DerivedDurations()
		if d.ORTimeMinutes == nil || *d.ORTimeMinutes != 2 {
			t.Fatalf("90s should round to 2 minutes, got %v", d.ORTimeMinutes)
		}
	})

	t.Run("full set", func(t *testing.T) {
		tl := &OperativeTimeline{
			WheelsIn:        tp(base),
			AnesthesiaStart: tp(base.Add(5 * time.Minute)),
			IncisionTime:    tp(base.Add(20 * time.Minute)),
			ClosureTime:     tp(base.Add(110 * time.Minute)),
			AnesthesiaEnd:   tp(base.Add(120 * time.Minute)),
			WheelsOut:       tp(base.Add(130 * time.Minute)),
		}
		d := tl.DerivedDurations()
		checks := []struct {
			name string
			got  *int
			want int
		}{
			{"or", d.ORTimeMinutes, 130},
			{"surgery", d.SurgeryTimeMinutes, 90},
			{"prep", d.PrepTimeMinutes, 20},
			{"closeout", d.CloseOutTimeMinutes, 20},
			{"anesthesia", d.AnesthesiaTimeMinutes, 115},
		}
		for _, c := range checks {
			if c.got == nil || *c.got != c.want {
				t.Errorf("%s time = %v, want %d", c.name, c.got, c.want)
			}
		}
	})
}

func TestMissingItemsForStatus(t *testing.T) {
	base := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)

	t.Run("nothing expected before in_theater", func(t *testing.T) {
		tl := &OperativeTimeline{}
		for _, status := range []CaseStatus{CaseStatusDraft, CaseStatusPlanning, CaseStatusScheduled, CaseStatusInPrep} {
			if missing := tl.MissingItemsForStatus(status); len(missing) != 0 {
				t.Errorf("status %s should expect no timeline fields, got %+v", status, missing)
			}
		}
	})

	t.Run("in_theater expects the first three", func(t *testing.T) {
		tl := &OperativeTimeline{WheelsIn: tp(base)}
		missing := tl.MissingItemsForStatus(CaseStatusInTheater)
		if len(missing) != 2 {
			t.Fatalf("expected 2 missing items, got %+v", missing)
		}
		if missing[0].Field != TimelineFieldAnesthesiaStart || missing[1].Field != TimelineFieldIncisionTime {
			t.Fatalf("missing items out of order: %+v", missing)
		}
	})

	t.Run("recovery expects all six", func(t *testing.T) {
		tl := &OperativeTimeline{}
		missing := tl.MissingItemsForStatus(CaseStatusRecovery)
		if len(missing) != 6 {
			t.Fatalf("expected 6 missing items, got %d", len(missing))
		}
		if missing[0].Field != TimelineFieldWheelsIn || missing[5].Field != TimelineFieldWheelsOut {
			t.Fatalf("missing items out of fixed order: %+v", missing)
		}
	})

	t.Run("fully recorded timeline has nothing missing at completed", func(t *testing.T) {
		tl := &OperativeTimeline{
			WheelsIn:        tp(base),
			AnesthesiaStart: tp(base.Add(5 * time.Minute)),
			IncisionTime:    tp(base.Add(20 * time.Minute)),
			ClosureTime:     tp(base.Add(110 * time.Minute)),
			AnesthesiaEnd:   tp(base.Add(120 * time.Minute)),
			WheelsOut:       tp(base.Add(130 * time.Minute)),
		}
		if missing := tl.MissingItemsForStatus(CaseStatusCompleted); len(missing) != 0 {
			t.Fatalf("expected no missing items, got %+v", missing)
		}
	})
}

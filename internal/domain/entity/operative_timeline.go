package entity

import (
	"fmt"
	"math"
	"time"
)

// Timeline range bounds: an intraoperative event may not be recorded more
// than 48 hours in the past or more than 5 minutes in the future.
const (
	timelineMaxPast   = 48 * time.Hour
	timelineMaxFuture = 5 * time.Minute
)

// OperativeTimeline holds the six intraoperative timestamps in their fixed
// causal order. Any subset may be nil at any time; partial timelines are valid.
type OperativeTimeline struct {
	WheelsIn        *time.Time `gorm:"column:wheels_in" json:"wheels_in,omitempty"`
	AnesthesiaStart *time.Time `gorm:"column:anesthesia_start" json:"anesthesia_start,omitempty"`
	IncisionTime    *time.Time `gorm:"column:incision_time" json:"incision_time,omitempty"`
	ClosureTime     *time.Time `gorm:"column:closure_time" json:"closure_time,omitempty"`
	AnesthesiaEnd   *time.Time `gorm:"column:anesthesia_end" json:"anesthesia_end,omitempty"`
	WheelsOut       *time.Time `gorm:"column:wheels_out" json:"wheels_out,omitempty"`
}

// TimelineField identifies one of the six timestamps.
type TimelineField string

const (
	TimelineFieldWheelsIn        TimelineField = "wheels_in"
	TimelineFieldAnesthesiaStart TimelineField = "anesthesia_start"
	TimelineFieldIncisionTime    TimelineField = "incision_time"
	TimelineFieldClosureTime     TimelineField = "closure_time"
	TimelineFieldAnesthesiaEnd   TimelineField = "anesthesia_end"
	TimelineFieldWheelsOut       TimelineField = "wheels_out"
)

// TimelineItem pairs a field with its human-readable label.
type TimelineItem struct {
	Field TimelineField `json:"field"`
	Label string        `json:"label"`
}

// timelineSequence is the fixed causal order of the six timestamps.
var timelineSequence = []TimelineItem{
	{TimelineFieldWheelsIn, "Wheels in"},
	{TimelineFieldAnesthesiaStart, "Anesthesia start"},
	{TimelineFieldIncisionTime, "Incision"},
	{TimelineFieldClosureTime, "Closure"},
	{TimelineFieldAnesthesiaEnd, "Anesthesia end"},
	{TimelineFieldWheelsOut, "Wheels out"},
}

func (t *OperativeTimeline) value(field TimelineField) *time.Time {
	switch field {
	case TimelineFieldWheelsIn:
		return t.WheelsIn
	case TimelineFieldAnesthesiaStart:
		return t.AnesthesiaStart
	case TimelineFieldIncisionTime:
		return t.IncisionTime
	case TimelineFieldClosureTime:
		return t.ClosureTime
	case TimelineFieldAnesthesiaEnd:
		return t.AnesthesiaEnd
	case TimelineFieldWheelsOut:
		return t.WheelsOut
	}
	return nil
}

// SetField assigns one timestamp by name. Unknown fields are rejected.
func (t *OperativeTimeline) SetField(field TimelineField, value time.Time) error {
	switch field {
	case TimelineFieldWheelsIn:
		t.WheelsIn = &value
	case TimelineFieldAnesthesiaStart:
		t.AnesthesiaStart = &value
	case TimelineFieldIncisionTime:
		t.IncisionTime = &value
	case TimelineFieldClosureTime:
		t.ClosureTime = &value
	case TimelineFieldAnesthesiaEnd:
		t.AnesthesiaEnd = &value
	case TimelineFieldWheelsOut:
		t.WheelsOut = &value
	default:
		return fmt.Errorf("unknown timeline field %q", field)
	}
	return nil
}

// TimelineFieldError is a single validation finding, reported per field.
type TimelineFieldError struct {
	Field   TimelineField `json:"field"`
	Message string        `json:"message"`
}

// TimelineValidation is the accumulated outcome of a Validate call.
type TimelineValidation struct {
	Valid  bool                 `json:"valid"`
	Errors []TimelineFieldError `json:"errors,omitempty"`
}

// Validate checks chronological ordering and plausible ranges, accumulating
// every finding rather than stopping at the first.
//
// Ordering is checked between each populated timestamp and its nearest
// populated successor in the fixed sequence; each populated pair must be
// strictly increasing. Gaps are permitted and skip the comparison.
func (t *OperativeTimeline) Validate(now time.Time) TimelineValidation {
	var errs []TimelineFieldError

	var prev *TimelineItem
	for i := range timelineSequence {
		item := timelineSequence[i]
		v := t.value(item.Field)
		if v == nil {
			continue
		}

		if prev != nil {
			pv := t.value(prev.Field)
			if !v.After(*pv) {
				errs = append(errs, TimelineFieldError{
					Field:   item.Field,
					Message: fmt.Sprintf("%s must be after %s", item.Label, prev.Label),
				})
			}
		}
		prev = &timelineSequence[i]
	}

	earliest := now.Add(-timelineMaxPast)
	latest := now.Add(timelineMaxFuture)
	for _, item := range timelineSequence {
		v := t.value(item.Field)
		if v == nil {
			continue
		}
		if v.Before(earliest) {
			errs = append(errs, TimelineFieldError{
				Field:   item.Field,
				Message: fmt.Sprintf("%s is more than 48 hours in the past", item.Label),
			})
		}
		if v.After(latest) {
			errs = append(errs, TimelineFieldError{
				Field:   item.Field,
				Message: fmt.Sprintf("%s is more than 5 minutes in the future", item.Label),
			})
		}
	}

	return TimelineValidation{Valid: len(errs) == 0, Errors: errs}
}

// TimelineDurations carries the derived interval lengths in whole minutes.
// A duration is nil whenever either endpoint is missing.
type TimelineDurations struct {
	ORTimeMinutes         *int `json:"or_time_minutes"`
	SurgeryTimeMinutes    *int `json:"surgery_time_minutes"`
	PrepTimeMinutes       *int `json:"prep_time_minutes"`
	CloseOutTimeMinutes   *int `json:"close_out_time_minutes"`
	AnesthesiaTimeMinutes *int `json:"anesthesia_time_minutes"`
}

func minutesBetween(start, end *time.Time) *int {
	if start == nil || end == nil {
		return nil
	}
	m := int(math.Round(end.Sub(*start).Minutes()))
	return &m
}

// DerivedDurations computes the standard operative intervals, rounded to the
// nearest whole minute.
func (t *OperativeTimeline) DerivedDurations() TimelineDurations {
	return TimelineDurations{
		ORTimeMinutes:         minutesBetween(t.WheelsIn, t.WheelsOut),
		SurgeryTimeMinutes:    minutesBetween(t.IncisionTime, t.ClosureTime),
		PrepTimeMinutes:       minutesBetween(t.WheelsIn, t.IncisionTime),
		CloseOutTimeMinutes:   minutesBetween(t.ClosureTime, t.WheelsOut),
		AnesthesiaTimeMinutes: minutesBetween(t.AnesthesiaStart, t.AnesthesiaEnd),
	}
}

// expectedTimelineFields maps a case status to how much of the timeline
// should be populated by that point. Statuses before in_theater expect nothing.
var expectedTimelineFields = map[CaseStatus][]TimelineField{
	CaseStatusInTheater: {
		TimelineFieldWheelsIn,
		TimelineFieldAnesthesiaStart,
		TimelineFieldIncisionTime,
	},
	CaseStatusRecovery: {
		TimelineFieldWheelsIn,
		TimelineFieldAnesthesiaStart,
		TimelineFieldIncisionTime,
		TimelineFieldClosureTime,
		TimelineFieldAnesthesiaEnd,
		TimelineFieldWheelsOut,
	},
	CaseStatusCompleted: {
		TimelineFieldWheelsIn,
		TimelineFieldAnesthesiaStart,
		TimelineFieldIncisionTime,
		TimelineFieldClosureTime,
		TimelineFieldAnesthesiaEnd,
		TimelineFieldWheelsOut,
	},
}

// MissingItemsForStatus returns the expected-but-unrecorded timestamps for a
// case in the given status, in fixed order, with display labels.
func (t *OperativeTimeline) MissingItemsForStatus(status CaseStatus) []TimelineItem {
	expected := expectedTimelineFields[status]
	if len(expected) == 0 {
		return nil
	}

	expectedSet := make(map[TimelineField]bool, len(expected))
	for _, f := range expected {
		expectedSet[f] = true
	}

	var missing []TimelineItem
	for _, item := range timelineSequence {
		if expectedSet[item.Field] && t.value(item.Field) == nil {
			missing = append(missing, item)
		}
	}
	return missing
}

package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "pending"
	AppointmentStatusScheduled AppointmentStatus = "scheduled"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
	AppointmentStatusNoShow    AppointmentStatus = "no_show"
)

// AppointmentType represents the kind of visit
type AppointmentType string

const (
	AppointmentTypeConsultation AppointmentType = "consultation"
	AppointmentTypeFollowUp     AppointmentType = "follow_up"
	AppointmentTypePreOp        AppointmentType = "pre_op"
	AppointmentTypePostOp       AppointmentType = "post_op"
)

// NoShowReason records how a no-show was established
type NoShowReason string

const (
	NoShowReasonManual        NoShowReason = "manual"
	NoShowReasonPatientCalled NoShowReason = "patient_called"
	NoShowReasonAuto          NoShowReason = "auto"
)

// CheckInInfo captures the arrival of a patient. Immutable once set.
type CheckInInfo struct {
	CheckedInAt   time.Time `gorm:"column:checked_in_at" json:"checked_in_at"`
	CheckedInBy   uuid.UUID `gorm:"type:uuid;column:checked_in_by" json:"checked_in_by"`
	IsLate        bool      `gorm:"column:is_late" json:"is_late"`
	LateByMinutes int       `gorm:"column:late_by_minutes" json:"late_by_minutes"`
}

// NoShowInfo captures a no-show determination. Immutable once set.
type NoShowInfo struct {
	NoShowAt time.Time    `gorm:"column:no_show_at" json:"no_show_at"`
	Reason   NoShowReason `gorm:"type:varchar(20);column:no_show_reason" json:"reason"`
	Notes    string       `gorm:"type:text;column:no_show_notes" json:"notes,omitempty"`
}

// Appointment represents a clinic visit slot for a patient with a doctor.
// Status and its paired metadata (CheckInInfo/NoShowInfo) are only mutated
// through the lifecycle methods below; an appointment is never simultaneously
// checked-in and no-show.
type Appointment struct {
	ID          int64             `gorm:"primaryKey;autoIncrement" json:"id"`
	PatientID   uuid.UUID         `gorm:"type:uuid;not null;index" json:"patient_id"`
	DoctorID    uuid.UUID         `gorm:"type:uuid;not null;index" json:"doctor_id"`
	ScheduledAt time.Time         `gorm:"not null;index" json:"scheduled_at"`
	Type        AppointmentType   `gorm:"type:varchar(30);not null" json:"type"`
	Status      AppointmentStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	CheckIn     *CheckInInfo      `gorm:"embedded" json:"check_in,omitempty"`
	NoShow      *NoShowInfo       `gorm:"embedded" json:"no_show,omitempty"`
	CreatedAt   time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time         `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Patient Patient `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
	Doctor  User    `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
}

func (Appointment) TableName() string {
	return "appointments"
}

// IsCheckedIn reports whether the patient has arrived.
func (a *Appointment) IsCheckedIn() bool {
	return a.CheckIn != nil
}

// IsNoShow reports whether the appointment was marked no-show.
func (a *Appointment) IsNoShow() bool {
	return a.NoShow != nil
}

func (a *Appointment) isClosed() bool {
	return a.Status == AppointmentStatusCancelled || a.Status == AppointmentStatusCompleted
}

// PerformCheckIn records patient arrival and computes lateness against the
// scheduled instant. Check-in on a pending appointment counts as implicit
// confirmation, moving it to scheduled.
func (a *Appointment) PerformCheckIn(checkedInAt time.Time, userID uuid.UUID) error {
	if a.IsCheckedIn() {
		return fmt.Errorf("%w: appointment is already checked in", ErrInvalidState)
	}
	if a.isClosed() {
		return fmt.Errorf("%w: appointment is %s", ErrInvalidState, a.Status)
	}

	// Any arrival strictly after the scheduled instant is late; partial
	// minutes round up so there is no sub-minute grace window.
	lateBy := 0
	if d := checkedInAt.Sub(a.ScheduledAt); d > 0 {
		lateBy = int((d + time.Minute - 1) / time.Minute)
	}

	a.CheckIn = &CheckInInfo{
		CheckedInAt:   checkedInAt,
		CheckedInBy:   userID,
		IsLate:        lateBy > 0,
		LateByMinutes: lateBy,
	}
	if a.Status == AppointmentStatusPending {
		a.Status = AppointmentStatusScheduled
	}

	return nil
}

// MarkNoShow records that the patient did not arrive. A second call on an
// already-no-show appointment is rejected, not silently accepted.
func (a *Appointment) MarkNoShow(now time.Time, reason NoShowReason, notes string) error {
	if a.IsCheckedIn() {
		return fmt.Errorf("%w: appointment is already checked in", ErrInvalidState)
	}
	if a.IsNoShow() {
		return fmt.Errorf("%w: appointment is already marked no-show", ErrInvalidState)
	}
	if a.isClosed() {
		return fmt.Errorf("%w: appointment is %s", ErrInvalidState, a.Status)
	}

	a.Status = AppointmentStatusNoShow
	a.NoShow = &NoShowInfo{
		NoShowAt: now,
		Reason:   reason,
		Notes:    notes,
	}

	return nil
}

// AutoDetectNoShow applies elapsed-time no-show detection. It returns true
// only when the appointment was transitioned; otherwise the appointment is
// left untouched. A checked-in appointment is never overridden, no matter
// how late the check-in was.
func (a *Appointment) AutoDetectNoShow(now time.Time, threshold time.Duration) bool {
	if a.IsCheckedIn() || a.IsNoShow() || a.isClosed() {
		return false
	}
	if now.Sub(a.ScheduledAt) < threshold {
		return false
	}

	a.Status = AppointmentStatusNoShow
	a.NoShow = &NoShowInfo{
		NoShowAt: now,
		Reason:   NoShowReasonAuto,
		Notes:    fmt.Sprintf("automatically detected after %d minutes", int(threshold.Minutes())),
	}

	return true
}

// ReverseNoShowWithCheckIn clears a no-show determination and performs a
// normal check-in. Lateness is recomputed against the original scheduled
// time, not against the no-show event.
func (a *Appointment) ReverseNoShowWithCheckIn(checkedInAt time.Time, userID uuid.UUID) error {
	if !a.IsNoShow() {
		return fmt.Errorf("%w: appointment is not marked no-show", ErrInvalidState)
	}

	a.NoShow = nil
	a.Status = AppointmentStatusScheduled
	return a.PerformCheckIn(checkedInAt, userID)
}

// Cancel marks the appointment cancelled. Cancellation is a status, not a
// deletion; completed appointments cannot be cancelled.
func (a *Appointment) Cancel() error {
	if a.isClosed() {
		return fmt.Errorf("%w: appointment is %s", ErrInvalidState, a.Status)
	}
	a.Status = AppointmentStatusCancelled
	return nil
}

// Complete closes out the visit after consultation.
func (a *Appointment) Complete() error {
	if !a.IsCheckedIn() {
		return fmt.Errorf("%w: appointment has no check-in", ErrInvalidState)
	}
	if a.isClosed() {
		return fmt.Errorf("%w: appointment is %s", ErrInvalidState, a.Status)
	}
	a.Status = AppointmentStatusCompleted
	return nil
}

package session

import (
	"time"

	"github.com/edulane/gurukul/core"
)

// Statuses
const (
	StatusScheduled           = "scheduled"
	StatusCompleted           = "completed"
	StatusCancelled           = "cancelled"
	StatusRescheduled         = "rescheduled"
	StatusPendingReschedule   = "pending_reschedule"
	StatusPendingCancellation = "pending_cancellation"
)

// Session is one scheduled tutoring session between a tutor and a student.
// Reschedule/cancellation workflows and payout computation are not handled
// here; the record only tracks what was booked and its current status.
type Session struct {
	ID            string    `bson:"_id,omitempty" json:"id"`
	TutorID       string    `bson:"tutorId" json:"tutorId"`     // tutor profile ID
	StudentID     string    `bson:"studentId" json:"studentId"` // student profile ID
	Subject       string    `bson:"subject" json:"subject"`
	Grade         string    `bson:"grade" json:"grade"`
	Board         string    `bson:"board" json:"board"`
	ScheduledTime time.Time `bson:"scheduledTime" json:"scheduledTime"`
	Status        string    `bson:"status" json:"status"`
	CreatedAt     time.Time `bson:"createdAt" json:"created_at"` // UTC
	UpdatedAt     time.Time `bson:"updatedAt" json:"updated_at"` // UTC
}

// NewSession contains information needed to book a new Session.
type NewSession struct {
	TutorID       string    `json:"tutorId" validate:"required"`
	StudentID     string    `json:"studentId" validate:"required"`
	Subject       string    `json:"subject" validate:"required"`
	Grade         string    `json:"grade" validate:"required"`
	Board         string    `json:"board" validate:"required"`
	ScheduledTime time.Time `json:"scheduledTime" validate:"required"`
}

func (ns *NewSession) Validate() error {
	ns.Subject = core.CleanString(ns.Subject)
	ns.Grade = core.CleanString(ns.Grade)
	ns.Board = core.CleanString(ns.Board)
	return core.Validate.Struct(ns)
}

// QueryFilter narrows session queries; fields combine with AND, except
// StudentIDs which matches any of the given student profile IDs.
type QueryFilter struct {
	TutorID    string
	StudentID  string
	StudentIDs []string
}

func (qf QueryFilter) IsEmpty() bool {
	return qf.TutorID == "" && qf.StudentID == "" && qf.StudentIDs == nil
}

package models

import (
	"time"

	"github.com/campusflow/campusflow/internal/pkg/grading"
)

// EnrollmentStatus represents the lifecycle state of an enrollment.
//
// Valid status graph:
//
//	ENROLLED ──► IN_PROGRESS ──► APPROVED
//	    │             │      ╲      ▲
//	    │             │       ► FAILED (regrade ≥ 70 moves back to APPROVED)
//	    └─────────────┴──► WITHDRAWN
//
// APPROVED, FAILED and WITHDRAWN are terminal for caller-initiated
// transitions; FAILED can still flip to APPROVED when a corrected score
// pushes the recomputed grade over the passing threshold. WITHDRAWN is
// never left again.
type EnrollmentStatus string

const (
	EnrollmentStatusEnrolled   EnrollmentStatus = "ENROLLED"
	EnrollmentStatusInProgress EnrollmentStatus = "IN_PROGRESS"
	EnrollmentStatusApproved   EnrollmentStatus = "APPROVED"
	EnrollmentStatusFailed     EnrollmentStatus = "FAILED"
	EnrollmentStatusWithdrawn  EnrollmentStatus = "WITHDRAWN"
)

// PassingGrade is the minimum final grade that approves an enrollment.
const PassingGrade = 70.0

// validTransitions lists every allowed (from → to) pair, grade-driven
// transitions included.
var validTransitions = map[EnrollmentStatus][]EnrollmentStatus{
	EnrollmentStatusEnrolled:   {EnrollmentStatusInProgress, EnrollmentStatusApproved, EnrollmentStatusWithdrawn},
	EnrollmentStatusInProgress: {EnrollmentStatusApproved, EnrollmentStatusFailed, EnrollmentStatusWithdrawn},
	EnrollmentStatusFailed:     {EnrollmentStatusApproved},
	EnrollmentStatusApproved:   {EnrollmentStatusFailed},
	// WITHDRAWN has no outgoing transitions
}

// ParseEnrollmentStatus converts a raw string to an EnrollmentStatus.
func ParseEnrollmentStatus(s string) (EnrollmentStatus, bool) {
	st := EnrollmentStatus(s)
	switch st {
	case EnrollmentStatusEnrolled, EnrollmentStatusInProgress, EnrollmentStatusApproved,
		EnrollmentStatusFailed, EnrollmentStatusWithdrawn:
		return st, true
	}
	return "", false
}

// CanTransition reports whether moving from → to is permitted.
func (s EnrollmentStatus) CanTransition(to EnrollmentStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == to {
			return true
		}
	}
	return false
}

// CanWithdraw reports whether a caller may withdraw from this status.
func (s EnrollmentStatus) CanWithdraw() bool {
	return s == EnrollmentStatusEnrolled || s == EnrollmentStatusInProgress
}

// IsTerminal reports whether the status permits no caller-initiated change.
func (s EnrollmentStatus) IsTerminal() bool {
	return s == EnrollmentStatusApproved || s == EnrollmentStatusFailed || s == EnrollmentStatusWithdrawn
}

// NextStatusForGrade returns the status an enrollment moves to once its final
// grade is recomputed. The approved/failed branch is derived from the grade,
// so recomputation always wins over the stored status there. A withdrawn
// enrollment is never resurrected by a grade change.
func NextStatusForGrade(current EnrollmentStatus, grade float64) EnrollmentStatus {
	if current == EnrollmentStatusWithdrawn {
		return current
	}
	if grade >= PassingGrade {
		return EnrollmentStatusApproved
	}
	switch current {
	case EnrollmentStatusInProgress, EnrollmentStatusApproved, EnrollmentStatusFailed:
		return EnrollmentStatusFailed
	}
	return current
}

// Enrollment is the relationship between one student and one course offering,
// carrying component scores, the recomputed final grade and the lifecycle
// status. At most one enrollment exists per (offering, student) pair.
type Enrollment struct {
	ID         int64            `json:"id" db:"id"`
	OfferingID int64            `json:"offeringId" db:"offering_id"`
	StudentID  int64            `json:"studentId" db:"student_id"`
	EnrolledAt time.Time        `json:"enrolledAt" db:"enrolled_at"`
	Status     EnrollmentStatus `json:"status" db:"status"`
	FinalGrade *float64         `json:"finalGrade,omitempty" db:"final_grade"`

	// Component scores, each optional 0-100
	Midterm1      *float64 `json:"midterm1,omitempty" db:"midterm1"`
	Midterm2      *float64 `json:"midterm2,omitempty" db:"midterm2"`
	FinalExam     *float64 `json:"finalExam,omitempty" db:"final_exam"`
	Coursework    *float64 `json:"coursework,omitempty" db:"coursework"`
	Participation *float64 `json:"participation,omitempty" db:"participation"`

	// Relations (populated when needed)
	Offering *CourseOffering `json:"offering,omitempty"`
	Student  *User           `json:"student,omitempty"`
}

// Scores collects the recorded component scores into a sparse mapping.
func (e *Enrollment) Scores() grading.PartialScores {
	scores := grading.PartialScores{}
	if e.Midterm1 != nil {
		scores[grading.ComponentMidterm1] = *e.Midterm1
	}
	if e.Midterm2 != nil {
		scores[grading.ComponentMidterm2] = *e.Midterm2
	}
	if e.FinalExam != nil {
		scores[grading.ComponentFinal] = *e.FinalExam
	}
	if e.Coursework != nil {
		scores[grading.ComponentCoursework] = *e.Coursework
	}
	if e.Participation != nil {
		scores[grading.ComponentParticipation] = *e.Participation
	}
	return scores
}

// SetScore records one component score. Returns false for an unknown component.
func (e *Enrollment) SetScore(component grading.Component, value float64) bool {
	switch component {
	case grading.ComponentMidterm1:
		e.Midterm1 = &value
	case grading.ComponentMidterm2:
		e.Midterm2 = &value
	case grading.ComponentFinal:
		e.FinalExam = &value
	case grading.ComponentCoursework:
		e.Coursework = &value
	case grading.ComponentParticipation:
		e.Participation = &value
	default:
		return false
	}
	return true
}

// RecomputeGrade rederives the final grade from the recorded scores and
// applies the grade-driven status transition. Recording a first score moves
// a freshly enrolled record into IN_PROGRESS before the grade rule applies.
func (e *Enrollment) RecomputeGrade() {
	grade, ok := grading.ComputeFinalGrade(e.Scores())
	if !ok {
		e.FinalGrade = nil
		return
	}

	if e.Status == EnrollmentStatusEnrolled {
		e.Status = EnrollmentStatusInProgress
	}

	e.FinalGrade = &grade
	e.Status = NextStatusForGrade(e.Status, grade)
}

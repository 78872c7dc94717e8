package models

import (
	"math"
	"time"
)

// OfferingStatus is the temporal lifecycle state of a course offering.
// It is derived from the clock on every read and never stored.
type OfferingStatus string

const (
	OfferingStatusInactive OfferingStatus = "INACTIVE"
	OfferingStatusUpcoming OfferingStatus = "UPCOMING"
	OfferingStatusActive   OfferingStatus = "ACTIVE"
	OfferingStatusFinished OfferingStatus = "FINISHED"
)

// Seat limits for a course offering.
const (
	MinSeats = 1
	MaxSeats = 100
)

// CourseOffering represents a scheduled instance of a subject taught by one
// instructor in one term.
type CourseOffering struct {
	ID            int64     `json:"id" db:"id"`
	SubjectID     int64     `json:"subjectId" db:"subject_id"`
	InstructorID  int64     `json:"instructorId" db:"instructor_id"`
	Name          string    `json:"name" db:"name"`
	StartDate     time.Time `json:"startDate" db:"start_date"`
	EndDate       time.Time `json:"endDate" db:"end_date"`
	Modality      Modality  `json:"modality" db:"modality"`
	Room          *string   `json:"room,omitempty" db:"room"` // Nullable, required unless online
	Schedule      string    `json:"schedule" db:"schedule"`
	MaxSeats      int       `json:"maxSeats" db:"max_seats"`
	EnrolledCount int       `json:"enrolledCount" db:"enrolled_count"`
	IsActive      bool      `json:"isActive" db:"is_active"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`

	// Relations (populated when needed)
	Subject    *Subject `json:"subject,omitempty"`
	Instructor *User    `json:"instructor,omitempty"`
}

// Status derives the offering lifecycle state at the given instant.
func (o *CourseOffering) Status(now time.Time) OfferingStatus {
	if !o.IsActive {
		return OfferingStatusInactive
	}
	if now.Before(o.StartDate) {
		return OfferingStatusUpcoming
	}
	if now.After(o.EndDate) {
		return OfferingStatusFinished
	}
	return OfferingStatusActive
}

// HasAvailableSeats reports whether at least one seat remains.
func (o *CourseOffering) HasAvailableSeats() bool {
	return o.EnrolledCount < o.MaxSeats
}

// AvailableSeats returns the number of free seats, never negative.
func (o *CourseOffering) AvailableSeats() int {
	free := o.MaxSeats - o.EnrolledCount
	if free < 0 {
		return 0
	}
	return free
}

// OccupancyPercent returns the enrolled share of capacity as a rounded
// percentage. Returns 0 when MaxSeats is 0, which the seat invariant rules out
// for persisted rows.
func (o *CourseOffering) OccupancyPercent() int {
	if o.MaxSeats == 0 {
		return 0
	}
	return int(math.Round(float64(o.EnrolledCount) / float64(o.MaxSeats) * 100))
}

package dto

import (
	"time"

	"github.com/campusflow/campusflow/internal/app/models"
)

// CreateOfferingRequest represents a request to create a course offering
type CreateOfferingRequest struct {
	SubjectID    int64           `json:"subjectId" binding:"required,min=1"`
	InstructorID int64           `json:"instructorId" binding:"required,min=1"`
	Name         string          `json:"name" binding:"required"`
	StartDate    time.Time       `json:"startDate" binding:"required"`
	EndDate      time.Time       `json:"endDate" binding:"required"`
	Modality     models.Modality `json:"modality" binding:"required,oneof=ON_SITE ONLINE HYBRID"`
	Room         *string         `json:"room,omitempty"`
	Schedule     string          `json:"schedule" binding:"required"`
	MaxSeats     int             `json:"maxSeats" binding:"required,min=1,max=100"`
}

// UpdateOfferingRequest represents a request to update a course offering
type UpdateOfferingRequest struct {
	Name      string          `json:"name" binding:"required"`
	StartDate time.Time       `json:"startDate" binding:"required"`
	EndDate   time.Time       `json:"endDate" binding:"required"`
	Modality  models.Modality `json:"modality" binding:"required,oneof=ON_SITE ONLINE HYBRID"`
	Room      *string         `json:"room,omitempty"`
	Schedule  string          `json:"schedule" binding:"required"`
	MaxSeats  int             `json:"maxSeats" binding:"required,min=1,max=100"`
}

// OfferingResponse represents course offering information with derived fields
type OfferingResponse struct {
	ID             int64                 `json:"id"`
	SubjectID      int64                 `json:"subjectId"`
	InstructorID   int64                 `json:"instructorId"`
	Name           string                `json:"name"`
	StartDate      time.Time             `json:"startDate"`
	EndDate        time.Time             `json:"endDate"`
	Modality       models.Modality       `json:"modality"`
	Room           *string               `json:"room,omitempty"`
	Schedule       string                `json:"schedule"`
	MaxSeats       int                   `json:"maxSeats"`
	EnrolledCount  int                   `json:"enrolledCount"`
	AvailableSeats int                   `json:"availableSeats"`
	Status         models.OfferingStatus `json:"status"`
	Subject        *SubjectResponse      `json:"subject,omitempty"`
}

// OccupancyResponse represents the seat usage report for an offering
type OccupancyResponse struct {
	OfferingID       int64 `json:"offeringId"`
	MaxSeats         int   `json:"maxSeats"`
	EnrolledCount    int   `json:"enrolledCount"`
	AvailableSeats   int   `json:"availableSeats"`
	OccupancyPercent int   `json:"occupancyPercent"`
}

// FromOffering converts a models.CourseOffering to an OfferingResponse,
// deriving status against the given clock.
func FromOffering(offering *models.CourseOffering, now time.Time) OfferingResponse {
	if offering == nil {
		return OfferingResponse{}
	}

	resp := OfferingResponse{
		ID:             offering.ID,
		SubjectID:      offering.SubjectID,
		InstructorID:   offering.InstructorID,
		Name:           offering.Name,
		StartDate:      offering.StartDate,
		EndDate:        offering.EndDate,
		Modality:       offering.Modality,
		Room:           offering.Room,
		Schedule:       offering.Schedule,
		MaxSeats:       offering.MaxSeats,
		EnrolledCount:  offering.EnrolledCount,
		AvailableSeats: offering.AvailableSeats(),
		Status:         offering.Status(now),
	}

	if offering.Subject != nil {
		subject := FromSubject(offering.Subject)
		resp.Subject = &subject
	}

	return resp
}

// FromOfferingOccupancy builds the occupancy report for an offering.
func FromOfferingOccupancy(offering *models.CourseOffering) OccupancyResponse {
	if offering == nil {
		return OccupancyResponse{}
	}
	return OccupancyResponse{
		OfferingID:       offering.ID,
		MaxSeats:         offering.MaxSeats,
		EnrolledCount:    offering.EnrolledCount,
		AvailableSeats:   offering.AvailableSeats(),
		OccupancyPercent: offering.OccupancyPercent(),
	}
}

package dto

import (
	"time"

	"github.com/campusflow/campusflow/internal/app/models"
)

// EnrollRequest represents a request to enroll a student into an offering
type EnrollRequest struct {
	OfferingID int64 `json:"offeringId" binding:"required,min=1"`
	StudentID  int64 `json:"studentId" binding:"required,min=1"`
}

// RecordScoreRequest represents a request to record one component score
type RecordScoreRequest struct {
	Component string  `json:"component" binding:"required,oneof=MIDTERM_1 MIDTERM_2 FINAL COURSEWORK PARTICIPATION"`
	Value     float64 `json:"value" binding:"min=0,max=100"`
}

// EnrollmentResponse represents enrollment information
type EnrollmentResponse struct {
	ID         int64                   `json:"id"`
	OfferingID int64                   `json:"offeringId"`
	StudentID  int64                   `json:"studentId"`
	EnrolledAt time.Time               `json:"enrolledAt"`
	Status     models.EnrollmentStatus `json:"status"`
	FinalGrade *float64                `json:"finalGrade,omitempty"`

	Midterm1      *float64 `json:"midterm1,omitempty"`
	Midterm2      *float64 `json:"midterm2,omitempty"`
	FinalExam     *float64 `json:"finalExam,omitempty"`
	Coursework    *float64 `json:"coursework,omitempty"`
	Participation *float64 `json:"participation,omitempty"`

	Student  *UserResponse     `json:"student,omitempty"`
	Offering *OfferingResponse `json:"offering,omitempty"`
}

// FromEnrollment converts a models.Enrollment to an EnrollmentResponse
func FromEnrollment(enrollment *models.Enrollment) EnrollmentResponse {
	if enrollment == nil {
		return EnrollmentResponse{}
	}

	resp := EnrollmentResponse{
		ID:            enrollment.ID,
		OfferingID:    enrollment.OfferingID,
		StudentID:     enrollment.StudentID,
		EnrolledAt:    enrollment.EnrolledAt,
		Status:        enrollment.Status,
		FinalGrade:    enrollment.FinalGrade,
		Midterm1:      enrollment.Midterm1,
		Midterm2:      enrollment.Midterm2,
		FinalExam:     enrollment.FinalExam,
		Coursework:    enrollment.Coursework,
		Participation: enrollment.Participation,
	}

	if enrollment.Student != nil {
		student := FromUser(enrollment.Student)
		resp.Student = &student
	}

	return resp
}

// FromEnrollments converts a slice of enrollments
func FromEnrollments(enrollments []*models.Enrollment) []EnrollmentResponse {
	responses := make([]EnrollmentResponse, 0, len(enrollments))
	for _, e := range enrollments {
		responses = append(responses, FromEnrollment(e))
	}
	return responses
}

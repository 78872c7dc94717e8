package dto

import "github.com/campusflow/campusflow/internal/app/models"

// CreateSubjectRequest represents a request to create a catalogue subject
type CreateSubjectRequest struct {
	Code        string  `json:"code" binding:"required"`
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description,omitempty"`
	Credits     int     `json:"credits" binding:"required,min=1,max=30"`
}

// UpdateSubjectRequest represents a request to update a catalogue subject
type UpdateSubjectRequest struct {
	Code        string  `json:"code" binding:"required"`
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description,omitempty"`
	Credits     int     `json:"credits" binding:"required,min=1,max=30"`
}

// SubjectResponse represents subject information
type SubjectResponse struct {
	ID          int64   `json:"id"`
	Code        string  `json:"code"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	Credits     int     `json:"credits"`
}

// FromSubject converts a models.Subject to a SubjectResponse
func FromSubject(subject *models.Subject) SubjectResponse {
	if subject == nil {
		return SubjectResponse{}
	}
	return SubjectResponse{
		ID:          subject.ID,
		Code:        subject.Code,
		Name:        subject.Name,
		Description: subject.Description,
		Credits:     subject.Credits,
	}
}

package services

import (
	"context"
	"strings"

	"github.com/campusflow/campusflow/internal/app/models"
	"github.com/campusflow/campusflow/internal/pkg/apperrors"
)

// subjectWriteStore is the persistence surface the subject service depends on.
type subjectWriteStore interface {
	Create(ctx context.Context, subject *models.Subject) error
	GetByID(ctx context.Context, id int64) (*models.Subject, error)
	GetAll(ctx context.Context) ([]*models.Subject, error)
	Update(ctx context.Context, subject *models.Subject) error
	Delete(ctx context.Context, id int64) error
}

// SubjectService defines the interface for catalogue subject operations
type SubjectService interface {
	CreateSubject(ctx context.Context, subject *models.Subject) error
	GetSubjectByID(ctx context.Context, id int64) (*models.Subject, error)
	GetAllSubjects(ctx context.Context) ([]*models.Subject, error)
	UpdateSubject(ctx context.Context, subject *models.Subject) error
	DeleteSubject(ctx context.Context, id int64) error
}

// subjectServiceImpl implements the SubjectService interface
type subjectServiceImpl struct {
	subjects subjectWriteStore
}

// NewSubjectService creates a new subject service instance
func NewSubjectService(subjects subjectWriteStore) SubjectService {
	return &subjectServiceImpl{subjects: subjects}
}

func validateSubject(subject *models.Subject) error {
	if subject == nil {
		return apperrors.NewValidationError("subject", "subject cannot be nil")
	}

	if strings.TrimSpace(subject.Code) == "" {
		return apperrors.NewValidationError("code", "code cannot be empty")
	}

	if strings.TrimSpace(subject.Name) == "" {
		return apperrors.NewValidationError("name", "name cannot be empty")
	}

	if subject.Credits <= 0 {
		return apperrors.NewValidationError("credits", "credits must be positive")
	}

	return nil
}

// CreateSubject validates and creates a new catalogue subject
func (s *subjectServiceImpl) CreateSubject(ctx context.Context, subject *models.Subject) error {
	if err := validateSubject(subject); err != nil {
		return err
	}

	subject.Code = strings.ToUpper(strings.TrimSpace(subject.Code))

	return s.subjects.Create(ctx, subject)
}

// GetSubjectByID retrieves a subject by ID
func (s *subjectServiceImpl) GetSubjectByID(ctx context.Context, id int64) (*models.Subject, error) {
	if id <= 0 {
		return nil, apperrors.NewValidationError("id", "invalid subject ID")
	}

	return s.subjects.GetByID(ctx, id)
}

// GetAllSubjects retrieves all catalogue subjects
func (s *subjectServiceImpl) GetAllSubjects(ctx context.Context) ([]*models.Subject, error) {
	return s.subjects.GetAll(ctx)
}

// UpdateSubject validates and updates an existing subject
func (s *subjectServiceImpl) UpdateSubject(ctx context.Context, subject *models.Subject) error {
	if subject == nil || subject.ID <= 0 {
		return apperrors.NewValidationError("id", "invalid subject ID")
	}

	if err := validateSubject(subject); err != nil {
		return err
	}

	subject.Code = strings.ToUpper(strings.TrimSpace(subject.Code))

	return s.subjects.Update(ctx, subject)
}

// DeleteSubject removes a subject. Subjects with course offerings cannot be
// deleted.
func (s *subjectServiceImpl) DeleteSubject(ctx context.Context, id int64) error {
	if id <= 0 {
		return apperrors.NewValidationError("id", "invalid subject ID")
	}

	return s.subjects.Delete(ctx, id)
}

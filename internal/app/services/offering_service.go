package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/campusflow/campusflow/internal/app/models"
	"github.com/campusflow/campusflow/internal/app/repositories"
	"github.com/campusflow/campusflow/internal/pkg/apperrors"
)

// offeringStore is the persistence surface the offering service depends on.
type offeringStore interface {
	Create(ctx context.Context, offering *models.CourseOffering) error
	GetByID(ctx context.Context, id int64) (*models.CourseOffering, error)
	List(ctx context.Context, filter repositories.OfferingFilter, offset uint64, limit int) ([]*models.CourseOffering, int64, error)
	Update(ctx context.Context, offering *models.CourseOffering) error
	Deactivate(ctx context.Context, id int64) error
}

// subjectStore is the subject lookup surface the offering service depends on.
type subjectStore interface {
	GetByID(ctx context.Context, id int64) (*models.Subject, error)
}

// userStore is the user lookup surface the offering and enrollment services
// depend on.
type userStore interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
	HasRole(ctx context.Context, id int64, role models.RoleType) (bool, error)
}

// OfferingService defines the interface for course offering operations
type OfferingService interface {
	CreateOffering(ctx context.Context, offering *models.CourseOffering) error
	GetOfferingByID(ctx context.Context, id int64) (*models.CourseOffering, error)
	ListOfferings(ctx context.Context, filter repositories.OfferingFilter, offset uint64, limit int) ([]*models.CourseOffering, int64, error)
	UpdateOffering(ctx context.Context, offering *models.CourseOffering) error
	DeactivateOffering(ctx context.Context, id int64) error
	GetOccupancy(ctx context.Context, id int64) (*models.CourseOffering, error)
}

// offeringServiceImpl implements the OfferingService interface
type offeringServiceImpl struct {
	offerings offeringStore
	subjects  subjectStore
	users     userStore
}

// NewOfferingService creates a new offering service instance
func NewOfferingService(offerings offeringStore, subjects subjectStore, users userStore) OfferingService {
	return &offeringServiceImpl{
		offerings: offerings,
		subjects:  subjects,
		users:     users,
	}
}

// validateOffering checks the scheduling and capacity invariants before any
// database write.
func validateOffering(offering *models.CourseOffering) error {
	if offering == nil {
		return fmt.Errorf("%w: offering is nil", apperrors.ErrValidationFailed)
	}

	if strings.TrimSpace(offering.Name) == "" {
		return apperrors.NewValidationError("name", "name cannot be empty")
	}

	if offering.StartDate.IsZero() || offering.EndDate.IsZero() {
		return apperrors.NewValidationError("startDate", "start and end dates are required")
	}

	if !offering.EndDate.After(offering.StartDate) {
		return apperrors.NewValidationError("endDate", "end date must be after start date")
	}

	if !offering.Modality.IsValid() {
		return apperrors.NewValidationError("modality", "modality must be one of ON_SITE, ONLINE, HYBRID")
	}

	if offering.Modality.RequiresRoom() && (offering.Room == nil || strings.TrimSpace(*offering.Room) == "") {
		return apperrors.NewValidationError("room", "room is required for on-site and hybrid offerings")
	}

	if offering.MaxSeats < models.MinSeats || offering.MaxSeats > models.MaxSeats {
		return apperrors.NewValidationError("maxSeats",
			fmt.Sprintf("maximum seats must be between %d and %d", models.MinSeats, models.MaxSeats))
	}

	return nil
}

// CreateOffering validates and creates a new course offering
func (s *offeringServiceImpl) CreateOffering(ctx context.Context, offering *models.CourseOffering) error {
	if err := validateOffering(offering); err != nil {
		return err
	}

	if _, err := s.subjects.GetByID(ctx, offering.SubjectID); err != nil {
		return err
	}

	isInstructor, err := s.users.HasRole(ctx, offering.InstructorID, models.RoleInstructor)
	if err != nil {
		return fmt.Errorf("error checking instructor: %w", err)
	}
	if !isInstructor {
		return apperrors.NewValidationError("instructorId", "instructor not found or not an instructor")
	}

	if err := s.offerings.Create(ctx, offering); err != nil {
		return fmt.Errorf("error creating offering: %w", err)
	}

	return nil
}

// GetOfferingByID retrieves a course offering with its subject attached
func (s *offeringServiceImpl) GetOfferingByID(ctx context.Context, id int64) (*models.CourseOffering, error) {
	if id <= 0 {
		return nil, apperrors.NewValidationError("id", "invalid offering ID")
	}

	offering, err := s.offerings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if subject, err := s.subjects.GetByID(ctx, offering.SubjectID); err == nil {
		offering.Subject = subject
	}

	return offering, nil
}

// ListOfferings retrieves offerings matching the filter
func (s *offeringServiceImpl) ListOfferings(ctx context.Context, filter repositories.OfferingFilter, offset uint64, limit int) ([]*models.CourseOffering, int64, error) {
	return s.offerings.List(ctx, filter, offset, limit)
}

// UpdateOffering validates and updates an existing offering. The seat cap can
// only grow past the current enrolled count, never shrink below it.
func (s *offeringServiceImpl) UpdateOffering(ctx context.Context, offering *models.CourseOffering) error {
	if offering == nil || offering.ID <= 0 {
		return apperrors.NewValidationError("id", "invalid offering ID")
	}

	if err := validateOffering(offering); err != nil {
		return err
	}

	existing, err := s.offerings.GetByID(ctx, offering.ID)
	if err != nil {
		return err
	}

	if offering.MaxSeats < existing.EnrolledCount {
		return apperrors.NewValidationError("maxSeats",
			fmt.Sprintf("maximum seats cannot be reduced below the %d enrolled students", existing.EnrolledCount))
	}

	if err := s.offerings.Update(ctx, offering); err != nil {
		return fmt.Errorf("error updating offering: %w", err)
	}

	return nil
}

// DeactivateOffering soft-deactivates an offering
func (s *offeringServiceImpl) DeactivateOffering(ctx context.Context, id int64) error {
	if id <= 0 {
		return apperrors.NewValidationError("id", "invalid offering ID")
	}

	return s.offerings.Deactivate(ctx, id)
}

// GetOccupancy retrieves an offering for seat usage reporting
func (s *offeringServiceImpl) GetOccupancy(ctx context.Context, id int64) (*models.CourseOffering, error) {
	if id <= 0 {
		return nil, apperrors.NewValidationError("id", "invalid offering ID")
	}

	return s.offerings.GetByID(ctx, id)
}

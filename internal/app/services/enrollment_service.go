package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/campusflow/campusflow/internal/app/models"
	"github.com/campusflow/campusflow/internal/pkg/apperrors"
	"github.com/campusflow/campusflow/internal/pkg/grading"
)

// enrollmentStore is the persistence surface the enrollment service depends
// on. Enroll and Withdraw must pair the enrollment write with the seat count
// change atomically, and both writes must be conditional: the seat take in
// Enroll so racing requests cannot overshoot the cap, the status change in
// Withdraw (ErrInvalidTransition when the status is no longer withdrawable)
// so racing withdrawals cannot release the same seat twice.
type enrollmentStore interface {
	Enroll(ctx context.Context, enrollment *models.Enrollment) error
	Withdraw(ctx context.Context, enrollment *models.Enrollment) error
	UpdateGrade(ctx context.Context, enrollment *models.Enrollment) error
	GetByID(ctx context.Context, id int64) (*models.Enrollment, error)
	GetByOfferingAndStudent(ctx context.Context, offeringID, studentID int64) (*models.Enrollment, error)
	ListByOffering(ctx context.Context, offeringID int64) ([]*models.Enrollment, error)
	ListByStudent(ctx context.Context, studentID int64) ([]*models.Enrollment, error)
}

// enrollmentOfferingStore is the offering lookup surface the enrollment
// service depends on.
type enrollmentOfferingStore interface {
	GetByID(ctx context.Context, id int64) (*models.CourseOffering, error)
}

// EnrollmentService defines the interface for enrollment lifecycle operations
type EnrollmentService interface {
	Enroll(ctx context.Context, offeringID, studentID int64) (*models.Enrollment, error)
	Withdraw(ctx context.Context, enrollmentID int64) (*models.Enrollment, error)
	RecordScore(ctx context.Context, enrollmentID int64, component grading.Component, value float64) (*models.Enrollment, error)
	GetEnrollmentByID(ctx context.Context, id int64) (*models.Enrollment, error)
	ListByOffering(ctx context.Context, offeringID int64) ([]*models.Enrollment, error)
	ListByStudent(ctx context.Context, studentID int64) ([]*models.Enrollment, error)
}

// enrollmentServiceImpl implements the EnrollmentService interface
type enrollmentServiceImpl struct {
	enrollments enrollmentStore
	offerings   enrollmentOfferingStore
	users       userStore
	logger      zerolog.Logger
	now         func() time.Time
}

// NewEnrollmentService creates a new enrollment service instance
func NewEnrollmentService(enrollments enrollmentStore, offerings enrollmentOfferingStore, users userStore, logger zerolog.Logger) EnrollmentService {
	return &enrollmentServiceImpl{
		enrollments: enrollments,
		offerings:   offerings,
		users:       users,
		logger:      logger,
		now:         time.Now,
	}
}

// Enroll registers a student into a course offering. The seat is taken and
// the record created in one storage transaction; when the offering is full
// the call fails with ErrCapacityExceeded and nothing is persisted.
func (s *enrollmentServiceImpl) Enroll(ctx context.Context, offeringID, studentID int64) (*models.Enrollment, error) {
	if offeringID <= 0 {
		return nil, apperrors.NewValidationError("offeringId", "invalid offering ID")
	}
	if studentID <= 0 {
		return nil, apperrors.NewValidationError("studentId", "invalid student ID")
	}

	offering, err := s.offerings.GetByID(ctx, offeringID)
	if err != nil {
		return nil, err
	}

	switch offering.Status(s.now()) {
	case models.OfferingStatusInactive:
		return nil, apperrors.ErrOfferingInactive
	case models.OfferingStatusFinished:
		return nil, apperrors.ErrOfferingFinished
	}

	isStudent, err := s.users.HasRole(ctx, studentID, models.RoleStudent)
	if err != nil {
		return nil, fmt.Errorf("error checking student: %w", err)
	}
	if !isStudent {
		return nil, apperrors.ErrUserNotFound
	}

	// The unique constraint is authoritative; this lookup only produces a
	// friendlier conflict without burning a seat take.
	if _, err := s.enrollments.GetByOfferingAndStudent(ctx, offeringID, studentID); err == nil {
		return nil, apperrors.ErrDuplicateEnrollment
	} else if !errors.Is(err, apperrors.ErrEnrollmentNotFound) {
		return nil, err
	}

	enrollment := &models.Enrollment{
		OfferingID: offeringID,
		StudentID:  studentID,
		Status:     models.EnrollmentStatusEnrolled,
	}

	if err := s.enrollments.Enroll(ctx, enrollment); err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("enrollmentID", enrollment.ID).
		Int64("offeringID", offeringID).
		Int64("studentID", studentID).
		Msg("Student enrolled")

	return enrollment, nil
}

// Withdraw removes a student from an offering, releasing the seat. Only
// enrollments in ENROLLED or IN_PROGRESS can be withdrawn; terminal statuses
// fail with ErrInvalidTransition and leave the seat count untouched.
func (s *enrollmentServiceImpl) Withdraw(ctx context.Context, enrollmentID int64) (*models.Enrollment, error) {
	if enrollmentID <= 0 {
		return nil, apperrors.NewValidationError("enrollmentId", "invalid enrollment ID")
	}

	enrollment, err := s.enrollments.GetByID(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}

	// Friendly early failure; the store's conditional status update is the
	// authoritative check and closes the race between this read and the write.
	if !enrollment.Status.CanWithdraw() {
		return nil, apperrors.NewCustomError(apperrors.ErrInvalidTransition,
			fmt.Sprintf("cannot withdraw from status %s", enrollment.Status)).
			WithDetails(map[string]interface{}{"enrollmentId": enrollmentID, "status": enrollment.Status})
	}

	if err := s.enrollments.Withdraw(ctx, enrollment); err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("enrollmentID", enrollment.ID).
		Int64("offeringID", enrollment.OfferingID).
		Msg("Student withdrawn, seat released")

	return enrollment, nil
}

// RecordScore stores one component score, recomputes the final grade and
// applies the grade-driven status transition.
func (s *enrollmentServiceImpl) RecordScore(ctx context.Context, enrollmentID int64, component grading.Component, value float64) (*models.Enrollment, error) {
	if enrollmentID <= 0 {
		return nil, apperrors.NewValidationError("enrollmentId", "invalid enrollment ID")
	}
	if !grading.IsValidComponent(component) {
		return nil, apperrors.NewValidationError("component", "unknown grade component")
	}
	if !grading.IsValidScore(value) {
		return nil, apperrors.NewValidationError("value", "score must be between 0 and 100")
	}

	enrollment, err := s.enrollments.GetByID(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}

	if enrollment.Status == models.EnrollmentStatusWithdrawn {
		return nil, apperrors.NewCustomError(apperrors.ErrInvalidTransition,
			"cannot record scores on a withdrawn enrollment").
			WithDetails(map[string]interface{}{"enrollmentId": enrollmentID})
	}

	enrollment.SetScore(component, value)
	enrollment.RecomputeGrade()

	if err := s.enrollments.UpdateGrade(ctx, enrollment); err != nil {
		return nil, err
	}

	event := s.logger.Info().
		Int64("enrollmentID", enrollment.ID).
		Str("component", string(component)).
		Float64("value", value).
		Str("status", string(enrollment.Status))
	if enrollment.FinalGrade != nil {
		event = event.Float64("finalGrade", *enrollment.FinalGrade)
	}
	event.Msg("Score recorded")

	return enrollment, nil
}

// GetEnrollmentByID retrieves an enrollment by ID
func (s *enrollmentServiceImpl) GetEnrollmentByID(ctx context.Context, id int64) (*models.Enrollment, error) {
	if id <= 0 {
		return nil, apperrors.NewValidationError("id", "invalid enrollment ID")
	}

	return s.enrollments.GetByID(ctx, id)
}

// ListByOffering retrieves all enrollments for a course offering
func (s *enrollmentServiceImpl) ListByOffering(ctx context.Context, offeringID int64) ([]*models.Enrollment, error) {
	if offeringID <= 0 {
		return nil, apperrors.NewValidationError("offeringId", "invalid offering ID")
	}

	return s.enrollments.ListByOffering(ctx, offeringID)
}

// ListByStudent retrieves all enrollments for a student
func (s *enrollmentServiceImpl) ListByStudent(ctx context.Context, studentID int64) ([]*models.Enrollment, error) {
	if studentID <= 0 {
		return nil, apperrors.NewValidationError("studentId", "invalid student ID")
	}

	return s.enrollments.ListByStudent(ctx, studentID)
}

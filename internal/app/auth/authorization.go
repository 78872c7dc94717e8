package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campusflow/campusflow/internal/app/models"
	"github.com/campusflow/campusflow/internal/pkg/apperrors"
	"github.com/campusflow/campusflow/internal/pkg/logger"
)

// AuthorizationService answers ownership questions that role checks alone
// cannot: whether an instructor teaches a given offering, and whether an
// enrollment belongs to a given student.
type AuthorizationService struct {
	db *pgxpool.Pool
}

// NewAuthorizationService creates a new AuthorizationService
func NewAuthorizationService(db *pgxpool.Pool) *AuthorizationService {
	return &AuthorizationService{db: db}
}

// CanGradeOffering reports whether the user may record scores for the
// offering. Admins always may; instructors only for offerings they teach.
func (s *AuthorizationService) CanGradeOffering(ctx context.Context, offeringID, userID int64, role models.RoleType) (bool, error) {
	if role == models.RoleAdmin {
		return true, nil
	}
	if role != models.RoleInstructor {
		return false, nil
	}

	var instructorID int64
	sql := "SELECT instructor_id FROM course_offerings WHERE id = $1"
	err := s.db.QueryRow(ctx, sql, offeringID).Scan(&instructorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, apperrors.ErrOfferingNotFound
		}
		logger.Error().Err(err).Int64("offeringID", offeringID).Int64("userID", userID).Msg("Error fetching offering instructor ID")
		return false, fmt.Errorf("failed to check offering ownership: %w", err)
	}
	return instructorID == userID, nil
}

// ValidateGradeAccess validates grading access for the enrollment's offering
// or returns an error.
func (s *AuthorizationService) ValidateGradeAccess(ctx context.Context, enrollmentID, userID int64, role models.RoleType) error {
	offeringID, _, err := s.enrollmentOwners(ctx, enrollmentID)
	if err != nil {
		return err
	}

	canGrade, err := s.CanGradeOffering(ctx, offeringID, userID, role)
	if err != nil {
		return err
	}
	if !canGrade {
		return apperrors.ErrPermissionDenied
	}
	return nil
}

// CanAccessEnrollment reports whether the user may view or withdraw the
// enrollment. Students only reach their own records; instructors reach
// enrollments in offerings they teach; admins reach everything.
func (s *AuthorizationService) CanAccessEnrollment(ctx context.Context, enrollmentID, userID int64, role models.RoleType) (bool, error) {
	if role == models.RoleAdmin {
		return true, nil
	}

	offeringID, studentID, err := s.enrollmentOwners(ctx, enrollmentID)
	if err != nil {
		return false, err
	}

	switch role {
	case models.RoleStudent:
		return studentID == userID, nil
	case models.RoleInstructor:
		return s.CanGradeOffering(ctx, offeringID, userID, role)
	default:
		return false, nil
	}
}

// ValidateEnrollmentAccess validates the user's access to the enrollment or
// returns an error.
func (s *AuthorizationService) ValidateEnrollmentAccess(ctx context.Context, enrollmentID, userID int64, role models.RoleType) error {
	canAccess, err := s.CanAccessEnrollment(ctx, enrollmentID, userID, role)
	if err != nil {
		return err
	}
	if !canAccess {
		return apperrors.ErrPermissionDenied
	}
	return nil
}

// ValidateRosterAccess validates that the user may list an offering's
// enrollments.
func (s *AuthorizationService) ValidateRosterAccess(ctx context.Context, offeringID, userID int64, role models.RoleType) error {
	canView, err := s.CanGradeOffering(ctx, offeringID, userID, role)
	if err != nil {
		return err
	}
	if !canView {
		return apperrors.ErrPermissionDenied
	}
	return nil
}

// ValidateStudentAccess validates that the user may list a student's
// enrollments. Students only see their own history.
func (s *AuthorizationService) ValidateStudentAccess(studentID, userID int64, role models.RoleType) error {
	if role == models.RoleAdmin || role == models.RoleInstructor {
		return nil
	}
	if studentID != userID {
		return apperrors.ErrPermissionDenied
	}
	return nil
}

// enrollmentOwners fetches the owning offering and student for an enrollment.
func (s *AuthorizationService) enrollmentOwners(ctx context.Context, enrollmentID int64) (offeringID, studentID int64, err error) {
	sql := "SELECT offering_id, student_id FROM enrollments WHERE id = $1"
	err = s.db.QueryRow(ctx, sql, enrollmentID).Scan(&offeringID, &studentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, 0, apperrors.ErrEnrollmentNotFound
		}
		logger.Error().Err(err).Int64("enrollmentID", enrollmentID).Msg("Error fetching enrollment owner IDs")
		return 0, 0, fmt.Errorf("failed to check enrollment ownership: %w", err)
	}
	return offeringID, studentID, nil
}

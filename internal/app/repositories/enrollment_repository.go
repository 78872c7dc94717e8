package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/campusflow/campusflow/internal/app/models"
	"github.com/campusflow/campusflow/internal/db"
	"github.com/campusflow/campusflow/internal/pkg/apperrors"
	"github.com/campusflow/campusflow/internal/pkg/dberrors"
)

const enrollmentColumns = `id, offering_id, student_id, enrolled_at, status, final_grade,
	midterm1, midterm2, final_exam, coursework, participation`

// EnrollmentRepository handles database operations for enrollments. Enroll
// and Withdraw pair the enrollment write with the offering seat count change
// in one transaction, so a failure on either side leaves both untouched.
type EnrollmentRepository struct {
	db           *db.PostgresDB
	offeringRepo *OfferingRepository
}

// NewEnrollmentRepository creates a new enrollment repository
func NewEnrollmentRepository(database *db.PostgresDB, offeringRepo *OfferingRepository) *EnrollmentRepository {
	return &EnrollmentRepository{
		db:           database,
		offeringRepo: offeringRepo,
	}
}

// Enroll takes a seat on the offering and inserts the enrollment record as a
// single transaction. Returns ErrCapacityExceeded when no seat remains and
// ErrDuplicateEnrollment when the student is already enrolled.
func (r *EnrollmentRepository) Enroll(ctx context.Context, enrollment *models.Enrollment) error {
	return r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := r.offeringRepo.IncrementEnrolled(ctx, tx, enrollment.OfferingID); err != nil {
			return err
		}

		query := `
			INSERT INTO enrollments (offering_id, student_id, status)
			VALUES ($1, $2, $3)
			RETURNING id, enrolled_at
		`

		err := tx.QueryRow(ctx, query,
			enrollment.OfferingID, enrollment.StudentID, enrollment.Status,
		).Scan(&enrollment.ID, &enrollment.EnrolledAt)

		if err != nil {
			if dberrors.IsDuplicateConstraintError(err, "enrollments_offering_id_student_id_key") {
				return apperrors.ErrDuplicateEnrollment
			}
			return fmt.Errorf("error creating enrollment: %w", err)
		}

		return nil
	})
}

// Withdraw marks the enrollment withdrawn and releases its seat in one
// transaction. The status condition makes the update the deciding check:
// racing withdrawals see zero rows affected and the seat is released once.
func (r *EnrollmentRepository) Withdraw(ctx context.Context, enrollment *models.Enrollment) error {
	return r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		cmdTag, err := tx.Exec(ctx,
			`UPDATE enrollments SET status = $1 WHERE id = $2 AND status IN ($3, $4)`,
			models.EnrollmentStatusWithdrawn, enrollment.ID,
			models.EnrollmentStatusEnrolled, models.EnrollmentStatusInProgress)

		if err != nil {
			return fmt.Errorf("error withdrawing enrollment: %w", err)
		}

		if cmdTag.RowsAffected() == 0 {
			return apperrors.ErrInvalidTransition
		}

		if err := r.offeringRepo.DecrementEnrolled(ctx, tx, enrollment.OfferingID); err != nil {
			return err
		}

		enrollment.Status = models.EnrollmentStatusWithdrawn
		return nil
	})
}

// UpdateGrade persists the component scores, the recomputed final grade and
// the resulting status in a single update.
func (r *EnrollmentRepository) UpdateGrade(ctx context.Context, enrollment *models.Enrollment) error {
	query := `
		UPDATE enrollments
		SET status = $1, final_grade = $2, midterm1 = $3, midterm2 = $4, final_exam = $5, coursework = $6, participation = $7
		WHERE id = $8
	`

	cmdTag, err := r.db.Pool.Exec(ctx, query,
		enrollment.Status,
		enrollment.FinalGrade,
		enrollment.Midterm1,
		enrollment.Midterm2,
		enrollment.FinalExam,
		enrollment.Coursework,
		enrollment.Participation,
		enrollment.ID,
	)

	if err != nil {
		return fmt.Errorf("error updating enrollment grade: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrEnrollmentNotFound
	}

	return nil
}

// GetByID retrieves an enrollment by ID
func (r *EnrollmentRepository) GetByID(ctx context.Context, id int64) (*models.Enrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM enrollments WHERE id = $1`

	enrollment, err := scanEnrollment(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrEnrollmentNotFound
		}
		return nil, fmt.Errorf("error retrieving enrollment: %w", err)
	}

	return enrollment, nil
}

// GetByOfferingAndStudent retrieves the enrollment for one (offering, student) pair
func (r *EnrollmentRepository) GetByOfferingAndStudent(ctx context.Context, offeringID, studentID int64) (*models.Enrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM enrollments WHERE offering_id = $1 AND student_id = $2`

	enrollment, err := scanEnrollment(r.db.Pool.QueryRow(ctx, query, offeringID, studentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrEnrollmentNotFound
		}
		return nil, fmt.Errorf("error retrieving enrollment: %w", err)
	}

	return enrollment, nil
}

// ListByOffering retrieves all enrollments for a course offering
func (r *EnrollmentRepository) ListByOffering(ctx context.Context, offeringID int64) ([]*models.Enrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM enrollments WHERE offering_id = $1 ORDER BY enrolled_at`

	return r.list(ctx, query, offeringID)
}

// ListByStudent retrieves all enrollments for a student
func (r *EnrollmentRepository) ListByStudent(ctx context.Context, studentID int64) ([]*models.Enrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM enrollments WHERE student_id = $1 ORDER BY enrolled_at DESC`

	return r.list(ctx, query, studentID)
}

func (r *EnrollmentRepository) list(ctx context.Context, query string, args ...any) ([]*models.Enrollment, error) {
	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing enrollments: %w", err)
	}
	defer rows.Close()

	var enrollments []*models.Enrollment
	for rows.Next() {
		enrollment, err := scanEnrollment(rows)
		if err != nil {
			return nil, err
		}
		enrollments = append(enrollments, enrollment)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return enrollments, nil
}

// CountActiveByOffering counts the non-terminal enrollments on an offering.
// Used to audit the stored seat count against the enrollment records.
func (r *EnrollmentRepository) CountActiveByOffering(ctx context.Context, offeringID int64) (int, error) {
	var count int
	err := r.db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM enrollments WHERE offering_id = $1 AND status != $2`,
		offeringID, models.EnrollmentStatusWithdrawn).Scan(&count)

	if err != nil {
		return 0, fmt.Errorf("error counting active enrollments: %w", err)
	}

	return count, nil
}

func scanEnrollment(row rowScanner) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	err := row.Scan(
		&enrollment.ID,
		&enrollment.OfferingID,
		&enrollment.StudentID,
		&enrollment.EnrolledAt,
		&enrollment.Status,
		&enrollment.FinalGrade,
		&enrollment.Midterm1,
		&enrollment.Midterm2,
		&enrollment.FinalExam,
		&enrollment.Coursework,
		&enrollment.Participation,
	)
	if err != nil {
		return nil, err
	}
	return &enrollment, nil
}

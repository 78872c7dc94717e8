package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campusflow/campusflow/internal/app/models"
	"github.com/campusflow/campusflow/internal/db"
	"github.com/campusflow/campusflow/internal/pkg/apperrors"
)

const offeringColumns = `id, subject_id, instructor_id, name, start_date, end_date,
	modality, room, schedule, max_seats, enrolled_count, is_active, created_at`

// OfferingFilter narrows offering listings.
type OfferingFilter struct {
	SubjectID    int64
	InstructorID int64
	ActiveOnly   bool
}

// OfferingRepository handles database operations for course offerings.
// The enrolled seat count is mutated exclusively through IncrementEnrolled
// and DecrementEnrolled so the capacity invariant holds under concurrency.
type OfferingRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewOfferingRepository creates a new offering repository
func NewOfferingRepository(db *pgxpool.Pool) *OfferingRepository {
	return &OfferingRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create creates a new course offering
func (r *OfferingRepository) Create(ctx context.Context, offering *models.CourseOffering) error {
	query := `
		INSERT INTO course_offerings
			(subject_id, instructor_id, name, start_date, end_date, modality, room, schedule, max_seats, enrolled_count, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 0, true)
		RETURNING id, enrolled_count, is_active, created_at
	`

	err := r.db.QueryRow(ctx, query,
		offering.SubjectID,
		offering.InstructorID,
		offering.Name,
		offering.StartDate,
		offering.EndDate,
		offering.Modality,
		offering.Room,
		offering.Schedule,
		offering.MaxSeats,
	).Scan(&offering.ID, &offering.EnrolledCount, &offering.IsActive, &offering.CreatedAt)

	if err != nil {
		return fmt.Errorf("error creating course offering: %w", err)
	}

	return nil
}

// GetByID retrieves a course offering by ID
func (r *OfferingRepository) GetByID(ctx context.Context, id int64) (*models.CourseOffering, error) {
	return r.getByID(ctx, r.db, id)
}

// GetByIDTx retrieves a course offering inside a transaction
func (r *OfferingRepository) GetByIDTx(ctx context.Context, tx pgx.Tx, id int64) (*models.CourseOffering, error) {
	return r.getByID(ctx, tx, id)
}

func (r *OfferingRepository) getByID(ctx context.Context, q db.Querier, id int64) (*models.CourseOffering, error) {
	query := `SELECT ` + offeringColumns + ` FROM course_offerings WHERE id = $1`

	offering, err := scanOffering(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrOfferingNotFound
		}
		return nil, fmt.Errorf("error retrieving course offering: %w", err)
	}

	return offering, nil
}

// List retrieves course offerings matching the filter, newest first
func (r *OfferingRepository) List(ctx context.Context, filter OfferingFilter, offset uint64, limit int) ([]*models.CourseOffering, int64, error) {
	base := r.sb.Select(offeringColumns).From("course_offerings")
	countBase := r.sb.Select("COUNT(*)").From("course_offerings")

	if filter.SubjectID > 0 {
		base = base.Where(squirrel.Eq{"subject_id": filter.SubjectID})
		countBase = countBase.Where(squirrel.Eq{"subject_id": filter.SubjectID})
	}
	if filter.InstructorID > 0 {
		base = base.Where(squirrel.Eq{"instructor_id": filter.InstructorID})
		countBase = countBase.Where(squirrel.Eq{"instructor_id": filter.InstructorID})
	}
	if filter.ActiveOnly {
		base = base.Where(squirrel.Eq{"is_active": true})
		countBase = countBase.Where(squirrel.Eq{"is_active": true})
	}

	countSQL, countArgs, err := countBase.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build offering count query: %w", err)
	}

	var total int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting course offerings: %w", err)
	}

	listSQL, listArgs, err := base.
		OrderBy("start_date DESC", "id DESC").
		Offset(offset).
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build offering list query: %w", err)
	}

	rows, err := r.db.Query(ctx, listSQL, listArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing course offerings: %w", err)
	}
	defer rows.Close()

	var offerings []*models.CourseOffering
	for rows.Next() {
		offering, err := scanOffering(rows)
		if err != nil {
			return nil, 0, err
		}
		offerings = append(offerings, offering)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return offerings, total, nil
}

// Update updates the mutable fields of an offering. Seat counts are not
// touched here.
func (r *OfferingRepository) Update(ctx context.Context, offering *models.CourseOffering) error {
	query := `
		UPDATE course_offerings
		SET name = $1, start_date = $2, end_date = $3, modality = $4, room = $5, schedule = $6, max_seats = $7
		WHERE id = $8
	`

	cmdTag, err := r.db.Exec(ctx, query,
		offering.Name,
		offering.StartDate,
		offering.EndDate,
		offering.Modality,
		offering.Room,
		offering.Schedule,
		offering.MaxSeats,
		offering.ID,
	)

	if err != nil {
		return fmt.Errorf("error updating course offering: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrOfferingNotFound
	}

	return nil
}

// Deactivate soft-deletes an offering. Offerings are never hard-deleted.
func (r *OfferingRepository) Deactivate(ctx context.Context, id int64) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE course_offerings SET is_active = false WHERE id = $1`, id)

	if err != nil {
		return fmt.Errorf("error deactivating course offering: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrOfferingNotFound
	}

	return nil
}

// IncrementEnrolled takes one seat on the offering. The capacity check and
// the increment are one conditional update, so two racing enrollments can
// never both take the last seat: the row is only updated while a seat
// remains, and a zero row count means the offering is full.
func (r *OfferingRepository) IncrementEnrolled(ctx context.Context, q db.Querier, id int64) error {
	query := `
		UPDATE course_offerings
		SET enrolled_count = enrolled_count + 1
		WHERE id = $1 AND enrolled_count < max_seats
	`

	cmdTag, err := q.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("error incrementing enrolled count: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		// Either the offering is full or it does not exist; distinguish
		var exists bool
		if err := q.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM course_offerings WHERE id = $1)`, id).Scan(&exists); err != nil {
			return fmt.Errorf("error checking offering existence: %w", err)
		}
		if !exists {
			return apperrors.ErrOfferingNotFound
		}
		return apperrors.ErrCapacityExceeded
	}

	return nil
}

// DecrementEnrolled releases one seat, flooring the count at zero.
func (r *OfferingRepository) DecrementEnrolled(ctx context.Context, q db.Querier, id int64) error {
	query := `
		UPDATE course_offerings
		SET enrolled_count = GREATEST(enrolled_count - 1, 0)
		WHERE id = $1
	`

	cmdTag, err := q.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("error decrementing enrolled count: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrOfferingNotFound
	}

	return nil
}

// rowScanner covers pgx.Row and pgx.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

func scanOffering(row rowScanner) (*models.CourseOffering, error) {
	var offering models.CourseOffering
	err := row.Scan(
		&offering.ID,
		&offering.SubjectID,
		&offering.InstructorID,
		&offering.Name,
		&offering.StartDate,
		&offering.EndDate,
		&offering.Modality,
		&offering.Room,
		&offering.Schedule,
		&offering.MaxSeats,
		&offering.EnrolledCount,
		&offering.IsActive,
		&offering.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &offering, nil
}

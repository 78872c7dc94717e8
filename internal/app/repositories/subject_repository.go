package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campusflow/campusflow/internal/app/models"
	"github.com/campusflow/campusflow/internal/pkg/apperrors"
	"github.com/campusflow/campusflow/internal/pkg/dberrors"
)

// SubjectRepository handles database operations for catalogue subjects
type SubjectRepository struct {
	db *pgxpool.Pool
}

// NewSubjectRepository creates a new subject repository
func NewSubjectRepository(db *pgxpool.Pool) *SubjectRepository {
	return &SubjectRepository{
		db: db,
	}
}

// Create creates a new subject
func (r *SubjectRepository) Create(ctx context.Context, subject *models.Subject) error {
	query := `
		INSERT INTO subjects (code, name, description, credits)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	err := r.db.QueryRow(ctx, query,
		subject.Code, subject.Name, subject.Description, subject.Credits,
	).Scan(&subject.ID)

	if err != nil {
		if dberrors.IsUniqueViolation(err) {
			return apperrors.ErrSubjectAlreadyExists
		}
		return fmt.Errorf("error creating subject: %w", err)
	}

	return nil
}

// GetByID retrieves a subject by ID
func (r *SubjectRepository) GetByID(ctx context.Context, id int64) (*models.Subject, error) {
	query := `
		SELECT id, code, name, description, credits
		FROM subjects
		WHERE id = $1
	`

	var subject models.Subject
	err := r.db.QueryRow(ctx, query, id).Scan(
		&subject.ID,
		&subject.Code,
		&subject.Name,
		&subject.Description,
		&subject.Credits,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrSubjectNotFound
		}
		return nil, fmt.Errorf("error retrieving subject: %w", err)
	}

	return &subject, nil
}

// GetAll retrieves all subjects
func (r *SubjectRepository) GetAll(ctx context.Context) ([]*models.Subject, error) {
	query := `
		SELECT id, code, name, description, credits
		FROM subjects
		ORDER BY code
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subjects []*models.Subject
	for rows.Next() {
		var subject models.Subject
		if err := rows.Scan(
			&subject.ID,
			&subject.Code,
			&subject.Name,
			&subject.Description,
			&subject.Credits,
		); err != nil {
			return nil, err
		}
		subjects = append(subjects, &subject)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return subjects, nil
}

// Update updates an existing subject
func (r *SubjectRepository) Update(ctx context.Context, subject *models.Subject) error {
	query := `
		UPDATE subjects
		SET code = $1, name = $2, description = $3, credits = $4
		WHERE id = $5
	`

	cmdTag, err := r.db.Exec(ctx, query,
		subject.Code, subject.Name, subject.Description, subject.Credits, subject.ID)

	if err != nil {
		if dberrors.IsUniqueViolation(err) {
			return apperrors.ErrSubjectAlreadyExists
		}
		return fmt.Errorf("error updating subject: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrSubjectNotFound
	}

	return nil
}

// Delete deletes a subject by ID, refusing when offerings reference it
func (r *SubjectRepository) Delete(ctx context.Context, id int64) error {
	var hasOfferings bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM course_offerings WHERE subject_id = $1)`, id).Scan(&hasOfferings)

	if err != nil {
		return fmt.Errorf("error checking subject offerings: %w", err)
	}

	if hasOfferings {
		return apperrors.ErrSubjectHasOfferings
	}

	cmdTag, err := r.db.Exec(ctx, `DELETE FROM subjects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting subject: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrSubjectNotFound
	}

	return nil
}

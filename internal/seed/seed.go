package seed

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	appModels "github.com/campusflow/campusflow/internal/app/models"
	appRepos "github.com/campusflow/campusflow/internal/app/repositories"
	"github.com/campusflow/campusflow/internal/pkg/apperrors"
	pkgAuth "github.com/campusflow/campusflow/internal/pkg/auth"
)

// CreateDefaultData seeds the default admin account and a starter set of
// catalogue subjects. Every insert is idempotent; existing rows are skipped.
func CreateDefaultData(ctx context.Context, dbPool *pgxpool.Pool, lgr zerolog.Logger) error {
	userRepo := appRepos.NewUserRepository(dbPool)
	subjectRepo := appRepos.NewSubjectRepository(dbPool)

	lgr.Info().Msg("Checking/Creating default data...")
	var finalErr error

	// --- Default admin account ---
	exists, err := userRepo.EmailExists(ctx, "admin@campusflow.app")
	if err != nil {
		lgr.Error().Err(err).Msg("Error checking default admin account")
		finalErr = errors.Join(finalErr, err)
	} else if !exists {
		hashed, err := pkgAuth.HashPassword("ChangeMe123!")
		if err != nil {
			lgr.Error().Err(err).Msg("Error hashing default admin password")
			finalErr = errors.Join(finalErr, err)
		} else {
			admin := &appModels.User{
				Email:     "admin@campusflow.app",
				Password:  hashed,
				FirstName: "System",
				LastName:  "Administrator",
				RoleType:  appModels.RoleAdmin,
				IsActive:  true,
			}
			if err := userRepo.Create(ctx, admin); err != nil && !errors.Is(err, apperrors.ErrEmailAlreadyExists) {
				lgr.Error().Err(err).Msg("Error creating default admin account")
				finalErr = errors.Join(finalErr, err)
			} else if err == nil {
				lgr.Info().Int64("userID", admin.ID).Msg("Default admin account created")
			}
		}
	}

	// --- Starter catalogue subjects ---
	algoDesc := "Design and analysis of algorithms, complexity classes and common paradigms."
	osDesc := "Processes, scheduling, memory management and file systems."
	dbDesc := "Relational model, SQL, transactions and indexing."

	subjects := []*appModels.Subject{
		{Code: "CS201", Name: "Algorithms", Description: &algoDesc, Credits: 6},
		{Code: "CS301", Name: "Operating Systems", Description: &osDesc, Credits: 6},
		{Code: "CS305", Name: "Database Systems", Description: &dbDesc, Credits: 5},
	}

	for _, subject := range subjects {
		if err := subjectRepo.Create(ctx, subject); err != nil {
			if errors.Is(err, apperrors.ErrSubjectAlreadyExists) {
				continue
			}
			lgr.Error().Err(err).Str("code", subject.Code).Msg("Error creating default subject")
			finalErr = errors.Join(finalErr, err)
		} else {
			lgr.Info().Str("code", subject.Code).Msg("Default subject created")
		}
	}

	if finalErr != nil {
		return finalErr
	}

	lgr.Info().Msg("Default data check complete.")
	return nil
}

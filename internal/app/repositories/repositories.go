package repositories

import (
	"github.com/campusflow/campusflow/internal/db"
)

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository       *UserRepository
	TokenRepository      *TokenRepository
	SubjectRepository    *SubjectRepository
	OfferingRepository   *OfferingRepository
	EnrollmentRepository *EnrollmentRepository
}

// NewRepositories initializes all repositories
func NewRepositories(database *db.PostgresDB) *Repositories {
	offeringRepo := NewOfferingRepository(database.Pool)
	return &Repositories{
		UserRepository:       NewUserRepository(database.Pool),
		TokenRepository:      NewTokenRepository(database.Pool),
		SubjectRepository:    NewSubjectRepository(database.Pool),
		OfferingRepository:   offeringRepo,
		EnrollmentRepository: NewEnrollmentRepository(database, offeringRepo),
	}
}

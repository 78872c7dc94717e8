package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/campusflow/campusflow/internal/app/models"
	"github.com/campusflow/campusflow/internal/pkg/apperrors"
)

// fakeSubjectWriteStore keeps subjects in memory and enforces code uniqueness
// and the no-delete-with-offerings rule the way the repository does.
type fakeSubjectWriteStore struct {
	subjects      map[int64]*models.Subject
	withOfferings map[int64]bool
	nextID        int64
}

func newFakeSubjectWriteStore() *fakeSubjectWriteStore {
	return &fakeSubjectWriteStore{
		subjects:      make(map[int64]*models.Subject),
		withOfferings: make(map[int64]bool),
		nextID:        1,
	}
}

func (s *fakeSubjectWriteStore) Create(_ context.Context, subject *models.Subject) error {
	for _, existing := range s.subjects {
		if existing.Code == subject.Code {
			return apperrors.ErrSubjectAlreadyExists
		}
	}
	subject.ID = s.nextID
	s.nextID++
	copied := *subject
	s.subjects[copied.ID] = &copied
	return nil
}

func (s *fakeSubjectWriteStore) GetByID(_ context.Context, id int64) (*models.Subject, error) {
	subject, ok := s.subjects[id]
	if !ok {
		return nil, apperrors.ErrSubjectNotFound
	}
	copied := *subject
	return &copied, nil
}

func (s *fakeSubjectWriteStore) GetAll(_ context.Context) ([]*models.Subject, error) {
	result := make([]*models.Subject, 0, len(s.subjects))
	for _, subject := range s.subjects {
		copied := *subject
		result = append(result, &copied)
	}
	return result, nil
}

func (s *fakeSubjectWriteStore) Update(_ context.Context, subject *models.Subject) error {
	if _, ok := s.subjects[subject.ID]; !ok {
		return apperrors.ErrSubjectNotFound
	}
	copied := *subject
	s.subjects[copied.ID] = &copied
	return nil
}

func (s *fakeSubjectWriteStore) Delete(_ context.Context, id int64) error {
	if _, ok := s.subjects[id]; !ok {
		return apperrors.ErrSubjectNotFound
	}
	if s.withOfferings[id] {
		return apperrors.ErrSubjectHasOfferings
	}
	delete(s.subjects, id)
	return nil
}

func TestCreateSubject_NormalizesCode(t *testing.T) {
	store := newFakeSubjectWriteStore()
	service := NewSubjectService(store)

	subject := &models.Subject{Code: "  cs301 ", Name: "Operating Systems", Credits: 6}
	err := service.CreateSubject(context.Background(), subject)

	assert.NoError(t, err)
	assert.Equal(t, "CS301", subject.Code)
	assert.NotZero(t, subject.ID)
}

func TestCreateSubject_Validation(t *testing.T) {
	service := NewSubjectService(newFakeSubjectWriteStore())

	cases := []struct {
		name    string
		subject *models.Subject
	}{
		{"blank code", &models.Subject{Code: "   ", Name: "Algorithms", Credits: 5}},
		{"blank name", &models.Subject{Code: "CS201", Name: "", Credits: 5}},
		{"zero credits", &models.Subject{Code: "CS201", Name: "Algorithms", Credits: 0}},
		{"negative credits", &models.Subject{Code: "CS201", Name: "Algorithms", Credits: -3}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := service.CreateSubject(context.Background(), tc.subject)
			assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
		})
	}
}

func TestCreateSubject_DuplicateCode(t *testing.T) {
	store := newFakeSubjectWriteStore()
	service := NewSubjectService(store)

	first := &models.Subject{Code: "CS201", Name: "Algorithms", Credits: 5}
	assert.NoError(t, service.CreateSubject(context.Background(), first))

	// Same code in different case collides after normalization.
	second := &models.Subject{Code: "cs201", Name: "Algorithms II", Credits: 5}
	err := service.CreateSubject(context.Background(), second)
	assert.ErrorIs(t, err, apperrors.ErrSubjectAlreadyExists)
}

func TestUpdateSubject(t *testing.T) {
	store := newFakeSubjectWriteStore()
	service := NewSubjectService(store)

	subject := &models.Subject{Code: "CS201", Name: "Algorithms", Credits: 5}
	assert.NoError(t, service.CreateSubject(context.Background(), subject))

	subject.Name = "Algorithms and Data Structures"
	subject.Credits = 6
	assert.NoError(t, service.UpdateSubject(context.Background(), subject))

	stored, err := service.GetSubjectByID(context.Background(), subject.ID)
	assert.NoError(t, err)
	assert.Equal(t, "Algorithms and Data Structures", stored.Name)
	assert.Equal(t, 6, stored.Credits)
}

func TestUpdateSubject_MissingID(t *testing.T) {
	service := NewSubjectService(newFakeSubjectWriteStore())

	err := service.UpdateSubject(context.Background(), &models.Subject{Code: "CS201", Name: "Algorithms", Credits: 5})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestDeleteSubject_WithOfferingsRejected(t *testing.T) {
	store := newFakeSubjectWriteStore()
	service := NewSubjectService(store)

	subject := &models.Subject{Code: "CS305", Name: "Database Systems", Credits: 6}
	assert.NoError(t, service.CreateSubject(context.Background(), subject))
	store.withOfferings[subject.ID] = true

	err := service.DeleteSubject(context.Background(), subject.ID)
	assert.ErrorIs(t, err, apperrors.ErrSubjectHasOfferings)

	_, err = service.GetSubjectByID(context.Background(), subject.ID)
	assert.NoError(t, err)
}

func TestDeleteSubject(t *testing.T) {
	store := newFakeSubjectWriteStore()
	service := NewSubjectService(store)

	subject := &models.Subject{Code: "CS305", Name: "Database Systems", Credits: 6}
	assert.NoError(t, service.CreateSubject(context.Background(), subject))

	assert.NoError(t, service.DeleteSubject(context.Background(), subject.ID))

	_, err := service.GetSubjectByID(context.Background(), subject.ID)
	assert.True(t, errors.Is(err, apperrors.ErrSubjectNotFound))
}

func TestGetSubjectByID_InvalidID(t *testing.T) {
	service := NewSubjectService(newFakeSubjectWriteStore())

	_, err := service.GetSubjectByID(context.Background(), 0)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/campusflow/campusflow/internal/app/models"
	"github.com/campusflow/campusflow/internal/app/repositories"
	"github.com/campusflow/campusflow/internal/pkg/apperrors"
)

// fakeOfferingWriteStore extends the read-only fake with the write surface the
// offering service needs.
type fakeOfferingWriteStore struct {
	*fakeOfferingStore
	nextID int64
}

func newFakeOfferingWriteStore(offerings ...*models.CourseOffering) *fakeOfferingWriteStore {
	return &fakeOfferingWriteStore{fakeOfferingStore: newFakeOfferingStore(offerings...), nextID: 100}
}

func (s *fakeOfferingWriteStore) Create(_ context.Context, offering *models.CourseOffering) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	offering.ID = s.nextID
	s.nextID++
	copied := *offering
	s.offerings[offering.ID] = &copied
	return nil
}

func (s *fakeOfferingWriteStore) List(_ context.Context, filter repositories.OfferingFilter, offset uint64, limit int) ([]*models.CourseOffering, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.CourseOffering
	for _, o := range s.offerings {
		if filter.ActiveOnly && !o.IsActive {
			continue
		}
		if filter.SubjectID > 0 && o.SubjectID != filter.SubjectID {
			continue
		}
		copied := *o
		out = append(out, &copied)
	}
	return out, int64(len(out)), nil
}

func (s *fakeOfferingWriteStore) Update(_ context.Context, offering *models.CourseOffering) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.offerings[offering.ID]; !ok {
		return apperrors.ErrOfferingNotFound
	}
	existing := s.offerings[offering.ID]
	copied := *offering
	copied.EnrolledCount = existing.EnrolledCount
	s.offerings[offering.ID] = &copied
	return nil
}

func (s *fakeOfferingWriteStore) Deactivate(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.offerings[id]
	if !ok {
		return apperrors.ErrOfferingNotFound
	}
	o.IsActive = false
	return nil
}

// fakeSubjectStore answers subject lookups from a fixed set.
type fakeSubjectStore struct {
	subjects map[int64]*models.Subject
}

func (s *fakeSubjectStore) GetByID(_ context.Context, id int64) (*models.Subject, error) {
	subject, ok := s.subjects[id]
	if !ok {
		return nil, apperrors.ErrSubjectNotFound
	}
	return subject, nil
}

func newTestOfferingService(offerings *fakeOfferingWriteStore) OfferingService {
	subjects := &fakeSubjectStore{subjects: map[int64]*models.Subject{
		1: {ID: 1, Code: "CS301", Name: "Operating Systems"},
	}}
	users := &fakeUserStore{roles: map[int64]models.RoleType{
		100: models.RoleInstructor,
		7:   models.RoleStudent,
	}}
	return NewOfferingService(offerings, subjects, users)
}

func validOffering() *models.CourseOffering {
	room := "B-204"
	return &models.CourseOffering{
		SubjectID:    1,
		InstructorID: 100,
		Name:         "Operating Systems - Section A",
		StartDate:    time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC),
		EndDate:      time.Date(2026, 12, 18, 0, 0, 0, 0, time.UTC),
		Modality:     models.ModalityOnSite,
		Room:         &room,
		Schedule:     "Mon/Wed 10:00-12:00",
		MaxSeats:     40,
		IsActive:     true,
	}
}

func TestCreateOffering_Success(t *testing.T) {
	store := newFakeOfferingWriteStore()
	svc := newTestOfferingService(store)

	offering := validOffering()
	err := svc.CreateOffering(context.Background(), offering)

	assert.NoError(t, err)
	assert.NotZero(t, offering.ID)
}

func TestCreateOffering_EndBeforeStart(t *testing.T) {
	svc := newTestOfferingService(newFakeOfferingWriteStore())

	offering := validOffering()
	offering.EndDate = offering.StartDate.Add(-24 * time.Hour)

	err := svc.CreateOffering(context.Background(), offering)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestCreateOffering_EndEqualsStart(t *testing.T) {
	svc := newTestOfferingService(newFakeOfferingWriteStore())

	offering := validOffering()
	offering.EndDate = offering.StartDate

	err := svc.CreateOffering(context.Background(), offering)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestCreateOffering_RoomRules(t *testing.T) {
	svc := newTestOfferingService(newFakeOfferingWriteStore())
	ctx := context.Background()

	onSite := validOffering()
	onSite.Room = nil
	assert.ErrorIs(t, svc.CreateOffering(ctx, onSite), apperrors.ErrValidationFailed)

	hybrid := validOffering()
	hybrid.Modality = models.ModalityHybrid
	empty := "   "
	hybrid.Room = &empty
	assert.ErrorIs(t, svc.CreateOffering(ctx, hybrid), apperrors.ErrValidationFailed)

	online := validOffering()
	online.Modality = models.ModalityOnline
	online.Room = nil
	assert.NoError(t, svc.CreateOffering(ctx, online))
}

func TestCreateOffering_SeatBounds(t *testing.T) {
	svc := newTestOfferingService(newFakeOfferingWriteStore())
	ctx := context.Background()

	zero := validOffering()
	zero.MaxSeats = 0
	assert.ErrorIs(t, svc.CreateOffering(ctx, zero), apperrors.ErrValidationFailed)

	over := validOffering()
	over.MaxSeats = 101
	assert.ErrorIs(t, svc.CreateOffering(ctx, over), apperrors.ErrValidationFailed)

	one := validOffering()
	one.MaxSeats = 1
	assert.NoError(t, svc.CreateOffering(ctx, one))

	hundred := validOffering()
	hundred.MaxSeats = 100
	assert.NoError(t, svc.CreateOffering(ctx, hundred))
}

func TestCreateOffering_UnknownSubject(t *testing.T) {
	svc := newTestOfferingService(newFakeOfferingWriteStore())

	offering := validOffering()
	offering.SubjectID = 99

	err := svc.CreateOffering(context.Background(), offering)
	assert.ErrorIs(t, err, apperrors.ErrSubjectNotFound)
}

func TestCreateOffering_InstructorRoleRequired(t *testing.T) {
	svc := newTestOfferingService(newFakeOfferingWriteStore())

	offering := validOffering()
	offering.InstructorID = 7 // a student

	err := svc.CreateOffering(context.Background(), offering)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestUpdateOffering_CannotShrinkBelowEnrolled(t *testing.T) {
	existing := activeOffering(1, 40)
	existing.EnrolledCount = 25
	store := newFakeOfferingWriteStore(existing)
	svc := newTestOfferingService(store)

	update := validOffering()
	update.ID = 1
	update.MaxSeats = 20

	err := svc.UpdateOffering(context.Background(), update)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	update.MaxSeats = 25
	assert.NoError(t, svc.UpdateOffering(context.Background(), update))
}

func TestListOfferings_Filters(t *testing.T) {
	first := activeOffering(1, 40)
	second := activeOffering(2, 40)
	second.SubjectID = 2
	inactive := activeOffering(3, 40)
	inactive.IsActive = false
	store := newFakeOfferingWriteStore(first, second, inactive)
	svc := newTestOfferingService(store)
	ctx := context.Background()

	all, total, err := svc.ListOfferings(ctx, repositories.OfferingFilter{}, 0, 20)
	assert.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, int64(3), total)

	active, _, err := svc.ListOfferings(ctx, repositories.OfferingFilter{ActiveOnly: true}, 0, 20)
	assert.NoError(t, err)
	assert.Len(t, active, 2)

	bySubject, _, err := svc.ListOfferings(ctx, repositories.OfferingFilter{SubjectID: 2}, 0, 20)
	assert.NoError(t, err)
	if assert.Len(t, bySubject, 1) {
		assert.Equal(t, int64(2), bySubject[0].ID)
	}
}

func TestDeactivateOffering(t *testing.T) {
	store := newFakeOfferingWriteStore(activeOffering(1, 40))
	svc := newTestOfferingService(store)
	ctx := context.Background()

	assert.NoError(t, svc.DeactivateOffering(ctx, 1))

	offering, err := svc.GetOccupancy(ctx, 1)
	assert.NoError(t, err)
	assert.False(t, offering.IsActive)
	assert.Equal(t, models.OfferingStatusInactive, offering.Status(time.Now()))
}

func TestGetOfferingByID_AttachesSubject(t *testing.T) {
	store := newFakeOfferingWriteStore(activeOffering(1, 40))
	svc := newTestOfferingService(store)

	offering, err := svc.GetOfferingByID(context.Background(), 1)
	assert.NoError(t, err)
	if assert.NotNil(t, offering.Subject) {
		assert.Equal(t, "CS301", offering.Subject.Code)
	}
}

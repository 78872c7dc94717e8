package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/campusflow/campusflow/internal/app/models"
	"github.com/campusflow/campusflow/internal/pkg/apperrors"
	"github.com/campusflow/campusflow/internal/pkg/grading"
)

// fakeOfferingStore keeps offerings in memory. The seat counter is guarded by
// a mutex and only incremented when below max_seats, mirroring the conditional
// UPDATE the real repository issues.
type fakeOfferingStore struct {
	mu        sync.Mutex
	offerings map[int64]*models.CourseOffering
}

func newFakeOfferingStore(offerings ...*models.CourseOffering) *fakeOfferingStore {
	s := &fakeOfferingStore{offerings: make(map[int64]*models.CourseOffering)}
	for _, o := range offerings {
		s.offerings[o.ID] = o
	}
	return s
}

func (s *fakeOfferingStore) GetByID(_ context.Context, id int64) (*models.CourseOffering, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.offerings[id]
	if !ok {
		return nil, apperrors.ErrOfferingNotFound
	}
	copied := *o
	return &copied, nil
}

func (s *fakeOfferingStore) takeSeat(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.offerings[id]
	if !ok {
		return apperrors.ErrOfferingNotFound
	}
	if o.EnrolledCount >= o.MaxSeats {
		return apperrors.ErrCapacityExceeded
	}
	o.EnrolledCount++
	return nil
}

func (s *fakeOfferingStore) releaseSeat(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o, ok := s.offerings[id]; ok && o.EnrolledCount > 0 {
		o.EnrolledCount--
	}
}

func (s *fakeOfferingStore) enrolledCount(id int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.offerings[id].EnrolledCount
}

// fakeEnrollmentStore pairs each enrollment write with the seat count change,
// the way the real repository does inside one transaction.
type fakeEnrollmentStore struct {
	mu          sync.Mutex
	offerings   *fakeOfferingStore
	enrollments map[int64]*models.Enrollment
	nextID      int64
}

func newFakeEnrollmentStore(offerings *fakeOfferingStore) *fakeEnrollmentStore {
	return &fakeEnrollmentStore{
		offerings:   offerings,
		enrollments: make(map[int64]*models.Enrollment),
		nextID:      1,
	}
}

func (s *fakeEnrollmentStore) Enroll(_ context.Context, enrollment *models.Enrollment) error {
	if err := s.offerings.takeSeat(enrollment.OfferingID); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.enrollments {
		if e.OfferingID == enrollment.OfferingID && e.StudentID == enrollment.StudentID {
			s.offerings.releaseSeat(enrollment.OfferingID)
			return apperrors.ErrDuplicateEnrollment
		}
	}
	enrollment.ID = s.nextID
	s.nextID++
	enrollment.EnrolledAt = time.Now()
	copied := *enrollment
	s.enrollments[enrollment.ID] = &copied
	return nil
}

// Withdraw flips the status only when it is still withdrawable, mirroring the
// conditional UPDATE the real repository issues, so only the winning caller
// releases the seat.
func (s *fakeEnrollmentStore) Withdraw(_ context.Context, enrollment *models.Enrollment) error {
	s.mu.Lock()
	stored, ok := s.enrollments[enrollment.ID]
	if !ok || !stored.Status.CanWithdraw() {
		s.mu.Unlock()
		return apperrors.ErrInvalidTransition
	}
	stored.Status = models.EnrollmentStatusWithdrawn
	enrollment.Status = models.EnrollmentStatusWithdrawn
	s.mu.Unlock()

	s.offerings.releaseSeat(enrollment.OfferingID)
	return nil
}

func (s *fakeEnrollmentStore) UpdateGrade(_ context.Context, enrollment *models.Enrollment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.enrollments[enrollment.ID]; !ok {
		return apperrors.ErrEnrollmentNotFound
	}
	copied := *enrollment
	s.enrollments[enrollment.ID] = &copied
	return nil
}

func (s *fakeEnrollmentStore) GetByID(_ context.Context, id int64) (*models.Enrollment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.enrollments[id]
	if !ok {
		return nil, apperrors.ErrEnrollmentNotFound
	}
	copied := *e
	return &copied, nil
}

func (s *fakeEnrollmentStore) GetByOfferingAndStudent(_ context.Context, offeringID, studentID int64) (*models.Enrollment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.enrollments {
		if e.OfferingID == offeringID && e.StudentID == studentID {
			copied := *e
			return &copied, nil
		}
	}
	return nil, apperrors.ErrEnrollmentNotFound
}

func (s *fakeEnrollmentStore) ListByOffering(_ context.Context, offeringID int64) ([]*models.Enrollment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Enrollment
	for _, e := range s.enrollments {
		if e.OfferingID == offeringID {
			copied := *e
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (s *fakeEnrollmentStore) ListByStudent(_ context.Context, studentID int64) ([]*models.Enrollment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Enrollment
	for _, e := range s.enrollments {
		if e.StudentID == studentID {
			copied := *e
			out = append(out, &copied)
		}
	}
	return out, nil
}

// fakeUserStore answers role checks from a fixed role map.
type fakeUserStore struct {
	roles map[int64]models.RoleType
}

func (s *fakeUserStore) GetByID(_ context.Context, id int64) (*models.User, error) {
	role, ok := s.roles[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return &models.User{ID: id, RoleType: role}, nil
}

func (s *fakeUserStore) HasRole(_ context.Context, id int64, role models.RoleType) (bool, error) {
	return s.roles[id] == role, nil
}

func activeOffering(id int64, maxSeats int) *models.CourseOffering {
	room := "B-204"
	return &models.CourseOffering{
		ID:           id,
		SubjectID:    1,
		InstructorID: 100,
		Name:         "Operating Systems - Section A",
		StartDate:    time.Now().Add(-24 * time.Hour),
		EndDate:      time.Now().Add(90 * 24 * time.Hour),
		Modality:     models.ModalityOnSite,
		Room:         &room,
		MaxSeats:     maxSeats,
		IsActive:     true,
	}
}

func studentRoles(ids ...int64) *fakeUserStore {
	roles := make(map[int64]models.RoleType)
	for _, id := range ids {
		roles[id] = models.RoleStudent
	}
	return &fakeUserStore{roles: roles}
}

func newTestEnrollmentService(offerings *fakeOfferingStore, enrollments *fakeEnrollmentStore, users *fakeUserStore) EnrollmentService {
	return NewEnrollmentService(enrollments, offerings, users, zerolog.Nop())
}

func TestEnroll_Success(t *testing.T) {
	offerings := newFakeOfferingStore(activeOffering(1, 30))
	enrollments := newFakeEnrollmentStore(offerings)
	svc := newTestEnrollmentService(offerings, enrollments, studentRoles(7))

	enrollment, err := svc.Enroll(context.Background(), 1, 7)

	assert.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusEnrolled, enrollment.Status)
	assert.Equal(t, 1, offerings.enrolledCount(1))
}

func TestEnroll_Duplicate(t *testing.T) {
	offerings := newFakeOfferingStore(activeOffering(1, 30))
	enrollments := newFakeEnrollmentStore(offerings)
	svc := newTestEnrollmentService(offerings, enrollments, studentRoles(7))

	_, err := svc.Enroll(context.Background(), 1, 7)
	assert.NoError(t, err)

	_, err = svc.Enroll(context.Background(), 1, 7)
	assert.ErrorIs(t, err, apperrors.ErrDuplicateEnrollment)
	assert.Equal(t, 1, offerings.enrolledCount(1))
}

func TestEnroll_CapacityExceeded(t *testing.T) {
	offerings := newFakeOfferingStore(activeOffering(1, 1))
	enrollments := newFakeEnrollmentStore(offerings)
	svc := newTestEnrollmentService(offerings, enrollments, studentRoles(7, 8))

	_, err := svc.Enroll(context.Background(), 1, 7)
	assert.NoError(t, err)

	_, err = svc.Enroll(context.Background(), 1, 8)
	assert.ErrorIs(t, err, apperrors.ErrCapacityExceeded)
	assert.Equal(t, 1, offerings.enrolledCount(1))
}

func TestEnroll_ConcurrentRaceForLastSeat(t *testing.T) {
	const students = 50

	offerings := newFakeOfferingStore(activeOffering(1, 1))
	enrollments := newFakeEnrollmentStore(offerings)

	ids := make([]int64, students)
	for i := range ids {
		ids[i] = int64(1000 + i)
	}
	svc := newTestEnrollmentService(offerings, enrollments, studentRoles(ids...))

	var wg sync.WaitGroup
	errs := make([]error, students)
	for i, studentID := range ids {
		wg.Add(1)
		go func(i int, studentID int64) {
			defer wg.Done()
			_, errs[i] = svc.Enroll(context.Background(), 1, studentID)
		}(i, studentID)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
		} else {
			assert.ErrorIs(t, err, apperrors.ErrCapacityExceeded)
		}
	}
	assert.Equal(t, 1, successes, "exactly one enrollment must win the last seat")
	assert.Equal(t, 1, offerings.enrolledCount(1))
}

func TestEnroll_SeatFreedByWithdrawalCanBeRetaken(t *testing.T) {
	offerings := newFakeOfferingStore(activeOffering(1, 1))
	enrollments := newFakeEnrollmentStore(offerings)
	svc := newTestEnrollmentService(offerings, enrollments, studentRoles(7, 8))
	ctx := context.Background()

	first, err := svc.Enroll(ctx, 1, 7)
	assert.NoError(t, err)

	_, err = svc.Enroll(ctx, 1, 8)
	assert.ErrorIs(t, err, apperrors.ErrCapacityExceeded)

	_, err = svc.Withdraw(ctx, first.ID)
	assert.NoError(t, err)
	assert.Equal(t, 0, offerings.enrolledCount(1))

	_, err = svc.Enroll(ctx, 1, 8)
	assert.NoError(t, err)
	assert.Equal(t, 1, offerings.enrolledCount(1))
}

func TestEnroll_OfferingInactive(t *testing.T) {
	offering := activeOffering(1, 30)
	offering.IsActive = false
	offerings := newFakeOfferingStore(offering)
	enrollments := newFakeEnrollmentStore(offerings)
	svc := newTestEnrollmentService(offerings, enrollments, studentRoles(7))

	_, err := svc.Enroll(context.Background(), 1, 7)
	assert.ErrorIs(t, err, apperrors.ErrOfferingInactive)
}

func TestEnroll_OfferingFinished(t *testing.T) {
	offering := activeOffering(1, 30)
	offering.StartDate = time.Now().Add(-60 * 24 * time.Hour)
	offering.EndDate = time.Now().Add(-24 * time.Hour)
	offerings := newFakeOfferingStore(offering)
	enrollments := newFakeEnrollmentStore(offerings)
	svc := newTestEnrollmentService(offerings, enrollments, studentRoles(7))

	_, err := svc.Enroll(context.Background(), 1, 7)
	assert.ErrorIs(t, err, apperrors.ErrOfferingFinished)
}

func TestEnroll_UnknownOffering(t *testing.T) {
	offerings := newFakeOfferingStore()
	enrollments := newFakeEnrollmentStore(offerings)
	svc := newTestEnrollmentService(offerings, enrollments, studentRoles(7))

	_, err := svc.Enroll(context.Background(), 42, 7)
	assert.ErrorIs(t, err, apperrors.ErrOfferingNotFound)
}

func TestEnroll_NonStudentRejected(t *testing.T) {
	offerings := newFakeOfferingStore(activeOffering(1, 30))
	enrollments := newFakeEnrollmentStore(offerings)
	users := &fakeUserStore{roles: map[int64]models.RoleType{50: models.RoleInstructor}}
	svc := newTestEnrollmentService(offerings, enrollments, users)

	_, err := svc.Enroll(context.Background(), 1, 50)
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func TestWithdraw_FromTerminalStatusRejected(t *testing.T) {
	offerings := newFakeOfferingStore(activeOffering(1, 30))
	enrollments := newFakeEnrollmentStore(offerings)
	svc := newTestEnrollmentService(offerings, enrollments, studentRoles(7))
	ctx := context.Background()

	enrollment, err := svc.Enroll(ctx, 1, 7)
	assert.NoError(t, err)

	// push to APPROVED via scores
	_, err = svc.RecordScore(ctx, enrollment.ID, grading.ComponentFinal, 90)
	assert.NoError(t, err)

	_, err = svc.Withdraw(ctx, enrollment.ID)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
	assert.Equal(t, 1, offerings.enrolledCount(1), "seat count must not change on a rejected withdrawal")
}

func TestWithdraw_Twice(t *testing.T) {
	offerings := newFakeOfferingStore(activeOffering(1, 30))
	enrollments := newFakeEnrollmentStore(offerings)
	svc := newTestEnrollmentService(offerings, enrollments, studentRoles(7))
	ctx := context.Background()

	enrollment, err := svc.Enroll(ctx, 1, 7)
	assert.NoError(t, err)

	_, err = svc.Withdraw(ctx, enrollment.ID)
	assert.NoError(t, err)

	_, err = svc.Withdraw(ctx, enrollment.ID)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
	assert.Equal(t, 0, offerings.enrolledCount(1))
}

func TestWithdraw_ConcurrentReleasesSeatOnce(t *testing.T) {
	for iter := 0; iter < 200; iter++ {
		offerings := newFakeOfferingStore(activeOffering(1, 2))
		enrollments := newFakeEnrollmentStore(offerings)
		svc := newTestEnrollmentService(offerings, enrollments, studentRoles(7, 8))
		ctx := context.Background()

		target, err := svc.Enroll(ctx, 1, 7)
		assert.NoError(t, err)
		_, err = svc.Enroll(ctx, 1, 8)
		assert.NoError(t, err)

		start := make(chan struct{})
		errs := make([]error, 2)
		var wg sync.WaitGroup
		for i := 0; i < 2; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				<-start
				_, errs[i] = svc.Withdraw(ctx, target.ID)
			}(i)
		}
		close(start)
		wg.Wait()

		successes := 0
		for _, err := range errs {
			if err == nil {
				successes++
			} else {
				assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
			}
		}
		assert.Equal(t, 1, successes, "exactly one withdrawal may succeed")
		assert.Equal(t, 1, offerings.enrolledCount(1), "the other student's seat must survive")
	}
}

func TestRecordScore_MovesEnrolledToInProgress(t *testing.T) {
	offerings := newFakeOfferingStore(activeOffering(1, 30))
	enrollments := newFakeEnrollmentStore(offerings)
	svc := newTestEnrollmentService(offerings, enrollments, studentRoles(7))
	ctx := context.Background()

	enrollment, err := svc.Enroll(ctx, 1, 7)
	assert.NoError(t, err)

	updated, err := svc.RecordScore(ctx, enrollment.ID, grading.ComponentMidterm1, 65)
	assert.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusFailed, updated.Status)
	if assert.NotNil(t, updated.FinalGrade) {
		assert.Equal(t, 65.0, *updated.FinalGrade)
	}
}

func TestRecordScore_GradeDrivenApproval(t *testing.T) {
	offerings := newFakeOfferingStore(activeOffering(1, 30))
	enrollments := newFakeEnrollmentStore(offerings)
	svc := newTestEnrollmentService(offerings, enrollments, studentRoles(7))
	ctx := context.Background()

	enrollment, err := svc.Enroll(ctx, 1, 7)
	assert.NoError(t, err)

	// final 60 over weight 0.30 alone fails
	updated, err := svc.RecordScore(ctx, enrollment.ID, grading.ComponentFinal, 60)
	assert.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusFailed, updated.Status)

	// a corrected final score flips the stored FAILED back to APPROVED
	updated, err = svc.RecordScore(ctx, enrollment.ID, grading.ComponentFinal, 85)
	assert.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusApproved, updated.Status)
	if assert.NotNil(t, updated.FinalGrade) {
		assert.Equal(t, 85.0, *updated.FinalGrade)
	}
}

func TestRecordScore_OnWithdrawnRejected(t *testing.T) {
	offerings := newFakeOfferingStore(activeOffering(1, 30))
	enrollments := newFakeEnrollmentStore(offerings)
	svc := newTestEnrollmentService(offerings, enrollments, studentRoles(7))
	ctx := context.Background()

	enrollment, err := svc.Enroll(ctx, 1, 7)
	assert.NoError(t, err)

	_, err = svc.Withdraw(ctx, enrollment.ID)
	assert.NoError(t, err)

	_, err = svc.RecordScore(ctx, enrollment.ID, grading.ComponentFinal, 95)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)

	stored, err := svc.GetEnrollmentByID(ctx, enrollment.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusWithdrawn, stored.Status)
}

func TestRecordScore_Validation(t *testing.T) {
	offerings := newFakeOfferingStore(activeOffering(1, 30))
	enrollments := newFakeEnrollmentStore(offerings)
	svc := newTestEnrollmentService(offerings, enrollments, studentRoles(7))
	ctx := context.Background()

	enrollment, err := svc.Enroll(ctx, 1, 7)
	assert.NoError(t, err)

	_, err = svc.RecordScore(ctx, enrollment.ID, grading.Component("POP_QUIZ"), 50)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = svc.RecordScore(ctx, enrollment.ID, grading.ComponentFinal, 101)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = svc.RecordScore(ctx, enrollment.ID, grading.ComponentFinal, -1)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestListByStudent(t *testing.T) {
	offerings := newFakeOfferingStore(activeOffering(1, 30), activeOffering(2, 30))
	enrollments := newFakeEnrollmentStore(offerings)
	svc := newTestEnrollmentService(offerings, enrollments, studentRoles(7))
	ctx := context.Background()

	_, err := svc.Enroll(ctx, 1, 7)
	assert.NoError(t, err)
	_, err = svc.Enroll(ctx, 2, 7)
	assert.NoError(t, err)

	list, err := svc.ListByStudent(ctx, 7)
	assert.NoError(t, err)
	assert.Len(t, list, 2)
}

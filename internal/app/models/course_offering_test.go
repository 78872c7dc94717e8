package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func testOffering() *CourseOffering {
	return &CourseOffering{
		ID:        1,
		StartDate: time.Date(2025, 9, 15, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC),
		MaxSeats:  30,
		IsActive:  true,
	}
}

func TestOfferingStatusDerivation(t *testing.T) {
	o := testOffering()

	assert.Equal(t, OfferingStatusUpcoming, o.Status(time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, OfferingStatusActive, o.Status(time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, OfferingStatusFinished, o.Status(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)))

	o.IsActive = false
	// Deactivation wins over the calendar
	assert.Equal(t, OfferingStatusInactive, o.Status(time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)))
}

func TestAvailableSeats(t *testing.T) {
	o := testOffering()
	o.EnrolledCount = 12

	assert.True(t, o.HasAvailableSeats())
	assert.Equal(t, 18, o.AvailableSeats())

	o.EnrolledCount = 30
	assert.False(t, o.HasAvailableSeats())
	assert.Equal(t, 0, o.AvailableSeats())

	// Defensive: a count above the cap must still report zero free seats
	o.EnrolledCount = 31
	assert.Equal(t, 0, o.AvailableSeats())
}

func TestOccupancyPercent(t *testing.T) {
	o := testOffering()

	o.EnrolledCount = 0
	assert.Equal(t, 0, o.OccupancyPercent())

	o.EnrolledCount = 15
	assert.Equal(t, 50, o.OccupancyPercent())

	o.EnrolledCount = 20
	assert.Equal(t, 67, o.OccupancyPercent())

	o.MaxSeats = 0
	assert.Equal(t, 0, o.OccupancyPercent())
}

func TestModalityRequiresRoom(t *testing.T) {
	assert.True(t, ModalityOnSite.RequiresRoom())
	assert.True(t, ModalityHybrid.RequiresRoom())
	assert.False(t, ModalityOnline.RequiresRoom())
}

func TestModalityIsValid(t *testing.T) {
	assert.True(t, ModalityOnline.IsValid())
	assert.False(t, Modality("REMOTE").IsValid())
}

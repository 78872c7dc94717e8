package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/campusflow/campusflow/internal/app/models"
	"github.com/campusflow/campusflow/internal/app/models/dto"
	"github.com/campusflow/campusflow/internal/app/repositories"
	"github.com/campusflow/campusflow/internal/app/services"
	"github.com/campusflow/campusflow/internal/middleware"
	"github.com/campusflow/campusflow/internal/pkg/helpers"
)

// OfferingController handles course offering operations
type OfferingController struct {
	offeringService services.OfferingService
	logger          zerolog.Logger
}

// NewOfferingController creates a new OfferingController
func NewOfferingController(offeringService services.OfferingService, logger zerolog.Logger) *OfferingController {
	return &OfferingController{
		offeringService: offeringService,
		logger:          logger,
	}
}

// CreateOffering creates a course offering
// @Summary Create a course offering
// @Description Schedules a new offering of a catalogue subject. Room is required unless the modality is ONLINE.
// @Tags offerings
// @Accept json
// @Produce json
// @Param request body dto.CreateOfferingRequest true "Offering information"
// @Success 201 {object} dto.APIResponse{data=dto.OfferingResponse} "Offering created"
// @Failure 400 {object} dto.ErrorResponse "Invalid dates, modality, room or seat count"
// @Failure 404 {object} dto.ErrorResponse "Subject not found"
// @Security BearerAuth
// @Router /offerings [post]
func (c *OfferingController) CreateOffering(ctx *gin.Context) {
	var req dto.CreateOfferingRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	offering := &models.CourseOffering{
		SubjectID:    req.SubjectID,
		InstructorID: req.InstructorID,
		Name:         req.Name,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		Modality:     req.Modality,
		Room:         req.Room,
		Schedule:     req.Schedule,
		MaxSeats:     req.MaxSeats,
		IsActive:     true,
	}

	if err := c.offeringService.CreateOffering(ctx.Request.Context(), offering); err != nil {
		c.logger.Warn().Err(err).Int64("subjectID", req.SubjectID).Msg("Failed to create offering")
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.APIResponse{
		Data:      dto.FromOffering(offering, time.Now()),
		Timestamp: time.Now(),
	})
}

// GetOffering retrieves one offering
// @Summary Get a course offering
// @Description Returns the offering with its subject and derived temporal status
// @Tags offerings
// @Produce json
// @Param id path int true "Offering ID"
// @Success 200 {object} dto.APIResponse{data=dto.OfferingResponse} "Offering"
// @Failure 404 {object} dto.ErrorResponse "Offering not found"
// @Router /offerings/{id} [get]
func (c *OfferingController) GetOffering(ctx *gin.Context) {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return
	}

	offering, err := c.offeringService.GetOfferingByID(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      dto.FromOffering(offering, time.Now()),
		Timestamp: time.Now(),
	})
}

// ListOfferings retrieves offerings with optional filters
// @Summary List course offerings
// @Tags offerings
// @Produce json
// @Param subjectId query int false "Filter by subject"
// @Param instructorId query int false "Filter by instructor"
// @Param activeOnly query bool false "Only active offerings"
// @Param page query int false "Page number (default 1)"
// @Param pageSize query int false "Page size (default 20, max 100)"
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse} "Offerings"
// @Router /offerings [get]
func (c *OfferingController) ListOfferings(ctx *gin.Context) {
	var filter repositories.OfferingFilter

	if raw := ctx.Query("subjectId"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil && id > 0 {
			filter.SubjectID = id
		}
	}
	if raw := ctx.Query("instructorId"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil && id > 0 {
			filter.InstructorID = id
		}
	}
	filter.ActiveOnly = ctx.Query("activeOnly") == "true"

	page, pageSize := helpers.ParsePagination(ctx.Query("page"), ctx.Query("pageSize"))

	offerings, total, err := c.offeringService.ListOfferings(
		ctx.Request.Context(), filter, helpers.Offset(page, pageSize), pageSize)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	now := time.Now()
	items := make([]dto.OfferingResponse, 0, len(offerings))
	for _, offering := range offerings {
		items = append(items, dto.FromOffering(offering, now))
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data: dto.PaginatedResponse{
			Items:      items,
			Pagination: helpers.NewPaginationInfo(page, pageSize, total),
		},
		Timestamp: now,
	})
}

// UpdateOffering updates an offering
// @Summary Update a course offering
// @Description Updates scheduling and capacity. The seat cap cannot be reduced below the current enrolled count.
// @Tags offerings
// @Accept json
// @Produce json
// @Param id path int true "Offering ID"
// @Param request body dto.UpdateOfferingRequest true "Offering information"
// @Success 200 {object} dto.APIResponse{data=dto.OfferingResponse} "Offering updated"
// @Failure 400 {object} dto.ErrorResponse "Invalid values or seat cap below enrolled count"
// @Failure 404 {object} dto.ErrorResponse "Offering not found"
// @Security BearerAuth
// @Router /offerings/{id} [put]
func (c *OfferingController) UpdateOffering(ctx *gin.Context) {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return
	}

	var req dto.UpdateOfferingRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	existing, err := c.offeringService.GetOfferingByID(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	offering := &models.CourseOffering{
		ID:           id,
		SubjectID:    existing.SubjectID,
		InstructorID: existing.InstructorID,
		Name:         req.Name,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		Modality:     req.Modality,
		Room:         req.Room,
		Schedule:     req.Schedule,
		MaxSeats:     req.MaxSeats,
		IsActive:     existing.IsActive,
	}

	if err := c.offeringService.UpdateOffering(ctx.Request.Context(), offering); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	offering.EnrolledCount = existing.EnrolledCount
	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      dto.FromOffering(offering, time.Now()),
		Timestamp: time.Now(),
	})
}

// DeactivateOffering soft-deactivates an offering
// @Summary Deactivate a course offering
// @Description Marks the offering inactive. Existing enrollments are kept; new enrollments are rejected.
// @Tags offerings
// @Produce json
// @Param id path int true "Offering ID"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "Offering deactivated"
// @Failure 404 {object} dto.ErrorResponse "Offering not found"
// @Security BearerAuth
// @Router /offerings/{id} [delete]
func (c *OfferingController) DeactivateOffering(ctx *gin.Context) {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return
	}

	if err := c.offeringService.DeactivateOffering(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      dto.SuccessResponse{Message: "Offering deactivated"},
		Timestamp: time.Now(),
	})
}

// GetOccupancy reports seat usage for an offering
// @Summary Get offering occupancy
// @Description Returns max seats, enrolled count, available seats and occupancy percentage
// @Tags offerings
// @Produce json
// @Param id path int true "Offering ID"
// @Success 200 {object} dto.APIResponse{data=dto.OccupancyResponse} "Occupancy report"
// @Failure 404 {object} dto.ErrorResponse "Offering not found"
// @Router /offerings/{id}/occupancy [get]
func (c *OfferingController) GetOccupancy(ctx *gin.Context) {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return
	}

	offering, err := c.offeringService.GetOccupancy(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      dto.FromOfferingOccupancy(offering),
		Timestamp: time.Now(),
	})
}

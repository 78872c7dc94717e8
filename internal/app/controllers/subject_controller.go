package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/campusflow/campusflow/internal/app/models"
	"github.com/campusflow/campusflow/internal/app/models/dto"
	"github.com/campusflow/campusflow/internal/app/services"
	"github.com/campusflow/campusflow/internal/middleware"
)

// SubjectController handles catalogue subject operations
type SubjectController struct {
	subjectService services.SubjectService
	logger         zerolog.Logger
}

// NewSubjectController creates a new SubjectController
func NewSubjectController(subjectService services.SubjectService, logger zerolog.Logger) *SubjectController {
	return &SubjectController{
		subjectService: subjectService,
		logger:         logger,
	}
}

// CreateSubject creates a catalogue subject
// @Summary Create a subject
// @Description Adds a new subject to the course catalogue
// @Tags subjects
// @Accept json
// @Produce json
// @Param request body dto.CreateSubjectRequest true "Subject information"
// @Success 201 {object} dto.APIResponse{data=dto.SubjectResponse} "Subject created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Failure 409 {object} dto.ErrorResponse "Subject code already exists"
// @Security BearerAuth
// @Router /subjects [post]
func (c *SubjectController) CreateSubject(ctx *gin.Context) {
	var req dto.CreateSubjectRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	subject := &models.Subject{
		Code:        req.Code,
		Name:        req.Name,
		Description: req.Description,
		Credits:     req.Credits,
	}

	if err := c.subjectService.CreateSubject(ctx.Request.Context(), subject); err != nil {
		c.logger.Warn().Err(err).Str("code", req.Code).Msg("Failed to create subject")
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.APIResponse{Data: dto.FromSubject(subject), Timestamp: time.Now()})
}

// GetSubject retrieves one subject
// @Summary Get a subject
// @Tags subjects
// @Produce json
// @Param id path int true "Subject ID"
// @Success 200 {object} dto.APIResponse{data=dto.SubjectResponse} "Subject"
// @Failure 404 {object} dto.ErrorResponse "Subject not found"
// @Router /subjects/{id} [get]
func (c *SubjectController) GetSubject(ctx *gin.Context) {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return
	}

	subject, err := c.subjectService.GetSubjectByID(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{Data: dto.FromSubject(subject), Timestamp: time.Now()})
}

// ListSubjects retrieves all subjects
// @Summary List subjects
// @Tags subjects
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]dto.SubjectResponse} "Subjects"
// @Router /subjects [get]
func (c *SubjectController) ListSubjects(ctx *gin.Context) {
	subjects, err := c.subjectService.GetAllSubjects(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	responses := make([]dto.SubjectResponse, 0, len(subjects))
	for _, subject := range subjects {
		responses = append(responses, dto.FromSubject(subject))
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{Data: responses, Timestamp: time.Now()})
}

// UpdateSubject updates a subject
// @Summary Update a subject
// @Tags subjects
// @Accept json
// @Produce json
// @Param id path int true "Subject ID"
// @Param request body dto.UpdateSubjectRequest true "Subject information"
// @Success 200 {object} dto.APIResponse{data=dto.SubjectResponse} "Subject updated"
// @Failure 404 {object} dto.ErrorResponse "Subject not found"
// @Failure 409 {object} dto.ErrorResponse "Subject code already exists"
// @Security BearerAuth
// @Router /subjects/{id} [put]
func (c *SubjectController) UpdateSubject(ctx *gin.Context) {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return
	}

	var req dto.UpdateSubjectRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	subject := &models.Subject{
		ID:          id,
		Code:        req.Code,
		Name:        req.Name,
		Description: req.Description,
		Credits:     req.Credits,
	}

	if err := c.subjectService.UpdateSubject(ctx.Request.Context(), subject); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{Data: dto.FromSubject(subject), Timestamp: time.Now()})
}

// DeleteSubject removes a subject
// @Summary Delete a subject
// @Description Removes a subject from the catalogue. Subjects referenced by course offerings cannot be deleted.
// @Tags subjects
// @Produce json
// @Param id path int true "Subject ID"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "Subject deleted"
// @Failure 404 {object} dto.ErrorResponse "Subject not found"
// @Failure 409 {object} dto.ErrorResponse "Subject has course offerings"
// @Security BearerAuth
// @Router /subjects/{id} [delete]
func (c *SubjectController) DeleteSubject(ctx *gin.Context) {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return
	}

	if err := c.subjectService.DeleteSubject(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      dto.SuccessResponse{Message: "Subject deleted"},
		Timestamp: time.Now(),
	})
}

// parseIDParam parses a positive integer path parameter, writing the 400
// response itself on failure.
func parseIDParam(ctx *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil || id <= 0 {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid "+name+" parameter").
			WithField(name)
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		if err == nil {
			err = strconv.ErrRange
		}
		return 0, err
	}
	return id, nil
}

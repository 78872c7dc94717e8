package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/campusflow/campusflow/internal/app/auth"
	"github.com/campusflow/campusflow/internal/app/models"
	"github.com/campusflow/campusflow/internal/app/models/dto"
	"github.com/campusflow/campusflow/internal/app/services"
	"github.com/campusflow/campusflow/internal/middleware"
	"github.com/campusflow/campusflow/internal/pkg/apperrors"
	"github.com/campusflow/campusflow/internal/pkg/grading"
)

// EnrollmentController handles enrollment lifecycle operations
type EnrollmentController struct {
	enrollmentService services.EnrollmentService
	authzService      *auth.AuthorizationService
	logger            zerolog.Logger
}

// NewEnrollmentController creates a new EnrollmentController
func NewEnrollmentController(enrollmentService services.EnrollmentService, authzService *auth.AuthorizationService, logger zerolog.Logger) *EnrollmentController {
	return &EnrollmentController{
		enrollmentService: enrollmentService,
		authzService:      authzService,
		logger:            logger,
	}
}

// callerIdentity reads the authenticated user set by the JWT middleware.
func callerIdentity(ctx *gin.Context) (int64, models.RoleType) {
	return ctx.GetInt64("userID"), models.RoleType(ctx.GetString("roleType"))
}

// Enroll registers a student into an offering
// @Summary Enroll a student
// @Description Enrolls a student into a course offering, taking one seat. Fails when the offering is full, inactive or finished, or the student is already enrolled.
// @Tags enrollments
// @Accept json
// @Produce json
// @Param request body dto.EnrollRequest true "Enrollment information"
// @Success 201 {object} dto.APIResponse{data=dto.EnrollmentResponse} "Student enrolled"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Failure 404 {object} dto.ErrorResponse "Offering or student not found"
// @Failure 409 {object} dto.ErrorResponse "No seats available or student already enrolled"
// @Security BearerAuth
// @Router /enrollments [post]
func (c *EnrollmentController) Enroll(ctx *gin.Context) {
	var req dto.EnrollRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	userID, role := callerIdentity(ctx)
	if role == models.RoleStudent && req.StudentID != userID {
		middleware.HandleAPIError(ctx, apperrors.ErrPermissionDenied)
		return
	}

	enrollment, err := c.enrollmentService.Enroll(ctx.Request.Context(), req.OfferingID, req.StudentID)
	if err != nil {
		c.logger.Warn().Err(err).
			Int64("offeringID", req.OfferingID).
			Int64("studentID", req.StudentID).
			Msg("Enrollment rejected")
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.APIResponse{
		Data:      dto.FromEnrollment(enrollment),
		Timestamp: time.Now(),
	})
}

// GetEnrollment retrieves one enrollment
// @Summary Get an enrollment
// @Tags enrollments
// @Produce json
// @Param id path int true "Enrollment ID"
// @Success 200 {object} dto.APIResponse{data=dto.EnrollmentResponse} "Enrollment"
// @Failure 404 {object} dto.ErrorResponse "Enrollment not found"
// @Security BearerAuth
// @Router /enrollments/{id} [get]
func (c *EnrollmentController) GetEnrollment(ctx *gin.Context) {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return
	}

	userID, role := callerIdentity(ctx)
	if err := c.authzService.ValidateEnrollmentAccess(ctx.Request.Context(), id, userID, role); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	enrollment, err := c.enrollmentService.GetEnrollmentByID(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      dto.FromEnrollment(enrollment),
		Timestamp: time.Now(),
	})
}

// Withdraw removes a student from an offering
// @Summary Withdraw an enrollment
// @Description Withdraws the enrollment and releases its seat. Only ENROLLED and IN_PROGRESS enrollments can be withdrawn.
// @Tags enrollments
// @Produce json
// @Param id path int true "Enrollment ID"
// @Success 200 {object} dto.APIResponse{data=dto.EnrollmentResponse} "Enrollment withdrawn"
// @Failure 404 {object} dto.ErrorResponse "Enrollment not found"
// @Failure 409 {object} dto.ErrorResponse "Enrollment is in a terminal status"
// @Security BearerAuth
// @Router /enrollments/{id}/withdraw [post]
func (c *EnrollmentController) Withdraw(ctx *gin.Context) {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return
	}

	userID, role := callerIdentity(ctx)
	if err := c.authzService.ValidateEnrollmentAccess(ctx.Request.Context(), id, userID, role); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	enrollment, err := c.enrollmentService.Withdraw(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      dto.FromEnrollment(enrollment),
		Timestamp: time.Now(),
	})
}

// RecordScore records one component score
// @Summary Record a component score
// @Description Stores a grade component score (0-100), recomputes the weighted final grade over the recorded components and applies the grade-driven status transition.
// @Tags enrollments
// @Accept json
// @Produce json
// @Param id path int true "Enrollment ID"
// @Param request body dto.RecordScoreRequest true "Component score"
// @Success 200 {object} dto.APIResponse{data=dto.EnrollmentResponse} "Score recorded"
// @Failure 400 {object} dto.ErrorResponse "Unknown component or score out of range"
// @Failure 404 {object} dto.ErrorResponse "Enrollment not found"
// @Failure 409 {object} dto.ErrorResponse "Enrollment is withdrawn"
// @Security BearerAuth
// @Router /enrollments/{id}/scores [post]
func (c *EnrollmentController) RecordScore(ctx *gin.Context) {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return
	}

	var req dto.RecordScoreRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	userID, role := callerIdentity(ctx)
	if err := c.authzService.ValidateGradeAccess(ctx.Request.Context(), id, userID, role); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	enrollment, err := c.enrollmentService.RecordScore(
		ctx.Request.Context(), id, grading.Component(req.Component), req.Value)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      dto.FromEnrollment(enrollment),
		Timestamp: time.Now(),
	})
}

// ListByOffering retrieves all enrollments of one offering
// @Summary List enrollments for an offering
// @Tags enrollments
// @Produce json
// @Param id path int true "Offering ID"
// @Success 200 {object} dto.APIResponse{data=[]dto.EnrollmentResponse} "Enrollments"
// @Failure 404 {object} dto.ErrorResponse "Offering not found"
// @Security BearerAuth
// @Router /offerings/{id}/enrollments [get]
func (c *EnrollmentController) ListByOffering(ctx *gin.Context) {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return
	}

	userID, role := callerIdentity(ctx)
	if err := c.authzService.ValidateRosterAccess(ctx.Request.Context(), id, userID, role); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	enrollments, err := c.enrollmentService.ListByOffering(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      dto.FromEnrollments(enrollments),
		Timestamp: time.Now(),
	})
}

// ListByStudent retrieves all enrollments of one student
// @Summary List enrollments for a student
// @Tags enrollments
// @Produce json
// @Param id path int true "Student ID"
// @Success 200 {object} dto.APIResponse{data=[]dto.EnrollmentResponse} "Enrollments"
// @Security BearerAuth
// @Router /students/{id}/enrollments [get]
func (c *EnrollmentController) ListByStudent(ctx *gin.Context) {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return
	}

	userID, role := callerIdentity(ctx)
	if err := c.authzService.ValidateStudentAccess(id, userID, role); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	enrollments, err := c.enrollmentService.ListByStudent(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      dto.FromEnrollments(enrollments),
		Timestamp: time.Now(),
	})
}

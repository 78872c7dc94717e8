package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campusflow/campusflow/internal/app/models/dto"
	"github.com/campusflow/campusflow/internal/pkg/apperrors"
)

// HandleAPIError maps application errors onto HTTP responses. Controllers
// call it for every error a service returns so status codes and error codes
// stay consistent across the API.
func HandleAPIError(c *gin.Context, err error) {
	var customErr *apperrors.CustomError
	message := ""
	var details interface{}
	if errors.As(err, &customErr) {
		message = customErr.Message
		details = customErr.Details
	}

	respond := func(status int, code dto.ErrorCode, fallback string) {
		msg := message
		if msg == "" {
			msg = fallback
		}
		detail := dto.NewErrorDetail(code, msg)
		if details != nil {
			detail = detail.WithDetails(details)
		}
		c.JSON(status, dto.NewErrorResponse(detail))
	}

	switch {
	// Enrollment conflicts
	case errors.Is(err, apperrors.ErrCapacityExceeded):
		respond(http.StatusConflict, dto.ErrorCodeCapacityExceeded, "Course offering has no available seats")
	case errors.Is(err, apperrors.ErrDuplicateEnrollment):
		respond(http.StatusConflict, dto.ErrorCodeDuplicateEnrollment, "Student is already enrolled in this offering")
	case errors.Is(err, apperrors.ErrInvalidTransition):
		respond(http.StatusConflict, dto.ErrorCodeInvalidTransition, "Enrollment status transition not permitted")

	// Offering state conflicts
	case errors.Is(err, apperrors.ErrOfferingInactive),
		errors.Is(err, apperrors.ErrOfferingFinished),
		errors.Is(err, apperrors.ErrSubjectHasOfferings),
		errors.Is(err, apperrors.ErrConflict):
		respond(http.StatusConflict, dto.ErrorCodeConflict, err.Error())

	// Not found
	case errors.Is(err, apperrors.ErrEnrollmentNotFound),
		errors.Is(err, apperrors.ErrOfferingNotFound),
		errors.Is(err, apperrors.ErrSubjectNotFound),
		errors.Is(err, apperrors.ErrUserNotFound),
		errors.Is(err, apperrors.ErrResourceNotFound):
		respond(http.StatusNotFound, dto.ErrorCodeResourceNotFound, err.Error())

	// Validation
	case errors.Is(err, apperrors.ErrValidationFailed), errors.Is(err, apperrors.ErrBadRequest):
		respond(http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Validation failed")

	// Duplicates
	case errors.Is(err, apperrors.ErrEmailAlreadyExists),
		errors.Is(err, apperrors.ErrSubjectAlreadyExists),
		errors.Is(err, apperrors.ErrResourceAlreadyExists):
		respond(http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, err.Error())

	// Authentication
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		respond(http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials, "Invalid credentials")
	case errors.Is(err, apperrors.ErrTokenExpired):
		respond(http.StatusUnauthorized, dto.ErrorCodeExpiredToken, "Token expired")
	case errors.Is(err, apperrors.ErrTokenInvalid), errors.Is(err, apperrors.ErrTokenRevoked):
		respond(http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token")
	case errors.Is(err, apperrors.ErrTokenNotFound):
		respond(http.StatusUnauthorized, dto.ErrorCodeTokenNotFound, "Token not found")
	case errors.Is(err, apperrors.ErrAccountDisabled):
		respond(http.StatusForbidden, dto.ErrorCodeForbidden, "Account is disabled")
	case errors.Is(err, apperrors.ErrPermissionDenied):
		respond(http.StatusForbidden, dto.ErrorCodeForbidden, "Permission denied")

	default:
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")))
	}
}

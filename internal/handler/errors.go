package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/learnora/learnora-backend/internal/response"
	"github.com/learnora/learnora-backend/internal/service"
)

// failFromService translates service-layer errors into the response
// envelope. Unrecognized errors become a 500 without leaking detail.
func failFromService(c *gin.Context, err error) {
	var vErr *service.ValidationError
	if errors.As(err, &vErr) {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, vErr.Fields)
		return
	}

	switch {
	case errors.Is(err, service.ErrNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrAccessDenied):
		response.Fail(c, http.StatusForbidden, response.ErrAccessDenied)
	case errors.Is(err, service.ErrNotEnrolled):
		response.Fail(c, http.StatusForbidden, response.ErrCourseNotPurchased)
	case errors.Is(err, service.ErrQuizInactive):
		response.Fail(c, http.StatusForbidden, response.ErrQuizInactive)
	case errors.Is(err, service.ErrAlreadySubmitted):
		response.Fail(c, http.StatusConflict, response.ErrAlreadySubmitted)
	case errors.Is(err, service.ErrPrerequisiteNotMet):
		response.Fail(c, http.StatusForbidden, response.ErrPrerequisiteNotMet)
	case errors.Is(err, service.ErrAttemptLimitExceeded):
		response.Fail(c, http.StatusForbidden, response.ErrAttemptLimit)
	case errors.Is(err, service.ErrTimeLimitExceeded):
		response.Fail(c, http.StatusUnprocessableEntity, response.ErrTimeLimitExceeded)
	case errors.Is(err, service.ErrInvalidQuestionType):
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidQuestionType)
	case errors.Is(err, service.ErrEmailTaken):
		response.Fail(c, http.StatusConflict, response.ErrEmailTaken)
	case errors.Is(err, service.ErrAccountInactive):
		response.Fail(c, http.StatusForbidden, response.ErrAccountInactive)
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

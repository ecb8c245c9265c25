package api

import (
	stderrors "errors"
	"net/http"

	"flareshield/domain/core"
	apperrors "flareshield/internal/errors"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// classify maps domain sentinels onto an HTTP status and an AppError code
func classify(err error) (int, *apperrors.AppError) {
	switch {
	case core.IsNotFoundError(err):
		return http.StatusNotFound, withCode(apperrors.CodeNotFound, err)
	case stderrors.Is(err, core.ErrInvalidConfiguration):
		return http.StatusBadRequest, apperrors.InvalidConfiguration(err)
	case core.IsValidationError(err):
		return http.StatusBadRequest, withCode(apperrors.CodeValidationError, err)
	case stderrors.Is(err, core.ErrRunComplete), stderrors.Is(err, core.ErrRunInProgress):
		return http.StatusConflict, withCode(apperrors.CodeConflict, err)
	}

	var appErr *apperrors.AppError
	if stderrors.As(err, &appErr) && appErr.Code == apperrors.CodeInvalidInput {
		return http.StatusBadRequest, appErr
	}
	return http.StatusInternalServerError, withCode(apperrors.CodeInternalError, err)
}

func respondError(c *gin.Context, err error) {
	status, appErr := classify(err)
	c.JSON(status, ErrorResponse{Error: appErr.Error(), Code: appErr.Code})
}

func withCode(code string, err error) *apperrors.AppError {
	appErr, _ := apperrors.WithCode(code, err).(*apperrors.AppError)
	return appErr
}

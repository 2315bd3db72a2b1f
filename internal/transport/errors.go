package transport

import (
	"errors"
	"net/http"

	"storefront/internal/middleware"
	"storefront/internal/repository"
	"storefront/internal/service"

	"go.uber.org/zap"
)

var errorStatus = []struct {
	err    error
	status int
}{
	{repository.ErrProductNotFound, http.StatusNotFound},
	{repository.ErrVariantNotFound, http.StatusNotFound},
	{repository.ErrCategoryNotFound, http.StatusNotFound},
	{service.ErrProductUnavailable, http.StatusNotFound},
	{repository.ErrDuplicateSlug, http.StatusConflict},
	{repository.ErrDuplicateSKU, http.StatusConflict},
	{service.ErrUnknownAttribute, http.StatusBadRequest},
	{service.ErrEmptyAttributes, http.StatusUnprocessableEntity},
	{service.ErrMissingRequiredAttribute, http.StatusUnprocessableEntity},
	{service.ErrInvalidSlug, http.StatusUnprocessableEntity},
}

// respondServiceError maps known domain errors to their status and hides everything else behind a 500
func respondServiceError(w http.ResponseWriter, logger *zap.Logger, err error, action string) {
	for _, known := range errorStatus {
		if errors.Is(err, known.err) {
			logger.Debug(action+" rejected", zap.Error(err))
			middleware.RespondWithError(w, known.status, err.Error())
			return
		}
	}

	logger.Error(action+" failed", zap.Error(err))
	middleware.RespondWithError(w, http.StatusInternalServerError, "failed to "+action)
}

// respondDecodeError answers a failed DecodeAndValidate call
func respondDecodeError(w http.ResponseWriter, logger *zap.Logger, err error) {
	logger.Debug("Request validation failed", zap.Error(err))

	if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
		middleware.RespondWithValidationErrors(w, validationErrors)
		return
	}

	middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
}

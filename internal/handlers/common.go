package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/nutricart/nutricart-api/internal/logger"
	"github.com/nutricart/nutricart-api/internal/types"
	"github.com/nutricart/nutricart-api/internal/utils"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

// respondError maps the service error taxonomy onto HTTP responses.
// Validation and not-found map to client errors, exhausted upstream maps
// to 503, everything else is a generic server error.
func respondError(c *fiber.Ctx, err error, errorType string) error {
	var (
		validationErr *types.ValidationError
		notFoundErr   *types.NotFoundError
		upstreamErr   *types.UpstreamError
	)
	switch {
	case errors.As(err, &validationErr):
		return utils.ValidationErrorResponse(c, validationErr.Error())
	case errors.As(err, &notFoundErr):
		return utils.NotFoundResponse(c, notFoundErr.Error())
	case errors.As(err, &upstreamErr):
		return utils.UnavailableResponse(c, "Computation service temporarily unavailable")
	default:
		logger.Error("request failed",
			zap.String("type", errorType),
			zap.String("url", c.OriginalURL()),
			zap.Error(err))
		return utils.ErrorResponse(c, "Internal server error", fiber.StatusInternalServerError, errorType)
	}
}

// parseDateParam reads a YYYY-MM-DD path or query value, defaulting to
// today when empty.
func parseDateParam(value string) (time.Time, error) {
	if value == "" {
		return time.Now().UTC(), nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, types.NewValidationError("date", "must be formatted YYYY-MM-DD")
	}
	return t, nil
}

// parseDateRange reads startDate/endDate query values, defaulting to the
// last defaultDays days ending today.
func parseDateRange(c *fiber.Ctx, defaultDays int) (time.Time, time.Time, error) {
	now := time.Now().UTC()

	start := now.AddDate(0, 0, -defaultDays)
	if v := c.Query("startDate"); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			return time.Time{}, time.Time{}, types.NewValidationError("startDate", "must be formatted YYYY-MM-DD")
		}
		start = t
	}

	end := now
	if v := c.Query("endDate"); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			return time.Time{}, time.Time{}, types.NewValidationError("endDate", "must be formatted YYYY-MM-DD")
		}
		end = t
	}

	if end.Before(start) {
		return time.Time{}, time.Time{}, types.NewValidationError("endDate", "must not be before startDate")
	}
	return start, end, nil
}

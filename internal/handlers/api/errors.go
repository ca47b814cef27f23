package api

import (
	"errors"
	"math"
	"strconv"

	"github.com/gofiber/fiber/v3"

	"golists/internal/pipeline"
)

// Error codes returned alongside the message so clients can branch without
// parsing text.
const (
	codeValidation       = "validation"
	codeForbidden        = "forbidden"
	codeNotFound         = "not_found"
	codeAlreadyProcessed = "already_processed"
	codeItemExists       = "item_exists"
	codeRateLimited      = "rate_limited"
	codeUnavailable      = "unavailable"
	codeInternal         = "internal"
)

// pipelineError maps a pipeline error onto an HTTP response.
func pipelineError(c fiber.Ctx, err error) error {
	var (
		verr *pipeline.ValidationError
		rerr *pipeline.RateLimitedError
		serr *pipeline.StorageError
	)

	switch {
	case errors.As(err, &verr):
		extra := fiber.Map{"code": codeValidation}
		if verr.Field != "" {
			extra["field"] = verr.Field
		}
		return jsonErrorWith(c, fiber.StatusBadRequest, verr.Message, extra)
	case errors.As(err, &rerr):
		seconds := int(math.Ceil(rerr.RetryAfter.Seconds()))
		c.Set(fiber.HeaderRetryAfter, strconv.Itoa(seconds))
		return jsonErrorWith(c, fiber.StatusTooManyRequests, "You are posting too quickly. Please wait before trying again.", fiber.Map{
			"code":        codeRateLimited,
			"scope":       rerr.Scope,
			"retry_after": seconds,
		})
	case errors.Is(err, pipeline.ErrForbidden):
		return jsonCodedError(c, fiber.StatusForbidden, codeForbidden, "you do not have permission to do that")
	case errors.Is(err, pipeline.ErrNotFound):
		return jsonCodedError(c, fiber.StatusNotFound, codeNotFound, "not found")
	case errors.Is(err, pipeline.ErrAlreadyProcessed):
		return jsonCodedError(c, fiber.StatusConflict, codeAlreadyProcessed, "already processed by another moderator")
	case errors.Is(err, pipeline.ErrItemExists):
		return jsonCodedError(c, fiber.StatusConflict, codeItemExists, "this is already on the list")
	case errors.As(err, &serr):
		return jsonCodedError(c, fiber.StatusServiceUnavailable, codeUnavailable, "temporarily unavailable, please retry")
	}
	return jsonCodedError(c, fiber.StatusInternalServerError, codeInternal, "internal error")
}

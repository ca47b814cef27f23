package api

import (
	"github.com/gofiber/fiber/v3"
)

// jsonSuccess returns a 200 response with data wrapped in the standard envelope.
func jsonSuccess(c fiber.Ctx, data any) error {
	return c.JSON(fiber.Map{
		"status": "ok",
		"data":   data,
	})
}

// jsonCreated is jsonSuccess with 201.
func jsonCreated(c fiber.Ctx, data any) error {
	c.Status(fiber.StatusCreated)
	return jsonSuccess(c, data)
}

// jsonError returns an error response with the given HTTP status code.
func jsonError(c fiber.Ctx, status int, message string) error {
	return jsonErrorWith(c, status, message, nil)
}

// jsonCodedError is jsonError with a machine-readable code.
func jsonCodedError(c fiber.Ctx, status int, code, message string) error {
	return jsonErrorWith(c, status, message, fiber.Map{"code": code})
}

// jsonErrorWith adds extra top-level fields to the error envelope.
func jsonErrorWith(c fiber.Ctx, status int, message string, extra fiber.Map) error {
	body := fiber.Map{
		"status": "error",
		"error":  message,
	}
	for k, v := range extra {
		body[k] = v
	}
	return c.Status(status).JSON(body)
}

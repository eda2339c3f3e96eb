// Package handlers provides the HTTP request handlers of the v1 API
package handlers

import (
	"errors"
	"fmt"

	fiber "github.com/gofiber/fiber/v2"

	"github.com/celestiaorg/quill/internal/logger"
	"github.com/celestiaorg/quill/internal/services"
	"github.com/celestiaorg/quill/internal/types"
)

// Common error messages
const (
	ErrMsgInvalidReqBody = "Invalid request body"
	ErrMsgIDRequired     = "id is required"
)

// Dispatch error messages
const (
	ErrMsgContentNotFound = "Content not found"
	ErrMsgJobNotFound     = "Job not found"
	ErrMsgDispatchFailed  = "Error starting agent"
	ErrMsgScanFailed      = "Due scan failed"
	ErrMsgJobGetFailed    = "Failed to get job"
)

// Content error messages
const (
	ErrMsgContentListFailed   = "Failed to list content"
	ErrMsgContentCreateFailed = "Failed to create content"
	ErrMsgContentDeleteFailed = "Failed to delete content"
	ErrMsgWebsiteNotFound     = "Website not found"
	ErrMsgWebsiteListFailed   = "Failed to list websites"
	ErrMsgWebsiteCreateFailed = "Failed to create website"
	ErrMsgSettingsFailed      = "Failed to update settings"
	ErrMsgUserNotFound        = "User not found"
)

// respondWithError maps a service error to its status code and slug.
// notFoundMsg is used for missing records, failMsg for unexpected errors.
func respondWithError(c *fiber.Ctx, err error, notFoundMsg, failMsg string) error {
	switch {
	case services.IsConfigurationError(err):
		return c.Status(fiber.StatusBadRequest).JSON(types.ErrInvalidInput(err.Error()))
	case errors.Is(err, services.ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(types.ErrUnauthorized(err.Error()))
	case errors.Is(err, services.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(types.ErrForbidden(err.Error()))
	case errors.Is(err, services.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(types.ErrNotFound(notFoundMsg))
	case errors.Is(err, services.ErrDispatchInFlight):
		return c.Status(fiber.StatusConflict).JSON(types.ErrConflict(err.Error()))
	default:
		logger.ErrorWithFields(failMsg, map[string]interface{}{
			"path":  c.Path(),
			"error": err.Error(),
		})
		return c.Status(fiber.StatusInternalServerError).JSON(types.ErrServer(fmt.Sprintf("%s: %v", failMsg, err)))
	}
}

// parseBody decodes and validates a JSON request body
func parseBody[T interface{ Validate() error }](c *fiber.Ctx, req T) error {
	if err := c.BodyParser(req); err != nil {
		return fmt.Errorf("%s: %w", ErrMsgInvalidReqBody, err)
	}
	return req.Validate()
}

// ErrorHandler renders errors that escaped the handlers as Slug responses
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
	}

	resp := types.ErrServer(err.Error())
	switch code {
	case fiber.StatusNotFound:
		resp = types.ErrNotFound(err.Error())
	case fiber.StatusBadRequest, fiber.StatusMethodNotAllowed, fiber.StatusRequestEntityTooLarge:
		resp = types.ErrInvalidInput(err.Error())
	}
	return c.Status(code).JSON(resp)
}

package api

import (
	"log"

	"rag/types"

	"github.com/gofiber/fiber/v2"
)

func ErrorHandler(c *fiber.Ctx, err error) error {
	if apiError, ok := err.(Error); ok {
		return c.Status(apiError.Code).JSON(apiError)
	}
	if valError, ok := err.(types.ValidationError); ok {
		return c.Status(valError.Status).JSON(valError)
	}
	if fiberError, ok := err.(*fiber.Error); ok {
		return c.Status(fiberError.Code).JSON(NewError(fiberError.Code, fiberError.Message))
	}

	// Internal details never reach the client.
	log.Printf("request failed: %v\n", err)
	apiError := NewError(fiber.StatusInternalServerError, "internal error")
	return c.Status(apiError.Code).JSON(apiError)
}

// Error implements the error interface
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"error"`
}

func (e Error) Error() string {
	return e.Message
}

func NewError(code int, err string) Error {
	return Error{
		Code:    code,
		Message: err,
	}
}

func ErrBadRequest() Error {
	return Error{
		Code:    fiber.StatusBadRequest,
		Message: "invalid JSON request",
	}
}

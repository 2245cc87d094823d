package controller

import (
	"errors"

	"portfolio-chat-be/internal/repository/contract"
	"portfolio-chat-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

// httpError turns service sentinels into fiber errors. Anything else passes
// through untouched for the error middleware.
func httpError(err error) error {
	switch {
	case errors.Is(err, service.ErrEmptyMessage):
		return fiber.NewError(fiber.StatusBadRequest, "Message is empty")
	case errors.Is(err, service.ErrInvalidScope):
		return fiber.NewError(fiber.StatusBadRequest, "Invalid scope")
	case errors.Is(err, service.ErrNoSession):
		return fiber.NewError(fiber.StatusUnauthorized, "No active session")
	case errors.Is(err, service.ErrIdentityMismatch):
		return fiber.NewError(fiber.StatusForbidden, "Session belongs to another client")
	case errors.Is(err, contract.ErrConversationNotFound):
		return fiber.NewError(fiber.StatusNotFound, "Conversation not found")
	}
	return err
}

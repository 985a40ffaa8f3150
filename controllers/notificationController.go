package controllers

import (
	"barangay-portal-backend/middlewares"
	"barangay-portal-backend/models"
	"barangay-portal-backend/workflow"

	"github.com/gofiber/fiber/v2"
)

// Dispatcher sends requester emails; main wires the SMTP implementation.
var Dispatcher workflow.NotificationDispatcher

type ReadyNotificationDTO struct {
	Status         string `json:"status" validate:"omitempty,oneof=ready"`
	Amount         string `json:"amount" validate:"required"`
	PickupLocation string `json:"pickup_location" validate:"required"`
}

type RejectNotificationDTO struct {
	Status string `json:"status" validate:"omitempty,oneof=reject"`
}

// PUT /api/document-requests/:id/ready-notification
func SendReadyNotification(c *fiber.Ctx) error {
	req, err := loadRequest(c)
	if err != nil {
		return err
	}
	var in ReadyNotificationDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}

	payload := workflow.Payload{
		Status:         models.StatusReady,
		Amount:         in.Amount,
		PickupLocation: in.PickupLocation,
	}
	if err := Dispatcher.Send(c.UserContext(), req, workflow.NotificationReady, payload); err != nil {
		return fiber.NewError(fiber.StatusBadGateway, "could not send ready notification")
	}
	return c.JSON(fiber.Map{"message": "ready notification sent"})
}

// PUT /api/document-requests/:id/reject-notification
func SendRejectNotification(c *fiber.Ctx) error {
	req, err := loadRequest(c)
	if err != nil {
		return err
	}
	var in RejectNotificationDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}

	payload := workflow.Payload{Status: models.StatusReject}
	if err := Dispatcher.Send(c.UserContext(), req, workflow.NotificationRejected, payload); err != nil {
		return fiber.NewError(fiber.StatusBadGateway, "could not send reject notification")
	}
	return c.JSON(fiber.Map{"message": "reject notification sent"})
}

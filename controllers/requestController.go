package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"barangay-portal-backend/config"
	"barangay-portal-backend/database"
	"barangay-portal-backend/middlewares"
	"barangay-portal-backend/models"
	"barangay-portal-backend/pricing"
	"barangay-portal-backend/utils"
	"barangay-portal-backend/workflow"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Transition runs the orchestrated status changes; main wires it up with the
// in-process stores and the SMTP dispatcher.
var Transition *workflow.Transitioner

type RequestCreateDTO struct {
	DocumentType  string `json:"document_type" validate:"required,min=1"`
	RequesterName string `json:"requester_name" validate:"required,min=1"`
	ContactNumber string `json:"contact_number" validate:"omitempty,min=7"`
	Email         string `json:"email" validate:"required,email"`
	Purpose       string `json:"purpose" validate:"required,min=1"`
	Address       string `json:"address" validate:"omitempty"`
}

type RequestUpdateDTO struct {
	DocumentType  *string `json:"document_type" validate:"omitempty,min=1"`
	RequesterName *string `json:"requester_name" validate:"omitempty,min=1"`
	ContactNumber *string `json:"contact_number" validate:"omitempty"`
	Email         *string `json:"email" validate:"omitempty,email"`
	Purpose       *string `json:"purpose" validate:"omitempty,min=1"`
	Address       *string `json:"address" validate:"omitempty"`
}

type StatusDTO struct {
	Status string `json:"status" validate:"required,oneof=pending ready reject"`
}

func loadRequest(c *fiber.Ctx) (models.DocumentRequest, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return models.DocumentRequest{}, fiber.NewError(fiber.StatusBadRequest, "invalid request id")
	}
	var req models.DocumentRequest
	if err := database.DB.First(&req, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.DocumentRequest{}, fiber.NewError(fiber.StatusNotFound, "document request not found")
		}
		return models.DocumentRequest{}, fiber.NewError(fiber.StatusInternalServerError, "could not load document request")
	}
	return req, nil
}

func withPrice(req models.DocumentRequest) models.DocumentRequest {
	req.Price = pricing.Fee(req.DocumentType)
	return req
}

// POST /api/document-requests
func CreateRequest(c *fiber.Ctx) error {
	var in RequestCreateDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	utils.NormalizeDTO(&in)

	request := models.DocumentRequest{
		ReferenceNumber: utils.NewReferenceNumber(time.Now()),
		DocumentType:    in.DocumentType,
		RequesterName:   in.RequesterName,
		ContactNumber:   in.ContactNumber,
		Email:           in.Email,
		Purpose:         in.Purpose,
		Address:         in.Address,
		Status:          models.StatusPending,
	}
	if err := database.DB.Create(&request).Error; err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "could not create document request")
	}
	return c.Status(fiber.StatusCreated).JSON(withPrice(request))
}

// GET /api/document-requests?status=&limit=&offset=
func GetRequests(c *fiber.Ctx) error {
	q := database.DB.Model(&models.DocumentRequest{}).Order("created_at DESC")
	if status := strings.TrimSpace(c.Query("status")); status != "" {
		if !models.RequestStatus(status).IsValid() {
			return fiber.NewError(fiber.StatusBadRequest, "unknown status filter")
		}
		q = q.Where("status = ?", status)
	}
	limit := utils.ParseIntDefault(c.Query("limit"), 50)
	offset := utils.ParseIntDefault(c.Query("offset"), 0)

	var requests []models.DocumentRequest
	if err := q.Limit(limit).Offset(offset).Find(&requests).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not list document requests")
	}
	for i := range requests {
		requests[i] = withPrice(requests[i])
	}
	return c.JSON(fiber.Map{"requests": requests, "message": "success"})
}

// GET /api/document-requests/:id
func GetRequest(c *fiber.Ctx) error {
	req, err := loadRequest(c)
	if err != nil {
		return err
	}
	return c.JSON(withPrice(req))
}

// PUT /api/document-requests/:id
// Bare status write, no side effects; the orchestrated route is :id/status.
func UpdateRequestStatus(c *fiber.Ctx) error {
	req, err := loadRequest(c)
	if err != nil {
		return err
	}
	var in StatusDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	if err := database.DB.Model(&req).Update("status", models.RequestStatus(in.Status)).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not update request status")
	}
	req.Status = models.RequestStatus(in.Status)
	return c.JSON(withPrice(req))
}

// PUT /api/document-requests/:id/details
// Partial edit of the descriptive fields. Ledger rows are point-in-time
// snapshots: editing a request after it was marked ready deliberately does not
// touch an existing ledger entry.
func UpdateRequestDetails(c *fiber.Ctx) error {
	req, err := loadRequest(c)
	if err != nil {
		return err
	}
	var in RequestUpdateDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	utils.NormalizePtrDTO(&in)

	updates := utils.UpdatesFromPtrDTO(&in, nil)
	if len(updates) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "no fields to update")
	}
	if err := database.DB.Model(&req).Updates(updates).Error; err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "could not update document request")
	}
	if err := database.DB.First(&req, req.ID).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not reload document request")
	}
	return c.JSON(withPrice(req))
}

// PUT /api/document-requests/:id/status
// The orchestrated transition: persist the status, then notify the requester
// and sync the revenue ledger as independent best-effort steps. The response
// carries one message per step so staff see exactly what happened, including
// partial success.
func TransitionRequest(c *fiber.Ctx) error {
	req, err := loadRequest(c)
	if err != nil {
		return err
	}
	var in StatusDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	target := models.RequestStatus(in.Status)
	from := req.Status

	outcome, err := Transition.Transition(c.UserContext(), req, target)
	if err != nil {
		var se *workflow.StoreError
		if errors.As(err, &se) {
			return fiber.NewError(fiber.StatusInternalServerError, "could not update request status; nothing was changed")
		}
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	recordTransition(req, from, outcome)

	messages := []string{fmt.Sprintf("status updated to %s", outcome.Status)}
	for _, s := range outcome.Steps {
		messages = append(messages, s.Detail)
	}

	req.Status = outcome.Status
	return c.JSON(fiber.Map{
		"request":  withPrice(req),
		"steps":    outcome.Steps,
		"messages": messages,
	})
}

// recordTransition appends the audit row. Best effort: a failed audit write is
// logged, not surfaced, since the transition itself already committed.
func recordTransition(req models.DocumentRequest, from models.RequestStatus, outcome workflow.TransitionOutcome) {
	steps, err := json.Marshal(outcome.Steps)
	if err != nil {
		steps = []byte("[]")
	}
	entry := models.TransitionLog{
		RequestID:   req.ID,
		ReferenceNo: req.ReferenceNumber,
		FromStatus:  from,
		ToStatus:    outcome.Status,
		Steps:       datatypes.JSON(steps),
	}
	if err := database.DB.Create(&entry).Error; err != nil {
		config.GetLogger().WithError(err).Warn("could not record transition log")
	}
}

// GET /api/document-requests/:id/transitions
func GetRequestTransitions(c *fiber.Ctx) error {
	req, err := loadRequest(c)
	if err != nil {
		return err
	}
	var logs []models.TransitionLog
	if err := database.DB.Where("request_id = ?", req.ID).Order("created_at DESC").Find(&logs).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not list transitions")
	}
	return c.JSON(fiber.Map{"transitions": logs, "message": "success"})
}

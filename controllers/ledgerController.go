package controllers

import (
	"errors"
	"net/url"
	"strings"

	"barangay-portal-backend/database"
	"barangay-portal-backend/middlewares"
	"barangay-portal-backend/models"
	"barangay-portal-backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type LedgerEntryCreateDTO struct {
	ReferenceNo  string `json:"reference_no" validate:"required,min=1"`
	DocumentType string `json:"document_type" validate:"required,min=1"`
	Requestor    string `json:"requestor" validate:"required,min=1"`
	Purpose      string `json:"purpose" validate:"omitempty"`
	Price        string `json:"price" validate:"required"`
	Status       string `json:"status" validate:"required,oneof=pending ready reject"`
}

// POST /api/ledger-entries
func CreateLedgerEntry(c *fiber.Ctx) error {
	var in LedgerEntryCreateDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	utils.NormalizeDTO(&in)

	price, err := decimal.NewFromString(in.Price)
	if err != nil || price.IsNegative() {
		return fiber.NewError(fiber.StatusBadRequest, "invalid price")
	}

	// One live row per reference at a time.
	var existing models.ReportEntry
	err = database.DB.Where("reference_no = ?", in.ReferenceNo).First(&existing).Error
	if err == nil {
		return fiber.NewError(fiber.StatusConflict, "reference already has a live ledger entry")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fiber.NewError(fiber.StatusInternalServerError, "could not check ledger")
	}

	entry := models.ReportEntry{
		ReferenceNo:  in.ReferenceNo,
		DocumentType: in.DocumentType,
		Requestor:    in.Requestor,
		Purpose:      in.Purpose,
		Price:        price,
		Status:       models.RequestStatus(in.Status),
	}
	if err := database.DB.Create(&entry).Error; err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "could not create ledger entry")
	}
	return c.Status(fiber.StatusCreated).JSON(entry)
}

// GET /api/ledger-entries?limit=&offset=
func GetLedgerEntries(c *fiber.Ctx) error {
	limit := utils.ParseIntDefault(c.Query("limit"), 50)
	offset := utils.ParseIntDefault(c.Query("offset"), 0)

	var entries []models.ReportEntry
	if err := database.DB.Order("created_at DESC").Limit(limit).Offset(offset).Find(&entries).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not list ledger entries")
	}

	// Revenue rollup over the whole ledger, not just this page.
	var total decimal.Decimal
	row := database.DB.Model(&models.ReportEntry{}).Select("COALESCE(SUM(price), 0)").Row()
	if err := row.Scan(&total); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not total ledger")
	}

	return c.JSON(fiber.Map{
		"entries":       entries,
		"total_revenue": total,
		"message":       "success",
	})
}

// DELETE /api/ledger-entries/by-reference/:reference_no
// Idempotent: deleting a reference with no live row still returns success.
func DeleteLedgerEntryByReference(c *fiber.Ctx) error {
	ref := strings.TrimSpace(c.Params("reference_no"))
	if unescaped, err := url.PathUnescape(ref); err == nil {
		ref = unescaped
	}
	if ref == "" {
		return fiber.NewError(fiber.StatusBadRequest, "reference number is required")
	}

	if err := database.DB.Where("reference_no = ?", ref).Delete(&models.ReportEntry{}).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not delete ledger entry")
	}
	return c.JSON(fiber.Map{"message": "ledger entry removed"})
}

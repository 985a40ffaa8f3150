package routes

import (
	"github.com/gofiber/fiber/v2"

	"barangay-portal-backend/controllers"
	"barangay-portal-backend/database"
	"barangay-portal-backend/middlewares"
)

// Register wires all HTTP routes.
func Register(app *fiber.App) {
	api := app.Group("/api")

	// Idempotency guard for mutating endpoints (status transitions especially)
	api.Use(middlewares.Idempotency(&database.IdempotencyStore{DB: database.DB}))

	// Document requests
	api.Post("/document-requests", controllers.CreateRequest)
	api.Get("/document-requests", controllers.GetRequests)
	api.Get("/document-requests/:id", controllers.GetRequest)
	api.Put("/document-requests/:id", controllers.UpdateRequestStatus)
	api.Put("/document-requests/:id/details", controllers.UpdateRequestDetails)
	api.Put("/document-requests/:id/status", controllers.TransitionRequest)
	api.Get("/document-requests/:id/transitions", controllers.GetRequestTransitions)

	// Requester notifications
	api.Put("/document-requests/:id/ready-notification", controllers.SendReadyNotification)
	api.Put("/document-requests/:id/reject-notification", controllers.SendRejectNotification)

	// Revenue ledger
	api.Post("/ledger-entries", controllers.CreateLedgerEntry)
	api.Get("/ledger-entries", controllers.GetLedgerEntries)
	api.Delete("/ledger-entries/by-reference/:reference_no", controllers.DeleteLedgerEntryByReference)
}

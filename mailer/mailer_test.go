package mailer

import (
	"strings"
	"testing"

	"barangay-portal-backend/models"
	"barangay-portal-backend/workflow"
)

func TestCompose_Ready(t *testing.T) {
	req := models.DocumentRequest{
		ID:              7,
		ReferenceNumber: "DOC-2024-AB12",
		DocumentType:    "Barangay Clearance",
		RequesterName:   "Juan dela Cruz",
		Email:           "juan@example.com",
	}
	subject, body := Compose(req, workflow.NotificationReady, workflow.Payload{
		Status:         models.StatusReady,
		Amount:         "40",
		PickupLocation: "Barangay Hall, Records Section",
	})
	if !strings.Contains(subject, "ready") {
		t.Fatalf("unexpected subject %q", subject)
	}
	for _, want := range []string{"Juan dela Cruz", "DOC-2024-AB12", "PHP 40", "Barangay Hall, Records Section"} {
		if !strings.Contains(body, want) {
			t.Fatalf("ready body missing %q:\n%s", want, body)
		}
	}
}

func TestCompose_Rejected(t *testing.T) {
	req := models.DocumentRequest{
		ReferenceNumber: "DOC-2024-AB12",
		DocumentType:    "Certificate of Indigency",
		RequesterName:   "Maria Santos",
	}
	subject, body := Compose(req, workflow.NotificationRejected, workflow.Payload{Status: models.StatusReject})
	if !strings.Contains(subject, "not approved") {
		t.Fatalf("unexpected subject %q", subject)
	}
	if strings.Contains(body, "PHP") || strings.Contains(body, "pickup") {
		t.Fatalf("rejected body must not mention payment or pickup:\n%s", body)
	}
	if !strings.Contains(body, "DOC-2024-AB12") {
		t.Fatalf("rejected body missing reference:\n%s", body)
	}
}

package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const referenceNumberPrefix = "DOC"

// NewReferenceNumber generates a request reference like "DOC-20240831-4F2A9C1B".
// It is stateless: the date plus a random suffix replaces any process-wide
// counter, so concurrent submissions never contend on shared state. Eight hex
// chars keep the daily collision odds negligible at barangay volumes.
func NewReferenceNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:8]
	return fmt.Sprintf("%s-%s-%s", referenceNumberPrefix, now.UTC().Format("20060102"), suffix)
}

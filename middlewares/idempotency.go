package middlewares

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"barangay-portal-backend/models"

	"github.com/gofiber/fiber/v2"
)

// IdempotencyStore persists Idempotency-Key records. FindOrCreate returns the
// existing record for the key, or stores and returns the given pending record
// when the key is new.
type IdempotencyStore interface {
	FindOrCreate(rec models.IdempotencyKey) (models.IdempotencyKey, error)
	Complete(key string, status int, body []byte) error
}

// requestHash builds the deterministic request fingerprint: method|path|body.
func requestHash(method, path string, body []byte) string {
	h := sha256.New()
	h.Write([]byte(method))
	h.Write([]byte{'\n'})
	h.Write([]byte(path))
	h.Write([]byte{'\n'})
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

// Idempotency processes Idempotency-Key for mutating HTTP methods. A status
// transition retried under the same key replays the stored per-step outcome
// instead of re-running the email and ledger side effects.
func Idempotency(store IdempotencyStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		method := strings.ToUpper(c.Method())
		if method != fiber.MethodPost && method != fiber.MethodPut && method != fiber.MethodPatch && method != fiber.MethodDelete {
			return c.Next()
		}

		key := strings.TrimSpace(c.Get("Idempotency-Key"))
		if key == "" {
			return c.Next()
		}
		if len(key) > 128 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Idempotency-Key too long"})
		}

		path := c.OriginalURL() // includes query string
		reqHash := requestHash(method, path, c.Body())

		existing, err := store.FindOrCreate(models.IdempotencyKey{
			Key:         key,
			RequestHash: reqHash,
			Method:      method,
			Path:        path,
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "idempotency lookup failed")
		}

		if existing.RequestHash != reqHash {
			return fiber.NewError(fiber.StatusConflict, "Idempotency-Key reuse with different request")
		}
		if existing.ResponseStatus != 0 && existing.ResponseBody != nil {
			// Completed response stored -- short-circuit (no handler run)
			c.Status(existing.ResponseStatus)
			return c.Send(existing.ResponseBody)
		}

		// Pending/in-progress: run the handler once; other concurrent calls
		// with the same key will see the pending record.
		if err := c.Next(); err != nil {
			return err
		}

		// Store the response best-effort; a failed store must not break the
		// successful response.
		status := c.Response().StatusCode()
		resp := c.Response().Body()
		blob := make([]byte, len(resp))
		copy(blob, resp)
		_ = store.Complete(key, status, blob)

		return nil
	}
}

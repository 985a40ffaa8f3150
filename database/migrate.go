package database

import (
	"fmt"

	"gorm.io/gorm"
)

// Migrate applies the (idempotent) schema hardening on top of AutoMigrate:
// - Money column type (NUMERIC(12,2)) for ledger prices
// - Status CHECK constraints (pending|ready|reject is the whole enum)
// - Unique reference-number indexes tying requests to ledger rows
// - Idempotency keys unique index
func Migrate() error {
	return DB.Transaction(func(tx *gorm.DB) error {
		// --- Enforce the ledger price as NUMERIC(12,2) (idempotent ALTER) ---
		if err := tx.Exec(`ALTER TABLE report_entries ALTER COLUMN price TYPE numeric(12,2)`).Error; err != nil {
			return fmt.Errorf("money type migration failed: %w", err)
		}

		// --- Helpful / unique indexes (idempotent) ---
		indexes := []string{
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_document_requests_reference_number ON document_requests (reference_number)`,
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_report_entries_reference_no ON report_entries (reference_no)`,
			`CREATE INDEX IF NOT EXISTS idx_transition_logs_request_created ON transition_logs (request_id, created_at)`,
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_idempotency_keys_key ON idempotency_keys (key)`,
		}
		for _, stmt := range indexes {
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("index migration failed on: %s - %w", stmt, err)
			}
		}

		// --- Status CHECK constraints (idempotent) ---
		checks := []string{
			`DO $$
			BEGIN
				IF NOT EXISTS (
					SELECT 1 FROM pg_constraint
					WHERE conrelid = 'document_requests'::regclass
					  AND conname  = 'chk_document_requests_status'
				) THEN
					ALTER TABLE document_requests
					ADD CONSTRAINT chk_document_requests_status
					CHECK (status IN ('pending', 'ready', 'reject'));
				END IF;
			END $$;`,
			`DO $$
			BEGIN
				IF NOT EXISTS (
					SELECT 1 FROM pg_constraint
					WHERE conrelid = 'report_entries'::regclass
					  AND conname  = 'chk_report_entries_status'
				) THEN
					ALTER TABLE report_entries
					ADD CONSTRAINT chk_report_entries_status
					CHECK (status IN ('pending', 'ready', 'reject'));
				END IF;
			END $$;`,
			// Ledger rows must always be joinable back to a request.
			`DO $$
			BEGIN
				IF NOT EXISTS (
					SELECT 1 FROM pg_constraint
					WHERE conrelid = 'report_entries'::regclass
					  AND conname  = 'chk_report_entries_reference_no_nonempty'
				) THEN
					ALTER TABLE report_entries
					ADD CONSTRAINT chk_report_entries_reference_no_nonempty
					CHECK (reference_no <> '');
				END IF;
			END $$;`,
		}
		for _, stmt := range checks {
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("check constraint migration failed: %w", err)
			}
		}

		return nil
	})
}

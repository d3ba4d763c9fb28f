package repository

import (
	"fmt"

	"brightsteps/internal/database"
	"brightsteps/internal/models"
)

// AuditRepository handles append and read operations for the audit log
type AuditRepository struct {
	db *database.DB
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *database.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

const auditColumns = `id, batch_id, table_name, record_id, action, old_values, new_values, actor_id, created_at`

// AppendBatch inserts all entries in one transaction so a bulk action's
// audit trail is recorded completely or not at all
func (r *AuditRepository) AppendBatch(entries []models.AuditEntry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO audit_log (batch_id, table_name, record_id, action, old_values, new_values, actor_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	for _, entry := range entries {
		if _, err := tx.Exec(query,
			entry.BatchID,
			entry.TableName,
			entry.RecordID,
			entry.Action,
			entry.OldValues,
			entry.NewValues,
			entry.ActorID,
		); err != nil {
			return fmt.Errorf("failed to append audit entry: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetByBatch retrieves all entries recorded under a batch ID
func (r *AuditRepository) GetByBatch(batchID string) ([]models.AuditEntry, error) {
	query := "SELECT " + auditColumns + ` FROM audit_log
		WHERE batch_id = ?
		ORDER BY id ASC`
	return r.queryEntries(query, batchID)
}

// GetRecent retrieves the most recent audit entries
func (r *AuditRepository) GetRecent(limit int) ([]models.AuditEntry, error) {
	query := "SELECT " + auditColumns + ` FROM audit_log
		ORDER BY id DESC
		LIMIT ?`
	return r.queryEntries(query, limit)
}

func (r *AuditRepository) queryEntries(query string, args ...interface{}) ([]models.AuditEntry, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit log: %w", err)
	}
	defer rows.Close()

	var entries []models.AuditEntry
	for rows.Next() {
		var entry models.AuditEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.BatchID,
			&entry.TableName,
			&entry.RecordID,
			&entry.Action,
			&entry.OldValues,
			&entry.NewValues,
			&entry.ActorID,
			&entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

package models

import "time"

// Audit actions recorded for bulk user operations
const (
	AuditActionPromote = "promote"
	AuditActionDemote  = "demote"
	AuditActionDelete  = "delete"
	AuditActionNotify  = "notify"
	AuditActionSummary = "bulk_summary"
)

// AuditEntry records a single mutation (or a batch summary) in the audit
// log. Entries belonging to the same bulk action share a BatchID.
type AuditEntry struct {
	ID        int64
	BatchID   string
	TableName string
	RecordID  int64
	Action    string
	OldValues string
	NewValues string
	ActorID   *int64
	CreatedAt time.Time
}

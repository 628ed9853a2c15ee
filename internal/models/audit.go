package models

import "time"

// AuditAction constants represent actions to be logged.
const (
	AuditActionLogin          = "LOGIN"
	AuditActionLogout         = "LOGOUT"
	AuditActionPasswordChange = "PASSWORD_CHANGE"
	AuditActionEvaluate       = "EVALUATION_SUBMIT"
)

// AuditLog represents an audit trail record.
type AuditLog struct {
	ID         string    `db:"id" json:"id"`
	UserID     *string   `db:"user_id" json:"user_id,omitempty"`
	Action     string    `db:"action" json:"action"`
	Resource   string    `db:"resource" json:"resource"`
	ResourceID *string   `db:"resource_id" json:"resource_id,omitempty"`
	OldValues  []byte    `db:"old_values" json:"old_values,omitempty"`
	NewValues  []byte    `db:"new_values" json:"new_values,omitempty"`
	IPAddress  string    `db:"ip_address" json:"ip_address"`
	UserAgent  string    `db:"user_agent" json:"user_agent"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// PasswordAuditAction values recorded in the password audit trail.
const (
	PasswordAuditSelfChange  = "SELF_CHANGE"
	PasswordAuditAdminReset  = "ADMIN_RESET"
	PasswordAuditForcedFirst = "FORCED_FIRST_CHANGE"
)

// PasswordAuditEntry is an append-only record of a password-change action.
// It is write-only within this service.
type PasswordAuditEntry struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Action    string    `db:"action" json:"action"`
	ActorID   *string   `db:"actor_id" json:"actor_id,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

package models

import "time"

// AuditLogEntry is an append-only record of a state-changing action.
type AuditLogEntry struct {
	ID           string         `json:"id" gorm:"primaryKey;size:64"`
	TenantID     string         `json:"tenant_id" gorm:"size:64;index"`
	Action       string         `json:"action" gorm:"size:100;not null"`
	Actor        string         `json:"actor" gorm:"size:200"`
	ActorType    string         `json:"actor_type" gorm:"size:50"`
	ResourceType string         `json:"resource_type" gorm:"size:50"`
	ResourceID   string         `json:"resource_id" gorm:"size:64"`
	Details      map[string]any `json:"details" gorm:"serializer:json"`
	IPAddress    string         `json:"ip_address" gorm:"size:45"`
	UserAgent    string         `json:"user_agent" gorm:"type:text"`
	Timestamp    time.Time      `json:"timestamp" gorm:"index"`
}

// TableName returns the table name for AuditLogEntry
func (AuditLogEntry) TableName() string {
	return "audit_logs"
}

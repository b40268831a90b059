package models

import (
	"encoding/json"
	"time"
)

// AuditLog is an append-only action record for operator traceability.
type AuditLog struct {
	ID         uint   `gorm:"primaryKey"`
	EntityType string `gorm:"size:64;index"`
	EntityID   uint   `gorm:"index"`
	Action     string `gorm:"size:64"`
	Details    string `gorm:"type:text"` // JSON
	CreatedAt  time.Time
}

// NewAuditLog marshals details to JSON; marshal failures degrade to an empty
// object rather than dropping the entry.
func NewAuditLog(entityType string, entityID uint, action string, details map[string]interface{}) *AuditLog {
	payload := "{}"
	if details != nil {
		if b, err := json.Marshal(details); err == nil {
			payload = string(b)
		}
	}
	return &AuditLog{
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		Details:    payload,
	}
}

package services

import (
	"encoding/json"

	"brotodesk/internal/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// recordAudit appends one audit row inside the caller's transaction
func recordAudit(tx *gorm.DB, actor Actor, action, targetID string, details any) error {
	raw, err := json.Marshal(details)
	if err != nil {
		return err
	}
	entry := &models.AuditLog{
		UserID:     actor.ID,
		Action:     action,
		TargetType: models.TargetComplaint,
		TargetID:   targetID,
		Details:    datatypes.JSON(raw),
		IPAddress:  actor.IPAddress,
		UserAgent:  actor.UserAgent,
	}
	return tx.Create(entry).Error
}

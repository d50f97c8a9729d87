package models

import (
	"time"

	"gorm.io/datatypes"
)

// Target kinds recorded in workflow history.
const (
	TargetSection = "section"
	TargetContent = "content"
)

// WorkflowHistory records one applied transition.
type WorkflowHistory struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	TargetType string         `gorm:"size:20;index:idx_history_target" json:"target_type"`
	TargetID   uint           `gorm:"index:idx_history_target" json:"target_id"`
	Action     string         `gorm:"size:50" json:"action"`
	Locale     Locale         `gorm:"size:5" json:"locale,omitempty"`
	ChangedBy  uint           `gorm:"index" json:"changed_by"`
	User       *User          `gorm:"foreignKey:ChangedBy" json:"user,omitempty"`
	Values     datatypes.JSON `json:"values,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

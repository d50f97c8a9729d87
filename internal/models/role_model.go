package models

import (
	"time"

	"gorm.io/gorm"
)

// HubModule is the permission module every workflow capability lives under.
const HubModule = "hub"

type Role struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"size:100;uniqueIndex" json:"name"`
	Description string         `json:"description"`
	Permissions []Permission   `gorm:"foreignKey:RoleID" json:"permissions"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// Permission grants one capability, e.g. Module "hub", Action "confirm_update_en".
type Permission struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	RoleID    uint           `gorm:"index:idx_role_module_action" json:"role_id"`
	Module    string         `gorm:"size:50;index:idx_role_module_action" json:"module"`
	Action    string         `gorm:"size:50;index:idx_role_module_action" json:"action"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

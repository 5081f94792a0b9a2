package models

import "time"

type Role struct {
	ID          string    `json:"id" gorm:"primaryKey;size:64"`
	TenantID    string    `json:"tenant_id" gorm:"size:64;index;not null"`
	Name        string    `json:"name" gorm:"size:100;not null"`
	Description string    `json:"description" gorm:"type:text"`
	Custom      bool      `json:"custom" gorm:"not null"`
	Permissions []string  `json:"permissions" gorm:"serializer:json"`
	Active      bool      `json:"active" gorm:"not null"`
	UserCount   int       `json:"user_count" gorm:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Privilege is an atomic permission unit referenced by roles.
type Privilege struct {
	ID          string    `json:"id" gorm:"primaryKey;size:64"`
	TenantID    string    `json:"tenant_id" gorm:"size:64;index;not null"`
	Name        string    `json:"name" gorm:"size:100;not null"`
	Description string    `json:"description" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at"`
}

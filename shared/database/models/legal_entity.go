package models

import "time"

const LegalEntityStatusActive = "ACTIVE"

// LegalEntity is a registered business entity tracked for compliance.
type LegalEntity struct {
	ID                 string    `json:"id" gorm:"primaryKey;size:64"`
	TenantID           string    `json:"tenant_id" gorm:"size:64;index;not null"`
	Name               string    `json:"name" gorm:"size:200;not null"`
	EntityType         string    `json:"entity_type" gorm:"size:100"`
	Jurisdiction       string    `json:"jurisdiction" gorm:"size:100"`
	RegistrationNumber string    `json:"registration_number" gorm:"size:100"`
	Status             string    `json:"status" gorm:"size:20;default:'ACTIVE'"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

type LegalEntityPatch struct {
	Name               *string `json:"name"`
	EntityType         *string `json:"entity_type"`
	Jurisdiction       *string `json:"jurisdiction"`
	RegistrationNumber *string `json:"registration_number"`
	Status             *string `json:"status"`
}

// Apply merges the patch into e.
func (p LegalEntityPatch) Apply(e *LegalEntity) {
	setString(&e.Name, p.Name)
	setString(&e.EntityType, p.EntityType)
	setString(&e.Jurisdiction, p.Jurisdiction)
	setString(&e.RegistrationNumber, p.RegistrationNumber)
	setString(&e.Status, p.Status)
}

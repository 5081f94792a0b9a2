package models

import "time"

// Tenant statuses
const (
	TenantStatusActive   = "active"
	TenantStatusInactive = "inactive"
)

// Tenant is the root of multi-tenancy; it owns organizations, roles, users and settings.
type Tenant struct {
	ID                  string    `json:"id" gorm:"primaryKey;size:64"`
	Name                string    `json:"name" gorm:"size:200;not null"`
	Industry            string    `json:"industry" gorm:"size:100"`
	Description         string    `json:"description" gorm:"type:text"`
	Email               string    `json:"email" gorm:"size:200"`
	Phone               string    `json:"phone" gorm:"size:50"`
	Website             string    `json:"website" gorm:"size:200"`
	Active              bool      `json:"active" gorm:"not null"`
	Plan                string    `json:"plan" gorm:"size:50"`
	Status              string    `json:"status" gorm:"size:20;default:'active'"`
	OnboardingCompleted bool      `json:"onboarding_completed" gorm:"not null"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// TenantPatch carries the fields of a partial tenant update; nil means "leave as is".
type TenantPatch struct {
	Name        *string `json:"name"`
	Industry    *string `json:"industry"`
	Description *string `json:"description"`
	Email       *string `json:"email"`
	Phone       *string `json:"phone"`
	Website     *string `json:"website"`
	Plan        *string `json:"plan"`
	Status      *string `json:"status"`
	Active      *bool   `json:"active"`
}

// Apply merges the patch into t.
func (p TenantPatch) Apply(t *Tenant) {
	setString(&t.Name, p.Name)
	setString(&t.Industry, p.Industry)
	setString(&t.Description, p.Description)
	setString(&t.Email, p.Email)
	setString(&t.Phone, p.Phone)
	setString(&t.Website, p.Website)
	setString(&t.Plan, p.Plan)
	setString(&t.Status, p.Status)
	setBool(&t.Active, p.Active)
}

// Fields returns the json names of the fields the patch sets.
func (p TenantPatch) Fields() []string {
	var fields []string
	add := func(name string, set bool) {
		if set {
			fields = append(fields, name)
		}
	}
	add("name", p.Name != nil)
	add("industry", p.Industry != nil)
	add("description", p.Description != nil)
	add("email", p.Email != nil)
	add("phone", p.Phone != nil)
	add("website", p.Website != nil)
	add("plan", p.Plan != nil)
	add("status", p.Status != nil)
	add("active", p.Active != nil)
	return fields
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}

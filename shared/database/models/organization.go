package models

import "time"

type Organization struct {
	ID          string    `json:"id" gorm:"primaryKey;size:64"`
	TenantID    string    `json:"tenant_id" gorm:"size:64;index;not null"`
	Name        string    `json:"name" gorm:"size:200;not null"`
	Industry    string    `json:"industry" gorm:"size:100"`
	Description string    `json:"description" gorm:"type:text"`
	Email       string    `json:"email" gorm:"size:200"`
	ParentID    *string   `json:"parent_id" gorm:"size:64"`
	Active      bool      `json:"active" gorm:"not null"`
	UserCount   int       `json:"user_count" gorm:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// OrganizationPatch is a partial organization update.
type OrganizationPatch struct {
	Name        *string `json:"name"`
	Industry    *string `json:"industry"`
	Description *string `json:"description"`
	Email       *string `json:"email"`
	ParentID    *string `json:"parent_id"`
	Active      *bool   `json:"active"`
}

// Apply merges the patch into o. An empty ParentID clears the parent.
func (p OrganizationPatch) Apply(o *Organization) {
	setString(&o.Name, p.Name)
	setString(&o.Industry, p.Industry)
	setString(&o.Description, p.Description)
	setString(&o.Email, p.Email)
	setBool(&o.Active, p.Active)
	if p.ParentID != nil {
		if *p.ParentID == "" {
			o.ParentID = nil
		} else {
			parent := *p.ParentID
			o.ParentID = &parent
		}
	}
}

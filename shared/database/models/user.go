package models

import "time"

type User struct {
	ID                    string     `json:"id" gorm:"primaryKey;size:64"`
	TenantID              string     `json:"tenant_id" gorm:"size:64;index;not null"`
	OrganizationID        *string    `json:"organization_id" gorm:"size:64"`
	FirstName             string     `json:"first_name" gorm:"size:100"`
	LastName              string     `json:"last_name" gorm:"size:100"`
	Email                 string     `json:"email" gorm:"size:200;index;not null"`
	Password              string     `json:"-" gorm:"not null"`
	JobTitle              string     `json:"job_title" gorm:"size:100"`
	Phone                 string     `json:"phone" gorm:"size:50"`
	RoleID                *string    `json:"role_id" gorm:"size:64"`
	RoleName              string     `json:"role_name" gorm:"size:100"`
	UserRole              string     `json:"user_role" gorm:"size:20;not null;default:'user'"`
	IsAdmin               bool       `json:"is_admin" gorm:"not null"`
	Active                bool       `json:"active" gorm:"not null"`
	EmailVerified         bool       `json:"email_verified" gorm:"not null"`
	PasswordSet           bool       `json:"password_set" gorm:"not null"`
	PasswordResetRequired bool       `json:"password_reset_required" gorm:"not null"`
	LastLogin             *time.Time `json:"last_login"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

// FullName returns "First Last".
func (u User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// Sanitized returns a copy without the password hash.
func (u User) Sanitized() User {
	u.Password = ""
	return u
}

// UserProfilePatch holds the self-service profile fields of a user.
type UserProfilePatch struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	JobTitle  *string `json:"job_title"`
	Phone     *string `json:"phone"`
}

// Apply merges the patch into u.
func (p UserProfilePatch) Apply(u *User) {
	setString(&u.FirstName, p.FirstName)
	setString(&u.LastName, p.LastName)
	setString(&u.JobTitle, p.JobTitle)
	setString(&u.Phone, p.Phone)
}

// UserRoleLink associates a user with a role.
type UserRoleLink struct {
	UserID    string    `json:"user_id" gorm:"primaryKey;size:64"`
	RoleID    string    `json:"role_id" gorm:"primaryKey;size:64"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the table name for UserRoleLink
func (UserRoleLink) TableName() string {
	return "user_roles"
}

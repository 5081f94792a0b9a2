package models

import "time"

type GeneralSettings struct {
	Theme         string `json:"theme"`
	Language      string `json:"language"`
	Timezone      string `json:"timezone"`
	Notifications bool   `json:"notifications"`
}

type SecuritySettings struct {
	PasswordPolicy    string `json:"password_policy"`
	SessionTimeout    int    `json:"session_timeout"`
	TwoFactorRequired bool   `json:"two_factor_required"`
}

type FeatureFlags struct {
	AdvancedAnalytics  bool `json:"advanced_analytics"`
	BulkOperations     bool `json:"bulk_operations"`
	APIAccess          bool `json:"api_access"`
	CustomIntegrations bool `json:"custom_integrations"`
}

// TenantSettings is the applied configuration of a tenant.
type TenantSettings struct {
	TenantID  string           `json:"tenant_id" gorm:"primaryKey;size:64"`
	General   GeneralSettings  `json:"general" gorm:"serializer:json"`
	Security  SecuritySettings `json:"security" gorm:"serializer:json"`
	Features  FeatureFlags     `json:"features" gorm:"serializer:json"`
	AppliedAt time.Time        `json:"applied_at"`
}

// Setup progress statuses
const (
	SetupStatusInProgress = "in_progress"
	SetupStatusCompleted  = "completed"
	SetupStatusFailed     = "failed"
)

type SetupSteps struct {
	TenantCreated        bool `json:"tenant_created"`
	OrganizationsCreated bool `json:"organizations_created"`
	RolesAssigned        bool `json:"roles_assigned"`
	UsersCreated         bool `json:"users_created"`
	SettingsApplied      bool `json:"settings_applied"`
}

// Completed returns how many of the onboarding steps are done.
func (s SetupSteps) Completed() int {
	n := 0
	for _, done := range []bool{s.TenantCreated, s.OrganizationsCreated, s.RolesAssigned, s.UsersCreated, s.SettingsApplied} {
		if done {
			n++
		}
	}
	return n
}

// SetupStepsTotal is the number of tracked onboarding steps.
const SetupStepsTotal = 5

// SetupProgress records how far onboarding of a tenant got.
type SetupProgress struct {
	TenantID             string     `json:"tenant_id" gorm:"primaryKey;size:64"`
	Steps                SetupSteps `json:"steps" gorm:"serializer:json"`
	CompletionPercentage int        `json:"completion_percentage"`
	StartedAt            time.Time  `json:"started_at"`
	CompletedAt          *time.Time `json:"completed_at"`
	Status               string     `json:"status" gorm:"size:20"`
	FailureReason        string     `json:"failure_reason,omitempty" gorm:"type:text"`
}

// Recompute refreshes CompletionPercentage from Steps.
func (p *SetupProgress) Recompute() {
	p.CompletionPercentage = p.Steps.Completed() * 100 / SetupStepsTotal
}

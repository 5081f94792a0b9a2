package memory

import (
	"maps"
	"slices"

	"tenantconsole-backend/shared/database/models"
)

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneOrganization(o *models.Organization) *models.Organization {
	c := *o
	c.ParentID = cloneString(o.ParentID)
	return &c
}

func cloneUser(u *models.User) *models.User {
	c := *u
	c.OrganizationID = cloneString(u.OrganizationID)
	c.RoleID = cloneString(u.RoleID)
	if u.LastLogin != nil {
		t := *u.LastLogin
		c.LastLogin = &t
	}
	return &c
}

func cloneRole(r *models.Role) *models.Role {
	c := *r
	c.Permissions = slices.Clone(r.Permissions)
	return &c
}

func cloneAudit(e *models.AuditLogEntry) *models.AuditLogEntry {
	c := *e
	c.Details = maps.Clone(e.Details)
	return &c
}

func cloneProgress(p *models.SetupProgress) *models.SetupProgress {
	c := *p
	if p.CompletedAt != nil {
		t := *p.CompletedAt
		c.CompletedAt = &t
	}
	return &c
}

func clonePlain[T any](v *T) *T {
	c := *v
	return &c
}

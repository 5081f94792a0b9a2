package store

import "tenantconsole-backend/shared/database/models"

// ParentCycle reports whether giving id the parent parentID closes a loop in
// the hierarchy described by parentOf, which returns "" for a root.
func ParentCycle(id, parentID string, parentOf func(id string) string) bool {
	seen := map[string]struct{}{id: {}}
	for cur := parentID; cur != ""; cur = parentOf(cur) {
		if _, ok := seen[cur]; ok {
			return true
		}
		seen[cur] = struct{}{}
	}
	return false
}

// HierarchyCycle reports whether any of orgs sits on a parent loop formed
// within orgs.
func HierarchyCycle(orgs []models.Organization) bool {
	parents := make(map[string]string, len(orgs))
	for _, o := range orgs {
		if o.ParentID != nil {
			parents[o.ID] = *o.ParentID
		}
	}
	parentOf := func(id string) string { return parents[id] }
	for _, o := range orgs {
		if o.ParentID != nil && ParentCycle(o.ID, *o.ParentID, parentOf) {
			return true
		}
	}
	return false
}

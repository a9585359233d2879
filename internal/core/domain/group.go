package domain

// ConsolidationGroup is a named set of entities whose posted entries are
// aggregated into combined financial views. Membership is many-to-many: an
// entity may belong to any number of groups.
type ConsolidationGroup struct {
	GroupID         string   `json:"groupID"`
	ClientID        string   `json:"clientID"`
	Name            string   `json:"name"`
	MemberEntityIDs []string `json:"memberEntityIDs"` // At least one
	AuditFields
}

// HasMember reports whether the entity belongs to this group.
func (g *ConsolidationGroup) HasMember(entityID string) bool {
	for _, id := range g.MemberEntityIDs {
		if id == entityID {
			return true
		}
	}
	return false
}

package models

// ConsolidationGroup is the persistence row for the consolidation_groups table.
// Membership lives in the consolidation_group_members join table.
type ConsolidationGroup struct {
	GroupID  string `db:"group_id"`
	ClientID string `db:"client_id"`
	Name     string `db:"name"`
	AuditFields
}

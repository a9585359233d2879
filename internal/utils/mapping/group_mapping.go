package mapping

import (
	"github.com/finbooks/general_ledger/internal/core/domain"
	"github.com/finbooks/general_ledger/internal/models"
)

// ToModelGroup converts a domain ConsolidationGroup to its model row.
// Membership rows are handled separately by the repository.
func ToModelGroup(d domain.ConsolidationGroup) models.ConsolidationGroup {
	return models.ConsolidationGroup{
		GroupID:     d.GroupID,
		ClientID:    d.ClientID,
		Name:        d.Name,
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainGroup converts a model ConsolidationGroup plus its member entity IDs
// to a domain ConsolidationGroup.
func ToDomainGroup(m models.ConsolidationGroup, memberEntityIDs []string) domain.ConsolidationGroup {
	return domain.ConsolidationGroup{
		GroupID:         m.GroupID,
		ClientID:        m.ClientID,
		Name:            m.Name,
		MemberEntityIDs: memberEntityIDs,
		AuditFields:     ToDomainAuditFields(m.AuditFields),
	}
}

package domain

import "time"

// AuditFields holds standard audit information for domain entities.
type AuditFields struct {
	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy"` // UserID reference
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy string    `json:"lastUpdatedBy"` // UserID reference
}

// UserClientRole defines the access level a user holds within a client.
type UserClientRole string

const (
	RoleReadOnly UserClientRole = "READ_ONLY"
	RoleMember   UserClientRole = "MEMBER"
	RoleAdmin    UserClientRole = "ADMIN"
)

package user

type Role string

const (
	RoleStoreMaster Role = "store_master" // Business owner of one or more stores
	RoleEmployee    Role = "employee"     // Part-time or full-time staff
)

// StoreMembership links a user to a store under a role.
type StoreMembership struct {
	UserID  string
	StoreID string
	Role    Role
}

// IsStoreMaster checks if the membership carries owner authority
func (m StoreMembership) IsStoreMaster() bool {
	return m.Role == RoleStoreMaster
}

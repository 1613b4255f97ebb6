// internal/domain/caller.go
package domain

// Role is the coarse role carried by an authenticated caller.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Capability is a single permission checked at a service entry point.
type Capability string

const (
	CapTransfer Capability = "transfer" // move funds out of an owned wallet
	CapReadOwn  Capability = "read_own" // read owned wallets and transactions
	CapApprove  Capability = "approve"  // approve pending transactions
	CapReadAll  Capability = "read_all" // read any transaction
	CapReports  Capability = "reports"  // read payments and summaries
)

var roleCapabilities = map[Role][]Capability{
	RoleUser:  {CapTransfer, CapReadOwn},
	RoleAdmin: {CapApprove, CapReadAll, CapReports},
}

// Caller is the identity supplied by the authentication layer.
type Caller struct {
	ID   string
	Role Role
}

// NewCaller builds a caller from the identity provider's admin flag.
func NewCaller(id string, isAdmin bool) Caller {
	if isAdmin {
		return Caller{ID: id, Role: RoleAdmin}
	}
	return Caller{ID: id, Role: RoleUser}
}

// IsAdmin reports whether the caller carries the admin role.
func (c Caller) IsAdmin() bool {
	return c.Role == RoleAdmin
}

// Can reports whether the caller's role grants capability.
func (c Caller) Can(capability Capability) bool {
	if c.ID == "" {
		return false
	}
	for _, granted := range roleCapabilities[c.Role] {
		if granted == capability {
			return true
		}
	}
	return false
}

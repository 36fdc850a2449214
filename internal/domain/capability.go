package domain

import "strings"

// Capability is the single resolved view of what an account may do. Views and
// middleware consume this instead of re-deriving role booleans ad hoc.
type Capability string

const (
	CapGuest          Capability = "guest"
	CapCustomer       Capability = "customer"
	CapPendingSeller  Capability = "pendingSeller"
	CapApprovedSeller Capability = "approvedSeller"
	CapAdmin          Capability = "admin"
)

// IsAdminEmail reports whether email matches the configured administrator
// address. An unconfigured address matches nothing.
func IsAdminEmail(email, adminEmail string) bool {
	return adminEmail != "" && strings.EqualFold(email, adminEmail)
}

// ResolveCapability derives the capability for a user. adminEmail is the
// configured administrator address; a matching email grants admin regardless
// of the stored role. A nil user is a guest.
func ResolveCapability(u *User, adminEmail string) Capability {
	if u == nil {
		return CapGuest
	}
	if u.Role == RoleAdmin || IsAdminEmail(u.Email, adminEmail) {
		return CapAdmin
	}
	if u.Role == RoleSeller && u.SellerStatus == SellerStatusApproved {
		return CapApprovedSeller
	}
	if u.SellerStatus == SellerStatusPending {
		return CapPendingSeller
	}
	return CapCustomer
}

// CanManageSellerConsole reports full access to the seller console.
func (c Capability) CanManageSellerConsole() bool {
	return c == CapAdmin || c == CapApprovedSeller
}

// IsAdmin reports admin-console access.
func (c Capability) IsAdmin() bool {
	return c == CapAdmin
}

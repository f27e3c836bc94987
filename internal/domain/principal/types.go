package principal

import "errors"

var ErrInvalidRole = errors.New("invalid role")

// Role is what an authenticated caller may do. The token subject names the
// ledger account acting.
type Role string

const (
	// RoleRegistrar may register fingerprints. Reservation reads are public.
	RoleRegistrar Role = "registrar"
	// RoleLedger is the payment relay; it may also register.
	RoleLedger Role = "ledger"
)

func (r Role) String() string {
	return string(r)
}

func (r Role) IsValid() bool {
	switch r {
	case RoleRegistrar, RoleLedger:
		return true
	default:
		return false
	}
}

func NewRole(s string) (Role, error) {
	role := Role(s)
	if !role.IsValid() {
		return "", ErrInvalidRole
	}
	return role, nil
}

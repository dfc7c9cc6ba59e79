package shared

// Role identifies the kind of account behind a session.
type Role string

const (
	// RoleAdmin is the administrative role, exempt from entitlement and
	// terms enforcement.
	RoleAdmin Role = "ADMIN"
	// RoleMedico is the standard practitioner role.
	RoleMedico Role = "MEDICO"
	// RoleGestor is the clinic manager role.
	RoleGestor Role = "GESTOR"
)

// IsAdmin reports whether the role is the administrative one.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// Package authz derives the active capability tier and the view/
// operation gates from the reconciled session. The derivation is a
// pure function so authorization logic stays centrally testable; the
// authoritative enforcement always lives server-side, these gates only
// mirror it defensively in the UI.
package authz

import "github.com/aegis-intel/aegis-console/internal/session"

// Tier is one of three mutually exclusive capability tiers.
type Tier int

const (
	TierField Tier = iota
	TierSupervisor
	TierSuperSupervisor
)

// String returns the string representation of the Tier.
func (t Tier) String() string {
	switch t {
	case TierField:
		return "FIELD"
	case TierSupervisor:
		return "SUPERVISOR"
	case TierSuperSupervisor:
		return "SUPER_SUPERVISOR"
	default:
		return "UNKNOWN"
	}
}

// Capability describes what the active identity may see and attempt.
// Role and clearance are independent axes: the tier gates which
// operations are exposed, while Clearance is a numeric value compared
// against a mission's minimum for informational display only.
type Capability struct {
	Tier Tier

	// CanViewAdmin gates the global agent/mission/audit collections.
	CanViewAdmin bool

	// CanViewDossier gates the personnel dossier view.
	CanViewDossier bool

	// CanCommand gates the mission command console (status change,
	// agent assignment).
	CanCommand bool

	// CanCreate gates the mission-creation form.
	CanCreate bool

	// CanSeeSensitive gates the sensitive personal fields on a
	// dossier.
	CanSeeSensitive bool

	// Clearance is the reconciled clearance level at composition time.
	Clearance int
}

// Compose derives the capability descriptor from the role set and the
// reconciled clearance. Tier precedence is strict:
// SUPER_SUPERVISOR > SUPERVISOR > FIELD (the default). The tier is
// never re-derived from clearance.
func Compose(roles session.RoleSet, clearance int) Capability {
	tier := TierField
	if roles.Has(session.RoleSupervisor) {
		tier = TierSupervisor
	}
	if roles.Has(session.RoleSuperSupervisor) {
		tier = TierSuperSupervisor
	}

	return Capability{
		Tier:            tier,
		CanViewAdmin:    tier >= TierSuperSupervisor,
		CanViewDossier:  tier >= TierSuperSupervisor,
		CanCommand:      tier >= TierSupervisor,
		CanCreate:       tier >= TierSupervisor,
		CanSeeSensitive: tier >= TierSuperSupervisor,
		Clearance:       clearance,
	}
}

// HighClearance reports whether a clearance level gets the elevated
// visual treatment (level 2 and above).
func HighClearance(level int) bool {
	return level >= 2
}

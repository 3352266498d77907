package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aegis-intel/aegis-console/internal/session"
)

func TestCompose_TierPrecedence(t *testing.T) {
	tests := []struct {
		name  string
		roles []string
		want  Tier
	}{
		{"no roles defaults to field", nil, TierField},
		{"field only", []string{"FIELD"}, TierField},
		{"supervisor", []string{"FIELD", "SUPERVISOR"}, TierSupervisor},
		{"super supervisor beats supervisor", []string{"SUPERVISOR", "SUPER_SUPERVISOR"}, TierSuperSupervisor},
		{"super supervisor alone", []string{"SUPER_SUPERVISOR"}, TierSuperSupervisor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cap := Compose(session.NewRoleSet(tt.roles), 0)
			assert.Equal(t, tt.want, cap.Tier)
		})
	}
}

func TestCompose_FieldGates(t *testing.T) {
	cap := Compose(session.NewRoleSet([]string{"FIELD"}), 1)

	assert.False(t, cap.CanViewAdmin)
	assert.False(t, cap.CanViewDossier)
	assert.False(t, cap.CanCommand)
	assert.False(t, cap.CanCreate)
	assert.False(t, cap.CanSeeSensitive)
	assert.Equal(t, 1, cap.Clearance)
}

func TestCompose_SupervisorGates(t *testing.T) {
	cap := Compose(session.NewRoleSet([]string{"SUPERVISOR"}), 2)

	assert.False(t, cap.CanViewAdmin)
	assert.False(t, cap.CanSeeSensitive)
	assert.True(t, cap.CanCommand)
	assert.True(t, cap.CanCreate)
}

func TestCompose_SuperSupervisorGates(t *testing.T) {
	cap := Compose(session.NewRoleSet([]string{"SUPER_SUPERVISOR"}), 3)

	assert.True(t, cap.CanViewAdmin)
	assert.True(t, cap.CanViewDossier)
	assert.True(t, cap.CanCommand)
	assert.True(t, cap.CanCreate)
	assert.True(t, cap.CanSeeSensitive)
}

func TestCompose_ClearanceDoesNotDriveTier(t *testing.T) {
	// Clearance 3 with no roles stays on the field tier: role and
	// clearance are independent axes.
	cap := Compose(session.NewRoleSet(nil), 3)
	assert.Equal(t, TierField, cap.Tier)
	assert.Equal(t, 3, cap.Clearance)
	assert.False(t, cap.CanCommand)
}

func TestHighClearance(t *testing.T) {
	assert.False(t, HighClearance(0))
	assert.False(t, HighClearance(1))
	assert.True(t, HighClearance(2))
	assert.True(t, HighClearance(3))
}

package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aegis-intel/aegis-console/internal/oplog"
)

// fakeAuthenticator is a scriptable identity-provider double.
type fakeAuthenticator struct {
	cred       Credential
	loginErr   error
	refreshErr error
	renewed    bool
	loggedOut  bool
}

func (f *fakeAuthenticator) Login(ctx context.Context) (Credential, error) {
	return f.cred, f.loginErr
}

func (f *fakeAuthenticator) Refresh(ctx context.Context, minValidity time.Duration) (Credential, bool, error) {
	if f.refreshErr != nil {
		return Credential{}, false, f.refreshErr
	}
	return f.cred, f.renewed, nil
}

func (f *fakeAuthenticator) Logout(ctx context.Context) error {
	f.loggedOut = true
	return nil
}

func signedTestToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("test-key"))
	require.NoError(t, err)
	return signed
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func establishTestSession(t *testing.T, auth Authenticator) *Session {
	t.Helper()
	s, err := Establish(context.Background(), auth, testLogger(), oplog.NewBuffer(0))
	require.NoError(t, err)
	return s
}

func TestDecodeIdentity(t *testing.T) {
	token := signedTestToken(t, jwt.MapClaims{
		"sub":             "user-1",
		"code_name":       "NIGHTHAWK",
		"matricola":       "AX-7741",
		"clearance_level": "2",
		"realm_access": map[string]any{
			"roles": []string{"SUPERVISOR", "FIELD", "offline_access"},
		},
	})

	identity, claimed, err := DecodeIdentity(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", identity.SubjectID)
	assert.Equal(t, "NIGHTHAWK", identity.CodeName)
	assert.Equal(t, "AX-7741", identity.BadgeID)
	assert.Equal(t, 2, claimed)
	assert.True(t, identity.Roles.Has(RoleSupervisor))
	assert.True(t, identity.Roles.Has(RoleField))
	assert.False(t, identity.Roles.Has(RoleSuperSupervisor))
}

func TestDecodeIdentity_NumericClearanceClaim(t *testing.T) {
	token := signedTestToken(t, jwt.MapClaims{
		"sub":             "user-2",
		"clearance_level": 3,
	})

	identity, claimed, err := DecodeIdentity(token)
	require.NoError(t, err)
	assert.Equal(t, 3, claimed)
	assert.Equal(t, "Unknown", identity.CodeName)
	assert.Equal(t, "N/D", identity.BadgeID)
}

func TestDecodeIdentity_MalformedToken(t *testing.T) {
	_, _, err := DecodeIdentity("not-a-jwt")
	assert.Error(t, err)
}

func TestEstablish_LoginFailureIsFatal(t *testing.T) {
	auth := &fakeAuthenticator{loginErr: errors.New("provider unreachable")}

	_, err := Establish(context.Background(), auth, testLogger(), oplog.NewBuffer(0))
	assert.Error(t, err)
}

func TestSession_ClearancePrecedence(t *testing.T) {
	token := signedTestToken(t, jwt.MapClaims{
		"sub":             "user-3",
		"clearance_level": "1",
	})
	auth := &fakeAuthenticator{cred: Credential{AccessToken: token}}
	s := establishTestSession(t, auth)

	// Provisional claim-derived value before confirmation.
	assert.Equal(t, 1, s.CurrentClearance())
	assert.False(t, s.Confirmed())

	// Confirmation supersedes the claim, even downward.
	s.ConfirmClearance(0)
	assert.Equal(t, 0, s.CurrentClearance())
	assert.True(t, s.Confirmed())

	// Later changes arrive only via explicit admin mutation events.
	s.ApplyClearanceChange(3)
	assert.Equal(t, 3, s.CurrentClearance())
}

func TestSession_RefreshFailureForcesLogout(t *testing.T) {
	token := signedTestToken(t, jwt.MapClaims{"sub": "user-4"})
	auth := &fakeAuthenticator{cred: Credential{AccessToken: token}}
	s := establishTestSession(t, auth)

	auth.refreshErr = errors.New("refresh token expired")
	err := s.RefreshBeforeExpiry(context.Background(), RefreshThreshold)

	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.True(t, auth.loggedOut)
}

func TestSession_RefreshRenewal(t *testing.T) {
	token := signedTestToken(t, jwt.MapClaims{"sub": "user-5"})
	auth := &fakeAuthenticator{cred: Credential{AccessToken: token}, renewed: true}
	s := establishTestSession(t, auth)

	err := s.RefreshBeforeExpiry(context.Background(), RefreshThreshold)
	assert.NoError(t, err)
	assert.False(t, auth.loggedOut)
}

func TestNewRoleSet_IgnoresUnknownRoles(t *testing.T) {
	set := NewRoleSet([]string{"SUPER_SUPERVISOR", "uma_authorization", "default-roles-aegis"})
	assert.Len(t, set, 1)
	assert.True(t, set.Has(RoleSuperSupervisor))
}

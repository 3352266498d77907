// Package session owns the credential lifecycle and the reconciliation
// of the locally claimed clearance level with the server-confirmed one.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aegis-intel/aegis-console/internal/oplog"
)

// ErrSessionExpired signals that the credential could not be renewed.
// It is fatal to the session: the caller must force a logout, never
// retry.
var ErrSessionExpired = errors.New("session expired: credential no longer renewable")

// Refresh cadence and thresholds. The periodic refresher runs every
// RefreshInterval and renews the credential when it expires within
// RefreshThreshold; individual requests renew within RequestThreshold.
const (
	RefreshInterval  = 60 * time.Second
	RefreshThreshold = 70 * time.Second
	RequestThreshold = 30 * time.Second
)

// Credential is the opaque, time-bounded proof of authentication.
type Credential struct {
	AccessToken string
	ExpiresAt   time.Time
}

// Authenticator is the identity-provider boundary. Implementations own
// token issuance and renewal; the session only consumes the capability.
type Authenticator interface {
	// Login establishes a credential. Failure is fatal to application
	// start: there is no degraded anonymous mode.
	Login(ctx context.Context) (Credential, error)

	// Refresh renews the credential if it expires within minValidity,
	// reporting whether renewal occurred. It fails when the underlying
	// session is no longer renewable.
	Refresh(ctx context.Context, minValidity time.Duration) (Credential, bool, error)

	// Logout invalidates the credential with the identity provider.
	Logout(ctx context.Context) error
}

// Session holds the reconciled authorization state for one login.
// The clearance level is a two-slot value: the claim-derived slot is
// provisional and only read until the backend-confirmed slot is set.
type Session struct {
	auth     Authenticator
	identity Identity

	claimed   int
	confirmed *int

	logger *slog.Logger
	log    *oplog.Buffer
}

// Establish logs in through the authenticator, decodes the identity
// claims and returns a live session. Any failure aborts application
// start.
func Establish(ctx context.Context, auth Authenticator, logger *slog.Logger, log *oplog.Buffer) (*Session, error) {
	cred, err := auth.Login(ctx)
	if err != nil {
		return nil, fmt.Errorf("establishing session: %w", err)
	}

	identity, claimed, err := DecodeIdentity(cred.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("establishing session: %w", err)
	}

	s := &Session{
		auth:     auth,
		identity: identity,
		claimed:  claimed,
		logger:   logger,
		log:      log,
	}
	s.logger.Info("session established",
		"subject", identity.SubjectID,
		"code_name", identity.CodeName,
		"claimed_clearance", claimed)
	s.log.Append("INIT", "secure connection established")
	return s, nil
}

// Identity returns the decoded claims view.
func (s *Session) Identity() Identity {
	return s.identity
}

// CurrentClearance returns the confirmed clearance when available,
// falling back to the claimed value so the UI never flashes zero while
// the profile request is in flight.
func (s *Session) CurrentClearance() int {
	if s.confirmed != nil {
		return *s.confirmed
	}
	return s.claimed
}

// Confirmed reports whether the backend has confirmed the clearance.
func (s *Session) Confirmed() bool {
	return s.confirmed != nil
}

// ConfirmClearance records the authoritative clearance from the
// profile endpoint. Called once per session establishment; the
// confirmed value supersedes the claim for every later decision.
func (s *Session) ConfirmClearance(level int) {
	s.confirmed = &level
	s.logger.Info("clearance confirmed", "level", level)
	s.log.Append("SYNC", fmt.Sprintf("clearance level %d confirmed", level))
}

// ApplyClearanceChange records an explicit administrative change to
// this session's clearance. Changes never arrive by re-deriving from
// stale claims.
func (s *Session) ApplyClearanceChange(level int) {
	s.confirmed = &level
	s.logger.Info("clearance changed by administrator", "level", level)
	s.log.Append("ADMIN", fmt.Sprintf("clearance level set to %d", level))
}

// RefreshBeforeExpiry renews the credential if it expires within the
// threshold. A refresh failure is the only failure mode and it is
// terminal: the identity provider is told to log out and
// ErrSessionExpired is returned.
func (s *Session) RefreshBeforeExpiry(ctx context.Context, threshold time.Duration) error {
	_, renewed, err := s.auth.Refresh(ctx, threshold)
	if err != nil {
		s.logger.Error("credential refresh failed, forcing logout", "error", err)
		s.log.Append("AUTH", "credential refresh failed, session terminated")
		_ = s.auth.Logout(ctx)
		return ErrSessionExpired
	}
	if renewed {
		s.logger.Debug("credential renewed")
		s.log.Append("AUTH", "credential renewed")
	}
	return nil
}

// Close logs the session out with the identity provider.
func (s *Session) Close(ctx context.Context) error {
	s.log.Append("AUTH", "logout")
	return s.auth.Logout(ctx)
}

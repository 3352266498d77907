package session

import (
	"fmt"
	"strconv"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the subset of credential claims the client reads. The
// credential is treated as a decodable opaque value: signature
// validation is the identity provider's and backend's concern, never
// performed here.
type Claims struct {
	CodeName       string      `json:"code_name"`
	Matricola      string      `json:"matricola"`
	ClearanceLevel any         `json:"clearance_level"`
	RealmAccess    realmAccess `json:"realm_access"`
	jwt.RegisteredClaims
}

type realmAccess struct {
	Roles []string `json:"roles"`
}

// Identity is the decoded view of who the credential belongs to.
type Identity struct {
	SubjectID string
	CodeName  string
	BadgeID   string
	Roles     RoleSet
}

// DecodeIdentity decodes the claims of a bearer token without
// validating its signature. Returns the identity plus the claimed
// clearance level, which is provisional until the backend confirms it.
func DecodeIdentity(token string) (Identity, int, error) {
	parser := jwt.NewParser()
	claims := &Claims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return Identity{}, 0, fmt.Errorf("decoding credential claims: %w", err)
	}

	codeName := claims.CodeName
	if codeName == "" {
		codeName = "Unknown"
	}
	badge := claims.Matricola
	if badge == "" {
		badge = "N/D"
	}

	identity := Identity{
		SubjectID: claims.Subject,
		CodeName:  codeName,
		BadgeID:   badge,
		Roles:     NewRoleSet(claims.RealmAccess.Roles),
	}
	return identity, claimedClearance(claims.ClearanceLevel), nil
}

// claimedClearance normalizes the clearance_level claim, which some
// realm configurations emit as a string attribute and others as a
// number. Anything unreadable degrades to 0.
func claimedClearance(v any) int {
	switch value := v.(type) {
	case float64:
		return int(value)
	case string:
		level, err := strconv.Atoi(value)
		if err != nil {
			return 0
		}
		return level
	default:
		return 0
	}
}

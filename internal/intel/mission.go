// Package intel holds the mission-intel domain model and the workflow
// engine that mediates every mutation of it. The client only ever
// caches server-owned entities: the authoritative copy of a mission or
// agent always lives on the backend, and local state is replaced
// wholesale from authoritative responses, never patched field by field.
package intel

import "time"

// Clearance bounds. Both agents and missions carry a level in this
// range; anything submitted outside it is clamped before the request.
const (
	MinClearance = 0
	MaxClearance = 3
)

// ClampClearance forces a level into [MinClearance, MaxClearance].
func ClampClearance(level int) int {
	if level < MinClearance {
		return MinClearance
	}
	if level > MaxClearance {
		return MaxClearance
	}
	return level
}

// Mission is a cached view of a server-owned mission record.
type Mission struct {
	ID                 string  `json:"id"`
	Description        string  `json:"description"`
	GeographicZone     string  `json:"geographicZone"`
	ClearanceLevel     int     `json:"clearanceLevel"`
	Status             Status  `json:"status"`
	AttachmentFilename string  `json:"attachmentFilename,omitempty"`
	Notes              []Note  `json:"notes,omitempty"`
	AssignedAgents     []Agent `json:"assignedAgentsDetails,omitempty"`
}

// Note is one append-only ledger entry on a mission. Notes are never
// edited or removed once created.
type Note struct {
	ID             string    `json:"id"`
	AuthorCodeName string    `json:"authorCodeName"`
	Timestamp      time.Time `json:"timestamp"`
	Content        string    `json:"content"`
}

// MissionDraft is the client-constructed payload for creating a
// mission. The created record's authoritative shape comes back from
// the server; the draft is never trusted as post-creation state.
type MissionDraft struct {
	Description    string `json:"description"`
	GeographicZone string `json:"geographicZone"`
	ClearanceLevel int    `json:"clearanceLevel"`
}

// Agent is a cached view of a personnel record. FullName, Email and
// Phone are sensitive fields: the backend omits them for callers below
// the privileged tier, so they may be empty here.
type Agent struct {
	Username       string `json:"username"`
	CodeName       string `json:"codeName"`
	Matricola      string `json:"matricola"`
	ClearanceLevel int    `json:"clearanceLevel"`
	Office         string `json:"office,omitempty"`
	Department     string `json:"department,omitempty"`
	FullName       string `json:"fullName,omitempty"`
	Email          string `json:"email,omitempty"`
	Phone          string `json:"phone,omitempty"`
}

// AuditEntry is one record of the server-side audit history.
type AuditEntry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Actor     string    `json:"actor"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
}

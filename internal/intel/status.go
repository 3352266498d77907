package intel

// Status is the lifecycle state of a mission.
type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusStandby   Status = "STANDBY"
	StatusActive    Status = "ACTIVE"
	StatusCompleted Status = "COMPLETED"
	StatusAborted   Status = "ABORTED"
)

// AllStatuses lists every status in display order. The client permits
// any status-to-status change for an authorized role; ordering policy
// is the backend's to enforce.
var AllStatuses = []Status{
	StatusDraft,
	StatusStandby,
	StatusActive,
	StatusCompleted,
	StatusAborted,
}

// Valid reports whether the status is one of the known enum values.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusStandby, StatusActive, StatusCompleted, StatusAborted:
		return true
	}
	return false
}

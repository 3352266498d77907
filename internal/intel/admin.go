package intel

import (
	"context"
	"sort"
)

// AdminSnapshot is one full refresh of the privileged collections.
// Each collection carries its own error so a failure in one fetch
// never prevents the other two from updating; a caller applies only
// the collections whose error is nil.
type AdminSnapshot struct {
	Agents   []Agent
	Missions []Mission
	Audit    []AuditEntry

	AgentsErr   error
	MissionsErr error
	AuditErr    error
}

// FetchAdminSnapshot refreshes the agent registry (sorted by
// username), the mission registry (sorted by id) and the audit history
// (most recent first). The three fetches are sequential but failure
// isolated.
func (e *Engine) FetchAdminSnapshot(ctx context.Context) AdminSnapshot {
	var snap AdminSnapshot

	snap.Agents, snap.AgentsErr = e.backend.ListAgents(ctx)
	if snap.AgentsErr == nil {
		sort.Slice(snap.Agents, func(i, j int) bool {
			return snap.Agents[i].Username < snap.Agents[j].Username
		})
	} else {
		e.logger.Warn("agent registry refresh failed", "error", snap.AgentsErr)
	}

	snap.Missions, snap.MissionsErr = e.backend.ListMissions(ctx)
	if snap.MissionsErr == nil {
		sort.Slice(snap.Missions, func(i, j int) bool {
			return snap.Missions[i].ID < snap.Missions[j].ID
		})
	} else {
		e.logger.Warn("mission registry refresh failed", "error", snap.MissionsErr)
	}

	snap.Audit, snap.AuditErr = e.backend.FetchAudit(ctx)
	if snap.AuditErr == nil {
		sort.Slice(snap.Audit, func(i, j int) bool {
			return snap.Audit[i].Timestamp.After(snap.Audit[j].Timestamp)
		})
	} else {
		e.logger.Warn("audit history refresh failed", "error", snap.AuditErr)
	}

	return snap
}

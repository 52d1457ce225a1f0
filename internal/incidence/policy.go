package incidence

import "go-asistencia/internal/domain"

// Actions is what one actor may do with one incidence.
type Actions struct {
	CanView      bool `json:"can_view"`
	CanEdit      bool `json:"can_edit"`
	CanAuthorize bool `json:"can_authorize"`
}

// PermittedActions consolidates every who-can-do-what decision about
// an incidence in one place. workerUnitID is the unit of the worker
// the incidence belongs to; actorWorkerID may be empty for accounts
// not linked to a worker.
func PermittedActions(actorRole, actorUnitID, actorWorkerID string, inc Incidence, workerUnitID string) Actions {
	var a Actions

	switch actorRole {
	case domain.RoleAdmin:
		a.CanView = true
		a.CanEdit = inc.CanTransition()
		a.CanAuthorize = inc.CanTransition()

	case domain.RoleSupervisor:
		sameUnit := actorUnitID != "" && actorUnitID == workerUnitID
		a.CanView = sameUnit
		a.CanEdit = sameUnit && inc.CanTransition()
		a.CanAuthorize = sameUnit && inc.CanTransition()

	case domain.RoleWorker:
		own := actorWorkerID != "" && actorWorkerID == inc.WorkerID.String()
		a.CanView = own
		a.CanEdit = own && inc.CanTransition()
	}

	return a
}

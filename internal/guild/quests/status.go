package quests

import (
	"strings"

	"github.com/MaxChevalier/LesCapucheDOpale-cloud-sub000/internal/guild/catalog"
)

// Role of the actor requesting a transition. The caller (HTTP layer via the
// auth middleware) supplies it; the engine trusts the value and only checks
// the capability, never the authentication behind it.
type Role string

const (
	RoleGuildMaster Role = "guild_master"
	RoleClient      Role = "client"
	RoleAdventurer  Role = "adventurer"
)

// Action is one guarded operation of the quest lifecycle.
type Action string

const (
	ActionUpdate     Action = "update"
	ActionValidate   Action = "validate"
	ActionInvalidate Action = "invalidate"
	ActionRefuse     Action = "refuse"
	ActionStart      Action = "start"
	ActionAbandon    Action = "abandon"
	ActionFinish     Action = "finish"
	ActionAssign     Action = "assign"
)

// transitionSources lists, per action, the statuses a quest must currently
// be in. A status outside the list makes the transition invalid, whatever
// the actor's role.
var transitionSources = map[Action][]catalog.Status{
	ActionUpdate:     {catalog.StatusWaitingForValidation, catalog.StatusValidated},
	ActionValidate:   {catalog.StatusWaitingForValidation},
	ActionInvalidate: {catalog.StatusValidated},
	ActionRefuse:     {catalog.StatusWaitingForValidation, catalog.StatusValidated},
	ActionStart:      {catalog.StatusValidated},
	ActionAbandon:    {catalog.StatusStarted},
	ActionFinish:     {catalog.StatusStarted},

	// Assignment only makes sense before or during execution.
	ActionAssign: {catalog.StatusWaitingForValidation, catalog.StatusValidated, catalog.StatusStarted},
}

// requiredRole gates role-sensitive actions; actions absent from the map are
// open to any actor the HTTP layer let through.
var requiredRole = map[Action]Role{
	ActionValidate:   RoleGuildMaster,
	ActionInvalidate: RoleGuildMaster,
	ActionRefuse:     RoleGuildMaster,
	ActionAbandon:    RoleClient,
}

// SourcesFor returns the allowed source statuses of an action.
func SourcesFor(a Action) []catalog.Status {
	return transitionSources[a]
}

// stockEffect is the equipment-status side effect of entering a status.
type stockEffect int

const (
	stockKeep stockEffect = iota
	stockBorrow
	stockRelease
)

// stockEffectFor maps a transition target to the change it implies on the
// quest's assigned equipment stocks: starting takes them out of circulation,
// abandoning hands them back. Finish has its own path (wear on success,
// release on failure).
func stockEffectFor(to catalog.Status) stockEffect {
	switch to {
	case catalog.StatusStarted:
		return stockBorrow
	case catalog.StatusCancelled:
		return stockRelease
	}
	return stockKeep
}

// CanTransition reports whether an action is permitted from the given status.
func CanTransition(from catalog.Status, a Action) bool {
	for _, s := range transitionSources[a] {
		if s == from {
			return true
		}
	}
	return false
}

// CheckRole returns a Forbidden error when the action is gated on a role the
// actor does not hold. The role check runs before the status check so a
// misbehaving caller learns about the permission problem, not the state.
func CheckRole(a Action, actor Role) error {
	need, gated := requiredRole[a]
	if !gated {
		return nil
	}
	if actor != need {
		return ErrForbidden(string(a) + " requires role " + string(need))
	}
	return nil
}

func statusListString(statuses []catalog.Status) string {
	parts := make([]string, len(statuses))
	for i, s := range statuses {
		parts[i] = string(s)
	}
	return strings.Join(parts, ", ")
}

package policy

import "github.com/google/uuid"

type Role string

const (
	RolePlayer Role = "player"
	RoleAdmin  Role = "admin"
)

func (r Role) Valid() bool {
	return r == RolePlayer || r == RoleAdmin
}

type Permission string

const (
	ViewTournaments       Permission = "view_tournaments"
	JoinTournaments       Permission = "join_tournaments"
	ViewMatches           Permission = "view_matches"
	ViewRankings          Permission = "view_rankings"
	CreateTournaments     Permission = "create_tournaments"
	EditOwnTournaments    Permission = "edit_own_tournaments"
	DeleteOwnTournaments  Permission = "delete_own_tournaments"
	ManageOwnInscriptions Permission = "manage_own_tournament_inscriptions"
	ManageUsers           Permission = "manage_users"
	EditAnyTournament     Permission = "edit_any_tournament"
	DeleteAnyTournament   Permission = "delete_any_tournament"
	ViewSystemAnalytics   Permission = "view_system_analytics"
)

type permissionSet map[Permission]struct{}

func newSet(perms ...Permission) permissionSet {
	s := make(permissionSet, len(perms))
	for _, p := range perms {
		s[p] = struct{}{}
	}
	return s
}

var basePermissions = []Permission{
	ViewTournaments,
	JoinTournaments,
	ViewMatches,
	ViewRankings,
	CreateTournaments,
	EditOwnTournaments,
	DeleteOwnTournaments,
	ManageOwnInscriptions,
}

var rolePermissions = map[Role]permissionSet{
	RolePlayer: newSet(basePermissions...),
	RoleAdmin: newSet(append(append([]Permission{}, basePermissions...),
		ManageUsers,
		EditAnyTournament,
		DeleteAnyTournament,
		ViewSystemAnalytics,
	)...),
}

func HasPermission(role Role, perm Permission) bool {
	_, ok := rolePermissions[role][perm]
	return ok
}

// Permissions lists everything a role is granted, in table order.
func Permissions(role Role) []Permission {
	all := append(append([]Permission{}, basePermissions...), ManageUsers, EditAnyTournament, DeleteAnyTournament, ViewSystemAnalytics)
	var out []Permission
	for _, p := range all {
		if HasPermission(role, p) {
			out = append(out, p)
		}
	}
	return out
}

// Action is something done to a specific tournament.
type Action string

const (
	ActionEdit               Action = "edit"
	ActionDelete             Action = "delete"
	ActionManageInscriptions Action = "manage_inscriptions"
	ActionStart              Action = "start"
	ActionFinish             Action = "finish"
	ActionCancel             Action = "cancel"
	ActionRecordResult       Action = "record_result"
	ActionGenerateRound      Action = "generate_round"
)

type actionRule struct {
	own Permission
	any Permission
}

var actionRules = map[Action]actionRule{
	ActionEdit:               {own: EditOwnTournaments, any: EditAnyTournament},
	ActionDelete:             {own: DeleteOwnTournaments, any: DeleteAnyTournament},
	ActionManageInscriptions: {own: ManageOwnInscriptions, any: ManageOwnInscriptions},
	ActionStart:              {own: EditOwnTournaments, any: EditAnyTournament},
	ActionFinish:             {own: EditOwnTournaments, any: EditAnyTournament},
	ActionCancel:             {own: EditOwnTournaments, any: EditAnyTournament},
	ActionRecordResult:       {own: EditOwnTournaments, any: EditAnyTournament},
	ActionGenerateRound:      {own: EditOwnTournaments, any: EditAnyTournament},
}

// Actor is whoever is performing a request.
type Actor struct {
	ID   uuid.UUID
	Role Role
}

func (a Actor) Anonymous() bool {
	return a.ID == uuid.Nil
}

func (a Actor) Can(perm Permission) bool {
	return !a.Anonymous() && HasPermission(a.Role, perm)
}

// CanPerform decides whether actor may apply action to a tournament owned by organizerID.
func CanPerform(actor Actor, organizerID uuid.UUID, action Action) bool {
	rule, ok := actionRules[action]
	if !ok || actor.Anonymous() {
		return false
	}
	if actor.Role == RoleAdmin && HasPermission(actor.Role, rule.any) {
		return true
	}
	return actor.ID == organizerID && HasPermission(actor.Role, rule.own)
}

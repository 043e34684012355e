package main

import (
	"context"
	"net/http"

	"github.com/AdamBeresnev/op-chess/internal/chess"
	"github.com/AdamBeresnev/op-chess/internal/engine"
	"github.com/AdamBeresnev/op-chess/internal/httputil"
	"github.com/AdamBeresnev/op-chess/internal/middleware"
	"github.com/AdamBeresnev/op-chess/internal/policy"
	"github.com/AdamBeresnev/op-chess/internal/service"
	"github.com/AdamBeresnev/op-chess/internal/store"
	users "github.com/AdamBeresnev/op-chess/internal/user"
	"github.com/AdamBeresnev/op-chess/views"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func urlID(w http.ResponseWriter, r *http.Request, param, what string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		httputil.BadRequest(w, "Invalid "+what+" ID", err)
		return uuid.Nil, false
	}
	return id, true
}

func (app *application) respond(w http.ResponseWriter, status int, data interface{}) {
	if err := httputil.WriteJSON(w, status, data); err != nil {
		app.logger.Error("failed to write response", "error", err)
	}
}

func (app *application) listTournaments(w http.ResponseWriter, r *http.Request) {
	var filter store.TournamentFilter
	if status := r.URL.Query().Get("status"); status != "" {
		filter.Status = chess.TournamentStatus(status)
		if !filter.Status.Valid() {
			httputil.BadRequest(w, "Invalid status filter", nil)
			return
		}
	}
	if organizer := r.URL.Query().Get("organizer_id"); organizer != "" {
		id, err := uuid.Parse(organizer)
		if err != nil {
			httputil.BadRequest(w, "Invalid organizer ID", err)
			return
		}
		filter.OrganizerID = id
	}

	tournaments, err := app.tournaments.List(r.Context(), filter)
	if err != nil {
		httputil.ServiceError(w, "Failed to list tournaments", err)
		return
	}
	app.respond(w, http.StatusOK, tournaments)
}

func (app *application) getTournament(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id", "tournament")
	if !ok {
		return
	}
	detail, err := app.tournaments.Get(r.Context(), id)
	if err != nil {
		httputil.ServiceError(w, "Tournament not found", err)
		return
	}
	app.respond(w, http.StatusOK, detail)
}

func (app *application) createTournament(w http.ResponseWriter, r *http.Request) {
	var in service.TournamentInput
	if err := httputil.ReadJSON(w, r, &in); err != nil {
		httputil.BadRequest(w, err.Error(), err)
		return
	}
	t, err := app.tournaments.Create(r.Context(), middleware.GetActor(r.Context()), in)
	if err != nil {
		httputil.ServiceError(w, "Failed to create tournament", err)
		return
	}
	app.respond(w, http.StatusCreated, t)
}

func (app *application) updateTournament(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id", "tournament")
	if !ok {
		return
	}
	var in service.TournamentInput
	if err := httputil.ReadJSON(w, r, &in); err != nil {
		httputil.BadRequest(w, err.Error(), err)
		return
	}
	t, err := app.tournaments.Update(r.Context(), middleware.GetActor(r.Context()), id, in)
	if err != nil {
		httputil.ServiceError(w, "Failed to update tournament", err)
		return
	}
	app.respond(w, http.StatusOK, t)
}

func (app *application) deleteTournament(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id", "tournament")
	if !ok {
		return
	}
	if err := app.tournaments.Delete(r.Context(), middleware.GetActor(r.Context()), id); err != nil {
		httputil.ServiceError(w, "Failed to delete tournament", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// transition serves the start, finish and cancel endpoints.
func (app *application) transition(msg string, do func(context.Context, policy.Actor, uuid.UUID) (*service.TournamentDetail, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlID(w, r, "id", "tournament")
		if !ok {
			return
		}
		detail, err := do(r.Context(), middleware.GetActor(r.Context()), id)
		if err != nil {
			httputil.ServiceError(w, msg, err)
			return
		}
		app.respond(w, http.StatusOK, detail)
	}
}

func (app *application) generateRound(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id", "tournament")
	if !ok {
		return
	}
	matches, err := app.matches.GenerateNextRound(r.Context(), middleware.GetActor(r.Context()), id)
	if err != nil {
		httputil.ServiceError(w, "Failed to generate round", err)
		return
	}
	app.respond(w, http.StatusCreated, matches)
}

type matchesResponse struct {
	TournamentID uuid.UUID            `json:"tournament_id"`
	Progress     engine.RoundProgress `json:"progress"`
	Rounds       []views.Round        `json:"rounds"`
}

func (app *application) getMatches(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id", "tournament")
	if !ok {
		return
	}
	data, err := app.matches.GetRoundsData(r.Context(), id)
	if err != nil {
		httputil.ServiceError(w, "Tournament not found", err)
		return
	}
	app.respond(w, http.StatusOK, matchesResponse{
		TournamentID: data.Tournament.ID,
		Progress:     data.Progress,
		Rounds:       views.GroupRounds(data.Matches, data.Players),
	})
}

func (app *application) getStandings(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id", "tournament")
	if !ok {
		return
	}
	standings, err := app.tournaments.Standings(r.Context(), id)
	if err != nil {
		httputil.ServiceError(w, "Tournament not found", err)
		return
	}
	app.respond(w, http.StatusOK, standings)
}

func (app *application) getActions(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id", "tournament")
	if !ok {
		return
	}
	gates, err := app.tournaments.Actions(r.Context(), middleware.GetActor(r.Context()), id)
	if err != nil {
		httputil.ServiceError(w, "Tournament not found", err)
		return
	}
	app.respond(w, http.StatusOK, gates)
}

func (app *application) listInscriptions(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id", "tournament")
	if !ok {
		return
	}
	participants, err := app.inscriptions.List(r.Context(), id)
	if err != nil {
		httputil.ServiceError(w, "Tournament not found", err)
		return
	}
	app.respond(w, http.StatusOK, participants)
}

func (app *application) listPlayerInscriptions(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id", "player")
	if !ok {
		return
	}
	inscriptions, err := app.inscriptions.ListByPlayer(r.Context(), id)
	if err != nil {
		httputil.ServiceError(w, "Failed to list inscriptions", err)
		return
	}
	app.respond(w, http.StatusOK, inscriptions)
}

func (app *application) joinTournament(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id", "tournament")
	if !ok {
		return
	}
	inscription, err := app.inscriptions.Join(r.Context(), middleware.GetActor(r.Context()), id)
	if err != nil {
		httputil.ServiceError(w, "Failed to join tournament", err)
		return
	}
	app.respond(w, http.StatusCreated, inscription)
}

func (app *application) leaveTournament(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id", "tournament")
	if !ok {
		return
	}
	if err := app.inscriptions.Leave(r.Context(), middleware.GetActor(r.Context()), id); err != nil {
		httputil.ServiceError(w, "Failed to leave tournament", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (app *application) removeInscription(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id", "tournament")
	if !ok {
		return
	}
	playerID, ok := urlID(w, r, "playerID", "player")
	if !ok {
		return
	}
	if err := app.inscriptions.Remove(r.Context(), middleware.GetActor(r.Context()), id, playerID); err != nil {
		httputil.ServiceError(w, "Failed to remove player", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type resultRequest struct {
	Result chess.MatchResult `json:"result"`
}

func (app *application) recordResult(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id", "match")
	if !ok {
		return
	}
	var req resultRequest
	if err := httputil.ReadJSON(w, r, &req); err != nil {
		httputil.BadRequest(w, err.Error(), err)
		return
	}
	match, err := app.matches.RecordResult(r.Context(), middleware.GetActor(r.Context()), id, req.Result)
	if err != nil {
		httputil.ServiceError(w, "Failed to record result", err)
		return
	}
	app.respond(w, http.StatusOK, match)
}

type meResponse struct {
	User        *users.User         `json:"user"`
	Permissions []policy.Permission `json:"permissions"`
}

func (app *application) getMe(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetAuthenticatedUser(r.Context())
	app.respond(w, http.StatusOK, meResponse{User: user, Permissions: policy.Permissions(user.Role)})
}

type roleRequest struct {
	Role policy.Role `json:"role"`
}

func (app *application) setUserRole(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id", "user")
	if !ok {
		return
	}
	var req roleRequest
	if err := httputil.ReadJSON(w, r, &req); err != nil {
		httputil.BadRequest(w, err.Error(), err)
		return
	}
	if err := app.users.SetRole(r.Context(), middleware.GetActor(r.Context()), id, req.Role); err != nil {
		httputil.ServiceError(w, "Failed to change role", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (app *application) deleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id", "user")
	if !ok {
		return
	}
	if err := app.users.SoftDelete(r.Context(), middleware.GetActor(r.Context()), id); err != nil {
		httputil.ServiceError(w, "Failed to delete user", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

package httputil

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/AdamBeresnev/op-chess/internal/engine"
	"github.com/AdamBeresnev/op-chess/internal/pairing"
	"github.com/AdamBeresnev/op-chess/internal/service"
)

type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func writeError(w http.ResponseWriter, status int, body errorBody) {
	if err := WriteJSON(w, status, body); err != nil {
		slog.Error("failed to write error response", "error", err)
	}
}

func InternalServerError(w http.ResponseWriter, msg string, err error) {
	slog.Error(msg, "error", err)
	writeError(w, http.StatusInternalServerError, errorBody{Error: "Internal Server Error"})
}

func BadRequest(w http.ResponseWriter, msg string, err error) {
	if err != nil {
		slog.Warn("bad request", "message", msg, "error", err)
	} else {
		slog.Warn("bad request", "message", msg)
	}
	writeError(w, http.StatusBadRequest, errorBody{Error: msg})
}

func NotFound(w http.ResponseWriter, msg string, err error) {
	if err != nil {
		slog.Warn("not found", "message", msg, "error", err)
	} else {
		slog.Warn("not found", "message", msg)
	}
	writeError(w, http.StatusNotFound, errorBody{Error: msg})
}

func Unauthorized(w http.ResponseWriter, msg string) {
	writeError(w, http.StatusUnauthorized, errorBody{Error: msg})
}

func Forbidden(w http.ResponseWriter, msg string) {
	writeError(w, http.StatusForbidden, errorBody{Error: msg})
}

func Conflict(w http.ResponseWriter, msg string) {
	writeError(w, http.StatusConflict, errorBody{Error: msg})
}

func Unprocessable(w http.ResponseWriter, msg string, fields map[string]string) {
	writeError(w, http.StatusUnprocessableEntity, errorBody{Error: msg, Fields: fields})
}

// ServiceError picks the response for an error returned by the service layer.
// Anything it does not recognise is logged and reported as a 500.
func ServiceError(w http.ResponseWriter, msg string, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		Unprocessable(w, "validation failed", verr.Fields)

	case errors.Is(err, service.ErrNotFound):
		NotFound(w, msg, err)

	case errors.Is(err, engine.ErrForbidden):
		Forbidden(w, err.Error())

	case errors.Is(err, engine.ErrNotEnoughParticipants),
		errors.Is(err, engine.ErrPendingResults),
		errors.Is(err, engine.ErrMaxRoundsReached),
		errors.Is(err, engine.ErrTournamentNotOngoing),
		errors.Is(err, engine.ErrTournamentCompleted),
		errors.Is(err, engine.ErrInvalidTransition),
		errors.Is(err, engine.ErrTournamentLocked),
		errors.Is(err, pairing.ErrNotEnoughPlayers),
		errors.Is(err, pairing.ErrRoundOutOfRange),
		errors.Is(err, service.ErrAlreadyRegistered),
		errors.Is(err, service.ErrTournamentFull),
		errors.Is(err, service.ErrRegistrationClosed):
		Conflict(w, err.Error())

	case errors.Is(err, service.ErrNotRegistered),
		errors.Is(err, service.ErrAccountDeleted):
		BadRequest(w, err.Error(), nil)

	default:
		InternalServerError(w, msg, err)
	}
}

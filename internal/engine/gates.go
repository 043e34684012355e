package engine

import (
	"github.com/AdamBeresnev/op-chess/internal/chess"
	"github.com/AdamBeresnev/op-chess/internal/policy"
)

// Snapshot is the most recently fetched state of one tournament.
type Snapshot struct {
	Tournament       *chess.Tournament
	ParticipantCount int
	Matches          []chess.Match
}

func (s Snapshot) Progress() RoundProgress {
	return EvaluateRounds(s.Tournament.Status, s.Tournament.Format, s.ParticipantCount, s.Matches)
}

func (s Snapshot) EffectiveStatus() chess.TournamentStatus {
	return EffectiveStatus(s.Tournament.Status, s.Progress())
}

// Gates tells a client which organizer actions to offer.
type Gates struct {
	CanEdit               bool `json:"can_edit"`
	CanDelete             bool `json:"can_delete"`
	CanStart              bool `json:"can_start"`
	CanFinish             bool `json:"can_finish"`
	CanCancel             bool `json:"can_cancel"`
	CanRecordResults      bool `json:"can_record_results"`
	CanGenerateRound      bool `json:"can_generate_round"`
	CanManageInscriptions bool `json:"can_manage_inscriptions"`
}

func EvaluateGates(actor policy.Actor, s Snapshot) Gates {
	return Gates{
		CanEdit:               CheckEdit(actor, s) == nil,
		CanDelete:             CheckDelete(actor, s) == nil,
		CanStart:              CheckStart(actor, s) == nil,
		CanFinish:             CheckFinish(actor, s) == nil,
		CanCancel:             CheckCancel(actor, s) == nil,
		CanRecordResults:      CheckRecordResult(actor, s) == nil,
		CanGenerateRound:      CheckGenerateRound(actor, s) == nil,
		CanManageInscriptions: CheckManageInscriptions(actor, s) == nil,
	}
}

func authorize(actor policy.Actor, s Snapshot, action policy.Action) error {
	if !policy.CanPerform(actor, s.Tournament.OrganizerID, action) {
		return ErrForbidden
	}
	return nil
}

func CheckEdit(actor policy.Actor, s Snapshot) error {
	if err := authorize(actor, s, policy.ActionEdit); err != nil {
		return err
	}
	if s.EffectiveStatus() == chess.StatusOngoing {
		return ErrTournamentLocked
	}
	return nil
}

func CheckDelete(actor policy.Actor, s Snapshot) error {
	if err := authorize(actor, s, policy.ActionDelete); err != nil {
		return err
	}
	switch s.EffectiveStatus() {
	case chess.StatusOngoing, chess.StatusFinished:
		return ErrTournamentLocked
	}
	return nil
}

func CheckStart(actor policy.Actor, s Snapshot) error {
	_, err := Start(actor, s.Tournament, s.ParticipantCount, s.Progress())
	return err
}

func CheckFinish(actor policy.Actor, s Snapshot) error {
	_, err := Finish(actor, s.Tournament)
	return err
}

func CheckCancel(actor policy.Actor, s Snapshot) error {
	_, err := Cancel(actor, s.Tournament, s.Progress())
	return err
}

func CheckRecordResult(actor policy.Actor, s Snapshot) error {
	if err := authorize(actor, s, policy.ActionRecordResult); err != nil {
		return err
	}
	if s.Tournament.Status != chess.StatusOngoing {
		return ErrTournamentNotOngoing
	}
	if s.Progress().IsCompleted {
		return ErrTournamentCompleted
	}
	return nil
}

func CheckGenerateRound(actor policy.Actor, s Snapshot) error {
	if err := authorize(actor, s, policy.ActionGenerateRound); err != nil {
		return err
	}
	return s.Progress().NextRoundError()
}

func CheckManageInscriptions(actor policy.Actor, s Snapshot) error {
	if err := authorize(actor, s, policy.ActionManageInscriptions); err != nil {
		return err
	}
	if s.EffectiveStatus() != chess.StatusUpcoming {
		return ErrTournamentLocked
	}
	return nil
}

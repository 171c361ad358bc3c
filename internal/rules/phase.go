// Package rules implements the zombie infection round controller: the phase
// state machine, faction conversion, win evaluation and countdown announcements.
package rules

import (
	"errors"
	"fmt"
)

// ErrIllegalTransition is returned when a phase change does not follow the round diagram.
var ErrIllegalTransition = errors.New("illegal phase transition")

// Phase is one discrete stage of the round lifecycle.
type Phase int

const (
	// PhaseIntermission is the idle state between rounds and at session start.
	PhaseIntermission Phase = iota
	// PhaseSelectionCountdown freezes everyone until the initial infected is chosen.
	PhaseSelectionCountdown
	// PhaseActiveRound is live play; win conditions are evaluated every tick.
	PhaseActiveRound
	// PhaseRoundEnd holds after a verdict until the scheduled termination fires.
	PhaseRoundEnd
)

// String returns a human-readable phase name.
func (p Phase) String() string {
	switch p {
	case PhaseIntermission:
		return "intermission"
	case PhaseSelectionCountdown:
		return "selection_countdown"
	case PhaseActiveRound:
		return "active_round"
	case PhaseRoundEnd:
		return "round_end"
	default:
		return "unknown"
	}
}

// CanTransition reports whether the round diagram allows moving from one phase
// to another. A restart may enter intermission from any phase.
func CanTransition(from, to Phase) bool {
	if to == PhaseIntermission {
		return true
	}
	switch from {
	case PhaseIntermission:
		return to == PhaseSelectionCountdown
	case PhaseSelectionCountdown:
		return to == PhaseActiveRound
	case PhaseActiveRound:
		return to == PhaseRoundEnd
	default:
		return false
	}
}

func checkTransition(from, to Phase) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("%s -> %s: %w", from, to, ErrIllegalTransition)
	}
	return nil
}

// Faction is a player's role in the mode, independent of the team tag.
type Faction int

const (
	FactionHuman Faction = iota
	FactionInfected
)

// String returns the faction name.
func (f Faction) String() string {
	switch f {
	case FactionHuman:
		return "human"
	case FactionInfected:
		return "infected"
	default:
		return "unknown"
	}
}

// Team is the host's team tag, kept for presentation and compatibility.
type Team int

const (
	TeamUnassigned Team = iota
	TeamTerrorist
	TeamCT
	TeamSpectator
)

// String returns the team tag as the host names it.
func (t Team) String() string {
	switch t {
	case TeamUnassigned:
		return "UNASSIGNED"
	case TeamTerrorist:
		return "TERRORIST"
	case TeamCT:
		return "CT"
	case TeamSpectator:
		return "SPECTATOR"
	default:
		return "UNKNOWN"
	}
}

const (
	// InfectedTeam is the team tag the infected are moved to.
	InfectedTeam = TeamTerrorist
	// HumanTeam is the team tag survivors are moved to at selection.
	HumanTeam = TeamCT
)

// WinStatus is the outcome passed to the host's round termination.
type WinStatus int

const (
	WinStatusNone WinStatus = iota
	WinStatusCTs
	WinStatusTerrorists
)

// String returns the win status name.
func (w WinStatus) String() string {
	switch w {
	case WinStatusCTs:
		return "cts"
	case WinStatusTerrorists:
		return "terrorists"
	default:
		return "none"
	}
}

// Verdict is the result of a win-condition evaluation.
type Verdict int

const (
	VerdictNone Verdict = iota
	VerdictHumanWin
	VerdictInfectedWin
)

// String returns the verdict name.
func (v Verdict) String() string {
	switch v {
	case VerdictHumanWin:
		return "human_win"
	case VerdictInfectedWin:
		return "infected_win"
	default:
		return "none"
	}
}

// Status maps the verdict to the host win status.
func (v Verdict) Status() WinStatus {
	switch v {
	case VerdictHumanWin:
		return WinStatusCTs
	case VerdictInfectedWin:
		return WinStatusTerrorists
	default:
		return WinStatusNone
	}
}

// Relationship is the answer to the host's relationship query between two players.
type Relationship int

const (
	RelationshipNotTeammate Relationship = iota
	RelationshipTeammate
)

// String returns the relationship name.
func (r Relationship) String() string {
	if r == RelationshipTeammate {
		return "teammate"
	}
	return "not_teammate"
}

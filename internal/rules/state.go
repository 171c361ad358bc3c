package rules

import "github.com/google/uuid"

// noSecond marks that no countdown second has been announced yet.
const noSecond = -1

// RoundState is the controller's view of the session. It is created once per
// session in intermission and reset at every restart, except for the saved
// team map which persists for the whole session.
type RoundState struct {
	Session uuid.UUID
	Phase   Phase

	SelectionDeadline float64 // Absolute time the initial infected is chosen
	SelectionArmed    bool    // False once the deadline has been consumed
	RoundStartTime    float64

	LastAnnouncedSecond int     // noSecond until the first announcement of a countdown
	NextAnnounceCheck   float64 // Announcements are checked no more than once per interval
	MusicPlayed         bool

	AnnouncedWinner bool
	Verdict         Verdict

	SavedTeams     map[int]Team // Slot -> team before the first infection of the session
	HaveSavedTeams bool

	Rounds int // Rounds started this session
}

func newRoundState() *RoundState {
	return &RoundState{
		Session:             uuid.New(),
		Phase:               PhaseIntermission,
		LastAnnouncedSecond: noSecond,
		SavedTeams:          make(map[int]Team),
	}
}

// SavedTeam returns the team captured for a slot, if any.
func (s *RoundState) SavedTeam(id int) (Team, bool) {
	t, ok := s.SavedTeams[id]
	return t, ok
}

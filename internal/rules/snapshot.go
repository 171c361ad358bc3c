package rules

// PlayerView is a read-only copy of a player for status surfaces.
type PlayerView struct {
	ID      int     `json:"id"`
	Name    string  `json:"name"`
	Faction string  `json:"faction"`
	Team    string  `json:"team"`
	Alive   bool    `json:"alive"`
	Health  float64 `json:"health"`
	Item    string  `json:"item,omitempty"`
}

// Snapshot is a point-in-time copy of the round, safe to hand to other goroutines.
type Snapshot struct {
	Session       string       `json:"session"`
	Round         int          `json:"round"`
	Phase         string       `json:"phase"`
	Countdown     float64      `json:"countdown"` // Seconds to selection; 0 outside the countdown
	Elapsed       float64      `json:"elapsed"`   // Seconds since the round went live
	AliveHumans   int          `json:"alive_humans"`
	AliveInfected int          `json:"alive_infected"`
	Verdict       string       `json:"verdict"`
	Players       []PlayerView `json:"players"`
}

// Snapshot copies the round state and roster at the given time.
func (c *Controller) Snapshot(now float64) Snapshot {
	tally := CountAlive(c.roster)
	s := Snapshot{
		Session:       c.state.Session.String(),
		Round:         c.state.Rounds,
		Phase:         c.state.Phase.String(),
		AliveHumans:   tally.Humans,
		AliveInfected: tally.Infected,
		Verdict:       c.state.Verdict.String(),
	}

	switch c.state.Phase {
	case PhaseSelectionCountdown:
		if c.state.SelectionArmed && now < c.state.SelectionDeadline {
			s.Countdown = c.state.SelectionDeadline - now
		}
	case PhaseActiveRound, PhaseRoundEnd:
		s.Elapsed = now - c.state.RoundStartTime
	}

	forEachPlayer(c.roster, func(p Player) {
		s.Players = append(s.Players, PlayerView{
			ID:      p.ID(),
			Name:    p.Name(),
			Faction: p.Faction().String(),
			Team:    p.Team().String(),
			Alive:   p.IsAlive(),
			Health:  p.Health(),
			Item:    p.ActiveItem(),
		})
	})
	return s
}

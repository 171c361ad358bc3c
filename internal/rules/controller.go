package rules

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/samdwyer/infection/internal/gamedata"
	"github.com/samdwyer/infection/internal/telemetry"
)

// Options wires a Controller to its host collaborators.
type Options struct {
	Mode   *gamedata.ModeDef
	Base   BaseRuleset
	Roster Roster
	Clock  Clock
	Notify Notifier

	// Session identifies the session in logs and traces. A zero value gets a
	// fresh random id.
	Session uuid.UUID

	// Rand returns a uniform index in [0, n). Defaults to a time-seeded source.
	Rand   func(n int) int
	Logger *zap.Logger
	Tracer trace.Tracer
}

// Controller is the round/game-mode controller of the infection mode. It
// drives the phase machine from the host tick and overrides the host hooks
// whose behaviour depends on faction or phase.
//
// The controller is not safe for concurrent use; the host calls it from its
// single simulation thread.
type Controller struct {
	mode    *gamedata.ModeDef
	cues    *gamedata.CueRegistry
	blocked *gamedata.ClassFilter

	base   BaseRuleset
	roster Roster
	clock  Clock
	notify Notifier
	rand   func(n int) int

	logger *zap.Logger
	tracer trace.Tracer

	roundsStarted metric.Int64Counter
	roundsWon     metric.Int64Counter
	infections    metric.Int64Counter

	state *RoundState
}

var _ BaseRuleset = (*Controller)(nil)

// New creates a controller in intermission. Call RestartRound to begin the
// first countdown.
func New(opts Options) (*Controller, error) {
	switch {
	case opts.Mode == nil:
		return nil, errors.New("rules: mode definition is required")
	case opts.Base == nil:
		return nil, errors.New("rules: base ruleset is required")
	case opts.Roster == nil:
		return nil, errors.New("rules: roster is required")
	case opts.Clock == nil:
		return nil, errors.New("rules: clock is required")
	case opts.Notify == nil:
		return nil, errors.New("rules: notifier is required")
	}
	if err := opts.Mode.Validate(); err != nil {
		return nil, err
	}

	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano())).Intn
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Tracer == nil {
		opts.Tracer = telemetry.Tracer("rules")
	}

	state := newRoundState()
	if opts.Session != uuid.Nil {
		state.Session = opts.Session
	}
	meter := telemetry.Meter("rules")

	return &Controller{
		mode:          opts.Mode,
		cues:          gamedata.NewCueRegistry(opts.Mode.Countdown.VoiceCues),
		blocked:       gamedata.NewClassFilter(opts.Mode.BlockedEntityClasses),
		base:          opts.Base,
		roster:        opts.Roster,
		clock:         opts.Clock,
		notify:        opts.Notify,
		rand:          opts.Rand,
		logger:        opts.Logger.With(zap.String("session", state.Session.String())),
		tracer:        opts.Tracer,
		roundsStarted: telemetry.Counter(meter, "rounds.started", "Rounds that reached selection countdown"),
		roundsWon:     telemetry.Counter(meter, "rounds.won", "Rounds decided, by winning faction"),
		infections:    telemetry.Counter(meter, "players.infected", "Players converted to the infected faction"),
		state:         state,
	}, nil
}

// State returns the live round state. Callers must not mutate it.
func (c *Controller) State() *RoundState {
	return c.state
}

// Phase returns the current phase.
func (c *Controller) Phase() Phase {
	return c.state.Phase
}

// RestartRound resets the session to a fresh selection countdown. Every
// connected player is made human and frozen; players infected in the previous
// round get their human loadout back. Team tags are captured the first time a
// slot is seen in the session and restored on every later restart.
func (c *Controller) RestartRound(ctx context.Context) {
	c.base.RestartRound(ctx)

	now := c.clock.Now()
	_, span := c.tracer.Start(ctx, "round.restart")
	defer span.End()

	c.transition(PhaseIntermission)

	c.base.ResetRoundTimer(now)
	c.state.RoundStartTime = now
	c.state.AnnouncedWinner = false
	c.state.Verdict = VerdictNone
	c.state.MusicPlayed = false
	c.state.LastAnnouncedSecond = noSecond
	c.state.NextAnnounceCheck = 0

	players := 0
	forEachPlayer(c.roster, func(p Player) {
		players++
		p.SetNoTarget(true)
		p.SetTimerHidden(true)

		wasInfected := p.Faction() == FactionInfected
		c.restoreTeam(p)

		p.SetFaction(FactionHuman)
		p.SetLevel(0)
		p.SetMaxHealth(c.mode.Health.Human)
		if p.IsAlive() {
			p.SetHealth(c.mode.Health.Human)
		}
		p.ResetModel()

		if wasInfected && p.IsAlive() {
			c.giveHumanLoadout(p)
		}
	})
	c.state.HaveSavedTeams = true

	c.state.SelectionDeadline = now + c.mode.Countdown.Duration
	c.state.SelectionArmed = true
	c.state.Rounds++
	c.transition(PhaseSelectionCountdown)

	c.roundsStarted.Add(ctx, 1)
	span.SetAttributes(
		attribute.String("session", c.state.Session.String()),
		attribute.Int("round", c.state.Rounds),
		attribute.Int("players", players),
		attribute.Float64("selection_deadline", c.state.SelectionDeadline),
	)
}

// restoreTeam forces a player back to the team saved for its slot, or saves
// the current team when the slot has none yet.
func (c *Controller) restoreTeam(p Player) {
	saved, ok := c.state.SavedTeam(p.ID())
	if ok && saved != TeamUnassigned {
		if c.state.HaveSavedTeams && saved != p.Team() {
			p.ForceTeam(saved)
		}
		return
	}
	c.state.SavedTeams[p.ID()] = p.Team()
}

// Tick advances the controller by one simulation step. It must be called once
// per host frame with the current session time.
func (c *Controller) Tick(ctx context.Context, now float64) {
	c.base.Think(ctx, now)

	switch c.state.Phase {
	case PhaseActiveRound:
		if c.base.HasRoundTimeExpired() {
			c.endRound(ctx, VerdictHumanWin, "round_timer")
			return
		}
		c.CheckWinConditions(ctx)

	case PhaseSelectionCountdown:
		if !c.state.SelectionArmed {
			return
		}
		c.tickCountdown(ctx, now)
	}
}

// Think satisfies BaseRuleset so the controller can stand in for the host ruleset.
func (c *Controller) Think(ctx context.Context, now float64) {
	c.Tick(ctx, now)
}

func (c *Controller) tickCountdown(ctx context.Context, now float64) {
	// The round clock must not run while nobody can act.
	c.base.ResetRoundTimer(now)
	c.state.RoundStartTime = now

	// Late joiners need the frozen flags too.
	forEachPlayer(c.roster, func(p Player) {
		p.SetNoTarget(true)
		p.SetTimerHidden(true)
	})

	remaining := c.state.SelectionDeadline - now
	if remaining > 0 {
		c.announceCountdown(now, remaining)
	}

	if now >= c.state.SelectionDeadline {
		c.state.SelectionArmed = false
		c.PickInitialInfected(ctx)
	}
}

// transition moves the phase machine, rejecting moves outside the diagram.
func (c *Controller) transition(to Phase) bool {
	from := c.state.Phase
	if err := checkTransition(from, to); err != nil {
		c.logger.Warn("phase transition rejected", zap.Error(err))
		return false
	}
	c.state.Phase = to
	c.logger.Info("phase transition",
		zap.Stringer("phase_from", from),
		zap.Stringer("phase_to", to),
		zap.Int("round", c.state.Rounds),
	)
	return true
}

// =============================================================================
// Host ruleset passthrough
// =============================================================================

// ResetRoundTimer delegates to the host ruleset.
func (c *Controller) ResetRoundTimer(now float64) {
	c.base.ResetRoundTimer(now)
}

// TerminateRound delegates to the host ruleset.
func (c *Controller) TerminateRound(delay float64, status WinStatus) {
	c.base.TerminateRound(delay, status)
}

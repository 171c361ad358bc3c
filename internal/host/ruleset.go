package host

import (
	"context"

	"go.uber.org/zap"

	"github.com/samdwyer/infection/internal/gamedata"
	"github.com/samdwyer/infection/internal/rules"
)

// TerminateFunc is called when a scheduled round termination comes due.
type TerminateFunc func(ctx context.Context, status rules.WinStatus)

// pendingTermination is a scheduled end of round.
type pendingTermination struct {
	at     float64
	status rules.WinStatus
}

// Ruleset is the host's generic multiplayer ruleset: the behaviour a mode
// gets when it does not override a hook. It owns the round timer and the
// one-shot round termination queue.
type Ruleset struct {
	clock     *Clock
	loadout   gamedata.LoadoutDef
	roundTime float64 // Seconds; zero disables the timer
	logger    *zap.Logger

	// Map holds the objectives the host found on the loaded map.
	Map rules.MapConditions
	// FriendlyFire lets teammates hurt each other.
	FriendlyFire bool

	roundStart  float64
	pending     *pendingTermination
	onTerminate TerminateFunc

	Restarts     int
	Terminations int
}

// NewRuleset creates a ruleset with the given round length in seconds.
func NewRuleset(clock *Clock, loadout gamedata.LoadoutDef, roundTime float64, logger *zap.Logger) *Ruleset {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ruleset{
		clock:     clock,
		loadout:   loadout,
		roundTime: roundTime,
		logger:    logger,
		Map:       rules.MapConditions{BombTarget: true, BombZone: true, BuyZone: true},
	}
}

// OnTerminate registers the callback run when a termination comes due.
// The mode normally restarts the round from it.
func (r *Ruleset) OnTerminate(fn TerminateFunc) {
	r.onTerminate = fn
}

// Think fires a due termination. The pending entry is cleared before the
// callback runs so the callback may schedule a new one.
func (r *Ruleset) Think(ctx context.Context, now float64) {
	if r.pending == nil || now < r.pending.at {
		return
	}
	status := r.pending.status
	r.pending = nil
	r.Terminations++

	r.logger.Info("round terminated", zap.Stringer("status", status), zap.Float64("time", now))
	if r.onTerminate != nil {
		r.onTerminate(ctx, status)
	}
}

// RestartRound drops any pending termination.
func (r *Ruleset) RestartRound(ctx context.Context) {
	r.pending = nil
	r.Restarts++
}

// InitHUD does nothing by default.
func (r *Ruleset) InitHUD(p rules.Player) {}

// PlayerSpawn gives the default melee and team sidearm.
func (r *Ruleset) PlayerSpawn(p rules.Player) {
	if p == nil {
		return
	}
	p.StripItems()
	p.GiveItem(r.loadout.Melee)
	if p.Team() == rules.TeamCT {
		p.GiveItem(r.loadout.CTSidearm)
	} else {
		p.GiveItem(r.loadout.TSidearm)
	}
	p.SelectItem(r.loadout.Melee)
}

// PlayerKilled logs the death.
func (r *Ruleset) PlayerKilled(victim, killer rules.Player) {
	if victim == nil {
		return
	}
	fields := []zap.Field{zap.Int("victim", victim.ID())}
	if killer != nil {
		fields = append(fields, zap.Int("killer", killer.ID()))
	}
	r.logger.Debug("player killed", fields...)
}

// CanTakeDamage allows world damage and, unless friendly fire is on, only
// damage between different teams.
func (r *Ruleset) CanTakeDamage(victim, attacker rules.Player) bool {
	if victim == nil {
		return false
	}
	if attacker == nil || attacker.ID() == victim.ID() {
		return true
	}
	return r.FriendlyFire || attacker.Team() != victim.Team()
}

// CanHaveItem allows any item.
func (r *Ruleset) CanHaveItem(p rules.Player, item string) bool {
	return p != nil
}

// Relationship reports players on the same team as teammates.
func (r *Ruleset) Relationship(p, target rules.Player) rules.Relationship {
	if p != nil && target != nil && p.Team() == target.Team() {
		return rules.RelationshipTeammate
	}
	return rules.RelationshipNotTeammate
}

// IsAllowedToSpawn allows every entity class.
func (r *Ruleset) IsAllowedToSpawn(class string) bool {
	return true
}

// CheckMapConditions reports the loaded map's objectives.
func (r *Ruleset) CheckMapConditions(mc *rules.MapConditions) {
	if mc != nil {
		*mc = r.Map
	}
}

// HasRoundTimeExpired reports whether the round timer ran out.
func (r *Ruleset) HasRoundTimeExpired() bool {
	if r.roundTime <= 0 {
		return false
	}
	return r.clock.Now()-r.roundStart >= r.roundTime
}

// ResetRoundTimer restarts the round timer from now.
func (r *Ruleset) ResetRoundTimer(now float64) {
	r.roundStart = now
}

// TimeLeft returns the seconds left on the round timer, never negative.
func (r *Ruleset) TimeLeft(now float64) float64 {
	if r.roundTime <= 0 {
		return 0
	}
	left := r.roundTime - (now - r.roundStart)
	if left < 0 {
		return 0
	}
	return left
}

// TerminateRound schedules the end of the round after delay seconds. Only
// one termination can be pending; later requests are ignored.
func (r *Ruleset) TerminateRound(delay float64, status rules.WinStatus) {
	if r.pending != nil {
		r.logger.Debug("termination already pending", zap.Stringer("status", status))
		return
	}
	if delay < 0 {
		delay = 0
	}
	r.pending = &pendingTermination{at: r.clock.Now() + delay, status: status}
	r.logger.Info("round termination scheduled",
		zap.Stringer("status", status),
		zap.Float64("delay", delay),
	)
}

// Pending reports the scheduled termination time, if any.
func (r *Ruleset) Pending() (float64, bool) {
	if r.pending == nil {
		return 0, false
	}
	return r.pending.at, true
}

var _ rules.BaseRuleset = (*Ruleset)(nil)

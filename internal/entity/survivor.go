// Package entity provides the in-memory players of the simulated host.
package entity

import (
	"slices"

	"github.com/samdwyer/infection/internal/rules"
)

// DefaultHealth is the health a freshly connected player spawns with.
const DefaultHealth = 100

// Survivor is a connected player slot.
type Survivor struct {
	id   int
	name string

	faction rules.Faction
	level   int
	team    rules.Team
	alive   bool

	HP, MaxHP float64

	items  []string
	active string

	ModelName string // Empty means the team default model
	ModelPath string

	noTarget    bool
	timerHidden bool

	TeamChanges int // Full team switches, as opposed to forced tag writes
	TimerSyncs  int // Round timer pushes to the client
}

// NewSurvivor creates a living, human player in the given slot and team.
func NewSurvivor(id int, name string, team rules.Team) *Survivor {
	return &Survivor{
		id:      id,
		name:    name,
		faction: rules.FactionHuman,
		team:    team,
		alive:   true,
		HP:      DefaultHealth,
		MaxHP:   DefaultHealth,
		items:   []string{},
	}
}

// =============================================================================
// rules.Player implementation
// =============================================================================

// ID returns the slot handle.
func (s *Survivor) ID() int { return s.id }

// Name returns the display name.
func (s *Survivor) Name() string { return s.name }

// IsAlive returns true if the player has not been killed since its last spawn.
func (s *Survivor) IsAlive() bool { return s.alive }

// Faction returns the current faction.
func (s *Survivor) Faction() rules.Faction { return s.faction }

// SetFaction relabels the player.
func (s *Survivor) SetFaction(f rules.Faction) { s.faction = f }

// Level returns the infected sub-level.
func (s *Survivor) Level() int { return s.level }

// SetLevel sets the infected sub-level.
func (s *Survivor) SetLevel(level int) { s.level = level }

// Team returns the team tag.
func (s *Survivor) Team() rules.Team { return s.team }

// ChangeTeam switches team the way a player-requested switch would.
func (s *Survivor) ChangeTeam(t rules.Team) {
	s.team = t
	s.TeamChanges++
}

// ForceTeam writes the team tag without side effects.
func (s *Survivor) ForceTeam(t rules.Team) { s.team = t }

// Health returns current health.
func (s *Survivor) Health() float64 { return s.HP }

// SetHealth sets current health.
func (s *Survivor) SetHealth(hp float64) { s.HP = hp }

// MaxHealth returns maximum health.
func (s *Survivor) MaxHealth() float64 { return s.MaxHP }

// SetMaxHealth sets maximum health.
func (s *Survivor) SetMaxHealth(hp float64) { s.MaxHP = hp }

// StripItems removes the whole inventory.
func (s *Survivor) StripItems() {
	s.items = s.items[:0]
	s.active = ""
}

// GiveItem adds an item; the first item received becomes active.
func (s *Survivor) GiveItem(name string) {
	if name == "" || slices.Contains(s.items, name) {
		return
	}
	s.items = append(s.items, name)
	if s.active == "" {
		s.active = name
	}
}

// SelectItem makes a carried item active. Unknown items are ignored.
func (s *Survivor) SelectItem(name string) {
	if slices.Contains(s.items, name) {
		s.active = name
	}
}

// ActiveItem returns the item in hand, or "" when empty-handed.
func (s *Survivor) ActiveItem() string { return s.active }

// Items returns a copy of the inventory.
func (s *Survivor) Items() []string {
	return slices.Clone(s.items)
}

// SetModel overrides the player model.
func (s *Survivor) SetModel(name, path string) {
	s.ModelName = name
	s.ModelPath = path
}

// ResetModel returns to the team default model.
func (s *Survivor) ResetModel() {
	s.ModelName = ""
	s.ModelPath = ""
}

// NoTarget reports whether the player is ignored by targeting.
func (s *Survivor) NoTarget() bool { return s.noTarget }

// SetNoTarget toggles the non-targetable flag.
func (s *Survivor) SetNoTarget(on bool) { s.noTarget = on }

// TimerHidden reports whether the HUD round timer is hidden.
func (s *Survivor) TimerHidden() bool { return s.timerHidden }

// SetTimerHidden toggles the HUD round timer.
func (s *Survivor) SetTimerHidden(hidden bool) { s.timerHidden = hidden }

// SyncRoundTimer records a round timer push.
func (s *Survivor) SyncRoundTimer() { s.TimerSyncs++ }

// =============================================================================
// Host-side lifecycle
// =============================================================================

// TakeDamage reduces health and returns the damage actually taken. Reaching
// zero health kills the player.
func (s *Survivor) TakeDamage(amount float64) float64 {
	if amount <= 0 || !s.alive {
		return 0
	}
	actual := amount
	if actual > s.HP {
		actual = s.HP
	}
	s.HP -= actual
	if s.HP <= 0 {
		s.alive = false
	}
	return actual
}

// Kill marks the player dead regardless of health.
func (s *Survivor) Kill() {
	s.HP = 0
	s.alive = false
}

// Revive brings a dead player back at full health. The rules re-apply the
// faction loadout through their spawn hook.
func (s *Survivor) Revive() {
	s.alive = true
	s.HP = s.MaxHP
}

// Ensure Survivor implements rules.Player
var _ rules.Player = (*Survivor)(nil)

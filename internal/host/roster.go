package host

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/samdwyer/infection/internal/entity"
	"github.com/samdwyer/infection/internal/rules"
)

var (
	// ErrRosterFull is returned by Join when every slot is taken.
	ErrRosterFull = errors.New("roster full")
	// ErrNoPlayer is returned when a slot is empty or out of range.
	ErrNoPlayer = errors.New("no player in slot")
)

// Roster holds the connected players by slot. Slots run from 1 to MaxPlayers.
type Roster struct {
	slots  []*entity.Survivor
	logger *zap.Logger
}

// NewRoster creates an empty roster with the given number of slots.
func NewRoster(maxPlayers int, logger *zap.Logger) *Roster {
	if maxPlayers < 1 {
		maxPlayers = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Roster{
		slots:  make([]*entity.Survivor, maxPlayers+1),
		logger: logger,
	}
}

// MaxPlayers returns the number of slots.
func (r *Roster) MaxPlayers() int {
	return len(r.slots) - 1
}

// PlayerByIndex returns the player in slot i, or nil for an empty slot.
func (r *Roster) PlayerByIndex(i int) rules.Player {
	s := r.Survivor(i)
	if s == nil {
		// A nil *Survivor must not leak as a non-nil interface.
		return nil
	}
	return s
}

// Survivor returns the concrete player in slot i, or nil.
func (r *Roster) Survivor(i int) *entity.Survivor {
	if i < 1 || i >= len(r.slots) {
		return nil
	}
	return r.slots[i]
}

// Join seats a new player in the lowest free slot.
func (r *Roster) Join(name string, team rules.Team) (*entity.Survivor, error) {
	for i := 1; i < len(r.slots); i++ {
		if r.slots[i] != nil {
			continue
		}
		if name == "" {
			name = fmt.Sprintf("player%d", i)
		}
		s := entity.NewSurvivor(i, name, team)
		r.slots[i] = s
		r.logger.Info("player joined",
			zap.Int("slot", i),
			zap.String("name", name),
			zap.Stringer("team", team),
		)
		return s, nil
	}
	return nil, ErrRosterFull
}

// Leave frees a slot.
func (r *Roster) Leave(id int) error {
	s := r.Survivor(id)
	if s == nil {
		return fmt.Errorf("leave slot %d: %w", id, ErrNoPlayer)
	}
	r.slots[id] = nil
	r.logger.Info("player left", zap.Int("slot", id), zap.String("name", s.Name()))
	return nil
}

// Kill marks the player in a slot dead.
func (r *Roster) Kill(id int) (*entity.Survivor, error) {
	s := r.Survivor(id)
	if s == nil {
		return nil, fmt.Errorf("kill slot %d: %w", id, ErrNoPlayer)
	}
	s.Kill()
	r.logger.Debug("player killed", zap.Int("slot", id), zap.String("name", s.Name()))
	return s, nil
}

// Respawn revives the player in a slot. The caller runs the spawn hook.
func (r *Roster) Respawn(id int) (*entity.Survivor, error) {
	s := r.Survivor(id)
	if s == nil {
		return nil, fmt.Errorf("respawn slot %d: %w", id, ErrNoPlayer)
	}
	s.Revive()
	r.logger.Debug("player respawned", zap.Int("slot", id), zap.String("name", s.Name()))
	return s, nil
}

// Connected returns the seated players in slot order.
func (r *Roster) Connected() []*entity.Survivor {
	var out []*entity.Survivor
	for _, s := range r.slots[1:] {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

// Alive returns the living players in slot order.
func (r *Roster) Alive() []*entity.Survivor {
	var out []*entity.Survivor
	for _, s := range r.Connected() {
		if s.IsAlive() {
			out = append(out, s)
		}
	}
	return out
}

// Count returns the number of seated players.
func (r *Roster) Count() int {
	return len(r.Connected())
}

var _ rules.Roster = (*Roster)(nil)

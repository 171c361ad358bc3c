package game

import (
	"context"
	"fmt"
	"math/rand"

	"go.opentelemetry.io/otel/attribute"

	"github.com/samdwyer/infection/internal/entity"
	"github.com/samdwyer/infection/internal/host"
	"github.com/samdwyer/infection/internal/rules"
	"github.com/samdwyer/infection/internal/telemetry"
)

const (
	// DefaultHitChance is the chance a living bot attacks on a given step.
	DefaultHitChance = 0.15
	// DefaultHumanDamage is the damage of one human hit on the infected.
	DefaultHumanDamage = 35.0
)

// AttackResult describes one resolved bot attack.
type AttackResult struct {
	Attacker *entity.Survivor
	Victim   *entity.Survivor
	Infected bool    // The hit converted the victim
	Blocked  bool    // The rules refused the damage
	Damage   float64 // Health actually removed
	Killed   bool
}

// Message returns a one-line description of the attack.
func (r AttackResult) Message() string {
	switch {
	case r.Infected:
		return fmt.Sprintf("%s infected %s!", r.Attacker.Name(), r.Victim.Name())
	case r.Blocked:
		return fmt.Sprintf("%s cannot hurt %s.", r.Attacker.Name(), r.Victim.Name())
	case r.Killed:
		return fmt.Sprintf("%s killed %s!", r.Attacker.Name(), r.Victim.Name())
	default:
		return fmt.Sprintf("%s hits %s for %.0f.", r.Attacker.Name(), r.Victim.Name(), r.Damage)
	}
}

// Skirmish drives the bots during a live round. Every attack goes through
// the controller's hooks, the same way a client hit would.
type Skirmish struct {
	ctrl   *rules.Controller
	roster *host.Roster
	rng    *rand.Rand

	HitChance   float64
	HumanDamage float64

	LastMessage string
	Attacks     int
}

// NewSkirmish creates a skirmish with default tuning.
func NewSkirmish(ctrl *rules.Controller, roster *host.Roster, rng *rand.Rand) *Skirmish {
	return &Skirmish{
		ctrl:        ctrl,
		roster:      roster,
		rng:         rng,
		HitChance:   DefaultHitChance,
		HumanDamage: DefaultHumanDamage,
	}
}

// Step lets every living bot try one attack. Nothing happens outside a live
// round.
func (s *Skirmish) Step(ctx context.Context) []AttackResult {
	if s.ctrl.Phase() != rules.PhaseActiveRound {
		return nil
	}

	var results []AttackResult
	for _, bot := range s.roster.Alive() {
		if !bot.IsAlive() || s.rng.Float64() >= s.HitChance {
			continue
		}
		target := s.selectTarget(bot)
		if target == nil {
			continue
		}
		results = append(results, s.Attack(ctx, bot, target))
		if s.ctrl.Phase() != rules.PhaseActiveRound {
			break
		}
	}
	return results
}

// Attack resolves a single hit from attacker on victim.
func (s *Skirmish) Attack(ctx context.Context, attacker, victim *entity.Survivor) AttackResult {
	tracer := telemetry.Tracer("skirmish")
	_, span := tracer.Start(ctx, "skirmish.attack")
	defer span.End()

	res := AttackResult{Attacker: attacker, Victim: victim}
	switch {
	case s.ctrl.HitInfects(victim, attacker):
		res.Infected = s.ctrl.InfectPlayer(victim)
	case !s.ctrl.CanTakeDamage(victim, attacker):
		res.Blocked = true
	default:
		res.Damage = victim.TakeDamage(s.HumanDamage)
		if !victim.IsAlive() {
			res.Killed = true
			s.ctrl.PlayerKilled(victim, attacker)
		}
	}

	s.Attacks++
	s.LastMessage = res.Message()
	span.SetAttributes(
		attribute.Int("attacker", attacker.ID()),
		attribute.Int("victim", victim.ID()),
		attribute.Bool("infected", res.Infected),
		attribute.Bool("blocked", res.Blocked),
		attribute.Float64("damage", res.Damage),
		attribute.Bool("killed", res.Killed),
	)
	return res
}

// selectTarget returns the living opponent with the lowest health.
func (s *Skirmish) selectTarget(bot *entity.Survivor) *entity.Survivor {
	var lowest *entity.Survivor
	for _, p := range s.roster.Alive() {
		if p.Faction() == bot.Faction() {
			continue
		}
		if lowest == nil || p.Health() < lowest.Health() {
			lowest = p
		}
	}
	return lowest
}

package rules

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// InfectPlayer converts a living human to the infected faction. It reports
// whether a conversion happened; nil, dead or already infected players are
// left untouched.
func (c *Controller) InfectPlayer(p Player) bool {
	return c.infect(context.Background(), p)
}

// infect converts p, counting the conversion against ctx and marking it on
// the span ctx carries.
func (c *Controller) infect(ctx context.Context, p Player) bool {
	if p == nil || !p.IsAlive() || p.Faction() == FactionInfected {
		return false
	}

	sounds := c.mode.Sounds.Infection
	c.notify.EmitSound(p, sounds[c.rand(len(sounds))])

	p.SetFaction(FactionInfected)
	p.SetLevel(0)
	if p.Team() != InfectedTeam {
		p.ChangeTeam(InfectedTeam)
	}
	c.giveInfectedLoadout(p)
	p.SetModel(c.mode.InfectedModel.Name, c.mode.InfectedModel.Path)

	c.infections.Add(ctx, 1)
	trace.SpanFromContext(ctx).AddEvent("infected", trace.WithAttributes(attribute.Int("player", p.ID())))
	c.logger.Debug("player infected", zap.Int("player", p.ID()), zap.String("name", p.Name()))
	return true
}

// PickInitialInfected ends the selection countdown: one living player chosen
// uniformly at random is infected, everyone else is made a human survivor and
// unfrozen, and the round becomes active. With nobody alive it does nothing
// and returns nil; the round then waits for the next restart.
func (c *Controller) PickInitialInfected(ctx context.Context) Player {
	ctx, span := c.tracer.Start(ctx, "round.pick_infected")
	defer span.End()

	candidates := alivePlayers(c.roster)
	span.SetAttributes(attribute.Int("candidates", len(candidates)))
	if len(candidates) == 0 {
		c.logger.Warn("no living players at selection deadline, round not started")
		span.SetAttributes(attribute.Bool("skipped", true))
		return nil
	}

	pick := candidates[c.rand(len(candidates))]
	c.infect(ctx, pick)

	forEachPlayer(c.roster, func(p Player) {
		if p.ID() != pick.ID() {
			p.SetFaction(FactionHuman)
			p.SetLevel(0)
			if p.Team() != HumanTeam {
				p.ForceTeam(HumanTeam)
			}
			p.SetHealth(c.mode.Health.Human)
			p.SetMaxHealth(c.mode.Health.Human)
		}

		p.SetNoTarget(false)
		p.SetTimerHidden(false)
		p.SyncRoundTimer()
	})

	now := c.clock.Now()
	c.base.ResetRoundTimer(now)
	c.state.RoundStartTime = now
	c.transition(PhaseActiveRound)

	span.SetAttributes(
		attribute.Int("infected", pick.ID()),
		attribute.Int("humans", len(candidates)-1),
	)
	c.logger.Info("initial infected chosen",
		zap.Int("player", pick.ID()),
		zap.String("name", pick.Name()),
		zap.Int("humans", len(candidates)-1),
	)
	return pick
}

// giveInfectedLoadout strips a player to the melee item and raises health to
// the infected value.
func (c *Controller) giveInfectedLoadout(p Player) {
	p.StripItems()
	p.GiveItem(c.mode.Loadout.Melee)
	p.SetHealth(c.mode.Health.Infected)
	p.SetMaxHealth(c.mode.Health.Infected)
}

// giveHumanLoadout re-equips melee plus the team sidearm and selects melee.
func (c *Controller) giveHumanLoadout(p Player) {
	p.StripItems()
	p.GiveItem(c.mode.Loadout.Melee)
	p.GiveItem(c.sidearmFor(p.Team()))
	p.SelectItem(c.mode.Loadout.Melee)
}

func (c *Controller) sidearmFor(t Team) string {
	if t == TeamCT {
		return c.mode.Loadout.CTSidearm
	}
	return c.mode.Loadout.TSidearm
}

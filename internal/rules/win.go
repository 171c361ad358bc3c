package rules

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// Tally counts living players by faction.
type Tally struct {
	Humans   int
	Infected int
}

// Alive returns the total number of living players.
func (t Tally) Alive() int {
	return t.Humans + t.Infected
}

// Verdict decides the round from the tally. A lone survivor (or nobody)
// never decides a round.
func (t Tally) Verdict() Verdict {
	if t.Alive() <= 1 {
		return VerdictNone
	}
	if t.Infected == 0 && t.Humans > 0 {
		return VerdictHumanWin
	}
	if t.Humans == 0 && t.Infected > 0 {
		return VerdictInfectedWin
	}
	return VerdictNone
}

// CountAlive tallies the living players of a roster.
func CountAlive(r Roster) Tally {
	var t Tally
	for _, p := range alivePlayers(r) {
		if p.Faction() == FactionInfected {
			t.Infected++
		} else {
			t.Humans++
		}
	}
	return t
}

// CheckWinConditions evaluates the live roster and returns the verdict. On a
// decision during a live round the round ends; the broadcast and the
// termination are issued only once per round however often this is called.
func (c *Controller) CheckWinConditions(ctx context.Context) Verdict {
	verdict := CountAlive(c.roster).Verdict()
	if verdict != VerdictNone {
		c.endRound(ctx, verdict, "elimination")
	}
	return verdict
}

// endRound moves to round end, announces the winner and schedules the
// termination of the round.
func (c *Controller) endRound(ctx context.Context, verdict Verdict, reason string) {
	switch c.state.Phase {
	case PhaseActiveRound:
		c.transition(PhaseRoundEnd)
	case PhaseRoundEnd:
	default:
		// Nothing is live to end.
		return
	}
	if c.state.AnnouncedWinner {
		return
	}
	c.state.AnnouncedWinner = true
	c.state.Verdict = verdict

	ctx, span := c.tracer.Start(ctx, "round.end")
	defer span.End()

	text, sound := c.mode.Text.HumanWin, c.mode.Sounds.HumanWin
	if verdict == VerdictInfectedWin {
		text, sound = c.mode.Text.InfectedWin, c.mode.Sounds.InfectedWin
	}

	c.notify.CenterPrintAll(text)
	forEachPlayer(c.roster, func(p Player) {
		c.notify.PlaySound(p, sound)
	})
	c.base.TerminateRound(c.mode.RoundEndDelay, verdict.Status())

	elapsed := c.clock.Now() - c.state.RoundStartTime
	c.roundsWon.Add(ctx, 1, metricWinner(verdict))
	span.SetAttributes(
		attribute.String("verdict", verdict.String()),
		attribute.String("reason", reason),
		attribute.Float64("elapsed", elapsed),
	)
	c.logger.Info("round decided",
		zap.Stringer("verdict", verdict),
		zap.String("reason", reason),
		zap.Float64("elapsed", elapsed),
	)
}

func metricWinner(v Verdict) metric.AddOption {
	return metric.WithAttributes(attribute.String("winner", v.String()))
}

package rules

import "github.com/samdwyer/infection/internal/combat"

// fighter adapts a Player to the combat rules.
type fighter struct{ Player }

func (f fighter) IsInfected() bool { return f.Faction() == FactionInfected }

// InitHUD hides the round timer of a joining player while no round is live.
func (c *Controller) InitHUD(p Player) {
	c.base.InitHUD(p)
	if p == nil {
		return
	}
	if c.state.Phase != PhaseActiveRound {
		p.SetTimerHidden(true)
	}
}

// PlayerSpawn re-applies the faction loadout after the host spawned a player.
func (c *Controller) PlayerSpawn(p Player) {
	c.base.PlayerSpawn(p)
	if p == nil {
		return
	}

	if p.Faction() == FactionInfected {
		c.giveInfectedLoadout(p)
		p.SetModel(c.mode.InfectedModel.Name, c.mode.InfectedModel.Path)
		return
	}
	p.SetHealth(c.mode.Health.Human)
	p.SetMaxHealth(c.mode.Health.Human)
	p.ResetModel()
}

// PlayerKilled has no mode-specific behaviour; win checks run on the next tick.
func (c *Controller) PlayerKilled(victim, killer Player) {
	c.base.PlayerKilled(victim, killer)
}

// CanTakeDamage blocks all damage outside a live round and applies the
// faction rules between players. World damage is left to the host.
func (c *Controller) CanTakeDamage(victim, attacker Player) bool {
	if victim == nil {
		return false
	}
	if c.state.Phase != PhaseActiveRound {
		return false
	}
	if attacker == nil {
		return c.base.CanTakeDamage(victim, attacker)
	}
	return combat.CanDamage(fighter{victim}, fighter{attacker}, c.mode.Loadout.Melee)
}

// CanHaveItem keeps the infected melee-only.
func (c *Controller) CanHaveItem(p Player, item string) bool {
	if p == nil || item == "" {
		return false
	}
	if !combat.CanCarry(fighter{p}, item, c.mode.Loadout.Melee) {
		return false
	}
	return c.base.CanHaveItem(p, item)
}

// Relationship treats everyone as a teammate until the round is live.
func (c *Controller) Relationship(p, target Player) Relationship {
	if c.state.Phase != PhaseActiveRound {
		return RelationshipTeammate
	}
	return c.base.Relationship(p, target)
}

// IsAllowedToSpawn removes the map's objective entities.
func (c *Controller) IsAllowedToSpawn(class string) bool {
	if c.blocked.Blocked(class) {
		return false
	}
	return c.base.IsAllowedToSpawn(class)
}

// CheckMapConditions lets the host scan the map, then clears every objective.
func (c *Controller) CheckMapConditions(mc *MapConditions) {
	c.base.CheckMapConditions(mc)
	if mc == nil {
		return
	}
	*mc = MapConditions{}
}

// HasRoundTimeExpired always reports false: the controller reads the host's
// timer itself in Tick and ends the round as a human win.
func (c *Controller) HasRoundTimeExpired() bool {
	return false
}

// HitInfects reports whether a hit should convert the victim rather than
// damage it.
func (c *Controller) HitInfects(victim, attacker Player) bool {
	if victim == nil || attacker == nil || c.state.Phase != PhaseActiveRound {
		return false
	}
	return combat.Infects(fighter{victim}, fighter{attacker}, c.mode.Loadout.Melee)
}

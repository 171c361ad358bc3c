// Package combat provides the damage and inventory rules between the human
// and infected factions.
package combat

// Combatant is the view of a player the faction rules need.
type Combatant interface {
	IsInfected() bool
	ActiveItem() string
}

// CanDamage reports whether attacker may hurt victim once a round is live.
// The infected only hurt humans with their melee item, members of the same
// faction never hurt each other, and humans always hurt the infected.
func CanDamage(victim, attacker Combatant, melee string) bool {
	attackerInfected := attacker.IsInfected()
	victimInfected := victim.IsInfected()

	if attackerInfected && !victimInfected {
		return attacker.ActiveItem() == melee
	}
	if attackerInfected == victimInfected {
		return false
	}
	return true
}

// CanCarry reports whether a combatant may pick up an item. The infected
// carry nothing but the melee item; humans are unrestricted here.
func CanCarry(c Combatant, item, melee string) bool {
	if item == "" {
		return false
	}
	if c.IsInfected() {
		return item == melee
	}
	return true
}

// Infects reports whether a hit from attacker on victim converts the victim
// instead of damaging it.
func Infects(victim, attacker Combatant, melee string) bool {
	return attacker.IsInfected() && !victim.IsInfected() && attacker.ActiveItem() == melee
}

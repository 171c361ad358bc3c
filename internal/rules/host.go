package rules

import "context"

// Player is a connected player as the host exposes it. The controller only
// relabels and re-equips players; it never creates or destroys them.
type Player interface {
	// Identity
	ID() int // Stable slot handle, 1..MaxPlayers
	Name() string
	IsAlive() bool

	// Faction
	Faction() Faction
	SetFaction(f Faction)
	Level() int
	SetLevel(level int)

	// Team tag
	Team() Team
	ChangeTeam(t Team) // Full switch as on a player request
	ForceTeam(t Team)  // Write the tag and push the update, nothing else

	// Vitals
	Health() float64
	SetHealth(hp float64)
	MaxHealth() float64
	SetMaxHealth(hp float64)

	// Inventory
	StripItems()
	GiveItem(name string)
	SelectItem(name string)
	ActiveItem() string
	Items() []string

	// Presentation
	SetModel(name, path string)
	ResetModel()
	NoTarget() bool
	SetNoTarget(on bool)
	TimerHidden() bool
	SetTimerHidden(hidden bool)
	SyncRoundTimer()
}

// Roster enumerates connected players by slot.
type Roster interface {
	MaxPlayers() int
	// PlayerByIndex returns the player in slot i (1-based), or nil when the
	// slot is empty or out of range.
	PlayerByIndex(i int) Player
}

// Clock is the monotonic session clock in seconds.
type Clock interface {
	Now() float64
}

// Notifier delivers announcements to players.
type Notifier interface {
	CenterPrintAll(msg string)
	CenterPrint(p Player, msg string)
	PlaySound(p Player, sound string) // Client-side cue, heard only by p
	PlayMusic(p Player, track string)
	EmitSound(p Player, sound string) // World sound emitted from p
}

// MapConditions are the objective features the host detected on the map.
type MapConditions struct {
	BombTarget    bool
	BombZone      bool
	BuyZone       bool
	RescueZone    bool
	EscapeZone    bool
	VIPSafetyZone bool
}

// BaseRuleset is the host's generic multiplayer ruleset. The controller
// implements the same surface, overriding some hooks and delegating the rest.
type BaseRuleset interface {
	Think(ctx context.Context, now float64)
	RestartRound(ctx context.Context)
	InitHUD(p Player)
	PlayerSpawn(p Player)
	PlayerKilled(victim, killer Player)
	CanTakeDamage(victim, attacker Player) bool // attacker is nil for world damage
	CanHaveItem(p Player, item string) bool
	Relationship(p, target Player) Relationship
	IsAllowedToSpawn(class string) bool
	CheckMapConditions(mc *MapConditions)
	HasRoundTimeExpired() bool
	ResetRoundTimer(now float64)
	TerminateRound(delay float64, status WinStatus) // One-shot, fires after delay seconds
}

// forEachPlayer calls fn for every connected player in slot order.
func forEachPlayer(r Roster, fn func(p Player)) {
	for i := 1; i <= r.MaxPlayers(); i++ {
		p := r.PlayerByIndex(i)
		if p == nil {
			continue
		}
		fn(p)
	}
}

// alivePlayers returns connected players that are alive, in slot order.
func alivePlayers(r Roster) []Player {
	var alive []Player
	forEachPlayer(r, func(p Player) {
		if p.IsAlive() {
			alive = append(alive, p)
		}
	})
	return alive
}

package rules

import (
	"context"
	"slices"
	"strconv"
	"testing"

	"github.com/samdwyer/infection/internal/gamedata"
	"github.com/samdwyer/infection/internal/telemetry"
)

// fakePlayer is a test implementation of the Player interface.
type fakePlayer struct {
	id          int
	name        string
	alive       bool
	faction     Faction
	level       int
	team        Team
	hp, maxHP   float64
	items       []string
	active      string
	model       string
	noTarget    bool
	timerHidden bool

	teamChanges int
	forcedTeams int
	syncs       int
}

func newFakePlayer(id int, team Team) *fakePlayer {
	return &fakePlayer{id: id, name: "p" + strconv.Itoa(id), alive: true, team: team, hp: 100, maxHP: 100}
}

func (p *fakePlayer) ID() int                 { return p.id }
func (p *fakePlayer) Name() string            { return p.name }
func (p *fakePlayer) IsAlive() bool           { return p.alive }
func (p *fakePlayer) Faction() Faction        { return p.faction }
func (p *fakePlayer) SetFaction(f Faction)    { p.faction = f }
func (p *fakePlayer) Level() int              { return p.level }
func (p *fakePlayer) SetLevel(level int)      { p.level = level }
func (p *fakePlayer) Team() Team              { return p.team }
func (p *fakePlayer) Health() float64         { return p.hp }
func (p *fakePlayer) SetHealth(hp float64)    { p.hp = hp }
func (p *fakePlayer) MaxHealth() float64      { return p.maxHP }
func (p *fakePlayer) SetMaxHealth(hp float64) { p.maxHP = hp }
func (p *fakePlayer) ActiveItem() string      { return p.active }
func (p *fakePlayer) Items() []string         { return slices.Clone(p.items) }
func (p *fakePlayer) ResetModel()             { p.model = "" }
func (p *fakePlayer) NoTarget() bool          { return p.noTarget }
func (p *fakePlayer) SetNoTarget(on bool)     { p.noTarget = on }
func (p *fakePlayer) TimerHidden() bool       { return p.timerHidden }
func (p *fakePlayer) SetTimerHidden(h bool)   { p.timerHidden = h }
func (p *fakePlayer) SyncRoundTimer()         { p.syncs++ }

func (p *fakePlayer) ChangeTeam(t Team) {
	p.team = t
	p.teamChanges++
}

func (p *fakePlayer) ForceTeam(t Team) {
	p.team = t
	p.forcedTeams++
}

func (p *fakePlayer) StripItems() {
	p.items = nil
	p.active = ""
}

func (p *fakePlayer) GiveItem(name string) {
	p.items = append(p.items, name)
	if p.active == "" {
		p.active = name
	}
}

func (p *fakePlayer) SelectItem(name string) {
	if slices.Contains(p.items, name) {
		p.active = name
	}
}

func (p *fakePlayer) SetModel(name, path string) { p.model = name }

// fakeRoster holds players by slot.
type fakeRoster struct {
	max   int
	slots map[int]*fakePlayer
}

func newFakeRoster(players ...*fakePlayer) *fakeRoster {
	r := &fakeRoster{max: 8, slots: make(map[int]*fakePlayer)}
	for _, p := range players {
		r.slots[p.id] = p
	}
	return r
}

func (r *fakeRoster) MaxPlayers() int { return r.max }

func (r *fakeRoster) PlayerByIndex(i int) Player {
	p, ok := r.slots[i]
	if !ok {
		return nil
	}
	return p
}

type fakeClock struct{ now float64 }

func (c *fakeClock) Now() float64 { return c.now }

// note is one recorded notification.
type note struct {
	kind   string // "all", "center", "sound", "music", "emit"
	target int
	text   string
}

type fakeNotifier struct{ notes []note }

func (n *fakeNotifier) CenterPrintAll(msg string) {
	n.notes = append(n.notes, note{kind: "all", text: msg})
}

func (n *fakeNotifier) CenterPrint(p Player, msg string) {
	n.notes = append(n.notes, note{kind: "center", target: p.ID(), text: msg})
}

func (n *fakeNotifier) PlaySound(p Player, sound string) {
	n.notes = append(n.notes, note{kind: "sound", target: p.ID(), text: sound})
}

func (n *fakeNotifier) PlayMusic(p Player, track string) {
	n.notes = append(n.notes, note{kind: "music", target: p.ID(), text: track})
}

func (n *fakeNotifier) EmitSound(p Player, sound string) {
	n.notes = append(n.notes, note{kind: "emit", target: p.ID(), text: sound})
}

func (n *fakeNotifier) count(kind string) int {
	c := 0
	for _, nt := range n.notes {
		if nt.kind == kind {
			c++
		}
	}
	return c
}

func (n *fakeNotifier) reset() { n.notes = nil }

type termination struct {
	delay  float64
	status WinStatus
}

// fakeBase records the calls the controller delegates to the host ruleset.
type fakeBase struct {
	expired      bool
	terminations []termination
	restarts     int
	timerResets  int
	thinks       int
	spawns       int
	kills        int
	huds         int
	mapChecks    int
	worldDamage  bool
	relationship Relationship
	denyItems    bool
	denySpawn    bool
}

func (b *fakeBase) Think(ctx context.Context, now float64) { b.thinks++ }
func (b *fakeBase) RestartRound(ctx context.Context)       { b.restarts++ }
func (b *fakeBase) InitHUD(p Player)                       { b.huds++ }
func (b *fakeBase) PlayerSpawn(p Player)                   { b.spawns++ }
func (b *fakeBase) PlayerKilled(victim, killer Player)     { b.kills++ }
func (b *fakeBase) HasRoundTimeExpired() bool              { return b.expired }
func (b *fakeBase) ResetRoundTimer(now float64)            { b.timerResets++ }
func (b *fakeBase) IsAllowedToSpawn(class string) bool     { return !b.denySpawn }

func (b *fakeBase) CanTakeDamage(victim, attacker Player) bool {
	return b.worldDamage
}

func (b *fakeBase) CanHaveItem(p Player, item string) bool {
	return !b.denyItems
}

func (b *fakeBase) Relationship(p, target Player) Relationship {
	return b.relationship
}

func (b *fakeBase) CheckMapConditions(mc *MapConditions) {
	b.mapChecks++
	if mc != nil {
		*mc = MapConditions{BombTarget: true, BombZone: true, BuyZone: true, RescueZone: true, EscapeZone: true, VIPSafetyZone: true}
	}
}

func (b *fakeBase) TerminateRound(delay float64, status WinStatus) {
	b.terminations = append(b.terminations, termination{delay: delay, status: status})
}

// harness bundles a controller with its fakes.
type harness struct {
	c      *Controller
	roster *fakeRoster
	clock  *fakeClock
	notify *fakeNotifier
	base   *fakeBase
	pick   int // Index returned by the injected rand
}

func newHarness(t *testing.T, players ...*fakePlayer) *harness {
	t.Helper()

	h := &harness{
		roster: newFakeRoster(players...),
		clock:  &fakeClock{},
		notify: &fakeNotifier{},
		base:   &fakeBase{relationship: RelationshipNotTeammate},
	}
	c, err := New(Options{
		Mode:   gamedata.MustLoadMode(),
		Base:   h.base,
		Roster: h.roster,
		Clock:  h.clock,
		Notify: h.notify,
		Rand: func(n int) int {
			if h.pick >= n {
				return n - 1
			}
			return h.pick
		},
		Tracer: telemetry.NoopTracer(),
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	h.c = c
	return h
}

// tickTo advances the clock and ticks once.
func (h *harness) tickTo(now float64) {
	h.clock.now = now
	h.c.Tick(context.Background(), now)
}

// runCountdown restarts at the current time and ticks past the deadline in
// steps of 0.1s.
func (h *harness) runCountdown() {
	ctx := context.Background()
	h.c.RestartRound(ctx)
	start := h.clock.now
	deadline := h.c.State().SelectionDeadline
	for i := 1; start+float64(i)/10 <= deadline+0.05; i++ {
		h.tickTo(start + float64(i)/10)
	}
}

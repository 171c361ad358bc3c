package game

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"sync/atomic"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/samdwyer/infection/internal/config"
	"github.com/samdwyer/infection/internal/entity"
	"github.com/samdwyer/infection/internal/gamedata"
	"github.com/samdwyer/infection/internal/host"
	"github.com/samdwyer/infection/internal/rules"
	"github.com/samdwyer/infection/internal/telemetry"
	"github.com/samdwyer/infection/internal/ui"
	"github.com/samdwyer/infection/internal/world"
)

// Game holds the entire session: the simulated host, the infection rules
// and the optional terminal dashboard.
type Game struct {
	cfg     config.Config
	logger  *zap.Logger
	mode    *gamedata.ModeDef
	palette gamedata.Palette
	rng     *rand.Rand

	clock  *host.Clock
	roster *host.Roster
	feed   *host.Feed
	base   *host.Ruleset
	ctrl   *rules.Controller
	sim    *Skirmish
	level  *world.Map

	screen   *ui.Screen
	renderer *ui.Renderer

	state    State
	autoplay bool
	running  bool
	ticks    int
	message  string

	snap atomic.Pointer[rules.Snapshot]
}

// New creates a session with cfg.Bots players seated. The first round starts
// when Run is called.
func New(cfg config.Config, session uuid.UUID, logger *zap.Logger) (*Game, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	mode, err := loadMode(cfg.ModeFile)
	if err != nil {
		return nil, err
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	clock := host.NewClock()
	roster := host.NewRoster(cfg.MaxPlayers, logger.Named("roster"))
	feed := host.NewFeed(host.DefaultFeedSize, clock, logger.Named("feed"))
	base := host.NewRuleset(clock, mode.Loadout, cfg.RoundTime, logger.Named("host"))

	ctrl, err := rules.New(rules.Options{
		Mode:    mode,
		Base:    base,
		Roster:  roster,
		Clock:   clock,
		Notify:  feed,
		Session: session,
		Rand:    rng.Intn,
		Logger:  logger.Named("rules"),
	})
	if err != nil {
		return nil, err
	}
	// A due termination starts the next round.
	base.OnTerminate(func(ctx context.Context, status rules.WinStatus) {
		ctrl.RestartRound(ctx)
	})

	g := &Game{
		cfg:      cfg,
		logger:   logger,
		mode:     mode,
		palette:  mode.Colors.Palette(),
		rng:      rng,
		clock:    clock,
		roster:   roster,
		feed:     feed,
		base:     base,
		ctrl:     ctrl,
		sim:      NewSkirmish(ctrl, roster, rng),
		level:    world.DefaultMap(),
		state:    StateRunning,
		autoplay: true,
		running:  true,
	}
	for i := 0; i < cfg.Bots; i++ {
		if _, err := g.Join(); err != nil {
			return nil, err
		}
	}
	g.publish()
	return g, nil
}

// loadMode returns the embedded mode, or the one in path when set.
func loadMode(path string) (*gamedata.ModeDef, error) {
	if path == "" {
		return gamedata.LoadMode()
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read mode file: %w", err)
	}
	mode, err := gamedata.ParseMode(content)
	if err != nil {
		return nil, fmt.Errorf("mode file %s: %w", path, err)
	}
	return mode, nil
}

// Controller returns the rules controller.
func (g *Game) Controller() *rules.Controller { return g.ctrl }

// Roster returns the seated players.
func (g *Game) Roster() *host.Roster { return g.roster }

// Level returns the loaded map.
func (g *Game) Level() *world.Map { return g.level }

// Start spawns the map through the mode's entity filter, scans it for
// objectives and begins the first round.
func (g *Game) Start(ctx context.Context) {
	tracer := telemetry.Tracer("game")
	ctx, span := tracer.Start(ctx, "game.init")
	defer span.End()

	spawned := g.level.Spawn(ctx, g.ctrl.IsAllowedToSpawn)
	g.base.Map = g.level.Conditions()

	var mc rules.MapConditions
	g.ctrl.CheckMapConditions(&mc)
	g.ctrl.RestartRound(ctx)
	g.publish()

	span.SetAttributes(
		attribute.String("map", g.level.Name),
		attribute.Int("map.spawned", spawned),
		attribute.Int("map.blocked", len(g.level.Blocked)),
		attribute.Int("players", g.roster.Count()),
		attribute.Int("max_players", g.roster.MaxPlayers()),
		attribute.Bool("headless", g.cfg.Headless),
		attribute.Bool("objectives_cleared", mc == rules.MapConditions{}),
	)
}

// Run executes the main loop until ctx is cancelled, the operator quits or,
// headless, the configured number of ticks has run.
func (g *Game) Run(ctx context.Context) error {
	g.Start(ctx)
	if g.cfg.Headless {
		return g.runHeadless(ctx)
	}

	screen, err := ui.NewScreen()
	if err != nil {
		return err
	}
	g.screen = screen
	g.renderer = ui.NewRenderer(screen, g.palette)
	defer g.Close()

	events := make(chan tcell.Event)
	done := make(chan struct{})
	defer close(done)
	go forwardEvents(screen.PollEvent, events, done)

	ticker := time.NewTicker(g.cfg.Tick)
	defer ticker.Stop()

	for g.running {
		g.render()
		select {
		case <-ctx.Done():
			g.running = false
		case ev := <-events:
			g.handleEvent(ctx, ev)
		case <-ticker.C:
			g.Step(ctx)
		}
	}
	return nil
}

// forwardEvents feeds polled terminal events to the loop until the screen
// is finalized or done is closed.
func forwardEvents(poll func() tcell.Event, events chan<- tcell.Event, done <-chan struct{}) {
	for {
		ev := poll()
		if ev == nil {
			// Screen finalized.
			return
		}
		select {
		case events <- ev:
		case <-done:
			return
		}
	}
}

func (g *Game) runHeadless(ctx context.Context) error {
	ticker := time.NewTicker(g.cfg.Tick)
	defer ticker.Stop()

	for g.running {
		select {
		case <-ctx.Done():
			g.running = false
		case <-ticker.C:
			g.Step(ctx)
			if g.cfg.HeadlessTicks > 0 && g.ticks >= g.cfg.HeadlessTicks {
				g.running = false
			}
		}
	}
	snap := g.Snapshot()
	g.logger.Info("session finished",
		zap.Int("ticks", g.ticks),
		zap.Int("rounds", snap.Round),
		zap.String("phase", snap.Phase),
	)
	return nil
}

// Step advances the session by one tick: bots act, then the rules think.
// A countdown left disarmed by an empty roster is restarted once somebody
// is alive again.
func (g *Game) Step(ctx context.Context) {
	if g.state == StatePaused {
		return
	}
	now := g.clock.Advance(g.cfg.Tick)
	if g.autoplay {
		if results := g.sim.Step(ctx); len(results) > 0 {
			g.message = results[len(results)-1].Message()
		}
	}
	g.ctrl.Tick(ctx, now)

	st := g.ctrl.State()
	if st.Phase == rules.PhaseSelectionCountdown && !st.SelectionArmed && len(g.roster.Alive()) > 0 {
		g.logger.Info("restarting stalled countdown")
		g.ctrl.RestartRound(ctx)
	}

	g.ticks++
	g.publish()
}

// Ticks returns the number of steps taken.
func (g *Game) Ticks() int { return g.ticks }

// publish stores a fresh snapshot for readers on other goroutines.
func (g *Game) publish() {
	s := g.ctrl.Snapshot(g.clock.Now())
	g.snap.Store(&s)
}

// Snapshot returns the latest published round snapshot. Safe for concurrent use.
func (g *Game) Snapshot() rules.Snapshot {
	if s := g.snap.Load(); s != nil {
		return *s
	}
	return rules.Snapshot{}
}

// Recent returns the newest announcements. Safe for concurrent use.
func (g *Game) Recent(n int) []host.Entry {
	return g.feed.Recent(n)
}

// =============================================================================
// Operator commands
// =============================================================================

// Join seats a new player, alternating teams, and spawns it.
func (g *Game) Join() (*entity.Survivor, error) {
	team := rules.TeamCT
	if g.roster.Count()%2 == 1 {
		team = rules.TeamTerrorist
	}
	p, err := g.roster.Join("", team)
	if err != nil {
		return nil, err
	}
	g.ctrl.InitHUD(p)
	g.ctrl.PlayerSpawn(p)
	if g.ctrl.Phase() == rules.PhaseSelectionCountdown {
		p.SetNoTarget(true)
	}
	g.message = p.Name() + " joined"
	return p, nil
}

// Leave disconnects the highest seated player.
func (g *Game) Leave() error {
	connected := g.roster.Connected()
	if len(connected) == 0 {
		return host.ErrNoPlayer
	}
	p := connected[len(connected)-1]
	if err := g.roster.Leave(p.ID()); err != nil {
		return err
	}
	g.message = p.Name() + " left"
	return nil
}

// KillRandom kills a random living player.
func (g *Game) KillRandom() (*entity.Survivor, error) {
	alive := g.roster.Alive()
	if len(alive) == 0 {
		return nil, host.ErrNoPlayer
	}
	p, err := g.roster.Kill(alive[g.rng.Intn(len(alive))].ID())
	if err != nil {
		return nil, err
	}
	g.ctrl.PlayerKilled(p, nil)
	g.message = p.Name() + " died"
	return p, nil
}

// InfectRandom converts a random living human.
func (g *Game) InfectRandom() *entity.Survivor {
	var humans []*entity.Survivor
	for _, p := range g.roster.Alive() {
		if p.Faction() == rules.FactionHuman {
			humans = append(humans, p)
		}
	}
	if len(humans) == 0 {
		return nil
	}
	p := humans[g.rng.Intn(len(humans))]
	if !g.ctrl.InfectPlayer(p) {
		return nil
	}
	g.message = p.Name() + " was infected"
	return p
}

// RespawnDead revives every dead player through the spawn hook.
func (g *Game) RespawnDead() (int, error) {
	n := 0
	for _, p := range g.roster.Connected() {
		if p.IsAlive() {
			continue
		}
		if _, err := g.roster.Respawn(p.ID()); err != nil {
			return n, err
		}
		g.ctrl.PlayerSpawn(p)
		n++
	}
	g.message = fmt.Sprintf("%d respawned", n)
	return n, nil
}

// Restart forces a new round.
func (g *Game) Restart(ctx context.Context) {
	g.ctrl.RestartRound(ctx)
	g.message = "round restarted"
	g.publish()
}

// TogglePause freezes or resumes the clock.
func (g *Game) TogglePause() State {
	if g.state == StatePaused {
		g.state = StateRunning
	} else {
		g.state = StatePaused
	}
	return g.state
}

// ToggleAutoplay turns the bot skirmish on or off.
func (g *Game) ToggleAutoplay() bool {
	g.autoplay = !g.autoplay
	return g.autoplay
}

// =============================================================================
// Terminal
// =============================================================================

// handleEvent processes a single terminal event.
func (g *Game) handleEvent(ctx context.Context, ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		g.handleKeyEvent(ctx, ev)
	case *tcell.EventResize:
		g.screen.Sync()
	}
}

// handleKeyEvent processes keyboard input.
func (g *Game) handleKeyEvent(ctx context.Context, ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		g.running = false
		return
	case tcell.KeyRune:
	default:
		return
	}

	switch ev.Rune() {
	case 'q', 'Q':
		g.running = false
	case 'r':
		g.Restart(ctx)
	case 'j':
		if _, err := g.Join(); err != nil {
			g.message = err.Error()
		}
	case 'l':
		if err := g.Leave(); err != nil {
			g.message = err.Error()
		}
	case 'k':
		if _, err := g.KillRandom(); err != nil {
			g.message = err.Error()
		}
	case 'z':
		g.InfectRandom()
	case 's':
		if _, err := g.RespawnDead(); err != nil {
			g.message = err.Error()
		}
	case 'a':
		g.ToggleAutoplay()
	case 'p':
		g.TogglePause()
	}
	g.publish()
}

func (g *Game) render() {
	if g.renderer == nil {
		return
	}
	g.renderer.Render(ui.View{
		Title:    g.mode.Name,
		Snapshot: g.Snapshot(),
		TimeLeft: g.base.TimeLeft(g.clock.Now()),
		Feed:     g.feed.Recent(40),
		Message:  g.message,
		Paused:   g.state == StatePaused,
		Autoplay: g.autoplay,
	})
}

// Close cleans up game resources.
func (g *Game) Close() {
	if g.screen != nil {
		g.screen.Close()
		g.screen = nil
	}
}

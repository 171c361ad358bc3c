package game

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/google/uuid"

	"github.com/samdwyer/infection/internal/config"
	"github.com/samdwyer/infection/internal/entity"
	"github.com/samdwyer/infection/internal/gamedata"
	"github.com/samdwyer/infection/internal/host"
	"github.com/samdwyer/infection/internal/rules"
)

func testConfig(bots int) config.Config {
	cfg := config.Default()
	cfg.Seed = 7
	cfg.Bots = bots
	cfg.MaxPlayers = 8
	cfg.Headless = true
	return cfg
}

func newTestGame(t *testing.T, cfg config.Config) *Game {
	t.Helper()
	g, err := New(cfg, uuid.New(), nil)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return g
}

// stepUntil steps until cond holds, failing after max steps.
func stepUntil(t *testing.T, g *Game, max int, cond func() bool) {
	t.Helper()
	ctx := context.Background()
	for i := 0; i < max; i++ {
		if cond() {
			return
		}
		g.Step(ctx)
	}
	if !cond() {
		t.Fatalf("condition not reached after %d steps (phase %s)", max, g.ctrl.Phase())
	}
}

func infectedIn(g *Game) *entity.Survivor {
	for _, p := range g.roster.Alive() {
		if p.Faction() == rules.FactionInfected {
			return p
		}
	}
	return nil
}

func TestStateString(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateRunning, "running"},
		{StatePaused, "paused"},
		{State(9), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}

func TestNewSeatsBots(t *testing.T) {
	session := uuid.New()
	g, err := New(testConfig(4), session, nil)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	if g.roster.Count() != 4 {
		t.Fatalf("seated %d players, want 4", g.roster.Count())
	}
	wantTeams := []rules.Team{rules.TeamCT, rules.TeamTerrorist, rules.TeamCT, rules.TeamTerrorist}
	for i, p := range g.roster.Connected() {
		if p.Team() != wantTeams[i] {
			t.Errorf("player %d team = %s, want %s", p.ID(), p.Team(), wantTeams[i])
		}
		if len(p.Items()) != 2 {
			t.Errorf("player %d spawned with %v", p.ID(), p.Items())
		}
	}

	snap := g.Snapshot()
	if snap.Phase != rules.PhaseIntermission.String() || snap.Session != session.String() {
		t.Errorf("initial snapshot = %+v", snap)
	}
	if len(snap.Players) != 4 {
		t.Errorf("snapshot has %d players, want 4", len(snap.Players))
	}
}

func TestNewRejectsBadConfig(t *testing.T) {
	cfg := testConfig(20)
	if _, err := New(cfg, uuid.New(), nil); err == nil {
		t.Error("New() with more bots than slots should fail")
	}
}

func TestSessionPlaysThroughRounds(t *testing.T) {
	g := newTestGame(t, testConfig(6))
	g.Start(context.Background())

	if g.ctrl.Phase() != rules.PhaseSelectionCountdown {
		t.Fatalf("phase after Start = %s", g.ctrl.Phase())
	}

	stepUntil(t, g, 230, func() bool { return g.ctrl.Phase() == rules.PhaseActiveRound })
	if infectedIn(g) == nil {
		t.Fatal("no initial infected after selection")
	}

	// Either the infection spreads or the round timer runs out; then the
	// scheduled termination starts the next round.
	stepUntil(t, g, 2000, func() bool { return g.ctrl.State().Rounds == 2 })
	if g.ctrl.Phase() != rules.PhaseSelectionCountdown {
		t.Errorf("phase after termination = %s", g.ctrl.Phase())
	}
	for _, p := range g.roster.Connected() {
		if p.Faction() != rules.FactionHuman {
			t.Errorf("player %d still %s after restart", p.ID(), p.Faction())
		}
	}
	if _, ok := g.feed.Latest(host.KindBroadcast); !ok {
		t.Error("no win broadcast recorded")
	}
}

func TestStartClearsMapObjectives(t *testing.T) {
	g := newTestGame(t, testConfig(2))
	g.Start(context.Background())

	if g.Level().Has("func_bomb_target") || g.Level().Has("weapon_c4") {
		t.Error("objective entities spawned")
	}
	if !g.Level().Has("info_player_start") {
		t.Error("spawn points missing")
	}
	if g.base.Map != (rules.MapConditions{BuyZone: true}) {
		t.Errorf("host map conditions = %+v", g.base.Map)
	}
	var mc rules.MapConditions
	g.ctrl.CheckMapConditions(&mc)
	if mc != (rules.MapConditions{}) {
		t.Errorf("mode map conditions = %+v, want none", mc)
	}
}

func TestPauseFreezesClock(t *testing.T) {
	g := newTestGame(t, testConfig(2))
	g.Start(context.Background())

	g.Step(context.Background())
	before := g.clock.Now()

	if g.TogglePause() != StatePaused {
		t.Fatal("TogglePause() did not pause")
	}
	for i := 0; i < 10; i++ {
		g.Step(context.Background())
	}
	if g.clock.Now() != before || g.Ticks() != 1 {
		t.Errorf("paused session advanced: now=%v ticks=%d", g.clock.Now(), g.Ticks())
	}

	g.TogglePause()
	g.Step(context.Background())
	if g.clock.Now() <= before {
		t.Error("resumed session did not advance")
	}
}

func TestStalledCountdownRestartsWhenPlayersReturn(t *testing.T) {
	g := newTestGame(t, testConfig(0))
	g.Start(context.Background())

	stepUntil(t, g, 300, func() bool { return !g.ctrl.State().SelectionArmed })
	if g.ctrl.Phase() != rules.PhaseSelectionCountdown {
		t.Fatalf("empty roster left phase %s", g.ctrl.Phase())
	}

	if _, err := g.Join(); err != nil {
		t.Fatalf("Join() error: %v", err)
	}
	g.Step(context.Background())

	st := g.ctrl.State()
	if !st.SelectionArmed || st.Rounds != 2 {
		t.Errorf("after join: armed=%v rounds=%d, want armed round 2", st.SelectionArmed, st.Rounds)
	}
}

func TestDefaultTickAnnouncesWholeCountdown(t *testing.T) {
	cfg := testConfig(2)
	cfg.Tick = 100 * time.Millisecond
	g := newTestGame(t, cfg)
	g.Start(context.Background())
	stepUntil(t, g, 300, func() bool { return g.ctrl.Phase() == rules.PhaseActiveRound })

	target := g.roster.Connected()[0].ID()
	var seconds []int
	var nine bool
	for _, e := range g.feed.Recent(0) {
		if e.Target != target {
			continue
		}
		if e.Kind == host.KindSound && e.Text == "csnc/nine.wav" {
			nine = true
		}
		var s int
		if e.Kind == host.KindCenter {
			if _, err := fmt.Sscanf(e.Text, "Time Remaining for Zombie Selection: %d Sec", &s); err == nil {
				seconds = append(seconds, s)
			}
		}
	}
	if len(seconds) != 20 || seconds[0] != 20 || seconds[19] != 1 {
		t.Fatalf("announced seconds = %v, want 20..1", seconds)
	}
	for i, s := range seconds {
		if s != 20-i {
			t.Errorf("announcement %d = %d, want %d", i, s, 20-i)
		}
	}
	if !nine {
		t.Error("nine cue never played")
	}
}

func TestCommands(t *testing.T) {
	cfg := testConfig(3)
	cfg.MaxPlayers = 4
	g := newTestGame(t, cfg)
	g.ToggleAutoplay()
	g.Start(context.Background())
	stepUntil(t, g, 230, func() bool { return g.ctrl.Phase() == rules.PhaseActiveRound })

	if p := g.InfectRandom(); p == nil || p.Faction() != rules.FactionInfected {
		t.Errorf("InfectRandom() = %v", p)
	}

	dead, err := g.KillRandom()
	if err != nil || dead == nil || dead.IsAlive() {
		t.Fatalf("KillRandom() = %v, %v", dead, err)
	}
	if n, err := g.RespawnDead(); err != nil || n != 1 || !dead.IsAlive() {
		t.Errorf("RespawnDead() = %d, %v, alive=%v", n, err, dead.IsAlive())
	}
	if dead.Faction() == rules.FactionInfected && dead.Health() != 3000 {
		t.Errorf("respawned infected health = %v", dead.Health())
	}

	if _, err := g.Join(); err != nil {
		t.Fatalf("Join() error: %v", err)
	}
	if _, err := g.Join(); !errors.Is(err, host.ErrRosterFull) {
		t.Errorf("Join() on full roster error = %v", err)
	}
	if err := g.Leave(); err != nil || g.roster.Count() != 3 {
		t.Errorf("Leave() error = %v, count = %d", err, g.roster.Count())
	}

	g.Restart(context.Background())
	if g.Snapshot().Phase != rules.PhaseSelectionCountdown.String() {
		t.Errorf("snapshot after Restart = %s", g.Snapshot().Phase)
	}
}

func TestLeaveEmptyRoster(t *testing.T) {
	g := newTestGame(t, testConfig(0))
	if err := g.Leave(); !errors.Is(err, host.ErrNoPlayer) {
		t.Errorf("Leave() error = %v, want ErrNoPlayer", err)
	}
	if p, err := g.KillRandom(); p != nil || !errors.Is(err, host.ErrNoPlayer) {
		t.Errorf("KillRandom() = %v, %v, want ErrNoPlayer", p, err)
	}
	if g.InfectRandom() != nil {
		t.Error("InfectRandom() on an empty roster should do nothing")
	}
	if n, err := g.RespawnDead(); n != 0 || err != nil {
		t.Errorf("RespawnDead() = %d, %v", n, err)
	}
}

func TestForwardEventsStopsWhenLoopEnds(t *testing.T) {
	poll := func() tcell.Event { return tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModNone) }
	events := make(chan tcell.Event)
	done := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		forwardEvents(poll, events, done)
		close(finished)
	}()

	<-events
	close(done)

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("forwarder still blocked after the loop ended")
	}
}

func TestForwardEventsStopsOnFinalizedScreen(t *testing.T) {
	finished := make(chan struct{})
	go func() {
		forwardEvents(func() tcell.Event { return nil }, make(chan tcell.Event), make(chan struct{}))
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("forwarder kept polling a finalized screen")
	}
}

func TestRunHeadlessStopsAfterTicks(t *testing.T) {
	cfg := testConfig(2)
	cfg.Tick = time.Millisecond
	cfg.HeadlessTicks = 5
	g := newTestGame(t, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := g.Run(ctx); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if g.Ticks() != 5 {
		t.Errorf("Ticks() = %d, want 5", g.Ticks())
	}
}

func TestRunHeadlessStopsOnCancel(t *testing.T) {
	cfg := testConfig(2)
	cfg.Tick = time.Millisecond
	g := newTestGame(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := g.Run(ctx); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
}

func TestModeFileOverride(t *testing.T) {
	mode := gamedata.MustLoadMode()
	mode.Health.Infected = 5000
	raw, err := json.Marshal(mode)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	path := filepath.Join(t.TempDir(), "mode.json")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}

	cfg := testConfig(2)
	cfg.ModeFile = path
	g := newTestGame(t, cfg)
	g.ToggleAutoplay()
	g.Start(context.Background())
	stepUntil(t, g, 230, func() bool { return g.ctrl.Phase() == rules.PhaseActiveRound })

	if p := infectedIn(g); p == nil || p.Health() != 5000 {
		t.Errorf("infected = %v, want 5000 health", p)
	}

	cfg.ModeFile = filepath.Join(t.TempDir(), "missing.json")
	if _, err := New(cfg, uuid.New(), nil); err == nil {
		t.Error("New() with a missing mode file should fail")
	}
}

package rules

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountdownSecond(t *testing.T) {
	tests := []struct {
		remaining float64
		want      int
	}{
		{22, 22},
		{20, 20},
		{19.9, 20},
		{10.01, 11},
		{10, 10},
		{0.3, 1},
		{0, 0},
		{-1.5, 0},
	}
	for _, tt := range tests {
		if got := countdownSecond(tt.remaining); got != tt.want {
			t.Errorf("countdownSecond(%v) = %d, want %d", tt.remaining, got, tt.want)
		}
	}
}

// countdownTexts returns the seconds announced to one player, in order.
func countdownTexts(n *fakeNotifier, id int) []int {
	var seconds []int
	for _, nt := range n.notes {
		if nt.kind != "center" || nt.target != id {
			continue
		}
		var s int
		if _, err := fmt.Sscanf(nt.text, "Time Remaining for Zombie Selection: %d Sec", &s); err == nil {
			seconds = append(seconds, s)
		}
	}
	return seconds
}

func TestCountdownAnnouncesEachSecondOnce(t *testing.T) {
	a := newFakePlayer(1, TeamCT)
	b := newFakePlayer(2, TeamCT)
	h := newHarness(t, a, b)
	h.c.RestartRound(t.Context())

	for now := 0.25; now <= 22; now += 0.25 {
		h.tickTo(now)
	}
	require.Equal(t, PhaseActiveRound, h.c.Phase())

	want := make([]int, 0, 20)
	for s := 20; s >= 1; s-- {
		want = append(want, s)
	}
	assert.Equal(t, want, countdownTexts(h.notify, 1))
	assert.Equal(t, want, countdownTexts(h.notify, 2))
}

func TestCountdownAccumulatedClockAnnouncesEverySecond(t *testing.T) {
	a := newFakePlayer(1, TeamCT)
	h := newHarness(t, a)
	h.c.RestartRound(t.Context())

	// Summing 0.1 drifts below the exact check times.
	now := 0.0
	for i := 0; i < 230; i++ {
		now += 0.1
		h.tickTo(now)
	}
	require.Equal(t, PhaseActiveRound, h.c.Phase())

	want := make([]int, 0, 20)
	for s := 20; s >= 1; s-- {
		want = append(want, s)
	}
	assert.Equal(t, want, countdownTexts(h.notify, 1))
	var nines int
	for _, nt := range h.notify.notes {
		if nt.kind == "sound" && nt.text == "csnc/nine.wav" {
			nines++
		}
	}
	assert.Equal(t, 1, nines, "nine cue")
}

func TestCountdownVoiceCues(t *testing.T) {
	a := newFakePlayer(1, TeamCT)
	h := newHarness(t, a)
	h.c.RestartRound(t.Context())

	for now := 0.25; now < 22; now += 0.25 {
		h.tickTo(now)
	}

	var sounds []string
	for _, nt := range h.notify.notes {
		if nt.kind == "sound" {
			sounds = append(sounds, nt.text)
		}
	}
	assert.Equal(t, []string{
		"csnc/20secremain.wav",
		"csnc/ten.wav", "csnc/nine.wav", "csnc/eight.wav", "csnc/seven.wav", "csnc/six.wav",
		"csnc/five.wav", "csnc/four.wav", "csnc/three.wav", "csnc/two.wav", "csnc/one.wav",
	}, sounds)
}

func TestCountdownSecondWithoutCueIsTextOnly(t *testing.T) {
	a := newFakePlayer(1, TeamCT)
	h := newHarness(t, a)
	h.c.RestartRound(t.Context())

	// 14.5 and 13.5 seconds remain: announced as 15 and 14, neither has a cue.
	h.tickTo(7.5)
	h.tickTo(7.5)
	h.tickTo(8.5)

	assert.Equal(t, 0, h.notify.count("sound"))
	assert.Equal(t, []int{15, 14}, countdownTexts(h.notify, 1))
	assert.Equal(t, 1, h.notify.count("music"))
}

func TestCountdownMusicOncePerRestart(t *testing.T) {
	a := newFakePlayer(1, TeamCT)
	b := newFakePlayer(2, TeamCT)
	h := newHarness(t, a, b)

	for round := 0; round < 2; round++ {
		h.notify.reset()
		h.runCountdown()
		assert.Equal(t, 2, h.notify.count("music"), "round %d", round)
		assert.True(t, h.c.State().MusicPlayed)
	}
}

func TestCountdownStalledClockDoesNotRepeat(t *testing.T) {
	a := newFakePlayer(1, TeamCT)
	h := newHarness(t, a)
	h.c.RestartRound(t.Context())

	h.tickTo(12.5)
	first := countdownTexts(h.notify, 1)
	require.Equal(t, []int{10}, first)

	for i := 0; i < 5; i++ {
		h.tickTo(12.5)
	}
	h.tickTo(13.5)
	// Going back in time never re-announces a higher second.
	h.tickTo(12.6)
	h.tickTo(13.6)

	assert.Equal(t, []int{10, 9}, countdownTexts(h.notify, 1))
}

func TestCountdownSilentBeforeFinalWindow(t *testing.T) {
	a := newFakePlayer(1, TeamCT)
	h := newHarness(t, a)
	h.c.RestartRound(t.Context())

	h.tickTo(0.5)
	h.tickTo(1.5)

	assert.Empty(t, countdownTexts(h.notify, 1))
	assert.Equal(t, 1, h.notify.count("music"))
	assert.Equal(t, noSecond, h.c.State().LastAnnouncedSecond)
}

func TestCountdownDisarmedAfterSelection(t *testing.T) {
	a := newFakePlayer(1, TeamCT)
	b := newFakePlayer(2, TeamCT)
	h := newHarness(t, a, b)
	h.runCountdown()
	h.notify.reset()

	h.tickTo(h.clock.now + 1)
	h.tickTo(h.clock.now + 1)

	assert.Empty(t, countdownTexts(h.notify, 1))
	assert.False(t, h.c.State().SelectionArmed)
}

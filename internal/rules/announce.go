package rules

import (
	"fmt"
	"math"
)

// checkSlack absorbs the drift of a session clock built from repeated float
// additions, so a check due exactly on the interval is not pushed to the
// next tick.
const checkSlack = 1e-6

// countdownSecond rounds the remaining countdown up to a whole second.
func countdownSecond(remaining float64) int {
	s := int(math.Ceil(remaining))
	if s < 0 {
		return 0
	}
	return s
}

// announceCountdown plays the countdown music once, then announces each whole
// second of the final window at most once and in decreasing order. Checks are
// spaced by the configured interval rather than run every tick.
func (c *Controller) announceCountdown(now, remaining float64) {
	if !c.state.MusicPlayed {
		c.state.MusicPlayed = true
		forEachPlayer(c.roster, func(p Player) {
			c.notify.PlayMusic(p, c.mode.Countdown.Music)
		})
	}

	if c.state.NextAnnounceCheck > 0 && now+checkSlack < c.state.NextAnnounceCheck {
		return
	}
	c.state.NextAnnounceCheck = now + c.mode.Countdown.Interval

	if remaining > c.mode.Countdown.LastSeconds {
		return
	}
	second := countdownSecond(remaining)
	if c.state.LastAnnouncedSecond != noSecond && second >= c.state.LastAnnouncedSecond {
		return
	}
	c.state.LastAnnouncedSecond = second

	voice, hasVoice := c.cues.VoiceFor(second)
	text := fmt.Sprintf(c.mode.Text.Countdown, second)
	forEachPlayer(c.roster, func(p Player) {
		if hasVoice {
			c.notify.PlaySound(p, voice)
		}
		c.notify.CenterPrint(p, text)
	})
}

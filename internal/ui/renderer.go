package ui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/samdwyer/infection/internal/gamedata"
	"github.com/samdwyer/infection/internal/host"
	"github.com/samdwyer/infection/internal/rules"
)

// View is everything the dashboard shows for one frame.
type View struct {
	Title    string
	Snapshot rules.Snapshot
	TimeLeft float64 // Round timer; 0 hides it
	Feed     []host.Entry
	Message  string // Last skirmish or command result
	Paused   bool
	Autoplay bool
}

// Renderer handles drawing the session dashboard to the screen.
type Renderer struct {
	screen  *Screen
	palette gamedata.Palette
}

// NewRenderer creates a new renderer for the given screen and faction colours.
func NewRenderer(screen *Screen, palette gamedata.Palette) *Renderer {
	return &Renderer{screen: screen, palette: palette}
}

const helpLine = "[r]estart [j]oin [l]eave [k]ill [z]infect [s]pawn [a]uto [p]ause [q]uit"

// Render draws the header, player table, announcement feed and key help.
func (r *Renderer) Render(v View) {
	r.screen.Clear()
	_, height := r.screen.Size()

	bold := tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
	plain := tcell.StyleDefault.Foreground(tcell.ColorWhite)
	dim := tcell.StyleDefault.Foreground(tcell.ColorGray)

	s := v.Snapshot
	x := r.screen.DrawText(0, 0, v.Title, bold)
	r.screen.DrawText(x+2, 0, fmt.Sprintf("round %d  %s", s.Round, s.Phase), r.phaseStyle(s.Phase))

	r.screen.DrawText(0, 1, statusLine(v), plain)
	flags := ""
	if v.Paused {
		flags += "PAUSED "
	}
	if v.Autoplay {
		flags += "AUTO"
	}
	r.screen.DrawText(0, 2, flags, tcell.StyleDefault.Foreground(tcell.ColorYellow))

	y := 4
	r.screen.DrawText(0, y, fmt.Sprintf("%-4s %-12s %-9s %-11s %6s  %s", "SLOT", "NAME", "FACTION", "TEAM", "HP", "ITEM"), dim)
	y++
	for _, p := range s.Players {
		if y >= height-8 {
			break
		}
		line := fmt.Sprintf("%-4d %-12s %-9s %-11s %6.0f  %s", p.ID, p.Name, p.Faction, p.Team, p.Health, p.Item)
		r.screen.DrawText(0, y, line, r.playerStyle(p))
		y++
	}

	if v.Message != "" {
		r.screen.DrawText(0, height-8, v.Message, plain)
	}
	feedY := height - 7
	for _, text := range announcements(v.Feed, 5) {
		r.screen.DrawText(2, feedY, text, bold)
		feedY++
	}
	r.RenderMessage(helpLine, height-1)

	r.screen.Show()
}

func statusLine(v View) string {
	s := v.Snapshot
	line := fmt.Sprintf("humans %d  infected %d", s.AliveHumans, s.AliveInfected)
	switch {
	case s.Countdown > 0:
		line += fmt.Sprintf("  selection in %.1fs", s.Countdown)
	case s.Phase == rules.PhaseActiveRound.String():
		line += fmt.Sprintf("  elapsed %.0fs", s.Elapsed)
		if v.TimeLeft > 0 {
			line += fmt.Sprintf("  left %.0fs", v.TimeLeft)
		}
	}
	if s.Verdict != rules.VerdictNone.String() {
		line += "  " + s.Verdict
	}
	return line
}

// announcements returns the newest distinct center texts, oldest first.
// Per-player copies of the same message collapse into one line.
func announcements(feed []host.Entry, limit int) []string {
	var out []string
	for i := len(feed) - 1; i >= 0 && len(out) < limit; i-- {
		e := feed[i]
		if e.Kind != host.KindBroadcast && e.Kind != host.KindCenter {
			continue
		}
		if len(out) > 0 && out[len(out)-1] == e.Text {
			continue
		}
		out = append(out, e.Text)
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// playerStyle colours a row by faction; the dead are greyed out.
func (r *Renderer) playerStyle(p rules.PlayerView) tcell.Style {
	switch {
	case !p.Alive:
		return tcell.StyleDefault.Foreground(r.palette.Dead)
	case p.Faction == rules.FactionInfected.String():
		return tcell.StyleDefault.Foreground(r.palette.Infected).Bold(true)
	default:
		return tcell.StyleDefault.Foreground(r.palette.Human)
	}
}

// phaseStyle returns the header style for a phase.
func (r *Renderer) phaseStyle(phase string) tcell.Style {
	switch phase {
	case rules.PhaseSelectionCountdown.String():
		return tcell.StyleDefault.Foreground(tcell.ColorYellow)
	case rules.PhaseActiveRound.String():
		return tcell.StyleDefault.Foreground(r.palette.Infected)
	case rules.PhaseRoundEnd.String():
		return tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	default:
		return tcell.StyleDefault.Foreground(tcell.ColorGray)
	}
}

// RenderMessage displays a message at the given row.
func (r *Renderer) RenderMessage(msg string, y int) {
	style := tcell.StyleDefault.Foreground(tcell.ColorWhite)
	r.screen.DrawText(0, y, msg, style)
}

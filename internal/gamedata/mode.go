package gamedata

import (
	"errors"
	"fmt"
	"strings"
)

// ModeDef defines every tunable of the infection game mode, loaded from mode.json.
type ModeDef struct {
	Name                 string       `json:"name"`
	Countdown            CountdownDef `json:"countdown"`
	Health               HealthDef    `json:"health"`
	RoundEndDelay        float64      `json:"roundEndDelay"` // Seconds between a win and the next restart
	Loadout              LoadoutDef   `json:"loadout"`
	InfectedModel        ModelDef     `json:"infectedModel"`
	Sounds               SoundDef     `json:"sounds"`
	Text                 TextDef      `json:"text"`
	BlockedEntityClasses []string     `json:"blockedEntityClasses"`
	Colors               ColorDef     `json:"colors"`
}

// CountdownDef describes the selection countdown that precedes each round.
type CountdownDef struct {
	Duration    float64       `json:"duration"`    // Seconds from restart to infected selection
	Interval    float64       `json:"interval"`    // Minimum spacing between announcement checks
	LastSeconds float64       `json:"lastSeconds"` // Announcements only fire inside this window
	Music       string        `json:"music"`       // Played once per countdown
	VoiceCues   []VoiceCueDef `json:"voiceCues"`
}

// VoiceCueDef binds a countdown second to a spoken sound.
type VoiceCueDef struct {
	Second int    `json:"second"`
	Sound  string `json:"sound"`
}

// HealthDef holds the health value of each faction.
type HealthDef struct {
	Human    float64 `json:"human"`
	Infected float64 `json:"infected"`
}

// LoadoutDef names the items handed out by the mode.
type LoadoutDef struct {
	Melee     string `json:"melee"`     // The only item the infected may carry
	CTSidearm string `json:"ctSidearm"` // Sidearm for the counter-terrorist team
	TSidearm  string `json:"tSidearm"`  // Sidearm for the terrorist team
}

// ModelDef is a player model override.
type ModelDef struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// SoundDef lists the sounds the mode plays outside the countdown.
type SoundDef struct {
	Infection   []string `json:"infection"` // One is picked at random per infection
	HumanWin    string   `json:"humanWin"`
	InfectedWin string   `json:"infectedWin"`
}

// TextDef holds the centered messages the mode prints.
type TextDef struct {
	Countdown   string `json:"countdown"` // Printf format with a single %d
	HumanWin    string `json:"humanWin"`
	InfectedWin string `json:"infectedWin"`
}

// ColorDef holds display colors per faction for the dashboard.
type ColorDef struct {
	Human    string `json:"human"`
	Infected string `json:"infected"`
	Dead     string `json:"dead"`
}

// Validate reports the first problem that would make the mode unplayable.
func (m *ModeDef) Validate() error {
	switch {
	case m.Countdown.Duration <= 0:
		return errors.New("countdown duration must be positive")
	case m.Countdown.Interval <= 0:
		return errors.New("countdown interval must be positive")
	case m.Countdown.LastSeconds < 0 || m.Countdown.LastSeconds > m.Countdown.Duration:
		return fmt.Errorf("countdown lastSeconds %.1f outside [0, %.1f]", m.Countdown.LastSeconds, m.Countdown.Duration)
	case m.Health.Human <= 0 || m.Health.Infected <= 0:
		return errors.New("faction health must be positive")
	case m.RoundEndDelay < 0:
		return errors.New("roundEndDelay must not be negative")
	case m.Loadout.Melee == "":
		return errors.New("loadout needs a melee item")
	case len(m.Sounds.Infection) == 0:
		return errors.New("at least one infection sound is required")
	case strings.Count(m.Text.Countdown, "%d") != 1:
		return fmt.Errorf("countdown text %q needs exactly one %%d", m.Text.Countdown)
	}

	seen := make(map[int]bool, len(m.Countdown.VoiceCues))
	for _, cue := range m.Countdown.VoiceCues {
		if cue.Second <= 0 {
			return fmt.Errorf("voice cue %q has non-positive second %d", cue.Sound, cue.Second)
		}
		if seen[cue.Second] {
			return fmt.Errorf("duplicate voice cue for second %d", cue.Second)
		}
		seen[cue.Second] = true
	}
	return nil
}

// LoadMode loads and validates the embedded mode.json.
func LoadMode() (*ModeDef, error) {
	mode, err := Load[ModeDef]("mode.json")
	if err != nil {
		return nil, err
	}
	if err := mode.Validate(); err != nil {
		return nil, fmt.Errorf("invalid mode.json: %w", err)
	}
	return &mode, nil
}

// ParseMode decodes and validates a mode definition from raw JSON.
func ParseMode(content []byte) (*ModeDef, error) {
	mode, err := Parse[ModeDef](content)
	if err != nil {
		return nil, err
	}
	if err := mode.Validate(); err != nil {
		return nil, fmt.Errorf("invalid mode definition: %w", err)
	}
	return &mode, nil
}

// MustLoadMode loads the embedded mode, panicking on error.
func MustLoadMode() *ModeDef {
	mode, err := LoadMode()
	if err != nil {
		panic(err)
	}
	return mode
}

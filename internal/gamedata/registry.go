package gamedata

// CueRegistry maps countdown seconds to voice cues.
// Seconds without a cue are announced as text only.
type CueRegistry struct {
	cues map[int]string
	all  []VoiceCueDef
}

// NewCueRegistry creates a registry from loaded voice cue definitions.
func NewCueRegistry(cues []VoiceCueDef) *CueRegistry {
	registry := &CueRegistry{
		cues: make(map[int]string, len(cues)),
		all:  cues,
	}
	for _, cue := range cues {
		if cue.Sound == "" {
			continue
		}
		registry.cues[cue.Second] = cue.Sound
	}
	return registry
}

// VoiceFor returns the cue for a countdown second, if one is defined.
func (r *CueRegistry) VoiceFor(second int) (string, bool) {
	sound, ok := r.cues[second]
	return sound, ok
}

// All returns all voice cue definitions.
func (r *CueRegistry) All() []VoiceCueDef {
	return r.all
}

// Count returns the number of seconds that have a voice cue.
func (r *CueRegistry) Count() int {
	return len(r.cues)
}

// =============================================================================
// Entity class filter
// =============================================================================

// ClassFilter answers whether a map entity class is removed by the mode.
type ClassFilter struct {
	blocked map[string]bool
}

// NewClassFilter builds a filter from blocked class names.
func NewClassFilter(classes []string) *ClassFilter {
	f := &ClassFilter{blocked: make(map[string]bool, len(classes))}
	for _, c := range classes {
		f.blocked[c] = true
	}
	return f
}

// Blocked reports whether entities of the class must not spawn.
// The empty class name is never blocked.
func (f *ClassFilter) Blocked(class string) bool {
	if class == "" {
		return false
	}
	return f.blocked[class]
}

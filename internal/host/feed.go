package host

import (
	"sync"

	"go.uber.org/zap"

	"github.com/samdwyer/infection/internal/rules"
)

// EntryKind tells how an announcement reached its audience.
type EntryKind int

const (
	KindBroadcast EntryKind = iota // Center text to everyone
	KindCenter                     // Center text to one player
	KindSound                      // Client-side sound
	KindMusic                      // Client-side music track
	KindEmit                       // World sound emitted from a player
)

// String returns the kind name.
func (k EntryKind) String() string {
	switch k {
	case KindBroadcast:
		return "broadcast"
	case KindCenter:
		return "center"
	case KindSound:
		return "sound"
	case KindMusic:
		return "music"
	case KindEmit:
		return "emit"
	default:
		return "unknown"
	}
}

// MarshalText encodes the kind by name.
func (k EntryKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Entry is one delivered announcement.
type Entry struct {
	Time   float64   `json:"time"`
	Kind   EntryKind `json:"kind"`
	Target int       `json:"target,omitempty"` // Slot; 0 for broadcasts
	Text   string    `json:"text"`
}

// Feed records everything the rules announce to players in a bounded ring.
// Once full, the oldest entries are overwritten.
type Feed struct {
	clock  *Clock
	logger *zap.Logger

	mu      sync.Mutex
	entries []Entry
	next    int
	full    bool
	total   int
}

// DefaultFeedSize is the number of entries a feed keeps.
const DefaultFeedSize = 256

// NewFeed creates a feed holding at most size entries.
func NewFeed(size int, clock *Clock, logger *zap.Logger) *Feed {
	if size < 1 {
		size = DefaultFeedSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Feed{
		clock:   clock,
		logger:  logger,
		entries: make([]Entry, size),
	}
}

func (f *Feed) record(kind EntryKind, p rules.Player, text string) {
	e := Entry{Kind: kind, Text: text}
	if f.clock != nil {
		e.Time = f.clock.Now()
	}
	if p != nil {
		e.Target = p.ID()
	}

	f.mu.Lock()
	f.entries[f.next] = e
	f.next = (f.next + 1) % len(f.entries)
	if f.next == 0 {
		f.full = true
	}
	f.total++
	f.mu.Unlock()

	f.logger.Debug("announce",
		zap.Stringer("kind", kind),
		zap.Int("target", e.Target),
		zap.String("text", text),
	)
}

// CenterPrintAll shows a message to every player.
func (f *Feed) CenterPrintAll(msg string) { f.record(KindBroadcast, nil, msg) }

// CenterPrint shows a message to one player.
func (f *Feed) CenterPrint(p rules.Player, msg string) { f.record(KindCenter, p, msg) }

// PlaySound plays a client-side sound for one player.
func (f *Feed) PlaySound(p rules.Player, sound string) { f.record(KindSound, p, sound) }

// PlayMusic starts a music track for one player.
func (f *Feed) PlayMusic(p rules.Player, track string) { f.record(KindMusic, p, track) }

// EmitSound plays a world sound from a player's position.
func (f *Feed) EmitSound(p rules.Player, sound string) { f.record(KindEmit, p, sound) }

// Recent returns up to n of the newest entries, oldest first.
func (f *Feed) Recent(n int) []Entry {
	f.mu.Lock()
	defer f.mu.Unlock()

	size := f.next
	if f.full {
		size = len(f.entries)
	}
	if n <= 0 || n > size {
		n = size
	}

	out := make([]Entry, 0, n)
	start := f.next - n
	if start < 0 {
		start += len(f.entries)
	}
	for i := 0; i < n; i++ {
		out = append(out, f.entries[(start+i)%len(f.entries)])
	}
	return out
}

// Latest returns the newest entry of a kind, if any is still held.
func (f *Feed) Latest(kind EntryKind) (Entry, bool) {
	entries := f.Recent(0)
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].Kind == kind {
			return entries[i], true
		}
	}
	return Entry{}, false
}

// Total returns how many entries were ever recorded.
func (f *Feed) Total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.total
}

var _ rules.Notifier = (*Feed)(nil)

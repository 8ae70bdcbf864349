package tracker

import (
	"log"
	"sort"
	"sync"
	"time"

	"valobet/internal/valorant"
	"valobet/internal/wager"
)

// Registration is a tracked player's Riot identity, read from the external
// registration store.
type Registration struct {
	Name   string
	Tag    string
	Region string
}

// RegistrationStore maps (guild, user) to a Riot identity.
type RegistrationStore interface {
	Get(guildID, userID string) (Registration, bool)
}

// StatsProvider returns a player's most recent match, or nil when the API
// has no data yet.
type StatsProvider interface {
	LastMatch(name, tag, region string) (*valorant.Match, error)
}

// Sink receives finished announcements and settlement results. Delivery
// errors are logged here and never fed back into the tracker.
type Sink interface {
	AnnounceMatch(a *Announcement) error
	AnnounceSettlement(guildID string, res *wager.Result) error
}

// Session is the open interval between a tracked player starting and
// finishing a match. One per (guild, player).
type Session struct {
	GuildID     string
	UserID      string
	LastMatchID string
	StartedAt   time.Time
	LocationID  string // voice channel hint, may be empty
}

// Announcement is one flushed group: every tracked player that finished the
// same match, plus the match-level fields.
type Announcement struct {
	GuildID   string
	MatchID   string
	Map       string
	Mode      string
	RedScore  int
	BlueScore int
	Players   []PlayerResult
}

// PlayerResult is one member's resolved stats within an announcement.
type PlayerResult struct {
	UserID    string
	RiotName  string
	RiotTag   string
	Team      string
	Won       bool
	Kills     int
	Deaths    int
	Assists   int
	Character string
}

// Options configures a Tracker. Zero durations fall back to safe defaults.
type Options struct {
	PollInterval time.Duration
	GroupWait    time.Duration
	BetWindow    time.Duration
	AllowedModes []string
}

// Tracker owns the active-session map, the pending-announcement map and the
// round-robin poll cursor. A single bookkeeping mutex guards all of them,
// and is never held across a stats-provider or registration lookup.
type Tracker struct {
	stats  StatsProvider
	regs   RegistrationStore
	wagers *wager.Manager
	sink   Sink

	pollInterval time.Duration
	groupWait    time.Duration
	betWindow    time.Duration
	allowedModes []string

	mu       sync.Mutex
	sessions map[string]*Session
	pending  map[string]*pendingGroup
	cursor   int

	ticker *time.Ticker
	stop   chan bool
}

func New(stats StatsProvider, regs RegistrationStore, wagers *wager.Manager, sink Sink, opts Options) *Tracker {
	if opts.PollInterval <= 0 {
		opts.PollInterval = 90 * time.Second
	}
	if opts.GroupWait <= 0 {
		opts.GroupWait = 30 * time.Second
	}
	if opts.BetWindow <= 0 {
		opts.BetWindow = 5 * time.Minute
	}
	return &Tracker{
		stats:        stats,
		regs:         regs,
		wagers:       wagers,
		sink:         sink,
		pollInterval: opts.PollInterval,
		groupWait:    opts.GroupWait,
		betWindow:    opts.BetWindow,
		allowedModes: opts.AllowedModes,
		sessions:     make(map[string]*Session),
		pending:      make(map[string]*pendingGroup),
	}
}

// Start begins the poll loop.
func (t *Tracker) Start() {
	t.ticker = time.NewTicker(t.pollInterval)
	t.stop = make(chan bool)

	go func() {
		for {
			select {
			case <-t.ticker.C:
				t.pollTick()
			case <-t.stop:
				return
			}
		}
	}()
	log.Printf("[TRACKER] Started (poll every %s, group wait %s, bet window %s)",
		t.pollInterval, t.groupWait, t.betWindow)
}

// Stop halts the poll loop and cancels pending debounce timers.
func (t *Tracker) Stop() {
	if t.ticker != nil {
		t.ticker.Stop()
		close(t.stop)
	}
	t.mu.Lock()
	for key, g := range t.pending {
		g.timer.cancel()
		delete(t.pending, key)
	}
	t.mu.Unlock()
}

func sessionKey(guildID, userID string) string {
	return guildID + ":" + userID
}

// StartSession opens a session for a registered player and its betting pool.
// The baseline match id is fetched once; on failure the baseline stays
// unknown and the first match the poller observes counts as new.
func (t *Tracker) StartSession(guildID, userID, locationID string) {
	reg, ok := t.regs.Get(guildID, userID)
	if !ok {
		return
	}

	key := sessionKey(guildID, userID)
	t.mu.Lock()
	_, exists := t.sessions[key]
	t.mu.Unlock()
	if exists {
		return
	}

	baseline := ""
	match, err := t.stats.LastMatch(reg.Name, reg.Tag, reg.Region)
	if err != nil {
		log.Printf("[SESSION] Baseline fetch failed for %s#%s: %v", reg.Name, reg.Tag, err)
	} else if match != nil {
		baseline = match.Metadata.MatchID
	}

	t.mu.Lock()
	if _, exists := t.sessions[key]; exists {
		t.mu.Unlock()
		return
	}
	t.sessions[key] = &Session{
		GuildID:     guildID,
		UserID:      userID,
		LastMatchID: baseline,
		StartedAt:   time.Now(),
		LocationID:  locationID,
	}
	t.mu.Unlock()

	t.wagers.Open(guildID, userID, t.betWindow)
	log.Printf("[SESSION] %s started playing in guild %s (baseline %q, location %q)",
		userID, guildID, baseline, locationID)
}

// EndSession removes a session without resolving it, abandoning the betting
// pool and refunding stakes. Called on explicit unregistration; a normal
// activity stop keeps the session alive for the poller to resolve.
func (t *Tracker) EndSession(guildID, userID string) {
	key := sessionKey(guildID, userID)
	t.mu.Lock()
	_, ok := t.sessions[key]
	delete(t.sessions, key)
	t.mu.Unlock()
	if !ok {
		return
	}
	t.wagers.Abandon(guildID, userID)
	log.Printf("[SESSION] Session for %s in guild %s removed", userID, guildID)
}

// HasSession reports whether a player currently has an open session.
func (t *Tracker) HasSession(guildID, userID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.sessions[sessionKey(guildID, userID)]
	return ok
}

// SetLocation updates the location-group hint of an open session.
func (t *Tracker) SetLocation(guildID, userID, locationID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if s, ok := t.sessions[sessionKey(guildID, userID)]; ok {
		s.LocationID = locationID
	}
}

// ActiveSessions returns copies of all open sessions, key-ordered.
func (t *Tracker) ActiveSessions() []Session {
	t.mu.Lock()
	keys := sortedSessionKeys(t.sessions)
	out := make([]Session, 0, len(keys))
	for _, k := range keys {
		out = append(out, *t.sessions[k])
	}
	t.mu.Unlock()
	return out
}

func sortedSessionKeys(sessions map[string]*Session) []string {
	keys := make([]string, 0, len(sessions))
	for k := range sessions {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

package tracker

import (
	"errors"
	"sync"
	"testing"
	"time"

	"valobet/internal/valorant"
	"valobet/internal/wager"
)

type stubRand struct{}

func (stubRand) Float64() float64 { return 0 }

// mapLedger is the in-memory balance store the wager manager runs on in tests.
type mapLedger struct {
	mu  sync.Mutex
	bal map[string]int
}

func newMapLedger() *mapLedger {
	return &mapLedger{bal: map[string]int{}}
}

func (l *mapLedger) set(userID string, amount int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.bal[userID] = amount
}

func (l *mapLedger) Balance(userID string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.bal[userID]
}

func (l *mapLedger) Credit(userID string, amount int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.bal[userID] += amount
	return nil
}

func (l *mapLedger) Debit(userID string, amount int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.bal[userID] < amount {
		return errors.New("saldo insuficiente")
	}
	l.bal[userID] -= amount
	return nil
}

// fakeStats serves a single switchable "most recent match" and records the
// identity of every lookup.
type fakeStats struct {
	mu      sync.Mutex
	current *valorant.Match
	err     error
	calls   []string
}

func (f *fakeStats) LastMatch(name, tag, region string) (*valorant.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, identity(name, tag))
	if f.err != nil {
		return nil, f.err
	}
	return f.current, nil
}

func (f *fakeStats) setMatch(m *valorant.Match) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.current = m
}

func (f *fakeStats) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *fakeStats) callLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

func (f *fakeStats) resetCalls() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
}

type fakeRegs struct {
	m map[string]Registration
}

func (f *fakeRegs) Get(guildID, userID string) (Registration, bool) {
	r, ok := f.m[guildID+":"+userID]
	return r, ok
}

// fakeSink collects announcements and settlement results and signals each
// announcement on a channel so tests can wait for the debounce flush.
type fakeSink struct {
	mu      sync.Mutex
	anns    []*Announcement
	settles []*wager.Result
	flushed chan struct{}
}

func newFakeSink() *fakeSink {
	return &fakeSink{flushed: make(chan struct{}, 16)}
}

func (f *fakeSink) AnnounceMatch(a *Announcement) error {
	f.mu.Lock()
	f.anns = append(f.anns, a)
	f.mu.Unlock()
	f.flushed <- struct{}{}
	return nil
}

func (f *fakeSink) AnnounceSettlement(guildID string, res *wager.Result) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.settles = append(f.settles, res)
	return nil
}

func (f *fakeSink) announcements() []*Announcement {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*Announcement, len(f.anns))
	copy(out, f.anns)
	return out
}

func (f *fakeSink) settlements() []*wager.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*wager.Result, len(f.settles))
	copy(out, f.settles)
	return out
}

func matchWith(id, mode string, redWon bool, riotIDs ...[2]string) *valorant.Match {
	m := &valorant.Match{}
	m.Metadata.MatchID = id
	m.Metadata.Map = "Ascent"
	m.Metadata.Mode = mode
	m.Teams.Red.HasWon = redWon
	m.Teams.Red.RoundsWon = 13
	m.Teams.Blue.HasWon = !redWon
	m.Teams.Blue.RoundsWon = 7
	for _, rid := range riotIDs {
		m.Players.AllPlayers = append(m.Players.AllPlayers, valorant.MatchPlayer{
			Name:      rid[0],
			Tag:       rid[1],
			Team:      "Red",
			Character: "Jett",
		})
	}
	return m
}

func newTestTracker(stats *fakeStats, regs *fakeRegs, ledger *mapLedger, sink *fakeSink, opts Options) *Tracker {
	wagers := wager.NewManager(ledger, stubRand{})
	return New(stats, regs, wagers, sink, opts)
}

func threePlayerRegs() *fakeRegs {
	return &fakeRegs{m: map[string]Registration{
		"g:u1": {Name: "Alpha", Tag: "001", Region: "na"},
		"g:u2": {Name: "Bravo", Tag: "002", Region: "na"},
		"g:u3": {Name: "Charlie", Tag: "003", Region: "na"},
	}}
}

func TestStartSessionRequiresRegistration(t *testing.T) {
	stats := &fakeStats{}
	trk := newTestTracker(stats, &fakeRegs{m: map[string]Registration{}}, newMapLedger(), newFakeSink(), Options{})

	trk.StartSession("g", "ghost", "")
	if trk.HasSession("g", "ghost") {
		t.Error("unregistered player must not get a session")
	}
	if len(stats.callLog()) != 0 {
		t.Error("no baseline fetch should happen for unregistered players")
	}
}

func TestStartSessionRecordsBaseline(t *testing.T) {
	stats := &fakeStats{current: matchWith("m0", "Competitive", true, [2]string{"Alpha", "001"})}
	trk := newTestTracker(stats, threePlayerRegs(), newMapLedger(), newFakeSink(), Options{})

	trk.StartSession("g", "u1", "voice-1")
	if !trk.HasSession("g", "u1") {
		t.Fatal("expected an open session")
	}

	sessions := trk.ActiveSessions()
	if len(sessions) != 1 {
		t.Fatalf("expected 1 session, got %d", len(sessions))
	}
	if sessions[0].LastMatchID != "m0" {
		t.Errorf("expected baseline m0, got %q", sessions[0].LastMatchID)
	}
	if sessions[0].LocationID != "voice-1" {
		t.Errorf("expected location voice-1, got %q", sessions[0].LocationID)
	}

	// A betting pool opens alongside the session.
	if pools := trk.wagers.ActivePools(); len(pools) != 1 || pools[0].Subject != "u1" {
		t.Errorf("expected one pool on u1, got %v", pools)
	}

	// Repeated start is a no-op.
	trk.StartSession("g", "u1", "voice-2")
	if got := trk.ActiveSessions(); len(got) != 1 || got[0].LocationID != "voice-1" {
		t.Error("second start must not replace the session")
	}
}

func TestStartSessionBaselineFetchFailure(t *testing.T) {
	stats := &fakeStats{err: errors.New("api 503")}
	trk := newTestTracker(stats, threePlayerRegs(), newMapLedger(), newFakeSink(), Options{})

	trk.StartSession("g", "u1", "")
	sessions := trk.ActiveSessions()
	if len(sessions) != 1 {
		t.Fatal("session should open even when the baseline fetch fails")
	}
	if sessions[0].LastMatchID != "" {
		t.Errorf("expected empty baseline, got %q", sessions[0].LastMatchID)
	}
}

func TestEndSessionAbandonsPool(t *testing.T) {
	stats := &fakeStats{}
	ledger := newMapLedger()
	ledger.set("bettor", 200)
	trk := newTestTracker(stats, threePlayerRegs(), ledger, newFakeSink(), Options{})

	trk.StartSession("g", "u1", "")
	if err := trk.wagers.Place("g", "u1", "bettor", wager.SideWin, 150); err != nil {
		t.Fatalf("place: %v", err)
	}

	trk.EndSession("g", "u1")
	if trk.HasSession("g", "u1") {
		t.Error("session should be gone")
	}
	if got := ledger.Balance("bettor"); got != 200 {
		t.Errorf("expected the stake refunded, balance %d", got)
	}
}

func TestPollRoundRobinOrder(t *testing.T) {
	stats := &fakeStats{}
	trk := newTestTracker(stats, threePlayerRegs(), newMapLedger(), newFakeSink(), Options{})

	trk.StartSession("g", "u1", "")
	trk.StartSession("g", "u2", "")
	trk.StartSession("g", "u3", "")
	stats.resetCalls()

	for i := 0; i < 4; i++ {
		trk.pollTick()
	}

	want := []string{"alpha#001", "bravo#002", "charlie#003", "alpha#001"}
	got := stats.callLog()
	if len(got) != len(want) {
		t.Fatalf("expected %d lookups, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("lookup %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestPollFailureRetriesSamePlayer(t *testing.T) {
	stats := &fakeStats{}
	trk := newTestTracker(stats, threePlayerRegs(), newMapLedger(), newFakeSink(), Options{})

	trk.StartSession("g", "u1", "")
	trk.StartSession("g", "u2", "")
	stats.resetCalls()
	stats.setErr(errors.New("timeout"))

	trk.pollTick()
	trk.pollTick()

	got := stats.callLog()
	if len(got) != 2 || got[0] != got[1] {
		t.Fatalf("a failed lookup must be retried for the same player, got %v", got)
	}
	if len(trk.ActiveSessions()) != 2 {
		t.Error("failed tick must not touch sessions")
	}

	// Recovery: the next successful tick moves on.
	stats.setErr(nil)
	trk.pollTick()
	trk.pollTick()
	got = stats.callLog()
	if got[2] != "alpha#001" || got[3] != "bravo#002" {
		t.Errorf("expected the cursor to resume from the retried player, got %v", got[2:])
	}
}

func TestPollBatchResolution(t *testing.T) {
	stats := &fakeStats{}
	sink := newFakeSink()
	ledger := newMapLedger()
	ledger.set("bettor", 1000)
	trk := newTestTracker(stats, threePlayerRegs(), ledger, sink, Options{
		GroupWait:    40 * time.Millisecond,
		AllowedModes: []string{"Competitive"},
	})

	trk.StartSession("g", "u1", "")
	trk.StartSession("g", "u2", "")
	trk.StartSession("g", "u3", "")
	if err := trk.wagers.Place("g", "u1", "bettor", wager.SideWin, 100); err != nil {
		t.Fatalf("place: %v", err)
	}

	// One response completes u1 and u2 together; u3 is not in the payload.
	stats.setMatch(matchWith("m1", "Competitive", true,
		[2]string{"Alpha", "001"}, [2]string{"Bravo", "002"}))
	trk.pollTick()

	if trk.HasSession("g", "u1") || trk.HasSession("g", "u2") {
		t.Error("resolved sessions should be removed")
	}
	if !trk.HasSession("g", "u3") {
		t.Error("unimplicated session must survive")
	}

	select {
	case <-sink.flushed:
	case <-time.After(time.Second):
		t.Fatal("announcement never flushed")
	}

	anns := sink.announcements()
	if len(anns) != 1 {
		t.Fatalf("expected one grouped announcement, got %d", len(anns))
	}
	if anns[0].MatchID != "m1" || len(anns[0].Players) != 2 {
		t.Fatalf("expected m1 with 2 players, got %s with %d", anns[0].MatchID, len(anns[0].Players))
	}
	for _, p := range anns[0].Players {
		if !p.Won {
			t.Errorf("%s: red won, expected Won=true", p.UserID)
		}
	}

	// u1's pool settled on the win side: lone bettor gets stake plus bonus
	// times the minimum multiplier = 100 + floor(25 * 1.05) = 126.
	settles := sink.settlements()
	if len(settles) != 1 {
		t.Fatalf("expected one settlement, got %d", len(settles))
	}
	if settles[0].Subject != "u1" || settles[0].Outcome != wager.SideWin {
		t.Errorf("unexpected settlement %+v", settles[0])
	}
	if got := ledger.Balance("bettor"); got != 1026 {
		t.Errorf("expected bettor balance 1026, got %d", got)
	}
}

func TestPollSkipsDisallowedMode(t *testing.T) {
	stats := &fakeStats{}
	sink := newFakeSink()
	trk := newTestTracker(stats, threePlayerRegs(), newMapLedger(), sink, Options{
		GroupWait:    20 * time.Millisecond,
		AllowedModes: []string{"Competitive"},
	})

	trk.StartSession("g", "u1", "")
	stats.setMatch(matchWith("dm1", "Deathmatch", true, [2]string{"Alpha", "001"}))

	trk.pollTick()
	if !trk.HasSession("g", "u1") {
		t.Fatal("session must stay open through a disallowed mode")
	}

	// The baseline advanced, so the same match is not re-detected.
	trk.pollTick()
	time.Sleep(60 * time.Millisecond)
	if got := sink.announcements(); len(got) != 0 {
		t.Errorf("disallowed mode must not announce, got %d", len(got))
	}

	// A later allowed match resolves normally.
	stats.setMatch(matchWith("m2", "Competitive", false, [2]string{"Alpha", "001"}))
	trk.pollTick()
	if trk.HasSession("g", "u1") {
		t.Error("allowed match should resolve the session")
	}
}

func TestPollIgnoresBaselineMatch(t *testing.T) {
	// The match that set the baseline never counts as a finished game.
	m0 := matchWith("m0", "Competitive", true, [2]string{"Alpha", "001"})
	stats := &fakeStats{current: m0}
	sink := newFakeSink()
	trk := newTestTracker(stats, threePlayerRegs(), newMapLedger(), sink, Options{
		GroupWait: 20 * time.Millisecond,
	})

	trk.StartSession("g", "u1", "")
	trk.pollTick()

	if !trk.HasSession("g", "u1") {
		t.Error("baseline match must not resolve the session")
	}
	time.Sleep(60 * time.Millisecond)
	if got := sink.announcements(); len(got) != 0 {
		t.Errorf("expected no announcement, got %d", len(got))
	}
}

func TestGroupDebounceWaitsForQuietPeriod(t *testing.T) {
	stats := &fakeStats{}
	sink := newFakeSink()
	trk := newTestTracker(stats, threePlayerRegs(), newMapLedger(), sink, Options{
		GroupWait: 150 * time.Millisecond,
	})

	match := matchWith("m1", "Competitive", true,
		[2]string{"Alpha", "001"}, [2]string{"Bravo", "002"}, [2]string{"Charlie", "003"})
	regs := threePlayerRegs()

	start := time.Now()
	member := func(user, key string) groupMember {
		reg, _ := regs.Get("g", user)
		return groupMember{userID: user, session: Session{GuildID: "g", UserID: user}, reg: reg}
	}

	trk.enqueue("g", match, member("u1", "g:u1"))
	time.Sleep(50 * time.Millisecond)
	trk.enqueue("g", match, member("u2", "g:u2"))
	time.Sleep(50 * time.Millisecond)
	trk.enqueue("g", match, member("u3", "g:u3"))

	select {
	case <-sink.flushed:
	case <-time.After(time.Second):
		t.Fatal("group never flushed")
	}
	elapsed := time.Since(start)

	// The timer rearms on every join: flush happens ~150ms after the LAST
	// member (t≈250ms), not 150ms after the first.
	if elapsed < 220*time.Millisecond {
		t.Errorf("flushed too early (%s): debounce must restart on each join", elapsed)
	}

	anns := sink.announcements()
	if len(anns) != 1 {
		t.Fatalf("expected a single grouped announcement, got %d", len(anns))
	}
	if len(anns[0].Players) != 3 {
		t.Errorf("expected all 3 finishers in one announcement, got %d", len(anns[0].Players))
	}
}

func TestStaleFlushDoesNotBypassDebounce(t *testing.T) {
	// A timer that already fired can lose the lock race to an enqueue that
	// rearms the group; its flush then carries a stale generation and must
	// leave the group for the rearmed timer.
	stats := &fakeStats{}
	sink := newFakeSink()
	trk := newTestTracker(stats, threePlayerRegs(), newMapLedger(), sink, Options{
		GroupWait: time.Hour,
	})

	match := matchWith("m1", "Competitive", true, [2]string{"Alpha", "001"}, [2]string{"Bravo", "002"})
	trk.enqueue("g", match, groupMember{
		userID: "u1", session: Session{GuildID: "g", UserID: "u1"},
		reg: Registration{Name: "Alpha", Tag: "001"},
	})
	trk.enqueue("g", match, groupMember{
		userID: "u2", session: Session{GuildID: "g", UserID: "u2"},
		reg: Registration{Name: "Bravo", Tag: "002"},
	})

	key := groupKey("g", "m1")

	// The first member's timer firing after the second join: generation 1
	// against a group at generation 2.
	trk.flushGroup(key, 1)
	if got := sink.announcements(); len(got) != 0 {
		t.Fatalf("stale flush must be a no-op, got %d announcements", len(got))
	}
	trk.mu.Lock()
	_, stillPending := trk.pending[key]
	trk.mu.Unlock()
	if !stillPending {
		t.Fatal("stale flush must leave the group pending")
	}

	// The live timer's flush delivers everything.
	trk.flushGroup(key, 2)
	anns := sink.announcements()
	if len(anns) != 1 || len(anns[0].Players) != 2 {
		t.Fatalf("expected one announcement with both members, got %v", anns)
	}
}

func TestFlushDropsMemberMissingFromPayload(t *testing.T) {
	stats := &fakeStats{}
	sink := newFakeSink()
	trk := newTestTracker(stats, threePlayerRegs(), newMapLedger(), sink, Options{
		GroupWait: 20 * time.Millisecond,
	})

	// Payload only has Alpha; Bravo is queued but unresolvable.
	match := matchWith("m1", "Competitive", true, [2]string{"Alpha", "001"})
	trk.enqueue("g", match, groupMember{
		userID: "u1", session: Session{GuildID: "g", UserID: "u1"},
		reg: Registration{Name: "Alpha", Tag: "001", Region: "na"},
	})
	trk.enqueue("g", match, groupMember{
		userID: "u2", session: Session{GuildID: "g", UserID: "u2"},
		reg: Registration{Name: "Bravo", Tag: "002", Region: "na"},
	})

	select {
	case <-sink.flushed:
	case <-time.After(time.Second):
		t.Fatal("group never flushed")
	}

	anns := sink.announcements()
	if len(anns) != 1 || len(anns[0].Players) != 1 {
		t.Fatalf("expected one announcement with one player, got %v", anns)
	}
	if anns[0].Players[0].UserID != "u1" {
		t.Errorf("expected only u1 resolved, got %s", anns[0].Players[0].UserID)
	}
}

func TestSeparateGuildsGroupSeparately(t *testing.T) {
	stats := &fakeStats{}
	sink := newFakeSink()
	trk := newTestTracker(stats, threePlayerRegs(), newMapLedger(), sink, Options{
		GroupWait: 20 * time.Millisecond,
	})

	match := matchWith("m1", "Competitive", true,
		[2]string{"Alpha", "001"}, [2]string{"Bravo", "002"})
	trk.enqueue("g", match, groupMember{
		userID: "u1", session: Session{GuildID: "g", UserID: "u1"},
		reg: Registration{Name: "Alpha", Tag: "001"},
	})
	trk.enqueue("g2", match, groupMember{
		userID: "u2", session: Session{GuildID: "g2", UserID: "u2"},
		reg: Registration{Name: "Bravo", Tag: "002"},
	})

	for i := 0; i < 2; i++ {
		select {
		case <-sink.flushed:
		case <-time.After(time.Second):
			t.Fatal("expected two flushes, one per guild")
		}
	}

	anns := sink.announcements()
	if len(anns) != 2 {
		t.Fatalf("expected 2 announcements, got %d", len(anns))
	}
	guilds := map[string]int{}
	for _, a := range anns {
		guilds[a.GuildID] = len(a.Players)
	}
	if guilds["g"] != 1 || guilds["g2"] != 1 {
		t.Errorf("expected one player per guild announcement, got %v", guilds)
	}
}

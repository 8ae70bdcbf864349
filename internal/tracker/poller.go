package tracker

import (
	"log"
	"strings"

	"valobet/internal/valorant"
)

// identity normalizes a Riot ID for payload lookups.
func identity(name, tag string) string {
	return strings.ToLower(name) + "#" + strings.ToLower(tag)
}

func (t *Tracker) isModeAllowed(mode string) bool {
	if len(t.allowedModes) == 0 {
		return true
	}
	for _, m := range t.allowedModes {
		if strings.EqualFold(m, mode) {
			return true
		}
	}
	return false
}

// pollTick issues exactly one stats query, for the next player in
// round-robin order over the current session set, and resolves every session
// whose player appears in the returned match payload. A failed query aborts
// the tick without touching any state, so the same player is retried on the
// next tick.
func (t *Tracker) pollTick() {
	t.mu.Lock()
	keys := sortedSessionKeys(t.sessions)
	if len(keys) == 0 {
		t.mu.Unlock()
		return
	}
	target := *t.sessions[keys[t.cursor%len(keys)]]
	snapshot := make(map[string]Session, len(t.sessions))
	for k, s := range t.sessions {
		snapshot[k] = *s
	}
	t.mu.Unlock()

	reg, ok := t.regs.Get(target.GuildID, target.UserID)
	if !ok {
		// Registration pulled out from under the session: skip the player
		// this tick, the session stays until unregistration removes it.
		t.advanceCursor()
		return
	}

	match, err := t.stats.LastMatch(reg.Name, reg.Tag, reg.Region)
	if err != nil {
		log.Printf("[POLL] Lookup failed for %s#%s: %v", reg.Name, reg.Tag, err)
		return
	}
	t.advanceCursor()
	if match == nil {
		return
	}

	inPayload := make(map[string]bool, len(match.Players.AllPlayers))
	for _, p := range match.Players.AllPlayers {
		inPayload[identity(p.Name, p.Tag)] = true
	}

	// Batch resolution: one response can complete several sessions, not just
	// the polled player's.
	type hit struct {
		key string
		reg Registration
	}
	var hits []hit
	for key, s := range snapshot {
		r, ok := t.regs.Get(s.GuildID, s.UserID)
		if !ok {
			continue
		}
		if !inPayload[identity(r.Name, r.Tag)] {
			continue
		}
		if s.LastMatchID == match.Metadata.MatchID {
			continue
		}
		hits = append(hits, hit{key: key, reg: r})
	}
	if len(hits) == 0 {
		return
	}

	if !t.isModeAllowed(match.Metadata.Mode) {
		// Advance baselines so the same match is not re-detected, but keep
		// the sessions open and announce nothing.
		t.mu.Lock()
		for _, h := range hits {
			if s, ok := t.sessions[h.key]; ok {
				s.LastMatchID = match.Metadata.MatchID
			}
		}
		t.mu.Unlock()
		log.Printf("[POLL] Skipping %s match %s (%d players implicated)",
			match.Metadata.Mode, match.Metadata.MatchID, len(hits))
		return
	}

	var done []groupMember
	t.mu.Lock()
	for _, h := range hits {
		s, ok := t.sessions[h.key]
		if !ok || s.LastMatchID == match.Metadata.MatchID {
			continue
		}
		delete(t.sessions, h.key)
		done = append(done, groupMember{userID: s.UserID, session: *s, reg: h.reg})
	}
	t.mu.Unlock()

	for _, m := range done {
		log.Printf("[POLL] %s finished match %s", m.userID, match.Metadata.MatchID)
		t.enqueue(m.session.GuildID, match, m)
	}
}

func (t *Tracker) advanceCursor() {
	t.mu.Lock()
	t.cursor++
	t.mu.Unlock()
}

// outcomeOf maps a resolved player result onto the wager side that won.
func outcomeOf(match *valorant.Match, p valorant.MatchPlayer) bool {
	return match.TeamOf(p.Team).HasWon
}

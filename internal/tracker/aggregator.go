package tracker

import (
	"log"

	"valobet/internal/valorant"
	"valobet/internal/wager"
)

// pendingGroup collects tracked players that finished the same match. The
// group flushes a fixed quiet period after the LAST member joined.
type pendingGroup struct {
	guildID string
	match   *valorant.Match
	members []groupMember
	timer   *timerHandle

	// gen cresce a cada rearme; um flush de timer antigo (que já disparou e
	// ficou esperando o lock) encontra gen maior e desiste
	gen int
}

type groupMember struct {
	userID  string
	session Session
	reg     Registration
}

func groupKey(guildID, matchID string) string {
	return guildID + ":" + matchID
}

// enqueue adds a finisher to its (guild, match) group, creating the group on
// the first member, and rearms the debounce timer. Rearming always cancels
// the previous timer first.
func (t *Tracker) enqueue(guildID string, match *valorant.Match, m groupMember) {
	key := groupKey(guildID, match.Metadata.MatchID)

	t.mu.Lock()
	g, ok := t.pending[key]
	if !ok {
		g = &pendingGroup{guildID: guildID, match: match}
		t.pending[key] = g
	}
	g.members = append(g.members, m)
	g.gen++
	gen := g.gen
	g.timer.cancel()
	g.timer = arm(t.groupWait, func() {
		t.flushGroup(key, gen)
	})
	total := len(g.members)
	t.mu.Unlock()

	log.Printf("[GROUP] Queued %s for match %s (group size %d)", m.userID, match.Metadata.MatchID, total)
}

// flushGroup pops the group from the pending map under the lock before doing
// any resolution work. A finisher arriving after the pop starts a fresh
// group instead of corrupting this one. The gen check covers the other race:
// a timer that fired but lost the lock to an enqueue rearming the group must
// not flush — the rearmed timer owns the quiet period now.
func (t *Tracker) flushGroup(key string, gen int) {
	t.mu.Lock()
	g, ok := t.pending[key]
	if !ok || g.gen != gen {
		t.mu.Unlock()
		return
	}
	delete(t.pending, key)
	t.mu.Unlock()

	match := g.match
	ann := &Announcement{
		GuildID:   g.guildID,
		MatchID:   match.Metadata.MatchID,
		Map:       match.Metadata.Map,
		Mode:      match.Metadata.Mode,
		RedScore:  match.Teams.Red.RoundsWon,
		BlueScore: match.Teams.Blue.RoundsWon,
	}

	for _, m := range g.members {
		player, found := findInPayload(match, m.reg)
		if !found {
			// Tolerated partial failure: the member just doesn't appear in
			// the announcement.
			log.Printf("[GROUP] %s#%s not in match %s payload, dropping",
				m.reg.Name, m.reg.Tag, match.Metadata.MatchID)
			continue
		}
		ann.Players = append(ann.Players, PlayerResult{
			UserID:    m.userID,
			RiotName:  player.Name,
			RiotTag:   player.Tag,
			Team:      player.Team,
			Won:       outcomeOf(match, player),
			Kills:     player.Stats.Kills,
			Deaths:    player.Stats.Deaths,
			Assists:   player.Stats.Assists,
			Character: player.Character,
		})
	}

	if len(ann.Players) == 0 {
		log.Printf("[GROUP] No members of match %s resolved, nothing to announce", match.Metadata.MatchID)
		return
	}

	if err := t.sink.AnnounceMatch(ann); err != nil {
		log.Printf("[ANNOUNCE] Delivery failed for match %s: %v", ann.MatchID, err)
	}

	// Each member's outcome settles that member's pool independently.
	for _, p := range ann.Players {
		outcome := wager.SideLoss
		if p.Won {
			outcome = wager.SideWin
		}
		res, ok := t.wagers.Settle(g.guildID, p.UserID, outcome)
		if !ok || len(res.Payouts) == 0 {
			continue
		}
		if err := t.sink.AnnounceSettlement(g.guildID, res); err != nil {
			log.Printf("[ANNOUNCE] Settlement delivery failed for %s: %v", p.UserID, err)
		}
	}
}

func findInPayload(match *valorant.Match, reg Registration) (valorant.MatchPlayer, bool) {
	want := identity(reg.Name, reg.Tag)
	for _, p := range match.Players.AllPlayers {
		if identity(p.Name, p.Tag) == want {
			return p, true
		}
	}
	return valorant.MatchPlayer{}, false
}

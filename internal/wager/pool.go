package wager

import (
	"errors"
	"log"
	"sort"
	"sync"
	"time"
)

// Side is what a bettor backs: the tracked player winning or losing.
type Side string

const (
	SideWin  Side = "win"
	SideLoss Side = "loss"
)

func (s Side) Other() Side {
	if s == SideWin {
		return SideLoss
	}
	return SideWin
}

// ParseSide converts user input into a Side.
func ParseSide(s string) (Side, bool) {
	switch s {
	case "win", "w":
		return SideWin, true
	case "loss", "lose", "l":
		return SideLoss, true
	}
	return "", false
}

var (
	ErrNoPool              = errors.New("no open betting pool for this player")
	ErrPoolClosed          = errors.New("the betting window is closed")
	ErrInvalidAmount       = errors.New("bet amount must be positive")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrDuplicateWager      = errors.New("only one bet per pool")
)

// Ledger is the persistent balance store. Debit must fail rather than let a
// balance go negative.
type Ledger interface {
	Balance(userID string) int
	Credit(userID string, amount int) error
	Debit(userID string, amount int) error
}

// Pool holds the bets accepted for one tracked player's current match.
type Pool struct {
	GuildID  string
	Subject  string
	Wagers   map[Side]map[string]int
	OpenedAt time.Time
	ClosesAt time.Time
	Closed   bool

	closeTimer *time.Timer
}

// PoolView is a read-only snapshot for display.
type PoolView struct {
	GuildID   string
	Subject   string
	WinTotal  int
	LossTotal int
	WinBets   int
	LossBets  int
	ClosesAt  time.Time
	Closed    bool
}

// Total is the whole pot.
func (v PoolView) Total() int {
	return v.WinTotal + v.LossTotal
}

// Odds returns the current payout multiple for a side, after the house edge.
// Returns 0 when nothing is staked on the side.
func (v PoolView) Odds(side Side) float64 {
	sideTotal := v.WinTotal
	if side == SideLoss {
		sideTotal = v.LossTotal
	}
	if sideTotal == 0 {
		return 0
	}
	pot := float64(v.Total())
	if v.Total() >= houseEdgeMinPool {
		pot *= 1 - HouseEdge
	}
	return pot / float64(sideTotal)
}

// Result is the outcome of settling one pool.
type Result struct {
	GuildID string
	Subject string
	Outcome Side
	Total   int
	Payouts []Payout
}

// Manager owns all open pools. One bookkeeping mutex guards the map and the
// pools inside it; it is never held across a ledger call.
type Manager struct {
	mu     sync.Mutex
	pools  map[string]*Pool
	ledger Ledger
	rng    Rand
}

func NewManager(ledger Ledger, rng Rand) *Manager {
	return &Manager{
		pools:  make(map[string]*Pool),
		ledger: ledger,
		rng:    rng,
	}
}

func poolKey(guildID, subject string) string {
	return guildID + ":" + subject
}

// Open creates a betting pool on a tracked player and schedules its
// auto-close. The close fires at ClosesAt no matter when (or whether) the
// match outcome arrives. If a pool already exists for the player it is kept.
func (m *Manager) Open(guildID, subject string, closeDelay time.Duration) {
	key := poolKey(guildID, subject)
	now := time.Now()

	m.mu.Lock()
	if _, exists := m.pools[key]; exists {
		m.mu.Unlock()
		return
	}
	pool := &Pool{
		GuildID:  guildID,
		Subject:  subject,
		Wagers:   map[Side]map[string]int{SideWin: {}, SideLoss: {}},
		OpenedAt: now,
		ClosesAt: now.Add(closeDelay),
	}
	pool.closeTimer = time.AfterFunc(closeDelay, func() {
		m.closePool(key)
	})
	m.pools[key] = pool
	m.mu.Unlock()

	log.Printf("[WAGER] Opened pool for %s in guild %s (closes in %s)", subject, guildID, closeDelay)
}

func (m *Manager) closePool(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pool, ok := m.pools[key]
	if !ok || pool.Closed {
		return
	}
	pool.Closed = true
	log.Printf("[WAGER] Pool for %s closed (%d bets, pot %d)",
		pool.Subject, len(pool.Wagers[SideWin])+len(pool.Wagers[SideLoss]), potOf(pool))
}

func potOf(pool *Pool) int {
	return sumStakes(pool.Wagers[SideWin]) + sumStakes(pool.Wagers[SideLoss])
}

// Place records a bet and escrows the stake: the ledger debit happens now,
// not at settlement.
func (m *Manager) Place(guildID, subject, bettor string, side Side, amount int) error {
	key := poolKey(guildID, subject)

	m.mu.Lock()
	pool, ok := m.pools[key]
	if !ok {
		m.mu.Unlock()
		return ErrNoPool
	}
	if pool.Closed || time.Now().After(pool.ClosesAt) {
		pool.Closed = true
		m.mu.Unlock()
		return ErrPoolClosed
	}
	if amount <= 0 {
		m.mu.Unlock()
		return ErrInvalidAmount
	}
	if hasWager(pool, bettor) {
		m.mu.Unlock()
		return ErrDuplicateWager
	}
	m.mu.Unlock()

	// Ledger é I/O: debitar fora do lock e reconferir depois
	if m.ledger.Balance(bettor) < amount {
		return ErrInsufficientBalance
	}
	if err := m.ledger.Debit(bettor, amount); err != nil {
		return ErrInsufficientBalance
	}

	// O pool pode ter fechado durante o débito; nesse caso o estorno devolve
	// tudo antes de retornar. Entre o débito e o estorno o saldo fica
	// momentaneamente menor para quem consultar; o resultado líquido é zero.
	m.mu.Lock()
	pool, ok = m.pools[key]
	if !ok || pool.Closed || time.Now().After(pool.ClosesAt) {
		m.mu.Unlock()
		m.refund(bettor, amount)
		return ErrPoolClosed
	}
	if hasWager(pool, bettor) {
		m.mu.Unlock()
		m.refund(bettor, amount)
		return ErrDuplicateWager
	}
	pool.Wagers[side][bettor] = amount
	m.mu.Unlock()

	log.Printf("[WAGER] %s bet %d on %s of %s", bettor, amount, side, subject)
	return nil
}

func hasWager(pool *Pool, bettor string) bool {
	_, onWin := pool.Wagers[SideWin][bettor]
	_, onLoss := pool.Wagers[SideLoss][bettor]
	return onWin || onLoss
}

func (m *Manager) refund(bettor string, amount int) {
	if err := m.ledger.Credit(bettor, amount); err != nil {
		log.Printf("[WAGER] Failed to refund %d to %s: %v", amount, bettor, err)
	}
}

// Settle removes the pool, computes payouts and credits winners. The removal
// makes settlement exactly-once: a second call for the same pool finds
// nothing and reports ok=false.
func (m *Manager) Settle(guildID, subject string, outcome Side) (*Result, bool) {
	key := poolKey(guildID, subject)

	m.mu.Lock()
	pool, ok := m.pools[key]
	if !ok {
		m.mu.Unlock()
		return nil, false
	}
	delete(m.pools, key)
	if pool.closeTimer != nil {
		pool.closeTimer.Stop()
	}
	wagers := cloneWagers(pool.Wagers)
	m.mu.Unlock()

	payouts := ComputePayouts(wagers, outcome, m.rng)
	result := &Result{
		GuildID: guildID,
		Subject: subject,
		Outcome: outcome,
		Total:   sumStakes(wagers[SideWin]) + sumStakes(wagers[SideLoss]),
		Payouts: payouts,
	}

	// Stakes were debited at placement, so winners get the full payout.
	for _, p := range payouts {
		if p.Payout > 0 {
			if err := m.ledger.Credit(p.UserID, p.Payout); err != nil {
				log.Printf("[SETTLE] Failed to credit %d to %s: %v", p.Payout, p.UserID, err)
			}
		}
	}

	if len(payouts) > 0 {
		log.Printf("[SETTLE] Pool for %s settled (%s): pot %d, %d payout lines",
			subject, outcome, result.Total, len(payouts))
	}
	return result, true
}

// Abandon removes a pool without an outcome and refunds every stake. Used
// when a tracked player unregisters mid-session.
func (m *Manager) Abandon(guildID, subject string) {
	key := poolKey(guildID, subject)

	m.mu.Lock()
	pool, ok := m.pools[key]
	if !ok {
		m.mu.Unlock()
		return
	}
	delete(m.pools, key)
	if pool.closeTimer != nil {
		pool.closeTimer.Stop()
	}
	wagers := cloneWagers(pool.Wagers)
	m.mu.Unlock()

	for _, side := range []Side{SideWin, SideLoss} {
		for bettor, stake := range wagers[side] {
			m.refund(bettor, stake)
		}
	}
	log.Printf("[WAGER] Pool for %s abandoned, stakes refunded", subject)
}

// View returns a display snapshot of one pool.
func (m *Manager) View(guildID, subject string) (PoolView, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pool, ok := m.pools[poolKey(guildID, subject)]
	if !ok {
		return PoolView{}, false
	}
	return viewOf(pool), true
}

// ActivePools lists snapshots of every open pool, ordered by subject.
func (m *Manager) ActivePools() []PoolView {
	m.mu.Lock()
	views := make([]PoolView, 0, len(m.pools))
	for _, pool := range m.pools {
		views = append(views, viewOf(pool))
	}
	m.mu.Unlock()

	sort.Slice(views, func(i, j int) bool {
		if views[i].GuildID != views[j].GuildID {
			return views[i].GuildID < views[j].GuildID
		}
		return views[i].Subject < views[j].Subject
	})
	return views
}

func viewOf(pool *Pool) PoolView {
	return PoolView{
		GuildID:   pool.GuildID,
		Subject:   pool.Subject,
		WinTotal:  sumStakes(pool.Wagers[SideWin]),
		LossTotal: sumStakes(pool.Wagers[SideLoss]),
		WinBets:   len(pool.Wagers[SideWin]),
		LossBets:  len(pool.Wagers[SideLoss]),
		ClosesAt:  pool.ClosesAt,
		Closed:    pool.Closed,
	}
}

func cloneWagers(wagers map[Side]map[string]int) map[Side]map[string]int {
	out := map[Side]map[string]int{SideWin: {}, SideLoss: {}}
	for side, bets := range wagers {
		for bettor, stake := range bets {
			out[side][bettor] = stake
		}
	}
	return out
}

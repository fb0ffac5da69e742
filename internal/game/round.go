package game

import (
	"sync"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
)

// Manager owns the round lifecycle: registration, guess evaluation,
// auto-closure and pool distribution. Rounds are strictly sequential; one
// mutex serializes every state-mutating operation so a guess that cascades
// into distribution mutates registrants, winners and the round number as a
// single transaction.
type Manager struct {
	mu       sync.Mutex
	rules    Rules
	admin    string
	draw     RandomDraw
	treasury Treasury
	bus      EventBus
	clock    quartz.Clock
	logger   *log.Logger

	roundNumber         uint64
	registrants         []string
	players             map[string]*Player
	winners             []string
	pool                int64
	previousWinners     []string
	distributionPending bool
}

// ManagerOption configures a Manager
type ManagerOption func(*Manager)

// WithEventBus sets the bus round events are published to
func WithEventBus(bus EventBus) ManagerOption {
	return func(m *Manager) { m.bus = bus }
}

// WithClock sets the clock used for event timestamps
func WithClock(clock quartz.Clock) ManagerOption {
	return func(m *Manager) { m.clock = clock }
}

// WithLogger sets the logger
func WithLogger(logger *log.Logger) ManagerOption {
	return func(m *Manager) { m.logger = logger.WithPrefix("game") }
}

// NewManager creates a Manager for sequential rounds under the given rules.
// The admin identity is fixed here and immutable afterwards.
func NewManager(rules Rules, admin string, draw RandomDraw, treasury Treasury, opts ...ManagerOption) *Manager {
	m := &Manager{
		rules:       rules,
		admin:       admin,
		draw:        draw,
		treasury:    treasury,
		bus:         NewEventBus(),
		clock:       quartz.NewReal(),
		logger:      log.Default().WithPrefix("game"),
		roundNumber: 1,
		players:     make(map[string]*Player),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Register joins an identity into the current round for an exact-fee stake.
func (m *Manager) Register(identity string, stake int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.distributionPending {
		return ruleErr(ErrRoundClosed, "round %d is distributing", m.roundNumber)
	}
	if stake != m.rules.RegistrationFee {
		return ruleErr(ErrInvalidStake, "stake %d does not match registration fee %d", stake, m.rules.RegistrationFee)
	}
	if p, ok := m.players[identity]; ok && p.Active {
		return ruleErr(ErrAlreadyRegistered, "%s is already in round %d", identity, m.roundNumber)
	}
	if len(m.registrants) == m.rules.MaxPlayers {
		return ruleErr(ErrRoundFull, "round %d already has %d players", m.roundNumber, m.rules.MaxPlayers)
	}

	if err := m.treasury.Deposit(identity, stake); err != nil {
		return &RuleError{Kind: ErrTransferFailed, Detail: "stake deposit failed", Cause: err}
	}

	m.players[identity] = &Player{Identity: identity, Active: true}
	m.registrants = append(m.registrants, identity)
	m.pool += stake

	m.logger.Debug("player registered", "identity", identity, "round", m.roundNumber, "pool", m.pool)
	m.bus.Publish(PlayerRegisteredEvent{
		Identity:    identity,
		Stake:       stake,
		Pool:        m.pool,
		RoundNumber: m.roundNumber,
		timestamp:   m.clock.Now(),
	})
	return nil
}

// GuessResult reports the outcome of a single guess
type GuessResult struct {
	Drawn        int
	Winner       bool
	AttemptsUsed int
	Distributed  bool // true when this guess exhausted the round and triggered payout
}

// Guess evaluates one guess for a registered player. Each guess is an
// independent trial: the winning number is drawn fresh per attempt. When the
// guess exhausts the last remaining attempt in the round, distribution runs
// synchronously and the result reflects that.
//
// A non-nil result with a non-nil error means the guess itself was accepted
// but the triggered distribution failed; the round stays open for a retry of
// DistributePrizes.
func (m *Manager) Guess(identity string, value int) (*GuessResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	player, ok := m.players[identity]
	if !ok || !player.Active {
		return nil, ruleErr(ErrNotRegistered, "%s is not in round %d", identity, m.roundNumber)
	}
	if m.distributionPending {
		return nil, ruleErr(ErrRoundClosed, "round %d is distributing", m.roundNumber)
	}
	if player.AttemptsUsed >= m.rules.MaxAttempts {
		return nil, ruleErr(ErrAttemptsExhausted, "%s has used all %d attempts", identity, m.rules.MaxAttempts)
	}
	if value < m.rules.MinNumber || value > m.rules.MaxNumber {
		return nil, ruleErr(ErrOutOfRange, "guess %d outside [%d,%d]", value, m.rules.MinNumber, m.rules.MaxNumber)
	}

	player.AttemptsUsed++
	drawn := m.draw.Draw(DrawContext{
		RoundNumber: m.roundNumber,
		Identity:    identity,
		Attempt:     player.AttemptsUsed,
	})
	winner := value == drawn
	if winner {
		// Duplicate entries are deliberate: a player who wins on both
		// attempts holds two shares at payout.
		m.winners = append(m.winners, identity)
	}

	result := &GuessResult{
		Drawn:        drawn,
		Winner:       winner,
		AttemptsUsed: player.AttemptsUsed,
	}

	m.logger.Debug("guess made", "identity", identity, "value", value, "drawn", drawn, "winner", winner)
	m.bus.Publish(GuessMadeEvent{
		Identity:     identity,
		Value:        value,
		Drawn:        drawn,
		Winner:       winner,
		AttemptsUsed: player.AttemptsUsed,
		RoundNumber:  m.roundNumber,
		timestamp:    m.clock.Now(),
	})

	if m.shouldAutoDistributeLocked() {
		if err := m.distributeLocked(); err != nil {
			return result, err
		}
		result.Distributed = true
	}
	return result, nil
}

// ShouldAutoDistribute reports whether every registrant has exhausted their
// attempts. An empty round never auto-closes.
func (m *Manager) ShouldAutoDistribute() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.shouldAutoDistributeLocked()
}

func (m *Manager) shouldAutoDistributeLocked() bool {
	if len(m.registrants) == 0 {
		return false
	}
	for _, identity := range m.registrants {
		if m.players[identity].AttemptsUsed < m.rules.MaxAttempts {
			return false
		}
	}
	return true
}

// DistributePrizes closes the current round: pays each winner entry an equal
// floor-divided share, archives winners, and starts the next round. A round
// with no winners can only be closed once every attempt is exhausted.
func (m *Manager) DistributePrizes() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.distributeLocked()
}

func (m *Manager) distributeLocked() error {
	if m.distributionPending {
		return ruleErr(ErrAlreadyDistributing, "round %d payout already in progress", m.roundNumber)
	}
	if len(m.winners) == 0 && !m.shouldAutoDistributeLocked() {
		return ruleErr(ErrNoWinnersYet, "round %d has no winners and attempts remain", m.roundNumber)
	}

	// Set before any transfer so re-entrant triggers are rejected above.
	m.distributionPending = true

	closing := m.roundNumber
	if len(m.winners) > 0 {
		share := m.pool / int64(len(m.winners))
		remainder := m.pool - share*int64(len(m.winners))
		payments := make([]Payment, len(m.winners))
		for i, identity := range m.winners {
			payments[i] = Payment{To: identity, Amount: share}
		}
		if err := m.treasury.Payout(payments); err != nil {
			// All-or-nothing: no funds moved, reopen the round.
			m.distributionPending = false
			m.logger.Error("payout failed, round stays open", "round", closing, "error", err)
			return &RuleError{Kind: ErrTransferFailed, Detail: "payout failed", Cause: err}
		}
		// The floor-division remainder is never distributed: it strands in
		// the treasury as dead balance and the pool resets to zero.
		m.pool = 0
		m.previousWinners = append(m.previousWinners, m.winners...)

		m.logger.Info("prizes distributed", "round", closing, "winners", len(m.winners), "share", share, "remainder", remainder)
		m.bus.Publish(PrizesDistributedEvent{
			RoundNumber: closing,
			Winners:     append([]string(nil), m.winners...),
			Share:       share,
			Remainder:   remainder,
			timestamp:   m.clock.Now(),
		})
	} else {
		// Forced closure with no winners: the pool rolls into the next round.
		m.logger.Info("round closed without winners, pool rolls forward", "round", closing, "pool", m.pool)
	}

	m.players = make(map[string]*Player)
	m.registrants = nil
	m.winners = nil
	m.roundNumber++
	m.distributionPending = false

	m.bus.Publish(NewRoundStartedEvent{
		RoundNumber: m.roundNumber,
		CarriedPool: m.pool,
		timestamp:   m.clock.Now(),
	})
	return nil
}

// EmergencyWithdraw drains the entire held balance to the administrator. It
// bypasses round invariants entirely; the current round keeps its membership
// but loses its funds. Manual recovery only.
func (m *Manager) EmergencyWithdraw(caller string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if caller != m.admin {
		return 0, ruleErr(ErrUnauthorized, "%s is not the administrator", caller)
	}

	amount := m.treasury.Balance()
	if amount > 0 {
		if err := m.treasury.Payout([]Payment{{To: m.admin, Amount: amount}}); err != nil {
			return 0, &RuleError{Kind: ErrTransferFailed, Detail: "emergency withdrawal failed", Cause: err}
		}
	}
	m.pool = 0

	m.logger.Warn("emergency withdrawal", "admin", m.admin, "amount", amount)
	m.bus.Publish(EmergencyWithdrawalEvent{
		Admin:     m.admin,
		Amount:    amount,
		timestamp: m.clock.Now(),
	})
	return amount, nil
}

// RoundNumber returns the current round number
func (m *Manager) RoundNumber() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.roundNumber
}

// Pool returns the current prize pool
func (m *Manager) Pool() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pool
}

// Registrants returns the current round's players in arrival order
func (m *Manager) Registrants() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.registrants...)
}

// Winners returns the current round's winner entries in win order
func (m *Manager) Winners() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.winners...)
}

// PreviousWinners returns every winner entry across all closed rounds
func (m *Manager) PreviousWinners() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.previousWinners...)
}

// DistributionPending reports whether a payout is in progress
func (m *Manager) DistributionPending() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.distributionPending
}

// Rules returns the game parameters
func (m *Manager) Rules() Rules {
	return m.rules
}

// Admin returns the administrator identity
func (m *Manager) Admin() string {
	return m.admin
}

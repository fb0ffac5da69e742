package game

import (
	"fmt"
	"sync"
)

// Payment is a single payout instruction
type Payment struct {
	To     string
	Amount int64
}

// Treasury holds the staked funds. The Manager tracks pool accounting itself;
// the treasury is the custody boundary where transfers can actually fail.
type Treasury interface {
	// Deposit credits a stake into custody
	Deposit(from string, amount int64) error

	// Payout executes a batch of transfers. The batch is all-or-nothing: if
	// any transfer cannot be made, no funds move and an error is returned.
	Payout(payments []Payment) error

	// Balance returns the total funds currently held
	Balance() int64
}

// MemoryTreasury is an in-memory Treasury. It records per-identity credits so
// tests and operators can inspect where funds went.
type MemoryTreasury struct {
	mu      sync.Mutex
	balance int64
	credits map[string]int64
}

// NewMemoryTreasury creates an empty in-memory treasury
func NewMemoryTreasury() *MemoryTreasury {
	return &MemoryTreasury{
		credits: make(map[string]int64),
	}
}

// Deposit credits a stake into the held balance
func (t *MemoryTreasury) Deposit(from string, amount int64) error {
	if amount < 0 {
		return fmt.Errorf("deposit amount must be non-negative, got %d", amount)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.balance += amount
	return nil
}

// Payout transfers the batch out of the held balance. Fails without moving
// funds if the batch exceeds what is held.
func (t *MemoryTreasury) Payout(payments []Payment) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	var total int64
	for _, p := range payments {
		if p.Amount < 0 {
			return fmt.Errorf("payout to %s has negative amount %d", p.To, p.Amount)
		}
		total += p.Amount
	}
	if total > t.balance {
		return fmt.Errorf("payout of %d exceeds held balance %d", total, t.balance)
	}

	t.balance -= total
	for _, p := range payments {
		t.credits[p.To] += p.Amount
	}
	return nil
}

// Balance returns the total funds held
func (t *MemoryTreasury) Balance() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.balance
}

// Credits returns the total amount ever paid out to an identity
func (t *MemoryTreasury) Credits(identity string) int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.credits[identity]
}

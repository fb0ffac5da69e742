package game

import "fmt"

// Rules holds the round parameters. They are fixed when a Manager is
// constructed and never change at runtime.
type Rules struct {
	RegistrationFee int64 // exact stake required to join a round
	MaxAttempts     int   // guesses allowed per player per round
	MinNumber       int   // inclusive lower bound of the drawable range
	MaxNumber       int   // inclusive upper bound of the drawable range
	MaxPlayers      int   // registrant cap per round
}

// DefaultRules returns the standard game parameters.
func DefaultRules() Rules {
	return Rules{
		RegistrationFee: 20,
		MaxAttempts:     2,
		MinNumber:       1,
		MaxNumber:       9,
		MaxPlayers:      100,
	}
}

// Validate checks that the rules describe a playable game.
func (r Rules) Validate() error {
	if r.RegistrationFee <= 0 {
		return fmt.Errorf("registration fee must be positive, got %d", r.RegistrationFee)
	}
	if r.MaxAttempts < 1 {
		return fmt.Errorf("max attempts must be at least 1, got %d", r.MaxAttempts)
	}
	if r.MinNumber >= r.MaxNumber {
		return fmt.Errorf("number range [%d,%d] is empty", r.MinNumber, r.MaxNumber)
	}
	if r.MaxPlayers < 1 {
		return fmt.Errorf("max players must be at least 1, got %d", r.MaxPlayers)
	}
	return nil
}

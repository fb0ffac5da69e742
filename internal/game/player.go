package game

// Player represents a registrant in the current round
type Player struct {
	Identity     string
	AttemptsUsed int
	Active       bool
}

// CanGuess returns true if the player has attempts remaining
func (p *Player) CanGuess(maxAttempts int) bool {
	return p.Active && p.AttemptsUsed < maxAttempts
}

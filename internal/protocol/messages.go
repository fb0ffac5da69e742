// Package protocol defines the JSON messages exchanged between the guesspot
// server and its clients over WebSocket.
package protocol

import (
	"encoding/json"
	"time"
)

// MessageType identifies the type of message
type MessageType string

const (
	// Client -> Server
	TypeHello      MessageType = "hello"
	TypeRegister   MessageType = "register"
	TypeGuess      MessageType = "guess"
	TypeDistribute MessageType = "distribute"
	TypeWithdraw   MessageType = "withdraw"
	TypeState      MessageType = "state"

	// Server -> Client
	TypeWelcome             MessageType = "welcome"
	TypeRoundState          MessageType = "round_state"
	TypeError               MessageType = "error"
	TypeGuessResult         MessageType = "guess_result"
	TypePlayerRegistered    MessageType = "player_registered"
	TypeGuessMade           MessageType = "guess_made"
	TypePrizesDistributed   MessageType = "prizes_distributed"
	TypeNewRoundStarted     MessageType = "new_round_started"
	TypeEmergencyWithdrawal MessageType = "emergency_withdrawal"
)

// Message is the base WebSocket message envelope
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(messageType MessageType, data interface{}) (*Message, error) {
	var dataBytes json.RawMessage
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		dataBytes = b
	}
	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}

// Decode unmarshals the message payload into v
func (m *Message) Decode(v interface{}) error {
	return json.Unmarshal(m.Data, v)
}

// Client -> Server payloads

// HelloData binds a connection to a player identity
type HelloData struct {
	Name string `json:"name"`
}

// RegisterData joins the current round with a stake
type RegisterData struct {
	Stake int64 `json:"stake"`
}

// GuessData submits one guess
type GuessData struct {
	Value int `json:"value"`
}

// Server -> Client payloads

// Rules mirrors the fixed game parameters for clients
type Rules struct {
	RegistrationFee int64 `json:"registrationFee"`
	MaxAttempts     int   `json:"maxAttempts"`
	MinNumber       int   `json:"minNumber"`
	MaxNumber       int   `json:"maxNumber"`
	MaxPlayers      int   `json:"maxPlayers"`
}

// WelcomeData is sent once after hello
type WelcomeData struct {
	Name        string `json:"name"`
	SessionID   string `json:"sessionId"`
	RoundNumber uint64 `json:"roundNumber"`
	Pool        int64  `json:"pool"`
	Rules       Rules  `json:"rules"`
}

// RoundStateData is the read-only query surface
type RoundStateData struct {
	RoundNumber     uint64   `json:"roundNumber"`
	Pool            int64    `json:"pool"`
	Registrants     []string `json:"registrants"`
	Winners         []string `json:"winners"`
	PreviousWinners []string `json:"previousWinners"`
}

// ErrorData carries a typed rejection; Code is the rule error kind
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// GuessResultData is the direct reply to the guessing player
type GuessResultData struct {
	Value        int  `json:"value"`
	Drawn        int  `json:"drawn"`
	Winner       bool `json:"winner"`
	AttemptsUsed int  `json:"attemptsUsed"`
	Distributed  bool `json:"distributed"`
}

// Event pushes, mirroring the domain events

type PlayerRegisteredData struct {
	Identity    string `json:"identity"`
	Stake       int64  `json:"stake"`
	Pool        int64  `json:"pool"`
	RoundNumber uint64 `json:"roundNumber"`
}

type GuessMadeData struct {
	Identity     string `json:"identity"`
	Value        int    `json:"value"`
	Winner       bool   `json:"winner"`
	AttemptsUsed int    `json:"attemptsUsed"`
	RoundNumber  uint64 `json:"roundNumber"`
}

type PrizesDistributedData struct {
	RoundNumber uint64   `json:"roundNumber"`
	Winners     []string `json:"winners"`
	Share       int64    `json:"share"`
	Remainder   int64    `json:"remainder"`
}

type NewRoundStartedData struct {
	RoundNumber uint64 `json:"roundNumber"`
	CarriedPool int64  `json:"carriedPool"`
}

type EmergencyWithdrawalData struct {
	Admin  string `json:"admin"`
	Amount int64  `json:"amount"`
}

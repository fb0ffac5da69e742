package server

import (
	"strings"

	"github.com/charmbracelet/log"

	"github.com/lox/guesspot/internal/game"
	"github.com/lox/guesspot/internal/protocol"
)

// GameService maps protocol messages onto the round manager and broadcasts
// domain events back out to every connected client.
type GameService struct {
	manager *game.Manager
	logger  *log.Logger
	server  *Server
}

// NewGameService creates a game service around a round manager. Subscribe it
// to the manager's event bus so clients see round events.
func NewGameService(manager *game.Manager, logger *log.Logger) *GameService {
	return &GameService{
		manager: manager,
		logger:  logger.WithPrefix("service"),
	}
}

// AttachServer wires the broadcast target. Called by NewServer.
func (gs *GameService) AttachServer(s *Server) {
	gs.server = s
}

// HandleMessage dispatches one client message
func (gs *GameService) HandleMessage(conn *Connection, msg *protocol.Message) {
	switch msg.Type {
	case protocol.TypeHello:
		gs.handleHello(conn, msg)
	case protocol.TypeRegister:
		gs.handleRegister(conn, msg)
	case protocol.TypeGuess:
		gs.handleGuess(conn, msg)
	case protocol.TypeDistribute:
		gs.handleDistribute(conn)
	case protocol.TypeWithdraw:
		gs.handleWithdraw(conn)
	case protocol.TypeState:
		gs.handleState(conn)
	default:
		conn.SendError("unknown_type", "unknown message type: "+string(msg.Type))
	}
}

func (gs *GameService) handleHello(conn *Connection, msg *protocol.Message) {
	var data protocol.HelloData
	if err := msg.Decode(&data); err != nil {
		conn.SendError("bad_message", "invalid hello payload")
		return
	}

	name := strings.TrimSpace(data.Name)
	if name == "" {
		conn.SendError("bad_name", "player name must not be empty")
		return
	}
	if conn.Identity() != "" {
		conn.SendError("already_identified", "connection is already bound to "+conn.Identity())
		return
	}
	if gs.server != nil && gs.server.IdentityInUse(name) {
		conn.SendError("name_taken", "player name is bound to another session")
		return
	}
	conn.SetIdentity(name)

	rules := gs.manager.Rules()
	welcome, err := protocol.NewMessage(protocol.TypeWelcome, protocol.WelcomeData{
		Name:        name,
		SessionID:   conn.sessionID,
		RoundNumber: gs.manager.RoundNumber(),
		Pool:        gs.manager.Pool(),
		Rules: protocol.Rules{
			RegistrationFee: rules.RegistrationFee,
			MaxAttempts:     rules.MaxAttempts,
			MinNumber:       rules.MinNumber,
			MaxNumber:       rules.MaxNumber,
			MaxPlayers:      rules.MaxPlayers,
		},
	})
	if err != nil {
		gs.logger.Error("failed to encode welcome", "error", err)
		return
	}
	_ = conn.SendMessage(welcome)
	gs.logger.Info("player connected", "name", name, "session", conn.sessionID)
}

func (gs *GameService) handleRegister(conn *Connection, msg *protocol.Message) {
	identity := conn.Identity()
	if identity == "" {
		conn.SendError("no_identity", "send hello before register")
		return
	}

	var data protocol.RegisterData
	if err := msg.Decode(&data); err != nil {
		conn.SendError("bad_message", "invalid register payload")
		return
	}

	if err := gs.manager.Register(identity, data.Stake); err != nil {
		gs.sendRuleError(conn, err)
		return
	}
}

func (gs *GameService) handleGuess(conn *Connection, msg *protocol.Message) {
	identity := conn.Identity()
	if identity == "" {
		conn.SendError("no_identity", "send hello before guess")
		return
	}

	var data protocol.GuessData
	if err := msg.Decode(&data); err != nil {
		conn.SendError("bad_message", "invalid guess payload")
		return
	}

	result, err := gs.manager.Guess(identity, data.Value)
	if result != nil {
		// The guess itself was accepted even if a triggered distribution
		// failed, so the player always sees their outcome.
		reply, encErr := protocol.NewMessage(protocol.TypeGuessResult, protocol.GuessResultData{
			Value:        data.Value,
			Drawn:        result.Drawn,
			Winner:       result.Winner,
			AttemptsUsed: result.AttemptsUsed,
			Distributed:  result.Distributed,
		})
		if encErr != nil {
			gs.logger.Error("failed to encode guess result", "error", encErr)
		} else {
			_ = conn.SendMessage(reply)
		}
	}
	if err != nil {
		gs.sendRuleError(conn, err)
	}
}

func (gs *GameService) handleDistribute(conn *Connection) {
	if err := gs.manager.DistributePrizes(); err != nil {
		gs.sendRuleError(conn, err)
	}
}

func (gs *GameService) handleWithdraw(conn *Connection) {
	identity := conn.Identity()
	if identity == "" {
		conn.SendError("no_identity", "send hello before withdraw")
		return
	}

	if _, err := gs.manager.EmergencyWithdraw(identity); err != nil {
		gs.sendRuleError(conn, err)
	}
}

func (gs *GameService) handleState(conn *Connection) {
	state, err := protocol.NewMessage(protocol.TypeRoundState, protocol.RoundStateData{
		RoundNumber:     gs.manager.RoundNumber(),
		Pool:            gs.manager.Pool(),
		Registrants:     gs.manager.Registrants(),
		Winners:         gs.manager.Winners(),
		PreviousWinners: gs.manager.PreviousWinners(),
	})
	if err != nil {
		gs.logger.Error("failed to encode state", "error", err)
		return
	}
	_ = conn.SendMessage(state)
}

func (gs *GameService) sendRuleError(conn *Connection, err error) {
	kind := game.Kind(err)
	if kind == "" {
		conn.SendError("internal", err.Error())
		return
	}
	conn.SendError(kind.String(), err.Error())
}

// OnEvent implements game.EventSubscriber by forwarding round events to all
// connected clients.
func (gs *GameService) OnEvent(event game.Event) {
	if gs.server == nil {
		return
	}

	var (
		msgType protocol.MessageType
		data    interface{}
	)

	switch e := event.(type) {
	case game.PlayerRegisteredEvent:
		msgType = protocol.TypePlayerRegistered
		data = protocol.PlayerRegisteredData{
			Identity:    e.Identity,
			Stake:       e.Stake,
			Pool:        e.Pool,
			RoundNumber: e.RoundNumber,
		}
	case game.GuessMadeEvent:
		msgType = protocol.TypeGuessMade
		data = protocol.GuessMadeData{
			Identity:     e.Identity,
			Value:        e.Value,
			Winner:       e.Winner,
			AttemptsUsed: e.AttemptsUsed,
			RoundNumber:  e.RoundNumber,
		}
	case game.PrizesDistributedEvent:
		msgType = protocol.TypePrizesDistributed
		data = protocol.PrizesDistributedData{
			RoundNumber: e.RoundNumber,
			Winners:     e.Winners,
			Share:       e.Share,
			Remainder:   e.Remainder,
		}
	case game.NewRoundStartedEvent:
		msgType = protocol.TypeNewRoundStarted
		data = protocol.NewRoundStartedData{
			RoundNumber: e.RoundNumber,
			CarriedPool: e.CarriedPool,
		}
	case game.EmergencyWithdrawalEvent:
		msgType = protocol.TypeEmergencyWithdrawal
		data = protocol.EmergencyWithdrawalData{
			Admin:  e.Admin,
			Amount: e.Amount,
		}
	default:
		return
	}

	msg, err := protocol.NewMessage(msgType, data)
	if err != nil {
		gs.logger.Error("failed to encode event", "type", event.EventType(), "error", err)
		return
	}
	gs.server.Broadcast(msg)
}

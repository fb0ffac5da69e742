package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/lox/guesspot/internal/client"
	"github.com/lox/guesspot/internal/protocol"
)

// Model is the Bubble Tea model for the interactive game client
type Model struct {
	client *client.Client
	logger *log.Logger

	logViewport  viewport.Model
	commandInput textinput.Model

	lines       []string
	rules       *protocol.Rules
	roundNumber uint64
	pool        int64
	watchOnly   bool
	quitting    bool

	width       int
	height      int
	initialized bool
}

// serverMsg carries a message from the server into the update loop
type serverMsg *protocol.Message

// disconnectedMsg signals that the server connection dropped
type disconnectedMsg struct{}

// NewModel creates a model bound to a connected client. In watch mode the
// command input is disabled and events are rendered read-only.
func NewModel(c *client.Client, logger *log.Logger, watchOnly bool) *Model {
	vp := viewport.New(10, 5)
	vp.SetContent("")

	ti := textinput.New()
	ti.Placeholder = "join | guess N | state | distribute | withdraw | quit"
	ti.CharLimit = 64
	ti.Width = 60
	ti.Prompt = "> "
	if !watchOnly {
		ti.Focus()
	}

	return &Model{
		client:       c,
		logger:       logger.WithPrefix("tui"),
		logViewport:  vp,
		commandInput: ti,
		watchOnly:    watchOnly,
	}
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	return m.waitForServer()
}

func (m *Model) waitForServer() tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-m.client.Receive()
		if !ok {
			return disconnectedMsg{}
		}
		return serverMsg(msg)
	}
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.logViewport.Width = msg.Width
		m.logViewport.Height = msg.Height - 4
		m.commandInput.Width = msg.Width - 4
		m.initialized = true
		m.refreshViewport()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.quitting = true
			return m, tea.Quit
		case tea.KeyEnter:
			if m.watchOnly {
				return m, nil
			}
			command := strings.TrimSpace(m.commandInput.Value())
			m.commandInput.SetValue("")
			return m, m.runCommand(command)
		}
		var cmd tea.Cmd
		m.commandInput, cmd = m.commandInput.Update(msg)
		return m, cmd

	case serverMsg:
		m.handleServerMessage((*protocol.Message)(msg))
		return m, m.waitForServer()

	case disconnectedMsg:
		m.appendLine(ErrorStyle.Render("disconnected from server"))
		m.quitting = true
		return m, tea.Quit
	}

	return m, nil
}

func (m *Model) runCommand(command string) tea.Cmd {
	if command == "" {
		return nil
	}

	fields := strings.Fields(command)
	var err error

	switch fields[0] {
	case "join", "register":
		stake := int64(0)
		if m.rules != nil {
			stake = m.rules.RegistrationFee
		}
		if len(fields) > 1 {
			stake, err = strconv.ParseInt(fields[1], 10, 64)
			if err != nil {
				m.appendLine(ErrorStyle.Render("usage: join [stake]"))
				return nil
			}
		}
		err = m.client.Register(stake)
	case "guess":
		if len(fields) != 2 {
			m.appendLine(ErrorStyle.Render("usage: guess N"))
			return nil
		}
		var value int
		value, err = strconv.Atoi(fields[1])
		if err != nil {
			m.appendLine(ErrorStyle.Render("usage: guess N"))
			return nil
		}
		err = m.client.Guess(value)
	case "state":
		err = m.client.State()
	case "distribute":
		err = m.client.Distribute()
	case "withdraw":
		err = m.client.Withdraw()
	case "quit", "exit":
		m.quitting = true
		return tea.Quit
	default:
		m.appendLine(ErrorStyle.Render("unknown command: " + fields[0]))
		return nil
	}

	if err != nil {
		m.appendLine(ErrorStyle.Render("send failed: " + err.Error()))
	}
	return nil
}

func (m *Model) handleServerMessage(msg *protocol.Message) {
	switch msg.Type {
	case protocol.TypeWelcome:
		var data protocol.WelcomeData
		if msg.Decode(&data) == nil {
			m.rules = &data.Rules
			m.roundNumber = data.RoundNumber
			m.pool = data.Pool
			m.appendLine(SuccessStyle.Render(fmt.Sprintf(
				"connected as %s, round %d, pool %d, fee %d, guesses %d-%d",
				data.Name, data.RoundNumber, data.Pool,
				data.Rules.RegistrationFee, data.Rules.MinNumber, data.Rules.MaxNumber)))
		}
	case protocol.TypePlayerRegistered:
		var data protocol.PlayerRegisteredData
		if msg.Decode(&data) == nil {
			m.pool = data.Pool
			m.appendLine(EventStyle.Render(fmt.Sprintf(
				"%s joined round %d (pool now %d)", data.Identity, data.RoundNumber, data.Pool)))
		}
	case protocol.TypeGuessResult:
		var data protocol.GuessResultData
		if msg.Decode(&data) == nil {
			if data.Winner {
				m.appendLine(WinStyle.Render(fmt.Sprintf(
					"you guessed %d and the draw was %d, a winner!", data.Value, data.Drawn)))
			} else {
				m.appendLine(EventStyle.Render(fmt.Sprintf(
					"you guessed %d, the draw was %d (%d attempts used)",
					data.Value, data.Drawn, data.AttemptsUsed)))
			}
		}
	case protocol.TypeGuessMade:
		var data protocol.GuessMadeData
		if msg.Decode(&data) == nil {
			outcome := "missed"
			if data.Winner {
				outcome = "hit!"
			}
			m.appendLine(EventStyle.Render(fmt.Sprintf(
				"%s guessed %d, %s", data.Identity, data.Value, outcome)))
		}
	case protocol.TypePrizesDistributed:
		var data protocol.PrizesDistributedData
		if msg.Decode(&data) == nil {
			m.appendLine(WinStyle.Render(fmt.Sprintf(
				"round %d paid %d to each of %d winner entries: %s",
				data.RoundNumber, data.Share, len(data.Winners), strings.Join(data.Winners, ", "))))
		}
	case protocol.TypeNewRoundStarted:
		var data protocol.NewRoundStartedData
		if msg.Decode(&data) == nil {
			m.roundNumber = data.RoundNumber
			m.pool = data.CarriedPool
			m.appendLine(SuccessStyle.Render(fmt.Sprintf(
				"round %d started (carried pool %d)", data.RoundNumber, data.CarriedPool)))
		}
	case protocol.TypeEmergencyWithdrawal:
		var data protocol.EmergencyWithdrawalData
		if msg.Decode(&data) == nil {
			m.appendLine(ErrorStyle.Render(fmt.Sprintf(
				"emergency withdrawal: %d to %s", data.Amount, data.Admin)))
		}
	case protocol.TypeRoundState:
		var data protocol.RoundStateData
		if msg.Decode(&data) == nil {
			m.roundNumber = data.RoundNumber
			m.pool = data.Pool
			m.appendLine(EventStyle.Render(fmt.Sprintf(
				"round %d: pool %d, players [%s], winners [%s], past winners [%s]",
				data.RoundNumber, data.Pool,
				strings.Join(data.Registrants, " "),
				strings.Join(data.Winners, " "),
				strings.Join(data.PreviousWinners, " "))))
		}
	case protocol.TypeError:
		var data protocol.ErrorData
		if msg.Decode(&data) == nil {
			m.appendLine(ErrorStyle.Render(fmt.Sprintf("error (%s): %s", data.Code, data.Message)))
		}
	}
}

func (m *Model) appendLine(line string) {
	m.lines = append(m.lines, line)
	m.refreshViewport()
}

func (m *Model) refreshViewport() {
	m.logViewport.SetContent(strings.Join(m.lines, "\n"))
	m.logViewport.GotoBottom()
}

// View implements tea.Model
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	header := HeaderStyle.Render(fmt.Sprintf("guesspot | round %d | pool %d", m.roundNumber, m.pool))

	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n")
	b.WriteString(m.logViewport.View())
	b.WriteString("\n")
	if m.watchOnly {
		b.WriteString(HelpStyle.Render("watching (ctrl+c to quit)"))
	} else {
		b.WriteString(m.commandInput.View())
		b.WriteString("\n")
		b.WriteString(HelpStyle.Render("join | guess N | state | distribute | withdraw | quit"))
	}
	return b.String()
}

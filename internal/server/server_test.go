package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/guesspot/internal/game"
	"github.com/lox/guesspot/internal/protocol"
)

// testClient wraps a websocket connection for reading typed messages
type testClient struct {
	t    *testing.T
	conn *websocket.Conn
}

func (c *testClient) send(msgType protocol.MessageType, data interface{}) {
	c.t.Helper()
	msg, err := protocol.NewMessage(msgType, data)
	require.NoError(c.t, err)
	require.NoError(c.t, c.conn.WriteJSON(msg))
}

// expect reads messages until one of the wanted type arrives, skipping
// broadcasts of other types, and decodes its payload into v.
func (c *testClient) expect(msgType protocol.MessageType, v interface{}) {
	c.t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		require.NoError(c.t, c.conn.SetReadDeadline(deadline))
		var msg protocol.Message
		require.NoError(c.t, c.conn.ReadJSON(&msg))
		if msg.Type != msgType {
			continue
		}
		if v != nil {
			require.NoError(c.t, json.Unmarshal(msg.Data, v))
		}
		return
	}
}

func newTestServer(t *testing.T, draws []int) (*Server, *httptest.Server, *game.MemoryTreasury) {
	t.Helper()

	logger := log.New(io.Discard)
	treasury := game.NewMemoryTreasury()

	i := 0
	draw := game.DrawFunc(func(game.DrawContext) int {
		n := draws[i%len(draws)]
		i++
		return n
	})

	bus := game.NewEventBus()
	rules := game.DefaultRules()
	manager := game.NewManager(rules, "house", draw, treasury,
		game.WithEventBus(bus),
		game.WithLogger(logger),
	)

	service := NewGameService(manager, logger)
	bus.Subscribe(service)

	s := NewServer("unused", service, logger)
	go s.run()
	t.Cleanup(func() { _ = s.Stop() })

	ts := httptest.NewServer(http.HandlerFunc(s.handleWebSocket))
	t.Cleanup(ts.Close)

	return s, ts, treasury
}

func dial(t *testing.T, ts *httptest.Server, name string) *testClient {
	t.Helper()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	client := &testClient{t: t, conn: conn}
	client.send(protocol.TypeHello, protocol.HelloData{Name: name})

	var welcome protocol.WelcomeData
	client.expect(protocol.TypeWelcome, &welcome)
	require.Equal(t, name, welcome.Name)
	return client
}

func TestServerRegisterAndGuessRoundTrip(t *testing.T) {
	_, ts, treasury := newTestServer(t, []int{4})

	alice := dial(t, ts, "alice")

	alice.send(protocol.TypeRegister, protocol.RegisterData{Stake: 20})
	var registered protocol.PlayerRegisteredData
	alice.expect(protocol.TypePlayerRegistered, &registered)
	assert.Equal(t, "alice", registered.Identity)
	assert.Equal(t, int64(20), registered.Pool)

	alice.send(protocol.TypeGuess, protocol.GuessData{Value: 4})
	var result protocol.GuessResultData
	alice.expect(protocol.TypeGuessResult, &result)
	assert.True(t, result.Winner)
	assert.Equal(t, 4, result.Drawn)
	assert.Equal(t, 1, result.AttemptsUsed)

	alice.send(protocol.TypeDistribute, nil)
	var dist protocol.PrizesDistributedData
	alice.expect(protocol.TypePrizesDistributed, &dist)
	assert.Equal(t, []string{"alice"}, dist.Winners)
	assert.Equal(t, int64(20), dist.Share)

	var started protocol.NewRoundStartedData
	alice.expect(protocol.TypeNewRoundStarted, &started)
	assert.Equal(t, uint64(2), started.RoundNumber)

	assert.Equal(t, int64(20), treasury.Credits("alice"))
}

func TestServerRejectsWrongStake(t *testing.T) {
	_, ts, _ := newTestServer(t, []int{4})

	alice := dial(t, ts, "alice")
	alice.send(protocol.TypeRegister, protocol.RegisterData{Stake: 19})

	var errData protocol.ErrorData
	alice.expect(protocol.TypeError, &errData)
	assert.Equal(t, game.ErrInvalidStake.String(), errData.Code)
}

func TestServerRequiresHelloBeforeRegister(t *testing.T) {
	_, ts, _ := newTestServer(t, []int{4})

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	client := &testClient{t: t, conn: conn}

	client.send(protocol.TypeRegister, protocol.RegisterData{Stake: 20})
	var errData protocol.ErrorData
	client.expect(protocol.TypeError, &errData)
	assert.Equal(t, "no_identity", errData.Code)
}

func TestServerBroadcastsEventsToSpectators(t *testing.T) {
	_, ts, _ := newTestServer(t, []int{9})

	alice := dial(t, ts, "alice")
	watcher := dial(t, ts, "watcher")

	alice.send(protocol.TypeRegister, protocol.RegisterData{Stake: 20})

	var registered protocol.PlayerRegisteredData
	watcher.expect(protocol.TypePlayerRegistered, &registered)
	assert.Equal(t, "alice", registered.Identity)

	alice.send(protocol.TypeGuess, protocol.GuessData{Value: 1})
	var made protocol.GuessMadeData
	watcher.expect(protocol.TypeGuessMade, &made)
	assert.Equal(t, "alice", made.Identity)
	assert.False(t, made.Winner)
}

func TestServerStateQuery(t *testing.T) {
	_, ts, _ := newTestServer(t, []int{9})

	alice := dial(t, ts, "alice")
	alice.send(protocol.TypeRegister, protocol.RegisterData{Stake: 20})
	alice.expect(protocol.TypePlayerRegistered, nil)

	alice.send(protocol.TypeState, nil)
	var state protocol.RoundStateData
	alice.expect(protocol.TypeRoundState, &state)
	assert.Equal(t, uint64(1), state.RoundNumber)
	assert.Equal(t, int64(20), state.Pool)
	assert.Equal(t, []string{"alice"}, state.Registrants)
}

func TestServerWithdrawUnauthorized(t *testing.T) {
	_, ts, _ := newTestServer(t, []int{9})

	alice := dial(t, ts, "alice")
	alice.send(protocol.TypeRegister, protocol.RegisterData{Stake: 20})
	alice.expect(protocol.TypePlayerRegistered, nil)

	alice.send(protocol.TypeWithdraw, nil)
	var errData protocol.ErrorData
	alice.expect(protocol.TypeError, &errData)
	assert.Equal(t, game.ErrUnauthorized.String(), errData.Code)
}

func TestServerRejectsSecondHello(t *testing.T) {
	_, ts, _ := newTestServer(t, []int{9})

	alice := dial(t, ts, "alice")
	alice.send(protocol.TypeRegister, protocol.RegisterData{Stake: 20})
	alice.expect(protocol.TypePlayerRegistered, nil)

	// Rebinding the connection to someone else's identity is refused
	alice.send(protocol.TypeHello, protocol.HelloData{Name: "mallory"})
	var errData protocol.ErrorData
	alice.expect(protocol.TypeError, &errData)
	assert.Equal(t, "already_identified", errData.Code)

	// The connection still acts as alice
	alice.send(protocol.TypeGuess, protocol.GuessData{Value: 1})
	var result protocol.GuessResultData
	alice.expect(protocol.TypeGuessResult, &result)
	assert.Equal(t, 1, result.AttemptsUsed)
}

func TestServerRejectsNameBoundToAnotherSession(t *testing.T) {
	_, ts, _ := newTestServer(t, []int{9})

	alice := dial(t, ts, "alice")
	alice.send(protocol.TypeRegister, protocol.RegisterData{Stake: 20})
	alice.expect(protocol.TypePlayerRegistered, nil)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	intruder := &testClient{t: t, conn: conn}

	intruder.send(protocol.TypeHello, protocol.HelloData{Name: "alice"})
	var errData protocol.ErrorData
	intruder.expect(protocol.TypeError, &errData)
	assert.Equal(t, "name_taken", errData.Code)

	// Without an identity the intruder cannot spend alice's attempts
	intruder.send(protocol.TypeGuess, protocol.GuessData{Value: 1})
	intruder.expect(protocol.TypeError, &errData)
	assert.Equal(t, "no_identity", errData.Code)
}

func TestServerShutdownReleasesConnections(t *testing.T) {
	s, ts, _ := newTestServer(t, []int{9})

	baseline := runtime.NumGoroutine()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conns := make([]*websocket.Conn, 3)
	for i := range conns {
		conn, _, err := websocket.DefaultDialer.Dial(url, nil)
		require.NoError(t, err)
		conns[i] = conn
	}

	require.Eventually(t, func() bool {
		s.mu.RLock()
		defer s.mu.RUnlock()
		return len(s.connections) == 3
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, s.Stop())
	for _, conn := range conns {
		_ = conn.Close()
	}

	// Every pump goroutine must drain even though the hub stopped
	// consuming unregister
	require.Eventually(t, func() bool {
		return runtime.NumGoroutine() <= baseline+2
	}, 2*time.Second, 20*time.Millisecond)
}

func TestServerWithdrawAsAdmin(t *testing.T) {
	_, ts, treasury := newTestServer(t, []int{9})

	alice := dial(t, ts, "alice")
	alice.send(protocol.TypeRegister, protocol.RegisterData{Stake: 20})
	alice.expect(protocol.TypePlayerRegistered, nil)

	admin := dial(t, ts, "house")
	admin.send(protocol.TypeWithdraw, nil)

	var withdrawal protocol.EmergencyWithdrawalData
	admin.expect(protocol.TypeEmergencyWithdrawal, &withdrawal)
	assert.Equal(t, "house", withdrawal.Admin)
	assert.Equal(t, int64(20), withdrawal.Amount)
	assert.Equal(t, int64(20), treasury.Credits("house"))
}

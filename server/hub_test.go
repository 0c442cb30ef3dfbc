package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/milk9111/crosswalk/phase"
	"github.com/milk9111/crosswalk/sim"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func testFrame() sim.Frame {
	return sim.Frame{
		Elapsed: 1.5,
		Phase:   phase.State{Phase: phase.Pedestrians, Timer: 2},
		Status: sim.Status{
			Phase:       phase.Pedestrians,
			Countdown:   "0:43",
			Description: "Pedestrians crossing",
			Walking:     3,
			Waiting:     0,
		},
		Agents: []sim.Agent{
			{ID: 7, Kind: sim.KindPedestrian, Position: mgl64.Vec3{1, 2, 3}, Orientation: mgl64.QuatIdent(), State: sim.Walking},
		},
	}
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readJSON(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, b, err := conn.ReadMessage()
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(b, &out))
	return out
}

func TestSpectatorReceivesLifecycleAndFrames(t *testing.T) {
	hub := NewHub(quietLogger())
	srv := httptest.NewServer(hub.Handler())
	defer srv.Close()

	conn := dial(t, srv)
	require.Eventually(t, func() bool { return hub.Count() == 1 }, 5*time.Second, 10*time.Millisecond)

	f := testFrame()
	hub.AgentCreated(f.Agents[0])
	hub.Frame(f)
	hub.AgentRemoved(7)

	created := readJSON(t, conn)
	assert.Equal(t, "created", created["type"])
	assert.Equal(t, 7.0, created["id"])
	agent := created["agent"].(map[string]any)
	assert.Equal(t, "pedestrian", agent["kind"])
	assert.Equal(t, "walking", agent["state"])
	assert.Equal(t, []any{1.0, 2.0, 3.0}, agent["position"])
	assert.Equal(t, []any{1.0, 0.0, 0.0, 0.0}, agent["orientation"])

	frame := readJSON(t, conn)
	assert.Equal(t, "frame", frame["type"])
	assert.Equal(t, 1.5, frame["elapsed"])
	status := frame["status"].(map[string]any)
	assert.Equal(t, "PEDESTRIANS", status["phase"])
	assert.Equal(t, "0:43", status["countdown"])
	assert.Equal(t, 3.0, status["walking"])
	assert.Len(t, frame["agents"], 1)

	removed := readJSON(t, conn)
	assert.Equal(t, "removed", removed["type"])
	assert.Equal(t, 7.0, removed["id"])
	assert.NotContains(t, removed, "agent")
}

func TestSpectatorLeaving(t *testing.T) {
	hub := NewHub(quietLogger())
	srv := httptest.NewServer(hub.Handler())
	defer srv.Close()

	conn := dial(t, srv)
	require.Eventually(t, func() bool { return hub.Count() == 1 }, 5*time.Second, 10*time.Millisecond)
	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return hub.Count() == 0 }, 5*time.Second, 10*time.Millisecond)
}

func TestSlowSpectatorIsDropped(t *testing.T) {
	hub := NewHub(quietLogger())
	s := &spectator{id: uuid.New(), send: make(chan []byte, 1)}
	hub.spectators[s.id] = s

	hub.Broadcast([]byte("one"))
	assert.Equal(t, 1, hub.Count())
	hub.Broadcast([]byte("two"))
	assert.Zero(t, hub.Count())

	assert.Equal(t, []byte("one"), <-s.send)
	_, open := <-s.send
	assert.False(t, open)

	hub.remove(s)
	assert.Zero(t, hub.Count())
}

func TestStatusEndpoint(t *testing.T) {
	hub := NewHub(quietLogger())
	srv := httptest.NewServer(hub.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/status")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	hub.Frame(testFrame())

	resp, err = http.Get(srv.URL + "/status")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var st statusMessage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&st))
	assert.Equal(t, statusMessage{
		Phase:       "PEDESTRIANS",
		Timer:       2,
		Countdown:   "0:43",
		Description: "Pedestrians crossing",
		Walking:     3,
	}, st)
}

func TestRunStepsUntilCancelled(t *testing.T) {
	hub := NewHub(quietLogger())
	s := sim.New(nil, nil, sim.WithLogger(quietLogger()), sim.WithPresenter(hub), sim.WithSource(sim.NewSource(1)))

	hooks := make(chan func(*sim.Simulation), 1)
	ran := make(chan float64, 1)
	hooks <- func(s *sim.Simulation) { ran <- s.Elapsed() }

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	err := Run(ctx, s, 100, hooks)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Positive(t, s.Elapsed())
	assert.LessOrEqual(t, s.Elapsed(), 0.3+maxStep)
	assert.Len(t, ran, 1)
	assert.Equal(t, phase.Cars, s.Phase().Phase)
}

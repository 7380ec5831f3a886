package observer

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/gridwalk/internal/game/geo"
	"github.com/udisondev/gridwalk/internal/model"
	"github.com/udisondev/gridwalk/internal/testutil"
	"github.com/udisondev/gridwalk/internal/world"
)

func testWorld(t *testing.T) *world.World {
	t.Helper()
	w := world.New(nil)

	valley := world.NewGameMap(1, "Valley", geo.NewGrid(8, 8))
	valley.AddCharacter(model.NewCharacter(2, "Slime", model.NewPoint(3, 4)))
	valley.AddCharacter(model.NewCharacter(1, "Hero", model.NewPoint(1, 1)))
	require.NoError(t, w.AddMap(valley))

	ridge := world.NewGameMap(2, "Ridge", geo.NewGrid(8, 8))
	ridge.AddCharacter(model.NewCharacter(world.NpcIDBase+1, "Villager", model.NewPoint(5, 5)))
	require.NoError(t, w.AddMap(ridge))
	return w
}

func TestSnapshot(t *testing.T) {
	msg := Snapshot(testWorld(t), 7)

	assert.Equal(t, TypeTick, msg.Type)
	assert.Equal(t, uint64(7), msg.Tick)
	assert.Equal(t, int32(1), msg.CurrentMap)
	require.Len(t, msg.Characters, 3)

	assert.Equal(t, CharacterState{ID: 1, Name: "Hero", MapID: 1, X: 1, Y: 1, Direction: "DOWN"}, msg.Characters[0])
	assert.Equal(t, uint32(2), msg.Characters[1].ID)
	assert.Equal(t, int32(2), msg.Characters[2].MapID)
	assert.True(t, msg.Characters[2].Npc, "id in the NPC range")
	assert.False(t, msg.Characters[0].Npc)

	only := msg.filter(2)
	require.Len(t, only.Characters, 1)
	assert.Equal(t, "Villager", only.Characters[0].Name)
	assert.Len(t, msg.Characters, 3, "filter copies")
}

func TestHub_DropsWhenFull(t *testing.T) {
	hub := NewHub()
	frames := hub.Join("a", 0)

	for i := range sessionBuffer + 3 {
		hub.PublishTick(TickMsg{Type: TypeTick, Tick: uint64(i)})
	}
	assert.Equal(t, uint64(3), hub.Dropped())
	assert.Len(t, frames, sessionBuffer)

	hub.Leave("a")
	hub.Leave("a")
	assert.Zero(t, hub.Count())

	// Channel closed after draining.
	for range frames {
	}
}

func TestHub_PublishMapSwitch(t *testing.T) {
	hub := NewHub()
	a := hub.Join("a", 1)
	b := hub.Join("b", 2)

	hub.PublishMapSwitch(4, model.MapSwitchRequest{MapID: 2, Pos: model.NewPoint(21, 14), Dir: model.DirUp})

	for _, ch := range []<-chan []byte{a, b} {
		var got MapSwitchMsg
		require.NoError(t, json.Unmarshal(<-ch, &got))
		assert.Equal(t, MapSwitchMsg{Type: TypeMapSwitch, Tick: 4, MapID: 2, X: 21, Y: 14, Direction: "UP"}, got)
	}
}

func TestHub_PublishTrigger(t *testing.T) {
	hub := NewHub()
	all := hub.Join("all", 0)
	valley := hub.Join("valley", 1)
	ridge := hub.Join("ridge", 2)

	hero := model.NewCharacter(1, "Hero", model.NewPoint(12, 5))
	hub.PublishTrigger(NewTriggerMsg(9, 1, "plate", model.TriggerPlayerTouch, hero.Position(), hero))

	want := TriggerMsg{Type: TypeTrigger, Tick: 9, MapID: 1, Name: "plate", Kind: "touch", X: 12, Y: 5, CharacterID: 1, Character: "Hero"}
	for _, ch := range []<-chan []byte{all, valley} {
		var got TriggerMsg
		require.NoError(t, json.Unmarshal(<-ch, &got))
		assert.Equal(t, want, got)
	}
	assert.Empty(t, ridge, "other map filtered out")

	anon := NewTriggerMsg(10, 2, "door", model.TriggerEventTouch, model.NewPoint(5, 2), nil)
	assert.Zero(t, anon.CharacterID)
	assert.Empty(t, anon.Character)
	assert.Equal(t, "event_touch", anon.Kind)
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/observe"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestServer_StreamsTicks(t *testing.T) {
	hub := NewHub()
	srv := httptest.NewServer(NewServer(hub).Handler())
	defer srv.Close()

	conn := dial(t, srv)
	require.NoError(t, conn.WriteJSON(SubscribeMsg{Type: TypeSubscribe, ProtocolVersion: Version, MapID: 2}))
	require.Eventually(t, func() bool { return hub.Count() == 1 }, 2*time.Second, 10*time.Millisecond)

	hub.PublishTick(Snapshot(testWorld(t), 1))

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got TickMsg
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, uint64(1), got.Tick)
	require.Len(t, got.Characters, 1)
	assert.Equal(t, "Villager", got.Characters[0].Name)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return hub.Count() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestServer_RejectsBadSubscribe(t *testing.T) {
	hub := NewHub()
	srv := httptest.NewServer(NewServer(hub).Handler())
	defer srv.Close()

	conn := dial(t, srv)
	require.NoError(t, conn.WriteJSON(SubscribeMsg{Type: "HELLO", ProtocolVersion: Version}))

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.ClosePolicyViolation), "got %v", err)
	assert.Zero(t, hub.Count())
}

func TestServer_ListenAndServeShutsDown(t *testing.T) {
	addr := testutil.FreeAddr(t)
	ctx, cancel := context.WithCancel(testutil.ContextWithTimeout(t, 5*time.Second))

	done := make(chan error, 1)
	go func() { done <- NewServer(NewHub()).ListenAndServe(ctx, addr) }()
	require.NoError(t, testutil.WaitForTCPReady(addr, 2*time.Second))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestIsLoopbackRemote(t *testing.T) {
	tests := []struct {
		addr string
		want bool
	}{
		{"127.0.0.1:5000", true},
		{"[::1]:5000", true},
		{"10.0.0.4:5000", false},
		{"garbage", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, isLoopbackRemote(tt.addr), tt.addr)
	}
}

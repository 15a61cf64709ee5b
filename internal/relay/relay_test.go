package relay

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mutant-life/internal/net/proto"
)

type fakeConn struct {
	mu     sync.Mutex
	frames [][]byte
	err    error
}

func (f *fakeConn) WriteMessage(_ int, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.frames = append(f.frames, append([]byte(nil), data...))
	return nil
}

func (f *fakeConn) messages(t *testing.T) []map[string]any {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]map[string]any, 0, len(f.frames))
	for _, frame := range f.frames {
		var m map[string]any
		require.NoError(t, json.Unmarshal(frame, &m))
		out = append(out, m)
	}
	return out
}

func (f *fakeConn) raw() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]byte(nil), f.frames...)
}

func newRelay() *Relay {
	logger, _ := test.NewNullLogger()
	return New(Config{Logger: logger})
}

func TestJoinAssignsIDsAndNotifiesMembers(t *testing.T) {
	r := newRelay()
	aConn, bConn := &fakeConn{}, &fakeConn{}
	a := r.Connect(aConn, "10.0.0.1")
	b := r.Connect(bConn, "10.0.0.2")
	assert.Equal(t, "peer-1", a.ID)
	assert.Equal(t, "peer-2", b.ID)

	r.Dispatch(a, []byte(`{"type":"join","roomId":"room"}`))
	r.Dispatch(b, []byte(`{"type":"join","roomId":"room"}`))

	aMsgs := aConn.messages(t)
	require.Len(t, aMsgs, 2)
	assert.Equal(t, "peers_list", aMsgs[0]["type"])
	assert.Equal(t, "peer-1", aMsgs[0]["peerId"])
	assert.Empty(t, aMsgs[0]["peers"])
	assert.Equal(t, map[string]any{"type": "peer_joined", "peerId": "peer-2"}, aMsgs[1])

	bMsgs := bConn.messages(t)
	require.Len(t, bMsgs, 1)
	assert.Equal(t, []any{"peer-1"}, bMsgs[0]["peers"])
}

func TestBroadcastForwardsRawBytesToOtherMembers(t *testing.T) {
	r := newRelay()
	aConn, bConn, cConn, outsider := &fakeConn{}, &fakeConn{}, &fakeConn{}, &fakeConn{}
	a := r.Connect(aConn, "a")
	b := r.Connect(bConn, "b")
	c := r.Connect(cConn, "c")
	d := r.Connect(outsider, "d")
	for _, p := range []*Peer{a, b, c} {
		r.Dispatch(p, []byte(`{"type":"join","roomId":"room"}`))
	}
	r.Dispatch(d, []byte(`{"type":"join","roomId":"elsewhere"}`))

	payload := []byte(`{"type":"game_state","state":{"grid":[[true]],"generation":3,"timestamp":5},"extra":1}`)
	r.Dispatch(a, payload)

	for _, conn := range []*fakeConn{bConn, cConn} {
		frames := conn.raw()
		assert.Equal(t, payload, frames[len(frames)-1], "payload must be forwarded unmodified")
	}
	for _, frame := range aConn.raw() {
		assert.NotEqual(t, payload, frame, "sender must not receive its own broadcast")
	}
	assert.Len(t, outsider.raw(), 1, "other rooms see nothing")
	assert.Equal(t, uint64(2), r.Diagnostics().Forwarded)
}

func TestBroadcastBeforeJoinIsDropped(t *testing.T) {
	r := newRelay()
	conn := &fakeConn{}
	p := r.Connect(conn, "a")
	r.Dispatch(p, []byte(`{"type":"settings","settings":{}}`))
	assert.Empty(t, conn.raw())
}

func TestDisconnectNotifiesAndDeletesEmptyRooms(t *testing.T) {
	r := newRelay()
	aConn, bConn := &fakeConn{}, &fakeConn{}
	a := r.Connect(aConn, "a")
	b := r.Connect(bConn, "b")
	r.Dispatch(a, []byte(`{"type":"join","roomId":"room"}`))
	r.Dispatch(b, []byte(`{"type":"join","roomId":"room"}`))

	r.Disconnect(b)
	aMsgs := aConn.messages(t)
	assert.Equal(t, map[string]any{"type": "peer_left", "peerId": "peer-2"}, aMsgs[len(aMsgs)-1])
	assert.Equal(t, map[string]int{"room": 1}, r.Diagnostics().Rooms)

	r.Disconnect(a)
	assert.Empty(t, r.Diagnostics().Rooms)
	assert.Zero(t, r.Diagnostics().Peers)
}

func TestRejoinMovesPeerBetweenRooms(t *testing.T) {
	r := newRelay()
	aConn, bConn := &fakeConn{}, &fakeConn{}
	a := r.Connect(aConn, "a")
	b := r.Connect(bConn, "b")
	r.Dispatch(a, []byte(`{"type":"join","roomId":"one"}`))
	r.Dispatch(b, []byte(`{"type":"join","roomId":"one"}`))
	r.Dispatch(b, []byte(`{"type":"join","roomId":"two"}`))

	aMsgs := aConn.messages(t)
	assert.Equal(t, "peer_left", aMsgs[len(aMsgs)-1]["type"])
	assert.Equal(t, "two", r.Registry().RoomOf(b))
	assert.Equal(t, map[string]int{"one": 1, "two": 1}, r.Diagnostics().Rooms)
}

func TestMalformedMessagesAreCountedAndIgnored(t *testing.T) {
	r := newRelay()
	conn := &fakeConn{}
	p := r.Connect(conn, "a")
	r.Dispatch(p, []byte(`{{{`))
	r.Dispatch(p, []byte(`{"type":"join"}`))
	r.Dispatch(p, []byte(`{"type":"offer"}`))
	assert.Empty(t, conn.raw())

	d := r.Diagnostics()
	assert.Equal(t, uint64(3), d.Messages)
	assert.Equal(t, uint64(2), d.Malformed)
}

func TestWriteErrorsAreCounted(t *testing.T) {
	r := newRelay()
	broken := &fakeConn{err: errors.New("closed")}
	a := r.Connect(&fakeConn{}, "a")
	b := r.Connect(broken, "b")
	r.Dispatch(b, []byte(`{"type":"join","roomId":"room"}`))
	r.Dispatch(a, []byte(`{"type":"join","roomId":"room"}`))
	assert.Equal(t, uint64(2), r.Diagnostics().WriteErrors)
}

func TestTrackerAnnounceAndScrape(t *testing.T) {
	r := newRelay()
	aConn, bConn := &fakeConn{}, &fakeConn{}
	a := r.Connect(aConn, "10.1.1.1")
	b := r.Connect(bConn, "10.1.1.2")

	r.Dispatch(a, []byte(`{"type":"announce","info_hash":"h","peer_id":"alpha","port":6881,"downloaded":10}`))
	r.Dispatch(b, []byte(`{"type":"announce","info_hash":"h","peer_id":"beta","port":6882,"downloaded":5}`))

	bMsgs := bConn.messages(t)
	require.Len(t, bMsgs, 1)
	assert.Equal(t, "announce_response", bMsgs[0]["type"])
	assert.Equal(t, float64(60), bMsgs[0]["interval"])
	assert.Equal(t, []any{map[string]any{"peer_id": "alpha", "ip": "10.1.1.1", "port": float64(6881)}}, bMsgs[0]["peers"])

	// re-announce refreshes rather than duplicates
	r.Dispatch(a, []byte(`{"type":"announce","info_hash":"h","peer_id":"alpha","port":6881,"downloaded":12}`))

	r.Dispatch(a, []byte(`{"type":"scrape","info_hash":"h"}`))
	aMsgs := aConn.messages(t)
	files := aMsgs[len(aMsgs)-1]["files"].(map[string]any)
	assert.Equal(t, map[string]any{"complete": float64(2), "incomplete": float64(0), "downloaded": float64(17)}, files["h"])

	r.Disconnect(b)
	r.Disconnect(a)
	assert.Zero(t, r.Diagnostics().Swarms)
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		conn.Close()
		if resp != nil {
			resp.Body.Close()
		}
	})
	return conn
}

func readType(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	return m
}

func readMessage(t *testing.T, conn *websocket.Conn) proto.Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	msg, err := proto.Decode(data)
	require.NoError(t, err)
	return msg
}

func TestRelayOverWebsocket(t *testing.T) {
	r := newRelay()
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	url := "ws" + strings.TrimPrefix(srv.URL, "http")

	a := dial(t, url)
	require.NoError(t, a.WriteMessage(websocket.TextMessage, []byte(`{"type":"join","roomId":"game-of-life-room"}`)))
	assert.Equal(t, "peers_list", readType(t, a)["type"])

	b := dial(t, url)
	require.NoError(t, b.WriteMessage(websocket.TextMessage, []byte(`{"type":"join","roomId":"game-of-life-room"}`)))
	list, ok := readMessage(t, b).(*proto.PeersList)
	require.True(t, ok, "first reply to join is a peers_list")
	assert.Equal(t, "peer-2", list.PeerID)
	assert.Equal(t, []string{"peer-1"}, list.Peers)
	assert.Equal(t, &proto.PeerEvent{Type: proto.TypePeerJoined, PeerID: "peer-2"}, readMessage(t, a))

	require.NoError(t, b.WriteMessage(websocket.TextMessage, []byte(`{"type":"settings","settings":{"width":5}}`)))
	got := readType(t, a)
	assert.Equal(t, "settings", got["type"])

	require.NoError(t, b.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	left := readType(t, a)
	assert.Equal(t, map[string]any{"type": "peer_left", "peerId": "peer-2"}, left)
}

func TestOversizedFrameClosesConnection(t *testing.T) {
	logger, _ := test.NewNullLogger()
	r := New(Config{Logger: logger, ReadLimit: 256})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	url := "ws" + strings.TrimPrefix(srv.URL, "http")

	a := dial(t, url)
	require.NoError(t, a.WriteMessage(websocket.TextMessage, []byte(`{"type":"join","roomId":"room"}`)))
	readMessage(t, a)
	b := dial(t, url)
	require.NoError(t, b.WriteMessage(websocket.TextMessage, []byte(`{"type":"join","roomId":"room"}`)))
	readMessage(t, b)
	readMessage(t, a)

	big := `{"type":"game_state","state":{"grid":[[` + strings.Repeat("false,", 100) + `false]],"generation":1,"timestamp":1}}`
	require.NoError(t, b.WriteMessage(websocket.TextMessage, []byte(big)))

	assert.Equal(t, &proto.PeerEvent{Type: proto.TypePeerLeft, PeerID: "peer-2"}, readMessage(t, a),
		"the oversized frame is never forwarded and its sender is dropped")
	assert.Zero(t, r.Diagnostics().Forwarded)
}

package proto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeDispatchesOnType(t *testing.T) {
	msg, err := Decode([]byte(`{"type":"join","roomId":"game-of-life-room"}`))
	require.NoError(t, err)
	join, ok := msg.(*Join)
	require.True(t, ok)
	assert.Equal(t, "game-of-life-room", join.RoomID)

	msg, err = Decode([]byte(`{"type":"peer_left","peerId":"peer-3"}`))
	require.NoError(t, err)
	assert.Equal(t, TypePeerLeft, msg.MessageType())
	assert.Equal(t, "peer-3", msg.(*PeerEvent).PeerID)
}

func TestDecodeGameStateLayout(t *testing.T) {
	raw := `{"type":"game_state","state":{"grid":[[true,false],[false,true]],"generation":7,"timestamp":1700000000123}}`
	msg, err := Decode([]byte(raw))
	require.NoError(t, err)
	gs := msg.(*GameState)
	assert.Equal(t, [][]bool{{true, false}, {false, true}}, gs.State.Grid)
	assert.Equal(t, 7, gs.State.Generation)
	assert.Equal(t, int64(1700000000123), gs.State.Timestamp)
}

func TestDecodeSettingsWithoutMutationType(t *testing.T) {
	raw := `{"type":"settings","settings":{"width":40,"height":30,"updateFrequency":250,"mutationChance":0.5,"edgeLooping":false,"timestamp":9}}`
	msg, err := Decode([]byte(raw))
	require.NoError(t, err)
	s := msg.(*Settings).Settings
	assert.Equal(t, 40, s.Width)
	assert.Equal(t, 250.0, s.UpdateFrequency)
	assert.Empty(t, s.MutationType)
	assert.False(t, s.EdgeLooping)
}

func TestDecodeErrors(t *testing.T) {
	_, err := Decode([]byte(`not json`))
	assert.ErrorIs(t, err, ErrMalformedMessage)

	_, err = Decode([]byte(`{"roomId":"x"}`))
	assert.ErrorIs(t, err, ErrMalformedMessage)

	_, err = Decode([]byte(`{"type":"game_state","state":{"grid":"nope"}}`))
	assert.ErrorIs(t, err, ErrMalformedMessage)

	_, err = Decode([]byte(`{"type":"offer"}`))
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestEncodeUsesWireNames(t *testing.T) {
	data, err := Encode(NewPeersList("peer-2", nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"peers_list","peerId":"peer-2","peers":[]}`, string(data))

	data, err = Encode(&AnnounceResponse{
		Type:     TypeAnnounceResponse,
		Interval: AnnounceInterval,
		Peers:    []TrackerPeer{{PeerID: "abc", IP: "10.0.0.2", Port: 6881}},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"announce_response","interval":60,"peers":[{"peer_id":"abc","ip":"10.0.0.2","port":6881}]}`, string(data))

	data, err = Encode(NewSettings(SettingsPayload{Width: 1, Height: 2, UpdateFrequency: 100, MutationType: "stable", EdgeLooping: true, Timestamp: 3}))
	require.NoError(t, err)
	var round struct {
		Settings map[string]any `json:"settings"`
	}
	require.NoError(t, json.Unmarshal(data, &round))
	assert.Equal(t, "stable", round.Settings["mutationType"])
	assert.Equal(t, true, round.Settings["edgeLooping"])
}

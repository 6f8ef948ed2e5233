package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minority_game/internal/models"
)

func TestClientTakeoverScopesRemoval(t *testing.T) {
	m := NewWebSocketManager()
	old := &Client{PlayerID: "p1", SendChan: make(chan *models.Message, 1)}
	replacement := &Client{PlayerID: "p1", SendChan: make(chan *models.Message, 1)}

	require.Nil(t, m.addClient(old))
	assert.Same(t, old, m.addClient(replacement))

	// 被取代的舊連線收尾時不能把新連線踢掉，也不能觸發斷線清理
	assert.False(t, m.removeClient(old))
	assert.Equal(t, 1, m.OnlineCount())

	assert.True(t, m.removeClient(replacement))
	assert.Equal(t, 0, m.OnlineCount())
}

func TestBroadcastReachesSubscribersOnly(t *testing.T) {
	m := NewWebSocketManager()
	a := &Client{PlayerID: "a", SendChan: make(chan *models.Message, 1)}
	b := &Client{PlayerID: "b", SendChan: make(chan *models.Message, 1)}
	m.addClient(a)
	m.addClient(b)
	m.Subscribe("ROOM66", "a")

	m.BroadcastToRoom("ROOM66", &models.Message{Type: models.MessageTypeRoomState})

	require.Len(t, a.SendChan, 1)
	assert.Empty(t, b.SendChan)
}

package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minority_game/internal/models"
)

func TestCreateRoomCodeFormat(t *testing.T) {
	env := newTestEnv(t)

	room, err := env.rooms.CreateRoom()
	require.NoError(t, err)

	require.Len(t, room.Code(), roomCodeLength)
	for _, ch := range room.Code() {
		assert.True(t, strings.ContainsRune(roomCodeAlphabet, ch),
			"代碼不該出現字母表以外的字符: %c", ch)
	}
	assert.NotZero(t, room.GameID())
}

func TestCreateRoomNoCollisionAmongLiveRooms(t *testing.T) {
	env := newTestEnv(t)

	seen := make(map[string]bool, 10000)
	for i := 0; i < 10000; i++ {
		room, err := env.rooms.CreateRoom()
		require.NoError(t, err)
		require.False(t, seen[room.Code()], "存活房間之間出現重複代碼: %s", room.Code())
		seen[room.Code()] = true
	}
}

func TestCreateRoomPersistenceFailure(t *testing.T) {
	env := newTestEnv(t)
	env.games.fail = true

	_, err := env.rooms.CreateRoom()
	require.Error(t, err)

	// 持久層失敗時不能留下半個房間
	env.rooms.mu.RLock()
	defer env.rooms.mu.RUnlock()
	assert.Empty(t, env.rooms.rooms)
}

func TestJoinDefaultsBlankName(t *testing.T) {
	env := newTestEnv(t)
	room, err := env.rooms.CreateRoom()
	require.NoError(t, err)

	require.NoError(t, env.rooms.Join(room.Code(), "p1", "   "))

	broadcasts := env.notifier.broadcastsOfType(room.Code(), models.MessageTypeRoomState)
	require.NotEmpty(t, broadcasts)
	payload := broadcasts[len(broadcasts)-1].Data.(models.RoomStatePayload)
	require.Len(t, payload.Players, 1)
	assert.Equal(t, defaultPlayerName, payload.Players[0].Name)
}

func TestJoinPersistenceFailureLeavesRoomUnchanged(t *testing.T) {
	env := newTestEnv(t)
	room, err := env.rooms.CreateRoom()
	require.NoError(t, err)

	env.players.fail = true
	require.Error(t, env.rooms.Join(room.Code(), "p1", "小明"))

	room.mu.Lock()
	defer room.mu.Unlock()
	assert.Empty(t, room.players, "持久化失敗的玩家不該出現在房間裡")
}

func TestJoinUnknownRoom(t *testing.T) {
	env := newTestEnv(t)

	err := env.rooms.Join("ZZZZZZ", "p1", "小明")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestLeaveLastPlayerRemovesRoom(t *testing.T) {
	env := newTestEnv(t)
	room, players := env.roomWithPlayers(t, 2)

	require.NoError(t, env.engine.StartRound(room.Code(), players[0], 30))

	require.NoError(t, env.rooms.Leave(room.Code(), players[0]))
	require.NoError(t, env.rooms.Leave(room.Code(), players[1]))

	_, err := env.rooms.GetRoom(room.Code())
	assert.ErrorIs(t, err, ErrRoomNotFound)

	// 遲到的節拍必須安靜退場，不能恐慌也不能讓房間復活
	assert.True(t, env.engine.tick(room))
	_, err = env.rooms.GetRoom(room.Code())
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestLeaveNonMember(t *testing.T) {
	env := newTestEnv(t)
	room, _ := env.roomWithPlayers(t, 2)

	err := env.rooms.Leave(room.Code(), "stranger")
	assert.ErrorIs(t, err, ErrNotInRoom)

	room.mu.Lock()
	defer room.mu.Unlock()
	assert.Len(t, room.players, 2)
}

func TestHostDerivedFromJoinOrder(t *testing.T) {
	env := newTestEnv(t)
	room, players := env.roomWithPlayers(t, 3)

	assert.True(t, room.IsHost(players[0]))
	assert.False(t, room.IsHost(players[1]))

	// 房主離開後由下一位遞補，沒有獨立的房主欄位需要同步
	require.NoError(t, env.rooms.Leave(room.Code(), players[0]))
	assert.True(t, room.IsHost(players[1]))
	assert.False(t, room.IsHost(players[2]))
}

func TestSetReadyBroadcastsAllReady(t *testing.T) {
	env := newTestEnv(t)
	room, err := env.rooms.CreateRoom()
	require.NoError(t, err)
	require.NoError(t, env.rooms.Join(room.Code(), "p1", "甲"))
	require.NoError(t, env.rooms.Join(room.Code(), "p2", "乙"))

	require.NoError(t, env.rooms.SetReady(room.Code(), "p1", true))
	broadcasts := env.notifier.broadcastsOfType(room.Code(), models.MessageTypeReadyState)
	require.NotEmpty(t, broadcasts)
	payload := broadcasts[len(broadcasts)-1].Data.(models.ReadyStatePayload)
	assert.False(t, payload.AllReady)

	require.NoError(t, env.rooms.SetReady(room.Code(), "p2", true))
	broadcasts = env.notifier.broadcastsOfType(room.Code(), models.MessageTypeReadyState)
	payload = broadcasts[len(broadcasts)-1].Data.(models.ReadyStatePayload)
	assert.True(t, payload.AllReady)

	// 重複設定相同狀態不會出錯
	require.NoError(t, env.rooms.SetReady(room.Code(), "p2", true))
}

func TestSetReadyNonMember(t *testing.T) {
	env := newTestEnv(t)
	room, _ := env.roomWithPlayers(t, 1)

	err := env.rooms.SetReady(room.Code(), "stranger", true)
	assert.ErrorIs(t, err, ErrNotInRoom)
}

func TestRejoinKeepsPoints(t *testing.T) {
	env := newTestEnv(t)
	room, players := env.roomWithPlayers(t, 2)

	room.mu.Lock()
	room.playerByID(players[0]).Points = 3
	room.mu.Unlock()

	require.NoError(t, env.rooms.Leave(room.Code(), players[0]))
	require.NoError(t, env.rooms.Join(room.Code(), players[0], "回鍋玩家"))

	room.mu.Lock()
	defer room.mu.Unlock()
	p := room.playerByID(players[0])
	require.NotNil(t, p)
	assert.Equal(t, 3, p.Points)
	assert.False(t, p.Ready, "重新加入後準備狀態要歸零")
}

func TestRoomSummary(t *testing.T) {
	env := newTestEnv(t)
	room, _ := env.roomWithPlayers(t, 2)

	summary, err := env.rooms.Summary(room.Code())
	require.NoError(t, err)
	assert.Equal(t, room.Code(), summary.Code)
	assert.Equal(t, 2, summary.PlayerCount)
	assert.Equal(t, 0, summary.RoundNumber)
	assert.False(t, summary.GameOver)

	_, err = env.rooms.Summary("ZZZZZZ")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

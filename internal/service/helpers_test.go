package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"minority_game/internal/models"
	"minority_game/pkg/config"
)

type testEnv struct {
	rooms     *RoomService
	engine    *RoundEngine
	notifier  *fakeNotifier
	questions *fakeQuestionSource
	games     *fakeGameRepo
	players   *fakePlayerRepo
	session   *SessionController
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithConfig(t, config.GameConfig{MaxPoints: 5, RoundLimit: 10})
}

func newTestEnvWithConfig(t *testing.T, gameCfg config.GameConfig) *testEnv {
	t.Helper()

	notifier := newFakeNotifier()
	games := newFakeGameRepo()
	players := &fakePlayerRepo{}
	questions := &fakeQuestionSource{questions: []*models.Question{
		testQuestion(1, "早餐想吃哪一種？", 11, 12, 13),
		testQuestion(2, "放假最想做什麼？", 21, 22, 23),
		testQuestion(3, "夏天消暑的首選？", 31, 32, 33),
	}}

	rooms := NewRoomService(games, players, notifier, gameCfg)
	engine := NewRoundEngine(rooms, questions, notifier)
	// 測試不靠真實計時器，直接呼叫 tick 驅動狀態機
	engine.tickEvery = time.Hour
	session := NewSessionController(rooms, engine, notifier)

	return &testEnv{
		rooms:     rooms,
		engine:    engine,
		notifier:  notifier,
		questions: questions,
		games:     games,
		players:   players,
		session:   session,
	}
}

func testQuestion(id uint, text string, optionIDs ...uint) *models.Question {
	q := &models.Question{Text: text}
	q.ID = id
	for i, optID := range optionIDs {
		opt := models.Option{Model: gorm.Model{ID: optID}, QuestionID: id, Text: fmt.Sprintf("選項%d", i+1)}
		q.Options = append(q.Options, opt)
	}
	return q
}

// roomWithPlayers 建房並讓 n 位玩家加入，全員設為準備完成
func (env *testEnv) roomWithPlayers(t *testing.T, n int) (*Room, []string) {
	t.Helper()

	room, err := env.rooms.CreateRoom()
	require.NoError(t, err)

	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("player-%d", i+1)
		require.NoError(t, env.rooms.Join(room.Code(), id, fmt.Sprintf("玩家%d", i+1)))
		require.NoError(t, env.rooms.SetReady(room.Code(), id, true))
		ids = append(ids, id)
	}
	return room, ids
}

// activeRoundID 從最後一次的題目廣播取出回合編號
func (env *testEnv) activeRoundID(t *testing.T, code string) string {
	t.Helper()

	broadcasts := env.notifier.broadcastsOfType(code, models.MessageTypeRoundQuestion)
	require.NotEmpty(t, broadcasts)
	payload := broadcasts[len(broadcasts)-1].Data.(models.RoundQuestionPayload)
	return payload.RoundID
}

// expireRound 把時鐘撥到截止之後並驅動一次節拍，觸發結算
func (env *testEnv) expireRound(t *testing.T, room *Room) {
	t.Helper()

	env.engine.now = func() time.Time { return time.Now().Add(time.Hour) }
	require.True(t, env.engine.tick(room))
	env.engine.now = time.Now
}

// lastResults 取出最後一次的回合結算廣播
func (env *testEnv) lastResults(t *testing.T, code string) models.RoundResultsPayload {
	t.Helper()

	broadcasts := env.notifier.broadcastsOfType(code, models.MessageTypeRoundResults)
	require.NotEmpty(t, broadcasts)
	return broadcasts[len(broadcasts)-1].Data.(models.RoundResultsPayload)
}

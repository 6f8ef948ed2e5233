package service

import (
	"errors"
	"sync"

	"gorm.io/gorm"

	"minority_game/internal/models"
)

var errStorageDown = errors.New("storage down")

// fakeGameRepo 記憶體版的遊戲紀錄，可以切換成一律失敗
type fakeGameRepo struct {
	mu     sync.Mutex
	games  map[string]uint
	nextID uint
	fail   bool
}

func newFakeGameRepo() *fakeGameRepo {
	return &fakeGameRepo{games: make(map[string]uint)}
}

func (f *fakeGameRepo) UpsertByCode(code string) (*models.Game, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return nil, errStorageDown
	}
	id, ok := f.games[code]
	if !ok {
		f.nextID++
		id = f.nextID
		f.games[code] = id
	}
	game := &models.Game{Code: code}
	game.ID = id
	return game, nil
}

func (f *fakeGameRepo) FindByCode(code string) (*models.Game, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.games[code]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	game := &models.Game{Code: code}
	game.ID = id
	return game, nil
}

// fakePlayerRepo 記憶體版的玩家身份，名稱不分大小寫
type fakePlayerRepo struct {
	mu     sync.Mutex
	names  []string
	nextID uint
	fail   bool
}

func (f *fakePlayerRepo) FindOrCreateByName(name string) (*models.PlayerRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return nil, errStorageDown
	}
	f.names = append(f.names, name)
	f.nextID++
	record := &models.PlayerRecord{Name: name}
	record.ID = f.nextID
	return record, nil
}

// fakeQuestionSource 依序供應題目並記錄每次收到的排除集合
type fakeQuestionSource struct {
	mu        sync.Mutex
	questions []*models.Question
	next      int
	excludes  []map[uint]bool
	err       error
}

func (f *fakeQuestionSource) GetQuestion(excludeIDs map[uint]bool) (*models.Question, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.excludes = append(f.excludes, excludeIDs)
	if f.err != nil {
		return nil, f.err
	}
	q := f.questions[f.next%len(f.questions)]
	f.next++
	return q, nil
}

func (f *fakeQuestionSource) lastExclude() map[uint]bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.excludes) == 0 {
		return nil
	}
	return f.excludes[len(f.excludes)-1]
}

// fakeQuestionRepo 記憶體版的題庫，抽題固定取第一個沒被排除的題目
type fakeQuestionRepo struct {
	mu        sync.Mutex
	questions []models.Question
	fail      bool
}

func (f *fakeQuestionRepo) FindRandomExcluding(excludeIDs []uint) (*models.Question, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return nil, errStorageDown
	}
	excluded := make(map[uint]bool, len(excludeIDs))
	for _, id := range excludeIDs {
		excluded[id] = true
	}
	for i := range f.questions {
		if !excluded[f.questions[i].ID] {
			q := f.questions[i]
			return &q, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeQuestionRepo) Count() (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return 0, errStorageDown
	}
	return int64(len(f.questions)), nil
}

func (f *fakeQuestionRepo) CreateBatch(questions []models.Question) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errStorageDown
	}
	f.questions = append(f.questions, questions...)
	return nil
}

type sentMessage struct {
	roomCode string // 廣播目標，點對點發送時為空
	playerID string
	message  *models.Message
}

// fakeNotifier 記錄所有送出的事件，供測試斷言
type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentMessage
	subs map[string]map[string]bool
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{subs: make(map[string]map[string]bool)}
}

func (f *fakeNotifier) Subscribe(roomCode, playerID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.subs[roomCode] == nil {
		f.subs[roomCode] = make(map[string]bool)
	}
	f.subs[roomCode][playerID] = true
}

func (f *fakeNotifier) Unsubscribe(roomCode, playerID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if members, ok := f.subs[roomCode]; ok {
		delete(members, playerID)
		if len(members) == 0 {
			delete(f.subs, roomCode)
		}
	}
}

func (f *fakeNotifier) BroadcastToRoom(roomCode string, message *models.Message) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMessage{roomCode: roomCode, message: message})
}

func (f *fakeNotifier) SendToPlayer(playerID string, message *models.Message) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMessage{playerID: playerID, message: message})
}

// broadcastsOfType 取出指定房間、指定類型的所有廣播
func (f *fakeNotifier) broadcastsOfType(roomCode, messageType string) []*models.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Message
	for _, s := range f.sent {
		if s.roomCode == roomCode && s.message.Type == messageType {
			out = append(out, s.message)
		}
	}
	return out
}

// lastAckFor 取出某位玩家最後收到的操作回覆
func (f *fakeNotifier) lastAckFor(playerID string) (models.AckPayload, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.sent) - 1; i >= 0; i-- {
		s := f.sent[i]
		if s.playerID == playerID && s.message.Type == models.MessageTypeAck {
			return s.message.Data.(models.AckPayload), true
		}
	}
	return models.AckPayload{}, false
}

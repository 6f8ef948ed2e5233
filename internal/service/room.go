package service

import (
	"math"
	"math/rand/v2"
	"sort"
	"strings"
	"sync"
	"time"

	"minority_game/internal/models"
	"minority_game/internal/repository"
	"minority_game/pkg/config"
)

// 房間代碼的字母表排除了容易混淆的 0/O/1/I
const (
	roomCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	roomCodeLength   = 6
)

const defaultPlayerName = "匿名玩家"

// Player 代表房間內的一個即時玩家
// ID 來自連線時發放的訪客令牌，與連線一對一，斷線即移除
type Player struct {
	ID     string
	Name   string
	Points int
	Ready  bool

	// reachedAt 記錄每個分數第一次達到時的回合數，只用於排行榜同分排序
	reachedAt map[int]int
}

// Round 代表一個進行中的投票回合，結算後不再變動
type Round struct {
	ID       string
	Number   int
	Question models.QuestionInfo
	Options  []models.OptionInfo
	Votes    map[string]uint // 玩家 ID -> 選項 ID，後投的覆蓋先投的
	EndAt    time.Time
}

func (r *Round) hasOption(optionID uint) bool {
	for _, opt := range r.Options {
		if opt.ID == optionID {
			return true
		}
	}
	return false
}

// Room 代表一場遊戲，所有狀態變動都必須持有 mu
type Room struct {
	mu sync.Mutex

	code            string
	gameID          uint
	players         []*Player // 依加入順序排列，第一位就是房主
	former          map[string]*Player
	round           *Round
	roundNumber     int
	usedQuestionIDs map[uint]bool
	maxPoints       int
	roundLimit      int
	gameOver        bool
	timer           *roundTimer
}

func newRoom(code string, gameID uint, maxPoints, roundLimit int) *Room {
	return &Room{
		code:            code,
		gameID:          gameID,
		players:         make([]*Player, 0, 8),
		former:          make(map[string]*Player),
		usedQuestionIDs: make(map[uint]bool),
		maxPoints:       maxPoints,
		roundLimit:      roundLimit,
	}
}

func (r *Room) Code() string {
	return r.code
}

func (r *Room) GameID() uint {
	return r.gameID
}

// IsHost 房主是加入順序的第一位玩家，是推導出來的屬性而不是欄位，
// 房主離開時自動由下一位遞補
func (r *Room) IsHost(playerID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hostID() == playerID
}

// 以下輔助方法都假設呼叫者已持有 r.mu

func (r *Room) hostID() string {
	if len(r.players) == 0 {
		return ""
	}
	return r.players[0].ID
}

func (r *Room) playerByID(id string) *Player {
	for _, p := range r.players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (r *Room) isMember(id string) bool {
	return r.playerByID(id) != nil
}

// scoringPlayer 找出可以得分的玩家：現任成員優先，其次是已離場但票還在的玩家
func (r *Room) scoringPlayer(id string) *Player {
	if p := r.playerByID(id); p != nil {
		return p
	}
	return r.former[id]
}

func (r *Room) allReady() bool {
	if len(r.players) == 0 {
		return false
	}
	for _, p := range r.players {
		if !p.Ready {
			return false
		}
	}
	return true
}

func (r *Room) playerStates() []models.PlayerState {
	states := make([]models.PlayerState, 0, len(r.players))
	for _, p := range r.players {
		states = append(states, models.PlayerState{
			ID:     p.ID,
			Name:   p.Name,
			Points: p.Points,
			Ready:  p.Ready,
		})
	}
	return states
}

// allScoringPlayers 排行榜的母體：現任成員加上已離場的玩家
func (r *Room) allScoringPlayers() []*Player {
	all := make([]*Player, 0, len(r.players)+len(r.former))
	all = append(all, r.players...)
	gone := make([]*Player, 0, len(r.former))
	for _, p := range r.former {
		gone = append(gone, p)
	}
	sort.Slice(gone, func(i, j int) bool { return gone[i].ID < gone[j].ID })
	all = append(all, gone...)
	return all
}

// leaderboard 依分數由高到低排序，同分時先達到該分數的玩家在前
func (r *Room) leaderboard() []models.LeaderboardEntry {
	players := r.allScoringPlayers()
	sort.SliceStable(players, func(i, j int) bool {
		if players[i].Points != players[j].Points {
			return players[i].Points > players[j].Points
		}
		ri, ok := players[i].reachedAt[players[i].Points]
		if !ok {
			ri = math.MaxInt
		}
		rj, ok := players[j].reachedAt[players[j].Points]
		if !ok {
			rj = math.MaxInt
		}
		return ri < rj
	})

	entries := make([]models.LeaderboardEntry, 0, len(players))
	for _, p := range players {
		entries = append(entries, models.LeaderboardEntry{
			Name:      p.Name,
			Points:    p.Points,
			ReachedAt: p.reachedAt[p.Points],
		})
	}
	return entries
}

func (r *Room) stopTimerLocked() {
	if r.timer != nil {
		r.timer.Stop()
	}
}

// RoomSummary 提供給 HTTP 查詢的房間概況
type RoomSummary struct {
	Code        string `json:"code"`
	PlayerCount int    `json:"playerCount"`
	RoundNumber int    `json:"roundNumber"`
	GameOver    bool   `json:"gameOver"`
}

// RoomService 管理所有存活中的房間
// 登記表本身的增刪查用 s.mu 保護，單一房間的狀態用各自的 Room.mu 保護，
// 不同房間之間互不阻塞
type RoomService struct {
	mu         sync.RWMutex
	rooms      map[string]*Room
	gameRepo   repository.GameRepository
	playerRepo repository.PlayerRepository
	notifier   Notifier
	maxPoints  int
	roundLimit int
}

func NewRoomService(gameRepo repository.GameRepository, playerRepo repository.PlayerRepository, notifier Notifier, gameCfg config.GameConfig) *RoomService {
	maxPoints := gameCfg.MaxPoints
	if maxPoints <= 0 {
		maxPoints = 5
	}
	roundLimit := gameCfg.RoundLimit
	if roundLimit <= 0 {
		roundLimit = 10
	}
	return &RoomService{
		rooms:      make(map[string]*Room),
		gameRepo:   gameRepo,
		playerRepo: playerRepo,
		notifier:   notifier,
		maxPoints:  maxPoints,
		roundLimit: roundLimit,
	}
}

// CreateRoom 產生不重複的房間代碼並建立房間
// 先寫入遊戲紀錄，持久層失敗時不會留下半個房間
func (s *RoomService) CreateRoom() (*Room, error) {
	for {
		code := randomRoomCode()
		s.mu.RLock()
		_, exists := s.rooms[code]
		s.mu.RUnlock()
		if exists {
			continue
		}

		game, err := s.gameRepo.UpsertByCode(code)
		if err != nil {
			return nil, err
		}

		s.mu.Lock()
		if _, taken := s.rooms[code]; taken {
			// 取得遊戲紀錄期間代碼被別人用掉了，重抽一個
			s.mu.Unlock()
			continue
		}
		room := newRoom(code, game.ID, s.maxPoints, s.roundLimit)
		s.rooms[code] = room
		s.mu.Unlock()
		return room, nil
	}
}

func randomRoomCode() string {
	b := make([]byte, roomCodeLength)
	for i := range b {
		b[i] = roomCodeAlphabet[rand.IntN(len(roomCodeAlphabet))]
	}
	return string(b)
}

func (s *RoomService) GetRoom(code string) (*Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[code]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return room, nil
}

// RemoveRoom 刪除房間並停掉尚未結束的計時器，對不存在的房間呼叫不會出錯
func (s *RoomService) RemoveRoom(code string) {
	s.mu.Lock()
	room, ok := s.rooms[code]
	delete(s.rooms, code)
	s.mu.Unlock()

	if !ok {
		return
	}
	room.mu.Lock()
	room.stopTimerLocked()
	room.round = nil
	room.mu.Unlock()
}

// Join 把玩家加入房間
// 持久化的玩家身份先寫入，寫入失敗時玩家不會出現在記憶體的房間裡
func (s *RoomService) Join(code, playerID, name string) error {
	room, err := s.GetRoom(code)
	if err != nil {
		return err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = defaultPlayerName
	}

	if _, err := s.playerRepo.FindOrCreateByName(name); err != nil {
		return err
	}

	room.mu.Lock()
	if p := room.playerByID(playerID); p != nil {
		// 已經在房間裡，只更新名稱
		p.Name = name
	} else if p, ok := room.former[playerID]; ok {
		// 回鍋玩家沿用原本的分數，準備狀態重置
		p.Name = name
		p.Ready = false
		room.players = append(room.players, p)
		delete(room.former, playerID)
	} else {
		room.players = append(room.players, &Player{
			ID:        playerID,
			Name:      name,
			reachedAt: make(map[int]int),
		})
	}
	payload := models.RoomStatePayload{RoomID: room.code, Players: room.playerStates()}
	room.mu.Unlock()

	s.notifier.Subscribe(code, playerID)
	s.notifier.BroadcastToRoom(code, &models.Message{Type: models.MessageTypeRoomState, Data: payload})
	return nil
}

// Leave 把玩家移出房間，最後一位離開時整個房間跟著刪除
// 玩家不在這個房間時回報 ErrNotInRoom，任何狀態都不會被動到
// 玩家在進行中回合投的票不會被追溯重算，留給截止時的結算決定
func (s *RoomService) Leave(code, playerID string) error {
	room, err := s.GetRoom(code)
	if err != nil {
		return err
	}

	room.mu.Lock()
	idx := -1
	for i, p := range room.players {
		if p.ID == playerID {
			idx = i
			break
		}
	}
	if idx == -1 {
		room.mu.Unlock()
		return ErrNotInRoom
	}

	p := room.players[idx]
	room.players = append(room.players[:idx], room.players[idx+1:]...)
	p.Ready = false
	room.former[p.ID] = p

	if len(room.players) == 0 {
		room.stopTimerLocked()
		room.mu.Unlock()
		s.notifier.Unsubscribe(code, playerID)
		s.RemoveRoom(code)
		return nil
	}

	payload := models.RoomStatePayload{RoomID: room.code, Players: room.playerStates()}
	room.mu.Unlock()

	s.notifier.Unsubscribe(code, playerID)
	s.notifier.BroadcastToRoom(code, &models.Message{Type: models.MessageTypeRoomState, Data: payload})
	return nil
}

// SetReady 設定玩家的準備狀態並廣播，重複設定相同狀態不會出錯
func (s *RoomService) SetReady(code, playerID string, ready bool) error {
	room, err := s.GetRoom(code)
	if err != nil {
		return err
	}

	room.mu.Lock()
	p := room.playerByID(playerID)
	if p == nil {
		room.mu.Unlock()
		return ErrNotInRoom
	}
	p.Ready = ready

	readyMap := make(map[string]bool, len(room.players))
	for _, member := range room.players {
		readyMap[member.ID] = member.Ready
	}
	payload := models.ReadyStatePayload{Ready: readyMap, AllReady: room.allReady()}
	room.mu.Unlock()

	s.notifier.BroadcastToRoom(code, &models.Message{Type: models.MessageTypeReadyState, Data: payload})
	return nil
}

// Summary 回傳房間概況給 HTTP 查詢使用
func (s *RoomService) Summary(code string) (*RoomSummary, error) {
	room, err := s.GetRoom(code)
	if err != nil {
		return nil, err
	}

	room.mu.Lock()
	defer room.mu.Unlock()
	return &RoomSummary{
		Code:        room.code,
		PlayerCount: len(room.players),
		RoundNumber: room.roundNumber,
		GameOver:    room.gameOver,
	}, nil
}

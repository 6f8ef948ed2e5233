package service

import (
	"encoding/json"
	"sync"

	"minority_game/internal/models"
)

// SessionController 是所有玩家操作的入口
// 負責解析操作封包、呼叫對應的服務、把結果回覆給呼叫者本人
// 操作被拒絕時房間狀態不會有任何變動，也不會廣播給其他玩家
type SessionController struct {
	rooms    *RoomService
	engine   *RoundEngine
	notifier Notifier

	mu          sync.Mutex
	memberships map[string]string // 玩家 ID -> 所在房間代碼，斷線清理用
}

func NewSessionController(rooms *RoomService, engine *RoundEngine, notifier Notifier) *SessionController {
	return &SessionController{
		rooms:       rooms,
		engine:      engine,
		notifier:    notifier,
		memberships: make(map[string]string),
	}
}

// HandleIntent 處理一個來自客戶端的操作封包
// 格式錯誤的封包只會讓呼叫者收到錯誤回覆，不會影響任何房間
func (c *SessionController) HandleIntent(playerID string, data []byte) {
	var intent models.Intent
	if err := json.Unmarshal(data, &intent); err != nil {
		c.notifier.SendToPlayer(playerID, models.NewErrorAckMessage("unknown", CodeBadRequest))
		return
	}

	switch intent.Type {
	case models.IntentCreateRoom:
		c.handleCreateRoom(playerID)
	case models.IntentJoinRoom:
		c.handleJoinRoom(playerID, intent)
	case models.IntentLeaveRoom:
		c.handleLeaveRoom(playerID, intent)
	case models.IntentSetReady:
		c.handleSetReady(playerID, intent)
	case models.IntentStartRound:
		c.handleStartRound(playerID, intent)
	case models.IntentVote:
		c.handleVote(playerID, intent)
	default:
		c.notifier.SendToPlayer(playerID, models.NewErrorAckMessage(intent.Type, CodeBadRequest))
	}
}

// HandleDisconnect 連線中斷時把玩家移出所在的房間
func (c *SessionController) HandleDisconnect(playerID string) {
	c.mu.Lock()
	code, ok := c.memberships[playerID]
	delete(c.memberships, playerID)
	c.mu.Unlock()

	if ok {
		// 房間可能早已刪除，忽略錯誤
		_ = c.rooms.Leave(code, playerID)
	}
}

func (c *SessionController) handleCreateRoom(playerID string) {
	room, err := c.rooms.CreateRoom()
	if err != nil {
		c.notifier.SendToPlayer(playerID, models.NewErrorAckMessage(models.IntentCreateRoom, ErrorCode(err)))
		return
	}
	c.notifier.SendToPlayer(playerID, models.NewAckMessage(models.IntentCreateRoom, models.AckPayload{
		RoomID: room.Code(),
		GameID: room.GameID(),
	}))
}

func (c *SessionController) handleJoinRoom(playerID string, intent models.Intent) {
	// 一個連線同一時間只待在一個房間，換房前先離開舊的
	c.mu.Lock()
	previous, inRoom := c.memberships[playerID]
	c.mu.Unlock()
	if inRoom && previous != intent.RoomID {
		_ = c.rooms.Leave(previous, playerID)
	}

	if err := c.rooms.Join(intent.RoomID, playerID, intent.Name); err != nil {
		c.notifier.SendToPlayer(playerID, models.NewErrorAckMessage(models.IntentJoinRoom, ErrorCode(err)))
		return
	}

	c.mu.Lock()
	c.memberships[playerID] = intent.RoomID
	c.mu.Unlock()

	c.notifier.SendToPlayer(playerID, models.NewAckMessage(models.IntentJoinRoom, models.AckPayload{
		PlayerID: playerID,
	}))
}

func (c *SessionController) handleLeaveRoom(playerID string, intent models.Intent) {
	if err := c.rooms.Leave(intent.RoomID, playerID); err != nil {
		c.notifier.SendToPlayer(playerID, models.NewErrorAckMessage(models.IntentLeaveRoom, ErrorCode(err)))
		return
	}

	// 只清掉對應這個房間的記錄，指錯房間的請求不能動到玩家真正的所在
	c.mu.Lock()
	if c.memberships[playerID] == intent.RoomID {
		delete(c.memberships, playerID)
	}
	c.mu.Unlock()

	c.notifier.SendToPlayer(playerID, models.NewAckMessage(models.IntentLeaveRoom, models.AckPayload{}))
}

func (c *SessionController) handleSetReady(playerID string, intent models.Intent) {
	ready := true
	if intent.Ready != nil {
		ready = *intent.Ready
	}
	if err := c.rooms.SetReady(intent.RoomID, playerID, ready); err != nil {
		c.notifier.SendToPlayer(playerID, models.NewErrorAckMessage(models.IntentSetReady, ErrorCode(err)))
		return
	}
	c.notifier.SendToPlayer(playerID, models.NewAckMessage(models.IntentSetReady, models.AckPayload{}))
}

func (c *SessionController) handleStartRound(playerID string, intent models.Intent) {
	if err := c.engine.StartRound(intent.RoomID, playerID, intent.Duration); err != nil {
		c.notifier.SendToPlayer(playerID, models.NewErrorAckMessage(models.IntentStartRound, ErrorCode(err)))
		return
	}
	c.notifier.SendToPlayer(playerID, models.NewAckMessage(models.IntentStartRound, models.AckPayload{}))
}

func (c *SessionController) handleVote(playerID string, intent models.Intent) {
	if err := c.engine.RecordVote(intent.RoomID, playerID, intent.RoundID, intent.OptionID); err != nil {
		c.notifier.SendToPlayer(playerID, models.NewErrorAckMessage(models.IntentVote, ErrorCode(err)))
		return
	}
	c.notifier.SendToPlayer(playerID, models.NewAckMessage(models.IntentVote, models.AckPayload{}))
}

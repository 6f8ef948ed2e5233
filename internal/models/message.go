package models

// 這個文件定義 WebSocket 上所有訊息的固定結構
// 每個訊息都是帶型別標籤的結構體，欄位錯誤會在邊界直接失敗，
// 而不是散落在程式裡的 map[string]interface{}

// Message 代表一個發往客戶端的訊息封包
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// 訊息類型
const (
	MessageTypeRoomState     = "room_state"
	MessageTypeReadyState    = "ready_state"
	MessageTypeRoundQuestion = "round_question"
	MessageTypeRoundTick     = "round_tick"
	MessageTypeVoteProgress  = "vote_progress"
	MessageTypeRoundResults  = "round_results"
	MessageTypeGameOver      = "game_over"
	MessageTypeAck           = "ack"
)

// Intent 代表客戶端送來的操作請求
// 所有操作共用同一個扁平結構，依 Type 決定哪些欄位有效
type Intent struct {
	Type     string `json:"type"`
	RoomID   string `json:"roomId,omitempty"`
	Name     string `json:"name,omitempty"`
	Ready    *bool  `json:"ready,omitempty"`
	Duration int    `json:"duration,omitempty"`
	RoundID  string `json:"roundId,omitempty"`
	OptionID uint   `json:"optionId,omitempty"`
}

// 操作類型
const (
	IntentCreateRoom = "create_room"
	IntentJoinRoom   = "join_room"
	IntentLeaveRoom  = "leave_room"
	IntentSetReady   = "set_ready"
	IntentStartRound = "start_round"
	IntentVote       = "vote"
)

// PlayerState 房間廣播中的單一玩家狀態
type PlayerState struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Points int    `json:"points"`
	Ready  bool   `json:"ready"`
}

// RoomStatePayload 房間成員變動時廣播的完整狀態
type RoomStatePayload struct {
	RoomID  string        `json:"roomId"`
	Players []PlayerState `json:"players"`
}

// ReadyStatePayload 玩家準備狀態變動時的廣播
type ReadyStatePayload struct {
	Ready    map[string]bool `json:"ready"`
	AllReady bool            `json:"allReady"`
}

// QuestionInfo 回合中使用的題目
type QuestionInfo struct {
	ID   uint   `json:"id"`
	Text string `json:"text"`
}

// OptionInfo 回合中使用的選項
type OptionInfo struct {
	ID   uint   `json:"id"`
	Text string `json:"text"`
}

// RoundQuestionPayload 回合開始時廣播的題目內容
type RoundQuestionPayload struct {
	RoundID     string       `json:"roundId"`
	RoundNumber int          `json:"roundNumber"`
	Question    QuestionInfo `json:"question"`
	Options     []OptionInfo `json:"options"`
}

// RoundTickPayload 倒數計時廣播，每秒一次
type RoundTickPayload struct {
	Remaining int `json:"remaining"`
}

// VoteProgressPayload 每次有效投票後廣播已投票的玩家
type VoteProgressPayload struct {
	RoundID string   `json:"roundId"`
	Voted   []string `json:"voted"`
}

// OptionCount 單一選項的得票數，零票的選項也會出現
type OptionCount struct {
	OptionID uint   `json:"optionId"`
	Count    int    `json:"count"`
	Text     string `json:"text"`
}

// VoteDetail 單一玩家的投票明細
type VoteDetail struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
	OptionID   uint   `json:"optionId"`
}

// LeaderboardEntry 排行榜中的一列
// ReachedAt 是第一次達到目前分數的回合數，用於同分排序
type LeaderboardEntry struct {
	Name      string `json:"name"`
	Points    int    `json:"points"`
	ReachedAt int    `json:"reachedAt,omitempty"`
}

// RoundResultsPayload 回合結算的廣播內容
// WinningOptionID 為 nil 表示最少票並列，本回合沒有贏家
type RoundResultsPayload struct {
	RoundID         string             `json:"roundId"`
	WinningOptionID *uint              `json:"winningOptionId"`
	Counts          []OptionCount      `json:"counts"`
	Votes           []VoteDetail       `json:"votes"`
	Leaderboard     []LeaderboardEntry `json:"leaderboard"`
}

// 遊戲結束原因
const (
	GameOverReasonMaxPoints  = "max_points"
	GameOverReasonRoundLimit = "round_limit"
)

// GameOverPayload 遊戲結束的廣播內容
type GameOverPayload struct {
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
	Reason      string             `json:"reason"`
}

// AckPayload 對單一呼叫者的操作回覆
// 成功時 OK 為 true 並攜帶對應欄位，失敗時 Code 為錯誤代碼
type AckPayload struct {
	Op       string `json:"op"`
	OK       bool   `json:"ok"`
	Code     string `json:"code,omitempty"`
	RoomID   string `json:"roomId,omitempty"`
	GameID   uint   `json:"gameId,omitempty"`
	PlayerID string `json:"playerId,omitempty"`
}

// NewAckMessage 建立一個操作成功的回覆
func NewAckMessage(op string, payload AckPayload) *Message {
	payload.Op = op
	payload.OK = true
	return &Message{Type: MessageTypeAck, Data: payload}
}

// NewErrorAckMessage 建立一個帶錯誤代碼的回覆
func NewErrorAckMessage(op, code string) *Message {
	return &Message{Type: MessageTypeAck, Data: AckPayload{Op: op, OK: false, Code: code}}
}

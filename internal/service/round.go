package service

import (
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"minority_game/internal/models"
)

// 回合時長的上下限（秒）
const (
	minRoundSeconds = 1
	maxRoundSeconds = 300
)

// QuestionSource 供應回合題目，排除集合用來避免同一場遊戲重複出題
type QuestionSource interface {
	GetQuestion(excludeIDs map[uint]bool) (*models.Question, error)
}

// roundTimer 是回合倒數的取消把手
// Stop 可以重複呼叫，也可以在倒數自然結束後呼叫，都不會出錯
type roundTimer struct {
	stop chan struct{}
	once sync.Once
}

func newRoundTimer() *roundTimer {
	return &roundTimer{stop: make(chan struct{})}
}

func (t *roundTimer) Stop() {
	t.once.Do(func() { close(t.stop) })
}

// RoundEngine 驅動回合狀態機：開始、倒數、截止、結算、終局判定
type RoundEngine struct {
	rooms     *RoomService
	questions QuestionSource
	notifier  Notifier

	// 測試時可以縮短節拍、固定時間
	tickEvery time.Duration
	now       func() time.Time
}

func NewRoundEngine(rooms *RoomService, questions QuestionSource, notifier Notifier) *RoundEngine {
	return &RoundEngine{
		rooms:     rooms,
		questions: questions,
		notifier:  notifier,
		tickEvery: time.Second,
		now:       time.Now,
	}
}

// StartRound 開始新的回合
// 只有房主能呼叫，遊戲結束後或回合進行中一律拒絕
// 全員準備的檢查只在第一回合做，之後的回合由房主直接開始
func (e *RoundEngine) StartRound(code, playerID string, durationSeconds int) error {
	room, err := e.rooms.GetRoom(code)
	if err != nil {
		return err
	}

	room.mu.Lock()
	if err := validateStart(room, playerID); err != nil {
		room.mu.Unlock()
		return err
	}
	exclude := make(map[uint]bool, len(room.usedQuestionIDs))
	for id := range room.usedQuestionIDs {
		exclude[id] = true
	}
	room.mu.Unlock()

	// 取題涉及外部 I/O，不能拿著房間鎖等它回來
	question, err := e.questions.GetQuestion(exclude)
	if err != nil {
		return err
	}

	if durationSeconds < minRoundSeconds {
		durationSeconds = minRoundSeconds
	}
	if durationSeconds > maxRoundSeconds {
		durationSeconds = maxRoundSeconds
	}

	room.mu.Lock()
	// 取題期間房間狀態可能變了（房主離開、別人搶先開局），重新驗證
	if err := validateStart(room, playerID); err != nil {
		room.mu.Unlock()
		return err
	}

	room.stopTimerLocked()
	room.roundNumber++
	room.usedQuestionIDs[question.ID] = true

	options := make([]models.OptionInfo, 0, len(question.Options))
	for _, opt := range question.Options {
		options = append(options, models.OptionInfo{ID: opt.ID, Text: opt.Text})
	}
	round := &Round{
		ID:       uuid.NewString(),
		Number:   room.roundNumber,
		Question: models.QuestionInfo{ID: question.ID, Text: question.Text},
		Options:  options,
		Votes:    make(map[string]uint),
		EndAt:    e.now().Add(time.Duration(durationSeconds) * time.Second),
	}
	room.round = round
	timer := newRoundTimer()
	room.timer = timer

	payload := models.RoundQuestionPayload{
		RoundID:     round.ID,
		RoundNumber: round.Number,
		Question:    round.Question,
		Options:     round.Options,
	}
	room.mu.Unlock()

	e.notifier.BroadcastToRoom(code, &models.Message{Type: models.MessageTypeRoundQuestion, Data: payload})
	go e.runTimer(room, timer)
	return nil
}

func validateStart(room *Room, playerID string) error {
	if room.gameOver {
		return ErrGameOver
	}
	if !room.isMember(playerID) {
		return ErrNotInRoom
	}
	if room.hostID() != playerID {
		return ErrNotHost
	}
	if room.round != nil {
		return ErrRoundActive
	}
	if room.roundNumber == 0 && !room.allReady() {
		return ErrNotAllReady
	}
	return nil
}

// runTimer 以固定一秒的節拍倒數，截止時在同一個節拍內完成結算
func (e *RoundEngine) runTimer(room *Room, timer *roundTimer) {
	ticker := time.NewTicker(e.tickEvery)
	defer ticker.Stop()

	for {
		select {
		case <-timer.stop:
			return
		case <-ticker.C:
			if e.tick(room) {
				return
			}
		}
	}
}

// tick 處理一次節拍，回合結束時回傳 true
// 房間被刪或回合被清掉時安靜退場，遲到的節拍不會造成任何影響
func (e *RoundEngine) tick(room *Room) bool {
	room.mu.Lock()
	round := room.round
	if round == nil {
		room.mu.Unlock()
		return true
	}

	remaining := int(math.Ceil(round.EndAt.Sub(e.now()).Seconds()))
	if remaining > 0 {
		room.mu.Unlock()
		e.notifier.BroadcastToRoom(room.code, &models.Message{
			Type: models.MessageTypeRoundTick,
			Data: models.RoundTickPayload{Remaining: remaining},
		})
		return false
	}

	// 截止：先清掉回合引用再結算，兩者在同一個臨界區內完成，
	// 從這一刻起任何對這個回合的投票都會被拒絕
	room.round = nil
	room.stopTimerLocked()
	e.tallyLocked(room, round)
	room.mu.Unlock()
	return true
}

// RecordVote 記錄一票，晚到的回合編號或無效選項都會被拒絕且不影響狀態
func (e *RoundEngine) RecordVote(code, playerID, roundID string, optionID uint) error {
	room, err := e.rooms.GetRoom(code)
	if err != nil {
		return err
	}

	room.mu.Lock()
	round := room.round
	if round == nil || round.ID != roundID {
		room.mu.Unlock()
		return ErrRoundClosed
	}
	if !round.hasOption(optionID) {
		room.mu.Unlock()
		return ErrBadOption
	}
	if !room.isMember(playerID) {
		room.mu.Unlock()
		return ErrNotInRoom
	}

	round.Votes[playerID] = optionID
	payload := models.VoteProgressPayload{RoundID: round.ID, Voted: votedIDs(room, round)}
	room.mu.Unlock()

	e.notifier.BroadcastToRoom(code, &models.Message{Type: models.MessageTypeVoteProgress, Data: payload})
	return nil
}

// votedIDs 依加入順序列出已投票的玩家，離場玩家的票排在後面
func votedIDs(room *Room, round *Round) []string {
	ids := make([]string, 0, len(round.Votes))
	for _, p := range room.players {
		if _, ok := round.Votes[p.ID]; ok {
			ids = append(ids, p.ID)
		}
	}
	gone := make([]string, 0)
	for id := range round.Votes {
		if room.playerByID(id) == nil {
			gone = append(gone, id)
		}
	}
	sort.Strings(gone)
	return append(ids, gone...)
}

// tallyLocked 結算一個回合，呼叫者必須持有 room.mu 且已把 room.round 清空
func (e *RoundEngine) tallyLocked(room *Room, round *Round) {
	// 每個選項都從零開始計數，零票的選項也要出現在結果裡
	counts := make(map[uint]int, len(round.Options))
	for _, opt := range round.Options {
		counts[opt.ID] = 0
	}
	for _, optionID := range round.Votes {
		if _, ok := counts[optionID]; !ok {
			// 防禦：不屬於本回合的選項直接忽略
			continue
		}
		counts[optionID]++
	}

	// 最少票獲勝：只看得票大於零的選項，最小值必須唯一才有贏家
	var winning *uint
	minCount := 0
	tied := false
	for _, opt := range round.Options {
		c := counts[opt.ID]
		if c == 0 {
			continue
		}
		if winning == nil || c < minCount {
			id := opt.ID
			winning = &id
			minCount = c
			tied = false
			continue
		}
		if c == minCount {
			tied = true
		}
	}
	if tied {
		winning = nil
	}

	if winning != nil {
		for playerID, optionID := range round.Votes {
			if optionID != *winning {
				continue
			}
			// 投完票才離場的玩家照樣得分
			p := room.scoringPlayer(playerID)
			if p == nil {
				continue
			}
			p.Points++
			if _, ok := p.reachedAt[p.Points]; !ok {
				p.reachedAt[p.Points] = round.Number
			}
		}
	}

	countsPayload := make([]models.OptionCount, 0, len(round.Options))
	for _, opt := range round.Options {
		countsPayload = append(countsPayload, models.OptionCount{
			OptionID: opt.ID,
			Count:    counts[opt.ID],
			Text:     opt.Text,
		})
	}

	votesPayload := make([]models.VoteDetail, 0, len(round.Votes))
	for _, playerID := range votedIDs(room, round) {
		detail := models.VoteDetail{PlayerID: playerID, OptionID: round.Votes[playerID]}
		if p := room.scoringPlayer(playerID); p != nil {
			detail.PlayerName = p.Name
		}
		votesPayload = append(votesPayload, detail)
	}

	e.notifier.BroadcastToRoom(room.code, &models.Message{
		Type: models.MessageTypeRoundResults,
		Data: models.RoundResultsPayload{
			RoundID:         round.ID,
			WinningOptionID: winning,
			Counts:          countsPayload,
			Votes:           votesPayload,
			Leaderboard:     room.leaderboard(),
		},
	})

	// 終局判定：達到目標分數優先於回合數上限
	maxed := false
	for _, p := range room.allScoringPlayers() {
		if p.Points >= room.maxPoints {
			maxed = true
			break
		}
	}
	switch {
	case maxed:
		e.endGameLocked(room, models.GameOverReasonMaxPoints)
	case round.Number >= room.roundLimit:
		e.endGameLocked(room, models.GameOverReasonRoundLimit)
	}
	// 兩者都沒觸發時 room.round 已被清空，等待下一次 StartRound
}

// EndGame 提前結束遊戲，重複呼叫不會重複廣播
func (e *RoundEngine) EndGame(code, reason string) error {
	room, err := e.rooms.GetRoom(code)
	if err != nil {
		return err
	}

	room.mu.Lock()
	e.endGameLocked(room, reason)
	room.mu.Unlock()
	return nil
}

func (e *RoundEngine) endGameLocked(room *Room, reason string) {
	if room.gameOver {
		return
	}
	room.gameOver = true
	room.stopTimerLocked()
	room.round = nil

	e.notifier.BroadcastToRoom(room.code, &models.Message{
		Type: models.MessageTypeGameOver,
		Data: models.GameOverPayload{Leaderboard: room.leaderboard(), Reason: reason},
	})
}

package service

import "errors"

// 服務層的錯誤一律用具名的 sentinel error 回傳給呼叫者
// 由 SessionController 轉換成線路上的錯誤代碼，不會廣播給其他玩家
var (
	ErrRoomNotFound = errors.New("房間不存在")
	ErrNotInRoom    = errors.New("玩家不在房間內")
	ErrNotHost      = errors.New("只有房主可以開始回合")
	ErrNotAllReady  = errors.New("尚有玩家未準備")
	ErrRoundActive  = errors.New("回合已在進行中")
	ErrRoundClosed  = errors.New("回合已結束或編號不符")
	ErrBadOption    = errors.New("無效的選項")
	ErrGameOver     = errors.New("遊戲已經結束")
	ErrNoQuestions  = errors.New("題庫是空的")
)

// 線路上的錯誤代碼
const (
	CodeBadRequest   = "BAD_REQUEST"
	CodeRoomNotFound = "ROOM_NOT_FOUND"
	CodeNotInRoom    = "NOT_IN_ROOM"
	CodeNotHost      = "NOT_HOST"
	CodeNotAllReady  = "NOT_ALL_READY"
	CodeRoundActive  = "ROUND_ACTIVE"
	CodeRoundClosed  = "ROUND_CLOSED"
	CodeBadOption    = "BAD_OPTION"
	CodeGameOver     = "GAME_OVER"
	CodeNoQuestions  = "NO_QUESTIONS"
	CodeStorageError = "STORAGE_ERROR"
)

// ErrorCode 把服務層錯誤對應到線路上的錯誤代碼
// 不認識的錯誤（資料庫斷線等基礎設施問題）一律回報 STORAGE_ERROR
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrRoomNotFound):
		return CodeRoomNotFound
	case errors.Is(err, ErrNotInRoom):
		return CodeNotInRoom
	case errors.Is(err, ErrNotHost):
		return CodeNotHost
	case errors.Is(err, ErrNotAllReady):
		return CodeNotAllReady
	case errors.Is(err, ErrRoundActive):
		return CodeRoundActive
	case errors.Is(err, ErrRoundClosed):
		return CodeRoundClosed
	case errors.Is(err, ErrBadOption):
		return CodeBadOption
	case errors.Is(err, ErrGameOver):
		return CodeGameOver
	case errors.Is(err, ErrNoQuestions):
		return CodeNoQuestions
	default:
		return CodeStorageError
	}
}

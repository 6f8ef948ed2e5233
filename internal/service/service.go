package service

import (
	"minority_game/internal/repository"
	"minority_game/pkg/config"
)

type Services struct {
	Room      *RoomService
	Round     *RoundEngine
	Question  *QuestionService
	Session   *SessionController
	WebSocket *WebSocketManager
}

func NewServices(repos *repository.Repositories, gameCfg config.GameConfig) *Services {
	wsManager := NewWebSocketManager()

	questionService := NewQuestionService(repos.Question)
	roomService := NewRoomService(repos.Game, repos.Player, wsManager, gameCfg)
	roundEngine := NewRoundEngine(roomService, questionService, wsManager)
	sessionController := NewSessionController(roomService, roundEngine, wsManager)

	// 連線層收到的封包交給會話層分派
	wsManager.SetSessionHandler(sessionController)

	return &Services{
		Room:      roomService,
		Round:     roundEngine,
		Question:  questionService,
		Session:   sessionController,
		WebSocket: wsManager,
	}
}

package service

import (
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"minority_game/internal/models"
)

// Notifier 是引擎對外發送事件的出口
// 廣播送給房間的所有訂閱者，SendToPlayer 只送給呼叫者本人（操作回覆用）
type Notifier interface {
	Subscribe(roomCode, playerID string)
	Unsubscribe(roomCode, playerID string)
	BroadcastToRoom(roomCode string, message *models.Message)
	SendToPlayer(playerID string, message *models.Message)
}

// SessionHandler 由 WebSocketManager 回呼，把收到的封包交給會話層處理
type SessionHandler interface {
	HandleIntent(playerID string, data []byte)
	HandleDisconnect(playerID string)
}

// Client 代表一個 WebSocket 客戶端連接
type Client struct {
	Conn     *websocket.Conn
	PlayerID string
	SendChan chan *models.Message // 消息發送通道，用於異步傳送消息
}

// WebSocketManager 管理所有的 WebSocket 連接和消息傳遞
// 一個玩家同一時間只有一條連線，房間訂閱表由 Subscribe/Unsubscribe 維護
type WebSocketManager struct {
	clients    map[string]*Client         // 玩家 ID -> 連線
	rooms      map[string]map[string]bool // 房間代碼 -> 訂閱的玩家 ID
	clientsMux sync.RWMutex
	session    SessionHandler
}

func NewWebSocketManager() *WebSocketManager {
	return &WebSocketManager{
		clients: make(map[string]*Client),
		rooms:   make(map[string]map[string]bool),
	}
}

// SetSessionHandler 注入會話層，必須在第一條連線進來之前完成
func (m *WebSocketManager) SetSessionHandler(handler SessionHandler) {
	m.session = handler
}

// HandleConnection 處理新的 WebSocket 連接請求，阻塞到連線關閉為止
func (m *WebSocketManager) HandleConnection(conn *websocket.Conn, playerID string) {
	client := &Client{
		Conn:     conn,
		PlayerID: playerID,
		SendChan: make(chan *models.Message, 256),
	}

	if old := m.addClient(client); old != nil {
		old.Conn.Close()
	}

	// 確保連接關閉時清理資源
	// 斷線通知只在這條連線還是登記中的那條時才發，
	// 被新連線取代的舊連線收尾時不能把重連的玩家踢出房間
	defer func() {
		removed := m.removeClient(client)
		conn.Close()
		if removed && m.session != nil {
			m.session.HandleDisconnect(playerID)
		}
	}()

	go m.writePump(client)
	m.readPump(client)
}

// readPump 持續監聽並處理從客戶端接收的封包
func (m *WebSocketManager) readPump(client *Client) {
	client.Conn.SetReadLimit(4096)
	client.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	client.Conn.SetPongHandler(func(string) error {
		client.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, data, err := client.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("websocket unexpected close error: %v", err)
			}
			break
		}

		if m.session != nil {
			m.session.HandleIntent(client.PlayerID, data)
		}
	}
}

// writePump 處理向客戶端發送消息的邏輯，並定期送出心跳
func (m *WebSocketManager) writePump(client *Client) {
	ticker := time.NewTicker(54 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case message, ok := <-client.SendChan:
			client.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := client.Conn.WriteJSON(message); err != nil {
				return
			}
		case <-ticker.C:
			client.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := client.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Subscribe 把玩家掛進房間的廣播名單
func (m *WebSocketManager) Subscribe(roomCode, playerID string) {
	m.clientsMux.Lock()
	defer m.clientsMux.Unlock()

	if m.rooms[roomCode] == nil {
		m.rooms[roomCode] = make(map[string]bool)
	}
	m.rooms[roomCode][playerID] = true
}

// Unsubscribe 把玩家移出房間的廣播名單，名單空了就整個刪掉
func (m *WebSocketManager) Unsubscribe(roomCode, playerID string) {
	m.clientsMux.Lock()
	defer m.clientsMux.Unlock()

	if members, ok := m.rooms[roomCode]; ok {
		delete(members, playerID)
		if len(members) == 0 {
			delete(m.rooms, roomCode)
		}
	}
}

// BroadcastToRoom 把消息發送給房間內的所有訂閱者
// 發送隊列滿的客戶端視為失速連線，直接斷開
func (m *WebSocketManager) BroadcastToRoom(roomCode string, message *models.Message) {
	m.clientsMux.RLock()
	targets := make([]*Client, 0, len(m.rooms[roomCode]))
	for playerID := range m.rooms[roomCode] {
		if client, ok := m.clients[playerID]; ok {
			targets = append(targets, client)
		}
	}
	m.clientsMux.RUnlock()

	for _, client := range targets {
		m.send(client, message)
	}
}

// SendToPlayer 把消息只發送給指定玩家，用於操作回覆
func (m *WebSocketManager) SendToPlayer(playerID string, message *models.Message) {
	m.clientsMux.RLock()
	client, ok := m.clients[playerID]
	m.clientsMux.RUnlock()

	if ok {
		m.send(client, message)
	}
}

func (m *WebSocketManager) send(client *Client, message *models.Message) {
	select {
	case client.SendChan <- message:
		// 消息成功加入發送隊列
	default:
		// 客戶端消息隊列已滿，關閉連接
		// 讀取迴圈會跟著失敗，登記的移除和斷線通知由它的收尾負責
		client.Conn.Close()
	}
}

// addClient 安全地添加新的客戶端連接
// 同一個玩家重複連線時，舊連線會被新連線取代，回傳被取代的舊連線
func (m *WebSocketManager) addClient(client *Client) *Client {
	m.clientsMux.Lock()
	defer m.clientsMux.Unlock()

	old := m.clients[client.PlayerID]
	m.clients[client.PlayerID] = client
	return old
}

// removeClient 安全地移除客戶端連接
// 只有登記中的連線本人能移除自己，回傳是否真的移除了
func (m *WebSocketManager) removeClient(client *Client) bool {
	m.clientsMux.Lock()
	defer m.clientsMux.Unlock()

	if current, ok := m.clients[client.PlayerID]; ok && current == client {
		delete(m.clients, client.PlayerID)
		return true
	}
	return false
}

// OnlineCount 回傳目前在線的連線數量
func (m *WebSocketManager) OnlineCount() int {
	m.clientsMux.RLock()
	defer m.clientsMux.RUnlock()

	return len(m.clients)
}

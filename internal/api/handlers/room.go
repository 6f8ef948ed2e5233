package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"minority_game/internal/service"
)

// RoomHandler 處理房間查詢相關的請求
// 房間的建立與加入都走 WebSocket 操作封包，HTTP 只提供唯讀的概況
type RoomHandler struct {
	roomService *service.RoomService
}

// NewRoomHandler 創建一個新的 RoomHandler 實例
func NewRoomHandler(roomService *service.RoomService) *RoomHandler {
	return &RoomHandler{roomService: roomService}
}

// GetRoom 處理獲取房間概況的請求
func (h *RoomHandler) GetRoom(c *gin.Context) {
	code := c.Param("code")

	summary, err := h.roomService.Summary(code)
	if err != nil {
		if errors.Is(err, service.ErrRoomNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "房間不存在"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "無法查詢房間"})
		return
	}

	c.JSON(http.StatusOK, summary)
}

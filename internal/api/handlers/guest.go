package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"minority_game/internal/utils"
)

// GuestHandler 發放訪客令牌
// 沒有帳號系統，每次請求生成一個全新的不透明玩家 ID 並簽進令牌裡
type GuestHandler struct{}

func NewGuestHandler() *GuestHandler {
	return &GuestHandler{}
}

// CreateGuest 處理訪客令牌的發放
func (h *GuestHandler) CreateGuest(c *gin.Context) {
	playerID := uuid.NewString()

	token, err := utils.GenerateToken(playerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "獲取token失敗"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":    token,
		"playerId": playerID,
	})
}

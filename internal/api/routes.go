package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"minority_game/internal/api/handlers"
	"minority_game/internal/middleware"
	"minority_game/internal/service"
)

func SetupRoutes(r *gin.Engine, services *service.Services) {
	// 初始化 handlers
	guestHandler := handlers.NewGuestHandler()
	roomHandler := handlers.NewRoomHandler(services.Room)
	wsHandler := handlers.NewWebSocketHandler(services.WebSocket)

	// API 路由群組
	api := r.Group("/api")

	// 處理 404 錯誤
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "找不到該路徑",
		})
	})

	// 公開路由
	{
		// 訪客令牌發放
		api.POST("/guest", guestHandler.CreateGuest)

		// 基本的健康檢查
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"status": "ok",
				"online": services.WebSocket.OnlineCount(),
			})
		})
	}

	// 需要驗證的路由
	authorized := api.Group("/")
	authorized.Use(middleware.AuthMiddleware())
	{
		// 房間概況查詢
		authorized.GET("/rooms/:code", roomHandler.GetRoom)

		// WebSocket 連接點，所有遊戲操作都走這條連線
		authorized.GET("/ws", wsHandler.HandleWebSocket)
	}
}

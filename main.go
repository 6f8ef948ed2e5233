package main

import (
	"log"

	"github.com/gin-gonic/gin"

	"minority_game/internal/api"
	"minority_game/internal/models"
	"minority_game/internal/repository"
	"minority_game/internal/service"
	"minority_game/internal/storage"
	"minority_game/pkg/config"
)

func main() {
	// 載入應用程式配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化資料庫連接
	db, err := storage.NewPostgresDB(cfg.DB.Host, cfg.DB.User, cfg.DB.Password, cfg.DB.Name, cfg.DB.Port)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// 自動遷移資料庫結構
	if err := db.AutoMigrate(&models.Game{}, &models.PlayerRecord{}, &models.Question{}, &models.Option{}); err != nil {
		log.Fatalf("Failed to auto migrate database: %v", err)
	}

	// 初始化 repositories 和 services
	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, cfg.Game)

	// 題庫為空時寫入預設題組，讓新部署能直接開局
	if err := services.Question.EnsureDefaultQuestions(defaultQuestions()); err != nil {
		log.Fatalf("Failed to seed questions: %v", err)
	}

	// 設置 Gin 路由
	r := gin.Default()
	api.SetupRoutes(r, services)

	// 啟動伺服器
	if err := r.Run(cfg.Server.Address); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}

// defaultQuestions 預設題組，選項沒有對錯，拼的是猜中少數派
func defaultQuestions() []models.Question {
	return []models.Question{
		{
			Text: "早餐想吃哪一種？",
			Options: []models.Option{
				{Text: "飯糰"}, {Text: "蛋餅"}, {Text: "吐司"}, {Text: "什麼都不吃"},
			},
		},
		{
			Text: "放假最想做什麼？",
			Options: []models.Option{
				{Text: "睡到自然醒"}, {Text: "出門踏青"}, {Text: "打電動"}, {Text: "加班賺錢"},
			},
		},
		{
			Text: "只能留一個 App，你留哪個？",
			Options: []models.Option{
				{Text: "通訊軟體"}, {Text: "影音平台"}, {Text: "地圖"}, {Text: "行動支付"},
			},
		},
		{
			Text: "夏天消暑的首選？",
			Options: []models.Option{
				{Text: "冰淇淋"}, {Text: "冷氣房"}, {Text: "游泳"}, {Text: "剉冰"},
			},
		},
		{
			Text: "搭長途車你會？",
			Options: []models.Option{
				{Text: "睡覺"}, {Text: "看窗外"}, {Text: "滑手機"}, {Text: "跟旁邊的人聊天"},
			},
		},
		{
			Text: "突然多一天假，你會？",
			Options: []models.Option{
				{Text: "待在家"}, {Text: "臨時出遊"}, {Text: "約朋友吃飯"}, {Text: "大掃除"},
			},
		},
		{
			Text: "宵夜的最佳選擇？",
			Options: []models.Option{
				{Text: "鹽酥雞"}, {Text: "泡麵"}, {Text: "滷味"}, {Text: "忍住不吃"},
			},
		},
		{
			Text: "選一種超能力？",
			Options: []models.Option{
				{Text: "隱形"}, {Text: "飛行"}, {Text: "讀心"}, {Text: "時間暫停"},
			},
		},
	}
}

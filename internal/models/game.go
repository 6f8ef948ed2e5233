package models

import (
	"gorm.io/gorm"
)

// Game 表示一場遊戲的持久化紀錄，以房間代碼為唯一鍵
type Game struct {
	gorm.Model
	Code string `gorm:"uniqueIndex;not null;type:varchar(6)" json:"code"` // 房間代碼，6 個字符
}

package models

import (
	"gorm.io/gorm"
)

// PlayerRecord 表示玩家的持久化身份
// 名稱比對不分大小寫，相同名稱會重複使用同一筆紀錄
type PlayerRecord struct {
	gorm.Model
	Name string `gorm:"not null;index" json:"name"`
}

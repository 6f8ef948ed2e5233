package models

import (
	"gorm.io/gorm"
)

// Question 表示一道題目及其選項
type Question struct {
	gorm.Model
	Text    string   `gorm:"type:text;not null" json:"text"`
	Options []Option `gorm:"foreignKey:QuestionID" json:"options"`
}

// Option 表示題目的一個選項
type Option struct {
	gorm.Model
	QuestionID uint   `gorm:"index;not null" json:"question_id"`
	Text       string `gorm:"type:text;not null" json:"text"`
}

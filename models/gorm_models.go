package models

import (
	"gorm.io/gorm"
)

// GormHighscore is a leaderboard row.
type GormHighscore struct {
	gorm.Model
	Name  string `gorm:"index;not null"`
	Score int    `gorm:"not null;index"`
}

// GormMatchRecord archives a finished match.
type GormMatchRecord struct {
	gorm.Model
	RoomID  string                 `gorm:"index;not null"`
	Players map[string]interface{} `gorm:"type:jsonb;not null"`
}

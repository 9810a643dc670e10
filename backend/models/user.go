package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Email        string `gorm:"unique;not null"`
	PasswordHash string `gorm:"not null" json:"-"`
	Name         string `gorm:"not null"`
	Role         Role   `gorm:"default:student"`
	Avatar       string

	// Profile aggregate. TotalXP only ever grows; Level is derived from it.
	Level          int `gorm:"default:1"`
	TotalXP        int `gorm:"default:0"`
	Streak         int `gorm:"default:0"`
	LastActiveDate *time.Time
}

type LoginHistory struct {
	gorm.Model
	UserID    uint
	LoginTime time.Time
}

// LevelForXP derives the profile level from accumulated XP.
// Every 1000 XP is one level, starting at level 1.
func LevelForXP(totalXP int) int {
	if totalXP < 0 {
		return 1
	}
	return totalXP/1000 + 1
}

package models

import (
	"time"

	"gorm.io/gorm"
)

// Achievement is an immutable award. A user holds at most one per type; the
// composite unique index is what makes awarding race-safe.
type Achievement struct {
	gorm.Model
	UserID      uint   `gorm:"uniqueIndex:idx_achievement_user_type;not null"`
	Type        string `gorm:"uniqueIndex:idx_achievement_user_type;not null"`
	Title       string
	Description string
	Icon        string
	Points      int
	EarnedAt    time.Time
}

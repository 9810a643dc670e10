package models

import (
	"time"

	"gorm.io/gorm"
)

type ProgressStatus string

const (
	StatusNotStarted ProgressStatus = "not_started"
	StatusInProgress ProgressStatus = "in_progress"
	StatusCompleted  ProgressStatus = "completed"
)

func (s ProgressStatus) Valid() bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Progress is one learner's state on one lesson. The (UserID, LessonID) pair
// is unique; the composite index backs the conditional upsert in
// services.ProgressService.
type Progress struct {
	gorm.Model
	UserID      uint `gorm:"uniqueIndex:idx_progress_user_lesson;not null"`
	LessonID    uint `gorm:"uniqueIndex:idx_progress_user_lesson;not null"`
	CourseID    uint `gorm:"index;not null"`
	ClassroomID *uint
	Status      ProgressStatus `gorm:"default:not_started"`
	Score       int            `gorm:"default:0"`
	TimeSpent   int            `gorm:"default:0"` // minutes, accumulative
	CompletedAt *time.Time     // set once, on first transition to completed
	Attempts    int            `gorm:"default:0"`
}

// ProgressUpdate carries the optional fields of an update. TimeSpent is a
// delta added to the stored total, not a replacement.
type ProgressUpdate struct {
	Status    *ProgressStatus `json:"status"`
	Score     *int            `json:"score"`
	TimeSpent *int            `json:"time_spent"`
}

package models

import "gorm.io/gorm"

type Classroom struct {
	gorm.Model
	Name        string `gorm:"not null"`
	Description string
	TeacherID   uint `gorm:"index;not null"`
	MaxStudents int  `gorm:"default:20"`
	// Students counts the membership rows. It is only ever changed with a
	// conditional increment in the same transaction as the membership row,
	// so it never exceeds MaxStudents.
	Students   int    `gorm:"default:0"`
	InviteCode string `gorm:"uniqueIndex;not null"`
	IsActive   bool   `gorm:"default:true"`
}

// ClassroomStudent is a membership row, not ownership of the user.
type ClassroomStudent struct {
	ClassroomID uint `gorm:"primaryKey"`
	UserID      uint `gorm:"primaryKey"`
}

type ClassroomCourse struct {
	ClassroomID uint `gorm:"primaryKey"`
	CourseID    uint `gorm:"primaryKey"`
}

package models

import "gorm.io/gorm"

type LessonType string

const (
	LessonTheory   LessonType = "theory"
	LessonPractice LessonType = "practice"
	LessonCoding   LessonType = "coding"
)

type Course struct {
	gorm.Model
	Title         string `gorm:"not null"`
	Description   string
	SequenceOrder int    `gorm:"default:1"`
	Color         string `gorm:"default:'from-blue-500 to-indigo-600'"`
	IsPublished   bool   `gorm:"default:true"`
	CreatedBy     uint
	Lessons       []Lesson
}

type Lesson struct {
	gorm.Model
	CourseID    uint `gorm:"index;not null"`
	Title       string
	Description string
	Content     string
	Type        LessonType `gorm:"default:theory"`
	Duration    int        // minutes
	// Unique per course; duplicates are rejected at write time so display
	// order stays well-defined.
	SequenceOrder   int
	CodingChallenge *CodingChallenge
}

type CodingChallenge struct {
	gorm.Model
	LessonID   uint `gorm:"uniqueIndex"`
	Template   string
	Solution   string
	Points     int    `gorm:"default:10"`
	Difficulty string `gorm:"default:easy"` // easy, medium, hard
	Hints      string // newline-separated
	TestCases  []ChallengeTestCase
}

type ChallengeTestCase struct {
	gorm.Model
	CodingChallengeID uint `gorm:"index"`
	Input             string
	ExpectedOutput    string
}

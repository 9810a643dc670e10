package models

import "time"

// Projections computed on demand by services.AnalyticsService. Nothing here
// is persisted.

type CourseAnalytics struct {
	CourseID          uint    `json:"course_id"`
	CourseName        string  `json:"course_name"`
	TotalStudents     int     `json:"total_students"`
	TotalLessons      int     `json:"total_lessons"`
	AverageCompletion float64 `json:"average_completion"`
}

type LessonStats struct {
	LessonID       uint    `json:"lesson_id"`
	LessonTitle    string  `json:"lesson_title"`
	TotalAttempts  int     `json:"total_attempts"`
	Completions    int     `json:"completions"`
	CompletionRate float64 `json:"completion_rate"`
	AverageScore   float64 `json:"average_score"`
}

type CourseDetailedAnalytics struct {
	CourseID         uint          `json:"course_id"`
	CourseName       string        `json:"course_name"`
	TotalStudents    int           `json:"total_students"`
	TotalLessons     int           `json:"total_lessons"`
	TotalCompletions int           `json:"total_completions"`
	LessonStats      []LessonStats `json:"lesson_stats"`
}

type StudentProgressSummary struct {
	UserID             uint    `json:"user_id"`
	UserName           string  `json:"user_name"`
	TotalLessons       int     `json:"total_lessons"`
	CompletedLessons   int     `json:"completed_lessons"`
	TotalScore         int     `json:"total_score"`
	ProgressPercentage float64 `json:"progress_percentage"`
}

type ClassroomAnalytics struct {
	ClassroomID      uint                     `json:"classroom_id"`
	ClassroomName    string                   `json:"classroom_name"`
	TotalStudents    int                      `json:"total_students"`
	ActiveStudents   int                      `json:"active_students"`
	AverageProgress  float64                  `json:"average_progress"`
	TotalCompletions int                      `json:"total_completions"`
	StudentsProgress []StudentProgressSummary `json:"students_progress"`
}

type CourseProgressSummary struct {
	CourseID           uint    `json:"course_id"`
	CourseName         string  `json:"course_name"`
	TotalLessons       int     `json:"total_lessons"`
	CompletedLessons   int     `json:"completed_lessons"`
	ProgressPercentage float64 `json:"progress_percentage"`
	TimeSpent          int     `json:"time_spent"`
}

type DashboardSummary struct {
	TotalProgress      float64                 `json:"total_progress"`
	CompletedLessons   int                     `json:"completed_lessons"`
	TotalLessons       int                     `json:"total_lessons"`
	TotalXP            int                     `json:"total_xp"`
	Streak             int                     `json:"streak"`
	Level              int                     `json:"level"`
	CourseProgress     []CourseProgressSummary `json:"course_progress"`
	RecentAchievements []Achievement           `json:"recent_achievements"`
}

type StudentAnalytics struct {
	StudentID        uint                    `json:"student_id"`
	StudentName      string                  `json:"student_name"`
	TotalXP          int                     `json:"total_xp"`
	Level            int                     `json:"level"`
	Streak           int                     `json:"streak"`
	TotalLessons     int                     `json:"total_lessons"`
	CompletedLessons int                     `json:"completed_lessons"`
	TotalStudyTime   int                     `json:"total_study_time"`
	AchievementCount int                     `json:"achievement_count"`
	CourseBreakdown  []CourseProgressSummary `json:"course_breakdown"`
}

type PlatformDashboard struct {
	TotalUsers      int64      `json:"total_users"`
	TotalStudents   int64      `json:"total_students"`
	TotalTeachers   int64      `json:"total_teachers"`
	TotalCourses    int64      `json:"total_courses"`
	TotalLessons    int64      `json:"total_lessons"`
	TotalClassrooms int64      `json:"total_classrooms"`
	ActiveUsers     int64      `json:"active_users"`
	GeneratedAt     time.Time  `json:"generated_at"`
	RecentActivity  []Activity `json:"recent_activity"`
}

type Activity struct {
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Timestamp time.Time `json:"timestamp"`
}

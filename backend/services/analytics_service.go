package services

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"goacademy/backend/models"

	"gorm.io/gorm"
)

// AnalyticsService computes every statistic on demand from the raw rows.
// Nothing is cached or persisted; each read reflects committed state at the
// time of the query.
type AnalyticsService struct {
	DB *gorm.DB
}

func NewAnalyticsService(db *gorm.DB) *AnalyticsService {
	return &AnalyticsService{DB: db}
}

// CourseAnalytics rolls up every course. averageCompletion is the share of
// progress rows that reached completed, 0 when there are no rows at all.
func (as *AnalyticsService) CourseAnalytics() ([]models.CourseAnalytics, error) {
	var courses []models.Course
	if err := as.DB.Order("sequence_order, id").Find(&courses).Error; err != nil {
		return nil, err
	}

	analytics := make([]models.CourseAnalytics, 0, len(courses))
	for _, course := range courses {
		var lessons int64
		if err := as.DB.Model(&models.Lesson{}).Where("course_id = ?", course.ID).Count(&lessons).Error; err != nil {
			return nil, err
		}

		var rows []models.Progress
		if err := as.DB.Where("course_id = ?", course.ID).Find(&rows).Error; err != nil {
			return nil, err
		}

		students := make(map[uint]struct{})
		completedRows := 0
		for _, row := range rows {
			students[row.UserID] = struct{}{}
			if row.Status == models.StatusCompleted {
				completedRows++
			}
		}

		completion := 0.0
		if len(rows) > 0 {
			completion = float64(completedRows) / float64(len(rows)) * 100
		}

		analytics = append(analytics, models.CourseAnalytics{
			CourseID:          course.ID,
			CourseName:        course.Title,
			TotalStudents:     len(students),
			TotalLessons:      int(lessons),
			AverageCompletion: completion,
		})
	}
	return analytics, nil
}

// CourseDetails breaks a single course down per lesson. A lesson's
// completionRate is completions over attempt rows (0 without attempts);
// averageScore averages only completed rows.
func (as *AnalyticsService) CourseDetails(courseID uint) (*models.CourseDetailedAnalytics, error) {
	var course models.Course
	if err := as.DB.First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}

	var lessons []models.Lesson
	if err := as.DB.Where("course_id = ?", courseID).Order("sequence_order").Find(&lessons).Error; err != nil {
		return nil, err
	}

	var rows []models.Progress
	if err := as.DB.Where("course_id = ?", courseID).Find(&rows).Error; err != nil {
		return nil, err
	}

	byLesson := make(map[uint][]models.Progress)
	students := make(map[uint]struct{})
	totalCompletions := 0
	for _, row := range rows {
		byLesson[row.LessonID] = append(byLesson[row.LessonID], row)
		students[row.UserID] = struct{}{}
		if row.Status == models.StatusCompleted {
			totalCompletions++
		}
	}

	stats := make([]models.LessonStats, 0, len(lessons))
	for _, lesson := range lessons {
		lessonRows := byLesson[lesson.ID]
		completions := 0
		scoreSum := 0
		for _, row := range lessonRows {
			if row.Status == models.StatusCompleted {
				completions++
				scoreSum += row.Score
			}
		}

		rate := 0.0
		if len(lessonRows) > 0 {
			rate = float64(completions) / float64(len(lessonRows)) * 100
		}
		avgScore := 0.0
		if completions > 0 {
			avgScore = float64(scoreSum) / float64(completions)
		}

		stats = append(stats, models.LessonStats{
			LessonID:       lesson.ID,
			LessonTitle:    lesson.Title,
			TotalAttempts:  len(lessonRows),
			Completions:    completions,
			CompletionRate: rate,
			AverageScore:   avgScore,
		})
	}

	return &models.CourseDetailedAnalytics{
		CourseID:         course.ID,
		CourseName:       course.Title,
		TotalStudents:    len(students),
		TotalLessons:     len(lessons),
		TotalCompletions: totalCompletions,
		LessonStats:      stats,
	}, nil
}

// ClassroomAnalytics rolls up a classroom's roster over its associated
// courses. A student's ratio is completed lessons over the total lesson
// count of those courses. Students without a single progress row are left
// out of the average's denominator entirely instead of dragging it to zero;
// they still count in TotalStudents.
func (as *AnalyticsService) ClassroomAnalytics(classroomID uint) (*models.ClassroomAnalytics, error) {
	var classroom models.Classroom
	if err := as.DB.First(&classroom, classroomID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}

	var roster []uint
	if err := as.DB.Model(&models.ClassroomStudent{}).Where("classroom_id = ?", classroomID).Pluck("user_id", &roster).Error; err != nil {
		return nil, err
	}

	var courseIDs []uint
	if err := as.DB.Model(&models.ClassroomCourse{}).Where("classroom_id = ?", classroomID).Pluck("course_id", &courseIDs).Error; err != nil {
		return nil, err
	}

	var totalLessons int64
	if len(courseIDs) > 0 {
		if err := as.DB.Model(&models.Lesson{}).Where("course_id IN ?", courseIDs).Count(&totalLessons).Error; err != nil {
			return nil, err
		}
	}

	var rows []models.Progress
	if len(roster) > 0 && len(courseIDs) > 0 {
		if err := as.DB.Where("user_id IN ? AND course_id IN ?", roster, courseIDs).Find(&rows).Error; err != nil {
			return nil, err
		}
	}

	byUser := make(map[uint][]models.Progress)
	for _, row := range rows {
		byUser[row.UserID] = append(byUser[row.UserID], row)
	}

	summaries := make([]models.StudentProgressSummary, 0, len(byUser))
	ratioSum := 0.0
	totalCompletions := 0
	for userID, userRows := range byUser {
		completed := 0
		scoreSum := 0
		for _, row := range userRows {
			if row.Status == models.StatusCompleted {
				completed++
				totalCompletions++
			}
			scoreSum += row.Score
		}

		ratio := 0.0
		if totalLessons > 0 {
			ratio = float64(completed) / float64(totalLessons) * 100
		}
		ratioSum += ratio

		summaries = append(summaries, models.StudentProgressSummary{
			UserID:             userID,
			UserName:           as.userName(userID),
			TotalLessons:       int(totalLessons),
			CompletedLessons:   completed,
			TotalScore:         scoreSum,
			ProgressPercentage: ratio,
		})
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].UserID < summaries[j].UserID })

	average := 0.0
	if len(summaries) > 0 {
		average = ratioSum / float64(len(summaries))
	}

	return &models.ClassroomAnalytics{
		ClassroomID:      classroom.ID,
		ClassroomName:    classroom.Name,
		TotalStudents:    len(roster),
		ActiveStudents:   len(summaries),
		AverageProgress:  average,
		TotalCompletions: totalCompletions,
		StudentsProgress: summaries,
	}, nil
}

// Dashboard is the learner-facing summary: overall percentage, per-course
// breakdown and the three most recent achievements.
func (as *AnalyticsService) Dashboard(userID uint) (*models.DashboardSummary, error) {
	var user models.User
	if err := as.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}

	var rows []models.Progress
	if err := as.DB.Where("user_id = ?", userID).Find(&rows).Error; err != nil {
		return nil, err
	}

	completed := 0
	for _, row := range rows {
		if row.Status == models.StatusCompleted {
			completed++
		}
	}
	totalProgress := 0.0
	if len(rows) > 0 {
		totalProgress = float64(completed) / float64(len(rows)) * 100
	}

	courseProgress, err := as.courseBreakdown(rows, false)
	if err != nil {
		return nil, err
	}

	var recent []models.Achievement
	if err := as.DB.Where("user_id = ?", userID).Order("earned_at desc").Limit(3).Find(&recent).Error; err != nil {
		return nil, err
	}

	return &models.DashboardSummary{
		TotalProgress:      totalProgress,
		CompletedLessons:   completed,
		TotalLessons:       len(rows),
		TotalXP:            user.TotalXP,
		Streak:             user.Streak,
		Level:              user.Level,
		CourseProgress:     courseProgress,
		RecentAchievements: recent,
	}, nil
}

// StudentAnalytics is the teacher-facing view of one learner.
func (as *AnalyticsService) StudentAnalytics(studentID uint) (*models.StudentAnalytics, error) {
	var student models.User
	if err := as.DB.First(&student, studentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}

	var rows []models.Progress
	if err := as.DB.Where("user_id = ?", studentID).Find(&rows).Error; err != nil {
		return nil, err
	}

	completed := 0
	studyTime := 0
	for _, row := range rows {
		if row.Status == models.StatusCompleted {
			completed++
		}
		studyTime += row.TimeSpent
	}

	var achievementCount int64
	if err := as.DB.Model(&models.Achievement{}).Where("user_id = ?", studentID).Count(&achievementCount).Error; err != nil {
		return nil, err
	}

	// Only courses the student has touched show up in the breakdown.
	breakdown, err := as.courseBreakdown(rows, true)
	if err != nil {
		return nil, err
	}

	return &models.StudentAnalytics{
		StudentID:        student.ID,
		StudentName:      student.Name,
		TotalXP:          student.TotalXP,
		Level:            student.Level,
		Streak:           student.Streak,
		TotalLessons:     len(rows),
		CompletedLessons: completed,
		TotalStudyTime:   studyTime,
		AchievementCount: int(achievementCount),
		CourseBreakdown:  breakdown,
	}, nil
}

// PlatformDashboard is the admin overview: raw counts, a 7-day active-user
// window and the latest registrations/course updates.
func (as *AnalyticsService) PlatformDashboard() (*models.PlatformDashboard, error) {
	dashboard := models.PlatformDashboard{GeneratedAt: time.Now().UTC()}

	counts := []struct {
		model interface{}
		dest  *int64
		where []interface{}
	}{
		{&models.User{}, &dashboard.TotalUsers, nil},
		{&models.User{}, &dashboard.TotalStudents, []interface{}{"role = ?", models.RoleStudent}},
		{&models.User{}, &dashboard.TotalTeachers, []interface{}{"role = ?", models.RoleTeacher}},
		{&models.Course{}, &dashboard.TotalCourses, nil},
		{&models.Lesson{}, &dashboard.TotalLessons, nil},
		{&models.Classroom{}, &dashboard.TotalClassrooms, nil},
	}
	for _, c := range counts {
		q := as.DB.Model(c.model)
		if c.where != nil {
			q = q.Where(c.where[0], c.where[1:]...)
		}
		if err := q.Count(c.dest).Error; err != nil {
			return nil, err
		}
	}

	weekAgo := time.Now().AddDate(0, 0, -7)
	if err := as.DB.Model(&models.User{}).Where("last_active_date >= ?", weekAgo).Count(&dashboard.ActiveUsers).Error; err != nil {
		return nil, err
	}

	var recentUsers []models.User
	if err := as.DB.Order("created_at desc").Limit(3).Find(&recentUsers).Error; err != nil {
		return nil, err
	}
	for _, u := range recentUsers {
		dashboard.RecentActivity = append(dashboard.RecentActivity, models.Activity{
			Type:      "user_registered",
			Title:     fmt.Sprintf("New user: %s", u.Name),
			Timestamp: u.CreatedAt,
		})
	}

	var recentCourses []models.Course
	if err := as.DB.Order("updated_at desc").Limit(2).Find(&recentCourses).Error; err != nil {
		return nil, err
	}
	for _, c := range recentCourses {
		dashboard.RecentActivity = append(dashboard.RecentActivity, models.Activity{
			Type:      "course_updated",
			Title:     fmt.Sprintf("Course updated: %s", c.Title),
			Timestamp: c.UpdatedAt,
		})
	}

	sort.Slice(dashboard.RecentActivity, func(i, j int) bool {
		return dashboard.RecentActivity[i].Timestamp.After(dashboard.RecentActivity[j].Timestamp)
	})
	if len(dashboard.RecentActivity) > 5 {
		dashboard.RecentActivity = dashboard.RecentActivity[:5]
	}

	return &dashboard, nil
}

// courseBreakdown computes per-course summaries from the learner's rows.
// With touchedOnly, courses without any rows are skipped.
func (as *AnalyticsService) courseBreakdown(rows []models.Progress, touchedOnly bool) ([]models.CourseProgressSummary, error) {
	var courses []models.Course
	if err := as.DB.Order("sequence_order, id").Find(&courses).Error; err != nil {
		return nil, err
	}

	byCourse := make(map[uint][]models.Progress)
	for _, row := range rows {
		byCourse[row.CourseID] = append(byCourse[row.CourseID], row)
	}

	breakdown := make([]models.CourseProgressSummary, 0, len(courses))
	for _, course := range courses {
		courseRows := byCourse[course.ID]
		if touchedOnly && len(courseRows) == 0 {
			continue
		}

		var totalLessons int64
		if err := as.DB.Model(&models.Lesson{}).Where("course_id = ?", course.ID).Count(&totalLessons).Error; err != nil {
			return nil, err
		}

		completed := 0
		timeSpent := 0
		for _, row := range courseRows {
			if row.Status == models.StatusCompleted {
				completed++
			}
			timeSpent += row.TimeSpent
		}

		percentage := 0.0
		if totalLessons > 0 {
			percentage = float64(completed) / float64(totalLessons) * 100
		}

		breakdown = append(breakdown, models.CourseProgressSummary{
			CourseID:           course.ID,
			CourseName:         course.Title,
			TotalLessons:       int(totalLessons),
			CompletedLessons:   completed,
			ProgressPercentage: percentage,
			TimeSpent:          timeSpent,
		})
	}
	return breakdown, nil
}

func (as *AnalyticsService) userName(userID uint) string {
	var user models.User
	if err := as.DB.First(&user, userID).Error; err != nil {
		return ""
	}
	return user.Name
}

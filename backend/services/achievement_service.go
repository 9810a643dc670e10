package services

import (
	"fmt"
	"time"

	"goacademy/backend/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// achievementRule awards a fixed-points badge when its threshold of
// completed lessons is reached. Rules are evaluated in declaration order.
type achievementRule struct {
	Type        string
	Title       string
	Description string
	Icon        string
	Points      int
	Qualifies   func(completed []models.Progress, codingCompleted int) bool
}

var lessonRules = []achievementRule{
	{
		Type: "first_lesson", Title: "First Steps",
		Description: "Completed the first lesson", Icon: "🎯", Points: 10,
		Qualifies: func(completed []models.Progress, _ int) bool { return len(completed) >= 1 },
	},
	{
		Type: "first_code", Title: "Programmer",
		Description: "Wrote the first program", Icon: "💻", Points: 25,
		Qualifies: func(_ []models.Progress, codingCompleted int) bool { return codingCompleted >= 1 },
	},
	{
		Type: "five_lessons", Title: "Persistence",
		Description: "Completed 5 lessons", Icon: "🔥", Points: 50,
		Qualifies: func(completed []models.Progress, _ int) bool { return len(completed) >= 5 },
	},
	{
		Type: "ten_lessons", Title: "Explorer",
		Description: "Completed 10 lessons", Icon: "🔍", Points: 100,
		Qualifies: func(completed []models.Progress, _ int) bool { return len(completed) >= 10 },
	},
}

const courseCompletionPoints = 200

// AchievementService decides when a learner has earned a badge and credits
// the attached XP exactly once.
type AchievementService struct {
	DB *gorm.DB
}

func NewAchievementService(db *gorm.DB) *AchievementService {
	return &AchievementService{DB: db}
}

// Evaluate checks all rules against the learner's current progress and
// awards every newly-qualified achievement. Each award is an independent
// atomic unit: a failed insert is reported but does not undo awards that
// already landed in this pass. Re-running on an unchanged learner awards
// nothing.
func (as *AchievementService) Evaluate(userID uint) ([]models.Achievement, error) {
	var progress []models.Progress
	if err := as.DB.Where("user_id = ?", userID).Find(&progress).Error; err != nil {
		return nil, err
	}

	var completed []models.Progress
	for _, p := range progress {
		if p.Status == models.StatusCompleted {
			completed = append(completed, p)
		}
	}

	codingCompleted, err := as.countCodingCompletions(completed)
	if err != nil {
		return nil, err
	}

	existing, err := as.existingTypes(userID)
	if err != nil {
		return nil, err
	}

	var awarded []models.Achievement
	var firstErr error

	for _, rule := range lessonRules {
		if existing[rule.Type] || !rule.Qualifies(completed, codingCompleted) {
			continue
		}
		ach, err := as.award(userID, rule.Type, rule.Title, rule.Description, rule.Icon, rule.Points)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if ach != nil {
			awarded = append(awarded, *ach)
		}
	}

	courseAch, err := as.evaluateCourseCompletion(userID, completed, existing)
	if err != nil && firstErr == nil {
		firstErr = err
	}
	if courseAch != nil {
		awarded = append(awarded, *courseAch)
	}

	return awarded, firstErr
}

// evaluateCourseCompletion awards at most one course-completion badge per
// call, for the first fully-completed course in catalog order that has not
// been awarded yet.
func (as *AchievementService) evaluateCourseCompletion(userID uint, completed []models.Progress, existing map[string]bool) (*models.Achievement, error) {
	var courses []models.Course
	if err := as.DB.Order("sequence_order, id").Find(&courses).Error; err != nil {
		return nil, err
	}

	completedByCourse := make(map[uint]int)
	for _, p := range completed {
		completedByCourse[p.CourseID]++
	}

	for _, course := range courses {
		achType := fmt.Sprintf("course_%d", course.ID)
		if existing[achType] {
			continue
		}

		var totalLessons int64
		if err := as.DB.Model(&models.Lesson{}).Where("course_id = ?", course.ID).Count(&totalLessons).Error; err != nil {
			return nil, err
		}
		if totalLessons == 0 || int64(completedByCourse[course.ID]) < totalLessons {
			continue
		}

		return as.award(userID, achType, "Course Master",
			fmt.Sprintf("Completed the course %q", course.Title), "🏆", courseCompletionPoints)
	}
	return nil, nil
}

// Award grants an achievement outside the automatic rule set (admin path).
// Returns ErrDuplicateAchievement when the user already holds the type.
func (as *AchievementService) Award(userID uint, achType, title, description, icon string, points int) (*models.Achievement, error) {
	ach, err := as.award(userID, achType, title, description, icon, points)
	if err != nil {
		return nil, err
	}
	if ach == nil {
		return nil, models.ErrDuplicateAchievement
	}
	return ach, nil
}

// award is the single conditional insert that makes awarding race-safe: the
// (user_id, type) unique index plus DO NOTHING means exactly one of any
// number of concurrent attempts wins, and only the winner credits XP.
// Returns (nil, nil) when the achievement already existed.
func (as *AchievementService) award(userID uint, achType, title, description, icon string, points int) (*models.Achievement, error) {
	ach := models.Achievement{
		UserID:      userID,
		Type:        achType,
		Title:       title,
		Description: description,
		Icon:        icon,
		Points:      points,
		EarnedAt:    time.Now().UTC(),
	}

	res := as.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "type"}},
		DoNothing: true,
	}).Create(&ach)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}

	if err := CreditXP(as.DB, userID, points); err != nil {
		return nil, err
	}
	return &ach, nil
}

func (as *AchievementService) GetUserAchievements(userID uint) ([]models.Achievement, error) {
	var achievements []models.Achievement
	err := as.DB.Where("user_id = ?", userID).Order("earned_at desc").Find(&achievements).Error
	return achievements, err
}

func (as *AchievementService) countCodingCompletions(completed []models.Progress) (int, error) {
	if len(completed) == 0 {
		return 0, nil
	}
	ids := make([]uint, 0, len(completed))
	for _, p := range completed {
		ids = append(ids, p.LessonID)
	}
	var count int64
	err := as.DB.Model(&models.Lesson{}).
		Where("id IN ? AND type = ?", ids, models.LessonCoding).
		Count(&count).Error
	return int(count), err
}

func (as *AchievementService) existingTypes(userID uint) (map[string]bool, error) {
	var types []string
	if err := as.DB.Model(&models.Achievement{}).Where("user_id = ?", userID).Pluck("type", &types).Error; err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(types))
	for _, t := range types {
		set[t] = true
	}
	return set, nil
}

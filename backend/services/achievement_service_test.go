package services

import (
	"fmt"
	"testing"

	"goacademy/backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func achievementTypes(achievements []models.Achievement) []string {
	types := make([]string, 0, len(achievements))
	for _, a := range achievements {
		types = append(types, a.Type)
	}
	return types
}

func completeLessons(t *testing.T, svc *ProgressService, userID, courseID uint, lessons []models.Lesson, score int) {
	t.Helper()
	for _, lesson := range lessons {
		_, err := svc.RecordCompletion(userID, lesson.ID, courseID, nil, score, 1)
		require.NoError(t, err)
	}
}

func TestEvaluateFirstLesson(t *testing.T) {
	db := newTestDB(t)
	progress := NewProgressService(db)
	svc := NewAchievementService(db)
	user := seedUser(t, db, "alice")
	course, lessons := seedCourse(t, db, "Basics", 3)

	completeLessons(t, progress, user.ID, course.ID, lessons[:1], 0)

	awarded, err := svc.Evaluate(user.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"first_lesson"}, achievementTypes(awarded))

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, user.ID).Error)
	assert.Equal(t, 10, reloaded.TotalXP)
}

func TestEvaluateIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	progress := NewProgressService(db)
	svc := NewAchievementService(db)
	user := seedUser(t, db, "alice")
	course, lessons := seedCourse(t, db, "Basics", 3)

	completeLessons(t, progress, user.ID, course.ID, lessons[:1], 0)

	_, err := svc.Evaluate(user.ID)
	require.NoError(t, err)

	again, err := svc.Evaluate(user.ID)
	require.NoError(t, err)
	assert.Empty(t, again)

	var count int64
	require.NoError(t, db.Model(&models.Achievement{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestEvaluateCourseCompletion(t *testing.T) {
	db := newTestDB(t)
	progress := NewProgressService(db)
	svc := NewAchievementService(db)
	user := seedUser(t, db, "alice")
	course, lessons := seedCourse(t, db, "Basics", 5)

	completeLessons(t, progress, user.ID, course.ID, lessons, 0)

	awarded, err := svc.Evaluate(user.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t,
		[]string{"first_lesson", "five_lessons", fmt.Sprintf("course_%d", course.ID)},
		achievementTypes(awarded))

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, user.ID).Error)
	assert.Equal(t, 10+50+200, reloaded.TotalXP)

	again, err := svc.Evaluate(user.ID)
	require.NoError(t, err)
	assert.Empty(t, again)
}

func TestEvaluateAwardsOneCourseBadgePerCall(t *testing.T) {
	db := newTestDB(t)
	progress := NewProgressService(db)
	svc := NewAchievementService(db)
	user := seedUser(t, db, "alice")
	courseA, lessonsA := seedCourse(t, db, "Basics", 2)
	courseB, lessonsB := seedCourse(t, db, "Advanced", 2)

	completeLessons(t, progress, user.ID, courseA.ID, lessonsA, 0)
	completeLessons(t, progress, user.ID, courseB.ID, lessonsB, 0)

	first, err := svc.Evaluate(user.ID)
	require.NoError(t, err)
	assert.Contains(t, achievementTypes(first), fmt.Sprintf("course_%d", courseA.ID))
	assert.NotContains(t, achievementTypes(first), fmt.Sprintf("course_%d", courseB.ID))

	second, err := svc.Evaluate(user.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{fmt.Sprintf("course_%d", courseB.ID)}, achievementTypes(second))
}

func TestEvaluateFirstCode(t *testing.T) {
	db := newTestDB(t)
	progress := NewProgressService(db)
	svc := NewAchievementService(db)
	user := seedUser(t, db, "alice")
	course, _ := seedCourse(t, db, "Basics", 0)

	lesson := models.Lesson{CourseID: course.ID, Title: "Hello, World", Type: models.LessonCoding, SequenceOrder: 1}
	require.NoError(t, db.Create(&lesson).Error)

	completeLessons(t, progress, user.ID, course.ID, []models.Lesson{lesson}, 0)

	awarded, err := svc.Evaluate(user.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t,
		[]string{"first_lesson", "first_code", fmt.Sprintf("course_%d", course.ID)},
		achievementTypes(awarded))
}

func TestEvaluateSkipsEmptyCourses(t *testing.T) {
	db := newTestDB(t)
	progress := NewProgressService(db)
	svc := NewAchievementService(db)
	user := seedUser(t, db, "alice")
	seedCourse(t, db, "Empty", 0)
	course, lessons := seedCourse(t, db, "Basics", 1)

	completeLessons(t, progress, user.ID, course.ID, lessons, 0)

	awarded, err := svc.Evaluate(user.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t,
		[]string{"first_lesson", fmt.Sprintf("course_%d", course.ID)},
		achievementTypes(awarded))
}

func TestAwardDuplicate(t *testing.T) {
	db := newTestDB(t)
	svc := NewAchievementService(db)
	user := seedUser(t, db, "alice")

	_, err := svc.Award(user.ID, "custom", "Custom", "Hand-picked", "⭐", 30)
	require.NoError(t, err)

	_, err = svc.Award(user.ID, "custom", "Custom", "Hand-picked", "⭐", 30)
	assert.ErrorIs(t, err, models.ErrDuplicateAchievement)

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, user.ID).Error)
	assert.Equal(t, 30, reloaded.TotalXP)
}

func TestCreditXPUpdatesLevel(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "alice")

	require.NoError(t, CreditXP(db, user.ID, 2500))

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, user.ID).Error)
	assert.Equal(t, 2500, reloaded.TotalXP)
	assert.Equal(t, 3, reloaded.Level)

	assert.ErrorIs(t, CreditXP(db, 999, 10), models.ErrNotFound)
}

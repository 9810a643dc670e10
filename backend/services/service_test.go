package services

import (
	"fmt"
	"sync/atomic"
	"testing"

	"goacademy/backend/models"
	"goacademy/backend/utils"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBCounter int64

// newTestDB opens a private in-memory database per test. The named shared
// cache keeps all pooled connections on the same database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := fmt.Sprintf("file:svc%d?mode=memory&cache=shared", atomic.AddInt64(&testDBCounter, 1))
	db, err := gorm.Open(sqlite.Open(name), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, utils.Migrate(db))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()
	user := models.User{
		Email: fmt.Sprintf("%s@example.com", name),
		Name:  name,
		Role:  models.RoleStudent,
		Level: 1,
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func seedCourse(t *testing.T, db *gorm.DB, title string, lessons int) (*models.Course, []models.Lesson) {
	t.Helper()
	course := models.Course{Title: title, IsPublished: true}
	require.NoError(t, db.Create(&course).Error)

	created := make([]models.Lesson, 0, lessons)
	for i := 1; i <= lessons; i++ {
		lesson := models.Lesson{
			CourseID:      course.ID,
			Title:         fmt.Sprintf("%s lesson %d", title, i),
			Type:          models.LessonTheory,
			SequenceOrder: i,
		}
		require.NoError(t, db.Create(&lesson).Error)
		created = append(created, lesson)
	}
	return &course, created
}

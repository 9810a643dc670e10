package controllers

import (
	"strconv"

	"goacademy/backend/config"
	"goacademy/backend/middleware"
	"goacademy/backend/models"
	"goacademy/backend/services"
	"goacademy/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ProgressController struct {
	DB           *gorm.DB
	Cfg          *config.Config
	Progress     *services.ProgressService
	Achievements *services.AchievementService
	Analytics    *services.AnalyticsService
}

func NewProgressController(db *gorm.DB, cfg *config.Config, progress *services.ProgressService, achievements *services.AchievementService, analytics *services.AnalyticsService) *ProgressController {
	return &ProgressController{DB: db, Cfg: cfg, Progress: progress, Achievements: achievements, Analytics: analytics}
}

func (pc *ProgressController) GetMyProgress(c *fiber.Ctx) error {
	rows, err := pc.Progress.GetUserProgress(middleware.CurrentUserID(c))
	if err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	return c.JSON(rows)
}

func (pc *ProgressController) GetMyCourseProgress(c *fiber.Ctx) error {
	courseID, err := strconv.Atoi(c.Params("courseId"))
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	rows, err := pc.Progress.GetCourseProgress(middleware.CurrentUserID(c), uint(courseID))
	if err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	return c.JSON(rows)
}

// CreateProgress registers that the caller opened a lesson. Repeated calls
// for the same lesson bump the attempt counter on the existing record.
func (pc *ProgressController) CreateProgress(c *fiber.Ctx) error {
	var input struct {
		LessonID    uint  `json:"lesson_id"`
		ClassroomID *uint `json:"classroom_id"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.LessonID == 0 {
		return utils.ValidationError(c, map[string]string{"lesson_id": "lesson_id is required"})
	}

	var lesson models.Lesson
	if err := pc.DB.First(&lesson, input.LessonID).Error; err != nil {
		return utils.NotFound(c, "Lesson not found")
	}

	progress, err := pc.Progress.Upsert(middleware.CurrentUserID(c), lesson.ID, lesson.CourseID, input.ClassroomID)
	if err != nil {
		return serviceError(c, err)
	}
	return utils.Created(c, progress)
}

// UpdateProgress applies a partial update to one of the caller's progress
// records. Completing a lesson triggers an achievement sweep; any newly
// earned badges ride along in the response.
func (pc *ProgressController) UpdateProgress(c *fiber.Ctx) error {
	progressID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid progress ID")
	}

	existing, err := pc.Progress.GetByID(uint(progressID))
	if err != nil {
		return serviceError(c, err)
	}
	userID := middleware.CurrentUserID(c)
	if existing.UserID != userID && middleware.CurrentRole(c) != models.RoleAdmin {
		return utils.Forbidden(c, "Access denied")
	}

	var upd models.ProgressUpdate
	if err := c.BodyParser(&upd); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if upd.Status != nil && !upd.Status.Valid() {
		return utils.ValidationError(c, map[string]string{"status": "invalid status"})
	}

	progress, transitioned, err := pc.Progress.ApplyUpdate(existing.ID, upd)
	if err != nil {
		return serviceError(c, err)
	}

	var newAchievements []models.Achievement
	if transitioned {
		if progress.Score > 0 {
			if err := services.CreditXP(pc.DB, progress.UserID, progress.Score); err != nil {
				return serviceError(c, err)
			}
		}
		newAchievements, err = pc.Achievements.Evaluate(progress.UserID)
		if err != nil {
			return serviceError(c, err)
		}
	}

	return c.JSON(fiber.Map{
		"progress":         progress,
		"new_achievements": newAchievements,
	})
}

func (pc *ProgressController) GetDashboard(c *fiber.Ctx) error {
	summary, err := pc.Analytics.Dashboard(middleware.CurrentUserID(c))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(summary)
}

package controllers

import (
	"errors"
	"strconv"

	"goacademy/backend/config"
	"goacademy/backend/middleware"
	"goacademy/backend/models"
	"goacademy/backend/services"
	"goacademy/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type LessonsController struct {
	DB           *gorm.DB
	Cfg          *config.Config
	Progress     *services.ProgressService
	Achievements *services.AchievementService
	Grader       *services.GraderService
}

func NewLessonsController(db *gorm.DB, cfg *config.Config, progress *services.ProgressService, achievements *services.AchievementService, grader *services.GraderService) *LessonsController {
	return &LessonsController{DB: db, Cfg: cfg, Progress: progress, Achievements: achievements, Grader: grader}
}

func (lc *LessonsController) GetLesson(c *fiber.Ctx) error {
	lessonID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid lesson ID")
	}

	var lesson models.Lesson
	if err := lc.DB.Preload("CodingChallenge.TestCases").First(&lesson, lessonID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Lesson not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}
	return c.JSON(lesson)
}

func (lc *LessonsController) CreateLesson(c *fiber.Ctx) error {
	type ChallengeInput struct {
		Template   string `json:"template"`
		Solution   string `json:"solution"`
		Points     int    `json:"points"`
		Difficulty string `json:"difficulty"`
		Hints      string `json:"hints"`
		TestCases  []struct {
			Input          string `json:"input"`
			ExpectedOutput string `json:"expected_output"`
		} `json:"test_cases"`
	}
	type LessonInput struct {
		CourseID        uint              `json:"course_id"`
		Title           string            `json:"title"`
		Description     string            `json:"description"`
		Content         string            `json:"content"`
		Type            models.LessonType `json:"type"`
		Duration        int               `json:"duration"`
		SequenceOrder   int               `json:"order"`
		CodingChallenge *ChallengeInput   `json:"coding_challenge"`
	}

	var input LessonInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	var course models.Course
	if err := lc.DB.First(&course, input.CourseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	if input.SequenceOrder == 0 {
		// Append at the end when no explicit order is given.
		var count int64
		lc.DB.Model(&models.Lesson{}).Where("course_id = ?", input.CourseID).Count(&count)
		input.SequenceOrder = int(count) + 1
	} else {
		// Duplicate orders make display order undefined; reject them.
		var clash int64
		lc.DB.Model(&models.Lesson{}).
			Where("course_id = ? AND sequence_order = ?", input.CourseID, input.SequenceOrder).
			Count(&clash)
		if clash > 0 {
			return serviceError(c, models.ErrDuplicateOrder)
		}
	}

	if input.Type == "" {
		input.Type = models.LessonTheory
	}

	lesson := models.Lesson{
		CourseID:      input.CourseID,
		Title:         input.Title,
		Description:   input.Description,
		Content:       input.Content,
		Type:          input.Type,
		Duration:      input.Duration,
		SequenceOrder: input.SequenceOrder,
	}
	if input.CodingChallenge != nil {
		challenge := models.CodingChallenge{
			Template:   input.CodingChallenge.Template,
			Solution:   input.CodingChallenge.Solution,
			Points:     input.CodingChallenge.Points,
			Difficulty: input.CodingChallenge.Difficulty,
			Hints:      input.CodingChallenge.Hints,
		}
		if challenge.Points == 0 {
			challenge.Points = 10
		}
		for _, tc := range input.CodingChallenge.TestCases {
			challenge.TestCases = append(challenge.TestCases, models.ChallengeTestCase{
				Input:          tc.Input,
				ExpectedOutput: tc.ExpectedOutput,
			})
		}
		lesson.CodingChallenge = &challenge
	}

	if err := lc.DB.Create(&lesson).Error; err != nil {
		return utils.InternalServerError(c, "Could not create lesson")
	}
	return utils.Created(c, lesson)
}

func (lc *LessonsController) UpdateLesson(c *fiber.Ctx) error {
	lessonID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid lesson ID")
	}

	var input struct {
		Title         *string            `json:"title"`
		Description   *string            `json:"description"`
		Content       *string            `json:"content"`
		Type          *models.LessonType `json:"type"`
		Duration      *int               `json:"duration"`
		SequenceOrder *int               `json:"order"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	var lesson models.Lesson
	if err := lc.DB.First(&lesson, lessonID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Lesson not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	if input.SequenceOrder != nil && *input.SequenceOrder != lesson.SequenceOrder {
		var clash int64
		lc.DB.Model(&models.Lesson{}).
			Where("course_id = ? AND sequence_order = ? AND id <> ?", lesson.CourseID, *input.SequenceOrder, lesson.ID).
			Count(&clash)
		if clash > 0 {
			return serviceError(c, models.ErrDuplicateOrder)
		}
		lesson.SequenceOrder = *input.SequenceOrder
	}
	if input.Title != nil {
		lesson.Title = *input.Title
	}
	if input.Description != nil {
		lesson.Description = *input.Description
	}
	if input.Content != nil {
		lesson.Content = *input.Content
	}
	if input.Type != nil {
		lesson.Type = *input.Type
	}
	if input.Duration != nil {
		lesson.Duration = *input.Duration
	}

	if err := lc.DB.Save(&lesson).Error; err != nil {
		return utils.InternalServerError(c, "Could not update lesson")
	}
	return c.JSON(lesson)
}

func (lc *LessonsController) DeleteLesson(c *fiber.Ctx) error {
	lessonID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid lesson ID")
	}

	var lesson models.Lesson
	if err := lc.DB.First(&lesson, lessonID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Lesson not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	err = lc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("lesson_id = ?", lessonID).Delete(&models.Progress{}).Error; err != nil {
			return err
		}
		return tx.Delete(&lesson).Error
	})
	if err != nil {
		return utils.InternalServerError(c, "Could not delete lesson")
	}
	return utils.NoContent(c)
}

// SubmitCode godoc
// @Summary Submit code for a lesson's challenge
// @Description Grades the submission and, on pass, records the completion,
// credits XP and evaluates achievements
// @Tags lessons
// @Accept json
// @Produce json
// @Success 200 {object} services.SubmissionResult
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /lessons/{id}/submit [post]
func (lc *LessonsController) SubmitCode(c *fiber.Ctx) error {
	lessonID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid lesson ID")
	}

	var input struct {
		Code      string `json:"code"`
		TimeSpent int    `json:"time_spent"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	var lesson models.Lesson
	if err := lc.DB.Preload("CodingChallenge.TestCases").First(&lesson, lessonID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Lesson not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}
	if lesson.CodingChallenge == nil {
		return utils.BadRequest(c, "This lesson does not have a coding challenge")
	}

	result := lc.Grader.Grade(lesson.CodingChallenge, input.Code)
	userID := middleware.CurrentUserID(c)

	if result.TestsPass {
		if _, err := lc.Progress.RecordCompletion(userID, lesson.ID, lesson.CourseID, nil, result.Score, input.TimeSpent); err != nil {
			return serviceError(c, err)
		}
		awarded, err := lc.Achievements.Evaluate(userID)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(fiber.Map{
			"result":           result,
			"new_achievements": awarded,
		})
	}

	// Failed submissions still count as an attempt.
	if _, err := lc.Progress.Upsert(userID, lesson.ID, lesson.CourseID, nil); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"result": result})
}

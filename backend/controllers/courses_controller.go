package controllers

import (
	"errors"
	"strconv"

	"goacademy/backend/config"
	"goacademy/backend/middleware"
	"goacademy/backend/models"
	"goacademy/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CoursesController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewCoursesController(db *gorm.DB, cfg *config.Config) *CoursesController {
	return &CoursesController{DB: db, Cfg: cfg}
}

func (cc *CoursesController) GetCourses(c *fiber.Ctx) error {
	query := cc.DB.Order("sequence_order, id")
	// Students only see the published catalog.
	if middleware.CurrentRole(c) == models.RoleStudent {
		query = query.Where("is_published = ?", true)
	}

	var courses []models.Course
	if err := query.Find(&courses).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	return c.JSON(courses)
}

func (cc *CoursesController) GetCourseDetails(c *fiber.Ctx) error {
	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var course models.Course
	if err := cc.DB.Preload("Lessons", func(db *gorm.DB) *gorm.DB {
		return db.Order("lessons.sequence_order")
	}).First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	return c.JSON(course)
}

func (cc *CoursesController) GetCourseLessons(c *fiber.Ctx) error {
	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var course models.Course
	if err := cc.DB.First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	var lessons []models.Lesson
	if err := cc.DB.Where("course_id = ?", courseID).Order("sequence_order").Find(&lessons).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	return c.JSON(lessons)
}

// CreateCourse godoc
// @Summary Create a course
// @Tags courses
// @Accept json
// @Produce json
// @Success 201 {object} models.Course
// @Failure 403 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses [post]
func (cc *CoursesController) CreateCourse(c *fiber.Ctx) error {
	type CourseInput struct {
		Title         string `json:"title"`
		Description   string `json:"description"`
		SequenceOrder int    `json:"order"`
		Color         string `json:"color"`
	}

	var input CourseInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.Title == "" {
		return utils.ValidationError(c, map[string]string{"title": "title is required"})
	}
	if input.SequenceOrder == 0 {
		input.SequenceOrder = 1
	}

	course := models.Course{
		Title:         input.Title,
		Description:   input.Description,
		SequenceOrder: input.SequenceOrder,
		IsPublished:   true,
		CreatedBy:     middleware.CurrentUserID(c),
	}
	if input.Color != "" {
		course.Color = input.Color
	}

	if err := cc.DB.Create(&course).Error; err != nil {
		return utils.InternalServerError(c, "Could not create course")
	}
	return utils.Created(c, course)
}

func (cc *CoursesController) UpdateCourse(c *fiber.Ctx) error {
	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var input struct {
		Title         *string `json:"title"`
		Description   *string `json:"description"`
		SequenceOrder *int    `json:"order"`
		IsPublished   *bool   `json:"is_published"`
		Color         *string `json:"color"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	var course models.Course
	if err := cc.DB.First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	if input.Title != nil {
		course.Title = *input.Title
	}
	if input.Description != nil {
		course.Description = *input.Description
	}
	if input.SequenceOrder != nil {
		course.SequenceOrder = *input.SequenceOrder
	}
	if input.IsPublished != nil {
		course.IsPublished = *input.IsPublished
	}
	if input.Color != nil {
		course.Color = *input.Color
	}

	if err := cc.DB.Save(&course).Error; err != nil {
		return utils.InternalServerError(c, "Could not update course")
	}
	return c.JSON(course)
}

// DeleteCourse removes a course together with its lessons and their
// progress records (the only cascade the platform performs).
func (cc *CoursesController) DeleteCourse(c *fiber.Ctx) error {
	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var course models.Course
	if err := cc.DB.First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	err = cc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("course_id = ?", courseID).Delete(&models.Progress{}).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", courseID).Delete(&models.Lesson{}).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", courseID).Delete(&models.ClassroomCourse{}).Error; err != nil {
			return err
		}
		return tx.Delete(&course).Error
	})
	if err != nil {
		return utils.InternalServerError(c, "Could not delete course")
	}
	return utils.NoContent(c)
}

// ReorderLessons rewrites the lesson order of a course from the given
// lesson ID list. Orders are assigned 1..n in list position.
func (cc *CoursesController) ReorderLessons(c *fiber.Ctx) error {
	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var input struct {
		LessonIDs []uint `json:"lesson_ids"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	var course models.Course
	if err := cc.DB.First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	err = cc.DB.Transaction(func(tx *gorm.DB) error {
		for index, lessonID := range input.LessonIDs {
			res := tx.Model(&models.Lesson{}).
				Where("id = ? AND course_id = ?", lessonID, courseID).
				Update("sequence_order", index+1)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return models.ErrNotFound
			}
		}
		return nil
	})
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Lessons reordered successfully"})
}

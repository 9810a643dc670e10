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

type AnalyticsController struct {
	DB         *gorm.DB
	Cfg        *config.Config
	Analytics  *services.AnalyticsService
	Classrooms *services.ClassroomService
}

func NewAnalyticsController(db *gorm.DB, cfg *config.Config, analytics *services.AnalyticsService, classrooms *services.ClassroomService) *AnalyticsController {
	return &AnalyticsController{DB: db, Cfg: cfg, Analytics: analytics, Classrooms: classrooms}
}

// GetDashboard returns the platform-wide counters. Admin only (enforced in
// routing).
func (an *AnalyticsController) GetDashboard(c *fiber.Ctx) error {
	dashboard, err := an.Analytics.PlatformDashboard()
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(dashboard)
}

func (an *AnalyticsController) GetCourses(c *fiber.Ctx) error {
	analytics, err := an.Analytics.CourseAnalytics()
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(analytics)
}

func (an *AnalyticsController) GetCourseDetails(c *fiber.Ctx) error {
	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	details, err := an.Analytics.CourseDetails(uint(courseID))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(details)
}

func (an *AnalyticsController) GetStudent(c *fiber.Ctx) error {
	studentID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid student ID")
	}
	if !models.CanViewStudent(middleware.CurrentRole(c), uint(studentID), middleware.CurrentUserID(c)) {
		return utils.Forbidden(c, "Access denied")
	}

	analytics, err := an.Analytics.StudentAnalytics(uint(studentID))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(analytics)
}

func (an *AnalyticsController) GetClassroom(c *fiber.Ctx) error {
	classroomID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid classroom ID")
	}

	classroom, err := an.Classrooms.GetByID(uint(classroomID))
	if err != nil {
		return serviceError(c, err)
	}
	if !models.CanManageClassroom(middleware.CurrentRole(c), classroom.TeacherID, middleware.CurrentUserID(c)) {
		return utils.Forbidden(c, "Access denied")
	}

	analytics, err := an.Analytics.ClassroomAnalytics(classroom.ID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(analytics)
}

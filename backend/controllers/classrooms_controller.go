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

type ClassroomsController struct {
	DB         *gorm.DB
	Cfg        *config.Config
	Classrooms *services.ClassroomService
	Analytics  *services.AnalyticsService
}

func NewClassroomsController(db *gorm.DB, cfg *config.Config, classrooms *services.ClassroomService, analytics *services.AnalyticsService) *ClassroomsController {
	return &ClassroomsController{DB: db, Cfg: cfg, Classrooms: classrooms, Analytics: analytics}
}

// GetMyClassrooms lists classrooms the caller teaches, or is enrolled in
// for students.
func (cl *ClassroomsController) GetMyClassrooms(c *fiber.Ctx) error {
	userID := middleware.CurrentUserID(c)
	role := middleware.CurrentRole(c)

	var (
		classrooms []models.Classroom
		err        error
	)
	if role == models.RoleTeacher || role == models.RoleAdmin {
		classrooms, err = cl.Classrooms.GetByTeacher(userID)
	} else {
		classrooms, err = cl.Classrooms.GetByStudent(userID)
	}
	if err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	result := make([]fiber.Map, 0, len(classrooms))
	for _, classroom := range classrooms {
		members, err := cl.Classrooms.MemberCount(classroom.ID)
		if err != nil {
			return utils.InternalServerError(c, "Could not query database")
		}
		courseIDs, err := cl.Classrooms.CourseIDs(classroom.ID)
		if err != nil {
			return utils.InternalServerError(c, "Could not query database")
		}

		result = append(result, fiber.Map{
			"id":           classroom.ID,
			"name":         classroom.Name,
			"description":  classroom.Description,
			"teacher_id":   classroom.TeacherID,
			"students":     members,
			"max_students": classroom.MaxStudents,
			"courses":      len(courseIDs),
			"invite_code":  classroom.InviteCode,
			"is_active":    classroom.IsActive,
			"created_at":   classroom.CreatedAt,
		})
	}
	return c.JSON(result)
}

func (cl *ClassroomsController) GetClassroom(c *fiber.Ctx) error {
	classroomID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid classroom ID")
	}

	classroom, err := cl.Classrooms.GetByID(uint(classroomID))
	if err != nil {
		return serviceError(c, err)
	}

	userID := middleware.CurrentUserID(c)
	role := middleware.CurrentRole(c)
	enrolled, err := cl.Classrooms.IsEnrolled(classroom.ID, userID)
	if err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	if !models.CanViewClassroom(role, classroom.TeacherID, userID, enrolled) {
		return utils.Forbidden(c, "Access denied")
	}

	return c.JSON(classroom)
}

func (cl *ClassroomsController) CreateClassroom(c *fiber.Ctx) error {
	type ClassroomInput struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		MaxStudents int    `json:"max_students"`
		CourseIDs   []uint `json:"course_ids"`
	}

	var input ClassroomInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.Name == "" {
		return utils.ValidationError(c, map[string]string{"name": "name is required"})
	}

	classroom, err := cl.Classrooms.Create(input.Name, input.Description, middleware.CurrentUserID(c), input.MaxStudents, input.CourseIDs)
	if err != nil {
		return serviceError(c, err)
	}
	return utils.Created(c, classroom)
}

func (cl *ClassroomsController) UpdateClassroom(c *fiber.Ctx) error {
	classroomID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid classroom ID")
	}

	classroom, err := cl.Classrooms.GetByID(uint(classroomID))
	if err != nil {
		return serviceError(c, err)
	}
	if !models.CanManageClassroom(middleware.CurrentRole(c), classroom.TeacherID, middleware.CurrentUserID(c)) {
		return utils.Forbidden(c, "Access denied")
	}

	var input struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
		MaxStudents *int    `json:"max_students"`
		IsActive    *bool   `json:"is_active"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	if input.Name != nil {
		classroom.Name = *input.Name
	}
	if input.Description != nil {
		classroom.Description = *input.Description
	}
	if input.MaxStudents != nil && *input.MaxStudents > 0 {
		classroom.MaxStudents = *input.MaxStudents
	}
	if input.IsActive != nil {
		classroom.IsActive = *input.IsActive
	}

	if err := cl.DB.Save(classroom).Error; err != nil {
		return utils.InternalServerError(c, "Could not update classroom")
	}
	return c.JSON(classroom)
}

func (cl *ClassroomsController) DeleteClassroom(c *fiber.Ctx) error {
	classroomID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid classroom ID")
	}

	classroom, err := cl.Classrooms.GetByID(uint(classroomID))
	if err != nil {
		return serviceError(c, err)
	}
	if !models.CanManageClassroom(middleware.CurrentRole(c), classroom.TeacherID, middleware.CurrentUserID(c)) {
		return utils.Forbidden(c, "Access denied")
	}

	err = cl.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("classroom_id = ?", classroom.ID).Delete(&models.ClassroomStudent{}).Error; err != nil {
			return err
		}
		if err := tx.Where("classroom_id = ?", classroom.ID).Delete(&models.ClassroomCourse{}).Error; err != nil {
			return err
		}
		return tx.Delete(classroom).Error
	})
	if err != nil {
		return utils.InternalServerError(c, "Could not delete classroom")
	}
	return utils.NoContent(c)
}

func (cl *ClassroomsController) JoinClassroom(c *fiber.Ctx) error {
	classroomID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid classroom ID")
	}

	result, err := cl.Classrooms.Join(uint(classroomID), middleware.CurrentUserID(c))
	if err != nil {
		return serviceError(c, err)
	}
	if result == services.AlreadyEnrolled {
		return c.JSON(fiber.Map{"message": "Already enrolled in classroom"})
	}
	return c.JSON(fiber.Map{"message": "Successfully joined classroom"})
}

func (cl *ClassroomsController) JoinByInviteCode(c *fiber.Ctx) error {
	var input struct {
		InviteCode string `json:"invite_code"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.InviteCode == "" {
		return utils.BadRequest(c, "Invite code is required")
	}

	classroom, result, err := cl.Classrooms.JoinByInviteCode(input.InviteCode, middleware.CurrentUserID(c))
	if err != nil {
		return serviceError(c, err)
	}
	if result == services.AlreadyEnrolled {
		return c.JSON(fiber.Map{"message": "Already enrolled in classroom"})
	}
	return c.JSON(fiber.Map{"message": "Successfully joined " + classroom.Name})
}

func (cl *ClassroomsController) LeaveClassroom(c *fiber.Ctx) error {
	classroomID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid classroom ID")
	}

	if err := cl.Classrooms.Leave(uint(classroomID), middleware.CurrentUserID(c)); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Successfully left classroom"})
}

func (cl *ClassroomsController) GetStudents(c *fiber.Ctx) error {
	classroomID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid classroom ID")
	}

	classroom, err := cl.Classrooms.GetByID(uint(classroomID))
	if err != nil {
		return serviceError(c, err)
	}

	userID := middleware.CurrentUserID(c)
	role := middleware.CurrentRole(c)
	enrolled, err := cl.Classrooms.IsEnrolled(classroom.ID, userID)
	if err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	if !models.CanViewClassroom(role, classroom.TeacherID, userID, enrolled) {
		return utils.Forbidden(c, "Access denied")
	}

	roster, err := cl.Classrooms.Roster(classroom.ID)
	if err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	students := make([]fiber.Map, 0, len(roster))
	for _, studentID := range roster {
		var student models.User
		if err := cl.DB.First(&student, studentID).Error; err != nil {
			continue
		}
		students = append(students, userResponse(&student))
	}
	return c.JSON(students)
}

// GetProgress returns the per-student progress roll-up; teacher/admin only.
func (cl *ClassroomsController) GetProgress(c *fiber.Ctx) error {
	classroomID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid classroom ID")
	}

	classroom, err := cl.Classrooms.GetByID(uint(classroomID))
	if err != nil {
		return serviceError(c, err)
	}
	if !models.CanManageClassroom(middleware.CurrentRole(c), classroom.TeacherID, middleware.CurrentUserID(c)) {
		return utils.Forbidden(c, "Access denied")
	}

	analytics, err := cl.Analytics.ClassroomAnalytics(classroom.ID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(analytics.StudentsProgress)
}

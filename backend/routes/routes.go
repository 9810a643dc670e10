package routes

import (
	"goacademy/backend/config"
	"goacademy/backend/controllers"
	"goacademy/backend/middleware"
	"goacademy/backend/models"
	"goacademy/backend/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	// Services
	progressService := services.NewProgressService(db)
	achievementService := services.NewAchievementService(db)
	classroomService := services.NewClassroomService(db)
	analyticsService := services.NewAnalyticsService(db)
	graderService := services.NewGraderService()

	app.Get("/api/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Auth routes
	authController := controllers.NewAuthController(db, cfg)
	app.Post("/api/auth/register", authController.Register)
	app.Post("/api/auth/login", authController.Login)

	// Middleware
	authMiddleware := middleware.AuthMiddleware(db, cfg)
	teacherOnly := middleware.RequireRole(models.RoleTeacher)
	adminOnly := middleware.RequireRole(models.RoleAdmin)

	// User routes
	app.Get("/api/users/me", authMiddleware, authController.Me)
	app.Put("/api/users/me", authMiddleware, authController.UpdateMe)
	app.Get("/api/users", authMiddleware, adminOnly, authController.ListUsers)

	// Courses routes
	coursesController := controllers.NewCoursesController(db, cfg)
	courses := app.Group("/api/courses", authMiddleware)
	courses.Get("/", coursesController.GetCourses)
	courses.Get("/:id", coursesController.GetCourseDetails)
	courses.Get("/:id/lessons", coursesController.GetCourseLessons)
	courses.Post("/", teacherOnly, coursesController.CreateCourse)
	courses.Put("/:id", teacherOnly, coursesController.UpdateCourse)
	courses.Delete("/:id", teacherOnly, coursesController.DeleteCourse)
	courses.Put("/:id/lessons/reorder", teacherOnly, coursesController.ReorderLessons)

	// Lessons routes
	lessonsController := controllers.NewLessonsController(db, cfg, progressService, achievementService, graderService)
	lessons := app.Group("/api/lessons", authMiddleware)
	lessons.Get("/:id", lessonsController.GetLesson)
	lessons.Post("/", teacherOnly, lessonsController.CreateLesson)
	lessons.Put("/:id", teacherOnly, lessonsController.UpdateLesson)
	lessons.Delete("/:id", teacherOnly, lessonsController.DeleteLesson)
	lessons.Post("/:id/submit", lessonsController.SubmitCode)

	// Progress routes
	progressController := controllers.NewProgressController(db, cfg, progressService, achievementService, analyticsService)
	progress := app.Group("/api/progress", authMiddleware)
	progress.Get("/", progressController.GetMyProgress)
	progress.Get("/course/:courseId", progressController.GetMyCourseProgress)
	progress.Post("/", progressController.CreateProgress)
	progress.Put("/:id", progressController.UpdateProgress)
	app.Get("/api/dashboard", authMiddleware, progressController.GetDashboard)

	// Achievements routes
	achievementsController := controllers.NewAchievementsController(db, cfg, achievementService)
	achievements := app.Group("/api/achievements", authMiddleware)
	achievements.Get("/", achievementsController.GetMyAchievements)
	achievements.Get("/user/:userId", achievementsController.GetUserAchievements)
	achievements.Post("/", adminOnly, achievementsController.AwardAchievement)
	achievements.Post("/check", achievementsController.CheckAchievements)

	// Classrooms routes
	classroomsController := controllers.NewClassroomsController(db, cfg, classroomService, analyticsService)
	classrooms := app.Group("/api/classrooms", authMiddleware)
	classrooms.Get("/", classroomsController.GetMyClassrooms)
	classrooms.Post("/", teacherOnly, classroomsController.CreateClassroom)
	classrooms.Post("/join", classroomsController.JoinByInviteCode)
	classrooms.Get("/:id", classroomsController.GetClassroom)
	classrooms.Put("/:id", classroomsController.UpdateClassroom)
	classrooms.Delete("/:id", classroomsController.DeleteClassroom)
	classrooms.Post("/:id/join", classroomsController.JoinClassroom)
	classrooms.Post("/:id/leave", classroomsController.LeaveClassroom)
	classrooms.Get("/:id/students", classroomsController.GetStudents)
	classrooms.Get("/:id/progress", classroomsController.GetProgress)

	// Analytics routes
	analyticsController := controllers.NewAnalyticsController(db, cfg, analyticsService, classroomService)
	analytics := app.Group("/api/analytics", authMiddleware)
	analytics.Get("/dashboard", adminOnly, analyticsController.GetDashboard)
	analytics.Get("/courses", teacherOnly, analyticsController.GetCourses)
	analytics.Get("/courses/:id", teacherOnly, analyticsController.GetCourseDetails)
	analytics.Get("/students/:id", analyticsController.GetStudent)
	analytics.Get("/classrooms/:id", analyticsController.GetClassroom)
}

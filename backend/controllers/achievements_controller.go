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

type AchievementsController struct {
	DB           *gorm.DB
	Cfg          *config.Config
	Achievements *services.AchievementService
}

func NewAchievementsController(db *gorm.DB, cfg *config.Config, achievements *services.AchievementService) *AchievementsController {
	return &AchievementsController{DB: db, Cfg: cfg, Achievements: achievements}
}

func (ac *AchievementsController) GetMyAchievements(c *fiber.Ctx) error {
	achievements, err := ac.Achievements.GetUserAchievements(middleware.CurrentUserID(c))
	if err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	return c.JSON(achievements)
}

func (ac *AchievementsController) GetUserAchievements(c *fiber.Ctx) error {
	userID, err := strconv.Atoi(c.Params("userId"))
	if err != nil {
		return utils.BadRequest(c, "Invalid user ID")
	}
	if !models.CanViewStudent(middleware.CurrentRole(c), uint(userID), middleware.CurrentUserID(c)) {
		return utils.Forbidden(c, "Access denied")
	}

	achievements, err := ac.Achievements.GetUserAchievements(uint(userID))
	if err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	return c.JSON(achievements)
}

// AwardAchievement grants a custom badge directly. Admin only; a duplicate
// type for the same user is a conflict.
func (ac *AchievementsController) AwardAchievement(c *fiber.Ctx) error {
	var input struct {
		UserID      uint   `json:"user_id"`
		Type        string `json:"type"`
		Title       string `json:"title"`
		Description string `json:"description"`
		Icon        string `json:"icon"`
		Points      int    `json:"points"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	errs := map[string]string{}
	if input.UserID == 0 {
		errs["user_id"] = "user_id is required"
	}
	if input.Type == "" {
		errs["type"] = "type is required"
	}
	if input.Title == "" {
		errs["title"] = "title is required"
	}
	if len(errs) > 0 {
		return utils.ValidationError(c, errs)
	}

	achievement, err := ac.Achievements.Award(input.UserID, input.Type, input.Title, input.Description, input.Icon, input.Points)
	if err != nil {
		return serviceError(c, err)
	}
	return utils.Created(c, achievement)
}

// CheckAchievements re-runs the rule sweep for the caller and returns only
// the badges earned by this call.
func (ac *AchievementsController) CheckAchievements(c *fiber.Ctx) error {
	awarded, err := ac.Achievements.Evaluate(middleware.CurrentUserID(c))
	if err != nil {
		return serviceError(c, err)
	}
	if awarded == nil {
		awarded = []models.Achievement{}
	}
	return c.JSON(fiber.Map{"new_achievements": awarded})
}

package controllers

import (
	"errors"
	"time"

	"goacademy/backend/config"
	"goacademy/backend/middleware"
	"goacademy/backend/models"
	"goacademy/backend/utils"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/gofiber/fiber/v2"
)

type AuthController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewAuthController(db *gorm.DB, cfg *config.Config) *AuthController {
	return &AuthController{DB: db, Cfg: cfg}
}

// Register godoc
// @Summary Register a new user
// @Description Creates a new user account and returns a JWT token
// @Tags auth
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Router /auth/register [post]
func (ac *AuthController) Register(c *fiber.Ctx) error {
	type RegisterInput struct {
		Email    string      `json:"email"`
		Password string      `json:"password"`
		Name     string      `json:"name"`
		Role     models.Role `json:"role"`
	}

	var input RegisterInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	fieldErrors := map[string]string{}
	if input.Email == "" {
		fieldErrors["email"] = "email is required"
	}
	if len(input.Password) < 6 {
		fieldErrors["password"] = "password must be at least 6 characters"
	}
	if input.Name == "" {
		fieldErrors["name"] = "name is required"
	}
	if len(fieldErrors) > 0 {
		return utils.ValidationError(c, fieldErrors)
	}

	if input.Role == "" {
		input.Role = models.RoleStudent
	}
	if !input.Role.Valid() {
		return utils.BadRequest(c, "Invalid role")
	}

	var existing models.User
	if err := ac.DB.Where("email = ?", input.Email).First(&existing).Error; err == nil {
		return utils.Conflict(c, "Email already registered")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return utils.InternalServerError(c, "Could not hash password")
	}

	user := models.User{
		Email:        input.Email,
		PasswordHash: string(hashedPassword),
		Name:         input.Name,
		Role:         input.Role,
		Level:        1,
	}
	if err := ac.DB.Create(&user).Error; err != nil {
		return utils.InternalServerError(c, "Could not create user")
	}

	token, err := utils.GenerateJWTToken(user.ID, ac.Cfg)
	if err != nil {
		return utils.InternalServerError(c, "Could not generate token")
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user":  userResponse(&user),
	})
}

// Login godoc
// @Summary User login
// @Description Authenticates a user and returns a JWT token
// @Tags auth
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponse
// @Router /auth/login [post]
func (ac *AuthController) Login(c *fiber.Ctx) error {
	type LoginInput struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	var input LoginInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	var user models.User
	if err := ac.DB.Where("email = ?", input.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.Unauthorized(c, "Invalid credentials")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return utils.Unauthorized(c, "Invalid credentials")
	}

	token, err := utils.GenerateJWTToken(user.ID, ac.Cfg)
	if err != nil {
		return utils.InternalServerError(c, "Could not generate token")
	}

	ac.DB.Create(&models.LoginHistory{UserID: user.ID, LoginTime: time.Now()})
	ac.touchStreak(&user)

	return c.JSON(fiber.Map{
		"token": token,
		"user":  userResponse(&user),
	})
}

// touchStreak maintains the daily login streak: a second login the same day
// changes nothing, a login within 48 hours of the last one extends the
// streak, anything later resets it.
func (ac *AuthController) touchStreak(user *models.User) {
	now := time.Now()
	switch {
	case user.LastActiveDate == nil:
		user.Streak = 1
	case sameDay(*user.LastActiveDate, now):
		// Already counted today.
	case now.Sub(*user.LastActiveDate) < 48*time.Hour:
		user.Streak++
	default:
		user.Streak = 1
	}
	user.LastActiveDate = &now
	ac.DB.Model(user).Updates(map[string]interface{}{
		"streak":           user.Streak,
		"last_active_date": user.LastActiveDate,
	})
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func (ac *AuthController) Me(c *fiber.Ctx) error {
	var user models.User
	if err := ac.DB.First(&user, middleware.CurrentUserID(c)).Error; err != nil {
		return utils.NotFound(c, "User not found")
	}
	return c.JSON(userResponse(&user))
}

func (ac *AuthController) UpdateMe(c *fiber.Ctx) error {
	type UpdateInput struct {
		Name   string `json:"name"`
		Avatar string `json:"avatar"`
	}

	var input UpdateInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	var user models.User
	if err := ac.DB.First(&user, middleware.CurrentUserID(c)).Error; err != nil {
		return utils.NotFound(c, "User not found")
	}

	if input.Name != "" {
		user.Name = input.Name
	}
	if input.Avatar != "" {
		user.Avatar = input.Avatar
	}
	if err := ac.DB.Save(&user).Error; err != nil {
		return utils.InternalServerError(c, "Could not update user")
	}

	return c.JSON(userResponse(&user))
}

// ListUsers is the admin user listing, paginated.
func (ac *AuthController) ListUsers(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	pageSize := c.QueryInt("page_size", 50)
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 200 {
		pageSize = 50
	}

	var total int64
	if err := ac.DB.Model(&models.User{}).Count(&total).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	var users []models.User
	if err := ac.DB.Offset((page - 1) * pageSize).Limit(pageSize).Find(&users).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	listed := make([]fiber.Map, 0, len(users))
	for i := range users {
		listed = append(listed, userResponse(&users[i]))
	}
	return utils.Paginate(c, listed, total, page, pageSize)
}

func userResponse(user *models.User) fiber.Map {
	return fiber.Map{
		"id":     user.ID,
		"email":  user.Email,
		"name":   user.Name,
		"role":   user.Role,
		"avatar": user.Avatar,
		"profile": fiber.Map{
			"level":            user.Level,
			"total_xp":         user.TotalXP,
			"streak":           user.Streak,
			"last_active_date": user.LastActiveDate,
		},
	}
}

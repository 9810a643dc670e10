package controllers

import (
	"errors"

	"goacademy/backend/models"
	"goacademy/backend/utils"

	"github.com/gofiber/fiber/v2"
)

// serviceError translates service-layer sentinel errors to HTTP statuses.
func serviceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return utils.NotFound(c, err.Error())
	case errors.Is(err, models.ErrInvalidInviteCode):
		return utils.NotFound(c, err.Error())
	case errors.Is(err, models.ErrForbidden):
		return utils.Forbidden(c, err.Error())
	case errors.Is(err, models.ErrClassroomFull),
		errors.Is(err, models.ErrDuplicateAchievement),
		errors.Is(err, models.ErrDuplicateOrder):
		return utils.Conflict(c, err.Error())
	case errors.Is(err, models.ErrNotEnrolled):
		return utils.BadRequest(c, err.Error())
	default:
		return utils.InternalServerError(c, "Could not query database")
	}
}

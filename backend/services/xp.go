package services

import (
	"goacademy/backend/models"

	"gorm.io/gorm"
)

// CreditXP adds points to a user's total XP and refreshes the derived level.
// Both statements are SQL-side increments so concurrent credits for the same
// user never lose updates. TotalXP only ever grows.
func CreditXP(db *gorm.DB, userID uint, points int) error {
	if points <= 0 {
		return nil
	}

	res := db.Model(&models.User{}).
		Where("id = ?", userID).
		UpdateColumn("total_xp", gorm.Expr("total_xp + ?", points))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.ErrNotFound
	}

	return db.Model(&models.User{}).
		Where("id = ?", userID).
		UpdateColumn("level", gorm.Expr("total_xp / 1000 + 1")).Error
}

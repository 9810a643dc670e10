package services

import (
	"errors"
	"time"

	"goacademy/backend/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProgressService persists one progress record per (user, lesson) pair and
// applies status transitions to it.
type ProgressService struct {
	DB *gorm.DB
}

func NewProgressService(db *gorm.DB) *ProgressService {
	return &ProgressService{DB: db}
}

// Upsert creates the progress record for (userID, lessonID) or bumps its
// attempts counter if it already exists. The whole thing is a single
// conditional insert on the composite unique index, so concurrent first
// submissions for the same pair cannot produce duplicate rows and the
// counter increment cannot be lost.
func (ps *ProgressService) Upsert(userID, lessonID, courseID uint, classroomID *uint) (*models.Progress, error) {
	record := models.Progress{
		UserID:      userID,
		LessonID:    lessonID,
		CourseID:    courseID,
		ClassroomID: classroomID,
		Status:      models.StatusNotStarted,
		Attempts:    1,
	}

	err := ps.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "lesson_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"attempts":   gorm.Expr("attempts + 1"),
			"updated_at": time.Now(),
		}),
	}).Create(&record).Error
	if err != nil {
		return nil, err
	}

	// Re-read so the caller sees the stored row, not the insert candidate.
	var stored models.Progress
	if err := ps.DB.Where("user_id = ? AND lesson_id = ?", userID, lessonID).First(&stored).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}

// ApplyUpdate mutates an existing progress record. Rules:
//   - the first transition into completed stamps CompletedAt; repeating the
//     completed status later never re-stamps it
//   - once completed, the score can only go up and the status stays completed
//   - TimeSpent is an additive delta in minutes
//
// The completed transition is a conditional update on the status column, so
// of any number of concurrent calls exactly one gets transitioned == true.
// Callers crediting XP key off that flag.
func (ps *ProgressService) ApplyUpdate(progressID uint, upd models.ProgressUpdate) (*models.Progress, bool, error) {
	var record models.Progress
	if err := ps.DB.First(&record, progressID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, models.ErrNotFound
		}
		return nil, false, err
	}

	transitioned := false

	if upd.Status != nil && record.Status != models.StatusCompleted {
		if *upd.Status == models.StatusCompleted {
			now := time.Now().UTC()
			claim := ps.DB.Model(&models.Progress{}).
				Where("id = ? AND status <> ?", progressID, models.StatusCompleted).
				Updates(map[string]interface{}{
					"status":       models.StatusCompleted,
					"completed_at": now,
				})
			if claim.Error != nil {
				return nil, false, claim.Error
			}
			transitioned = claim.RowsAffected > 0
		} else {
			// A concurrent completion wins over any other transition.
			err := ps.DB.Model(&models.Progress{}).
				Where("id = ? AND status <> ?", progressID, models.StatusCompleted).
				UpdateColumn("status", *upd.Status).Error
			if err != nil {
				return nil, false, err
			}
		}
	}

	if upd.Score != nil && *upd.Score >= 0 {
		if record.Status == models.StatusCompleted || (upd.Status != nil && *upd.Status == models.StatusCompleted && !transitioned) {
			// Completed before this call, or a racer claimed it: only up.
			err := ps.DB.Model(&models.Progress{}).
				Where("id = ? AND score < ?", progressID, *upd.Score).
				UpdateColumn("score", *upd.Score).Error
			if err != nil {
				return nil, false, err
			}
		} else {
			err := ps.DB.Model(&models.Progress{}).
				Where("id = ?", progressID).
				UpdateColumn("score", *upd.Score).Error
			if err != nil {
				return nil, false, err
			}
		}
	}

	if upd.TimeSpent != nil && *upd.TimeSpent > 0 {
		err := ps.DB.Model(&models.Progress{}).
			Where("id = ?", progressID).
			UpdateColumn("time_spent", gorm.Expr("time_spent + ?", *upd.TimeSpent)).Error
		if err != nil {
			return nil, false, err
		}
	}

	stored, err := ps.GetByID(progressID)
	if err != nil {
		return nil, false, err
	}
	return stored, transitioned, nil
}

// RecordTouch registers that a learner opened a lesson. Only the attempts
// counter moves; status stays wherever it is.
func (ps *ProgressService) RecordTouch(userID, lessonID, courseID uint) (*models.Progress, error) {
	return ps.Upsert(userID, lessonID, courseID, nil)
}

// RecordCompletion is the inbound event from the grading collaborator: the
// lesson passed with the given score. It upserts the record and claims the
// completed transition with a conditional update, so of any number of
// concurrent calls exactly one observes the transition and credits the XP.
// A resubmission of a passed lesson only ever raises the stored score.
func (ps *ProgressService) RecordCompletion(userID, lessonID, courseID uint, classroomID *uint, score, timeSpent int) (*models.Progress, error) {
	record, err := ps.Upsert(userID, lessonID, courseID, classroomID)
	if err != nil {
		return nil, err
	}

	if score < 0 {
		score = 0
	}

	status := models.StatusCompleted
	updated, transitioned, err := ps.ApplyUpdate(record.ID, models.ProgressUpdate{
		Status:    &status,
		Score:     &score,
		TimeSpent: &timeSpent,
	})
	if err != nil {
		return nil, err
	}

	if transitioned && score > 0 {
		if err := CreditXP(ps.DB, userID, score); err != nil {
			return nil, err
		}
	}
	return updated, nil
}

func (ps *ProgressService) GetUserProgress(userID uint) ([]models.Progress, error) {
	var records []models.Progress
	err := ps.DB.Where("user_id = ?", userID).Find(&records).Error
	return records, err
}

func (ps *ProgressService) GetCourseProgress(userID, courseID uint) ([]models.Progress, error) {
	var records []models.Progress
	err := ps.DB.Where("user_id = ? AND course_id = ?", userID, courseID).Find(&records).Error
	return records, err
}

func (ps *ProgressService) GetByID(progressID uint) (*models.Progress, error) {
	var record models.Progress
	if err := ps.DB.First(&record, progressID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

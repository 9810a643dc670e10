package services

import (
	"errors"
	"math/rand"

	"goacademy/backend/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	inviteCodeLength   = 8
	inviteCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	inviteCodeRetries  = 5
)

// JoinResult distinguishes a fresh enrollment from the idempotent repeat.
type JoinResult int

const (
	Joined JoinResult = iota
	AlreadyEnrolled
)

// ClassroomService manages classroom membership: the roster over which
// classroom analytics are computed.
type ClassroomService struct {
	DB *gorm.DB

	newCode func() string
}

func NewClassroomService(db *gorm.DB) *ClassroomService {
	return &ClassroomService{DB: db, newCode: generateInviteCode}
}

// Create stores a classroom with a fresh unique invite code and its course
// associations.
func (cs *ClassroomService) Create(name, description string, teacherID uint, maxStudents int, courseIDs []uint) (*models.Classroom, error) {
	if maxStudents <= 0 {
		maxStudents = 20
	}

	classroom := models.Classroom{
		Name:        name,
		Description: description,
		TeacherID:   teacherID,
		MaxStudents: maxStudents,
		IsActive:    true,
	}

	// The invite code column is unique; on the (very unlikely) collision we
	// generate a new code and try again. Any other error aborts immediately.
	var lastErr error
	for i := 0; i < inviteCodeRetries; i++ {
		classroom.InviteCode = cs.newCode()
		lastErr = cs.DB.Create(&classroom).Error
		if lastErr == nil || !errors.Is(lastErr, gorm.ErrDuplicatedKey) {
			break
		}
	}
	if lastErr != nil {
		return nil, lastErr
	}

	for _, courseID := range courseIDs {
		link := models.ClassroomCourse{ClassroomID: classroom.ID, CourseID: courseID}
		if err := cs.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&link).Error; err != nil {
			return nil, err
		}
	}
	return &classroom, nil
}

// Join enrolls a student. Joining twice is not an error: the second call
// reports AlreadyEnrolled and leaves the roster untouched. The membership
// insert and the seat claim commit together: the claim is a conditional
// increment on the classroom row, so two joins racing for the last seat
// serialize on that row and the loser's insert is rolled back.
func (cs *ClassroomService) Join(classroomID, userID uint) (JoinResult, error) {
	result := AlreadyEnrolled

	err := cs.DB.Transaction(func(tx *gorm.DB) error {
		var classroom models.Classroom
		if err := tx.First(&classroom, classroomID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.ErrNotFound
			}
			return err
		}

		res := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.ClassroomStudent{ClassroomID: classroomID, UserID: userID})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			result = AlreadyEnrolled
			return nil
		}

		claim := tx.Model(&models.Classroom{}).
			Where("id = ? AND students < max_students", classroomID).
			UpdateColumn("students", gorm.Expr("students + 1"))
		if claim.Error != nil {
			return claim.Error
		}
		if claim.RowsAffected == 0 {
			return models.ErrClassroomFull
		}

		result = Joined
		return nil
	})
	return result, err
}

// JoinByInviteCode resolves the code to a classroom, then defers to Join.
func (cs *ClassroomService) JoinByInviteCode(code string, userID uint) (*models.Classroom, JoinResult, error) {
	var classroom models.Classroom
	if err := cs.DB.Where("invite_code = ?", code).First(&classroom).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, AlreadyEnrolled, models.ErrInvalidInviteCode
		}
		return nil, AlreadyEnrolled, err
	}

	result, err := cs.Join(classroom.ID, userID)
	return &classroom, result, err
}

// Leave removes a student from the roster and frees the seat. ErrNotEnrolled
// when there was nothing to remove.
func (cs *ClassroomService) Leave(classroomID, userID uint) error {
	return cs.DB.Transaction(func(tx *gorm.DB) error {
		var classroom models.Classroom
		if err := tx.First(&classroom, classroomID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.ErrNotFound
			}
			return err
		}

		res := tx.Where("classroom_id = ? AND user_id = ?", classroomID, userID).
			Delete(&models.ClassroomStudent{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.ErrNotEnrolled
		}

		return tx.Model(&models.Classroom{}).
			Where("id = ? AND students > 0", classroomID).
			UpdateColumn("students", gorm.Expr("students - 1")).Error
	})
}

func (cs *ClassroomService) GetByID(classroomID uint) (*models.Classroom, error) {
	var classroom models.Classroom
	if err := cs.DB.First(&classroom, classroomID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &classroom, nil
}

func (cs *ClassroomService) GetByTeacher(teacherID uint) ([]models.Classroom, error) {
	var classrooms []models.Classroom
	err := cs.DB.Where("teacher_id = ?", teacherID).Find(&classrooms).Error
	return classrooms, err
}

func (cs *ClassroomService) GetByStudent(userID uint) ([]models.Classroom, error) {
	var classrooms []models.Classroom
	err := cs.DB.
		Joins("JOIN classroom_students ON classroom_students.classroom_id = classrooms.id").
		Where("classroom_students.user_id = ?", userID).
		Find(&classrooms).Error
	return classrooms, err
}

// Roster returns the enrolled student IDs.
func (cs *ClassroomService) Roster(classroomID uint) ([]uint, error) {
	var ids []uint
	err := cs.DB.Model(&models.ClassroomStudent{}).
		Where("classroom_id = ?", classroomID).
		Pluck("user_id", &ids).Error
	return ids, err
}

// CourseIDs returns the courses associated with a classroom.
func (cs *ClassroomService) CourseIDs(classroomID uint) ([]uint, error) {
	var ids []uint
	err := cs.DB.Model(&models.ClassroomCourse{}).
		Where("classroom_id = ?", classroomID).
		Pluck("course_id", &ids).Error
	return ids, err
}

func (cs *ClassroomService) MemberCount(classroomID uint) (int, error) {
	var count int64
	err := cs.DB.Model(&models.ClassroomStudent{}).Where("classroom_id = ?", classroomID).Count(&count).Error
	return int(count), err
}

func (cs *ClassroomService) IsEnrolled(classroomID, userID uint) (bool, error) {
	return cs.isEnrolled(cs.DB, classroomID, userID)
}

func (cs *ClassroomService) isEnrolled(tx *gorm.DB, classroomID, userID uint) (bool, error) {
	var count int64
	err := tx.Model(&models.ClassroomStudent{}).
		Where("classroom_id = ? AND user_id = ?", classroomID, userID).
		Count(&count).Error
	return count > 0, err
}

func generateInviteCode() string {
	code := make([]byte, inviteCodeLength)
	for i := range code {
		code[i] = inviteCodeAlphabet[rand.Intn(len(inviteCodeAlphabet))]
	}
	return string(code)
}

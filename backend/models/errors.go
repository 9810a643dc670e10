package models

import "errors"

// Domain errors returned by the services layer. Controllers translate these
// to HTTP statuses with errors.Is.
var (
	ErrNotFound             = errors.New("record not found")
	ErrForbidden            = errors.New("access denied")
	ErrClassroomFull        = errors.New("classroom is full")
	ErrNotEnrolled          = errors.New("not enrolled in classroom")
	ErrInvalidInviteCode    = errors.New("invalid invite code")
	ErrDuplicateAchievement = errors.New("user already has this achievement")
	ErrDuplicateOrder       = errors.New("lesson order already taken in course")
)

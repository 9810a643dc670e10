package models

type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleTeacher || r == RoleAdmin
}

// Permission rules. Kept as pure functions so they can be tested without
// spinning up the HTTP layer.

// CanManageClassroom reports whether an actor may edit or delete a classroom
// owned by ownerID.
func CanManageClassroom(actor Role, ownerID, actorID uint) bool {
	return actor == RoleAdmin || (actor == RoleTeacher && ownerID == actorID)
}

// CanViewStudent reports whether an actor may read another user's progress
// and analytics. Students only see themselves.
func CanViewStudent(actor Role, studentID, actorID uint) bool {
	if actor == RoleTeacher || actor == RoleAdmin {
		return true
	}
	return studentID == actorID
}

// CanViewClassroom reports whether an actor may read a classroom. Enrollment
// is checked separately for students.
func CanViewClassroom(actor Role, ownerID, actorID uint, enrolled bool) bool {
	if actor == RoleAdmin || ownerID == actorID {
		return true
	}
	return enrolled
}

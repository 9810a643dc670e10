package services

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"goacademy/backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestCreateGeneratesInviteCode(t *testing.T) {
	db := newTestDB(t)
	svc := NewClassroomService(db)
	teacher := seedUser(t, db, "teacher")
	course, _ := seedCourse(t, db, "Basics", 2)

	classroom, err := svc.Create("Go 101", "Intro group", teacher.ID, 0, []uint{course.ID})
	require.NoError(t, err)

	assert.Len(t, classroom.InviteCode, 8)
	for _, r := range classroom.InviteCode {
		assert.Contains(t, inviteCodeAlphabet, string(r))
	}
	assert.Equal(t, 20, classroom.MaxStudents) // default capacity
	assert.True(t, classroom.IsActive)

	courseIDs, err := svc.CourseIDs(classroom.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{course.ID}, courseIDs)
}

func TestJoinRespectsCapacity(t *testing.T) {
	db := newTestDB(t)
	svc := NewClassroomService(db)
	teacher := seedUser(t, db, "teacher")
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")

	classroom, err := svc.Create("Go 101", "", teacher.ID, 1, nil)
	require.NoError(t, err)

	result, err := svc.Join(classroom.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, Joined, result)

	_, err = svc.Join(classroom.ID, bob.ID)
	assert.ErrorIs(t, err, models.ErrClassroomFull)

	// The enrolled student can repeat the join without tripping the cap.
	result, err = svc.Join(classroom.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, AlreadyEnrolled, result)

	members, err := svc.MemberCount(classroom.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, members)
}

func TestJoinLastSeatUnderContention(t *testing.T) {
	db := newTestDB(t)
	svc := NewClassroomService(db)
	teacher := seedUser(t, db, "teacher")

	classroom, err := svc.Create("Go 101", "", teacher.ID, 1, nil)
	require.NoError(t, err)

	students := make([]*models.User, 4)
	for i := range students {
		students[i] = seedUser(t, db, fmt.Sprintf("student%d", i))
	}

	var wg sync.WaitGroup
	var joined int32
	errs := make(chan error, len(students))
	for _, student := range students {
		wg.Add(1)
		go func(userID uint) {
			defer wg.Done()
			result, err := svc.Join(classroom.ID, userID)
			if err == nil && result == Joined {
				atomic.AddInt32(&joined, 1)
			}
			errs <- err
		}(student.ID)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			assert.ErrorIs(t, err, models.ErrClassroomFull)
		}
	}
	assert.EqualValues(t, 1, joined)

	members, err := svc.MemberCount(classroom.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, members)

	stored, err := svc.GetByID(classroom.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Students)
}

func TestCreateRetriesOnlyOnInviteCodeCollision(t *testing.T) {
	db := newTestDB(t)
	svc := NewClassroomService(db)
	teacher := seedUser(t, db, "teacher")

	first, err := svc.Create("Go 101", "", teacher.ID, 5, nil)
	require.NoError(t, err)

	// The first generated code collides with the existing classroom; the
	// second is fresh.
	codes := []string{first.InviteCode, "FRESH42X"}
	calls := 0
	svc.newCode = func() string {
		code := codes[calls]
		calls++
		return code
	}

	second, err := svc.Create("Go 102", "", teacher.ID, 5, nil)
	require.NoError(t, err)
	assert.Equal(t, "FRESH42X", second.InviteCode)
	assert.Equal(t, 2, calls)
}

func TestCreateGivesUpAfterRepeatedCollisions(t *testing.T) {
	db := newTestDB(t)
	svc := NewClassroomService(db)
	teacher := seedUser(t, db, "teacher")

	first, err := svc.Create("Go 101", "", teacher.ID, 5, nil)
	require.NoError(t, err)

	calls := 0
	svc.newCode = func() string {
		calls++
		return first.InviteCode
	}

	_, err = svc.Create("Go 102", "", teacher.ID, 5, nil)
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
	assert.Equal(t, inviteCodeRetries, calls)
}

func TestJoinUnknownClassroom(t *testing.T) {
	db := newTestDB(t)
	svc := NewClassroomService(db)
	alice := seedUser(t, db, "alice")

	_, err := svc.Join(999, alice.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestJoinByInviteCode(t *testing.T) {
	db := newTestDB(t)
	svc := NewClassroomService(db)
	teacher := seedUser(t, db, "teacher")
	alice := seedUser(t, db, "alice")

	classroom, err := svc.Create("Go 101", "", teacher.ID, 5, nil)
	require.NoError(t, err)

	resolved, result, err := svc.JoinByInviteCode(classroom.InviteCode, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, Joined, result)
	assert.Equal(t, classroom.ID, resolved.ID)

	enrolled, err := svc.IsEnrolled(classroom.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, enrolled)
}

func TestJoinByInvalidInviteCodeHasNoSideEffects(t *testing.T) {
	db := newTestDB(t)
	svc := NewClassroomService(db)
	teacher := seedUser(t, db, "teacher")
	alice := seedUser(t, db, "alice")

	classroom, err := svc.Create("Go 101", "", teacher.ID, 5, nil)
	require.NoError(t, err)

	_, _, err = svc.JoinByInviteCode("NOPE1234", alice.ID)
	assert.ErrorIs(t, err, models.ErrInvalidInviteCode)

	members, err := svc.MemberCount(classroom.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, members)
}

func TestLeave(t *testing.T) {
	db := newTestDB(t)
	svc := NewClassroomService(db)
	teacher := seedUser(t, db, "teacher")
	alice := seedUser(t, db, "alice")

	classroom, err := svc.Create("Go 101", "", teacher.ID, 1, nil)
	require.NoError(t, err)

	_, err = svc.Join(classroom.ID, alice.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Leave(classroom.ID, alice.ID))
	assert.ErrorIs(t, svc.Leave(classroom.ID, alice.ID), models.ErrNotEnrolled)
	assert.ErrorIs(t, svc.Leave(999, alice.ID), models.ErrNotFound)

	// Leaving frees the seat again.
	result, err := svc.Join(classroom.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, Joined, result)
}

func TestRosterAndMembershipLookups(t *testing.T) {
	db := newTestDB(t)
	svc := NewClassroomService(db)
	teacher := seedUser(t, db, "teacher")
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")

	classroom, err := svc.Create("Go 101", "", teacher.ID, 5, nil)
	require.NoError(t, err)

	_, err = svc.Join(classroom.ID, alice.ID)
	require.NoError(t, err)
	_, err = svc.Join(classroom.ID, bob.ID)
	require.NoError(t, err)

	roster, err := svc.Roster(classroom.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{alice.ID, bob.ID}, roster)

	mine, err := svc.GetByStudent(alice.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, classroom.ID, mine[0].ID)

	taught, err := svc.GetByTeacher(teacher.ID)
	require.NoError(t, err)
	require.Len(t, taught, 1)
	assert.Equal(t, classroom.ID, taught[0].ID)
}

package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"goacademy/backend/config"
	"goacademy/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBCounter int64

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	name := fmt.Sprintf("file:routes%d?mode=memory&cache=shared", atomic.AddInt64(&testDBCounter, 1))
	db, err := gorm.Open(sqlite.Open(name), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, utils.Migrate(db))

	cfg := &config.Config{JWTSecret: "testsecret", ServerPort: "8080"}
	app := fiber.New()
	SetupRoutes(app, db, cfg)
	return app
}

func doRequest(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var decoded map[string]interface{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp.StatusCode, decoded
}

func registerUser(t *testing.T, app *fiber.App, name, role string) string {
	t.Helper()
	status, body := doRequest(t, app, http.MethodPost, "/api/auth/register", "", fiber.Map{
		"email":    name + "@example.com",
		"password": "password123",
		"name":     name,
		"role":     role,
	})
	require.Equal(t, http.StatusOK, status)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestHealth(t *testing.T) {
	app := newTestApp(t)
	status, body := doRequest(t, app, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
}

func TestRegisterAndLogin(t *testing.T) {
	app := newTestApp(t)
	registerUser(t, app, "alice", "student")

	// Duplicate email is rejected.
	status, _ := doRequest(t, app, http.MethodPost, "/api/auth/register", "", fiber.Map{
		"email":    "alice@example.com",
		"password": "password123",
		"name":     "alice again",
	})
	assert.Equal(t, http.StatusConflict, status)

	status, _ = doRequest(t, app, http.MethodPost, "/api/auth/login", "", fiber.Map{
		"email":    "alice@example.com",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body := doRequest(t, app, http.MethodPost, "/api/auth/login", "", fiber.Map{
		"email":    "alice@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, body["token"])

	user := body["user"].(map[string]interface{})
	profile := user["profile"].(map[string]interface{})
	assert.EqualValues(t, 1, profile["streak"])
}

func TestAuthRequired(t *testing.T) {
	app := newTestApp(t)
	status, _ := doRequest(t, app, http.MethodGet, "/api/progress", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestCourseManagementRequiresTeacher(t *testing.T) {
	app := newTestApp(t)
	student := registerUser(t, app, "alice", "student")

	status, _ := doRequest(t, app, http.MethodPost, "/api/courses", student, fiber.Map{
		"title": "Forbidden Course",
	})
	assert.Equal(t, http.StatusForbidden, status)
}

func TestLessonSubmissionFlow(t *testing.T) {
	app := newTestApp(t)
	teacher := registerUser(t, app, "teacher", "teacher")
	student := registerUser(t, app, "alice", "student")

	status, body := doRequest(t, app, http.MethodPost, "/api/courses", teacher, fiber.Map{
		"title": "Go Basics",
	})
	require.Equal(t, http.StatusCreated, status)
	courseID := body["data"].(map[string]interface{})["ID"].(float64)

	status, body = doRequest(t, app, http.MethodPost, "/api/lessons", teacher, fiber.Map{
		"course_id": courseID,
		"title":     "Hello, World",
		"type":      "coding",
		"coding_challenge": fiber.Map{
			"template": "package main",
			"points":   25,
			"test_cases": []fiber.Map{
				{"expected_output": "Hello, World!"},
			},
		},
	})
	require.Equal(t, http.StatusCreated, status)
	lessonID := body["data"].(map[string]interface{})["ID"].(float64)

	// A failing submission counts the attempt but completes nothing.
	path := fmt.Sprintf("/api/lessons/%.0f/submit", lessonID)
	status, body = doRequest(t, app, http.MethodPost, path, student, fiber.Map{
		"code": `fmt.Println("goodbye")`,
	})
	require.Equal(t, http.StatusOK, status)
	result := body["result"].(map[string]interface{})
	assert.False(t, result["tests_pass"].(bool))

	status, body = doRequest(t, app, http.MethodPost, path, student, fiber.Map{
		"code":       `fmt.Println("Hello, World!")`,
		"time_spent": 15,
	})
	require.Equal(t, http.StatusOK, status)
	result = body["result"].(map[string]interface{})
	assert.True(t, result["tests_pass"].(bool))

	types := map[string]bool{}
	for _, a := range body["new_achievements"].([]interface{}) {
		types[a.(map[string]interface{})["Type"].(string)] = true
	}
	assert.True(t, types["first_lesson"])
	assert.True(t, types["first_code"])
	assert.True(t, types[fmt.Sprintf("course_%.0f", courseID)])

	// Dashboard reflects the completion and the XP credits.
	status, dashboard := doRequest(t, app, http.MethodGet, "/api/dashboard", student, nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, dashboard["completed_lessons"])
	// 25 score + 10 first_lesson + 25 first_code + 200 course badge
	assert.EqualValues(t, 260, dashboard["total_xp"])
}

func TestClassroomFlow(t *testing.T) {
	app := newTestApp(t)
	teacher := registerUser(t, app, "teacher", "teacher")
	alice := registerUser(t, app, "alice", "student")
	bob := registerUser(t, app, "bob", "student")

	status, body := doRequest(t, app, http.MethodPost, "/api/classrooms", teacher, fiber.Map{
		"name":         "Go 101",
		"max_students": 1,
	})
	require.Equal(t, http.StatusCreated, status)
	classroom := body["data"].(map[string]interface{})
	inviteCode := classroom["InviteCode"].(string)
	classroomID := classroom["ID"].(float64)

	status, body = doRequest(t, app, http.MethodPost, "/api/classrooms/join", alice, fiber.Map{
		"invite_code": inviteCode,
	})
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body["message"], "joined")

	// Repeat join is idempotent.
	status, body = doRequest(t, app, http.MethodPost, "/api/classrooms/join", alice, fiber.Map{
		"invite_code": inviteCode,
	})
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body["message"], "Already enrolled")

	// The classroom is full for everyone else.
	status, _ = doRequest(t, app, http.MethodPost, "/api/classrooms/join", bob, fiber.Map{
		"invite_code": inviteCode,
	})
	assert.Equal(t, http.StatusConflict, status)

	status, _ = doRequest(t, app, http.MethodPost, "/api/classrooms/join", bob, fiber.Map{
		"invite_code": "WRONG123",
	})
	assert.Equal(t, http.StatusNotFound, status)

	// Students cannot read the teacher-facing roll-up.
	path := fmt.Sprintf("/api/classrooms/%.0f/progress", classroomID)
	status, _ = doRequest(t, app, http.MethodGet, path, alice, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = doRequest(t, app, http.MethodGet, path, teacher, nil)
	assert.Equal(t, http.StatusOK, status)
}

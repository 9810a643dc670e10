package services

import (
	"testing"

	"goacademy/backend/models"

	"github.com/stretchr/testify/assert"
)

func TestGradeWithTestCases(t *testing.T) {
	svc := NewGraderService()
	challenge := &models.CodingChallenge{
		Points: 25,
		TestCases: []models.ChallengeTestCase{
			{ExpectedOutput: "Hello, World!"},
		},
	}

	result := svc.Grade(challenge, `fmt.Println("hello, world!")`)
	assert.True(t, result.TestsPass)
	assert.Equal(t, 25, result.Score)

	result = svc.Grade(challenge, `fmt.Println("goodbye")`)
	assert.False(t, result.TestsPass)
	assert.Zero(t, result.Score)
}

func TestGradeWithoutTestCases(t *testing.T) {
	svc := NewGraderService()
	challenge := &models.CodingChallenge{Points: 10}

	result := svc.Grade(challenge, "func main() {}")
	assert.True(t, result.TestsPass)
	assert.Equal(t, 10, result.Score)

	result = svc.Grade(challenge, "not a program")
	assert.False(t, result.TestsPass)
}

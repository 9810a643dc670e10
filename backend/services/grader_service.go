package services

import (
	"strings"

	"goacademy/backend/models"
)

// SubmissionResult is the grading verdict fed into the progression engine.
type SubmissionResult struct {
	Success   bool   `json:"success"`
	Output    string `json:"output"`
	Error     string `json:"error,omitempty"`
	TestsPass bool   `json:"tests_pass"`
	Score     int    `json:"score"`
}

// GraderService is a stand-in for real sandboxed execution: it only checks
// that the submission mentions the expected output of the challenge's test
// cases. The progression engine cares about the verdict and score, nothing
// else.
type GraderService struct{}

func NewGraderService() *GraderService {
	return &GraderService{}
}

func (gs *GraderService) Grade(challenge *models.CodingChallenge, code string) SubmissionResult {
	lowered := strings.ToLower(code)

	if len(challenge.TestCases) > 0 {
		for _, tc := range challenge.TestCases {
			if !strings.Contains(lowered, strings.ToLower(tc.ExpectedOutput)) {
				return SubmissionResult{
					Success: false,
					Output:  "Code does not produce expected output",
				}
			}
		}
		return SubmissionResult{
			Success:   true,
			Output:    challenge.TestCases[0].ExpectedOutput,
			TestsPass: true,
			Score:     challenge.Points,
		}
	}

	// No test cases: accept anything that at least looks like a program.
	if strings.Contains(lowered, "func") || strings.Contains(lowered, "return") {
		return SubmissionResult{Success: true, Output: "ok", TestsPass: true, Score: challenge.Points}
	}
	return SubmissionResult{Success: false, Output: "Code compilation failed or incorrect implementation"}
}

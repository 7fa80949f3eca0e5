package service

import (
	"errors"
	"fmt"

	"fs3m/internal/model"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")

	ErrSubmissionNotFound      = errors.New("submission not found")
	ErrFrameworkNotFound       = errors.New("framework not found")
	ErrSubmissionNotEditable   = errors.New("submission is not editable")
	ErrConfigNotFound          = errors.New("no assessment config for framework and type")
	ErrNoDefaultConfigured     = errors.New("framework has no default assessment config")
	ErrCalculatorNotRegistered = errors.New("assessment type has no registered calculator")
	ErrAssessmentNotFound      = errors.New("assessment not computed yet")
	ErrPlanNotFound            = errors.New("action plan not found")
)

// IncompleteSubmissionError blocks submission when controls below target
// still lack recommendations.
type IncompleteSubmissionError struct {
	Missing []model.MissingRecommendation
}

func (e *IncompleteSubmissionError) Error() string {
	return fmt.Sprintf("submission incomplete: %d controls missing recommendations", len(e.Missing))
}

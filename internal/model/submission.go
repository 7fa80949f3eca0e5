package model

import (
	"errors"
	"fmt"
	"time"
)

// Submission statuses.
const (
	StatusDraft     = "draft"
	StatusPending   = "pending"
	StatusInReview  = "in_review"
	StatusSubmitted = "submitted"
	StatusArchived  = "archived"
)

// ErrInvalidTransition is returned when a status change is requested outside
// the allowed state graph. It is never silently coerced.
var ErrInvalidTransition = errors.New("invalid submission status transition")

// allowedTransitions is the submission state graph. Submitted and archived
// are terminal.
var allowedTransitions = map[string][]string{
	StatusDraft:     {StatusPending, StatusInReview},
	StatusPending:   {StatusInReview, StatusDraft},
	StatusInReview:  {StatusSubmitted, StatusPending},
	StatusSubmitted: {},
	StatusArchived:  {},
}

// ValidStatus reports whether s is a known submission status.
func ValidStatus(s string) bool {
	_, ok := allowedTransitions[s]
	return ok
}

// Submission is one questionnaire instance for one customer against one
// framework. One submission per (customer, framework).
type Submission struct {
	ID          string     `json:"id" bson:"_id,omitempty"`
	CustomerID  string     `json:"customerId" bson:"customerId"`
	FrameworkID string     `json:"frameworkId" bson:"frameworkId"`
	AssignedTo  string     `json:"assignedTo,omitempty" bson:"assignedTo,omitempty"`
	Status      string     `json:"status" bson:"status"`
	Version     int        `json:"version" bson:"version"`
	Progress    float64    `json:"progress" bson:"progress"`
	CreatedAt   time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt" bson:"updatedAt"`
	FinishedAt  *time.Time `json:"finishedAt,omitempty" bson:"finishedAt,omitempty"`
	Approved    bool       `json:"approved" bson:"approved"`
	ApprovedAt  *time.Time `json:"approvedAt,omitempty" bson:"approvedAt,omitempty"`
}

// CanTransition reports whether the submission may move to newStatus.
func (s *Submission) CanTransition(newStatus string) bool {
	for _, next := range allowedTransitions[s.Status] {
		if next == newStatus {
			return true
		}
	}
	return false
}

// Transition moves the submission to newStatus or fails with
// ErrInvalidTransition.
func (s *Submission) Transition(newStatus string) error {
	if !ValidStatus(newStatus) {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, newStatus)
	}
	if !s.CanTransition(newStatus) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s.Status, newStatus)
	}
	s.Status = newStatus
	return nil
}

// IsEditable reports whether answers may still be changed.
func (s *Submission) IsEditable() bool {
	return s.Status == StatusDraft || s.Status == StatusPending
}

// Answer is one (submission, question) response. Value holds an arbitrary
// structured payload; Score is an optional pre-normalized grade.
type Answer struct {
	ID           string      `json:"id" bson:"_id,omitempty"`
	SubmissionID string      `json:"submissionId" bson:"submissionId"`
	QuestionID   string      `json:"questionId" bson:"questionId"`
	Value        interface{} `json:"value" bson:"value"`
	Evidence     string      `json:"evidence,omitempty" bson:"evidence,omitempty"`
	Score        *float64    `json:"score,omitempty" bson:"score,omitempty"`
	AnsweredAt   time.Time   `json:"answeredAt" bson:"answeredAt"`
}

// AnswerFact is an answer joined with its question/control/domain context.
// It is the read-only input the calculators and the recommendation generator
// consume.
type AnswerFact struct {
	QuestionID   string
	LocalCode    string
	ControlCode  string
	ControlTitle string
	DomainCode   string
	DomainTitle  string
	Value        interface{}
	Score        *float64
	Evidence     string
}

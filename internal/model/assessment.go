package model

import "time"

// Bucket levels, from coarsest to finest.
const (
	LevelFunction = "FUNCTION"
	LevelCategory = "CATEGORY"
	LevelControl  = "CONTROL"
)

// Levels in display order (FUNCTION -> CATEGORY -> CONTROL).
var Levels = []string{LevelFunction, LevelCategory, LevelControl}

// Assessment is the computed maturity result for a submission (1:1).
type Assessment struct {
	ID           string    `json:"id" bson:"_id,omitempty"`
	SubmissionID string    `json:"submissionId" bson:"submissionId"`
	TypeSlug     string    `json:"typeSlug" bson:"typeSlug"`
	FrameworkID  string    `json:"frameworkId" bson:"frameworkId"`
	Summary      Summary   `json:"summary" bson:"summary"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Summary is the overall roll-up stored on the assessment.
type Summary struct {
	OverallAverage float64 `json:"overallAverage" bson:"overallAverage"`
	Goal           float64 `json:"goal" bson:"goal"`
	Status         string  `json:"status" bson:"status"`
}

// AttachmentRef describes an evidence attachment referenced by an answer.
type AttachmentRef struct {
	Name        string `json:"name,omitempty" bson:"name,omitempty"`
	URL         string `json:"url,omitempty" bson:"url,omitempty"`
	Description string `json:"description,omitempty" bson:"description,omitempty"`
}

// ChildItem is a per-child summary embedded in a parent bucket for display.
type ChildItem struct {
	Code    string  `json:"code" bson:"code"`
	Title   string  `json:"title" bson:"title"`
	Average float64 `json:"average" bson:"average"`
	Status  string  `json:"status" bson:"status"`
}

// BucketMetrics carries the aggregates of one bucket. Policy/practice
// averages are present only when the calculator ran in policy/practice mode.
type BucketMetrics struct {
	Average         float64         `json:"average" bson:"average"`
	Goal            float64         `json:"goal" bson:"goal"`
	Status          string          `json:"status" bson:"status"`
	PolicyAverage   *float64        `json:"policyAverage,omitempty" bson:"policyAverage,omitempty"`
	PracticeAverage *float64        `json:"practiceAverage,omitempty" bson:"practiceAverage,omitempty"`
	Notes           []string        `json:"notes,omitempty" bson:"notes,omitempty"`
	Attachments     []AttachmentRef `json:"attachments,omitempty" bson:"attachments,omitempty"`
	Items           []ChildItem     `json:"items,omitempty" bson:"items,omitempty"`
}

// AssessmentBucket is one aggregated row at a taxonomy level. Buckets are
// derived state: deleted and regenerated wholesale on every calculation run.
type AssessmentBucket struct {
	ID           string        `json:"id" bson:"_id,omitempty"`
	AssessmentID string        `json:"assessmentId" bson:"assessmentId"`
	Level        string        `json:"level" bson:"level"`
	Code         string        `json:"code" bson:"code"`
	Name         string        `json:"name" bson:"name"`
	Order        int           `json:"order" bson:"order"`
	Metrics      BucketMetrics `json:"metrics" bson:"metrics"`
}

// CalculationResult is what a calculator produces for one submission.
type CalculationResult struct {
	Buckets []AssessmentBucket `json:"buckets"`
	Summary Summary            `json:"summary"`
}

// AssessmentView is the display aggregate: the assessment plus its buckets in
// FUNCTION -> CATEGORY -> CONTROL order.
type AssessmentView struct {
	Assessment Assessment         `json:"assessment"`
	Buckets    []AssessmentBucket `json:"buckets"`
}

package model

import "time"

// Applicability dimensions of a recommendation.
const (
	ApplicabilityPolicy   = "Policy"
	ApplicabilityPractice = "Practice"
	ApplicabilityBoth     = "Both"
)

// Recommendation priorities.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// Recommendation is a suggested remediation action tied to a control and an
// applicability dimension. Unique per (submission, control code,
// applicability). Urgency/Severity are 1-5 grades stored as strings.
type Recommendation struct {
	ID            string    `json:"id" bson:"_id,omitempty"`
	CustomerID    string    `json:"customerId" bson:"customerId"`
	SubmissionID  string    `json:"submissionId" bson:"submissionId"`
	AnalystID     string    `json:"analystId,omitempty" bson:"analystId,omitempty"`
	Name          string    `json:"name" bson:"name"`
	Category      string    `json:"category" bson:"category"`
	Applicability string    `json:"applicability" bson:"applicability"`
	Technology    string    `json:"technology" bson:"technology"`
	ControlCode   string    `json:"controlCode" bson:"controlCode"`
	Priority      string    `json:"priority" bson:"priority"`
	Responsible   string    `json:"responsible" bson:"responsible"`
	StartDate     time.Time `json:"startDate" bson:"startDate"`
	EndDate       time.Time `json:"endDate" bson:"endDate"`
	Months        int       `json:"months" bson:"months"`
	Details       string    `json:"details" bson:"details"`
	Investments   string    `json:"investments" bson:"investments"`
	Risks         string    `json:"risks" bson:"risks"`
	Justification string    `json:"justification" bson:"justification"`
	Notes         string    `json:"notes,omitempty" bson:"notes,omitempty"`
	Urgency       string    `json:"urgency" bson:"urgency"`
	Severity      string    `json:"severity" bson:"severity"`
	QuestionRef   string    `json:"questionRef" bson:"questionRef"`
	CreatedAt     time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt" bson:"updatedAt"`
}

// MissingRecommendation is one control below target with no recommendation.
type MissingRecommendation struct {
	ControlCode string   `json:"controlCode"`
	Domain      string   `json:"domain"`
	QuestionIDs []string `json:"questionIds"`
}

// MissingReport is the pre-submit recommendation coverage check.
type MissingReport struct {
	TotalMissing int                     `json:"totalMissing"`
	Missing      []MissingRecommendation `json:"missing"`
	CanSubmit    bool                    `json:"canSubmit"`
}

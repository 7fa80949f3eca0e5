package model

import "time"

// Kanban stages for plan entries.
const (
	KanbanToDo       = "To Do"
	KanbanInProgress = "In Progress"
	KanbanDone       = "Done"
)

// ActionPlan is an ordered collection of recommendations for one
// (customer, submission) pair. Duration/Urgency/Severity are plan-level
// aggregates recomputed on every build.
type ActionPlan struct {
	ID           string    `json:"id" bson:"_id,omitempty"`
	CustomerID   string    `json:"customerId" bson:"customerId"`
	SubmissionID string    `json:"submissionId" bson:"submissionId"`
	CreatedBy    string    `json:"createdBy" bson:"createdBy"`
	Notes        string    `json:"notes,omitempty" bson:"notes,omitempty"`
	Duration     string    `json:"duration" bson:"duration"`
	Urgency      string    `json:"urgency" bson:"urgency"`
	Severity     string    `json:"severity" bson:"severity"`
	Category     string    `json:"category,omitempty" bson:"category,omitempty"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt" bson:"updatedAt"`
}

// PlanRecommendation links a recommendation into a plan with its kanban
// status and position. Links are fully replaced on every rebuild.
type PlanRecommendation struct {
	ID               string    `json:"id" bson:"_id,omitempty"`
	PlanID           string    `json:"planId" bson:"planId"`
	RecommendationID string    `json:"recommendationId" bson:"recommendationId"`
	Order            int       `json:"order" bson:"order"`
	Status           string    `json:"status" bson:"status"`
	ChangedAt        time.Time `json:"changedAt" bson:"changedAt"`
}

// KanbanUpdate is one board move: reposition a plan link and set its stage.
type KanbanUpdate struct {
	PlanID           string `json:"planId"`
	RecommendationID string `json:"recommendationId"`
	Status           string `json:"status"`
	Order            int    `json:"order"`
}

// PlanView is a plan plus its ordered links.
type PlanView struct {
	Plan  ActionPlan           `json:"plan"`
	Items []PlanRecommendation `json:"items"`
}

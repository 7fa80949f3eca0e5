package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"fs3m/internal/model"
)

// ActionPlanRepo handles MongoDB operations for action plans and their
// recommendation links.
type ActionPlanRepo interface {
	GetOrCreate(ctx context.Context, customerID, submissionID, createdBy string) (*model.ActionPlan, error)
	GetByPair(ctx context.Context, customerID, submissionID string) (*model.ActionPlan, error)
	Update(ctx context.Context, plan *model.ActionPlan) error
	DeleteByPair(ctx context.Context, customerID, submissionID string) error

	ReplaceLinks(ctx context.Context, planID string, links []model.PlanRecommendation) error
	ListLinks(ctx context.Context, planID string) ([]model.PlanRecommendation, error)
	// UpdateLink repositions one link on the kanban board. The returned bool
	// reports whether a link matched; a miss is not an error.
	UpdateLink(ctx context.Context, planID, recommendationID, status string, order int) (bool, error)
}

type actionPlanRepo struct {
	plans *mongo.Collection
	links *mongo.Collection
}

// NewActionPlanRepo creates a new action plan repository.
func NewActionPlanRepo(db *mongo.Database) ActionPlanRepo {
	return &actionPlanRepo{
		plans: db.Collection("action_plans"),
		links: db.Collection("action_plan_recommendations"),
	}
}

func (r *actionPlanRepo) GetOrCreate(ctx context.Context, customerID, submissionID, createdBy string) (*model.ActionPlan, error) {
	existing, err := r.GetByPair(ctx, customerID, submissionID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}
	now := time.Now()
	plan := &model.ActionPlan{
		ID:           uuid.NewString(),
		CustomerID:   customerID,
		SubmissionID: submissionID,
		CreatedBy:    createdBy,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := r.plans.InsertOne(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

func (r *actionPlanRepo) GetByPair(ctx context.Context, customerID, submissionID string) (*model.ActionPlan, error) {
	var plan model.ActionPlan
	err := r.plans.FindOne(ctx, bson.M{"customerId": customerID, "submissionId": submissionID}).Decode(&plan)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *actionPlanRepo) Update(ctx context.Context, plan *model.ActionPlan) error {
	plan.UpdatedAt = time.Now()
	_, err := r.plans.ReplaceOne(ctx, bson.M{"_id": plan.ID}, plan)
	return err
}

func (r *actionPlanRepo) DeleteByPair(ctx context.Context, customerID, submissionID string) error {
	plan, err := r.GetByPair(ctx, customerID, submissionID)
	if err != nil || plan == nil {
		return err
	}
	if _, err := r.links.DeleteMany(ctx, bson.M{"planId": plan.ID}); err != nil {
		return err
	}
	_, err = r.plans.DeleteOne(ctx, bson.M{"_id": plan.ID})
	return err
}

func (r *actionPlanRepo) ReplaceLinks(ctx context.Context, planID string, links []model.PlanRecommendation) error {
	if _, err := r.links.DeleteMany(ctx, bson.M{"planId": planID}); err != nil {
		return err
	}
	if len(links) == 0 {
		return nil
	}
	docs := make([]interface{}, 0, len(links))
	for i := range links {
		l := links[i]
		l.ID = uuid.NewString()
		l.PlanID = planID
		if l.Status == "" {
			l.Status = model.KanbanToDo
		}
		l.ChangedAt = time.Now()
		docs = append(docs, l)
	}
	_, err := r.links.InsertMany(ctx, docs)
	return err
}

func (r *actionPlanRepo) ListLinks(ctx context.Context, planID string) ([]model.PlanRecommendation, error) {
	cursor, err := r.links.Find(ctx, bson.M{"planId": planID},
		options.Find().SetSort(bson.D{{Key: "order", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []model.PlanRecommendation
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *actionPlanRepo) UpdateLink(ctx context.Context, planID, recommendationID, status string, order int) (bool, error) {
	filter := bson.M{"planId": planID, "recommendationId": recommendationID}
	update := bson.M{"$set": bson.M{"status": status, "order": order, "changedAt": time.Now()}}
	res, err := r.links.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

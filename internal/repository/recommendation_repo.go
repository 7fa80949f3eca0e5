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

// RecommendationRepo handles MongoDB operations for recommendations.
// Identity within a submission is (controlCode, applicability).
type RecommendationRepo interface {
	Create(ctx context.Context, rec *model.Recommendation) error
	ExistsByIdentity(ctx context.Context, submissionID, controlCode, applicability string) (bool, error)
	DeleteByIdentity(ctx context.Context, submissionID, controlCode, applicability string) error
	DeleteBySubmission(ctx context.Context, submissionID string) error
	ListBySubmission(ctx context.Context, submissionID string) ([]*model.Recommendation, error)
	ListByCustomerAndSubmission(ctx context.Context, customerID, submissionID string) ([]*model.Recommendation, error)
	GetByID(ctx context.Context, id string) (*model.Recommendation, error)
	Update(ctx context.Context, rec *model.Recommendation) error
}

type recommendationRepo struct {
	collection *mongo.Collection
}

// NewRecommendationRepo creates a new recommendation repository.
func NewRecommendationRepo(db *mongo.Database) RecommendationRepo {
	return &recommendationRepo{collection: db.Collection("recommendations")}
}

func (r *recommendationRepo) Create(ctx context.Context, rec *model.Recommendation) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	now := time.Now()
	rec.CreatedAt = now
	rec.UpdatedAt = now
	_, err := r.collection.InsertOne(ctx, rec)
	return err
}

func (r *recommendationRepo) ExistsByIdentity(ctx context.Context, submissionID, controlCode, applicability string) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{
		"submissionId":  submissionID,
		"controlCode":   controlCode,
		"applicability": applicability,
	}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *recommendationRepo) DeleteByIdentity(ctx context.Context, submissionID, controlCode, applicability string) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{
		"submissionId":  submissionID,
		"controlCode":   controlCode,
		"applicability": applicability,
	})
	return err
}

func (r *recommendationRepo) DeleteBySubmission(ctx context.Context, submissionID string) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"submissionId": submissionID})
	return err
}

func (r *recommendationRepo) ListBySubmission(ctx context.Context, submissionID string) ([]*model.Recommendation, error) {
	return r.list(ctx, bson.M{"submissionId": submissionID})
}

func (r *recommendationRepo) ListByCustomerAndSubmission(ctx context.Context, customerID, submissionID string) ([]*model.Recommendation, error) {
	return r.list(ctx, bson.M{"customerId": customerID, "submissionId": submissionID})
}

func (r *recommendationRepo) list(ctx context.Context, filter bson.M) ([]*model.Recommendation, error) {
	cursor, err := r.collection.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "controlCode", Value: 1}, {Key: "applicability", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []*model.Recommendation
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *recommendationRepo) GetByID(ctx context.Context, id string) (*model.Recommendation, error) {
	var rec model.Recommendation
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&rec)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *recommendationRepo) Update(ctx context.Context, rec *model.Recommendation) error {
	rec.UpdatedAt = time.Now()
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": rec.ID}, rec)
	return err
}

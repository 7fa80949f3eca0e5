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

// SubmissionRepo handles MongoDB operations for submissions.
type SubmissionRepo interface {
	Create(ctx context.Context, s *model.Submission) error
	GetByID(ctx context.Context, id string) (*model.Submission, error)
	GetByCustomerAndFramework(ctx context.Context, customerID, frameworkID string) (*model.Submission, error)
	ListByCustomer(ctx context.Context, customerID string) ([]*model.Submission, error)
	ListByStatus(ctx context.Context, status string) ([]*model.Submission, error)
	Update(ctx context.Context, s *model.Submission) error
	UpdateProgress(ctx context.Context, id string, progress float64) error
}

type submissionRepo struct {
	collection *mongo.Collection
}

// NewSubmissionRepo creates a new submission repository.
func NewSubmissionRepo(db *mongo.Database) SubmissionRepo {
	return &submissionRepo{collection: db.Collection("submissions")}
}

func (r *submissionRepo) Create(ctx context.Context, s *model.Submission) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	now := time.Now()
	s.CreatedAt = now
	s.UpdatedAt = now
	if s.Status == "" {
		s.Status = model.StatusDraft
	}
	if s.Version == 0 {
		s.Version = 1
	}
	_, err := r.collection.InsertOne(ctx, s)
	return err
}

func (r *submissionRepo) GetByID(ctx context.Context, id string) (*model.Submission, error) {
	var s model.Submission
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&s)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *submissionRepo) GetByCustomerAndFramework(ctx context.Context, customerID, frameworkID string) (*model.Submission, error) {
	var s model.Submission
	filter := bson.M{
		"customerId":  customerID,
		"frameworkId": frameworkID,
		"status":      bson.M{"$ne": model.StatusArchived},
	}
	err := r.collection.FindOne(ctx, filter).Decode(&s)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *submissionRepo) ListByCustomer(ctx context.Context, customerID string) ([]*model.Submission, error) {
	return r.list(ctx, bson.M{"customerId": customerID})
}

func (r *submissionRepo) ListByStatus(ctx context.Context, status string) ([]*model.Submission, error) {
	return r.list(ctx, bson.M{"status": status})
}

func (r *submissionRepo) list(ctx context.Context, filter bson.M) ([]*model.Submission, error) {
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []*model.Submission
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *submissionRepo) Update(ctx context.Context, s *model.Submission) error {
	s.UpdatedAt = time.Now()
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": s.ID}, s)
	return err
}

func (r *submissionRepo) UpdateProgress(ctx context.Context, id string, progress float64) error {
	update := bson.M{"$set": bson.M{"progress": progress, "updatedAt": time.Now()}}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	return err
}

package repository

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"fs3m/internal/model"
)

// AssessmentRepo handles MongoDB operations for assessments and their
// buckets. Buckets are derived state and get replaced wholesale per run.
type AssessmentRepo interface {
	UpsertForSubmission(ctx context.Context, a *model.Assessment) error
	GetBySubmission(ctx context.Context, submissionID string) (*model.Assessment, error)
	UpdateSummary(ctx context.Context, assessmentID string, summary model.Summary) error
	ReplaceBuckets(ctx context.Context, assessmentID string, buckets []model.AssessmentBucket) error
	ListBuckets(ctx context.Context, assessmentID string) ([]model.AssessmentBucket, error)
}

type assessmentRepo struct {
	assessments *mongo.Collection
	buckets     *mongo.Collection
}

// NewAssessmentRepo creates a new assessment repository.
func NewAssessmentRepo(db *mongo.Database) AssessmentRepo {
	return &assessmentRepo{
		assessments: db.Collection("assessments"),
		buckets:     db.Collection("assessment_buckets"),
	}
}

func (r *assessmentRepo) UpsertForSubmission(ctx context.Context, a *model.Assessment) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
		a.CreatedAt = time.Now()
	}
	a.UpdatedAt = time.Now()

	filter := bson.M{"submissionId": a.SubmissionID}
	update := bson.M{
		"$set": bson.M{
			"typeSlug":    a.TypeSlug,
			"frameworkId": a.FrameworkID,
			"summary":     a.Summary,
			"updatedAt":   a.UpdatedAt,
		},
		"$setOnInsert": bson.M{
			"_id":          a.ID,
			"submissionId": a.SubmissionID,
			"createdAt":    a.CreatedAt,
		},
	}
	_, err := r.assessments.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return err
	}
	// Re-read so callers see the persisted ID when the upsert matched an
	// existing document.
	var stored model.Assessment
	if err := r.assessments.FindOne(ctx, filter).Decode(&stored); err != nil {
		return err
	}
	*a = stored
	return nil
}

func (r *assessmentRepo) GetBySubmission(ctx context.Context, submissionID string) (*model.Assessment, error) {
	var a model.Assessment
	err := r.assessments.FindOne(ctx, bson.M{"submissionId": submissionID}).Decode(&a)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *assessmentRepo) UpdateSummary(ctx context.Context, assessmentID string, summary model.Summary) error {
	update := bson.M{"$set": bson.M{"summary": summary, "updatedAt": time.Now()}}
	_, err := r.assessments.UpdateOne(ctx, bson.M{"_id": assessmentID}, update)
	return err
}

func (r *assessmentRepo) ReplaceBuckets(ctx context.Context, assessmentID string, buckets []model.AssessmentBucket) error {
	if _, err := r.buckets.DeleteMany(ctx, bson.M{"assessmentId": assessmentID}); err != nil {
		return err
	}
	if len(buckets) == 0 {
		return nil
	}
	docs := make([]interface{}, 0, len(buckets))
	for i := range buckets {
		b := buckets[i]
		b.ID = uuid.NewString()
		b.AssessmentID = assessmentID
		docs = append(docs, b)
	}
	_, err := r.buckets.InsertMany(ctx, docs)
	return err
}

// levelRank orders buckets FUNCTION -> CATEGORY -> CONTROL for display.
var levelRank = map[string]int{
	model.LevelFunction: 0,
	model.LevelCategory: 1,
	model.LevelControl:  2,
}

func (r *assessmentRepo) ListBuckets(ctx context.Context, assessmentID string) ([]model.AssessmentBucket, error) {
	cursor, err := r.buckets.Find(ctx, bson.M{"assessmentId": assessmentID},
		options.Find().SetSort(bson.D{{Key: "level", Value: 1}, {Key: "order", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []model.AssessmentBucket
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	// Mongo sorts level lexicographically (CATEGORY < CONTROL < FUNCTION);
	// reorder by the display rank, keeping per-level order stable.
	sort.SliceStable(out, func(i, j int) bool {
		if levelRank[out[i].Level] != levelRank[out[j].Level] {
			return levelRank[out[i].Level] < levelRank[out[j].Level]
		}
		return out[i].Order < out[j].Order
	})
	return out, nil
}

package repository

import (
	"context"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"fs3m/internal/model"
)

// ConfigRepo handles MongoDB operations for assessment types and the
// per-framework calculator configurations.
type ConfigRepo interface {
	UpsertType(ctx context.Context, t *model.AssessmentType) error
	ListTypes(ctx context.Context) ([]*model.AssessmentType, error)

	UpsertConfig(ctx context.Context, c *model.FrameworkAssessmentConfig) error
	GetConfig(ctx context.Context, frameworkID, typeSlug string) (*model.FrameworkAssessmentConfig, error)
	GetDefaultConfig(ctx context.Context, frameworkID string) (*model.FrameworkAssessmentConfig, error)
	ListConfigs(ctx context.Context, frameworkID string) ([]*model.FrameworkAssessmentConfig, error)
}

type configRepo struct {
	types   *mongo.Collection
	configs *mongo.Collection
}

// NewConfigRepo creates a new config repository.
func NewConfigRepo(db *mongo.Database) ConfigRepo {
	return &configRepo{
		types:   db.Collection("assessment_types"),
		configs: db.Collection("framework_assessment_configs"),
	}
}

func (r *configRepo) UpsertType(ctx context.Context, t *model.AssessmentType) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	_, err := r.types.ReplaceOne(ctx, bson.M{"slug": t.Slug}, t, options.Replace().SetUpsert(true))
	return err
}

func (r *configRepo) ListTypes(ctx context.Context) ([]*model.AssessmentType, error) {
	cursor, err := r.types.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "slug", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []*model.AssessmentType
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *configRepo) UpsertConfig(ctx context.Context, c *model.FrameworkAssessmentConfig) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	// Only one default per framework: demote the others first.
	if c.IsDefault {
		_, err := r.configs.UpdateMany(ctx,
			bson.M{"frameworkId": c.FrameworkID, "typeSlug": bson.M{"$ne": c.TypeSlug}},
			bson.M{"$set": bson.M{"isDefault": false}})
		if err != nil {
			return err
		}
	}
	filter := bson.M{"frameworkId": c.FrameworkID, "typeSlug": c.TypeSlug}
	_, err := r.configs.ReplaceOne(ctx, filter, c, options.Replace().SetUpsert(true))
	return err
}

func (r *configRepo) GetConfig(ctx context.Context, frameworkID, typeSlug string) (*model.FrameworkAssessmentConfig, error) {
	var c model.FrameworkAssessmentConfig
	err := r.configs.FindOne(ctx, bson.M{"frameworkId": frameworkID, "typeSlug": typeSlug}).Decode(&c)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *configRepo) GetDefaultConfig(ctx context.Context, frameworkID string) (*model.FrameworkAssessmentConfig, error) {
	var c model.FrameworkAssessmentConfig
	err := r.configs.FindOne(ctx, bson.M{"frameworkId": frameworkID, "isDefault": true}).Decode(&c)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *configRepo) ListConfigs(ctx context.Context, frameworkID string) ([]*model.FrameworkAssessmentConfig, error) {
	cursor, err := r.configs.Find(ctx, bson.M{"frameworkId": frameworkID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []*model.FrameworkAssessmentConfig
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

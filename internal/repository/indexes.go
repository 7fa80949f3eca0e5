package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes backing the uniqueness rules the write
// paths rely on. Called once at startup; creation is idempotent.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	unique := options.Index().SetUnique(true)

	specs := map[string][]mongo.IndexModel{
		"frameworks": {
			{Keys: bson.D{{Key: "slug", Value: 1}}, Options: unique},
		},
		"domains": {
			{Keys: bson.D{{Key: "frameworkId", Value: 1}, {Key: "code", Value: 1}}, Options: unique},
		},
		"controls": {
			{Keys: bson.D{{Key: "frameworkId", Value: 1}, {Key: "code", Value: 1}}, Options: unique},
		},
		"questions": {
			{Keys: bson.D{{Key: "controlId", Value: 1}, {Key: "localCode", Value: 1}}, Options: unique},
		},
		"users": {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
		},
		"submissions": {
			{Keys: bson.D{{Key: "customerId", Value: 1}, {Key: "frameworkId", Value: 1}}},
			{Keys: bson.D{{Key: "status", Value: 1}}},
		},
		"answers": {
			// one answer per question per submission; upserts depend on it
			{Keys: bson.D{{Key: "submissionId", Value: 1}, {Key: "questionId", Value: 1}}, Options: unique},
		},
		"assessments": {
			{Keys: bson.D{{Key: "submissionId", Value: 1}}, Options: unique},
		},
		"assessment_buckets": {
			{Keys: bson.D{{Key: "assessmentId", Value: 1}, {Key: "level", Value: 1}, {Key: "code", Value: 1}}, Options: unique},
		},
		"assessment_types": {
			{Keys: bson.D{{Key: "slug", Value: 1}}, Options: unique},
		},
		"framework_assessment_configs": {
			{Keys: bson.D{{Key: "frameworkId", Value: 1}, {Key: "typeSlug", Value: 1}}, Options: unique},
		},
		"recommendations": {
			{Keys: bson.D{{Key: "submissionId", Value: 1}, {Key: "controlCode", Value: 1}, {Key: "applicability", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "customerId", Value: 1}, {Key: "submissionId", Value: 1}}},
		},
		"action_plans": {
			{Keys: bson.D{{Key: "customerId", Value: 1}, {Key: "submissionId", Value: 1}}, Options: unique},
		},
		"action_plan_recommendations": {
			{Keys: bson.D{{Key: "planId", Value: 1}, {Key: "recommendationId", Value: 1}}, Options: unique},
		},
	}

	for collection, models := range specs {
		if _, err := db.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
			return err
		}
	}
	return nil
}

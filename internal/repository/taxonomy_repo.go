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

// TaxonomyRepo handles MongoDB operations for the framework taxonomy
// (frameworks, domains, controls, questions). Taxonomy is long-lived
// reference data written by seeding and read by the engine.
type TaxonomyRepo interface {
	UpsertFramework(ctx context.Context, fw *model.Framework) error
	GetFrameworkBySlug(ctx context.Context, slug string) (*model.Framework, error)
	GetFrameworkByID(ctx context.Context, id string) (*model.Framework, error)
	ListFrameworks(ctx context.Context) ([]*model.Framework, error)

	UpsertDomain(ctx context.Context, d *model.Domain) error
	ListDomains(ctx context.Context, frameworkID string) ([]*model.Domain, error)

	UpsertControl(ctx context.Context, c *model.Control) error
	ListControls(ctx context.Context, frameworkID string) ([]*model.Control, error)

	UpsertQuestion(ctx context.Context, q *model.Question) error
	ListQuestionsByControls(ctx context.Context, controlIDs []string) ([]*model.Question, error)
	CountQuestions(ctx context.Context, frameworkID string, requiredOnly bool) (int64, error)
	ListQuestionIDs(ctx context.Context, frameworkID string, requiredOnly bool) ([]string, error)
}

type taxonomyRepo struct {
	frameworks *mongo.Collection
	domains    *mongo.Collection
	controls   *mongo.Collection
	questions  *mongo.Collection
}

// NewTaxonomyRepo creates a new taxonomy repository.
func NewTaxonomyRepo(db *mongo.Database) TaxonomyRepo {
	return &taxonomyRepo{
		frameworks: db.Collection("frameworks"),
		domains:    db.Collection("domains"),
		controls:   db.Collection("controls"),
		questions:  db.Collection("questions"),
	}
}

func (r *taxonomyRepo) UpsertFramework(ctx context.Context, fw *model.Framework) error {
	if fw.ID == "" {
		fw.ID = uuid.NewString()
		fw.CreatedAt = time.Now()
	}
	fw.UpdatedAt = time.Now()
	_, err := r.frameworks.ReplaceOne(ctx, bson.M{"slug": fw.Slug}, fw, options.Replace().SetUpsert(true))
	return err
}

func (r *taxonomyRepo) GetFrameworkBySlug(ctx context.Context, slug string) (*model.Framework, error) {
	var fw model.Framework
	err := r.frameworks.FindOne(ctx, bson.M{"slug": slug}).Decode(&fw)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &fw, nil
}

func (r *taxonomyRepo) GetFrameworkByID(ctx context.Context, id string) (*model.Framework, error) {
	var fw model.Framework
	err := r.frameworks.FindOne(ctx, bson.M{"_id": id}).Decode(&fw)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &fw, nil
}

func (r *taxonomyRepo) ListFrameworks(ctx context.Context) ([]*model.Framework, error) {
	cursor, err := r.frameworks.Find(ctx, bson.M{"active": true}, options.Find().SetSort(bson.D{{Key: "slug", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []*model.Framework
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *taxonomyRepo) UpsertDomain(ctx context.Context, d *model.Domain) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	filter := bson.M{"frameworkId": d.FrameworkID, "code": d.Code}
	_, err := r.domains.ReplaceOne(ctx, filter, d, options.Replace().SetUpsert(true))
	return err
}

func (r *taxonomyRepo) ListDomains(ctx context.Context, frameworkID string) ([]*model.Domain, error) {
	cursor, err := r.domains.Find(ctx, bson.M{"frameworkId": frameworkID},
		options.Find().SetSort(bson.D{{Key: "order", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []*model.Domain
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *taxonomyRepo) UpsertControl(ctx context.Context, c *model.Control) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	filter := bson.M{"frameworkId": c.FrameworkID, "code": c.Code}
	_, err := r.controls.ReplaceOne(ctx, filter, c, options.Replace().SetUpsert(true))
	return err
}

func (r *taxonomyRepo) ListControls(ctx context.Context, frameworkID string) ([]*model.Control, error) {
	cursor, err := r.controls.Find(ctx, bson.M{"frameworkId": frameworkID, "active": true},
		options.Find().SetSort(bson.D{{Key: "order", Value: 1}, {Key: "code", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []*model.Control
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *taxonomyRepo) UpsertQuestion(ctx context.Context, q *model.Question) error {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	filter := bson.M{"controlId": q.ControlID, "localCode": q.LocalCode}
	_, err := r.questions.ReplaceOne(ctx, filter, q, options.Replace().SetUpsert(true))
	return err
}

func (r *taxonomyRepo) ListQuestionsByControls(ctx context.Context, controlIDs []string) ([]*model.Question, error) {
	cursor, err := r.questions.Find(ctx, bson.M{"controlId": bson.M{"$in": controlIDs}},
		options.Find().SetSort(bson.D{{Key: "order", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []*model.Question
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *taxonomyRepo) frameworkControlIDs(ctx context.Context, frameworkID string) ([]string, error) {
	controls, err := r.ListControls(ctx, frameworkID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(controls))
	for _, c := range controls {
		ids = append(ids, c.ID)
	}
	return ids, nil
}

func (r *taxonomyRepo) CountQuestions(ctx context.Context, frameworkID string, requiredOnly bool) (int64, error) {
	ids, err := r.frameworkControlIDs(ctx, frameworkID)
	if err != nil {
		return 0, err
	}
	filter := bson.M{"controlId": bson.M{"$in": ids}}
	if requiredOnly {
		filter["required"] = true
	}
	return r.questions.CountDocuments(ctx, filter)
}

func (r *taxonomyRepo) ListQuestionIDs(ctx context.Context, frameworkID string, requiredOnly bool) ([]string, error) {
	ids, err := r.frameworkControlIDs(ctx, frameworkID)
	if err != nil {
		return nil, err
	}
	filter := bson.M{"controlId": bson.M{"$in": ids}}
	if requiredOnly {
		filter["required"] = true
	}
	cursor, err := r.questions.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var questions []*model.Question
	if err := cursor.All(ctx, &questions); err != nil {
		return nil, err
	}
	out := make([]string, 0, len(questions))
	for _, q := range questions {
		out = append(out, q.ID)
	}
	return out, nil
}

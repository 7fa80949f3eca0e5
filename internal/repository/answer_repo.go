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

// AnswerRepo handles MongoDB operations for submission answers.
type AnswerRepo interface {
	Upsert(ctx context.Context, a *model.Answer) error
	ListBySubmission(ctx context.Context, submissionID string) ([]*model.Answer, error)
	CountBySubmission(ctx context.Context, submissionID string) (int64, error)
	ListAnsweredQuestionIDs(ctx context.Context, submissionID string) ([]string, error)
	// ListFacts joins each answer of the submission with its question,
	// control and domain, producing the flat rows the calculators consume.
	ListFacts(ctx context.Context, submissionID string) ([]model.AnswerFact, error)
	DeleteBySubmission(ctx context.Context, submissionID string) error
}

type answerRepo struct {
	answers   *mongo.Collection
	questions *mongo.Collection
	controls  *mongo.Collection
	domains   *mongo.Collection
}

// NewAnswerRepo creates a new answer repository.
func NewAnswerRepo(db *mongo.Database) AnswerRepo {
	return &answerRepo{
		answers:   db.Collection("answers"),
		questions: db.Collection("questions"),
		controls:  db.Collection("controls"),
		domains:   db.Collection("domains"),
	}
}

func (r *answerRepo) Upsert(ctx context.Context, a *model.Answer) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	a.AnsweredAt = time.Now()
	filter := bson.M{"submissionId": a.SubmissionID, "questionId": a.QuestionID}
	update := bson.M{
		"$set": bson.M{
			"value":      a.Value,
			"evidence":   a.Evidence,
			"score":      a.Score,
			"answeredAt": a.AnsweredAt,
		},
		"$setOnInsert": bson.M{
			"_id":          a.ID,
			"submissionId": a.SubmissionID,
			"questionId":   a.QuestionID,
		},
	}
	_, err := r.answers.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

func (r *answerRepo) ListBySubmission(ctx context.Context, submissionID string) ([]*model.Answer, error) {
	cursor, err := r.answers.Find(ctx, bson.M{"submissionId": submissionID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []*model.Answer
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *answerRepo) CountBySubmission(ctx context.Context, submissionID string) (int64, error) {
	return r.answers.CountDocuments(ctx, bson.M{"submissionId": submissionID})
}

func (r *answerRepo) ListAnsweredQuestionIDs(ctx context.Context, submissionID string) ([]string, error) {
	answers, err := r.ListBySubmission(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(answers))
	for _, a := range answers {
		out = append(out, a.QuestionID)
	}
	return out, nil
}

func (r *answerRepo) ListFacts(ctx context.Context, submissionID string) ([]model.AnswerFact, error) {
	answers, err := r.ListBySubmission(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	if len(answers) == 0 {
		return nil, nil
	}

	questionIDs := make([]string, 0, len(answers))
	for _, a := range answers {
		questionIDs = append(questionIDs, a.QuestionID)
	}
	questions, err := r.findQuestions(ctx, questionIDs)
	if err != nil {
		return nil, err
	}

	controlIDs := make([]string, 0, len(questions))
	for _, q := range questions {
		controlIDs = append(controlIDs, q.ControlID)
	}
	controls, err := r.findControls(ctx, controlIDs)
	if err != nil {
		return nil, err
	}

	domainIDs := make([]string, 0, len(controls))
	for _, c := range controls {
		domainIDs = append(domainIDs, c.DomainID)
	}
	domains, err := r.findDomains(ctx, domainIDs)
	if err != nil {
		return nil, err
	}

	facts := make([]model.AnswerFact, 0, len(answers))
	for _, a := range answers {
		q, ok := questions[a.QuestionID]
		if !ok {
			// answer for a question removed from the taxonomy
			continue
		}
		fact := model.AnswerFact{
			QuestionID: a.QuestionID,
			LocalCode:  q.LocalCode,
			Value:      a.Value,
			Score:      a.Score,
			Evidence:   a.Evidence,
		}
		if c, ok := controls[q.ControlID]; ok {
			fact.ControlCode = c.Code
			fact.ControlTitle = c.Title
			if d, ok := domains[c.DomainID]; ok {
				fact.DomainCode = d.Code
				fact.DomainTitle = d.Title
			}
		}
		facts = append(facts, fact)
	}
	return facts, nil
}

func (r *answerRepo) findQuestions(ctx context.Context, ids []string) (map[string]*model.Question, error) {
	cursor, err := r.questions.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []*model.Question
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	out := make(map[string]*model.Question, len(rows))
	for _, q := range rows {
		out[q.ID] = q
	}
	return out, nil
}

func (r *answerRepo) findControls(ctx context.Context, ids []string) (map[string]*model.Control, error) {
	cursor, err := r.controls.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []*model.Control
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	out := make(map[string]*model.Control, len(rows))
	for _, c := range rows {
		out[c.ID] = c
	}
	return out, nil
}

func (r *answerRepo) findDomains(ctx context.Context, ids []string) (map[string]*model.Domain, error) {
	cursor, err := r.domains.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []*model.Domain
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	out := make(map[string]*model.Domain, len(rows))
	for _, d := range rows {
		out[d.ID] = d
	}
	return out, nil
}

func (r *answerRepo) DeleteBySubmission(ctx context.Context, submissionID string) error {
	_, err := r.answers.DeleteMany(ctx, bson.M{"submissionId": submissionID})
	return err
}

package service

import (
	"context"
	"fmt"
	"sort"

	"fs3m/internal/model"
)

// In-memory repository fakes backing the service tests.

type fakeSubmissionRepo struct {
	items map[string]*model.Submission
}

func newFakeSubmissionRepo() *fakeSubmissionRepo {
	return &fakeSubmissionRepo{items: map[string]*model.Submission{}}
}

func (r *fakeSubmissionRepo) Create(ctx context.Context, s *model.Submission) error {
	if s.ID == "" {
		s.ID = fmt.Sprintf("sub-%d", len(r.items)+1)
	}
	if s.Status == "" {
		s.Status = model.StatusDraft
	}
	cp := *s
	r.items[s.ID] = &cp
	return nil
}

func (r *fakeSubmissionRepo) GetByID(ctx context.Context, id string) (*model.Submission, error) {
	s, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (r *fakeSubmissionRepo) GetByCustomerAndFramework(ctx context.Context, customerID, frameworkID string) (*model.Submission, error) {
	for _, s := range r.items {
		if s.CustomerID == customerID && s.FrameworkID == frameworkID && s.Status != model.StatusArchived {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeSubmissionRepo) ListByCustomer(ctx context.Context, customerID string) ([]*model.Submission, error) {
	var out []*model.Submission
	for _, s := range r.items {
		if s.CustomerID == customerID {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeSubmissionRepo) ListByStatus(ctx context.Context, status string) ([]*model.Submission, error) {
	var out []*model.Submission
	for _, s := range r.items {
		if s.Status == status {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeSubmissionRepo) Update(ctx context.Context, s *model.Submission) error {
	cp := *s
	r.items[s.ID] = &cp
	return nil
}

func (r *fakeSubmissionRepo) UpdateProgress(ctx context.Context, id string, progress float64) error {
	if s, ok := r.items[id]; ok {
		s.Progress = progress
	}
	return nil
}

type fakeAnswerRepo struct {
	answers map[string]*model.Answer // key submissionID/questionID
	facts   []model.AnswerFact
}

func newFakeAnswerRepo() *fakeAnswerRepo {
	return &fakeAnswerRepo{answers: map[string]*model.Answer{}}
}

func (r *fakeAnswerRepo) key(submissionID, questionID string) string {
	return submissionID + "/" + questionID
}

func (r *fakeAnswerRepo) Upsert(ctx context.Context, a *model.Answer) error {
	cp := *a
	r.answers[r.key(a.SubmissionID, a.QuestionID)] = &cp
	return nil
}

func (r *fakeAnswerRepo) ListBySubmission(ctx context.Context, submissionID string) ([]*model.Answer, error) {
	var out []*model.Answer
	for _, a := range r.answers {
		if a.SubmissionID == submissionID {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeAnswerRepo) CountBySubmission(ctx context.Context, submissionID string) (int64, error) {
	list, _ := r.ListBySubmission(ctx, submissionID)
	return int64(len(list)), nil
}

func (r *fakeAnswerRepo) ListAnsweredQuestionIDs(ctx context.Context, submissionID string) ([]string, error) {
	list, _ := r.ListBySubmission(ctx, submissionID)
	out := make([]string, 0, len(list))
	for _, a := range list {
		out = append(out, a.QuestionID)
	}
	return out, nil
}

func (r *fakeAnswerRepo) ListFacts(ctx context.Context, submissionID string) ([]model.AnswerFact, error) {
	return r.facts, nil
}

func (r *fakeAnswerRepo) DeleteBySubmission(ctx context.Context, submissionID string) error {
	for k, a := range r.answers {
		if a.SubmissionID == submissionID {
			delete(r.answers, k)
		}
	}
	return nil
}

type fakeConfigRepo struct {
	types   []*model.AssessmentType
	configs []*model.FrameworkAssessmentConfig
}

func (r *fakeConfigRepo) UpsertType(ctx context.Context, t *model.AssessmentType) error {
	r.types = append(r.types, t)
	return nil
}

func (r *fakeConfigRepo) ListTypes(ctx context.Context) ([]*model.AssessmentType, error) {
	return r.types, nil
}

func (r *fakeConfigRepo) UpsertConfig(ctx context.Context, c *model.FrameworkAssessmentConfig) error {
	r.configs = append(r.configs, c)
	return nil
}

func (r *fakeConfigRepo) GetConfig(ctx context.Context, frameworkID, typeSlug string) (*model.FrameworkAssessmentConfig, error) {
	for _, c := range r.configs {
		if c.FrameworkID == frameworkID && c.TypeSlug == typeSlug {
			return c, nil
		}
	}
	return nil, nil
}

func (r *fakeConfigRepo) GetDefaultConfig(ctx context.Context, frameworkID string) (*model.FrameworkAssessmentConfig, error) {
	for _, c := range r.configs {
		if c.FrameworkID == frameworkID && c.IsDefault {
			return c, nil
		}
	}
	return nil, nil
}

func (r *fakeConfigRepo) ListConfigs(ctx context.Context, frameworkID string) ([]*model.FrameworkAssessmentConfig, error) {
	return r.configs, nil
}

type fakeAssessmentRepo struct {
	assessments map[string]*model.Assessment // by submissionID
	buckets     map[string][]model.AssessmentBucket
	replaces    int
}

func newFakeAssessmentRepo() *fakeAssessmentRepo {
	return &fakeAssessmentRepo{
		assessments: map[string]*model.Assessment{},
		buckets:     map[string][]model.AssessmentBucket{},
	}
}

func (r *fakeAssessmentRepo) UpsertForSubmission(ctx context.Context, a *model.Assessment) error {
	if existing, ok := r.assessments[a.SubmissionID]; ok {
		a.ID = existing.ID
	} else if a.ID == "" {
		a.ID = "assessment-" + a.SubmissionID
	}
	cp := *a
	r.assessments[a.SubmissionID] = &cp
	return nil
}

func (r *fakeAssessmentRepo) GetBySubmission(ctx context.Context, submissionID string) (*model.Assessment, error) {
	a, ok := r.assessments[submissionID]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (r *fakeAssessmentRepo) UpdateSummary(ctx context.Context, assessmentID string, summary model.Summary) error {
	for _, a := range r.assessments {
		if a.ID == assessmentID {
			a.Summary = summary
		}
	}
	return nil
}

func (r *fakeAssessmentRepo) ReplaceBuckets(ctx context.Context, assessmentID string, buckets []model.AssessmentBucket) error {
	r.replaces++
	stored := make([]model.AssessmentBucket, len(buckets))
	copy(stored, buckets)
	for i := range stored {
		stored[i].AssessmentID = assessmentID
	}
	r.buckets[assessmentID] = stored
	return nil
}

func (r *fakeAssessmentRepo) ListBuckets(ctx context.Context, assessmentID string) ([]model.AssessmentBucket, error) {
	rank := map[string]int{model.LevelFunction: 0, model.LevelCategory: 1, model.LevelControl: 2}
	out := make([]model.AssessmentBucket, len(r.buckets[assessmentID]))
	copy(out, r.buckets[assessmentID])
	sort.SliceStable(out, func(i, j int) bool {
		if rank[out[i].Level] != rank[out[j].Level] {
			return rank[out[i].Level] < rank[out[j].Level]
		}
		return out[i].Order < out[j].Order
	})
	return out, nil
}

type fakeRecommendationRepo struct {
	items []*model.Recommendation
	seq   int
}

func (r *fakeRecommendationRepo) Create(ctx context.Context, rec *model.Recommendation) error {
	if rec.ID == "" {
		r.seq++
		rec.ID = fmt.Sprintf("rec-%d", r.seq)
	}
	cp := *rec
	r.items = append(r.items, &cp)
	return nil
}

func (r *fakeRecommendationRepo) ExistsByIdentity(ctx context.Context, submissionID, controlCode, applicability string) (bool, error) {
	for _, rec := range r.items {
		if rec.SubmissionID == submissionID && rec.ControlCode == controlCode && rec.Applicability == applicability {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeRecommendationRepo) DeleteByIdentity(ctx context.Context, submissionID, controlCode, applicability string) error {
	kept := r.items[:0]
	for _, rec := range r.items {
		if rec.SubmissionID == submissionID && rec.ControlCode == controlCode && rec.Applicability == applicability {
			continue
		}
		kept = append(kept, rec)
	}
	r.items = kept
	return nil
}

func (r *fakeRecommendationRepo) DeleteBySubmission(ctx context.Context, submissionID string) error {
	kept := r.items[:0]
	for _, rec := range r.items {
		if rec.SubmissionID != submissionID {
			kept = append(kept, rec)
		}
	}
	r.items = kept
	return nil
}

func (r *fakeRecommendationRepo) ListBySubmission(ctx context.Context, submissionID string) ([]*model.Recommendation, error) {
	var out []*model.Recommendation
	for _, rec := range r.items {
		if rec.SubmissionID == submissionID {
			cp := *rec
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeRecommendationRepo) ListByCustomerAndSubmission(ctx context.Context, customerID, submissionID string) ([]*model.Recommendation, error) {
	var out []*model.Recommendation
	for _, rec := range r.items {
		if rec.CustomerID == customerID && rec.SubmissionID == submissionID {
			cp := *rec
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeRecommendationRepo) GetByID(ctx context.Context, id string) (*model.Recommendation, error) {
	for _, rec := range r.items {
		if rec.ID == id {
			cp := *rec
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeRecommendationRepo) Update(ctx context.Context, rec *model.Recommendation) error {
	for i, existing := range r.items {
		if existing.ID == rec.ID {
			cp := *rec
			r.items[i] = &cp
		}
	}
	return nil
}

type fakeActionPlanRepo struct {
	plans map[string]*model.ActionPlan // by customerID/submissionID
	links map[string][]model.PlanRecommendation
	seq   int
}

func newFakeActionPlanRepo() *fakeActionPlanRepo {
	return &fakeActionPlanRepo{
		plans: map[string]*model.ActionPlan{},
		links: map[string][]model.PlanRecommendation{},
	}
}

func (r *fakeActionPlanRepo) pairKey(customerID, submissionID string) string {
	return customerID + "/" + submissionID
}

func (r *fakeActionPlanRepo) GetOrCreate(ctx context.Context, customerID, submissionID, createdBy string) (*model.ActionPlan, error) {
	if p, ok := r.plans[r.pairKey(customerID, submissionID)]; ok {
		cp := *p
		return &cp, nil
	}
	r.seq++
	plan := &model.ActionPlan{
		ID:           fmt.Sprintf("plan-%d", r.seq),
		CustomerID:   customerID,
		SubmissionID: submissionID,
		CreatedBy:    createdBy,
	}
	r.plans[r.pairKey(customerID, submissionID)] = plan
	cp := *plan
	return &cp, nil
}

func (r *fakeActionPlanRepo) GetByPair(ctx context.Context, customerID, submissionID string) (*model.ActionPlan, error) {
	p, ok := r.plans[r.pairKey(customerID, submissionID)]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *fakeActionPlanRepo) Update(ctx context.Context, plan *model.ActionPlan) error {
	cp := *plan
	r.plans[r.pairKey(plan.CustomerID, plan.SubmissionID)] = &cp
	return nil
}

func (r *fakeActionPlanRepo) DeleteByPair(ctx context.Context, customerID, submissionID string) error {
	if p, ok := r.plans[r.pairKey(customerID, submissionID)]; ok {
		delete(r.links, p.ID)
		delete(r.plans, r.pairKey(customerID, submissionID))
	}
	return nil
}

func (r *fakeActionPlanRepo) ReplaceLinks(ctx context.Context, planID string, links []model.PlanRecommendation) error {
	stored := make([]model.PlanRecommendation, len(links))
	copy(stored, links)
	for i := range stored {
		stored[i].PlanID = planID
		if stored[i].Status == "" {
			stored[i].Status = model.KanbanToDo
		}
	}
	r.links[planID] = stored
	return nil
}

func (r *fakeActionPlanRepo) ListLinks(ctx context.Context, planID string) ([]model.PlanRecommendation, error) {
	out := make([]model.PlanRecommendation, len(r.links[planID]))
	copy(out, r.links[planID])
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (r *fakeActionPlanRepo) UpdateLink(ctx context.Context, planID, recommendationID, status string, order int) (bool, error) {
	links := r.links[planID]
	for i := range links {
		if links[i].RecommendationID == recommendationID {
			links[i].Status = status
			links[i].Order = order
			return true, nil
		}
	}
	return false, nil
}

type fakeTaxonomyRepo struct {
	frameworks []*model.Framework
	domains    []*model.Domain
	controls   []*model.Control
	questions  []*model.Question
}

func (r *fakeTaxonomyRepo) UpsertFramework(ctx context.Context, fw *model.Framework) error {
	r.frameworks = append(r.frameworks, fw)
	return nil
}

func (r *fakeTaxonomyRepo) GetFrameworkBySlug(ctx context.Context, slug string) (*model.Framework, error) {
	for _, fw := range r.frameworks {
		if fw.Slug == slug {
			return fw, nil
		}
	}
	return nil, nil
}

func (r *fakeTaxonomyRepo) GetFrameworkByID(ctx context.Context, id string) (*model.Framework, error) {
	for _, fw := range r.frameworks {
		if fw.ID == id {
			return fw, nil
		}
	}
	return nil, nil
}

func (r *fakeTaxonomyRepo) ListFrameworks(ctx context.Context) ([]*model.Framework, error) {
	return r.frameworks, nil
}

func (r *fakeTaxonomyRepo) UpsertDomain(ctx context.Context, d *model.Domain) error {
	r.domains = append(r.domains, d)
	return nil
}

func (r *fakeTaxonomyRepo) ListDomains(ctx context.Context, frameworkID string) ([]*model.Domain, error) {
	var out []*model.Domain
	for _, d := range r.domains {
		if d.FrameworkID == frameworkID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *fakeTaxonomyRepo) UpsertControl(ctx context.Context, c *model.Control) error {
	r.controls = append(r.controls, c)
	return nil
}

func (r *fakeTaxonomyRepo) ListControls(ctx context.Context, frameworkID string) ([]*model.Control, error) {
	var out []*model.Control
	for _, c := range r.controls {
		if c.FrameworkID == frameworkID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeTaxonomyRepo) UpsertQuestion(ctx context.Context, q *model.Question) error {
	r.questions = append(r.questions, q)
	return nil
}

func (r *fakeTaxonomyRepo) ListQuestionsByControls(ctx context.Context, controlIDs []string) ([]*model.Question, error) {
	in := map[string]bool{}
	for _, id := range controlIDs {
		in[id] = true
	}
	var out []*model.Question
	for _, q := range r.questions {
		if in[q.ControlID] {
			out = append(out, q)
		}
	}
	return out, nil
}

func (r *fakeTaxonomyRepo) CountQuestions(ctx context.Context, frameworkID string, requiredOnly bool) (int64, error) {
	ids, _ := r.ListQuestionIDs(ctx, frameworkID, requiredOnly)
	return int64(len(ids)), nil
}

func (r *fakeTaxonomyRepo) ListQuestionIDs(ctx context.Context, frameworkID string, requiredOnly bool) ([]string, error) {
	controls := map[string]bool{}
	for _, c := range r.controls {
		if c.FrameworkID == frameworkID {
			controls[c.ID] = true
		}
	}
	var out []string
	for _, q := range r.questions {
		if !controls[q.ControlID] {
			continue
		}
		if requiredOnly && !q.Required {
			continue
		}
		out = append(out, q.ID)
	}
	return out, nil
}

type fakeAssessmentCache struct {
	views map[string]*model.AssessmentView
	sets  int
}

func newFakeAssessmentCache() *fakeAssessmentCache {
	return &fakeAssessmentCache{views: map[string]*model.AssessmentView{}}
}

func (c *fakeAssessmentCache) Set(ctx context.Context, submissionID string, view *model.AssessmentView) error {
	c.sets++
	c.views[submissionID] = view
	return nil
}

func (c *fakeAssessmentCache) Get(ctx context.Context, submissionID string) (*model.AssessmentView, error) {
	return c.views[submissionID], nil
}

func (c *fakeAssessmentCache) Invalidate(ctx context.Context, submissionID string) error {
	delete(c.views, submissionID)
	return nil
}

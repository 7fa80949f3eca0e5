package service

import (
	"context"
	"errors"
	"testing"

	"fs3m/internal/maturity"
	"fs3m/internal/model"
	"fs3m/internal/platform/logger"
	"fs3m/internal/scoring"
)

type recommendationFixture struct {
	svc         *RecommendationService
	submissions *fakeSubmissionRepo
	answers     *fakeAnswerRepo
	configs     *fakeConfigRepo
	recs        *fakeRecommendationRepo
}

func newRecommendationFixture(t *testing.T) *recommendationFixture {
	t.Helper()
	f := &recommendationFixture{
		submissions: newFakeSubmissionRepo(),
		answers:     newFakeAnswerRepo(),
		configs:     &fakeConfigRepo{},
		recs:        &fakeRecommendationRepo{},
	}
	f.svc = NewRecommendationService(f.submissions, f.answers, f.configs, f.recs, logger.Nop())

	sub := &model.Submission{ID: "sub-1", CustomerID: "cust-1", FrameworkID: "fw-1", Status: model.StatusInReview}
	if err := f.submissions.Create(context.Background(), sub); err != nil {
		t.Fatal(err)
	}
	f.configs.configs = append(f.configs.configs, &model.FrameworkAssessmentConfig{
		FrameworkID: "fw-1",
		TypeSlug:    maturity.TypeMaturity15,
		Mapping:     model.MappingConfig{Goal: 3.0, UsePolicyPractice: true},
		IsDefault:   true,
	})
	return f
}

func gapFacts() []model.AnswerFact {
	return []model.AnswerFact{
		// policy below goal, practice fine
		{QuestionID: "q-oc-pol", LocalCode: "politica", ControlCode: "GV.OC-01", DomainCode: "GV", Value: 2},
		{QuestionID: "q-oc-pra", LocalCode: "pratica", ControlCode: "GV.OC-01", DomainCode: "GV", Value: 4},
		// plain score only, deep gap
		{QuestionID: "q-rm", LocalCode: "score", ControlCode: "GV.RM-01", DomainCode: "GV", Value: 1},
		// above goal, no recommendation
		{QuestionID: "q-am", LocalCode: "score", ControlCode: "ID.AM-01", DomainCode: "ID", Value: 4},
	}
}

func findRec(t *testing.T, recs []*model.Recommendation, controlCode, applicability string) *model.Recommendation {
	t.Helper()
	for _, r := range recs {
		if r.ControlCode == controlCode && r.Applicability == applicability {
			return r
		}
	}
	t.Fatalf("recommendation %s/%s not found", controlCode, applicability)
	return nil
}

func TestGenerate_CreatesGapRecommendations(t *testing.T) {
	f := newRecommendationFixture(t)
	f.answers.facts = gapFacts()

	result, err := f.svc.Generate(context.Background(), "sub-1", GenerateOptions{AnalystID: "analyst-1"})
	if err != nil {
		t.Fatal(err)
	}
	if result.Created != 2 {
		t.Fatalf("created = %d, want 2", result.Created)
	}
	recs, _ := f.recs.ListBySubmission(context.Background(), "sub-1")

	pol := findRec(t, recs, "GV.OC-01", model.ApplicabilityPolicy)
	if pol.Priority != model.PriorityHigh {
		// value 2 escalates the catalog's medium
		t.Errorf("GV.OC-01 policy priority = %s, want high", pol.Priority)
	}
	if pol.Urgency != "4" || pol.Severity != "4" {
		t.Errorf("GV.OC-01 urgency/severity = %s/%s, want 4/4", pol.Urgency, pol.Severity)
	}
	if pol.QuestionRef != "q-oc-pol" {
		t.Errorf("QuestionRef = %q, want the policy question", pol.QuestionRef)
	}
	if pol.CustomerID != "cust-1" || pol.AnalystID != "analyst-1" {
		t.Errorf("ownership = %s/%s", pol.CustomerID, pol.AnalystID)
	}
	if pol.Category != "Govern (GV)" {
		t.Errorf("category = %q, want Govern (GV)", pol.Category)
	}
	if pol.Technology != "Agnostic" || pol.Responsible != "Not defined" {
		t.Errorf("technology/responsible = %q/%q, want defaults", pol.Technology, pol.Responsible)
	}
	if pol.Notes == "" {
		t.Error("generated recommendation has no note")
	}

	// practice above goal must not produce a recommendation
	for _, r := range recs {
		if r.ControlCode == "GV.OC-01" && r.Applicability == model.ApplicabilityPractice {
			t.Error("practice dimension above goal got a recommendation")
		}
		if r.ControlCode == "ID.AM-01" {
			t.Error("control above goal got a recommendation")
		}
	}
}

func TestGenerate_BothFallbackForScoreOnlyControls(t *testing.T) {
	f := newRecommendationFixture(t)
	f.answers.facts = gapFacts()
	if _, err := f.svc.Generate(context.Background(), "sub-1", GenerateOptions{}); err != nil {
		t.Fatal(err)
	}
	recs, _ := f.recs.ListBySubmission(context.Background(), "sub-1")
	both := findRec(t, recs, "GV.RM-01", model.ApplicabilityBoth)
	if both.QuestionRef != "q-rm" {
		t.Errorf("QuestionRef = %q, want q-rm", both.QuestionRef)
	}
}

func TestGenerate_ScheduleFromCatalogMonths(t *testing.T) {
	f := newRecommendationFixture(t)
	f.answers.facts = gapFacts()
	if _, err := f.svc.Generate(context.Background(), "sub-1", GenerateOptions{}); err != nil {
		t.Fatal(err)
	}
	recs, _ := f.recs.ListBySubmission(context.Background(), "sub-1")
	pol := findRec(t, recs, "GV.OC-01", model.ApplicabilityPolicy)
	if pol.Months != 3 {
		t.Errorf("months = %d, want 3 from the catalog entry", pol.Months)
	}
	want := scoring.AddMonths(pol.StartDate, pol.Months)
	if !pol.EndDate.Equal(want) {
		t.Errorf("end date = %v, want %v", pol.EndDate, want)
	}
}

func TestGenerate_DefaultRerunRefreshesDuplicates(t *testing.T) {
	f := newRecommendationFixture(t)
	f.answers.facts = gapFacts()
	if _, err := f.svc.Generate(context.Background(), "sub-1", GenerateOptions{}); err != nil {
		t.Fatal(err)
	}

	// analyst edit; the default rerun recreates the pair from scratch
	recs, _ := f.recs.ListBySubmission(context.Background(), "sub-1")
	edited := findRec(t, recs, "GV.OC-01", model.ApplicabilityPolicy)
	edited.Name = "edited by analyst"
	if err := f.recs.Update(context.Background(), edited); err != nil {
		t.Fatal(err)
	}

	result, err := f.svc.Generate(context.Background(), "sub-1", GenerateOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if result.Created != 2 || result.Skipped != 0 {
		t.Errorf("created/skipped = %d/%d, want 2/0", result.Created, result.Skipped)
	}
	recs, _ = f.recs.ListBySubmission(context.Background(), "sub-1")
	if len(recs) != 2 {
		t.Fatalf("recommendations = %d, want 2 (no duplicates after refresh)", len(recs))
	}
	if findRec(t, recs, "GV.OC-01", model.ApplicabilityPolicy).Name == "edited by analyst" {
		t.Error("default rerun kept the stale edit instead of recreating")
	}
}

func TestGenerate_OnlyNewSkipsExisting(t *testing.T) {
	f := newRecommendationFixture(t)
	f.answers.facts = gapFacts()
	if _, err := f.svc.Generate(context.Background(), "sub-1", GenerateOptions{}); err != nil {
		t.Fatal(err)
	}

	// analyst edits one; an onlyNew rerun must not clobber it
	recs, _ := f.recs.ListBySubmission(context.Background(), "sub-1")
	edited := findRec(t, recs, "GV.OC-01", model.ApplicabilityPolicy)
	edited.Name = "edited by analyst"
	if err := f.recs.Update(context.Background(), edited); err != nil {
		t.Fatal(err)
	}

	result, err := f.svc.Generate(context.Background(), "sub-1", GenerateOptions{OnlyNew: true})
	if err != nil {
		t.Fatal(err)
	}
	if result.Created != 0 || result.Skipped != 2 {
		t.Errorf("created/skipped = %d/%d, want 0/2", result.Created, result.Skipped)
	}
	recs, _ = f.recs.ListBySubmission(context.Background(), "sub-1")
	if findRec(t, recs, "GV.OC-01", model.ApplicabilityPolicy).Name != "edited by analyst" {
		t.Error("onlyNew rerun overwrote an analyst-edited recommendation")
	}
}

func TestGenerate_ForceRecreates(t *testing.T) {
	f := newRecommendationFixture(t)
	f.answers.facts = gapFacts()
	if _, err := f.svc.Generate(context.Background(), "sub-1", GenerateOptions{}); err != nil {
		t.Fatal(err)
	}
	result, err := f.svc.Generate(context.Background(), "sub-1", GenerateOptions{Force: true})
	if err != nil {
		t.Fatal(err)
	}
	if result.Created != 2 {
		t.Errorf("created = %d, want 2 on force", result.Created)
	}
	recs, _ := f.recs.ListBySubmission(context.Background(), "sub-1")
	if len(recs) != 2 {
		t.Errorf("recommendations = %d, want 2 (no duplicates on force)", len(recs))
	}
}

func TestGenerate_ForceDropsObsoleteRecommendations(t *testing.T) {
	f := newRecommendationFixture(t)
	f.answers.facts = gapFacts()
	if _, err := f.svc.Generate(context.Background(), "sub-1", GenerateOptions{}); err != nil {
		t.Fatal(err)
	}

	// the gaps were remediated: every dimension now meets the goal
	f.answers.facts = []model.AnswerFact{
		{QuestionID: "q-oc-pol", LocalCode: "politica", ControlCode: "GV.OC-01", DomainCode: "GV", Value: 4},
		{QuestionID: "q-oc-pra", LocalCode: "pratica", ControlCode: "GV.OC-01", DomainCode: "GV", Value: 4},
		{QuestionID: "q-rm", LocalCode: "score", ControlCode: "GV.RM-01", DomainCode: "GV", Value: 4},
	}

	result, err := f.svc.Generate(context.Background(), "sub-1", GenerateOptions{Force: true})
	if err != nil {
		t.Fatal(err)
	}
	if result.Created != 0 {
		t.Errorf("created = %d, want 0 once the gaps are closed", result.Created)
	}
	recs, _ := f.recs.ListBySubmission(context.Background(), "sub-1")
	if len(recs) != 0 {
		t.Errorf("recommendations = %d, want 0 (force wipes resolved controls)", len(recs))
	}
}

func TestGenerate_LocalCodeAliasesAndSpacing(t *testing.T) {
	f := newRecommendationFixture(t)
	// mixed spellings and stray whitespace, as exports tend to carry
	f.answers.facts = []model.AnswerFact{
		{QuestionID: "q-pol", LocalCode: " Politica ", ControlCode: "GV.OC-01", DomainCode: "GV", Value: 2},
		{QuestionID: "q-pra", LocalCode: "Practice", ControlCode: "GV.OC-01", DomainCode: "GV", Value: 2},
		{QuestionID: "q-rm", LocalCode: "SCORE", ControlCode: "GV.RM-01", DomainCode: "GV", Value: 1},
	}

	result, err := f.svc.Generate(context.Background(), "sub-1", GenerateOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if result.Created != 3 {
		t.Fatalf("created = %d, want 3 across aliased spellings", result.Created)
	}
	recs, _ := f.recs.ListBySubmission(context.Background(), "sub-1")
	findRec(t, recs, "GV.OC-01", model.ApplicabilityPolicy)
	findRec(t, recs, "GV.OC-01", model.ApplicabilityPractice)
	findRec(t, recs, "GV.RM-01", model.ApplicabilityBoth)
}

func TestGenerate_QuestionRefFallsBackToControl(t *testing.T) {
	f := newRecommendationFixture(t)
	// export without question ids
	f.answers.facts = []model.AnswerFact{
		{LocalCode: "score", ControlCode: "GV.RM-01", DomainCode: "GV", Value: 1},
	}
	if _, err := f.svc.Generate(context.Background(), "sub-1", GenerateOptions{}); err != nil {
		t.Fatal(err)
	}
	recs, _ := f.recs.ListBySubmission(context.Background(), "sub-1")
	rec := findRec(t, recs, "GV.RM-01", model.ApplicabilityBoth)
	if rec.QuestionRef != "GV.RM-01" {
		t.Errorf("QuestionRef = %q, want the control code fallback", rec.QuestionRef)
	}
}

func TestGenerate_SubmissionNotFound(t *testing.T) {
	f := newRecommendationFixture(t)
	if _, err := f.svc.Generate(context.Background(), "ghost", GenerateOptions{}); !errors.Is(err, ErrSubmissionNotFound) {
		t.Errorf("err = %v, want ErrSubmissionNotFound", err)
	}
}

func TestVerifyMissing_ReportsAndClears(t *testing.T) {
	f := newRecommendationFixture(t)
	f.answers.facts = gapFacts()

	report, err := f.svc.VerifyMissing(context.Background(), "sub-1")
	if err != nil {
		t.Fatal(err)
	}
	if report.TotalMissing != 2 || report.CanSubmit {
		t.Fatalf("missing = %d canSubmit = %v, want 2/false", report.TotalMissing, report.CanSubmit)
	}
	if report.Missing[0].ControlCode != "GV.OC-01" || report.Missing[1].ControlCode != "GV.RM-01" {
		t.Errorf("missing controls = %+v", report.Missing)
	}
	if len(report.Missing[1].QuestionIDs) != 1 || report.Missing[1].QuestionIDs[0] != "q-rm" {
		t.Errorf("GV.RM-01 question refs = %v", report.Missing[1].QuestionIDs)
	}

	if _, err := f.svc.Generate(context.Background(), "sub-1", GenerateOptions{}); err != nil {
		t.Fatal(err)
	}
	report, err = f.svc.VerifyMissing(context.Background(), "sub-1")
	if err != nil {
		t.Fatal(err)
	}
	if report.TotalMissing != 0 || !report.CanSubmit {
		t.Errorf("after generation missing = %d canSubmit = %v, want 0/true", report.TotalMissing, report.CanSubmit)
	}
}

package maturity

import (
	"reflect"
	"testing"

	"fs3m/internal/model"
	"fs3m/internal/scoring"
)

func scoreFact(control, domain string, value interface{}) model.AnswerFact {
	return model.AnswerFact{
		QuestionID:   "q-" + control,
		LocalCode:    "score",
		ControlCode:  control,
		ControlTitle: "Control " + control,
		DomainCode:   domain,
		DomainTitle:  "Domain " + domain,
		Value:        value,
	}
}

func bucketsByLevel(res *model.CalculationResult, level string) []model.AssessmentBucket {
	var out []model.AssessmentBucket
	for _, b := range res.Buckets {
		if b.Level == level {
			out = append(out, b)
		}
	}
	return out
}

func findBucket(t *testing.T, res *model.CalculationResult, level, code string) model.AssessmentBucket {
	t.Helper()
	for _, b := range res.Buckets {
		if b.Level == level && b.Code == code {
			return b
		}
	}
	t.Fatalf("bucket %s/%s not found", level, code)
	return model.AssessmentBucket{}
}

func TestCalculate_Rollups(t *testing.T) {
	facts := []model.AnswerFact{
		scoreFact("GV.OC-01", "GV", 2),
		scoreFact("GV.OC-02", "GV", 4),
		scoreFact("GV.RM-01", "GV", 3),
		scoreFact("ID.AM-01", "ID", 5),
	}
	res, err := Calculate(facts, model.MappingConfig{})
	if err != nil {
		t.Fatal(err)
	}

	// Control buckets sorted by code with sequential order.
	controls := bucketsByLevel(res, model.LevelControl)
	wantOrder := []string{"GV.OC-01", "GV.OC-02", "GV.RM-01", "ID.AM-01"}
	if len(controls) != len(wantOrder) {
		t.Fatalf("control buckets = %d, want %d", len(controls), len(wantOrder))
	}
	for i, b := range controls {
		if b.Code != wantOrder[i] || b.Order != i {
			t.Errorf("control[%d] = %s (order %d), want %s (order %d)", i, b.Code, b.Order, wantOrder[i], i)
		}
	}

	// Category mean is the mean of its child control means.
	gvoc := findBucket(t, res, model.LevelCategory, "GV.OC")
	if gvoc.Metrics.Average != 3.0 {
		t.Errorf("GV.OC average = %v, want 3.0", gvoc.Metrics.Average)
	}
	if len(gvoc.Metrics.Items) != 2 {
		t.Errorf("GV.OC child items = %d, want 2", len(gvoc.Metrics.Items))
	}

	// Function mean is the mean of its child category means, not of controls.
	// GV categories: GV.OC mean 3.0, GV.RM mean 3.0 -> GV = 3.0.
	gv := findBucket(t, res, model.LevelFunction, "GV")
	if gv.Metrics.Average != 3.0 {
		t.Errorf("GV average = %v, want 3.0", gv.Metrics.Average)
	}
	if gv.Name != "Domain GV" {
		t.Errorf("GV name = %q, want domain title", gv.Name)
	}

	// Summary is the mean of all control means: (2+4+3+5)/4 = 3.5.
	if res.Summary.OverallAverage != 3.5 {
		t.Errorf("overall average = %v, want 3.5", res.Summary.OverallAverage)
	}
	if res.Summary.Status != scoring.StatusGood {
		t.Errorf("overall status = %s, want %s", res.Summary.Status, scoring.StatusGood)
	}
}

func TestCalculate_FunctionMeanUsesCategoryMeans(t *testing.T) {
	// GV.OC has two controls (2, 4 -> mean 3), GV.RM one control (5).
	// Function mean must be (3+5)/2 = 4, not (2+4+5)/3.
	facts := []model.AnswerFact{
		scoreFact("GV.OC-01", "GV", 2),
		scoreFact("GV.OC-02", "GV", 4),
		scoreFact("GV.RM-01", "GV", 5),
	}
	res, err := Calculate(facts, model.MappingConfig{})
	if err != nil {
		t.Fatal(err)
	}
	gv := findBucket(t, res, model.LevelFunction, "GV")
	if gv.Metrics.Average != 4.0 {
		t.Errorf("GV average = %v, want 4.0 (mean of category means)", gv.Metrics.Average)
	}
	// Summary still uses control means: (2+4+5)/3 = 3.7 rounded.
	if res.Summary.OverallAverage != 3.7 {
		t.Errorf("overall average = %v, want 3.7", res.Summary.OverallAverage)
	}
}

func TestCalculate_PolicyPracticeMode(t *testing.T) {
	cfg := model.MappingConfig{UsePolicyPractice: true}
	facts := []model.AnswerFact{
		{LocalCode: "politica", ControlCode: "PR.AA-01", DomainCode: "PR", Value: 2},
		{LocalCode: "pratica", ControlCode: "PR.AA-01", DomainCode: "PR", Value: 4},
		// score answered too, but policy/practice takes precedence
		{LocalCode: "score", ControlCode: "PR.AA-01", DomainCode: "PR", Value: 1},
		// control with only a policy value
		{LocalCode: "politica", ControlCode: "PR.DS-01", DomainCode: "PR", Value: 2},
		// control with neither falls back to score
		{LocalCode: "score", ControlCode: "PR.IR-01", DomainCode: "PR", Value: 5},
	}
	res, err := Calculate(facts, cfg)
	if err != nil {
		t.Fatal(err)
	}

	aa := findBucket(t, res, model.LevelControl, "PR.AA-01")
	if aa.Metrics.Average != 3.0 {
		t.Errorf("PR.AA-01 average = %v, want 3.0 (mean of policy and practice)", aa.Metrics.Average)
	}
	if aa.Metrics.PolicyAverage == nil || *aa.Metrics.PolicyAverage != 2.0 {
		t.Errorf("PR.AA-01 policy average = %v, want 2.0", aa.Metrics.PolicyAverage)
	}
	if aa.Metrics.PracticeAverage == nil || *aa.Metrics.PracticeAverage != 4.0 {
		t.Errorf("PR.AA-01 practice average = %v, want 4.0", aa.Metrics.PracticeAverage)
	}

	ds := findBucket(t, res, model.LevelControl, "PR.DS-01")
	if ds.Metrics.Average != 2.0 {
		t.Errorf("PR.DS-01 average = %v, want 2.0 (policy only)", ds.Metrics.Average)
	}
	if ds.Metrics.PracticeAverage != nil {
		t.Error("PR.DS-01 has a practice average with no practice answers")
	}

	ir := findBucket(t, res, model.LevelControl, "PR.IR-01")
	if ir.Metrics.Average != 5.0 {
		t.Errorf("PR.IR-01 average = %v, want 5.0 (score fallback)", ir.Metrics.Average)
	}
}

func TestCalculate_NotesAndAttachments(t *testing.T) {
	facts := []model.AnswerFact{
		{LocalCode: "score", ControlCode: "GV.OC-01", DomainCode: "GV", Value: 3, Evidence: "policy doc reviewed"},
		{LocalCode: "info", ControlCode: "GV.OC-01", DomainCode: "GV", Value: "pending board approval"},
		{LocalCode: "attachment", ControlCode: "GV.OC-01", DomainCode: "GV",
			Value: map[string]interface{}{"name": "policy.pdf", "url": "https://docs/policy.pdf"}},
		{LocalCode: "attachment", ControlCode: "GV.OC-01", DomainCode: "GV", Value: "https://docs/raw-link"},
	}
	res, err := Calculate(facts, model.MappingConfig{})
	if err != nil {
		t.Fatal(err)
	}
	b := findBucket(t, res, model.LevelControl, "GV.OC-01")
	if len(b.Metrics.Notes) != 2 {
		t.Errorf("notes = %v, want 2 entries", b.Metrics.Notes)
	}
	if len(b.Metrics.Attachments) != 2 {
		t.Fatalf("attachments = %v, want 2 entries", b.Metrics.Attachments)
	}
	if b.Metrics.Attachments[0].Name != "policy.pdf" {
		t.Errorf("attachment name = %q", b.Metrics.Attachments[0].Name)
	}
	if b.Metrics.Attachments[1].URL != "https://docs/raw-link" {
		t.Errorf("bare string attachment URL = %q", b.Metrics.Attachments[1].URL)
	}
}

func TestCalculate_PreNormalizedScoreWins(t *testing.T) {
	score := 4.0
	facts := []model.AnswerFact{
		{LocalCode: "score", ControlCode: "GV.OC-01", DomainCode: "GV", Value: 1, Score: &score},
	}
	res, err := Calculate(facts, model.MappingConfig{})
	if err != nil {
		t.Fatal(err)
	}
	b := findBucket(t, res, model.LevelControl, "GV.OC-01")
	if b.Metrics.Average != 4.0 {
		t.Errorf("average = %v, want the pre-normalized score 4.0", b.Metrics.Average)
	}
}

func TestCalculate_EmptySubmission(t *testing.T) {
	res, err := Calculate(nil, model.MappingConfig{})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Buckets) != 0 {
		t.Errorf("buckets = %d, want 0", len(res.Buckets))
	}
	want := model.Summary{OverallAverage: 0, Goal: 3.0, Status: scoring.StatusNotAssessed}
	if res.Summary != want {
		t.Errorf("summary = %+v, want %+v", res.Summary, want)
	}
}

func TestCalculate_Idempotent(t *testing.T) {
	facts := []model.AnswerFact{
		scoreFact("GV.OC-01", "GV", "Definido"),
		scoreFact("DE.AE-02", "DE", `{"value": 2}`),
		scoreFact("RS.MA-01", "RS", 4.5),
	}
	first, err := Calculate(facts, model.MappingConfig{})
	if err != nil {
		t.Fatal(err)
	}
	second, err := Calculate(facts, model.MappingConfig{})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("repeated calculation produced a different result")
	}
	for _, level := range model.Levels {
		if len(bucketsByLevel(first, level)) != len(bucketsByLevel(second, level)) {
			t.Errorf("bucket count changed at level %s across runs", level)
		}
	}
}

func TestCalculate_StatusExample(t *testing.T) {
	// score 2 against goal 3.0: 2/3 is below 0.7 and at least 0.5 -> Attention.
	facts := []model.AnswerFact{scoreFact("GV.OC-01", "GV", 2)}
	res, err := Calculate(facts, model.MappingConfig{})
	if err != nil {
		t.Fatal(err)
	}
	b := findBucket(t, res, model.LevelControl, "GV.OC-01")
	if b.Metrics.Status != scoring.StatusAttention {
		t.Errorf("status = %s, want %s", b.Metrics.Status, scoring.StatusAttention)
	}
}

package maturity

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"fs3m/internal/model"
	"fs3m/internal/scoring"
)

// TypeMaturity15 is the 1-5 maturity scale calculator slug.
const TypeMaturity15 = "maturity-1-5"

// controlAgg accumulates everything answered under one control.
type controlAgg struct {
	title       string
	policy      []decimal.Decimal
	practice    []decimal.Decimal
	score       []decimal.Decimal
	notes       []string
	attachments []model.AttachmentRef
}

// Calculate is the maturity-1-5 calculator. It buckets normalized answer
// values per control, resolves a representative control mean (policy/practice
// mode or plain score), rolls control means up into categories and functions
// as means-of-means, and summarizes the whole submission as the mean of all
// control means.
func Calculate(facts []model.AnswerFact, cfg model.MappingConfig) (*model.CalculationResult, error) {
	cfg = cfg.WithDefaults()
	goal := decimal.NewFromFloat(cfg.Goal)
	scoreCode := strings.ToLower(cfg.ScoreCode)
	policyCode := strings.ToLower(cfg.PolicyCode)
	practiceCode := strings.ToLower(cfg.PracticeCode)
	infoCode := strings.ToLower(cfg.InfoCode)
	attachmentCode := strings.ToLower(cfg.AttachmentCode)

	controls := map[string]*controlAgg{}
	domainTitles := map[string]string{}

	for _, fact := range facts {
		if fact.ControlCode == "" {
			continue
		}
		agg, ok := controls[fact.ControlCode]
		if !ok {
			agg = &controlAgg{title: fact.ControlTitle}
			if agg.title == "" {
				agg.title = fact.ControlCode
			}
			controls[fact.ControlCode] = agg
		}
		if fact.DomainCode != "" && fact.DomainTitle != "" {
			domainTitles[fact.DomainCode] = fact.DomainTitle
		}
		if fact.Evidence != "" {
			agg.notes = append(agg.notes, fact.Evidence)
		}

		switch strings.ToLower(strings.TrimSpace(fact.LocalCode)) {
		case scoreCode:
			agg.score = append(agg.score, factValue(fact))
		case policyCode:
			agg.policy = append(agg.policy, factValue(fact))
		case practiceCode:
			agg.practice = append(agg.practice, factValue(fact))
		case infoCode:
			if note := stringValue(fact.Value); note != "" {
				agg.notes = append(agg.notes, note)
			}
		case attachmentCode:
			if ref, ok := attachmentRef(fact.Value); ok {
				agg.attachments = append(agg.attachments, ref)
			}
		}
	}

	controlCodes := make([]string, 0, len(controls))
	for code := range controls {
		controlCodes = append(controlCodes, code)
	}
	sort.Strings(controlCodes)

	var buckets []model.AssessmentBucket
	controlMeans := map[string]decimal.Decimal{}
	allMeans := make([]decimal.Decimal, 0, len(controlCodes))

	for i, code := range controlCodes {
		agg := controls[code]
		m := controlMean(agg, cfg.UsePolicyPractice)
		controlMeans[code] = m
		allMeans = append(allMeans, m)

		metrics := model.BucketMetrics{
			Average:     roundFloat(m),
			Goal:        cfg.Goal,
			Status:      scoring.StatusFromGoal(m, goal),
			Notes:       agg.notes,
			Attachments: agg.attachments,
		}
		if cfg.UsePolicyPractice {
			if len(agg.policy) > 0 {
				v := roundFloat(scoring.Mean(agg.policy))
				metrics.PolicyAverage = &v
			}
			if len(agg.practice) > 0 {
				v := roundFloat(scoring.Mean(agg.practice))
				metrics.PracticeAverage = &v
			}
		}
		buckets = append(buckets, model.AssessmentBucket{
			Level:   model.LevelControl,
			Code:    code,
			Name:    agg.title,
			Order:   i,
			Metrics: metrics,
		})
	}

	// Category roll-up: mean of child control means, not of raw answers.
	categories := map[string][]string{}
	for _, code := range controlCodes {
		cat := scoring.CategoryCode(code)
		categories[cat] = append(categories[cat], code)
	}
	catCodes := make([]string, 0, len(categories))
	for cat := range categories {
		catCodes = append(catCodes, cat)
	}
	sort.Strings(catCodes)

	categoryMeans := map[string]decimal.Decimal{}
	for i, cat := range catCodes {
		children := categories[cat]
		vals := make([]decimal.Decimal, 0, len(children))
		items := make([]model.ChildItem, 0, len(children))
		for _, code := range children {
			m := controlMeans[code]
			vals = append(vals, m)
			items = append(items, model.ChildItem{
				Code:    code,
				Title:   controls[code].title,
				Average: roundFloat(m),
				Status:  scoring.StatusFromGoal(m, goal),
			})
		}
		m := scoring.Mean(vals)
		categoryMeans[cat] = m
		buckets = append(buckets, model.AssessmentBucket{
			Level: model.LevelCategory,
			Code:  cat,
			Name:  cat,
			Order: i,
			Metrics: model.BucketMetrics{
				Average: roundFloat(m),
				Goal:    cfg.Goal,
				Status:  scoring.StatusFromGoal(m, goal),
				Items:   items,
			},
		})
	}

	// Function roll-up: mean of child category means.
	functions := map[string][]string{}
	for _, cat := range catCodes {
		fn := scoring.FunctionCode(cat)
		functions[fn] = append(functions[fn], cat)
	}
	fnCodes := make([]string, 0, len(functions))
	for fn := range functions {
		fnCodes = append(fnCodes, fn)
	}
	sort.Strings(fnCodes)

	for i, fn := range fnCodes {
		children := functions[fn]
		vals := make([]decimal.Decimal, 0, len(children))
		items := make([]model.ChildItem, 0, len(children))
		for _, cat := range children {
			m := categoryMeans[cat]
			vals = append(vals, m)
			items = append(items, model.ChildItem{
				Code:    cat,
				Title:   cat,
				Average: roundFloat(m),
				Status:  scoring.StatusFromGoal(m, goal),
			})
		}
		m := scoring.Mean(vals)
		name := domainTitles[fn]
		if name == "" {
			name = fn
		}
		buckets = append(buckets, model.AssessmentBucket{
			Level: model.LevelFunction,
			Code:  fn,
			Name:  name,
			Order: i,
			Metrics: model.BucketMetrics{
				Average: roundFloat(m),
				Goal:    cfg.Goal,
				Status:  scoring.StatusFromGoal(m, goal),
				Items:   items,
			},
		})
	}

	summary := model.Summary{OverallAverage: 0, Goal: cfg.Goal, Status: scoring.StatusNotAssessed}
	if len(allMeans) > 0 {
		overall := scoring.Mean(allMeans)
		summary = model.Summary{
			OverallAverage: roundFloat(overall),
			Goal:           cfg.Goal,
			Status:         scoring.StatusFromGoal(overall, goal),
		}
	}

	return &model.CalculationResult{Buckets: buckets, Summary: summary}, nil
}

// controlMean resolves the representative average of one control. In
// policy/practice mode the mean of whichever of the two dimensions have data
// wins; otherwise the plain score mean (zero when unanswered).
func controlMean(agg *controlAgg, usePolicyPractice bool) decimal.Decimal {
	if usePolicyPractice && (len(agg.policy) > 0 || len(agg.practice) > 0) {
		parts := make([]decimal.Decimal, 0, 2)
		if len(agg.policy) > 0 {
			parts = append(parts, scoring.Mean(agg.policy))
		}
		if len(agg.practice) > 0 {
			parts = append(parts, scoring.Mean(agg.practice))
		}
		return scoring.Mean(parts)
	}
	return scoring.Mean(agg.score)
}

// factValue prefers the pre-normalized score field over the raw payload.
func factValue(fact model.AnswerFact) decimal.Decimal {
	if fact.Score != nil {
		return decimal.NewFromFloat(*fact.Score)
	}
	return scoring.Normalize(fact.Value)
}

func stringValue(raw interface{}) string {
	s, _ := raw.(string)
	return strings.TrimSpace(s)
}

// attachmentRef tolerates the payload shapes attachments arrive in: a nested
// object with name/url/description keys, or a bare string treated as a URL.
func attachmentRef(raw interface{}) (model.AttachmentRef, bool) {
	switch v := raw.(type) {
	case string:
		v = strings.TrimSpace(v)
		if v == "" {
			return model.AttachmentRef{}, false
		}
		return model.AttachmentRef{URL: v}, true
	case map[string]interface{}:
		ref := model.AttachmentRef{
			Name:        stringValue(v["name"]),
			URL:         stringValue(v["url"]),
			Description: stringValue(v["description"]),
		}
		if ref.Name == "" && ref.URL == "" && ref.Description == "" {
			return model.AttachmentRef{}, false
		}
		return ref, true
	default:
		return model.AttachmentRef{}, false
	}
}

func roundFloat(d decimal.Decimal) float64 {
	f, _ := scoring.Round1(d).Float64()
	return f
}

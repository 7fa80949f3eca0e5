package main

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"fs3m/config"
	"fs3m/internal/app"
	"fs3m/internal/maturity"
	"fs3m/internal/model"
	"fs3m/internal/platform/logger"
	"fs3m/internal/scoring"
	"fs3m/internal/service"
)

type controlSeed struct {
	code  string
	title string
}

// NIST CSF 2.0 subset used for demos and local development.
var domainSeeds = []struct {
	code     string
	title    string
	controls []controlSeed
}{
	{"GV", "Govern", []controlSeed{
		{"GV.OC-01", "Organizational cybersecurity context is understood"},
		{"GV.OC-02", "Internal and external stakeholders are understood"},
		{"GV.RM-01", "Risk management objectives are established"},
		{"GV.RM-02", "Risk appetite and tolerance are established"},
	}},
	{"ID", "Identify", []controlSeed{
		{"ID.AM-01", "Hardware inventories are maintained"},
		{"ID.AM-02", "Software inventories are maintained"},
		{"ID.RA-01", "Asset vulnerabilities are identified and recorded"},
	}},
	{"PR", "Protect", []controlSeed{
		{"PR.AA-01", "Identities and credentials are managed"},
		{"PR.DS-01", "Data-at-rest is protected"},
		{"PR.IR-01", "Networks and environments are protected from unauthorized access"},
	}},
	{"DE", "Detect", []controlSeed{
		{"DE.AE-02", "Adverse events are analyzed"},
		{"DE.AE-03", "Information is correlated from multiple sources"},
		{"DE.CM-01", "Networks are monitored to find adverse events"},
	}},
	{"RS", "Respond", []controlSeed{
		{"RS.MA-01", "The incident response plan is executed"},
		{"RS.AN-03", "Incident analysis establishes what happened"},
	}},
	{"RC", "Recover", []controlSeed{
		{"RC.RP-01", "The recovery portion of the incident response plan is executed"},
	}},
}

// questionSeeds defines the per-control question set matching the default
// policy/practice mapping.
var questionSeeds = []struct {
	localCode string
	prompt    string
	qtype     string
	required  bool
}{
	{"politica", "Maturity of the documented policy for this control (1-5)", model.QuestionTypeScale, true},
	{"pratica", "Maturity of the implemented practice for this control (1-5)", model.QuestionTypeScale, true},
	{"info", "Additional context for the assessor", model.QuestionTypeText, false},
	{"attachment", "Evidence attachment", model.QuestionTypeFile, false},
}

var userSeeds = []struct {
	email    string
	name     string
	role     string
	password string
}{
	{"customer@example.com", "Demo Customer", model.RoleCustomer, "customer123"},
	{"analyst@example.com", "Demo Analyst", model.RoleAnalyst, "analyst123"},
	{"admin@example.com", "Demo Admin", model.RoleAdmin, "admin123"},
}

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal("mongodb connect failed", zap.Error(err))
	}
	defer client.Disconnect(ctx)

	db := client.Database(cfg.MongoDB)
	application := app.New(db, nil, log, app.Options{JWTSecret: cfg.JWTSecret})

	framework := &model.Framework{
		Slug:        "nist-csf-2",
		Name:        "NIST Cybersecurity Framework",
		Version:     "2.0",
		Description: "NIST CSF 2.0 maturity questionnaire (demo subset)",
		Active:      true,
	}
	if err := application.TaxonomyRepo.UpsertFramework(ctx, framework); err != nil {
		log.Fatal("framework seed failed", zap.Error(err))
	}

	controls := 0
	for di, d := range domainSeeds {
		domain := &model.Domain{
			FrameworkID: framework.ID,
			Code:        d.code,
			Title:       d.title,
			Order:       di,
		}
		if err := application.TaxonomyRepo.UpsertDomain(ctx, domain); err != nil {
			log.Fatal("domain seed failed", zap.String("code", d.code), zap.Error(err))
		}
		for ci, c := range d.controls {
			if err := scoring.ValidateControlCode(c.code); err != nil {
				log.Fatal("invalid control code", zap.Error(err))
			}
			control := &model.Control{
				FrameworkID: framework.ID,
				DomainID:    domain.ID,
				Code:        c.code,
				Title:       c.title,
				Order:       ci,
				Active:      true,
			}
			if err := application.TaxonomyRepo.UpsertControl(ctx, control); err != nil {
				log.Fatal("control seed failed", zap.String("code", c.code), zap.Error(err))
			}
			controls++
			for qi, q := range questionSeeds {
				question := &model.Question{
					ControlID: control.ID,
					LocalCode: q.localCode,
					Prompt:    q.prompt,
					Type:      q.qtype,
					Required:  q.required,
					Order:     qi,
				}
				if err := application.TaxonomyRepo.UpsertQuestion(ctx, question); err != nil {
					log.Fatal("question seed failed", zap.String("control", c.code), zap.Error(err))
				}
			}
		}
	}

	if err := application.ConfigRepo.UpsertType(ctx, &model.AssessmentType{
		Slug:        maturity.TypeMaturity15,
		Name:        "Maturity 1-5",
		Description: "Five-level maturity scale with policy/practice split",
	}); err != nil {
		log.Fatal("assessment type seed failed", zap.Error(err))
	}
	if err := application.ConfigRepo.UpsertConfig(ctx, &model.FrameworkAssessmentConfig{
		FrameworkID: framework.ID,
		TypeSlug:    maturity.TypeMaturity15,
		Mapping: model.MappingConfig{
			Goal:              3.0,
			ScoreCode:         "score",
			UsePolicyPractice: true,
			PolicyCode:        "politica",
			PracticeCode:      "pratica",
			InfoCode:          "info",
			AttachmentCode:    "attachment",
		},
		IsDefault: true,
	}); err != nil {
		log.Fatal("assessment config seed failed", zap.Error(err))
	}

	for _, u := range userSeeds {
		hash, err := service.HashPassword(u.password)
		if err != nil {
			log.Fatal("password hash failed", zap.Error(err))
		}
		if err := application.UserRepo.Upsert(ctx, &model.User{
			Email:        u.email,
			Name:         u.name,
			Role:         u.role,
			PasswordHash: hash,
		}); err != nil {
			log.Fatal("user seed failed", zap.String("email", u.email), zap.Error(err))
		}
	}

	log.Info("seed complete",
		zap.String("framework", framework.Slug),
		zap.Int("domains", len(domainSeeds)),
		zap.Int("controls", controls),
		zap.Int("users", len(userSeeds)))
}

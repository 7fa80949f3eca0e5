package service

import (
	"context"

	"fs3m/internal/model"
	"fs3m/internal/repository"
)

// FrameworkStructure is the renderable questionnaire tree of one framework.
type FrameworkStructure struct {
	Framework model.Framework   `json:"framework"`
	Domains   []DomainStructure `json:"domains"`
}

// DomainStructure is one function with its controls.
type DomainStructure struct {
	Domain   model.Domain       `json:"domain"`
	Controls []ControlStructure `json:"controls"`
}

// ControlStructure is one control with its questions in display order.
type ControlStructure struct {
	Control   model.Control    `json:"control"`
	Questions []model.Question `json:"questions"`
}

// FrameworkService exposes the read side of the framework taxonomy.
type FrameworkService struct {
	taxonomy repository.TaxonomyRepo
}

// NewFrameworkService creates a new framework service.
func NewFrameworkService(taxonomy repository.TaxonomyRepo) *FrameworkService {
	return &FrameworkService{taxonomy: taxonomy}
}

// List returns the active frameworks.
func (s *FrameworkService) List(ctx context.Context) ([]*model.Framework, error) {
	return s.taxonomy.ListFrameworks(ctx)
}

// GetStructure assembles the full questionnaire tree of a framework.
func (s *FrameworkService) GetStructure(ctx context.Context, slug string) (*FrameworkStructure, error) {
	framework, err := s.taxonomy.GetFrameworkBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if framework == nil {
		return nil, ErrFrameworkNotFound
	}

	domains, err := s.taxonomy.ListDomains(ctx, framework.ID)
	if err != nil {
		return nil, err
	}
	controls, err := s.taxonomy.ListControls(ctx, framework.ID)
	if err != nil {
		return nil, err
	}
	controlIDs := make([]string, 0, len(controls))
	for _, c := range controls {
		controlIDs = append(controlIDs, c.ID)
	}
	questions, err := s.taxonomy.ListQuestionsByControls(ctx, controlIDs)
	if err != nil {
		return nil, err
	}

	questionsByControl := map[string][]model.Question{}
	for _, q := range questions {
		questionsByControl[q.ControlID] = append(questionsByControl[q.ControlID], *q)
	}
	controlsByDomain := map[string][]ControlStructure{}
	for _, c := range controls {
		controlsByDomain[c.DomainID] = append(controlsByDomain[c.DomainID], ControlStructure{
			Control:   *c,
			Questions: questionsByControl[c.ID],
		})
	}

	structure := &FrameworkStructure{Framework: *framework}
	for _, d := range domains {
		structure.Domains = append(structure.Domains, DomainStructure{
			Domain:   *d,
			Controls: controlsByDomain[d.ID],
		})
	}
	return structure, nil
}

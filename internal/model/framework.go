package model

import "time"

// Framework is a catalog entry for a security framework (e.g. NIST CSF 2.0).
// It holds taxonomy only; answers live on submissions.
type Framework struct {
	ID          string    `json:"id" bson:"_id,omitempty"`
	Slug        string    `json:"slug" bson:"slug"`
	Name        string    `json:"name" bson:"name"`
	Version     string    `json:"version" bson:"version"`
	Description string    `json:"description,omitempty" bson:"description,omitempty"`
	Active      bool      `json:"active" bson:"active"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Domain is a top-level function of a framework (GV, ID, PR, DE, RS, RC).
type Domain struct {
	ID          string `json:"id" bson:"_id,omitempty"`
	FrameworkID string `json:"frameworkId" bson:"frameworkId"`
	Code        string `json:"code" bson:"code"`
	Title       string `json:"title" bson:"title"`
	Order       int    `json:"order" bson:"order"`
}

// Control is a checkable requirement inside a domain (e.g. "GV.OC-01").
// Control codes follow the "FUNC.CAT-NUM" grammar; seeding validates this
// so the aggregation path can derive category/function codes by splitting.
type Control struct {
	ID          string `json:"id" bson:"_id,omitempty"`
	FrameworkID string `json:"frameworkId" bson:"frameworkId"`
	DomainID    string `json:"domainId" bson:"domainId"`
	Code        string `json:"code" bson:"code"`
	Title       string `json:"title" bson:"title"`
	Description string `json:"description,omitempty" bson:"description,omitempty"`
	Order       int    `json:"order" bson:"order"`
	Active      bool   `json:"active" bson:"active"`
}

// Question types.
const (
	QuestionTypeText   = "text"
	QuestionTypeNumber = "number"
	QuestionTypeScale  = "scale"
	QuestionTypeFile   = "file"
)

// Question is an input field attached to a control. LocalCode identifies its
// role within the control ("score", "politica", "pratica", "info", "attachment").
type Question struct {
	ID        string `json:"id" bson:"_id,omitempty"`
	ControlID string `json:"controlId" bson:"controlId"`
	LocalCode string `json:"localCode" bson:"localCode"`
	Prompt    string `json:"prompt" bson:"prompt"`
	Type      string `json:"type" bson:"type"`
	Required  bool   `json:"required" bson:"required"`
	Order     int    `json:"order" bson:"order"`
}

// AssessmentType identifies a registered calculator (slug is the registry key).
type AssessmentType struct {
	ID          string `json:"id" bson:"_id,omitempty"`
	Slug        string `json:"slug" bson:"slug"`
	Name        string `json:"name" bson:"name"`
	Description string `json:"description,omitempty" bson:"description,omitempty"`
}

// MappingConfig parameterizes a calculator run for one framework.
type MappingConfig struct {
	Goal              float64 `json:"goal" bson:"goal"`
	ScoreCode         string  `json:"scoreCode" bson:"scoreCode"`
	UsePolicyPractice bool    `json:"usePolicyPractice" bson:"usePolicyPractice"`
	PolicyCode        string  `json:"policyCode" bson:"policyCode"`
	PracticeCode      string  `json:"practiceCode" bson:"practiceCode"`
	InfoCode          string  `json:"infoCode" bson:"infoCode"`
	AttachmentCode    string  `json:"attachmentCode" bson:"attachmentCode"`
}

// WithDefaults fills the zero fields with the standard NIST mapping.
func (m MappingConfig) WithDefaults() MappingConfig {
	if m.Goal == 0 {
		m.Goal = 3.0
	}
	if m.ScoreCode == "" {
		m.ScoreCode = "score"
	}
	if m.PolicyCode == "" {
		m.PolicyCode = "politica"
	}
	if m.PracticeCode == "" {
		m.PracticeCode = "pratica"
	}
	if m.InfoCode == "" {
		m.InfoCode = "info"
	}
	if m.AttachmentCode == "" {
		m.AttachmentCode = "attachment"
	}
	return m
}

// FrameworkAssessmentConfig binds a framework to an assessment type with its
// mapping. At most one config per framework is flagged as default.
type FrameworkAssessmentConfig struct {
	ID          string        `json:"id" bson:"_id,omitempty"`
	FrameworkID string        `json:"frameworkId" bson:"frameworkId"`
	TypeSlug    string        `json:"typeSlug" bson:"typeSlug"`
	Mapping     MappingConfig `json:"mapping" bson:"mapping"`
	IsDefault   bool          `json:"isDefault" bson:"isDefault"`
}

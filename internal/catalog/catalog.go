// Package catalog holds the static remediation knowledge base: per-control
// catalog entries and the function-code display names used on
// recommendations.
package catalog

import (
	"fmt"

	"fs3m/internal/model"
)

// Entry is one remediation recipe for a control.
type Entry struct {
	Name          string
	Details       string
	Investments   string
	Risks         string
	Justification string
	Priority      string
	Months        int
}

// functionCategories maps a function code to its display category. Controls
// from unmapped functions fall back to Governance.
var functionCategories = map[string]string{
	"GV": "Govern (GV)",
	"ID": "Identify (ID)",
	"PR": "Protect (PR)",
	"DE": "Detect (DE)",
	"RS": "Respond (RS)",
	"RC": "Recover (RC)",
}

// CategoryForFunction returns the display category of a function code.
func CategoryForFunction(fn string) string {
	if c, ok := functionCategories[fn]; ok {
		return c
	}
	return "Governance"
}

// entries is the per-control remediation catalog. Controls without an entry
// get a generic one from Generic.
var entries = map[string]Entry{
	"GV.OC-01": {
		Name:          "Formalize organizational cybersecurity context",
		Details:       "Document mission, stakeholder expectations and legal requirements feeding the risk strategy.",
		Investments:   "Process hours; governance workshops",
		Risks:         "Security decisions detached from business context",
		Justification: "Maturity below target level (>=3).",
		Priority:      model.PriorityMedium,
		Months:        3,
	},
	"GV.RM-01": {
		Name:          "Establish risk management objectives",
		Details:       "Define, approve and communicate risk appetite and tolerance statements.",
		Investments:   "GRC tooling; consulting hours",
		Risks:         "Inconsistent risk acceptance across units",
		Justification: "Maturity below target level (>=3).",
		Priority:      model.PriorityHigh,
		Months:        4,
	},
	"ID.AM-01": {
		Name:          "Build and maintain hardware asset inventory",
		Details:       "Deploy discovery tooling and assign inventory ownership with periodic reconciliation.",
		Investments:   "Asset discovery/CMDB tooling",
		Risks:         "Unmanaged assets outside the security perimeter",
		Justification: "Maturity below target level (>=3).",
		Priority:      model.PriorityMedium,
		Months:        3,
	},
	"PR.AA-01": {
		Name:          "Strengthen identity and credential management",
		Details:       "Centralize identity lifecycle, enforce MFA and review privileged accounts.",
		Investments:   "IdP/MFA licensing; integration hours",
		Risks:         "Credential compromise and privilege abuse",
		Justification: "Maturity below target level (>=3).",
		Priority:      model.PriorityHigh,
		Months:        6,
	},
	"DE.AE-02": {
		Name:          "Improve adverse event analysis",
		Details:       "Deploy event correlation/enrichment and broaden response playbooks.",
		Investments:   "SIEM/SOAR; consulting hours",
		Risks:         "Late detection and amplified impact",
		Justification: "Maturity below target level (>=3).",
		Priority:      model.PriorityHigh,
		Months:        3,
	},
	"DE.AE-03": {
		Name:          "Improve multi-source correlation",
		Details:       "Normalize logs, unify taxonomies and create cross-source correlation rules.",
		Investments:   "SIEM, connectors, consulting",
		Risks:         "Elevated false positives/negatives",
		Justification: "Insufficient coverage and low maturity.",
		Priority:      model.PriorityMedium,
		Months:        4,
	},
	"RS.MA-01": {
		Name:          "Operationalize incident response management",
		Details:       "Approve the IR plan, assign roles and exercise it at least annually.",
		Investments:   "Tabletop exercises; on-call tooling",
		Risks:         "Uncoordinated response extending outage windows",
		Justification: "Maturity below target level (>=3).",
		Priority:      model.PriorityHigh,
		Months:        4,
	},
	"RC.RP-01": {
		Name:          "Formalize recovery plan execution",
		Details:       "Define recovery runbooks with RTO/RPO targets and test restores periodically.",
		Investments:   "Backup/DR tooling; test windows",
		Risks:         "Unrecoverable data loss after incidents",
		Justification: "Maturity below target level (>=3).",
		Priority:      model.PriorityMedium,
		Months:        6,
	},
}

// Lookup returns the catalog entry for a control code.
func Lookup(controlCode string) (Entry, bool) {
	e, ok := entries[controlCode]
	return e, ok
}

// Generic synthesizes the fallback entry for controls without a catalog
// recipe.
func Generic(controlCode string) Entry {
	return Entry{
		Name:          fmt.Sprintf("Raise maturity of control %s", controlCode),
		Details:       "Formalize policy and practice to reach maturity level 3.",
		Investments:   "Process hours; tooling adjustments",
		Risks:         "Exposure above risk appetite",
		Justification: "Maturity below target level (>=3).",
		Priority:      model.PriorityMedium,
		Months:        3,
	}
}

// Resolve returns the catalog entry for the control, generic when absent.
func Resolve(controlCode string) Entry {
	if e, ok := Lookup(controlCode); ok {
		return e
	}
	return Generic(controlCode)
}

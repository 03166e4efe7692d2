// Package model - VulnerabilityRecord is the merged, deduplicated output of the vulnerability scan.
package model

import (
	"github.com/google/osv-scanner/pkg/models"
	"github.com/ortelius/forkpoint-cves/util"
)

// VulnerabilityRecord is a vulnerability matched by at least one fork point.
// Records are created on first match and afterwards only FixedVersions and
// AffectedComponents grow.
type VulnerabilityRecord struct {
	ID                 string              `json:"id"`      // e.g., "GHSA-xxxx-xxxx-xxxx"
	Summary            string              `json:"summary"` // one-line description
	Details            string              `json:"details"`
	Aliases            []string            `json:"aliases,omitempty"`
	Severity           []models.Severity   `json:"severity,omitempty"`  // raw CVSS vectors
	SeverityScore      float64             `json:"severity_score"`      // highest CVSS base score
	SeverityRating     string              `json:"severity_rating"`     // e.g., "CRITICAL"
	Affected           []models.Affected   `json:"affected,omitempty"`  // raw affected-range data
	Ranges             []util.VersionRange `json:"ranges,omitempty"`    // folded introduced/fixed pairs
	FixedVersions      []string            `json:"fixed_versions"`      // deduplicated fixed events
	References         []string            `json:"references"`          // reference URLs
	AffectedComponents []string            `json:"affected_components"` // fork components that matched
}

// NewVulnerabilityRecord builds the record for the first component that matched vuln
func NewVulnerabilityRecord(vuln models.Vulnerability, component string) *VulnerabilityRecord {
	score := util.HighestCVSSScore(vuln.Severity)

	references := make([]string, 0, len(vuln.References))
	for _, ref := range vuln.References {
		if ref.URL != "" {
			references = append(references, ref.URL)
		}
	}

	return &VulnerabilityRecord{
		ID:                 vuln.ID,
		Summary:            vuln.Summary,
		Details:            vuln.Details,
		Aliases:            vuln.Aliases,
		Severity:           vuln.Severity,
		SeverityScore:      score,
		SeverityRating:     util.GetSeverityRating(score),
		Affected:           vuln.Affected,
		Ranges:             util.VersionRanges(vuln.Affected),
		FixedVersions:      util.FixedVersions(vuln),
		References:         references,
		AffectedComponents: []string{component},
	}
}

// IsRemediated reports whether at least one fixed version is known
func (r *VulnerabilityRecord) IsRemediated() bool {
	return len(r.FixedVersions) > 0
}

// RemediationSummary is the per-component count of remediated vulnerabilities
type RemediationSummary struct {
	Component  string `json:"component"`
	Remediated int    `json:"remediated"`
}

// QueryOutcome is the result of one vulnerability database lookup
type QueryOutcome struct {
	Item  WorkItem
	Vulns []models.Vulnerability
	Err   error
}

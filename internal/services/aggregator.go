// Package services provides the stage services of the fork-point scanner.
package services

import (
	"sort"
	"sync"

	"github.com/google/osv-scanner/pkg/models"
	"github.com/ortelius/forkpoint-cves/model"
	"github.com/ortelius/forkpoint-cves/util"
	"github.com/samber/lo"
)

// Aggregator merges matched vulnerabilities into one record per identifier.
// It is the single owner of merged state and is safe for concurrent use.
type Aggregator struct {
	mu      sync.Mutex
	records map[string]*model.VulnerabilityRecord
}

// NewAggregator returns an empty aggregator
func NewAggregator() *Aggregator {
	return &Aggregator{records: make(map[string]*model.VulnerabilityRecord)}
}

// Record merges vuln as affecting forkComponent and reports whether it was kept.
// The first report creates the record; later reports only union the fixed
// versions and add the component if it is not listed yet. A vulnerability
// without an identifier cannot be merged and is rejected.
func (a *Aggregator) Record(vuln models.Vulnerability, forkComponent string) bool {
	if util.IsEmpty(vuln.ID) {
		return false
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	existing, ok := a.records[vuln.ID]
	if !ok {
		a.records[vuln.ID] = model.NewVulnerabilityRecord(vuln, forkComponent)
		return true
	}

	existing.FixedVersions = lo.Union(existing.FixedVersions, util.FixedVersions(vuln))
	if !lo.Contains(existing.AffectedComponents, forkComponent) {
		existing.AffectedComponents = append(existing.AffectedComponents, forkComponent)
	}
	return true
}

// Len returns the number of distinct vulnerabilities recorded
func (a *Aggregator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.records)
}

// Records returns a copy of every record sorted by identifier
func (a *Aggregator) Records() []model.VulnerabilityRecord {
	a.mu.Lock()
	defer a.mu.Unlock()

	records := make([]model.VulnerabilityRecord, 0, len(a.records))
	for _, rec := range a.records {
		cp := *rec
		cp.FixedVersions = append([]string{}, rec.FixedVersions...)
		cp.AffectedComponents = append([]string{}, rec.AffectedComponents...)
		records = append(records, cp)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })
	return records
}

// RemediationCounts returns, per component, how many matched vulnerabilities have a known fix
func (a *Aggregator) RemediationCounts() map[string]int {
	a.mu.Lock()
	defer a.mu.Unlock()

	counts := make(map[string]int)
	for _, rec := range a.records {
		if !rec.IsRemediated() {
			continue
		}
		for _, component := range rec.AffectedComponents {
			counts[component]++
		}
	}
	return counts
}

// Summarize orders remediation counts by count descending, then component
func Summarize(counts map[string]int) []model.RemediationSummary {
	summary := make([]model.RemediationSummary, 0, len(counts))
	for component, n := range counts {
		summary = append(summary, model.RemediationSummary{Component: component, Remediated: n})
	}
	sort.Slice(summary, func(i, j int) bool {
		if summary[i].Remediated != summary[j].Remediated {
			return summary[i].Remediated > summary[j].Remediated
		}
		return summary[i].Component < summary[j].Component
	})
	return summary
}

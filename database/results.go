package database

import (
	"bytes"
	"fmt"

	"github.com/ortelius/forkpoint-cves/model"
)

// WriteResults persists the merged vulnerability records as a JSON array
func (s *Store) WriteResults(path string, records []model.VulnerabilityRecord) error {
	if records == nil {
		records = []model.VulnerabilityRecord{}
	}
	if err := s.writeJSON(path, records); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}
	s.logger.Sugar().Infof("Wrote %d vulnerabilities to %s", len(records), path)
	return nil
}

// WriteSummary persists the human-readable remediation summary
func (s *Store) WriteSummary(path string, summary []model.RemediationSummary) error {
	if err := s.writeFile(path, FormatSummary(summary)); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	return nil
}

// FormatSummary renders one line per component
func FormatSummary(summary []model.RemediationSummary) []byte {
	var buf bytes.Buffer
	for _, line := range summary {
		fmt.Fprintf(&buf, "%s: %d remediated vulnerabilities\n", line.Component, line.Remediated)
	}
	return buf.Bytes()
}

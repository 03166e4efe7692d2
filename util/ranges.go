// Package util provides utility functions for the scanner.
//
//revive:disable-next-line:var-naming
package util

import (
	"github.com/google/osv-scanner/pkg/models"
)

// zeroVersion is the lower bound of a range without an introduced event.
// OSV also uses the literal "0" to mean "from the beginning".
const zeroVersion = "0.0.0"

// VersionRange is a folded (introduced, fixed) pair from an OSV range.
// Fixed is empty for ranges that are still vulnerable; LastAffected then
// bounds the range inclusively when the database knows it.
type VersionRange struct {
	Introduced   string `json:"introduced"`
	Fixed        string `json:"fixed,omitempty"`
	LastAffected string `json:"last_affected,omitempty"`
}

// RangeMatcher decides whether a target version falls inside affected ranges
type RangeMatcher struct {
	Comparer Comparer
}

// NewRangeMatcher returns a matcher using c, or the numeric comparator when c is nil
func NewRangeMatcher(c Comparer) RangeMatcher {
	if c == nil {
		c = NumericComparer
	}
	return RangeMatcher{Comparer: c}
}

// IsAffected checks the vulnerability against target with the numeric comparator
func IsAffected(vuln models.Vulnerability, target string) bool {
	return NewRangeMatcher(nil).IsAffected(vuln, target)
}

// IsAffected reports whether any affected entry has a range covering target.
// A vulnerability without affected data never matches.
func (m RangeMatcher) IsAffected(vuln models.Vulnerability, target string) bool {
	for _, affected := range vuln.Affected {
		if m.IsVersionAffected(target, affected) {
			return true
		}
	}
	return false
}

// IsVersionAffected checks a single affected entry
func (m RangeMatcher) IsVersionAffected(target string, affected models.Affected) bool {
	for _, vrange := range affected.Ranges {
		// GIT ranges hold commit hashes, not versions
		if vrange.Type == models.RangeGit {
			continue
		}
		if m.InRange(target, FoldRange(vrange)) {
			return true
		}
	}
	return false
}

// InRange checks introduced <= target < fixed, or introduced <= target <= last
// affected when no fixed version exists. A range with neither is unbounded above.
func (m RangeMatcher) InRange(target string, vr VersionRange) bool {
	cmp := m.comparer()
	if cmp.Compare(vr.Introduced, target) > 0 {
		return false
	}
	switch {
	case vr.Fixed != "":
		return cmp.Compare(target, vr.Fixed) < 0
	case vr.LastAffected != "":
		return cmp.Compare(target, vr.LastAffected) <= 0
	default:
		return true
	}
}

func (m RangeMatcher) comparer() Comparer {
	if m.Comparer == nil {
		return NumericComparer
	}
	return m.Comparer
}

// FoldRange collapses the range events, the last introduced, fixed and last_affected win
func FoldRange(vrange models.Range) VersionRange {
	var vr VersionRange
	for _, event := range vrange.Events {
		if event.Introduced != "" {
			vr.Introduced = event.Introduced
		}
		if event.Fixed != "" {
			vr.Fixed = event.Fixed
		}
		if event.LastAffected != "" {
			vr.LastAffected = event.LastAffected
		}
	}
	if vr.Introduced == "" || vr.Introduced == "0" {
		vr.Introduced = zeroVersion
	}
	return vr
}

// VersionRanges folds every non-GIT range of the affected entries
func VersionRanges(allAffected []models.Affected) []VersionRange {
	var ranges []VersionRange
	for _, affected := range allAffected {
		for _, vrange := range affected.Ranges {
			if vrange.Type == models.RangeGit {
				continue
			}
			ranges = append(ranges, FoldRange(vrange))
		}
	}
	return ranges
}

// FixedVersions returns every fixed event of the vulnerability, deduplicated in first-seen order
func FixedVersions(vuln models.Vulnerability) []string {
	fixedVersions := []string{}
	seen := make(map[string]bool)
	for _, affected := range vuln.Affected {
		for _, vrange := range affected.Ranges {
			for _, event := range vrange.Events {
				if event.Fixed != "" && !seen[event.Fixed] {
					fixedVersions = append(fixedVersions, event.Fixed)
					seen[event.Fixed] = true
				}
			}
		}
	}
	return fixedVersions
}

// Package util provides utility functions for the scanner.
//
//revive:disable-next-line:var-naming
package util

import (
	"strings"

	"github.com/Masterminds/semver/v3"
	npm "github.com/aquasecurity/go-npm-version/pkg"
	pep440 "github.com/aquasecurity/go-pep440-version"
	gosemver "golang.org/x/mod/semver"
)

// Comparer orders two version strings, returning -1, 0 or 1
type Comparer interface {
	Compare(a, b string) int
}

// ComparerFunc adapts a plain function to the Comparer interface
type ComparerFunc func(a, b string) int

// Compare calls f(a, b)
func (f ComparerFunc) Compare(a, b string) int {
	return f(a, b)
}

// NumericComparer orders versions with CompareVersions
var NumericComparer Comparer = ComparerFunc(CompareVersions)

// ComparerFor returns an ecosystem-aware comparer.
// npm and PyPI use their native version grammars, Go uses module semver and
// everything else is coerced through Masterminds semver. When either operand
// does not parse in the ecosystem grammar the numeric comparator decides.
func ComparerFor(ecosystem string) Comparer {
	switch strings.ToLower(ecosystem) {
	case "npm":
		return ComparerFunc(compareNPM)
	case "pypi":
		return ComparerFunc(comparePEP440)
	case "go":
		return ComparerFunc(compareGoModule)
	default:
		return ComparerFunc(compareSemver)
	}
}

func compareNPM(a, b string) int {
	va, errA := npm.NewVersion(a)
	vb, errB := npm.NewVersion(b)
	if errA != nil || errB != nil {
		return CompareVersions(a, b)
	}
	switch {
	case va.LessThan(vb):
		return -1
	case va.GreaterThan(vb):
		return 1
	default:
		return 0
	}
}

func comparePEP440(a, b string) int {
	va, errA := pep440.Parse(a)
	vb, errB := pep440.Parse(b)
	if errA != nil || errB != nil {
		return CompareVersions(a, b)
	}
	switch {
	case va.LessThan(vb):
		return -1
	case va.GreaterThan(vb):
		return 1
	default:
		return 0
	}
}

func compareGoModule(a, b string) int {
	// Strip "go" prefix for stdlib versions (e.g. "go1.22.2")
	va := "v" + strings.TrimPrefix(strings.TrimPrefix(a, "go"), "v")
	vb := "v" + strings.TrimPrefix(strings.TrimPrefix(b, "go"), "v")
	if !gosemver.IsValid(va) || !gosemver.IsValid(vb) {
		return CompareVersions(a, b)
	}
	return gosemver.Compare(va, vb)
}

func compareSemver(a, b string) int {
	va, errA := semver.NewVersion(a)
	vb, errB := semver.NewVersion(b)
	if errA != nil || errB != nil {
		return CompareVersions(a, b)
	}
	return va.Compare(vb)
}

// Package util provides utility functions for working with Package URLs (PURLs),
// version comparisons for vulnerability checking, and reading the environment.
//
//revive:disable-next-line:var-naming
package util

import (
	"os"
	"strings"

	"github.com/package-url/packageurl-go"
)

// PackageRef holds the parts of a package URL the scanner cares about
type PackageRef struct {
	Registry  string `json:"registry"`
	Component string `json:"component"`
	Version   string `json:"version,omitempty"`
}

// registryEcosystems maps PURL types to OSV ecosystem names
var registryEcosystems = map[string]string{
	"npm":       "npm",
	"pypi":      "PyPI",
	"maven":     "Maven",
	"golang":    "Go",
	"nuget":     "NuGet",
	"gem":       "RubyGems",
	"cargo":     "crates.io",
	"composer":  "Packagist",
	"pub":       "Pub",
	"cocoapods": "CocoaPods",
	"hex":       "Hex",
	"apk":       "Alpine",
	"deb":       "Debian",
}

// GetEnvDefault is a convenience function for handling env vars
func GetEnvDefault(key, defVal string) string {
	val, ex := os.LookupEnv(key) // get the env var
	if !ex {                     // not found return default
		return defVal
	}
	return val // return value for env var
}

// IsEmpty checks if a string is empty or contains only whitespace
func IsEmpty(s string) bool {
	return len(strings.TrimSpace(s)) == 0
}

// RegistryEcosystem converts a PURL type to its OSV ecosystem name.
// Unknown types are returned unchanged.
func RegistryEcosystem(purlType string) string {
	if ecosystem, exists := registryEcosystems[strings.ToLower(purlType)]; exists {
		return ecosystem
	}
	return purlType
}

// ParsePurl parses "pkg:<registry>/<component>[@<version>]".
// Returns nil when the identifier is not a usable PURL so callers can skip it.
func ParsePurl(id string) *PackageRef {
	id = strings.TrimSpace(id)
	if !strings.HasPrefix(id, "pkg:") {
		return nil
	}

	parsed, err := packageurl.FromString(id)
	if err != nil {
		return nil
	}
	if parsed.Type == "" || parsed.Name == "" {
		return nil
	}

	component := parsed.Name
	if parsed.Namespace != "" {
		component = parsed.Namespace + "/" + parsed.Name
	}

	return &PackageRef{
		Registry:  RegistryEcosystem(parsed.Type),
		Component: component,
		Version:   parsed.Version,
	}
}

// BasePurl removes the version, qualifiers and subpath from a PURL.
// Example: pkg:composer/symfony/console@5.3.0 -> pkg:composer/symfony/console
func BasePurl(purlStr string) (string, error) {
	parsed, err := packageurl.FromString(strings.TrimSpace(purlStr))
	if err != nil {
		return "", err
	}

	base := packageurl.PackageURL{
		Type:      parsed.Type,
		Namespace: parsed.Namespace,
		Name:      parsed.Name,
	}
	return base.ToString(), nil
}

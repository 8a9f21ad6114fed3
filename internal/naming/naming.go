// Package naming converts raw API identifiers into filesystem- and URL-safe
// path segments.
package naming

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"git.home.luguber.info/inful/refdocs/internal/errors"
)

// CasePolicy controls the casing applied to normalized segments.
type CasePolicy string

const (
	CaseLower     CasePolicy = "lower"
	CaseUpper     CasePolicy = "upper"
	CaseUnchanged CasePolicy = "unchanged"
)

// ParseCasePolicy parses a configured case policy name. Empty selects the
// default (lower).
func ParseCasePolicy(name string) (CasePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", string(CaseLower):
		return CaseLower, nil
	case string(CaseUpper):
		return CaseUpper, nil
	case string(CaseUnchanged):
		return CaseUnchanged, nil
	}
	return "", errors.ConfigError("unknown case policy").WithContext("case_policy", name)
}

// Placeholders substituted when normalization produces an empty segment.
const (
	FallbackAssembly  = "unknown-assembly"
	FallbackType      = "unknown-type"
	FallbackNamespace = "global"
)

var (
	// Trailing generic-arity marker: one or more backticks followed by digits.
	// Converted before general character replacement so arity survives as a
	// distinct suffix ("Name`1" -> "Name-1", never "Name-" colliding across
	// arities).
	arityPattern = regexp.MustCompile("`+([0-9]+)$")

	// Reserved filesystem characters plus angle brackets, backticks and
	// parentheses, all collapsed to hyphens.
	unsafePattern = regexp.MustCompile("[\\\\/:*?\"|<>`()\\[\\]{}#%&+, ]")
)

// Normalizer applies one case policy to all segments it produces. It is a
// value type so concurrent runs with different policies never interfere.
type Normalizer struct {
	policy CasePolicy
	caser  cases.Caser
	cased  bool
}

// NewNormalizer creates a Normalizer for the given policy.
func NewNormalizer(policy CasePolicy) Normalizer {
	n := Normalizer{policy: policy}
	switch policy {
	case CaseUpper:
		n.caser = cases.Upper(language.Und)
		n.cased = true
	case CaseLower:
		n.caser = cases.Lower(language.Und)
		n.cased = true
	}
	return n
}

// Policy returns the case policy the normalizer applies.
func (n Normalizer) Policy() CasePolicy { return n.policy }

// SafeName normalizes a raw identifier into a safe file segment. Dots are
// preserved; directory segments use SafeDirName instead.
func (n Normalizer) SafeName(raw string) string {
	s := arityPattern.ReplaceAllString(raw, "-$1")
	s = unsafePattern.ReplaceAllString(s, "-")
	return n.applyCase(s)
}

// SafeNameOr normalizes raw and substitutes placeholder when the result is
// empty.
func (n Normalizer) SafeNameOr(raw, placeholder string) string {
	if s := n.SafeName(raw); s != "" {
		return s
	}
	return placeholder
}

// SafeDirName normalizes a raw identifier into a safe directory segment:
// SafeName semantics with '.' additionally converted to '-'.
func (n Normalizer) SafeDirName(raw string) string {
	return n.SafeName(strings.ReplaceAll(raw, ".", "-"))
}

// SafeDirNameOr normalizes raw as a directory segment and substitutes
// placeholder when the result is empty.
func (n Normalizer) SafeDirNameOr(raw, placeholder string) string {
	if s := n.SafeDirName(raw); s != "" {
		return s
	}
	return placeholder
}

func (n Normalizer) applyCase(s string) string {
	if !n.cased {
		return s
	}
	return n.caser.String(s)
}

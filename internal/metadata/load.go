package metadata

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/refdocs/internal/errors"
)

// Page is one parsed metadata file: the records it declares plus the
// references it carries for uids declared elsewhere.
type Page struct {
	Items      []*Record    `yaml:"items"`
	References []*Reference `yaml:"references"`
}

// Set is the merged result of loading every input file for one run.
type Set struct {
	Records    []*Record
	References []*Reference
}

// ByUID returns a uid-indexed view of the records. Loading guarantees uids
// are unique, so lookups are unambiguous.
func (s *Set) ByUID() map[string]*Record {
	out := make(map[string]*Record, len(s.Records))
	for _, r := range s.Records {
		out[r.UID] = r
	}
	return out
}

// LoadFile parses a single managed-reference YAML file.
func LoadFile(path string) (*Page, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryFileSystem, errors.SeverityFatal, "cannot read metadata file").
			WithContext("path", path)
	}
	var page Page
	if err := yaml.Unmarshal(data, &page); err != nil {
		return nil, errors.Wrap(err, errors.CategoryMetadata, errors.SeverityFatal, "cannot parse metadata file").
			WithContext("path", path)
	}
	return &page, nil
}

// LoadGlobs loads and merges every metadata file matched by the given glob
// patterns. Two records sharing a uid is invalid input and fails the load;
// every duplicate found is reported, not only the first.
func LoadGlobs(patterns []string) (*Set, error) {
	var paths []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, errors.Wrap(err, errors.CategoryConfig, errors.SeverityFatal, "invalid input glob").
				WithContext("glob", pattern)
		}
		paths = append(paths, matches...)
	}
	sort.Strings(paths)
	if len(paths) == 0 {
		return nil, errors.ConfigError("no metadata files matched the input globs").
			WithContext("globs", strings.Join(patterns, ", "))
	}

	set := &Set{}
	seen := make(map[string]string) // uid -> first declaring file
	var duplicates []string
	for _, path := range paths {
		page, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		for _, rec := range page.Items {
			if rec == nil {
				continue
			}
			if rec.UID != "" {
				if first, ok := seen[rec.UID]; ok {
					duplicates = append(duplicates, fmt.Sprintf("%s (%s, first seen in %s)", rec.UID, path, first))
					continue
				}
				seen[rec.UID] = path
			}
			set.Records = append(set.Records, rec)
		}
		for _, ref := range page.References {
			if ref != nil && ref.UID != "" {
				set.References = append(set.References, ref)
			}
		}
	}

	if len(duplicates) > 0 {
		return nil, errors.New(errors.CategoryMetadata, errors.SeverityFatal, "duplicate uids in input").
			WithContext("duplicates", strings.Join(duplicates, "; ")).
			WithContext("count", len(duplicates))
	}
	return set, nil
}

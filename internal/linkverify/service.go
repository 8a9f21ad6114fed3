// Package linkverify checks that relative links in generated documents land
// on files the current plan actually produces.
package linkverify

import (
	"log/slog"
	"path"
	"strings"
	"time"

	"git.home.luguber.info/inful/refdocs/internal/diag"
	"git.home.luguber.info/inful/refdocs/internal/markdown"
	"git.home.luguber.info/inful/refdocs/internal/util/sets"
)

// Service verifies one run's documents against the planned output set. It is
// read-only over the plan and safe for concurrent documents.
type Service struct {
	planned sets.Set[string]
	buildID string
	diags   *diag.Collector
	pub     Publisher
	log     *slog.Logger
}

// NewService creates a verifier over the planned output paths. pub may be nil
// when event publishing is disabled.
func NewService(planned []string, buildID string, diags *diag.Collector, pub Publisher) *Service {
	return &Service{
		planned: sets.New(planned...),
		buildID: buildID,
		diags:   diags,
		pub:     pub,
		log:     slog.Default(),
	}
}

// VerifyDocument extracts links from one generated document and reports every
// relative destination that misses the plan. Returns the broken-link count.
func (s *Service) VerifyDocument(docPath string, body []byte) int {
	broken := 0
	for _, link := range markdown.ExtractLinks(body) {
		dest := link.Destination
		if dest == "" || isExternal(dest) {
			continue
		}
		target := strings.SplitN(dest, "#", 2)[0]
		if target == "" {
			// Same-document anchor.
			continue
		}
		resolved := path.Clean(path.Join(path.Dir(docPath), target))
		if s.planned.Has(resolved) {
			continue
		}
		broken++
		s.diags.Add(diag.Diagnostic{Kind: diag.BrokenLink, Doc: docPath, Message: dest})
		if s.pub != nil {
			if err := s.pub.PublishBrokenLink(&BrokenLinkEvent{
				BuildID:     s.buildID,
				Doc:         docPath,
				Destination: dest,
				Reason:      "target not in output plan",
				Timestamp:   time.Now().UTC(),
			}); err != nil {
				s.log.Warn("broken-link event publish failed", "doc", docPath, "error", err)
			}
		}
	}
	return broken
}

func isExternal(dest string) bool {
	return strings.Contains(dest, "://") ||
		strings.HasPrefix(dest, "mailto:") ||
		strings.HasPrefix(dest, "//")
}

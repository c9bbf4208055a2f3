// Package match finds boundary-respecting mentions of a frontier entity set
// inside one text unit using a multi-pattern Aho-Corasick automaton.
//
// Matching runs over case-folded text; boundary validation runs against the
// same byte offsets, which is safe because ASCII folding preserves length
// and non-ASCII text is never folded. Latin boundaries follow \w rules on
// both edges; text containing CJK is word-segmented once and a hit is kept
// when either edge lands on a segment boundary.
package match

import (
	"sort"
	"sync"

	"github.com/go-ego/gse"
	ahocorasick "github.com/petar-dambovaliev/aho-corasick"
)

// Matcher scans text units against an evolving entity frontier. Safe for
// concurrent use; the segmenter dictionary is loaded once on first CJK text.
type Matcher struct {
	segOnce sync.Once
	seg     gse.Segmenter
	segErr  error
}

// NewMatcher creates a Matcher.
func NewMatcher() *Matcher {
	return &Matcher{}
}

// Match returns the frontier entities that occur in text as
// boundary-respecting substrings, in their original spelling, sorted.
// Any matching failure degrades to an empty result.
func (m *Matcher) Match(text string, frontier []string) []string {
	if len(frontier) == 0 || text == "" {
		return nil
	}

	// Collapse duplicates by folded key; the first spelling wins.
	patterns := make([]string, 0, len(frontier))
	original := make(map[string]string, len(frontier))
	for _, entity := range frontier {
		key := FoldASCII(entity)
		if key == "" {
			continue
		}
		if _, ok := original[key]; !ok {
			original[key] = entity
			patterns = append(patterns, key)
		}
	}
	if len(patterns) == 0 {
		return nil
	}

	builder := ahocorasick.NewAhoCorasickBuilder(ahocorasick.Opts{
		AsciiCaseInsensitive: false,
		MatchOnlyWholeWords:  false,
		MatchKind:            ahocorasick.StandardMatch,
	})
	ac := builder.Build(patterns)

	folded := FoldASCII(text)

	var bounds map[int]bool
	cjk := hasCJK(folded)
	if cjk {
		bounds = m.cjkBoundaries(folded)
		if bounds == nil {
			// Segmenter unavailable: no boundary can be validated.
			return nil
		}
	}

	matched := make(map[string]bool)
	iter := ac.IterOverlapping(folded)
	for hit := iter.Next(); hit != nil; hit = iter.Next() {
		start, end := hit.Start(), hit.End()
		ok := false
		if cjk {
			ok = bounds[start] || bounds[end]
		} else {
			ok = asciiBoundary(folded, start, end)
		}
		if ok {
			matched[original[patterns[hit.Pattern()]]] = true
		}
	}

	out := make([]string, 0, len(matched))
	for e := range matched {
		out = append(out, e)
	}
	sort.Strings(out)
	return out
}

// cjkBoundaries segments the whole text once and returns the byte offsets
// of segment edges, or nil when the segmenter cannot be loaded.
func (m *Matcher) cjkBoundaries(text string) map[int]bool {
	m.segOnce.Do(func() {
		m.segErr = m.seg.LoadDict()
	})
	if m.segErr != nil {
		return nil
	}
	return segmentBoundaries(m.seg.Cut(text, true))
}

// Package triple turns raw oracle text into validated triples. The oracle
// is never trusted: every line is re-checked against the entities the
// matcher actually found before it becomes part of the graph.
package triple

import (
	"regexp"
	"strings"

	"github.com/marklabz/LeanRAG/internal/match"
)

// Triple is one subject/predicate/object assertion.
type Triple struct {
	Subject   string
	Predicate string
	Object    string
}

// Tab returns the tab-joined persisted form.
func (t Triple) Tab() string {
	return t.Subject + "\t" + t.Predicate + "\t" + t.Object
}

// Key returns the canonical dedup key: the lower-cased tab join. Known
// limitation carried from the source behavior: ASCII entities differing
// only by case share a key.
func (t Triple) Key() string {
	return strings.ToLower(t.Tab())
}

// listPrefix strips "1." / "2)" style numbering from oracle reply lines.
var listPrefix = regexp.MustCompile(`^\s*\d+\s*[.)]\s*`)

// ParseTriples parses an oracle reply into triples anchored on the matched
// entities. A line survives only when it has exactly three non-empty fields
// and its subject or object case-folds to a matched entity. Returned heads
// are the matched entities actually used as anchors; tails are the opposite
// role of each kept triple when it is not itself a matched entity.
func ParseTriples(matched []string, raw string) ([]Triple, []string, []string) {
	anchors := make(map[string]string, len(matched))
	for _, e := range matched {
		anchors[match.FoldASCII(e)] = e
	}

	var (
		triples  []Triple
		heads    []string
		tails    []string
		seen     = make(map[string]bool)
		headSeen = make(map[string]bool)
		tailSeen = make(map[string]bool)
	)

	for _, line := range strings.Split(raw, "\n") {
		t, ok := parseLine(line)
		if !ok {
			continue
		}

		subjKey := match.FoldASCII(t.Subject)
		objKey := match.FoldASCII(t.Object)
		anchor, subjAnchored := anchors[subjKey]
		if !subjAnchored {
			var objAnchored bool
			anchor, objAnchored = anchors[objKey]
			if !objAnchored {
				continue // unattributable, drop
			}
		}

		if key := t.Key(); !seen[key] {
			seen[key] = true
			triples = append(triples, t)
		}

		if !headSeen[anchor] {
			headSeen[anchor] = true
			heads = append(heads, anchor)
		}

		// The non-anchor role is a discovery candidate.
		tail := t.Object
		tailKey := objKey
		if !subjAnchored {
			tail = t.Subject
			tailKey = subjKey
		}
		if _, known := anchors[tailKey]; !known && tail != "" && !tailSeen[tailKey] {
			tailSeen[tailKey] = true
			tails = append(tails, tail)
		}
	}

	return triples, heads, tails
}

// parseLine extracts one triple from a reply line. Fields are separated by
// "|" or tabs; numbering, angle brackets and whitespace are stripped.
func parseLine(line string) (Triple, bool) {
	line = strings.TrimSpace(listPrefix.ReplaceAllString(strings.TrimSpace(line), ""))
	if line == "" {
		return Triple{}, false
	}

	sep := "|"
	if !strings.Contains(line, "|") {
		sep = "\t"
	}
	parts := strings.Split(line, sep)
	if len(parts) != 3 {
		return Triple{}, false
	}

	fields := make([]string, 3)
	for i, p := range parts {
		p = strings.TrimSpace(p)
		p = strings.Trim(p, "<>")
		p = strings.TrimSpace(p)
		if p == "" {
			return Triple{}, false
		}
		fields[i] = p
	}
	return Triple{Subject: fields[0], Predicate: fields[1], Object: fields[2]}, true
}

// ParseEntityList parses the newline-delimited entity verification reply,
// trimming and deduplicating case-insensitively while keeping the first
// spelling.
func ParseEntityList(raw string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(listPrefix.ReplaceAllString(strings.TrimSpace(line), ""))
		if line == "" {
			continue
		}
		key := match.FoldASCII(line)
		if !seen[key] {
			seen[key] = true
			out = append(out, line)
		}
	}
	return out
}

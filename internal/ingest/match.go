package ingest

import (
	"strings"

	"github.com/JonMunkholm/salesboard/internal/catalog"
)

// Tier identifies which matching rule produced a match.
type Tier int

const (
	TierExact Tier = iota + 1
	TierTranslated
	TierFuzzy
)

func (t Tier) String() string {
	switch t {
	case TierExact:
		return "exact"
	case TierTranslated:
		return "translated"
	case TierFuzzy:
		return "fuzzy"
	default:
		return "none"
	}
}

// Match is the canonical member a raw value resolved to.
type Match struct {
	Member string
	Tier   Tier
}

type matchEntry struct {
	name  string
	norm  string
	label string // normalized label, empty when the member has none
}

// Matcher resolves free text to one member of a fixed, ordered set.
// It is safe for concurrent use.
type Matcher struct {
	entries []matchEntry
}

// NewMatcher precomputes the normalized names and labels of members.
func NewMatcher(members []catalog.Member) *Matcher {
	entries := make([]matchEntry, len(members))
	for i, m := range members {
		entries[i] = matchEntry{
			name:  m.Name,
			norm:  NormalizeText(m.Name),
			label: NormalizeText(m.Label),
		}
	}
	return &Matcher{entries: entries}
}

// Match resolves raw against the set. Tiers are tried in order and the first
// member that satisfies a tier wins:
//
//  1. exact: normalized raw equals a normalized member name;
//  2. translated: normalized raw equals a normalized member label;
//  3. fuzzy: normalized raw contains, or is contained by, a normalized
//     name or label.
//
// Within a tier members are visited in catalog order, so when several
// members satisfy the fuzzy tier the earliest one is returned.
// Input that normalizes to nothing never matches.
func (m *Matcher) Match(raw string) (Match, bool) {
	in := NormalizeText(raw)
	if in == "" {
		return Match{}, false
	}

	for _, e := range m.entries {
		if in == e.norm {
			return Match{Member: e.name, Tier: TierExact}, true
		}
	}

	for _, e := range m.entries {
		if e.label != "" && in == e.label {
			return Match{Member: e.name, Tier: TierTranslated}, true
		}
	}

	for _, e := range m.entries {
		if contains(in, e.norm) || contains(in, e.label) {
			return Match{Member: e.name, Tier: TierFuzzy}, true
		}
	}

	return Match{}, false
}

// contains reports bidirectional substring containment. An empty candidate
// never matches.
func contains(in, candidate string) bool {
	if candidate == "" {
		return false
	}
	return strings.Contains(in, candidate) || strings.Contains(candidate, in)
}

// Members returns the canonical names in match order.
func (m *Matcher) Members() []string {
	out := make([]string, len(m.entries))
	for i, e := range m.entries {
		out[i] = e.name
	}
	return out
}

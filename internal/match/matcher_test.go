package match

import (
	"reflect"
	"testing"
)

func TestMatchWholeWordsOnly(t *testing.T) {
	m := NewMatcher()

	tests := []struct {
		name     string
		text     string
		frontier []string
		want     []string
	}{
		{
			name:     "simple hit",
			text:     "the cat sat on the mat",
			frontier: []string{"cat"},
			want:     []string{"cat"},
		},
		{
			name:     "plural is not the singular",
			text:     "the cats sat on the mat",
			frontier: []string{"cat"},
			want:     nil,
		},
		{
			name:     "embedded substring rejected",
			text:     "concatenate the strings",
			frontier: []string{"cat"},
			want:     nil,
		},
		{
			name:     "case-insensitive over ascii",
			text:     "Paris is the capital of France.",
			frontier: []string{"paris", "france"},
			want:     []string{"france", "paris"},
		},
		{
			name:     "punctuation counts as boundary",
			text:     "He moved to Paris, France in 1998.",
			frontier: []string{"Paris", "France"},
			want:     []string{"France", "Paris"},
		},
		{
			name:     "multi-word entity",
			text:     "She works in New York these days",
			frontier: []string{"New York"},
			want:     []string{"New York"},
		},
		{
			name:     "no frontier",
			text:     "anything at all",
			frontier: nil,
			want:     nil,
		},
		{
			name:     "empty text",
			text:     "",
			frontier: []string{"cat"},
			want:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := m.Match(tt.text, tt.frontier)
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Match(%q, %v) = %v, want %v", tt.text, tt.frontier, got, tt.want)
			}
		})
	}
}

func TestMatchOutputSorted(t *testing.T) {
	m := NewMatcher()
	got := m.Match("zebra and apple and mango", []string{"zebra", "mango", "apple"})
	want := []string{"apple", "mango", "zebra"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Match = %v, want sorted %v", got, want)
	}
}

func TestMatchReturnsOriginalSpelling(t *testing.T) {
	m := NewMatcher()

	// The text is pure ASCII, so matching is case-insensitive, but the
	// result carries the frontier's spelling.
	got := m.Match("the louvre is in paris", []string{"Paris", "Louvre"})
	want := []string{"Louvre", "Paris"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Match = %v, want %v", got, want)
	}
}

func TestMatchFoldDuplicatesFirstSpellingWins(t *testing.T) {
	m := NewMatcher()

	got := m.Match("paris in spring", []string{"Paris", "paris", "PARIS"})
	want := []string{"Paris"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Match = %v, want %v", got, want)
	}
}

func TestMatchCJKSegmentBoundary(t *testing.T) {
	m := NewMatcher()

	got := m.Match("北京是中国的首都", []string{"北京", "首都"})
	want := []string{"北京", "首都"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Match = %v, want %v", got, want)
	}
}

func TestMatchRepeatedHitsDedup(t *testing.T) {
	m := NewMatcher()

	got := m.Match("cat and cat and cat", []string{"cat"})
	want := []string{"cat"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Match = %v, want %v", got, want)
	}
}

package prompt

import (
	"strings"
	"testing"
)

func TestExtractTriplesAnchoredVariant(t *testing.T) {
	p := ExtractTriples("Paris is the capital of France.", []string{"Paris", "France"}, nil)

	if !strings.Contains(p, "Paris is the capital of France.") {
		t.Error("prompt missing the source text")
	}
	if !strings.Contains(p, "[Paris,France]") {
		t.Error("prompt missing the anchor entity list")
	}
	if !strings.Contains(p, "head entity") {
		t.Error("anchored variant must constrain the head entity")
	}
}

func TestExtractTriplesOpenVariant(t *testing.T) {
	p := ExtractTriples("Some text.", nil, nil)

	if strings.Contains(p, "head entity") {
		t.Error("open variant must not constrain the head entity")
	}
	if !strings.Contains(p, "proper nouns") {
		t.Error("open variant missing the entity guidance")
	}
	if !strings.Contains(p, "(no examples available)") {
		t.Error("empty example list should be stated")
	}
}

func TestExtractTriplesRendersExamples(t *testing.T) {
	p := ExtractTriples("text", []string{"Paris"}, []string{"Paris\tcapital of\tFrance"})

	if !strings.Contains(p, "1. Paris | capital of | France") {
		t.Errorf("examples not rendered: %s", p)
	}
}

func TestVerifyEntitiesListsCandidates(t *testing.T) {
	p := VerifyEntities([]string{"France", "Seine River"})

	if !strings.Contains(p, "France\nSeine River") {
		t.Error("prompt missing the candidate list")
	}
	if !strings.Contains(p, "one entity per line") {
		t.Error("prompt missing the output format rule")
	}
}

func TestExtractDescriptionNamesRoles(t *testing.T) {
	p := ExtractDescription("Paris is the capital of France.", "Paris\tcapital of\tFrance")

	if !strings.Contains(p, "subject: Paris, relation: capital of, object: France") {
		t.Errorf("triple line not rendered: %s", p)
	}
	if !strings.Contains(p, `"description"`) {
		t.Error("prompt missing the output schema")
	}
}

func TestExtractDescriptionToleratesShortTriple(t *testing.T) {
	p := ExtractDescription("text", "only-subject")
	if !strings.Contains(p, "subject: only-subject, relation: , object: ") {
		t.Errorf("short triple not padded: %s", p)
	}
}

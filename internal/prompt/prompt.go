// Package prompt builds the oracle prompts for triple extraction, entity
// verification and description enrichment.
package prompt

import (
	"fmt"
	"strings"
)

// renderExamples numbers example triples and swaps tabs for readable pipes.
func renderExamples(examples []string) string {
	if len(examples) == 0 {
		return "(no examples available)\n"
	}
	var b strings.Builder
	for i, ex := range examples {
		fmt.Fprintf(&b, "%d. %s\n", i+1, strings.ReplaceAll(ex, "\t", " | "))
	}
	return b.String()
}

// ExtractTriples builds the extraction prompt for one match record. With an
// empty entity list the open-ended variant is used.
func ExtractTriples(text string, entities []string, examples []string) string {
	if len(entities) > 0 {
		entitiesStr := strings.Join(entities, ",")
		return fmt.Sprintf(
			"\n[Text]:\n \"%s\"\n\n"+
				"[Instruction]:\n A triple is composed of a subject, a predicate, and an object. "+
				"Please extract all triples related to [%s] from the above text as much as possible. \n"+
				"The triples must have one of [%s] as the head entity, the text of the tail entity must be short, "+
				"and be output strictly in triple format.\n\n"+
				"[Examples]:\n%s\n",
			text, entitiesStr, entitiesStr, renderExamples(examples))
	}

	return fmt.Sprintf(
		"\n[Text]:\n \"%s\"\n\n"+
			"[Instruction]:\n A triple is composed of a subject, a predicate, and an object. "+
			"The subject and object are entities and must be short. "+
			"Please extract all triples from the above text as much as possible. \n"+
			"Entities include proper nouns, discipline terminologies, abstract and collective nouns, etc. "+
			"Entities do not include any verbs or words without specific meanings such as time, location, number, measurement, etc. \n"+
			"and be output strictly in triple format.\n\n"+
			"[Examples]:\n%s\n",
		text, renderExamples(examples))
}

// VerifyEntities builds the second-pass prompt asking the oracle to re-list
// only genuine entities from the tail candidates.
func VerifyEntities(entities []string) string {
	return "Analyze the entity list I provide and extract all entities (e.g., proper nouns, discipline terminologies, abstract and collective nouns, etc.). Follow these rules STRICTLY:\n" +
		"1. Extract as many nouns from the text as possible\n" +
		"2. Do not include any verbs or words without specific meanings such as time, location, number, measurement, etc.\n" +
		"3. Output EXACTLY one entity per line\n" +
		"4. Maintain ORIGINAL spelling/case from the input\n" +
		"5. Ensure that the entities are not repeated\n" +
		"Input entity list:\n" +
		strings.Join(entities, "\n") + "\n" +
		"Now process this list. \n"
}

// ExtractDescription builds the enrichment prompt for one triple and its
// source text. The reply must follow a fixed subject/relation/object JSON
// schema.
func ExtractDescription(text, tripleStr string) string {
	parts := strings.Split(tripleStr, "\t")
	cleaned := make([]string, 0, 3)
	for i, p := range parts {
		if i == 3 {
			break
		}
		cleaned = append(cleaned, strings.TrimSpace(strings.Trim(strings.TrimSpace(p), "<>")))
	}
	for len(cleaned) < 3 {
		cleaned = append(cleaned, "")
	}
	tripleLine := fmt.Sprintf("subject: %s, relation: %s, object: %s", cleaned[0], cleaned[1], cleaned[2])

	return fmt.Sprintf(`
[Text]:
%s

[Triple]:
%s

[Instruction]:
Each triple consists of a subject, predicate, and object. Based on the triple and the above text fragment (the triple extracted source), extract:

- The subject and object entities with the following fields:
    - "name"
    - "description": concise summary (<= 50 English words) capturing key attributes mentioned in the text

- The relation with:
    - "name"
    - "description": explain the semantic meaning of the relation in context (<= 50 English words)

Special requirements:
1. Prioritize using exact phrases from the text for name fields
2. Relation description should explain **why** the connection exists based on text evidence

[Output format]:
{
"subject": {
    "name": "xxx",
    "description": "xxx"
},
"relation": {
    "name": "xxx",
    "description": "xxx"
},
"object": {
    "name": "xxx",
    "description": "xxx"
}
}
`, text, tripleLine)
}

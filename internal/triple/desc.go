package triple

import (
	"encoding/json"
	"strings"
)

// descReply is the fixed schema the description prompt asks for.
type descReply struct {
	Subject  descField `json:"subject"`
	Relation descField `json:"relation"`
	Object   descField `json:"object"`
}

type descField struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ParseDescription extends a tab-joined triple with subject/relation/object
// descriptions parsed from a JSON reply. Malformed JSON or a missing field
// is recoverable: the original triple string comes back unchanged, never
// dropped.
func ParseDescription(tripleStr, raw string) string {
	parts := strings.Split(tripleStr, "\t")
	if len(parts) < 3 {
		return tripleStr
	}

	var reply descReply
	if err := json.Unmarshal([]byte(stripFences(raw)), &reply); err != nil {
		return tripleStr
	}

	descs := []string{reply.Subject.Description, reply.Relation.Description, reply.Object.Description}
	for _, d := range descs {
		if strings.TrimSpace(d) == "" {
			return tripleStr
		}
	}

	fields := append(parts[:3:3], descs...)
	for i, f := range fields {
		fields[i] = strings.ReplaceAll(f, "\t", " ")
	}
	return strings.Join(fields, "\t")
}

// stripFences removes a surrounding markdown code fence if present.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

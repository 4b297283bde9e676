package ai

import (
	"context"
	"strings"
)

// LocalAssistant answers without a model: it returns the digest lines that
// mention any word of the question, or the whole digest when none do.
type LocalAssistant struct{}

func (LocalAssistant) Ask(ctx context.Context, prompt string, history []ChatMessage) (string, error) {
	digest := ""
	for _, m := range history {
		if m.Role == "system" {
			digest = m.Content
		}
	}
	if digest == "" {
		return "No dashboard data is loaded yet.", nil
	}

	terms := []string{}
	for _, w := range strings.Fields(strings.ToUpper(prompt)) {
		w = strings.Trim(w, "?.,!:;\"'()")
		if len(w) >= 3 && !stopWords[w] {
			terms = append(terms, w)
		}
	}

	var hits []string
	for _, line := range strings.Split(digest, "\n") {
		upper := strings.ToUpper(line)
		if !strings.HasPrefix(line, "- ") {
			continue
		}
		for _, t := range terms {
			if strings.Contains(upper, t) {
				hits = append(hits, line)
				break
			}
		}
	}
	if len(hits) == 0 {
		return digest, nil
	}
	return strings.Join(hits, "\n"), nil
}

var stopWords = map[string]bool{
	"THE": true, "AND": true, "FOR": true, "ARE": true, "HOW": true, "MANY": true, "WHAT": true,
	"WHICH": true, "WHO": true, "SHOW": true, "LIST": true, "WITH": true, "HAS": true, "HAVE": true,
	"ALL": true, "ANY": true, "IN": true, "ON": true, "OF": true,
}

package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/connecta/collabo-backend/internal/collabo/domain"
)

// ParseProposal decodes a model reply into a ScopeProposal. Markdown code
// fences are removed, and a reply with trailing garbage after the last
// closing brace is cut back to that brace.
func ParseProposal(raw string) (*domain.ScopeProposal, error) {
	cleaned := strings.ReplaceAll(raw, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.TrimSpace(cleaned)

	var p domain.ScopeProposal
	err := json.Unmarshal([]byte(cleaned), &p)
	if err == nil {
		return &p, nil
	}

	last := strings.LastIndex(cleaned, "}")
	if last <= 0 {
		return nil, fmt.Errorf("parse proposal: %w", err)
	}
	p = domain.ScopeProposal{}
	if err := json.Unmarshal([]byte(cleaned[:last+1]), &p); err != nil {
		return nil, fmt.Errorf("parse proposal: %w", err)
	}
	return &p, nil
}

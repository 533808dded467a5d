package parsers

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/everglow-poc-v1/server/internal/agent/model"
	logx "github.com/everglow-poc-v1/server/pkg/logger"
)

// basic safety limit to avoid pathological inputs
const maxContentLen = 128 * 1024 // 128KB

// ExtractJSONObject isolates a JSON object from raw model output. Models may
// wrap JSON in markdown fences or surround it with prose; this strips fences,
// then narrows to the outermost '{'..'}' span. The returned string is NOT
// guaranteed to be valid JSON; callers unmarshal and handle failure.
func ExtractJSONObject(content string) string {
	if len(content) > maxContentLen {
		logx.Warn().
			Str("component", "json_parser").
			Int("max_len", maxContentLen).
			Int("orig_len", len(content)).
			Msg("content truncated due to size limit")
		content = content[:maxContentLen]
	}
	cleaned := strings.TrimSpace(content)

	if idx := strings.Index(cleaned, "```json"); idx >= 0 {
		cleaned = cleaned[idx+len("```json"):]
		if end := strings.Index(cleaned, "```"); end >= 0 {
			cleaned = cleaned[:end]
		}
		cleaned = strings.TrimSpace(cleaned)
	} else if strings.Contains(cleaned, "```") {
		parts := strings.SplitN(cleaned, "```", 3)
		if len(parts) >= 2 {
			cleaned = strings.TrimSpace(parts[1])
		}
	}

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start >= 0 && end > start {
		return cleaned[start : end+1]
	}
	return cleaned
}

// ParseIntent interprets classifier output as one of the fixed intents.
// Classification failures are never propagated: malformed JSON, a missing
// key, or an unknown value all degrade to the default "search" intent. A
// bare intent word without JSON wrapping is accepted as-is.
func ParseIntent(content string) model.Intent {
	cleaned := ExtractJSONObject(content)

	var decoded struct {
		Intent string `json:"intent"`
	}
	if err := json.Unmarshal([]byte(cleaned), &decoded); err != nil {
		// Some models answer with the intent word alone.
		bare := strings.Trim(strings.TrimSpace(cleaned), `"'`)
		if model.ValidIntent(bare) {
			logx.Warn().Str("intent", bare).Msg("classifier returned a bare intent string, using it directly")
			return model.Intent(bare)
		}
		logx.Warn().Err(err).Str("output", snippet(cleaned)).Msg("unparseable classifier output, falling back to search intent")
		return model.IntentSearch
	}
	if !model.ValidIntent(decoded.Intent) {
		logx.Warn().Str("intent", decoded.Intent).Msg("classifier returned unknown intent, falling back to search")
		return model.IntentSearch
	}
	return model.Intent(decoded.Intent)
}

// ParseEntityUpdate decodes the extractor's full next-state entity lists.
func ParseEntityUpdate(content string) (model.EntityUpdate, error) {
	cleaned := ExtractJSONObject(content)
	var update model.EntityUpdate
	if err := json.Unmarshal([]byte(cleaned), &update); err != nil {
		return model.EntityUpdate{}, fmt.Errorf("decode entity update: %w", err)
	}
	return update, nil
}

// ParseProductName decodes a {"product_name": ...} extraction. A JSON null
// product name decodes to the empty string.
func ParseProductName(content string) (string, error) {
	cleaned := ExtractJSONObject(content)
	var decoded struct {
		ProductName *string `json:"product_name"`
	}
	if err := json.Unmarshal([]byte(cleaned), &decoded); err != nil {
		return "", fmt.Errorf("decode product name: %w", err)
	}
	if decoded.ProductName == nil {
		return "", nil
	}
	return strings.TrimSpace(*decoded.ProductName), nil
}

func snippet(s string) string {
	const max = 200
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return s[:max]
}

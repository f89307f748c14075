package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"studycapture/domain/core/entities"
	"studycapture/pkg/utils"
)

func truncate(s string, n int) string {
	return utils.TruncateRunes(s, n)
}

// sanitizeModelOutput strips a code fence if present, then keeps the span
// from the first '{' to the last '}'.
func sanitizeModelOutput(raw string) string {
	out := strings.TrimSpace(raw)

	if _, after, ok := strings.Cut(out, "```json"); ok {
		out, _, _ = strings.Cut(after, "```")
		out = strings.TrimSpace(out)
	} else if _, after, ok := strings.Cut(out, "```"); ok {
		out, _, _ = strings.Cut(after, "```")
		out = strings.TrimSpace(out)
	}

	start := strings.Index(out, "{")
	end := strings.LastIndex(out, "}")
	if start != -1 && end > start {
		out = out[start : end+1]
	}
	return out
}

// parseClassification decodes a sanitized model reply. All four fields must
// be present with the right JSON types; keywords may be a comma-separated
// string or an array of strings.
func parseClassification(raw string) (entities.ClassificationResult, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(sanitizeModelOutput(raw)), &fields); err != nil {
		return entities.ClassificationResult{}, fmt.Errorf("reply is not a JSON object: %w", err)
	}

	var res entities.ClassificationResult
	if err := requireField(fields, "subject", &res.Subject); err != nil {
		return res, err
	}
	if err := requireField(fields, "topic", &res.Topic); err != nil {
		return res, err
	}
	if err := requireField(fields, "create_new", &res.CreateNew); err != nil {
		return res, err
	}

	rawKeywords, ok := fields["keywords"]
	if !ok || isNull(rawKeywords) {
		return res, fmt.Errorf("reply is missing %q", "keywords")
	}
	kws, err := decodeKeywords(rawKeywords)
	if err != nil {
		return res, err
	}
	res.Keywords = kws

	res.Subject = strings.TrimSpace(res.Subject)
	res.Topic = strings.TrimSpace(res.Topic)
	if res.Subject == "" || res.Topic == "" {
		return res, fmt.Errorf("reply has an empty subject or topic")
	}
	res.Path = entities.PathModel
	return res, nil
}

func requireField(fields map[string]json.RawMessage, name string, dst any) error {
	raw, ok := fields[name]
	if !ok || isNull(raw) {
		return fmt.Errorf("reply is missing %q", name)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("reply field %q has the wrong type: %w", name, err)
	}
	return nil
}

func isNull(raw json.RawMessage) bool {
	return strings.TrimSpace(string(raw)) == "null"
}

func decodeKeywords(raw json.RawMessage) ([]string, error) {
	var parts []string

	var joined string
	if err := json.Unmarshal(raw, &joined); err == nil {
		parts = strings.Split(joined, ",")
	} else if err := json.Unmarshal(raw, &parts); err != nil {
		return nil, fmt.Errorf("reply field %q must be a string or a list of strings", "keywords")
	}

	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out, nil
}

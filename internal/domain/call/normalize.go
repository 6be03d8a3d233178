package call

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Provider transcript messages arrive in several shapes: bare strings,
// role/message pairs with an optional time offset, and role/content objects
// whose content is either a string or a list of typed text parts. Each raw
// message is tried against these variants in order; entries without any
// extractable text are dropped.

type roleMessageVariant struct {
	Role             string   `json:"role"`
	Message          string   `json:"message"`
	SecondsFromStart *float64 `json:"secondsFromStart"`
}

type roleContentVariant struct {
	Role    string          `json:"role"`
	Content json.RawMessage `json:"content"`
}

type contentPart struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// NormalizeTranscript converts heterogeneous provider messages into the
// canonical ordered entry sequence.
func NormalizeTranscript(raw []json.RawMessage) []TranscriptEntry {
	var entries []TranscriptEntry
	for _, msg := range raw {
		if e, ok := normalizeOne(msg); ok {
			entries = append(entries, e)
		}
	}
	return entries
}

func normalizeOne(raw json.RawMessage) (TranscriptEntry, bool) {
	var plain string
	if err := json.Unmarshal(raw, &plain); err == nil {
		if text := strings.TrimSpace(plain); text != "" {
			return TranscriptEntry{Role: "unknown", Message: text}, true
		}
		return TranscriptEntry{}, false
	}

	var rm roleMessageVariant
	if err := json.Unmarshal(raw, &rm); err == nil {
		if text := strings.TrimSpace(rm.Message); text != "" {
			return TranscriptEntry{
				Role:             normalizeRole(rm.Role),
				Message:          text,
				SecondsFromStart: rm.SecondsFromStart,
			}, true
		}
	}

	var rc roleContentVariant
	if err := json.Unmarshal(raw, &rc); err == nil && len(rc.Content) > 0 {
		if text := strings.TrimSpace(contentText(rc.Content)); text != "" {
			return TranscriptEntry{Role: normalizeRole(rc.Role), Message: text}, true
		}
	}

	return TranscriptEntry{}, false
}

// contentText flattens a content value that is either a string or an array
// of typed parts into plain text.
func contentText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var parts []contentPart
	if err := json.Unmarshal(raw, &parts); err == nil {
		var texts []string
		for _, p := range parts {
			if t := strings.TrimSpace(p.Text); t != "" {
				texts = append(texts, t)
			}
		}
		return strings.Join(texts, " ")
	}
	return ""
}

func normalizeRole(role string) string {
	role = strings.ToLower(strings.TrimSpace(role))
	switch role {
	case "":
		return "unknown"
	case "bot", "assistant":
		return "assistant"
	case "user", "human", "customer":
		return "user"
	default:
		return role
	}
}

// FlattenTranscript renders entries as one human-readable string, one line
// per entry in the form "[12s]ASSISTANT: message". The time prefix is
// omitted for entries without an offset.
func FlattenTranscript(entries []TranscriptEntry) string {
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		prefix := ""
		if e.SecondsFromStart != nil {
			prefix = fmt.Sprintf("[%.0fs]", *e.SecondsFromStart)
		}
		lines = append(lines, fmt.Sprintf("%s%s: %s", prefix, strings.ToUpper(e.Role), e.Message))
	}
	return strings.Join(lines, "\n")
}

package call

import (
	"encoding/json"
	"testing"
)

func raw(parts ...string) []json.RawMessage {
	out := make([]json.RawMessage, len(parts))
	for i, p := range parts {
		out[i] = json.RawMessage(p)
	}
	return out
}

func TestNormalizeRoleMessagePairs(t *testing.T) {
	entries := NormalizeTranscript(raw(
		`{"role":"bot","message":"Hello Mary","secondsFromStart":1.5}`,
		`{"role":"user","message":"Hi there"}`,
	))
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Role != "assistant" || entries[0].Message != "Hello Mary" {
		t.Errorf("unexpected first entry: %+v", entries[0])
	}
	if entries[0].SecondsFromStart == nil || *entries[0].SecondsFromStart != 1.5 {
		t.Errorf("expected time offset 1.5, got %v", entries[0].SecondsFromStart)
	}
	if entries[1].Role != "user" || entries[1].SecondsFromStart != nil {
		t.Errorf("unexpected second entry: %+v", entries[1])
	}
}

func TestNormalizePlainStrings(t *testing.T) {
	entries := NormalizeTranscript(raw(`"Just text"`, `"  "`))
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Role != "unknown" || entries[0].Message != "Just text" {
		t.Errorf("unexpected entry: %+v", entries[0])
	}
}

func TestNormalizeNestedContent(t *testing.T) {
	entries := NormalizeTranscript(raw(
		`{"role":"assistant","content":"Direct content"}`,
		`{"role":"user","content":[{"type":"text","text":"part one"},{"type":"text","text":"part two"}]}`,
	))
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Message != "Direct content" {
		t.Errorf("unexpected first entry: %+v", entries[0])
	}
	if entries[1].Message != "part one part two" {
		t.Errorf("expected joined parts, got %q", entries[1].Message)
	}
}

func TestNormalizeDropsEmptyAndUnrecognized(t *testing.T) {
	entries := NormalizeTranscript(raw(
		`{"role":"bot","message":""}`,
		`{"role":"bot"}`,
		`42`,
		`["a","b"]`,
		`{"role":"user","message":"kept"}`,
	))
	if len(entries) != 1 {
		t.Fatalf("expected only the extractable entry, got %d", len(entries))
	}
	if entries[0].Message != "kept" {
		t.Errorf("unexpected entry: %+v", entries[0])
	}
}

func TestFlattenTranscript(t *testing.T) {
	offset := 12.0
	got := FlattenTranscript([]TranscriptEntry{
		{Role: "assistant", Message: "Hello", SecondsFromStart: &offset},
		{Role: "user", Message: "Hi"},
	})
	want := "[12s]ASSISTANT: Hello\nUSER: Hi"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

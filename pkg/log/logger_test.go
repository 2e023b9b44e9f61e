package log

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestTextOutputContainsFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(WithLevel(DebugLevel), WithFormatter(&TextFormatter{}), WithOutput(NewWriterOutput(&buf)))
	l.Info("server started", Str("addr", ":8080"), Int("shard", 42))

	out := buf.String()
	if !strings.Contains(out, "INFO server started") {
		t.Fatalf("missing level/message: %q", out)
	}
	if !strings.Contains(out, "addr=:8080") || !strings.Contains(out, "shard=42") {
		t.Fatalf("missing fields: %q", out)
	}
}

func TestJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(WithFormatter(&JSONFormatter{}), WithOutput(NewWriterOutput(&buf)))
	l.Info("issued", Uint64("id", 123456789))

	var m map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
		t.Fatalf("not valid JSON: %v (%q)", err, buf.String())
	}
	if m["msg"] != "issued" || m["level"] != "info" {
		t.Fatalf("unexpected object: %v", m)
	}
	if m["id"] != float64(123456789) {
		t.Fatalf("field lost: %v", m["id"])
	}
}

func TestLevelGate(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(WithLevel(WarnLevel), WithOutput(NewWriterOutput(&buf)))
	l.Info("dropped")
	l.Warn("kept")
	if strings.Contains(buf.String(), "dropped") {
		t.Fatalf("info should be gated at warn level")
	}
	if !strings.Contains(buf.String(), "kept") {
		t.Fatalf("warn should pass")
	}
}

func TestWithAttachesBaseFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(WithOutput(NewWriterOutput(&buf))).WithComponent("journal")
	l.Info("trimmed")
	if !strings.Contains(buf.String(), "component=journal") {
		t.Fatalf("missing component field: %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	if lvl, err := ParseLevel("warn"); err != nil || lvl != WarnLevel {
		t.Fatalf("warn: %v %v", lvl, err)
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestApplyConfigRejectsUnknownFormat(t *testing.T) {
	if _, err := ApplyConfig(&Config{Format: "xml"}); err == nil {
		t.Fatalf("expected error")
	}
}

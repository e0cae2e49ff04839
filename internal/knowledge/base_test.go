package knowledge

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

func writeBase(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "knowledge_base.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write knowledge base: %v", err)
	}
	return path
}

func TestLoadMissingFileYieldsEmptyBase(t *testing.T) {
	base := Load(filepath.Join(t.TempDir(), "nope.json"), discardLogger())
	if base.Len() != 0 {
		t.Fatalf("expected empty base, got %d entries", base.Len())
	}
}

func TestLoadMalformedDocumentYieldsEmptyBase(t *testing.T) {
	base := Load(writeBase(t, `{"wifi": [not json`), discardLogger())
	if base.Len() != 0 {
		t.Fatalf("expected empty base, got %d entries", base.Len())
	}
}

func TestLoadSortsTopicsAndDefaultsKeywords(t *testing.T) {
	base := Load(writeBase(t, `{
		"vpn": {"question": "how do I set up vpn", "answer": "Install the client."},
		"email": {"question": "how do I access email", "answer": "Use the webmail portal.", "keywords": ["email", "outlook"]}
	}`), discardLogger())

	entries := base.Entries()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Topic != "email" || entries[1].Topic != "vpn" {
		t.Fatalf("expected sorted topic order, got %q, %q", entries[0].Topic, entries[1].Topic)
	}
	if entries[1].Keywords == nil || len(entries[1].Keywords) != 0 {
		t.Fatalf("expected empty keyword slice for vpn, got %#v", entries[1].Keywords)
	}
}

func TestLoadDropsEntriesWithoutAnswer(t *testing.T) {
	base := Load(writeBase(t, `{
		"broken": {"question": "something", "answer": "  "},
		"wifi": {"question": "how do I connect to wifi", "answer": "Use SSID Corp-Net", "keywords": ["wifi"]}
	}`), discardLogger())

	entries := base.Entries()
	if len(entries) != 1 || entries[0].Topic != "wifi" {
		t.Fatalf("expected only wifi entry to survive, got %#v", entries)
	}
}

func TestReloadSwapsSnapshot(t *testing.T) {
	path := writeBase(t, `{"wifi": {"question": "q", "answer": "a"}}`)
	base := Load(path, discardLogger())
	if base.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", base.Len())
	}

	if err := os.WriteFile(path, []byte(`{
		"wifi": {"question": "q", "answer": "a"},
		"vpn": {"question": "q2", "answer": "a2"}
	}`), 0o644); err != nil {
		t.Fatalf("rewrite knowledge base: %v", err)
	}
	base.Reload()
	if base.Len() != 2 {
		t.Fatalf("expected 2 entries after reload, got %d", base.Len())
	}
}

func TestReloadKeepsPreviousSnapshotOnFailure(t *testing.T) {
	path := writeBase(t, `{"wifi": {"question": "q", "answer": "a"}}`)
	base := Load(path, discardLogger())

	if err := os.Remove(path); err != nil {
		t.Fatalf("remove knowledge base: %v", err)
	}
	base.Reload()
	if base.Len() != 1 {
		t.Fatalf("expected previous snapshot to survive failed reload, got %d entries", base.Len())
	}
}

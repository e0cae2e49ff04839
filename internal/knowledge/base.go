package knowledge

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"
)

// Entry is one curated answer the bot can serve directly.
type Entry struct {
	Topic    string
	Question string
	Answer   string
	Keywords []string
}

type entryDocument struct {
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Keywords []string `json:"keywords"`
}

// Base holds the knowledge entries loaded from a JSON document. Entries are
// immutable after load; Reload swaps in a fresh snapshot so concurrent
// readers never observe a partial update. Topics iterate in sorted order,
// which keeps matching deterministic.
type Base struct {
	mu      sync.RWMutex
	path    string
	logger  *slog.Logger
	entries []Entry
}

// Load reads the knowledge base at path. A missing file or malformed
// document yields an empty base: the bot keeps running and answers every
// query with the no-match path.
func Load(path string, logger *slog.Logger) *Base {
	if logger == nil {
		logger = slog.Default()
	}
	base := &Base{path: path, logger: logger}
	entries, err := readEntries(path, logger)
	if err != nil {
		logger.Error("knowledge base unavailable, starting empty", "path", path, "error", err)
	}
	base.entries = entries
	return base
}

// Reload re-reads the backing file. A load failure logs and leaves the
// previous snapshot in place.
func (b *Base) Reload() {
	entries, err := readEntries(b.path, b.logger)
	if err != nil {
		b.logger.Error("knowledge base reload failed, keeping previous snapshot", "path", b.path, "error", err)
		return
	}
	b.mu.Lock()
	b.entries = entries
	b.mu.Unlock()
	b.logger.Info("knowledge base reloaded", "path", b.path, "entries", len(entries))
}

// Entries returns the current snapshot. Callers must not mutate it.
func (b *Base) Entries() []Entry {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.entries
}

func (b *Base) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.entries)
}

func readEntries(path string, logger *slog.Logger) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var document map[string]entryDocument
	if err := json.Unmarshal(data, &document); err != nil {
		return nil, fmt.Errorf("parse knowledge base: %w", err)
	}

	topics := make([]string, 0, len(document))
	for topic := range document {
		topics = append(topics, topic)
	}
	sort.Strings(topics)

	entries := make([]Entry, 0, len(document))
	for _, topic := range topics {
		doc := document[topic]
		if strings.TrimSpace(doc.Answer) == "" {
			logger.Warn("knowledge entry has no answer, skipping", "topic", topic)
			continue
		}
		keywords := make([]string, 0, len(doc.Keywords))
		for _, keyword := range doc.Keywords {
			keyword = strings.TrimSpace(keyword)
			if keyword != "" {
				keywords = append(keywords, keyword)
			}
		}
		entries = append(entries, Entry{
			Topic:    topic,
			Question: doc.Question,
			Answer:   doc.Answer,
			Keywords: keywords,
		})
	}
	return entries, nil
}

package domain

import (
	"crypto/sha256"
	"encoding/hex"
)

// Metadata keys the engine relies on.
const (
	MetaID     = "id"
	MetaSource = "source"
	MetaTenant = "tenant"
)

// Document is an immutable retrieval unit: text content plus string metadata.
// Metadata carries at least a source and a tenant tag; an explicit id is optional.
type Document struct {
	content  string
	metadata map[string]string
}

// NewDocument creates a Document. The metadata map is copied.
func NewDocument(content string, metadata map[string]string) Document {
	return Document{content: content, metadata: cloneStringMap(metadata)}
}

// Content returns the document text content.
func (d Document) Content() string { return d.content }

// Metadata returns the metadata map. Callers must not mutate it.
func (d Document) Metadata() map[string]string { return d.metadata }

// Meta returns a single metadata value, or "" if absent.
func (d Document) Meta(key string) string { return d.metadata[key] }

// Source returns the source metadata field.
func (d Document) Source() string { return d.metadata[MetaSource] }

// Tenant returns the tenant metadata field.
func (d Document) Tenant() string { return d.metadata[MetaTenant] }

// Fingerprint derives a stable document id used as the deduplication and
// fusion join key: explicit metadata id, else source, else a content hash.
func (d Document) Fingerprint() string {
	if id := d.metadata[MetaID]; id != "" {
		return id
	}
	if src := d.metadata[MetaSource]; src != "" {
		return src
	}
	return ContentHash(d.content)
}

// ContentHash returns the hex sha256 of the given text.
func ContentHash(text string) string {
	h := sha256.Sum256([]byte(text))
	return hex.EncodeToString(h[:])
}

// ScoredDocument pairs a document with a relevance score in [0, 1].
// Scoring stages produce new values, never mutate in place.
type ScoredDocument struct {
	doc   Document
	score float64
}

// NewScoredDocument creates a ScoredDocument.
func NewScoredDocument(doc Document, score float64) ScoredDocument {
	return ScoredDocument{doc: doc, score: score}
}

// Document returns the underlying document.
func (s ScoredDocument) Document() Document { return s.doc }

// Score returns the relevance score.
func (s ScoredDocument) Score() float64 { return s.score }

// WithScore returns a copy carrying the given score.
func (s *ScoredDocument) WithScore(score float64) ScoredDocument {
	return ScoredDocument{doc: s.doc, score: score}
}

func cloneStringMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	c := make(map[string]string, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}

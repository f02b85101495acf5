package chi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/ragdex/internal/domain"
	"github.com/kailas-cloud/ragdex/internal/domain/concept"
	retrievaluc "github.com/kailas-cloud/ragdex/internal/usecase/retrieval"
)

type stubStore struct {
	docs []domain.Document
}

func (s *stubStore) SimilaritySearch(
	_ context.Context, _ string, _ int, _ float64, _ string,
) ([]domain.Document, error) {
	return s.docs, nil
}

func newTestServer(docs []domain.Document) *Server {
	// Single-pass standard path keeps the handler test independent of the
	// iterative engine.
	svc := retrievaluc.New(
		retrievaluc.Config{Enabled: false, StandardTopK: 5, StandardThreshold: 0.7},
		&stubStore{docs: docs}, nil, nil,
		concept.NewExtractor(), zap.NewNop(),
	)
	return NewServer(svc, zap.NewNop())
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(nil)

	req := httptest.NewRequest("GET", "/healthz", http.NoBody)
	rr := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status ok, got %q", body["status"])
	}
}

func TestHandleRetrieve_Success(t *testing.T) {
	srv := newTestServer([]domain.Document{
		domain.NewDocument("first document", map[string]string{domain.MetaSource: "a.md"}),
		domain.NewDocument("second document", map[string]string{domain.MetaSource: "b.md"}),
	})

	req := httptest.NewRequest("POST", "/v1/retrieve",
		strings.NewReader(`{"tenant": "acme", "query": "documents"}`))
	rr := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp struct {
		Results []struct {
			Content  string            `json:"content"`
			Metadata map[string]string `json:"metadata"`
			Score    float64           `json:"score"`
		} `json:"results"`
		Passes int `json:"passes"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(resp.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(resp.Results))
	}
	if resp.Results[0].Content != "first document" {
		t.Errorf("unexpected content %q", resp.Results[0].Content)
	}
	if resp.Results[0].Metadata["source"] != "a.md" {
		t.Errorf("expected source metadata, got %v", resp.Results[0].Metadata)
	}
	if resp.Passes != 1 {
		t.Errorf("expected 1 pass, got %d", resp.Passes)
	}
}

func TestHandleRetrieve_TopKTruncatesResponse(t *testing.T) {
	srv := newTestServer([]domain.Document{
		domain.NewDocument("one", map[string]string{domain.MetaSource: "a"}),
		domain.NewDocument("two", map[string]string{domain.MetaSource: "b"}),
		domain.NewDocument("three", map[string]string{domain.MetaSource: "c"}),
	})

	req := httptest.NewRequest("POST", "/v1/retrieve",
		strings.NewReader(`{"tenant": "acme", "query": "documents", "top_k": 1}`))
	rr := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rr, req)

	var resp struct {
		Results []json.RawMessage `json:"results"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(resp.Results) != 1 {
		t.Errorf("expected 1 result, got %d", len(resp.Results))
	}
}

func TestHandleRetrieve_MissingQuery(t *testing.T) {
	srv := newTestServer(nil)

	req := httptest.NewRequest("POST", "/v1/retrieve",
		strings.NewReader(`{"tenant": "acme"}`))
	rr := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rr.Code)
	}
}

func TestHandleRetrieve_InvalidBody(t *testing.T) {
	srv := newTestServer(nil)

	req := httptest.NewRequest("POST", "/v1/retrieve", strings.NewReader(`{not json`))
	rr := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rr.Code)
	}
}

func TestHandleRetrieve_InvalidTenant(t *testing.T) {
	srv := newTestServer(nil)

	req := httptest.NewRequest("POST", "/v1/retrieve",
		strings.NewReader(`{"tenant": "  ", "query": "documents"}`))
	rr := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Invalid tenant") {
		t.Errorf("expected invalid tenant message, got %s", rr.Body.String())
	}
}

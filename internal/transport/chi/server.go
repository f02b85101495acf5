// Package chi exposes the retrieval engine over a minimal HTTP surface.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/ragdex/internal/domain"
	"github.com/kailas-cloud/ragdex/internal/logger"
	"github.com/kailas-cloud/ragdex/internal/metrics"
	retrievaluc "github.com/kailas-cloud/ragdex/internal/usecase/retrieval"
)

// Server handles the engine's HTTP API.
type Server struct {
	retrieval *retrievaluc.Service
	logger    *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(retrieval *retrievaluc.Service, log *zap.Logger) *Server {
	return &Server{retrieval: retrieval, logger: log}
}

// Routes builds the router with middleware, health, metrics and the
// retrieval endpoint.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.Recoverer)
	r.Use(metrics.Middleware())

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())
	r.Post("/v1/retrieve", s.handleRetrieve)
	return r
}

type retrieveRequest struct {
	Tenant string `json:"tenant"`
	Query  string `json:"query"`
	TopK   int    `json:"top_k,omitempty"`
}

type retrieveResponse struct {
	Results []retrieveResult `json:"results"`
	Passes  int              `json:"passes"`
}

type retrieveResult struct {
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata,omitempty"`
	Score    float64           `json:"score"`
}

func (s *Server) handleRetrieve(w http.ResponseWriter, r *http.Request) {
	var req retrieveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "Query is required")
		return
	}

	ctx := logger.ContextWith(r.Context(), s.logger)
	result, err := s.retrieval.Retrieve(ctx, req.Tenant, req.Query)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidTenant) {
			writeError(w, http.StatusBadRequest, "Invalid tenant")
			return
		}
		s.logger.Error("Retrieval failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Retrieval failed")
		return
	}

	docs := result.Documents
	if req.TopK > 0 && len(docs) > req.TopK {
		docs = docs[:req.TopK]
	}

	resp := retrieveResponse{Results: make([]retrieveResult, len(docs)), Passes: result.Passes}
	for i := range docs {
		doc := docs[i].Document()
		resp.Results[i] = retrieveResult{
			Content:  doc.Content(),
			Metadata: doc.Metadata(),
			Score:    docs[i].Score(),
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// Package redis implements the engine's DocumentStore over Redis 8+
// vector search (FT.SEARCH KNN) via rueidis.
package redis

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/ragdex/internal/domain"
)

// Compile-time check: Store implements domain.DocumentStore.
var _ domain.DocumentStore = (*Store)(nil)

// Config holds connection parameters for the Redis document store.
type Config struct {
	Addrs     []string
	Username  string
	Password  string
	DB        int
	IndexName string
}

// Store retrieves documents by vector similarity. Query embedding happens
// here: the engine core never sees raw vectors.
type Store struct {
	client rueidis.Client
	embed  domain.Embedder
	index  string
}

// NewStore creates a Redis-backed document store.
func NewStore(cfg Config, embed domain.Embedder) (*Store, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("addrs is required")
	}
	if cfg.IndexName == "" {
		return nil, fmt.Errorf("index name is required")
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		SelectDB:     cfg.DB,
		DisableCache: true,
		AlwaysRESP2:  true, // FT.SEARCH result parsing expects RESP2 array format
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return &Store{client: client, embed: embed, index: cfg.IndexName}, nil
}

// NewStoreForTest creates a store over an injected client.
func NewStoreForTest(client rueidis.Client, embed domain.Embedder, index string) *Store {
	return &Store{client: client, embed: embed, index: index}
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	cmd := s.client.B().Ping().Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Close shuts down the client.
func (s *Store) Close() {
	s.client.Close()
}

// WaitForReady polls Ping until the store responds or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for document store: %w", ctx.Err())
		case <-ticker.C:
			if err := s.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}

// SimilaritySearch embeds the query and runs a KNN search restricted to the
// tenant tag. Results below similarityThreshold are dropped.
func (s *Store) SimilaritySearch(
	ctx context.Context, query string, topK int, similarityThreshold float64, tenant string,
) ([]domain.Document, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("topK must be positive")
	}

	vec, err := s.embed.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("vectorize query: %w", err)
	}
	if len(vec) == 0 {
		return nil, domain.ErrEmbeddingUnavailable
	}

	knnPart := fmt.Sprintf("[KNN %d @vector $BLOB]", topK)
	queryStr := fmt.Sprintf("(@tenant:{%s})=>%s", escapeTag(tenant), knnPart)

	cmd := s.client.B().Arbitrary("FT.SEARCH").
		Args(s.index, queryStr,
			"PARAMS", "2", "BLOB", vectorToBytes(vec),
			"DIALECT", "2",
		).Build()

	raw, err := s.client.Do(ctx, cmd).ToArray()
	if err != nil {
		return nil, fmt.Errorf("%w: search knn: %s", domain.ErrStoreUnavailable, err)
	}

	return parseKNNResult(raw, similarityThreshold)
}

// parseKNNResult converts the RESP2 FT.SEARCH reply into documents.
// Reply layout is 2-stride: [total, key1, fields1, key2, fields2, ...].
func parseKNNResult(raw []rueidis.RedisMessage, similarityThreshold float64) ([]domain.Document, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}
	if total == 0 {
		return nil, nil
	}

	docs := make([]domain.Document, 0, total)
	for i := 1; i+1 < len(raw); i += 2 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}

		fieldsArr, err := raw[i+1].ToArray()
		if err != nil {
			continue
		}
		fields := parseFieldPairs(fieldsArr)

		if scoreStr, ok := fields["__vector_score"]; ok {
			if dist, err := strconv.ParseFloat(scoreStr, 64); err == nil {
				// Cosine distance → similarity, clamped to [0,1].
				if max(0, 1.0-dist) < similarityThreshold {
					continue
				}
			}
			delete(fields, "__vector_score")
		}

		content := fields["content"]
		delete(fields, "content")
		delete(fields, "vector")
		if fields[domain.MetaID] == "" {
			fields[domain.MetaID] = key
		}

		docs = append(docs, domain.NewDocument(content, fields))
	}

	return docs, nil
}

func parseFieldPairs(arr []rueidis.RedisMessage) map[string]string {
	fields := make(map[string]string, len(arr)/2)
	for i := 0; i+1 < len(arr); i += 2 {
		k, err1 := arr[i].ToString()
		v, err2 := arr[i+1].ToString()
		if err1 == nil && err2 == nil {
			fields[k] = v
		}
	}
	return fields
}

// vectorToBytes encodes float32s as little-endian bytes for the BLOB param.
func vectorToBytes(vec []float32) string {
	buf := make([]byte, len(vec)*4)
	for i, f := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return rueidis.BinaryString(buf)
}

// escapeTag escapes TAG query syntax characters in a tenant value.
var tagEscaper = strings.NewReplacer(
	"-", "\\-", ".", "\\.", "@", "\\@", ":", "\\:",
	"{", "\\{", "}", "\\}", "|", "\\|", " ", "\\ ",
)

func escapeTag(v string) string {
	return tagEscaper.Replace(v)
}

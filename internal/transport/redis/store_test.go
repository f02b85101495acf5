package redis

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/redis/rueidis"
	"github.com/redis/rueidis/mock"
	"go.uber.org/mock/gomock"

	"github.com/kailas-cloud/ragdex/internal/domain"
)

type stubEmbedder struct {
	vec []float32
	err error
}

func (s *stubEmbedder) Embed(context.Context, string) ([]float32, error) {
	return s.vec, s.err
}

func TestPing_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.Result(mock.RedisString("PONG")))

	s := NewStoreForTest(c, &stubEmbedder{}, "idx")
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPing_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := NewStoreForTest(c, &stubEmbedder{}, "idx")
	if err := s.Ping(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestSimilaritySearch_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.SEARCH" && cmd[1] == "idx" &&
				cmd[2] == "(@tenant:{acme})=>[KNN 5 @vector $BLOB]" &&
				cmd[3] == "PARAMS" && cmd[4] == "2" && cmd[5] == "BLOB" &&
				cmd[7] == "DIALECT" && cmd[8] == "2"
		})).
		Return(mock.Result(mock.RedisArray(
			mock.RedisInt64(2), // total
			mock.RedisString("doc:1"),
			mock.RedisArray(
				mock.RedisString("__vector_score"),
				mock.RedisString("0.1"),
				mock.RedisString("content"),
				mock.RedisString("hello world"),
				mock.RedisString("source"),
				mock.RedisString("docs/a.md"),
			),
			mock.RedisString("doc:2"),
			mock.RedisArray(
				mock.RedisString("__vector_score"),
				mock.RedisString("0.3"),
				mock.RedisString("content"),
				mock.RedisString("second document"),
			),
		)))

	s := NewStoreForTest(c, &stubEmbedder{vec: []float32{0.1, 0.2}}, "idx")
	docs, err := s.SimilaritySearch(context.Background(), "query", 5, 0, "acme")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(docs))
	}
	if docs[0].Content() != "hello world" {
		t.Errorf("expected content 'hello world', got %q", docs[0].Content())
	}
	if docs[0].Source() != "docs/a.md" {
		t.Errorf("expected source 'docs/a.md', got %q", docs[0].Source())
	}
	// Without an explicit id the Redis key becomes the document id.
	if docs[0].Meta(domain.MetaID) != "doc:1" {
		t.Errorf("expected id 'doc:1', got %q", docs[0].Meta(domain.MetaID))
	}
	if _, ok := docs[0].Metadata()["__vector_score"]; ok {
		t.Error("vector score must not leak into metadata")
	}
}

func TestSimilaritySearch_ThresholdFilters(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.SEARCH"
		})).
		Return(mock.Result(mock.RedisArray(
			mock.RedisInt64(2),
			mock.RedisString("doc:near"),
			mock.RedisArray(
				mock.RedisString("__vector_score"),
				mock.RedisString("0.1"), // similarity 0.9
				mock.RedisString("content"),
				mock.RedisString("near"),
			),
			mock.RedisString("doc:far"),
			mock.RedisArray(
				mock.RedisString("__vector_score"),
				mock.RedisString("0.8"), // similarity 0.2
				mock.RedisString("content"),
				mock.RedisString("far"),
			),
		)))

	s := NewStoreForTest(c, &stubEmbedder{vec: []float32{0.1}}, "idx")
	docs, err := s.SimilaritySearch(context.Background(), "query", 5, 0.5, "acme")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(docs) != 1 {
		t.Fatalf("expected 1 document, got %d", len(docs))
	}
	if docs[0].Content() != "near" {
		t.Errorf("expected only the near document, got %q", docs[0].Content())
	}
}

func TestSimilaritySearch_EscapesTenantTag(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.SEARCH" && strings.Contains(cmd[2], `@tenant:{team\-a\.eu}`)
		})).
		Return(mock.Result(mock.RedisArray(mock.RedisInt64(0))))

	s := NewStoreForTest(c, &stubEmbedder{vec: []float32{0.1}}, "idx")
	if _, err := s.SimilaritySearch(context.Background(), "query", 5, 0, "team-a.eu"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSimilaritySearch_Empty(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.SEARCH"
		})).
		Return(mock.Result(mock.RedisArray(mock.RedisInt64(0))))

	s := NewStoreForTest(c, &stubEmbedder{vec: []float32{0.1}}, "idx")
	docs, err := s.SimilaritySearch(context.Background(), "query", 5, 0, "acme")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("expected 0 documents, got %d", len(docs))
	}
}

func TestSimilaritySearch_SearchError(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.SEARCH"
		})).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := NewStoreForTest(c, &stubEmbedder{vec: []float32{0.1}}, "idx")
	_, err := s.SimilaritySearch(context.Background(), "query", 5, 0, "acme")
	if !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Errorf("expected ErrStoreUnavailable, got %v", err)
	}
}

func TestSimilaritySearch_EmbedError(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	s := NewStoreForTest(c, &stubEmbedder{err: errors.New("provider down")}, "idx")
	if _, err := s.SimilaritySearch(context.Background(), "query", 5, 0, "acme"); err == nil {
		t.Fatal("expected error")
	}
}

func TestSimilaritySearch_InvalidTopK(t *testing.T) {
	s := &Store{}

	if _, err := s.SimilaritySearch(context.Background(), "query", 0, 0, "acme"); err == nil {
		t.Error("expected error for non-positive topK")
	}
}

func TestParseKNNResult_SkipsMalformedEntries(t *testing.T) {
	raw := []rueidis.RedisMessage{
		mock.RedisInt64(2),
		mock.RedisString("doc:1"),
		mock.RedisString("not-an-array"), // malformed fields
		mock.RedisString("doc:2"),
		mock.RedisArray(
			mock.RedisString("content"),
			mock.RedisString("ok"),
		),
	}

	docs, err := parseKNNResult(raw, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 1 || docs[0].Content() != "ok" {
		t.Fatalf("expected the well-formed entry only, got %+v", docs)
	}
}

func TestVectorToBytes(t *testing.T) {
	b := vectorToBytes([]float32{1, 2, 3})
	if len(b) != 12 {
		t.Errorf("expected 12 bytes for 3 float32s, got %d", len(b))
	}
}

func TestEscapeTag(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"acme", "acme"},
		{"team-a", `team\-a`},
		{"a.b@c", `a\.b\@c`},
		{"ns:tenant", `ns\:tenant`},
		{"with space", `with\ space`},
	}
	for _, tc := range tests {
		if got := escapeTag(tc.in); got != tc.want {
			t.Errorf("escapeTag(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

package knowledge

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

const maxTopK = 5

// SearchResult is one ranked retrieval hit
type SearchResult struct {
	ChunkID    string                 `json:"chunk_id"`
	DocumentID string                 `json:"document_id"`
	Title      string                 `json:"title"`
	URL        string                 `json:"url,omitempty"`
	Content    string                 `json:"content"`
	Score      float32                `json:"score"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

// Citation is the per-response reference shape embedded into messages
type Citation struct {
	DocID   string `json:"doc_id"`
	Title   string `json:"title"`
	URL     string `json:"url,omitempty"`
	Snippet string `json:"snippet"`
}

// Embedder turns query text into a fixed-dimension vector
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// VectorIndex performs tenant- and ACL-scoped nearest-neighbor search
type VectorIndex interface {
	Search(ctx context.Context, tenantID string, vector []float32, topK int, userGroups []string) ([]SearchResult, error)
}

// Service is the knowledge retriever. Every failure path degrades to an
// empty result list; retrieval never fails a turn.
type Service struct {
	embedder Embedder
	index    VectorIndex
}

// NewService creates a new knowledge retriever
func NewService(embedder Embedder, index VectorIndex) *Service {
	return &Service{embedder: embedder, index: index}
}

// Search embeds queryText and runs a similarity search scoped to the tenant
// and the caller's ACL groups. topK is clamped to a small bound.
func (s *Service) Search(ctx context.Context, tenantID, queryText string, topK int, userGroups []string) []SearchResult {
	if topK <= 0 {
		topK = maxTopK
	}
	if topK > 20 {
		topK = 20
	}

	vector, err := s.embedder.GenerateEmbedding(ctx, queryText)
	if err != nil {
		log.Error().Err(err).Str("tenant_id", tenantID).Msg("Failed to embed query")
		return nil
	}

	results, err := s.index.Search(ctx, tenantID, vector, topK, userGroups)
	if err != nil {
		log.Error().Err(err).Str("tenant_id", tenantID).Msg("Vector search failed")
		return nil
	}
	return results
}

// BuildCitations maps search results to the citation shape attached to
// assistant messages. Snippets are capped at 300 characters.
func BuildCitations(results []SearchResult) []Citation {
	citations := make([]Citation, 0, len(results))
	for _, r := range results {
		snippet := r.Content
		if len(snippet) > 300 {
			snippet = snippet[:300]
		}
		citations = append(citations, Citation{
			DocID:   r.DocumentID,
			Title:   r.Title,
			URL:     r.URL,
			Snippet: snippet,
		})
	}
	return citations
}

// BuildContextBlock renders results as a numbered reference list for the
// system prompt. Returns "" when there are no results so prompt assembly
// can omit the section entirely.
func BuildContextBlock(results []SearchResult) string {
	if len(results) == 0 {
		return ""
	}
	sections := make([]string, 0, len(results))
	for i, r := range results {
		sections = append(sections, fmt.Sprintf("[%d] %s\n%s", i+1, r.Title, r.Content))
	}
	return "Relevant context:\n\n" + strings.Join(sections, "\n\n---\n\n")
}

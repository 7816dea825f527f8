package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"

	"cv-rag/internal/config"
	"cv-rag/internal/models"
)

// Retriever is the primary similarity search.
type Retriever interface {
	Search(ctx context.Context, query string, threshold float64, count int) ([]models.ChunkMatch, error)
}

// ExpandRetriever is the name-based fallback, consulted only when the
// primary search returns nothing.
type ExpandRetriever interface {
	Expand(ctx context.Context, query string, threshold float64, count int) ([]models.ChunkMatch, error)
}

// Generator produces the final answer text. Satisfied by langchaingo's
// llms.Model.
type Generator interface {
	GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error)
}

// RAG answers questions about the resume corpus with cited passages. It
// holds no per-query state; one instance serves all requests.
type RAG struct {
	searcher Retriever
	expander ExpandRetriever
	llm      Generator
	cfg      *config.Config
}

func NewRAG(searcher Retriever, expander ExpandRetriever, llm Generator, cfg *config.Config) *RAG {
	return &RAG{searcher: searcher, expander: expander, llm: llm, cfg: cfg}
}

// ProcessQuery runs retrieval, expansion when retrieval comes back empty,
// and answer generation. An empty result after expansion is a valid
// outcome with a templated answer, not an error.
func (r *RAG) ProcessQuery(ctx context.Context, query string) (*models.QueryResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, models.ErrEmptyQuery
	}
	log.Debug().Str("query", query).Msg("Processing query")

	matches, err := r.searcher.Search(ctx, query, r.cfg.RAG.MatchThreshold, r.cfg.RAG.MatchCount)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		matches, err = r.expander.Expand(ctx, query, r.cfg.RAG.MatchThreshold, r.cfg.RAG.MatchCount)
		if err != nil {
			return nil, err
		}
	}
	if len(matches) == 0 {
		log.Info().Str("query", query).Msg("No relevant chunks found")
		return &models.QueryResult{
			Answer:    models.NoMatchesAnswer,
			Citations: []models.Citation{},
		}, nil
	}

	return r.GenerateAnswer(ctx, query, matches)
}

// GenerateAnswer builds the grounded prompt from the matches, invokes the
// generation model, and packages citations aligned one-to-one with the
// matches in their given order.
func (r *RAG) GenerateAnswer(ctx context.Context, query string, matches []models.ChunkMatch) (*models.QueryResult, error) {
	var contextBlock strings.Builder
	citations := make([]models.Citation, len(matches))
	for i, m := range matches {
		if i > 0 {
			contextBlock.WriteString("\n\n")
		}
		fmt.Fprintf(&contextBlock, "[Source %d: %s - Page %d]\n%s", i+1, m.Filename, m.PageNumber, m.Content)
		citations[i] = models.Citation{
			ID:         fmt.Sprintf("S%d", i+1),
			Filename:   m.Filename,
			PageNumber: m.PageNumber,
			Content:    m.Content,
			Similarity: m.Similarity,
		}
	}

	systemPrompt := fmt.Sprintf(models.AnswerPromptTemplate, contextBlock.String())
	messages := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextContent{Text: systemPrompt}},
		},
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextContent{Text: query}},
		},
	}

	res, err := r.llm.GenerateContent(ctx, messages,
		llms.WithTemperature(r.cfg.InferLLM.Temperature),
		llms.WithMaxTokens(r.cfg.InferLLM.MaxTokens),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrGeneration, err)
	}

	answer := models.NoAnswerFallback
	if len(res.Choices) > 0 && strings.TrimSpace(res.Choices[0].Content) != "" {
		answer = res.Choices[0].Content
	}

	log.Debug().Int("citations", len(citations)).Int("answer_len", len(answer)).Msg("Answer generated")
	return &models.QueryResult{Answer: answer, Citations: citations}, nil
}

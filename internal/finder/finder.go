package finder

import (
	"context"
	"fmt"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"

	"github.com/paperlab/oshiete/internal/models"
)

// Finder indexes the loaded paper's chunks in memory and answers
// find-in-paper queries. The index lives and dies with the paper: Rebuild on
// upload, Drop on replace or discard. Not safe for concurrent use; the
// session's single-flight discipline covers it.
type Finder struct {
	chunker    *Chunker
	maxMatches int

	index  bleve.Index
	chunks map[string]*models.PaperChunk
}

// NewFinder creates a finder with the given chunking parameters.
func NewFinder(chunkSize, chunkOverlap, maxMatches int) *Finder {
	return &Finder{
		chunker:    NewChunker(chunkSize, chunkOverlap),
		maxMatches: maxMatches,
	}
}

// Rebuild replaces the index with one built from text.
func (f *Finder) Rebuild(text string) error {
	f.Drop()

	im := bleve.NewIndexMapping()
	chunkMapping := bleve.NewDocumentMapping()
	contentField := bleve.NewTextFieldMapping()
	// Standard analyzer (lowercase + tokenize, no stemming) so query terms
	// match the paper's exact vocabulary.
	contentField.Analyzer = standard.Name
	chunkMapping.AddFieldMappingsAt("content", contentField)
	im.DefaultMapping = chunkMapping

	index, err := bleve.NewMemOnly(im)
	if err != nil {
		return fmt.Errorf("failed to create paper index: %w", err)
	}

	chunks := f.chunker.Chunk(text)
	byID := make(map[string]*models.PaperChunk, len(chunks))
	batch := index.NewBatch()
	for _, chunk := range chunks {
		byID[chunk.ID] = chunk
		if err := batch.Index(chunk.ID, map[string]interface{}{"content": chunk.Content}); err != nil {
			_ = index.Close()
			return fmt.Errorf("failed to index chunk %d: %w", chunk.ChunkIndex, err)
		}
	}
	if err := index.Batch(batch); err != nil {
		_ = index.Close()
		return fmt.Errorf("failed to build paper index: %w", err)
	}

	f.index = index
	f.chunks = byID
	return nil
}

// Drop discards the current index, if any.
func (f *Finder) Drop() {
	if f.index != nil {
		_ = f.index.Close()
		f.index = nil
	}
	f.chunks = nil
}

// Ready reports whether a paper is currently indexed.
func (f *Finder) Ready() bool { return f.index != nil }

// Find returns the best-matching passages for query. When the exact query
// yields nothing, a fuzzy retry runs automatically and the response is marked
// accordingly.
func (f *Finder) Find(ctx context.Context, query string) (*models.FindResponse, error) {
	if f.index == nil {
		return nil, fmt.Errorf("no paper is indexed")
	}
	if query == "" {
		return nil, fmt.Errorf("query cannot be empty")
	}

	matches, err := f.search(ctx, query, false)
	if err != nil {
		return nil, err
	}
	autoFuzzy := false
	if len(matches) == 0 {
		if matches, err = f.search(ctx, query, true); err != nil {
			return nil, err
		}
		autoFuzzy = len(matches) > 0
	}
	return &models.FindResponse{
		Query:     query,
		Matches:   matches,
		Total:     len(matches),
		AutoFuzzy: autoFuzzy,
	}, nil
}

func (f *Finder) search(ctx context.Context, query string, fuzzy bool) ([]*models.FindMatch, error) {
	mq := bleve.NewMatchQuery(query)
	mq.SetField("content")
	if fuzzy {
		mq.SetFuzziness(2)
	}
	req := bleve.NewSearchRequestOptions(mq, f.maxMatches, 0, false)
	res, err := f.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("paper search failed: %w", err)
	}

	matches := make([]*models.FindMatch, 0, len(res.Hits))
	for _, hit := range res.Hits {
		chunk, ok := f.chunks[hit.ID]
		if !ok {
			continue
		}
		matches = append(matches, &models.FindMatch{
			ChunkIndex: chunk.ChunkIndex,
			Content:    chunk.Content,
			Score:      hit.Score,
		})
	}
	return matches, nil
}

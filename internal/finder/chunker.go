// Package finder provides keyword search over the loaded paper's text.
package finder

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/paperlab/oshiete/internal/models"
)

// Chunker splits text into overlapping word-based windows.
type Chunker struct {
	chunkSize    int
	chunkOverlap int
}

// NewChunker creates a chunker with the given size and overlap (in words).
func NewChunker(chunkSize, chunkOverlap int) *Chunker {
	return &Chunker{chunkSize: chunkSize, chunkOverlap: chunkOverlap}
}

// Chunk splits text into PaperChunks with overlapping windows.
func (c *Chunker) Chunk(text string) []*models.PaperChunk {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	step := c.chunkSize - c.chunkOverlap
	if step <= 0 {
		step = 1
	}
	var chunks []*models.PaperChunk
	chunkIndex := 0
	for i := 0; i < len(words); i += step {
		end := i + c.chunkSize
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, &models.PaperChunk{
			ID:         fmt.Sprintf("chunk_%d_%s", chunkIndex, uuid.New().String()[:8]),
			Content:    strings.Join(words[i:end], " "),
			ChunkIndex: chunkIndex,
		})
		chunkIndex++
		if end >= len(words) {
			break
		}
	}
	return chunks
}

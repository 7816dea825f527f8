package chunker

import (
	"math"
	"regexp"
	"strings"

	"cv-rag/internal/models"
)

var sentenceSplitRe = regexp.MustCompile(`[.!?]+`)

// average word length used to approximate a character overlap in words
const overlapWordDivisor = 6

// Chunk splits raw text into overlapping, size-bounded passages. Sentences
// are accumulated greedily; when the next sentence would push the buffer
// past maxChunkSize the buffer is emitted and the new buffer is seeded with
// the trailing words of the closed chunk. A single sentence longer than
// maxChunkSize is emitted on its own and may exceed the bound.
// Page numbers are not known here; callers assign them with EstimatePage.
func Chunk(text string, maxChunkSize, overlapChars int) []models.ChunkCandidate {
	var chunks []models.ChunkCandidate
	var current string
	chunkIndex := 0

	for _, sentence := range sentenceSplitRe.Split(text, -1) {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}

		potential := sentence
		if current != "" {
			potential = current + ". " + sentence
		}

		if len(potential) > maxChunkSize && len(current) > 0 {
			chunks = append(chunks, models.ChunkCandidate{
				Content:    strings.TrimSpace(current) + ".",
				ChunkIndex: chunkIndex,
			})
			chunkIndex++

			// seed the new buffer with a trailing-word overlap
			words := strings.Fields(current)
			keep := overlapChars / overlapWordDivisor
			if keep > len(words) {
				keep = len(words)
			}
			overlap := words[len(words)-keep:]
			if len(overlap) > 0 {
				current = strings.Join(overlap, " ") + ". " + sentence
			} else {
				current = sentence
			}
		} else {
			current = potential
		}
	}

	if strings.TrimSpace(current) != "" {
		chunks = append(chunks, models.ChunkCandidate{
			Content:    strings.TrimSpace(current) + ".",
			ChunkIndex: chunkIndex,
		})
	}

	return chunks
}

// EstimatePage estimates the 1-based page of a chunk from its proportional
// position: ceil((chunkPos+1) / (totalChunks/totalPages)). This is a
// best-effort heuristic, not a true page boundary.
func EstimatePage(chunkPos, totalChunks, totalPages int) int {
	if totalChunks <= 0 {
		return 1
	}
	if totalPages <= 0 {
		totalPages = 1
	}
	perPage := float64(totalChunks) / float64(totalPages)
	page := int(math.Ceil(float64(chunkPos+1) / perPage))
	if page < 1 {
		page = 1
	}
	return page
}

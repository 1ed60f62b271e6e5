package internal

import (
	"fmt"
	"strings"
	"unicode"

	"rag/types"
)

// SplitDocuments splits each document's text into chunks of at most size
// characters, with overlap characters shared between neighbouring chunks of
// the same page. The split is deterministic and order preserving; chunks
// carry no ID yet.
func SplitDocuments(docs []types.Document, size, overlap int) []types.Chunk {
	if size <= 0 {
		size = 800
	}
	if overlap < 0 || overlap >= size/2 {
		overlap = 0
	}

	var chunks []types.Chunk
	for _, doc := range docs {
		for _, part := range splitText(doc.Text, size, overlap) {
			chunks = append(chunks, types.Chunk{
				Text:   part,
				Source: doc.Source,
				Page:   doc.Page,
			})
		}
	}
	return chunks
}

// splitText slides a window of size runes over the text, breaking at the
// last whitespace inside the window so words stay intact. The next window
// starts overlap runes before the previous break.
func splitText(text string, size, overlap int) []string {
	runes := []rune(strings.TrimSpace(text))
	if len(runes) == 0 {
		return nil
	}

	var parts []string
	start := 0
	for start < len(runes) {
		end := start + size
		if end >= len(runes) {
			if part := strings.TrimSpace(string(runes[start:])); part != "" {
				parts = append(parts, part)
			}
			break
		}

		cut := end
		for i := end; i > start+size/2; i-- {
			if unicode.IsSpace(runes[i-1]) {
				cut = i
				break
			}
		}

		if part := strings.TrimSpace(string(runes[start:cut])); part != "" {
			parts = append(parts, part)
		}

		next := cut - overlap
		// advance to the next word boundary so overlapping chunks do not
		// start mid-word
		for next < cut && next > 0 && !unicode.IsSpace(runes[next-1]) {
			next++
		}
		if next <= start {
			next = cut
		}
		start = next
	}
	return parts
}

// AssignChunkIDs derives stable IDs in a single left-to-right pass over the
// chunk sequence, carrying (lastPageID, index) as explicit accumulator
// state. The index resets to 0 whenever the (source, page) pair changes and
// increments otherwise, so re-splitting an unchanged corpus reproduces the
// same IDs. Chunks must be in the exact order produced by SplitDocuments.
func AssignChunkIDs(chunks []types.Chunk) []types.Chunk {
	lastPageID := ""
	index := 0

	for i := range chunks {
		pageID := chunks[i].PageID()
		if pageID != lastPageID {
			index = 0
		} else {
			index++
		}
		chunks[i].ID = fmt.Sprintf("%s:%d", pageID, index)
		lastPageID = pageID
	}
	return chunks
}

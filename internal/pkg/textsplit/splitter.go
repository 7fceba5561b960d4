// Package textsplit splits long text into overlapping chunks for embedding.
package textsplit

import (
	"strings"
	"unicode/utf8"
)

const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
)

// defaultSeparators are tried from coarsest to finest: paragraphs, lines,
// words, then single characters.
var defaultSeparators = []string{"\n\n", "\n", " ", ""}

// RecursiveCharacterSplitter splits text on a hierarchy of separators,
// preferring natural boundaries and falling back to finer ones only when a
// piece still exceeds the chunk size. Lengths are counted in runes.
type RecursiveCharacterSplitter struct {
	chunkSize    int
	chunkOverlap int
	separators   []string
}

type Config struct {
	ChunkSize    int
	ChunkOverlap int
	Separators   []string
}

func NewRecursiveCharacterSplitter(cfg Config) *RecursiveCharacterSplitter {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = DefaultChunkSize
	}
	if cfg.ChunkOverlap < 0 {
		cfg.ChunkOverlap = DefaultChunkOverlap
	}
	if cfg.ChunkOverlap >= cfg.ChunkSize {
		cfg.ChunkOverlap = cfg.ChunkSize / 2
	}
	if len(cfg.Separators) == 0 {
		cfg.Separators = defaultSeparators
	}
	return &RecursiveCharacterSplitter{
		chunkSize:    cfg.ChunkSize,
		chunkOverlap: cfg.ChunkOverlap,
		separators:   cfg.Separators,
	}
}

func (s *RecursiveCharacterSplitter) ChunkSize() int    { return s.chunkSize }
func (s *RecursiveCharacterSplitter) ChunkOverlap() int { return s.chunkOverlap }

// SplitText returns the chunks of text, each at most ChunkSize runes except
// when a single unbreakable piece exceeds it. Empty chunks are dropped.
func (s *RecursiveCharacterSplitter) SplitText(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return s.splitRecursive(text, s.separators)
}

func (s *RecursiveCharacterSplitter) splitRecursive(text string, separators []string) []string {
	separator := separators[len(separators)-1]
	var next []string
	for i, sep := range separators {
		if sep == "" || strings.Contains(text, sep) {
			separator = sep
			next = separators[i+1:]
			break
		}
	}

	splits := splitOn(text, separator)

	var final []string
	var good []string
	for _, piece := range splits {
		if utf8.RuneCountInString(piece) < s.chunkSize {
			good = append(good, piece)
			continue
		}
		// Flush what fits, then break the oversized piece with finer separators.
		if len(good) > 0 {
			final = append(final, s.mergeSplits(good, separator)...)
			good = nil
		}
		if len(next) == 0 {
			final = append(final, piece)
		} else {
			final = append(final, s.splitRecursive(piece, next)...)
		}
	}
	if len(good) > 0 {
		final = append(final, s.mergeSplits(good, separator)...)
	}
	return final
}

func splitOn(text, separator string) []string {
	if separator == "" {
		return strings.Split(text, "")
	}
	parts := strings.Split(text, separator)
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// mergeSplits joins small pieces back together up to the chunk size, carrying
// the configured overlap between consecutive chunks.
func (s *RecursiveCharacterSplitter) mergeSplits(splits []string, separator string) []string {
	sepLen := utf8.RuneCountInString(separator)

	var chunks []string
	var current []string
	total := 0

	for _, piece := range splits {
		pieceLen := utf8.RuneCountInString(piece)
		if total+pieceLen+sepLen*len(current) > s.chunkSize && len(current) > 0 {
			if chunk := s.joinPieces(current, separator); chunk != "" {
				chunks = append(chunks, chunk)
			}
			// Drop pieces from the front until we are back within the overlap.
			for total > s.chunkOverlap || (total+pieceLen+sepLen*len(current) > s.chunkSize && total > 0) {
				total -= utf8.RuneCountInString(current[0])
				current = current[1:]
			}
		}
		current = append(current, piece)
		total += pieceLen
	}

	if chunk := s.joinPieces(current, separator); chunk != "" {
		chunks = append(chunks, chunk)
	}
	return chunks
}

func (s *RecursiveCharacterSplitter) joinPieces(pieces []string, separator string) string {
	return strings.TrimSpace(strings.Join(pieces, separator))
}

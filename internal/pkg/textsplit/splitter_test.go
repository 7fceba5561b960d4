package textsplit

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitTextEmpty(t *testing.T) {
	s := NewRecursiveCharacterSplitter(Config{})
	assert.Nil(t, s.SplitText(""))
	assert.Nil(t, s.SplitText("   \n\t  "))
}

func TestSplitTextShortInputSingleChunk(t *testing.T) {
	s := NewRecursiveCharacterSplitter(Config{ChunkSize: 100, ChunkOverlap: 20})
	chunks := s.SplitText("a short paragraph that fits in one chunk")
	require.Len(t, chunks, 1)
	assert.Equal(t, "a short paragraph that fits in one chunk", chunks[0])
}

func TestSplitTextRespectsChunkSize(t *testing.T) {
	s := NewRecursiveCharacterSplitter(Config{ChunkSize: 50, ChunkOverlap: 10})

	var sb strings.Builder
	for i := 0; i < 100; i++ {
		sb.WriteString("word ")
	}
	chunks := s.SplitText(sb.String())

	require.NotEmpty(t, chunks)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len([]rune(chunk)), 50, "chunk %q exceeds the configured size", chunk)
	}
}

func TestSplitTextPrefersParagraphBoundaries(t *testing.T) {
	s := NewRecursiveCharacterSplitter(Config{ChunkSize: 40, ChunkOverlap: 0})

	text := "first paragraph here\n\nsecond paragraph here\n\nthird paragraph here"
	chunks := s.SplitText(text)

	require.NotEmpty(t, chunks)
	for _, chunk := range chunks {
		assert.NotContains(t, chunk, "\n\n")
	}
}

func TestSplitTextCoversAllContent(t *testing.T) {
	s := NewRecursiveCharacterSplitter(Config{ChunkSize: 30, ChunkOverlap: 5})

	text := "alpha bravo charlie delta echo foxtrot golf hotel india juliet kilo lima"
	chunks := s.SplitText(text)

	joined := strings.Join(chunks, " ")
	for _, word := range strings.Fields(text) {
		assert.Contains(t, joined, word)
	}
}

func TestSplitTextOverlapCarriesContext(t *testing.T) {
	s := NewRecursiveCharacterSplitter(Config{ChunkSize: 30, ChunkOverlap: 15})

	text := strings.Repeat("one two three four five six ", 10)
	chunks := s.SplitText(text)
	require.Greater(t, len(chunks), 1)

	// With overlap, consecutive chunks share at least one word.
	for i := 1; i < len(chunks); i++ {
		prevWords := strings.Fields(chunks[i-1])
		require.NotEmpty(t, prevWords)
		last := prevWords[len(prevWords)-1]
		assert.Contains(t, chunks[i], last)
	}
}

func TestSplitTextChunkCountApproximation(t *testing.T) {
	// With size 1000 and overlap 200 each chunk advances roughly 800 runes,
	// so a long text yields about len/800 chunks.
	s := NewRecursiveCharacterSplitter(Config{ChunkSize: 1000, ChunkOverlap: 200})

	var sb strings.Builder
	for sb.Len() < 8000 {
		sb.WriteString("the quick brown fox jumps over the lazy dog ")
	}
	text := sb.String()
	chunks := s.SplitText(text)

	expected := (len([]rune(text)) + 799) / 800
	assert.InDelta(t, expected, len(chunks), 3)
}

func TestSplitTextUnbreakableRunKeptWhole(t *testing.T) {
	s := NewRecursiveCharacterSplitter(Config{ChunkSize: 10, ChunkOverlap: 0, Separators: []string{" "}})

	chunks := s.SplitText("tiny reallyreallylongunbreakabletoken tiny")
	require.NotEmpty(t, chunks)
	assert.Contains(t, strings.Join(chunks, " "), "reallyreallylongunbreakabletoken")
}

func TestConfigDefaults(t *testing.T) {
	s := NewRecursiveCharacterSplitter(Config{})
	assert.Equal(t, DefaultChunkSize, s.ChunkSize())
	assert.Equal(t, DefaultChunkOverlap, s.ChunkOverlap())

	// Overlap >= size is clamped.
	s = NewRecursiveCharacterSplitter(Config{ChunkSize: 100, ChunkOverlap: 100})
	assert.Equal(t, 50, s.ChunkOverlap())
}

package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"classcare-chatbot/internal/ai"
	"classcare-chatbot/internal/pkg/extract"
	"classcare-chatbot/internal/pkg/textsplit"
	"classcare-chatbot/internal/platform/milvus"
)

// Embedder produces fixed-size vectors for text. Ingestion and querying must
// share one Embedder so both sides live in the same vector space.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// VectorStore is the chunk index. Implemented by platform/milvus.Store.
type VectorStore interface {
	InsertChunks(ctx context.Context, chunks []milvus.Chunk) error
	Search(ctx context.Context, vector []float32, topK int, filter string) ([]milvus.Hit, error)
	DeleteByDocumentID(ctx context.Context, documentID string) (int64, error)
}

// ChatCompleter is a single-shot LLM call. Implemented by ai.ChatClient.
type ChatCompleter interface {
	Complete(ctx context.Context, messages []ai.ChatMessage) (string, error)
}

const ragPromptTemplate = `You are a helpful AI assistant for ClassCare software.
Use the following pieces of context to answer the question at the end.
If you don't know the answer based on the context, just say that you don't know, don't try to make up an answer.
Always be friendly, professional, and helpful.

%sContext: %s

Question: %s

Helpful Answer:`

const studentCreationSystemPrompt = `You are a helpful AI assistant for ClassCare school management system.

You help users create students by collecting information conversationally.

Required student information:
- Student Name (minimum 2 characters, letters only)
- Student ID (exactly 5 digits)
- Grade/Class (one of: KG, Grade 1-12)
- Email (valid email format)

Process:
1. If user wants to create a student, explain what you need
2. Ask for information one field at a time
3. Validate each input before proceeding
4. When all data is collected, confirm and create the student
5. Be friendly and conversational

Remember previous conversation context.`

// agentHistoryPairs bounds the trailing turns handed to the student-creation
// flow, which needs less context than retrieval answering.
const agentHistoryPairs = 3

// sourcePreviewRunes caps source chunk previews returned to clients.
const sourcePreviewRunes = 200

type RAGService struct {
	embedder Embedder
	store    VectorStore
	llm      ChatCompleter
	splitter *textsplit.RecursiveCharacterSplitter
	caps     Capabilities

	topK       int
	maxHistory int
}

type RAGServiceConfig struct {
	ChunkSize    int
	ChunkOverlap int
	TopK         int
	MaxHistory   int
}

func NewRAGService(
	embedder Embedder,
	store VectorStore,
	llm ChatCompleter,
	caps Capabilities,
	cfg RAGServiceConfig,
) *RAGService {
	if cfg.TopK <= 0 {
		cfg.TopK = 4
	}
	if cfg.MaxHistory <= 0 {
		cfg.MaxHistory = 10
	}
	return &RAGService{
		embedder: embedder,
		store:    store,
		llm:      llm,
		splitter: textsplit.NewRecursiveCharacterSplitter(textsplit.Config{
			ChunkSize:    cfg.ChunkSize,
			ChunkOverlap: cfg.ChunkOverlap,
		}),
		caps:       caps,
		topK:       cfg.TopK,
		maxHistory: cfg.MaxHistory,
	}
}

func (s *RAGService) Capabilities() Capabilities { return s.caps }

type IngestInput struct {
	FilePath   string
	FileType   string
	DocumentID string
}

// IngestResult is a structured outcome: ingestion never returns a Go error
// to the caller, every failure is folded into Success=false plus a message.
type IngestResult struct {
	Success         bool   `json:"success"`
	NumChunks       int    `json:"num_chunks"`
	TotalCharacters int    `json:"total_characters"`
	Error           string `json:"error,omitempty"`
}

func ingestFailure(format string, args ...any) IngestResult {
	return IngestResult{Success: false, Error: fmt.Sprintf(format, args...)}
}

// Ingest extracts, chunks, embeds, and upserts one document. Every chunk is
// stamped with the document identifier so deletion can target it later.
func (s *RAGService) Ingest(ctx context.Context, in IngestInput) IngestResult {
	if !s.caps.Embeddings {
		return ingestFailure("embedding backend is not available; enable embeddings and restart the server")
	}
	if _, err := os.Stat(in.FilePath); err != nil {
		return ingestFailure("file not found: %s", in.FilePath)
	}

	text, err := extract.Text(in.FilePath, in.FileType)
	if err != nil {
		if errors.Is(err, extract.ErrUnsupportedType) {
			return ingestFailure("unsupported file type: %s", in.FileType)
		}
		return ingestFailure("failed to load document: %v", err)
	}
	if strings.TrimSpace(text) == "" {
		return ingestFailure("document contains no extractable text")
	}

	pieces := s.splitter.SplitText(text)
	if len(pieces) == 0 {
		return ingestFailure("document produced no chunks")
	}

	vectors, err := s.embedder.EmbedBatch(ctx, pieces)
	if err != nil {
		return ingestFailure("embedding backend is not available: %v", err)
	}

	chunks := make([]milvus.Chunk, len(pieces))
	totalChars := 0
	for i, piece := range pieces {
		chunks[i] = milvus.Chunk{
			DocumentID: in.DocumentID,
			Source:     in.FilePath,
			Content:    piece,
			ChunkIndex: int64(i),
			Embedding:  vectors[i],
		}
		totalChars += len([]rune(piece))
	}

	if err := s.store.InsertChunks(ctx, chunks); err != nil {
		return ingestFailure("vector store is not available: %v", err)
	}

	return IngestResult{
		Success:         true,
		NumChunks:       len(chunks),
		TotalCharacters: totalChars,
	}
}

// HistoryPair is one prior (question, answer) exchange.
type HistoryPair struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type SourceDocument struct {
	Content    string `json:"content"`
	DocumentID string `json:"document_id"`
	Source     string `json:"source"`
}

// AnswerResult mirrors IngestResult: no error propagation, structured
// success or failure only.
type AnswerResult struct {
	Success   bool             `json:"success"`
	Answer    string           `json:"answer,omitempty"`
	Sources   []SourceDocument `json:"source_documents"`
	UsedAgent bool             `json:"used_agent"`
	Error     string           `json:"error,omitempty"`
}

func answerFailure(format string, args ...any) AnswerResult {
	return AnswerResult{Success: false, Error: fmt.Sprintf(format, args...)}
}

// Answer runs the retrieval path: embed the question, search top-k chunks,
// build one prompt from persona + trimmed history + context + question, and
// call the LLM once. No streaming, no retries.
func (s *RAGService) Answer(ctx context.Context, question string, history []HistoryPair) AnswerResult {
	if !s.caps.VectorStore {
		return answerFailure("No documents have been uploaded yet. Please upload documents first.")
	}
	if !s.caps.LLM {
		return answerFailure("LLM is not available. Please set OPENAI_API_KEY and restart the server.")
	}

	vector, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return answerFailure("Error embedding question: %v", err)
	}

	hits, err := s.store.Search(ctx, vector, s.topK, "")
	if err != nil {
		return answerFailure("Error searching vector store: %v. Make sure Milvus is running and the collection exists.", err)
	}

	contextParts := make([]string, len(hits))
	for i, h := range hits {
		contextParts[i] = h.Content
	}
	prompt := buildRAGPrompt(strings.Join(contextParts, "\n\n"), question, trimHistory(history, s.maxHistory))

	answer, err := s.llm.Complete(ctx, []ai.ChatMessage{{Role: "user", Content: prompt}})
	if err != nil {
		return mapLLMError(err)
	}

	sources := make([]SourceDocument, len(hits))
	for i, h := range hits {
		sources[i] = SourceDocument{
			Content:    previewContent(h.Content),
			DocumentID: h.DocumentID,
			Source:     h.Source,
		}
	}
	return AnswerResult{
		Success: true,
		Answer:  strings.TrimSpace(answer),
		Sources: sources,
	}
}

// AnswerWithTools first checks whether the question asks for an action. If
// so it runs the scripted student-creation flow: one LLM call carrying the
// collection script and the trailing turns. Tools are described to the
// model, not executed. Any LLM failure falls through to plain retrieval.
func (s *RAGService) AnswerWithTools(ctx context.Context, question string, history []HistoryPair) AnswerResult {
	if s.caps.Tools && s.caps.LLM && IsActionRequest(question) {
		messages := []ai.ChatMessage{{Role: "system", Content: studentCreationSystemPrompt}}
		for _, pair := range trimHistory(history, agentHistoryPairs) {
			messages = append(messages,
				ai.ChatMessage{Role: "user", Content: pair.Question},
				ai.ChatMessage{Role: "assistant", Content: pair.Answer},
			)
		}
		messages = append(messages, ai.ChatMessage{Role: "user", Content: question})

		answer, err := s.llm.Complete(ctx, messages)
		if err == nil {
			return AnswerResult{
				Success:   true,
				Answer:    strings.TrimSpace(answer),
				Sources:   []SourceDocument{},
				UsedAgent: true,
			}
		}
		log.Printf("student creation flow llm call failed, falling back to retrieval: %v", err)
	}
	return s.Answer(ctx, question, history)
}

type DeleteResult struct {
	Success      bool   `json:"success"`
	DeletedCount int64  `json:"deleted_count"`
	Error        string `json:"error,omitempty"`
}

// DeleteDocument removes every chunk stamped with the document identifier.
// One filter delete with one failure mode; a failure here never blocks the
// caller from removing the relational record and stored file.
func (s *RAGService) DeleteDocument(ctx context.Context, documentID string) DeleteResult {
	if !s.caps.VectorStore {
		return DeleteResult{Success: false, Error: "vector store is not available"}
	}
	count, err := s.store.DeleteByDocumentID(ctx, documentID)
	if err != nil {
		return DeleteResult{Success: false, Error: fmt.Sprintf("delete from vector store failed: %v", err)}
	}
	return DeleteResult{Success: true, DeletedCount: count}
}

// SearchChunks runs a raw similarity search, optionally restricted to one
// document's chunks.
func (s *RAGService) SearchChunks(ctx context.Context, query string, topK int, documentID string) ([]milvus.Hit, error) {
	if !s.caps.VectorStore {
		return nil, fmt.Errorf("vector store is not available")
	}
	if topK <= 0 {
		topK = s.topK
	}
	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}
	filter := ""
	if documentID != "" {
		filter = fmt.Sprintf("document_id == %q", documentID)
	}
	return s.store.Search(ctx, vector, topK, filter)
}

func buildRAGPrompt(contextText, question string, history []HistoryPair) string {
	historySection := ""
	if len(history) > 0 {
		parts := make([]string, len(history))
		for i, pair := range history {
			parts[i] = fmt.Sprintf("Human: %s\nAI: %s", pair.Question, pair.Answer)
		}
		historySection = "Previous conversation:\n" + strings.Join(parts, "\n\n") + "\n\n"
	}
	return fmt.Sprintf(ragPromptTemplate, historySection, contextText, question)
}

func trimHistory(history []HistoryPair, max int) []HistoryPair {
	if max <= 0 || len(history) <= max {
		return history
	}
	return history[len(history)-max:]
}

func previewContent(content string) string {
	runes := []rune(content)
	if len(runes) <= sourcePreviewRunes {
		return content
	}
	return string(runes[:sourcePreviewRunes]) + "..."
}

// mapLLMError translates known provider failure substrings into actionable
// user-facing messages.
func mapLLMError(err error) AnswerResult {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "api key") || strings.Contains(msg, "authentication"):
		return answerFailure("LLM API key error: %v. Check that OPENAI_API_KEY is set correctly and the key is valid.", err)
	case strings.Contains(msg, "rate limit"):
		return answerFailure("LLM rate limit exceeded: %v. Please wait a moment and try again.", err)
	default:
		return answerFailure("LLM error: %v", err)
	}
}

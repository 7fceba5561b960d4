package app

import (
	"context"
	"strings"
	"time"

	"classcare-chatbot/internal/model"
	"classcare-chatbot/internal/repository"
)

const defaultSessionTitle = "New Chat"

// sessionTitleRunes caps titles derived from a session's first question.
const sessionTitleRunes = 50

// lastMessagePreviewRunes caps the per-session preview in session listings.
const lastMessagePreviewRunes = 60

type AsyncMessagePublisher interface {
	Publish(ctx context.Context, msg model.ChatMessage) error
}

type HistoryCache interface {
	GetHistory(ctx context.Context, sessionID string) ([]model.ChatMessage, bool, error)
	SetHistory(ctx context.Context, sessionID string, messages []model.ChatMessage) error
	DeleteHistory(ctx context.Context, sessionID string) error
	MarkDirty(ctx context.Context, sessionID string) error
	IsDirty(ctx context.Context, sessionID string) (bool, error)
}

type ChatService struct {
	sessionRepo  *repository.SessionRepository
	messageRepo  *repository.MessageRepository
	memoryRepo   *repository.MemoryRepository
	rag          *RAGService
	publisher    AsyncMessagePublisher
	historyCache HistoryCache
	maxHistory   int
}

func NewChatService(
	sessionRepo *repository.SessionRepository,
	messageRepo *repository.MessageRepository,
	memoryRepo *repository.MemoryRepository,
	rag *RAGService,
	publisher AsyncMessagePublisher,
	historyCache HistoryCache,
	maxHistory int,
) *ChatService {
	if maxHistory <= 0 {
		maxHistory = 10
	}
	return &ChatService{
		sessionRepo:  sessionRepo,
		messageRepo:  messageRepo,
		memoryRepo:   memoryRepo,
		rag:          rag,
		publisher:    publisher,
		historyCache: historyCache,
		maxHistory:   maxHistory,
	}
}

type CreateSessionInput struct {
	UserID uint
	Title  string
}

func (s *ChatService) CreateSession(input CreateSessionInput) (*model.ChatSession, error) {
	if input.UserID == 0 {
		return nil, ErrInvalidInput
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		title = defaultSessionTitle
	}

	session := &model.ChatSession{
		UserID: input.UserID,
		Title:  title,
	}
	if err := s.sessionRepo.Create(session); err != nil {
		return nil, err
	}
	return session, nil
}

// SessionSummary is one row of the session list: the session plus a preview
// of its most recent message.
type SessionSummary struct {
	model.ChatSession
	LastMessage   string     `json:"last_message"`
	LastMessageAt *time.Time `json:"last_message_at,omitempty"`
}

func (s *ChatService) ListSessions(userID uint) ([]SessionSummary, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}

	sessions, err := s.sessionRepo.ListByUserID(userID)
	if err != nil {
		return nil, err
	}

	summaries := make([]SessionSummary, len(sessions))
	for i, session := range sessions {
		summaries[i] = SessionSummary{ChatSession: session, LastMessage: "No messages yet"}
		last, err := s.messageRepo.GetLastBySessionID(session.ID)
		if err != nil {
			return nil, err
		}
		if last != nil {
			summaries[i].LastMessage = messagePreview(last.Content)
			at := last.CreatedAt
			summaries[i].LastMessageAt = &at
		}
	}
	return summaries, nil
}

// DeleteSession removes the session, its messages, its persisted memory
// snapshot, and the cached history.
func (s *ChatService) DeleteSession(userID uint, sessionID string) error {
	if userID == 0 || sessionID == "" {
		return ErrInvalidInput
	}
	session, err := s.sessionRepo.GetByIDAndUserID(sessionID, userID)
	if err != nil {
		return err
	}
	if session == nil {
		return ErrSessionNotFound
	}
	if err := s.messageRepo.DeleteBySessionID(sessionID); err != nil {
		return err
	}
	if s.memoryRepo != nil {
		if err := s.memoryRepo.DeleteBySessionID(sessionID); err != nil {
			return err
		}
	}
	if err := s.sessionRepo.DeleteByIDAndUserID(sessionID, userID); err != nil {
		return err
	}
	if s.historyCache != nil {
		_ = s.historyCache.DeleteHistory(context.Background(), sessionID)
	}
	return nil
}

type SendMessageInput struct {
	UserID    uint
	SessionID string
	Content   string
}

type SendMessageResult struct {
	Success   bool              `json:"success"`
	SessionID string            `json:"session_id"`
	UserMsg   model.ChatMessage `json:"user_message"`
	AIMsg     model.ChatMessage `json:"ai_message"`
	Sources   []SourceDocument  `json:"source_documents"`
	UsedAgent bool              `json:"used_agent"`
	Error     string            `json:"error,omitempty"`
}

// SendMessage answers one user message: route through the intent check,
// retrieve and call the LLM, then enqueue both turns for persistence. An
// empty session ID creates a session on the fly, titled from the question.
// A failed answer still produces an AI turn carrying the failure message,
// but an empty input produces no messages at all.
func (s *ChatService) SendMessage(ctx context.Context, input SendMessageInput) (*SendMessageResult, error) {
	if input.UserID == 0 {
		return nil, ErrInvalidInput
	}

	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, ErrMessageEmpty
	}

	var session *model.ChatSession
	if input.SessionID == "" {
		session = &model.ChatSession{
			UserID: input.UserID,
			Title:  sessionTitle(content),
		}
		if err := s.sessionRepo.Create(session); err != nil {
			return nil, err
		}
	} else {
		found, err := s.sessionRepo.GetByIDAndUserID(input.SessionID, input.UserID)
		if err != nil {
			return nil, err
		}
		if found == nil {
			return nil, ErrSessionNotFound
		}
		session = found
	}
	sessionID := session.ID

	history, err := s.historyPairs(sessionID)
	if err != nil {
		return nil, err
	}

	// A default-titled session gets its title from its first question.
	if len(history) == 0 && session.Title == defaultSessionTitle {
		if err := s.sessionRepo.UpdateTitle(sessionID, sessionTitle(content)); err == nil {
			session.Title = sessionTitle(content)
		}
	}

	askedAt := time.Now()
	result := s.rag.AnswerWithTools(ctx, content, history)

	userMsg := model.ChatMessage{
		SessionID: sessionID,
		Role:      model.RoleHuman,
		Content:   content,
		CreatedAt: askedAt,
	}
	userMsg.SetMetadata(nil)

	// The AI turn must sort strictly after the human turn even when the
	// answer came back within the clock resolution.
	answeredAt := time.Now()
	if !answeredAt.After(askedAt) {
		answeredAt = askedAt.Add(time.Microsecond)
	}

	aiMsg := model.ChatMessage{
		SessionID: sessionID,
		Role:      model.RoleAI,
		CreatedAt: answeredAt,
	}
	if result.Success {
		aiMsg.Content = result.Answer
		aiMsg.SetMetadata(map[string]any{
			"source_documents": result.Sources,
			"used_agent":       result.UsedAgent,
		})
	} else {
		aiMsg.Content = result.Error
		aiMsg.SetMetadata(map[string]any{"error": true})
	}

	if s.publisher == nil {
		return nil, ErrMessageEnqueue
	}
	if s.historyCache != nil {
		_ = s.historyCache.MarkDirty(ctx, sessionID)
		_ = s.historyCache.DeleteHistory(ctx, sessionID)
	}
	if err := s.publisher.Publish(ctx, userMsg); err != nil {
		return nil, ErrMessageEnqueue
	}
	if err := s.publisher.Publish(ctx, aiMsg); err != nil {
		return nil, ErrMessageEnqueue
	}
	_ = s.sessionRepo.Touch(sessionID)

	return &SendMessageResult{
		Success:   result.Success,
		SessionID: sessionID,
		UserMsg:   userMsg,
		AIMsg:     aiMsg,
		Sources:   result.Sources,
		UsedAgent: result.UsedAgent,
		Error:     result.Error,
	}, nil
}

func (s *ChatService) GetHistory(userID uint, sessionID string, limit int) ([]model.ChatMessage, error) {
	if userID == 0 || sessionID == "" {
		return nil, ErrInvalidInput
	}

	session, err := s.sessionRepo.GetByIDAndUserID(sessionID, userID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	ctx := context.Background()
	if s.historyCache != nil {
		dirty, err := s.historyCache.IsDirty(ctx, sessionID)
		if err == nil && !dirty {
			if cached, hit, cacheErr := s.historyCache.GetHistory(ctx, sessionID); cacheErr == nil && hit {
				return trimMessages(cached, limit), nil
			}
		}
	}

	messages, err := s.messageRepo.ListBySessionID(sessionID, limit)
	if err != nil {
		return nil, err
	}
	if s.historyCache != nil {
		if dirty, dirtyErr := s.historyCache.IsDirty(ctx, sessionID); dirtyErr == nil && !dirty {
			_ = s.historyCache.SetHistory(ctx, sessionID, messages)
		}
	}
	return messages, nil
}

// historyPairs converts stored messages into bounded (question, answer)
// pairs. A pair is a human turn followed by an ai turn; the bound is the
// configured window, never exceeded regardless of stored history length.
func (s *ChatService) historyPairs(sessionID string) ([]HistoryPair, error) {
	recent, err := s.messageRepo.ListRecentBySessionID(sessionID, s.maxHistory*2)
	if err != nil {
		return nil, err
	}

	var pairs []HistoryPair
	for i := 0; i < len(recent)-1; i++ {
		if recent[i].Role == model.RoleHuman && recent[i+1].Role == model.RoleAI {
			pairs = append(pairs, HistoryPair{
				Question: recent[i].Content,
				Answer:   recent[i+1].Content,
			})
			i++
		}
	}
	if len(pairs) > s.maxHistory {
		pairs = pairs[len(pairs)-s.maxHistory:]
	}
	return pairs, nil
}

// sessionTitle derives a session title from its first question.
func sessionTitle(question string) string {
	runes := []rune(question)
	if len(runes) <= sessionTitleRunes {
		return question
	}
	return string(runes[:sessionTitleRunes]) + "..."
}

// messagePreview truncates message content for session listings.
func messagePreview(content string) string {
	runes := []rune(content)
	if len(runes) <= lastMessagePreviewRunes {
		return content
	}
	return string(runes[:lastMessagePreviewRunes]) + "..."
}

func trimMessages(messages []model.ChatMessage, limit int) []model.ChatMessage {
	if limit <= 0 || limit >= len(messages) {
		return messages
	}
	return messages[len(messages)-limit:]
}

package app

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"classcare-chatbot/internal/model"
)

func TestSendMessageRejectsEmptyContent(t *testing.T) {
	svc := NewChatService(nil, nil, nil, nil, nil, nil, 10)

	// Whitespace-only input is rejected before any session or message is
	// created, including the implicit-session path (empty session id).
	for _, sessionID := range []string{"abc", ""} {
		for _, content := range []string{"", "   ", "\n\t "} {
			result, err := svc.SendMessage(context.Background(), SendMessageInput{
				UserID:    1,
				SessionID: sessionID,
				Content:   content,
			})
			assert.Nil(t, result)
			assert.ErrorIs(t, err, ErrMessageEmpty, "session %q content %q", sessionID, content)
		}
	}
}

func TestSendMessageRejectsMissingUser(t *testing.T) {
	svc := NewChatService(nil, nil, nil, nil, nil, nil, 10)

	_, err := svc.SendMessage(context.Background(), SendMessageInput{UserID: 0, SessionID: "abc", Content: "hi"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSessionTitleFromFirstQuestion(t *testing.T) {
	assert.Equal(t, "How do I add a student?", sessionTitle("How do I add a student?"))

	long := strings.Repeat("a", 80)
	title := sessionTitle(long)
	assert.Equal(t, strings.Repeat("a", 50)+"...", title)

	exact := strings.Repeat("b", 50)
	assert.Equal(t, exact, sessionTitle(exact))

	multibyte := strings.Repeat("é", 60)
	assert.Equal(t, strings.Repeat("é", 50)+"...", sessionTitle(multibyte))
}

func TestMessagePreviewTruncation(t *testing.T) {
	assert.Equal(t, "short answer", messagePreview("short answer"))

	long := strings.Repeat("x", 61)
	assert.Equal(t, strings.Repeat("x", 60)+"...", messagePreview(long))

	exact := strings.Repeat("y", 60)
	assert.Equal(t, exact, messagePreview(exact))
}

func TestCreateSessionValidation(t *testing.T) {
	svc := NewChatService(nil, nil, nil, nil, nil, nil, 10)

	_, err := svc.CreateSession(CreateSessionInput{UserID: 0})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestTrimMessages(t *testing.T) {
	messages := []model.ChatMessage{
		{Content: "one"}, {Content: "two"}, {Content: "three"}, {Content: "four"},
	}

	assert.Len(t, trimMessages(messages, 0), 4)
	assert.Len(t, trimMessages(messages, 10), 4)

	trimmed := trimMessages(messages, 2)
	assert.Len(t, trimmed, 2)
	assert.Equal(t, "three", trimmed[0].Content)
	assert.Equal(t, "four", trimmed[1].Content)
}

func TestTrimHistory(t *testing.T) {
	history := []HistoryPair{
		{Question: "q1"}, {Question: "q2"}, {Question: "q3"}, {Question: "q4"},
	}

	assert.Len(t, trimHistory(history, 0), 4)
	assert.Len(t, trimHistory(history, 9), 4)

	trimmed := trimHistory(history, 2)
	assert.Len(t, trimmed, 2)
	assert.Equal(t, "q3", trimmed[0].Question)
	assert.Equal(t, "q4", trimmed[1].Question)
}

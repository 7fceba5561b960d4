package rabbitmq

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"classcare-chatbot/internal/model"
)

func roundTrip(t *testing.T, msg model.ChatMessage) model.ChatMessage {
	t.Helper()
	payload, err := json.Marshal(NewEnvelope(msg))
	require.NoError(t, err)

	var env Envelope
	require.NoError(t, json.Unmarshal(payload, &env))
	return env.Message()
}

func TestEnvelopePreservesSubSecondOrdering(t *testing.T) {
	asked := time.Date(2026, 8, 24, 23, 2, 10, 0, time.UTC)
	answered := asked.Add(50 * time.Millisecond)

	human := roundTrip(t, model.ChatMessage{
		ID:        "m1",
		SessionID: "s1",
		Role:      model.RoleHuman,
		Content:   "what grades exist?",
		CreatedAt: asked,
	})
	ai := roundTrip(t, model.ChatMessage{
		ID:        "m2",
		SessionID: "s1",
		Role:      model.RoleAI,
		Content:   "KG through Grade 12.",
		CreatedAt: answered,
	})

	require.True(t, human.CreatedAt.Before(ai.CreatedAt), "human turn must stay before ai turn")
	assert.Equal(t, asked.UnixNano(), human.CreatedAt.UnixNano())
	assert.Equal(t, answered.UnixNano(), ai.CreatedAt.UnixNano())
}

func TestEnvelopeCarriesMetadata(t *testing.T) {
	msg := model.ChatMessage{
		ID:        "m1",
		SessionID: "s1",
		Role:      model.RoleAI,
		Content:   "answer",
		CreatedAt: time.Now(),
	}
	msg.SetMetadata(map[string]any{"used_agent": true})

	got := roundTrip(t, msg)
	assert.Equal(t, msg.Metadata, got.Metadata)
	assert.Equal(t, true, got.MetadataMap()["used_agent"])
}

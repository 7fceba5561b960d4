package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "does-not-exist.toml")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "classcare-chatbot", cfg.App.Name)
	assert.Equal(t, 1000, cfg.RAG.ChunkSize)
	assert.Equal(t, 200, cfg.RAG.ChunkOverlap)
	assert.Equal(t, 4, cfg.RAG.TopK)
	assert.Equal(t, 10, cfg.RAG.MaxHistory)
	assert.Equal(t, "classcare_documents", cfg.Milvus.Collection)
	assert.Equal(t, 384, cfg.Embedding.Dimension)
	assert.Equal(t, "chat.message.persist", cfg.RabbitMQ.MessagePersistQueue)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("CONFIG_FILE", "does-not-exist.toml")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("OPENAI_MODEL", "gpt-4o-mini")
	t.Setenv("MILVUS_HOST", "milvus.internal")
	t.Setenv("MILVUS_PORT", "29530")
	t.Setenv("MILVUS_COLLECTION_NAME", "custom_docs")
	t.Setenv("CHUNK_SIZE", "500")
	t.Setenv("CHUNK_OVERLAP", "50")
	t.Setenv("MAX_CONVERSATION_HISTORY", "5")
	t.Setenv("EMBEDDING_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sk-test", cfg.LLM.APIKey)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, "milvus.internal:29530", cfg.Milvus.Addr())
	assert.Equal(t, "custom_docs", cfg.Milvus.Collection)
	assert.Equal(t, 500, cfg.RAG.ChunkSize)
	assert.Equal(t, 50, cfg.RAG.ChunkOverlap)
	assert.Equal(t, 5, cfg.RAG.MaxHistory)
	assert.False(t, cfg.Embedding.Enabled)
}

func TestLoadInvalidEnvFallsBack(t *testing.T) {
	t.Setenv("CONFIG_FILE", "does-not-exist.toml")
	t.Setenv("CHUNK_SIZE", "not-a-number")
	t.Setenv("EMBEDDING_ENABLED", "not-a-bool")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 1000, cfg.RAG.ChunkSize)
	assert.True(t, cfg.Embedding.Enabled)
}

func TestMySQLDSN(t *testing.T) {
	t.Setenv("CONFIG_FILE", "does-not-exist.toml")
	t.Setenv("MYSQL_HOST", "db.internal")
	t.Setenv("MYSQL_PORT", "3307")
	t.Setenv("MYSQL_USER", "classcare")
	t.Setenv("MYSQL_PASSWORD", "pw")
	t.Setenv("MYSQL_DB", "chatbot")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t,
		"classcare:pw@tcp(db.internal:3307)/chatbot?parseTime=true&loc=Local&charset=utf8mb4",
		cfg.MySQLDSN(),
	)
}

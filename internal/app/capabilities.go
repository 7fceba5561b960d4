package app

import (
	"context"
	"strings"
	"time"
)

// Capabilities records which optional backends were available at startup.
// It is computed once during bootstrap and read everywhere else, replacing
// scattered nil checks at call sites.
type Capabilities struct {
	Embeddings  bool `json:"embeddings"`
	VectorStore bool `json:"vector_store"`
	LLM         bool `json:"llm"`
	Tools       bool `json:"tools"`
}

type CapabilityProbeInput struct {
	EmbeddingEnabled bool
	LLMAPIKey        string
	ToolsEnabled     bool
	VectorStorePing  func(ctx context.Context) error
}

// ProbeCapabilities checks each backend once. The vector store probe dials
// with a short timeout so a down Milvus does not stall boot.
func ProbeCapabilities(ctx context.Context, in CapabilityProbeInput) Capabilities {
	caps := Capabilities{
		Embeddings: in.EmbeddingEnabled,
		LLM:        strings.TrimSpace(in.LLMAPIKey) != "",
		Tools:      in.ToolsEnabled,
	}
	if in.VectorStorePing != nil {
		probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		caps.VectorStore = in.VectorStorePing(probeCtx) == nil
	}
	return caps
}

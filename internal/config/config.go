// Package config holds the runtime configuration for the course RAG system.
package config

import (
	"fmt"
	"os"
)

// Config enumerates every tunable of the system. Zero values are never used
// directly; Load applies the documented defaults and Validate rejects values
// outside their valid ranges.
type Config struct {
	// ChatModel is the OpenAI chat completions model used for answering.
	ChatModel string
	// EmbeddingModel is the OpenAI embedding model for catalog and content vectors.
	EmbeddingModel string
	// EmbeddingDimension is the vector size produced by EmbeddingModel.
	EmbeddingDimension int

	// ChunkSize is the target chunk window in characters. Valid: 100-8000.
	ChunkSize int
	// ChunkOverlap is the character overlap between consecutive chunks.
	// Valid: 0 to ChunkSize-1.
	ChunkOverlap int
	// MaxResults is the default search result limit. Valid: 1-50.
	MaxResults int
	// MaxHistory is the number of user/assistant exchange pairs kept per
	// session. Valid: 0-100; 0 disables conversation memory.
	MaxHistory int

	// QdrantHost and QdrantPort locate the Qdrant gRPC endpoint.
	QdrantHost string
	QdrantPort int

	// Port is the HTTP listen port for the server binary.
	Port string
	// DocsPath, when set, is a folder of course documents ingested at startup.
	DocsPath string
}

// Defaults carried over from the original deployment of this system.
const (
	DefaultChatModel          = "gpt-4o"
	DefaultEmbeddingModel     = "text-embedding-3-small"
	DefaultEmbeddingDimension = 1536
	DefaultChunkSize          = 800
	DefaultChunkOverlap       = 100
	DefaultMaxResults         = 5
	DefaultMaxHistory         = 2
)

// Load builds a Config from environment variables, falling back to defaults.
func Load() *Config {
	return &Config{
		ChatModel:          getEnv("OPENAI_CHAT_MODEL", DefaultChatModel),
		EmbeddingModel:     getEnv("OPENAI_EMBEDDING_MODEL", DefaultEmbeddingModel),
		EmbeddingDimension: getEnvInt("OPENAI_EMBEDDING_DIMENSION", DefaultEmbeddingDimension),
		ChunkSize:          getEnvInt("CHUNK_SIZE", DefaultChunkSize),
		ChunkOverlap:       getEnvInt("CHUNK_OVERLAP", DefaultChunkOverlap),
		MaxResults:         getEnvInt("MAX_RESULTS", DefaultMaxResults),
		MaxHistory:         getEnvInt("MAX_HISTORY", DefaultMaxHistory),
		QdrantHost:         getEnv("QDRANT_HOST", "localhost"),
		QdrantPort:         getEnvInt("QDRANT_PORT", 6334),
		Port:               getEnv("PORT", "8000"),
		DocsPath:           getEnv("DOCS_PATH", ""),
	}
}

// Validate checks every tunable against its valid range.
func (c *Config) Validate() error {
	if c.ChunkSize < 100 || c.ChunkSize > 8000 {
		return fmt.Errorf("chunk size %d out of range [100, 8000]", c.ChunkSize)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("chunk overlap %d out of range [0, %d)", c.ChunkOverlap, c.ChunkSize)
	}
	if c.MaxResults < 1 || c.MaxResults > 50 {
		return fmt.Errorf("max results %d out of range [1, 50]", c.MaxResults)
	}
	if c.MaxHistory < 0 || c.MaxHistory > 100 {
		return fmt.Errorf("max history %d out of range [0, 100]", c.MaxHistory)
	}
	if c.EmbeddingDimension < 1 {
		return fmt.Errorf("embedding dimension %d must be positive", c.EmbeddingDimension)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		var i int
		if _, err := fmt.Sscanf(v, "%d", &i); err == nil {
			return i
		}
	}
	return defaultValue
}

// Package main provides the course materials RAG server entry point.
package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/mike-a-ellis/course-rag/internal/api"
	"github.com/mike-a-ellis/course-rag/internal/config"
	"github.com/mike-a-ellis/course-rag/internal/embedding"
	"github.com/mike-a-ellis/course-rag/internal/generator"
	mcpserver "github.com/mike-a-ellis/course-rag/internal/mcp"
	"github.com/mike-a-ellis/course-rag/internal/rag"
	"github.com/mike-a-ellis/course-rag/internal/tools"
	"github.com/mike-a-ellis/course-rag/internal/vectorstore"
)

func main() {
	// Load .env file if present (local development), ignore if missing (production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	embeddingClient, err := embedding.NewClient()
	if err != nil {
		log.Fatalf("failed to create embedding client: %v", err)
	}
	embedder := embedding.NewEmbedder(embeddingClient, cfg.EmbeddingModel, 0) // Use default batch size

	store, err := vectorstore.NewStore(cfg.QdrantHost, cfg.QdrantPort, embedder, cfg.EmbeddingDimension, cfg.MaxResults)
	if err != nil {
		log.Fatalf("failed to connect to Qdrant: %v", err)
	}
	defer store.Close()

	if err := store.EnsureCollections(ctx); err != nil {
		log.Fatalf("failed to ensure collections: %v", err)
	}

	chat := generator.NewChatService(embeddingClient.Client())
	system, err := rag.New(cfg, store, chat, logger)
	if err != nil {
		log.Fatalf("failed to build RAG system: %v", err)
	}

	// Startup ingestion of the local docs folder, mirroring what the web UI
	// expects to find on first load.
	if cfg.DocsPath != "" {
		if _, err := os.Stat(cfg.DocsPath); err == nil {
			courses, chunks, err := system.AddCourseFolder(ctx, cfg.DocsPath, false)
			if err != nil {
				log.Fatalf("failed to ingest %s: %v", cfg.DocsPath, err)
			}
			log.Printf("Loaded %d courses with %d chunks", courses, chunks)
		} else {
			log.Printf("Docs path %s not found, skipping startup ingestion", cfg.DocsPath)
		}
	}

	mcpSrv := mcpserver.NewServer(&mcpserver.Config{
		SearchTool:  tools.NewContentSearchTool(store),
		OutlineTool: tools.NewCourseOutlineTool(store),
		Catalog:     store,
	})

	mux := http.NewServeMux()
	api.NewHandler(system, logger).Register(mux)
	mux.HandleFunc("/health", mcpserver.NewHealthHandler(store))
	mux.Handle("/mcp", mcpserver.NewHTTPHandler(mcpSrv, nil))

	addr := "0.0.0.0:" + cfg.Port
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		srv.Shutdown(context.Background())
	}()

	log.Printf("Starting HTTP server on %s (API at /api, MCP at /mcp, health at /health)", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("HTTP server error: %v", err)
	}
}

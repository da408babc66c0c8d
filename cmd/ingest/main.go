// Package main provides the ingestion CLI for course materials.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/mike-a-ellis/course-rag/internal/config"
	"github.com/mike-a-ellis/course-rag/internal/embedding"
	"github.com/mike-a-ellis/course-rag/internal/generator"
	ghclient "github.com/mike-a-ellis/course-rag/internal/github"
	"github.com/mike-a-ellis/course-rag/internal/rag"
	"github.com/mike-a-ellis/course-rag/internal/vectorstore"
)

var rootCmd = &cobra.Command{
	Use:   "course-ingest",
	Short: "Course materials ingestion tool",
	Long: `CLI tool for managing the course materials index in Qdrant.

Environment variables:
  QDRANT_HOST    Qdrant hostname (default: localhost)
  QDRANT_PORT    Qdrant gRPC port (default: 6334)
  OPENAI_API_KEY OpenAI API key for embeddings (required)
  GITHUB_TOKEN   GitHub token for higher rate limits (optional)`,
}

var clearExisting bool

var folderCmd = &cobra.Command{
	Use:   "folder <dir>",
	Short: "Ingest every course document in a folder",
	Long: `Parses each .txt and .md file in the folder and stores its catalog
entry and content chunks. Courses already in the catalog are skipped, so
re-runs only pick up new documents. With --clear the index is wiped first and
everything is re-ingested.`,
	Args: cobra.ExactArgs(1),
	RunE: runFolder,
}

var fileCmd = &cobra.Command{
	Use:   "file <path>",
	Short: "Ingest a single course document",
	Args:  cobra.ExactArgs(1),
	RunE:  runFile,
}

var githubCmd = &cobra.Command{
	Use:   "github <owner/repo> [path]",
	Short: "Ingest course documents from a GitHub repository directory",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runGitHub,
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all indexed course data",
	RunE:  runClear,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show course counts and titles",
	RunE:  runStats,
}

func init() {
	folderCmd.Flags().BoolVar(&clearExisting, "clear", false, "wipe the index before ingesting")
	rootCmd.AddCommand(folderCmd, fileCmd, githubCmd, clearCmd, statsCmd)
}

func main() {
	// Load .env file if present (local development), ignore if missing (production)
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// buildSystem wires the full pipeline from environment configuration.
func buildSystem(ctx context.Context) (*rag.System, *vectorstore.Store, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	fmt.Printf("Connecting to Qdrant at %s:%d...\n", cfg.QdrantHost, cfg.QdrantPort)

	embeddingClient, err := embedding.NewClient()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create embedding client: %w", err)
	}
	embedder := embedding.NewEmbedder(embeddingClient, cfg.EmbeddingModel, 0) // Use default batch size

	store, err := vectorstore.NewStore(cfg.QdrantHost, cfg.QdrantPort, embedder, cfg.EmbeddingDimension, cfg.MaxResults)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to Qdrant: %w", err)
	}

	if err := store.EnsureCollections(ctx); err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("failed to ensure collections: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	chat := generator.NewChatService(embeddingClient.Client())

	system, err := rag.New(cfg, store, chat, logger)
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	return system, store, nil
}

func runFolder(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	start := time.Now()

	system, store, err := buildSystem(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	courses, chunks, err := system.AddCourseFolder(ctx, args[0], clearExisting)
	if err != nil {
		return err
	}

	fmt.Printf("Ingested %d courses (%d chunks) in %s\n", courses, chunks, time.Since(start).Round(time.Millisecond))
	return nil
}

func runFile(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	system, store, err := buildSystem(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	crs, chunks, err := system.AddCourseDocument(ctx, args[0])
	if err != nil {
		return err
	}

	fmt.Printf("Ingested %q: %d lessons, %d chunks\n", crs.Title, len(crs.Lessons), chunks)
	return nil
}

func runGitHub(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	start := time.Now()

	owner, repo, ok := strings.Cut(args[0], "/")
	if !ok {
		return fmt.Errorf("repository must be in owner/repo form, got %q", args[0])
	}
	basePath := ""
	if len(args) == 2 {
		basePath = args[1]
	}

	system, store, err := buildSystem(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	client, err := ghclient.NewClient(ctx)
	if err != nil {
		return fmt.Errorf("failed to create GitHub client: %w", err)
	}
	fetcher := ghclient.NewFetcher(client, owner, repo, basePath)

	courses, chunks, err := system.AddGitHubCourses(ctx, fetcher)
	if err != nil {
		return err
	}

	fmt.Printf("Ingested %d courses (%d chunks) from %s in %s\n",
		courses, chunks, args[0], time.Since(start).Round(time.Millisecond))
	return nil
}

func runClear(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	_, store, err := buildSystem(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	fmt.Println("Clearing existing course data...")
	if err := store.ClearAll(ctx); err != nil {
		return fmt.Errorf("failed to clear index: %w", err)
	}
	fmt.Println("Index cleared")
	return nil
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	system, store, err := buildSystem(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	analytics, err := system.CourseAnalytics(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Courses: %d\n", analytics.TotalCourses)
	for _, title := range analytics.CourseTitles {
		fmt.Printf("  - %s\n", title)
	}
	return nil
}

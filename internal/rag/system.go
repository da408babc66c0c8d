// Package rag assembles the ingestion and query pipeline: document parsing,
// vector storage, tool-driven retrieval, and session history.
package rag

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/mike-a-ellis/course-rag/internal/config"
	"github.com/mike-a-ellis/course-rag/internal/course"
	"github.com/mike-a-ellis/course-rag/internal/docparse"
	"github.com/mike-a-ellis/course-rag/internal/generator"
	"github.com/mike-a-ellis/course-rag/internal/session"
	"github.com/mike-a-ellis/course-rag/internal/tools"
)

// Store is the vector-store surface the system depends on. *vectorstore.Store
// satisfies it.
type Store interface {
	tools.CourseStore
	UpsertCourse(ctx context.Context, crs *course.Course) error
	UpsertChunks(ctx context.Context, chunks []course.Chunk) error
	ExistingCourseTitles(ctx context.Context) ([]string, error)
	CourseCount(ctx context.Context) (int, error)
	ClearAll(ctx context.Context) error
}

// Fetcher produces course documents from a remote source, one (name, content)
// pair per document.
type Fetcher interface {
	FetchDocuments(ctx context.Context) (names []string, contents [][]byte, err error)
}

// Analytics summarizes what the catalog currently holds.
type Analytics struct {
	TotalCourses int      `json:"total_courses"`
	CourseTitles []string `json:"course_titles"`
}

// System ties the pipeline together. One instance serves all sessions.
type System struct {
	parser    *docparse.Parser
	store     Store
	generator *generator.Generator
	registry  *tools.Registry
	sessions  *session.Store
	logger    *slog.Logger
}

// New wires a System from its parts. The registry is populated with the two
// retrieval tools backed by the store.
func New(cfg *config.Config, store Store, chat generator.ChatService, logger *slog.Logger) (*System, error) {
	registry := tools.NewRegistry()
	if err := registry.Register(tools.NewContentSearchTool(store)); err != nil {
		return nil, fmt.Errorf("register search tool: %w", err)
	}
	if err := registry.Register(tools.NewCourseOutlineTool(store)); err != nil {
		return nil, fmt.Errorf("register outline tool: %w", err)
	}

	return &System{
		parser:    docparse.NewParser(cfg.ChunkSize, cfg.ChunkOverlap),
		store:     store,
		generator: generator.New(chat, cfg.ChatModel),
		registry:  registry,
		sessions:  session.NewStore(cfg.MaxHistory),
		logger:    logger,
	}, nil
}

// CreateSession starts a new conversation session.
func (s *System) CreateSession() string {
	return s.sessions.CreateSession()
}

// ClearSession drops the session's history.
func (s *System) ClearSession(id string) {
	s.sessions.ClearSession(id)
}

// Query answers one user question. When sessionID is non-empty the session's
// history is provided to the model and the exchange is recorded afterward.
// Returns the answer and the sources cited by this turn's tool calls; the
// sources are carried in return values end to end, so concurrent queries
// cannot see one another's citations.
func (s *System) Query(ctx context.Context, query, sessionID string) (string, []tools.Source, error) {
	prompt := fmt.Sprintf("Answer this question about course materials: %s", query)

	var history string
	if sessionID != "" {
		history, _ = s.sessions.HistoryText(sessionID)
	}

	answer, sources, err := s.generator.GenerateResponse(ctx, prompt, history, s.registry.Definitions(), s.registry)
	if err != nil {
		return "", nil, err
	}

	if sessionID != "" {
		s.sessions.RecordExchange(sessionID, query, answer)
	}
	return answer, sources, nil
}

// AddCourseDocument parses one document and stores its catalog entry and
// content chunks. Returns the parsed course and its chunk count.
func (s *System) AddCourseDocument(ctx context.Context, path string) (*course.Course, int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, fmt.Errorf("read course document: %w", err)
	}
	return s.addCourse(ctx, filepath.Base(path), data)
}

func (s *System) addCourse(ctx context.Context, name string, data []byte) (*course.Course, int, error) {
	crs, chunks, err := s.parser.Parse(name, data)
	if err != nil {
		return nil, 0, fmt.Errorf("parse %s: %w", name, err)
	}

	if err := s.store.UpsertCourse(ctx, crs); err != nil {
		return nil, 0, fmt.Errorf("store course %q: %w", crs.Title, err)
	}
	if err := s.store.UpsertChunks(ctx, chunks); err != nil {
		return nil, 0, fmt.Errorf("store chunks for %q: %w", crs.Title, err)
	}

	s.logger.Info("course ingested",
		slog.String("course", crs.Title),
		slog.Int("lessons", len(crs.Lessons)),
		slog.Int("chunks", len(chunks)))
	return crs, len(chunks), nil
}

// courseDocument reports whether the file name looks like a course document.
func courseDocument(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt", ".md":
		return true
	}
	return false
}

// AddCourseFolder ingests every course document in dir, skipping courses whose
// titles already exist in the catalog so re-runs do not duplicate work. With
// clearExisting the store is wiped first and everything is re-ingested.
// Returns total courses and chunks added. A document that fails to parse is
// logged and skipped.
func (s *System) AddCourseFolder(ctx context.Context, dir string, clearExisting bool) (int, int, error) {
	if clearExisting {
		s.logger.Info("clearing existing course data")
		if err := s.store.ClearAll(ctx); err != nil {
			return 0, 0, fmt.Errorf("clear store: %w", err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, 0, fmt.Errorf("read course folder: %w", err)
	}

	existing, err := s.store.ExistingCourseTitles(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("list existing courses: %w", err)
	}

	var coursesAdded, chunksAdded int
	for _, entry := range entries {
		if entry.IsDir() || !courseDocument(entry.Name()) {
			continue
		}
		path := filepath.Join(dir, entry.Name())

		data, err := os.ReadFile(path)
		if err != nil {
			s.logger.Warn("skipping unreadable document", slog.String("path", path), slog.Any("error", err))
			continue
		}
		crs, chunks, err := s.parser.Parse(entry.Name(), data)
		if err != nil {
			s.logger.Warn("skipping unparseable document", slog.String("path", path), slog.Any("error", err))
			continue
		}
		if slices.Contains(existing, crs.Title) {
			s.logger.Debug("course already ingested", slog.String("course", crs.Title))
			continue
		}

		if err := s.store.UpsertCourse(ctx, crs); err != nil {
			return coursesAdded, chunksAdded, fmt.Errorf("store course %q: %w", crs.Title, err)
		}
		if err := s.store.UpsertChunks(ctx, chunks); err != nil {
			return coursesAdded, chunksAdded, fmt.Errorf("store chunks for %q: %w", crs.Title, err)
		}

		existing = append(existing, crs.Title)
		coursesAdded++
		chunksAdded += len(chunks)
		s.logger.Info("course ingested",
			slog.String("course", crs.Title),
			slog.Int("lessons", len(crs.Lessons)),
			slog.Int("chunks", len(chunks)))
	}
	return coursesAdded, chunksAdded, nil
}

// AddGitHubCourses ingests every document the fetcher returns, skipping
// courses already in the catalog. Returns total courses and chunks added.
func (s *System) AddGitHubCourses(ctx context.Context, fetcher Fetcher) (int, int, error) {
	names, contents, err := fetcher.FetchDocuments(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("fetch course documents: %w", err)
	}

	existing, err := s.store.ExistingCourseTitles(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("list existing courses: %w", err)
	}

	var coursesAdded, chunksAdded int
	for i, name := range names {
		crs, chunks, err := s.parser.Parse(name, contents[i])
		if err != nil {
			s.logger.Warn("skipping unparseable document", slog.String("name", name), slog.Any("error", err))
			continue
		}
		if slices.Contains(existing, crs.Title) {
			s.logger.Debug("course already ingested", slog.String("course", crs.Title))
			continue
		}

		if err := s.store.UpsertCourse(ctx, crs); err != nil {
			return coursesAdded, chunksAdded, fmt.Errorf("store course %q: %w", crs.Title, err)
		}
		if err := s.store.UpsertChunks(ctx, chunks); err != nil {
			return coursesAdded, chunksAdded, fmt.Errorf("store chunks for %q: %w", crs.Title, err)
		}

		existing = append(existing, crs.Title)
		coursesAdded++
		chunksAdded += len(chunks)
		s.logger.Info("course ingested",
			slog.String("course", crs.Title),
			slog.Int("lessons", len(crs.Lessons)),
			slog.Int("chunks", len(chunks)))
	}
	return coursesAdded, chunksAdded, nil
}

// CourseAnalytics reports the catalog's current size and titles.
func (s *System) CourseAnalytics(ctx context.Context) (*Analytics, error) {
	titles, err := s.store.ExistingCourseTitles(ctx)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	count, err := s.store.CourseCount(ctx)
	if err != nil {
		return nil, fmt.Errorf("count courses: %w", err)
	}
	return &Analytics{TotalCourses: count, CourseTitles: titles}, nil
}

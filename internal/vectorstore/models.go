package vectorstore

import (
	"context"
	"fmt"

	"github.com/mike-a-ellis/course-rag/internal/course"
)

// Embedder converts texts into vectors. Satisfied by embedding.Embedder.
type Embedder interface {
	GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
}

// ChunkMetadata is the payload stored alongside each content vector.
type ChunkMetadata struct {
	CourseTitle  string
	LessonNumber *int
	ChunkIndex   int
}

// SearchResults is an ordered set of matching chunks, best match first, or an
// error marker. Empty-with-no-error (zero matches) and empty-with-error are
// distinct states; tool code must check IsError before IsEmpty.
type SearchResults struct {
	Documents []string
	Metadata  []ChunkMetadata
	// Scores are cosine similarities as reported by Qdrant, descending.
	// Higher is closer; equivalent to ascending distance order.
	Scores []float32
	Err    string
}

// ErrorResults builds an error-marked result set carrying a message.
func ErrorResults(format string, args ...any) *SearchResults {
	return &SearchResults{Err: fmt.Sprintf(format, args...)}
}

// IsError reports whether the set carries an error marker.
func (r *SearchResults) IsError() bool { return r.Err != "" }

// IsEmpty reports whether the set holds no matches.
func (r *SearchResults) IsEmpty() bool { return len(r.Documents) == 0 }

// CourseMeta is the catalog entry describing a course as a whole.
type CourseMeta struct {
	Title       string
	Link        string
	Instructor  string
	Lessons     []course.Lesson
	LessonCount int
}

// SearchOptions narrows a content search. CourseName is resolved fuzzily
// against the catalog before filtering; LessonNumber filters exactly.
// Limit 0 means the store's configured default.
type SearchOptions struct {
	CourseName   string
	LessonNumber *int
	Limit        int
}

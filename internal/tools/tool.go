// Package tools exposes retrieval operations the LLM can call mid-conversation,
// with source-citation tracking per user turn.
package tools

import (
	"context"

	"github.com/mike-a-ellis/course-rag/internal/vectorstore"
)

// Source is a citation attributing part of an answer to a specific chunk.
type Source struct {
	Text string `json:"text"`
	Link string `json:"link,omitempty"`
}

// Property describes one named argument in a tool's input schema.
type Property struct {
	Type        string `json:"type"`
	Description string `json:"description"`
}

// Schema is a JSON-Schema-like description of a tool's arguments.
type Schema struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties"`
	Required   []string            `json:"required"`
}

// Definition identifies a tool to the LLM service.
type Definition struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	InputSchema Schema `json:"input_schema"`
}

// Tool is one callable operation. Recoverable conditions (no results,
// unresolved course, missing metadata) are reported in the returned text so
// the LLM can see and react to them; a non-nil error means the tool itself
// broke and aborts the turn.
type Tool interface {
	Definition() Definition
	Execute(ctx context.Context, args map[string]any) (text string, sources []Source, err error)
}

// CourseStore is the slice of the vector store the retrieval tools depend on.
type CourseStore interface {
	Search(ctx context.Context, query string, opts vectorstore.SearchOptions) *vectorstore.SearchResults
	ResolveCourseTitle(ctx context.Context, name string) (title string, score float32, err error)
	LessonLinks(ctx context.Context, courseTitle string) (map[int]string, error)
	CourseMetadata(ctx context.Context, title string) (*vectorstore.CourseMeta, error)
}

// intArg reads an integer argument, accepting the float64 that encoding/json
// produces for JSON numbers.
func intArg(args map[string]any, key string) *int {
	switch v := args[key].(type) {
	case float64:
		n := int(v)
		return &n
	case int:
		n := v
		return &n
	default:
		return nil
	}
}

package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mike-a-ellis/course-rag/internal/tools"
)

// toSourceRefs converts tool citations to the wire type.
func toSourceRefs(sources []tools.Source) []SourceRef {
	refs := make([]SourceRef, 0, len(sources))
	for _, s := range sources {
		refs = append(refs, SourceRef{Text: s.Text, Link: s.Link})
	}
	return refs
}

// makeSearchHandler creates the search_course_content tool handler. Misses
// and unresolved course names come back as result text, the same way they do
// for the LLM-facing tool.
func makeSearchHandler(tool tools.Tool) func(
	context.Context, *mcp.CallToolRequest, SearchContentInput,
) (*mcp.CallToolResult, SearchContentOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input SearchContentInput) (
		*mcp.CallToolResult, SearchContentOutput, error,
	) {
		args := map[string]any{"query": input.Query}
		if input.CourseName != "" {
			args["course_name"] = input.CourseName
		}
		if input.LessonNumber != nil {
			args["lesson_number"] = *input.LessonNumber
		}

		text, sources, err := tool.Execute(ctx, args)
		if err != nil {
			return nil, SearchContentOutput{}, fmt.Errorf("search failed: %w", err)
		}

		return nil, SearchContentOutput{
			Content: text,
			Sources: toSourceRefs(sources),
		}, nil
	}
}

// makeOutlineHandler creates the get_course_outline tool handler.
func makeOutlineHandler(tool tools.Tool) func(
	context.Context, *mcp.CallToolRequest, CourseOutlineInput,
) (*mcp.CallToolResult, CourseOutlineOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input CourseOutlineInput) (
		*mcp.CallToolResult, CourseOutlineOutput, error,
	) {
		text, sources, err := tool.Execute(ctx, map[string]any{"course_name": input.CourseName})
		if err != nil {
			return nil, CourseOutlineOutput{}, fmt.Errorf("outline failed: %w", err)
		}

		return nil, CourseOutlineOutput{
			Outline: text,
			Sources: toSourceRefs(sources),
		}, nil
	}
}

// makeListHandler creates the list_courses tool handler.
func makeListHandler(catalog Catalog) func(
	context.Context, *mcp.CallToolRequest, ListCoursesInput,
) (*mcp.CallToolResult, ListCoursesOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ListCoursesInput) (
		*mcp.CallToolResult, ListCoursesOutput, error,
	) {
		titles, err := catalog.ExistingCourseTitles(ctx)
		if err != nil {
			return nil, ListCoursesOutput{}, fmt.Errorf("failed to list courses: %w", err)
		}
		if titles == nil {
			titles = []string{}
		}

		return nil, ListCoursesOutput{
			Titles: titles,
			Count:  len(titles),
		}, nil
	}
}

package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mike-a-ellis/course-rag/internal/vectorstore"
)

// ContentSearchTool searches course content with fuzzy course name matching
// and optional lesson filtering.
type ContentSearchTool struct {
	store CourseStore
}

// NewContentSearchTool creates the content search tool backed by the store.
func NewContentSearchTool(store CourseStore) *ContentSearchTool {
	return &ContentSearchTool{store: store}
}

func (t *ContentSearchTool) Definition() Definition {
	return Definition{
		Name:        "search_course_content",
		Description: "Search course materials with smart course name matching and lesson filtering",
		InputSchema: Schema{
			Type: "object",
			Properties: map[string]Property{
				"query": {
					Type:        "string",
					Description: "What to search for in the course content",
				},
				"course_name": {
					Type:        "string",
					Description: "Course title (partial matches work)",
				},
				"lesson_number": {
					Type:        "integer",
					Description: "Specific lesson number",
				},
			},
			Required: []string{"query"},
		},
	}
}

// Execute runs the search and formats matches as labeled blocks, recording
// one source per block. Store-reported errors come back verbatim as text.
func (t *ContentSearchTool) Execute(ctx context.Context, args map[string]any) (string, []Source, error) {
	query, ok := args["query"].(string)
	if !ok {
		return "", nil, fmt.Errorf("search_course_content: missing required argument %q", "query")
	}
	courseName, _ := args["course_name"].(string)
	lessonNumber := intArg(args, "lesson_number")

	results := t.store.Search(ctx, query, vectorstore.SearchOptions{
		CourseName:   courseName,
		LessonNumber: lessonNumber,
	})
	if results.IsError() {
		return results.Err, nil, nil
	}
	if results.IsEmpty() {
		msg := "No relevant content found"
		if courseName != "" {
			msg += fmt.Sprintf(" in course '%s'", courseName)
		}
		if lessonNumber != nil {
			msg += fmt.Sprintf(" in lesson %d", *lessonNumber)
		}
		return msg + ".", nil, nil
	}

	// Lesson links are fetched once per course; a failure here degrades
	// silently - sources just lose their links.
	linkCache := make(map[string]map[int]string)
	lessonLink := func(title string, lesson int) string {
		links, ok := linkCache[title]
		if !ok {
			links, _ = t.store.LessonLinks(ctx, title)
			if links == nil {
				links = map[int]string{}
			}
			linkCache[title] = links
		}
		return links[lesson]
	}

	blocks := make([]string, 0, len(results.Documents))
	sources := make([]Source, 0, len(results.Documents))
	for i, doc := range results.Documents {
		meta := results.Metadata[i]

		header := fmt.Sprintf("[%s]", meta.CourseTitle)
		source := Source{Text: meta.CourseTitle}
		if meta.LessonNumber != nil {
			header = fmt.Sprintf("[%s - Lesson %d]", meta.CourseTitle, *meta.LessonNumber)
			source.Text = fmt.Sprintf("%s - Lesson %d", meta.CourseTitle, *meta.LessonNumber)
			source.Link = lessonLink(meta.CourseTitle, *meta.LessonNumber)
		}

		blocks = append(blocks, header+"\n"+doc)
		sources = append(sources, source)
	}

	return strings.Join(blocks, "\n\n"), sources, nil
}

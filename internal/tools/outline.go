package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mike-a-ellis/course-rag/internal/vectorstore"
)

// CourseOutlineTool returns a course's full structure: title, link,
// instructor, and every lesson in order.
type CourseOutlineTool struct {
	store CourseStore
}

// NewCourseOutlineTool creates the outline tool backed by the store.
func NewCourseOutlineTool(store CourseStore) *CourseOutlineTool {
	return &CourseOutlineTool{store: store}
}

func (t *CourseOutlineTool) Definition() Definition {
	return Definition{
		Name:        "get_course_outline",
		Description: "Get the complete outline of a course: title, link, instructor, and all lessons with their numbers and titles",
		InputSchema: Schema{
			Type: "object",
			Properties: map[string]Property{
				"course_name": {
					Type:        "string",
					Description: "Course title (partial matches work)",
				},
			},
			Required: []string{"course_name"},
		},
	}
}

// Execute resolves the course name and formats its catalog entry. Every
// failure mode is reported as text (with no sources) so the LLM can react.
func (t *CourseOutlineTool) Execute(ctx context.Context, args map[string]any) (string, []Source, error) {
	courseName, ok := args["course_name"].(string)
	if !ok {
		return "", nil, fmt.Errorf("get_course_outline: missing required argument %q", "course_name")
	}

	title, _, err := t.store.ResolveCourseTitle(ctx, courseName)
	if err != nil {
		return fmt.Sprintf("Error retrieving course outline: %v", err), nil, nil
	}
	if title == "" {
		return fmt.Sprintf("No course found matching '%s'", courseName), nil, nil
	}

	meta, err := t.store.CourseMetadata(ctx, title)
	if err != nil {
		if errors.Is(err, vectorstore.ErrCourseNotFound) {
			return fmt.Sprintf("Course metadata not found for '%s'", title), nil, nil
		}
		return fmt.Sprintf("Error retrieving course outline: %v", err), nil, nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**%s**\n", meta.Title)
	if meta.Link != "" {
		fmt.Fprintf(&b, "**Course Link:** %s\n", meta.Link)
	}
	if meta.Instructor != "" {
		fmt.Fprintf(&b, "**Instructor:** %s\n", meta.Instructor)
	}
	fmt.Fprintf(&b, "\n**Lessons (%d):**\n", meta.LessonCount)
	for _, lesson := range meta.Lessons {
		fmt.Fprintf(&b, "- Lesson %d: %s\n", lesson.Number, lesson.Title)
	}

	source := Source{Text: meta.Title, Link: meta.Link}
	return strings.TrimRight(b.String(), "\n"), []Source{source}, nil
}

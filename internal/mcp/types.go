// Package mcp exposes the course retrieval tools over the Model Context
// Protocol.
package mcp

// SearchContentInput defines the input parameters for the
// search_course_content tool.
type SearchContentInput struct {
	// Query is the semantic search query.
	Query string `json:"query" jsonschema:"required,description=What to search for in the course content"`
	// CourseName optionally narrows the search to one course.
	CourseName string `json:"course_name,omitempty" jsonschema:"description=Course title (partial matches work)"`
	// LessonNumber optionally narrows the search to one lesson. A pointer so
	// lesson 0 is distinguishable from the filter being absent.
	LessonNumber *int `json:"lesson_number,omitempty" jsonschema:"description=Specific lesson number"`
}

// SearchContentOutput contains the formatted search results.
type SearchContentOutput struct {
	// Content is the matched chunks, each labeled with course and lesson.
	Content string `json:"content"`
	// Sources cites the course and lesson behind each match.
	Sources []SourceRef `json:"sources"`
}

// CourseOutlineInput defines the input parameters for the get_course_outline
// tool.
type CourseOutlineInput struct {
	// CourseName is the course to describe.
	CourseName string `json:"course_name" jsonschema:"required,description=Course title (partial matches work)"`
}

// CourseOutlineOutput contains the formatted course outline.
type CourseOutlineOutput struct {
	// Outline is the course structure: title, link, instructor, and lessons.
	Outline string `json:"outline"`
	// Sources cites the course the outline came from.
	Sources []SourceRef `json:"sources"`
}

// ListCoursesInput defines the input parameters for the list_courses tool.
// The tool takes no parameters.
type ListCoursesInput struct{}

// ListCoursesOutput contains every course title in the catalog.
type ListCoursesOutput struct {
	// Titles is all course titles, sorted.
	Titles []string `json:"titles"`
	// Count is the total number of courses.
	Count int `json:"count"`
}

// SourceRef is a citation attached to a tool result.
type SourceRef struct {
	Text string `json:"text"`
	Link string `json:"link,omitempty"`
}

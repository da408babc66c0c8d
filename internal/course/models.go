// Package course defines the data model shared by ingestion, storage and retrieval.
package course

// Lesson is a single lesson within a course. Numbers are unique within a
// course but need not be contiguous; lesson 0 is common for introductions.
type Lesson struct {
	Number int    `json:"lesson_number"`
	Title  string `json:"lesson_title"`
	Link   string `json:"lesson_link,omitempty"`
}

// Course represents one course document. Title is the sole external key and
// must be unique across the corpus.
type Course struct {
	Title      string   `json:"title"`
	Link       string   `json:"course_link,omitempty"`
	Instructor string   `json:"instructor,omitempty"`
	Lessons    []Lesson `json:"lessons"`
}

// Chunk is a bounded span of course text, independently embeddable and
// retrievable. Chunks are immutable after creation; re-ingesting a course
// replaces its chunks wholesale.
type Chunk struct {
	// Content is the chunk text with its contextual prefix already prepended,
	// so the chunk is self-describing when retrieved out of context.
	Content     string
	CourseTitle string
	// LessonNumber is nil for content that precedes the first lesson marker.
	LessonNumber *int
	// Index is the zero-based position among all chunks of the course,
	// increasing monotonically in document order across lessons.
	Index int
}

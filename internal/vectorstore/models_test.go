package vectorstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorResults(t *testing.T) {
	r := ErrorResults("No course found matching '%s'", "MCP")

	assert.True(t, r.IsError())
	assert.True(t, r.IsEmpty())
	assert.Equal(t, "No course found matching 'MCP'", r.Err)
}

func TestSearchResults_EmptyWithoutError(t *testing.T) {
	r := &SearchResults{}

	assert.False(t, r.IsError())
	assert.True(t, r.IsEmpty())
}

func TestSearchResults_WithMatches(t *testing.T) {
	lesson := 2
	r := &SearchResults{
		Documents: []string{"chunk text"},
		Metadata:  []ChunkMetadata{{CourseTitle: "Course A", LessonNumber: &lesson, ChunkIndex: 0}},
		Scores:    []float32{0.87},
	}

	assert.False(t, r.IsError())
	assert.False(t, r.IsEmpty())
}

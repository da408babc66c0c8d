package docparse

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleScript = `Course Title: Building Toward Computer Use
Course Link: https://example.com/course
Course Instructor: Colt Steele

Welcome to the course. This intro has no lesson number.

Lesson 0: Introduction
Lesson Link: https://example.com/lesson/0
This is the introduction lesson. It explains the basics.

Lesson 1: Getting Set Up
Setup instructions go here. No link for this one.
`

func TestParseScript_FullDocument(t *testing.T) {
	p := NewParser(800, 100)
	crs, chunks, err := p.ParseScript("course1.txt", []byte(sampleScript))
	require.NoError(t, err)

	assert.Equal(t, "Building Toward Computer Use", crs.Title)
	assert.Equal(t, "https://example.com/course", crs.Link)
	assert.Equal(t, "Colt Steele", crs.Instructor)

	require.Len(t, crs.Lessons, 2)
	assert.Equal(t, 0, crs.Lessons[0].Number)
	assert.Equal(t, "Introduction", crs.Lessons[0].Title)
	assert.Equal(t, "https://example.com/lesson/0", crs.Lessons[0].Link)
	assert.Equal(t, 1, crs.Lessons[1].Number)
	assert.Equal(t, "Getting Set Up", crs.Lessons[1].Title)
	assert.Empty(t, crs.Lessons[1].Link)

	// Intro chunk has no lesson number; lesson chunks carry theirs.
	require.NotEmpty(t, chunks)
	assert.Nil(t, chunks[0].LessonNumber)
	assert.True(t, strings.HasPrefix(chunks[0].Content,
		"Course Building Toward Computer Use content: Welcome to the course."))

	var sawLessonZero bool
	for i, c := range chunks {
		assert.Equal(t, i, c.Index, "chunk indexes must be contiguous from 0")
		assert.Equal(t, "Building Toward Computer Use", c.CourseTitle)
		if c.LessonNumber != nil && *c.LessonNumber == 0 {
			sawLessonZero = true
			assert.True(t, strings.HasPrefix(c.Content,
				"Course Building Toward Computer Use Lesson 0 content:"))
		}
	}
	assert.True(t, sawLessonZero)
}

func TestParseScript_MissingTitle(t *testing.T) {
	p := NewParser(800, 100)
	_, _, err := p.ParseScript("bad.txt", []byte("Lesson 0: Intro\nBody text here.\n"))
	require.ErrorIs(t, err, ErrNoTitle)
}

func TestParseScript_DuplicateLessonNumber(t *testing.T) {
	doc := `Course Title: Dup Course

Lesson 1: First
Content one.

Lesson 1: Second
Content two.
`
	p := NewParser(800, 100)
	_, _, err := p.ParseScript("dup.txt", []byte(doc))
	require.ErrorIs(t, err, ErrDuplicateLesson)
}

func TestParseScript_LessonLinkOnlyDirectlyUnderMarker(t *testing.T) {
	doc := `Course Title: Link Placement

Lesson 3: Placement
Some body first.
Lesson Link: https://example.com/late
More body.
`
	p := NewParser(800, 100)
	crs, chunks, err := p.ParseScript("links.txt", []byte(doc))
	require.NoError(t, err)

	require.Len(t, crs.Lessons, 1)
	assert.Empty(t, crs.Lessons[0].Link, "late link lines are content, not metadata")

	var body string
	for _, c := range chunks {
		body += c.Content
	}
	assert.Contains(t, body, "Lesson Link: https://example.com/late")
}

func TestParseScript_NoLessons(t *testing.T) {
	doc := `Course Title: Flat Course

Just one block of content with no lesson markers at all.
`
	p := NewParser(800, 100)
	crs, chunks, err := p.ParseScript("flat.txt", []byte(doc))
	require.NoError(t, err)

	assert.Empty(t, crs.Lessons)
	require.Len(t, chunks, 1)
	assert.Nil(t, chunks[0].LessonNumber)
}

func TestParse_DispatchesOnExtension(t *testing.T) {
	p := NewParser(800, 100)

	crs, _, err := p.Parse("notes.TXT", []byte("Course Title: Plain\n\nBody here.\n"))
	require.NoError(t, err)
	assert.Equal(t, "Plain", crs.Title)

	crs, _, err = p.Parse("notes.md", []byte("# Markdown Course\n\nBody here.\n"))
	require.NoError(t, err)
	assert.Equal(t, "Markdown Course", crs.Title)
}

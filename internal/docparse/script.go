// Package docparse turns raw course documents into Course metadata and
// addressable, overlapping content chunks.
package docparse

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/mike-a-ellis/course-rag/internal/course"
)

var (
	// ErrNoTitle reports a document whose header block lacks a course title.
	ErrNoTitle = errors.New("missing course title")
	// ErrDuplicateLesson reports a lesson number used twice in one document.
	ErrDuplicateLesson = errors.New("duplicate lesson number")
)

// lessonRe matches lesson markers like "Lesson 0: Introduction".
var lessonRe = regexp.MustCompile(`^Lesson\s+(\d+):\s*(.+)$`)

// Parser converts course documents into chunks sized for vector storage.
type Parser struct {
	chunkSize    int
	chunkOverlap int
}

// NewParser creates a Parser with the given character budgets. Non-positive
// values fall back to 800/100.
func NewParser(chunkSize, chunkOverlap int) *Parser {
	if chunkSize <= 0 {
		chunkSize = 800
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = 100
		if chunkOverlap >= chunkSize {
			chunkOverlap = 0
		}
	}
	return &Parser{chunkSize: chunkSize, chunkOverlap: chunkOverlap}
}

// Parse dispatches on the file extension: ".md" documents go through the
// markdown front end, everything else is treated as a plain course script.
func (p *Parser) Parse(filename string, data []byte) (*course.Course, []course.Chunk, error) {
	if strings.EqualFold(filepath.Ext(filename), ".md") {
		return p.ParseMarkdown(filename, data)
	}
	return p.ParseScript(filename, data)
}

// section is a contiguous run of document text, optionally owned by a lesson.
type section struct {
	lesson *course.Lesson
	body   []string
}

func (s *section) bodyEmpty() bool {
	for _, line := range s.body {
		if strings.TrimSpace(line) != "" {
			return false
		}
	}
	return true
}

// ParseScript parses the plain course script format:
//
//	Course Title: ...
//	Course Link: ...
//	Course Instructor: ...
//
//	Lesson 0: Introduction
//	Lesson Link: ...
//	<lesson content>
//
// Link and instructor are optional; the title is required. Content between
// the header and the first lesson marker is chunked without a lesson number.
func (p *Parser) ParseScript(name string, data []byte) (*course.Course, []course.Chunk, error) {
	crs := &course.Course{}
	intro := &section{}
	sections := []*section{intro}
	cur := (*section)(nil)

	for _, raw := range strings.Split(string(data), "\n") {
		line := strings.TrimSpace(raw)

		if m := lessonRe.FindStringSubmatch(line); m != nil {
			n, _ := strconv.Atoi(m[1])
			cur = &section{lesson: &course.Lesson{Number: n, Title: strings.TrimSpace(m[2])}}
			sections = append(sections, cur)
			continue
		}

		if cur == nil {
			switch {
			case strings.HasPrefix(line, "Course Title:"):
				crs.Title = strings.TrimSpace(strings.TrimPrefix(line, "Course Title:"))
			case strings.HasPrefix(line, "Course Link:"):
				crs.Link = strings.TrimSpace(strings.TrimPrefix(line, "Course Link:"))
			case strings.HasPrefix(line, "Course Instructor:"):
				crs.Instructor = strings.TrimSpace(strings.TrimPrefix(line, "Course Instructor:"))
			default:
				intro.body = append(intro.body, raw)
			}
			continue
		}

		// A lesson link line is only recognized directly under its marker.
		if strings.HasPrefix(line, "Lesson Link:") && cur.lesson.Link == "" && cur.bodyEmpty() {
			cur.lesson.Link = strings.TrimSpace(strings.TrimPrefix(line, "Lesson Link:"))
			continue
		}
		cur.body = append(cur.body, raw)
	}

	if crs.Title == "" {
		return nil, nil, fmt.Errorf("parse %s: %w", name, ErrNoTitle)
	}

	chunks, err := p.assemble(name, crs, sections)
	if err != nil {
		return nil, nil, err
	}
	return crs, chunks, nil
}

// assemble collects lessons in document order and chunks each section's body,
// numbering chunks globally per course starting at 0.
func (p *Parser) assemble(name string, crs *course.Course, sections []*section) ([]course.Chunk, error) {
	seen := make(map[int]bool)
	var chunks []course.Chunk

	for _, sec := range sections {
		var lessonNumber *int
		if sec.lesson != nil {
			if seen[sec.lesson.Number] {
				return nil, fmt.Errorf("parse %s: %w: %d", name, ErrDuplicateLesson, sec.lesson.Number)
			}
			seen[sec.lesson.Number] = true
			crs.Lessons = append(crs.Lessons, *sec.lesson)
			n := sec.lesson.Number
			lessonNumber = &n
		}

		for _, piece := range p.chunkText(strings.Join(sec.body, "\n")) {
			chunks = append(chunks, course.Chunk{
				Content:      contextPrefix(crs.Title, lessonNumber, piece),
				CourseTitle:  crs.Title,
				LessonNumber: lessonNumber,
				Index:        len(chunks),
			})
		}
	}
	return chunks, nil
}

// contextPrefix prepends course and lesson context so a chunk remains
// self-describing when retrieved on its own.
func contextPrefix(title string, lessonNumber *int, text string) string {
	if lessonNumber != nil {
		return fmt.Sprintf("Course %s Lesson %d content: %s", title, *lessonNumber, text)
	}
	return fmt.Sprintf("Course %s content: %s", title, text)
}

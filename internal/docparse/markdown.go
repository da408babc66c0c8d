package docparse

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"go.abhg.dev/goldmark/toc"

	"github.com/mike-a-ellis/course-rag/internal/course"
)

// ParseMarkdown parses a markdown course document. The first H1 is the course
// title, and H2 headings of the form "Lesson N: Title" mark lessons. Metadata
// lines ("Course Link:", "Course Instructor:", "Lesson Link:") are recognized
// at the start of their section, matching the plain script format.
func (p *Parser) ParseMarkdown(name string, source []byte) (*course.Course, []course.Chunk, error) {
	md := goldmark.New(
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
	)
	doc := md.Parser().Parse(text.NewReader(source))

	tree, err := toc.Inspect(doc, source,
		toc.MinDepth(1),
		toc.MaxDepth(2),
		toc.Compact(true),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("parse %s: inspect headings: %w", name, err)
	}
	if len(tree.Items) == 0 || len(tree.Items[0].Title) == 0 {
		return nil, nil, fmt.Errorf("parse %s: %w", name, ErrNoTitle)
	}

	root := tree.Items[0]
	crs := &course.Course{Title: string(root.Title)}

	rootNode := findHeadingByID(doc, string(root.ID))
	if rootNode == nil {
		return nil, nil, fmt.Errorf("parse %s: %w", name, ErrNoTitle)
	}

	// Intro section: everything between the H1 and the first H2 (or EOF).
	intro := &section{}
	for _, raw := range strings.Split(sectionBody(source, rootNode), "\n") {
		line := strings.TrimSpace(raw)
		switch {
		case strings.HasPrefix(line, "Course Link:"):
			crs.Link = strings.TrimSpace(strings.TrimPrefix(line, "Course Link:"))
		case strings.HasPrefix(line, "Course Instructor:"):
			crs.Instructor = strings.TrimSpace(strings.TrimPrefix(line, "Course Instructor:"))
		default:
			intro.body = append(intro.body, raw)
		}
	}

	sections := []*section{intro}
	for _, item := range root.Items {
		node := findHeadingByID(doc, string(item.ID))
		if node == nil {
			continue
		}
		sec := &section{}
		if m := lessonRe.FindStringSubmatch(string(item.Title)); m != nil {
			sec.lesson = &course.Lesson{Title: strings.TrimSpace(m[2])}
			fmt.Sscanf(m[1], "%d", &sec.lesson.Number)
		}

		for _, raw := range strings.Split(sectionBody(source, node), "\n") {
			line := strings.TrimSpace(raw)
			if sec.lesson != nil && sec.lesson.Link == "" && sec.bodyEmpty() &&
				strings.HasPrefix(line, "Lesson Link:") {
				sec.lesson.Link = strings.TrimSpace(strings.TrimPrefix(line, "Lesson Link:"))
				continue
			}
			sec.body = append(sec.body, raw)
		}
		sections = append(sections, sec)
	}

	chunks, err := p.assemble(name, crs, sections)
	if err != nil {
		return nil, nil, err
	}
	return crs, chunks, nil
}

// sectionBody extracts the text between a heading and the next H1/H2 heading,
// or the end of the document when no such heading follows.
func sectionBody(source []byte, heading ast.Node) string {
	lines := heading.Lines()
	if lines.Len() == 0 {
		return ""
	}
	start := lines.At(lines.Len() - 1).Stop

	end := len(source)
	if next := nextBoundary(heading); next != nil && next.Lines().Len() > 0 {
		end = next.Lines().At(0).Start
		// Back up over the "##" marker line prefix goldmark excludes from Lines.
		for end > start && source[end-1] != '\n' {
			end--
		}
	}
	if start > end {
		return ""
	}
	return strings.TrimSpace(string(source[start:end]))
}

// findHeadingByID locates a heading node by its auto-generated ID.
func findHeadingByID(node ast.Node, id string) ast.Node {
	var found ast.Node
	ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering && n.Kind() == ast.KindHeading {
			headingID, ok := n.AttributeString("id")
			if ok && string(headingID.([]byte)) == id {
				found = n
				return ast.WalkStop, nil
			}
		}
		return ast.WalkContinue, nil
	})
	return found
}

// nextBoundary finds the next H1 or H2 heading after the given node in
// document order, or nil when the node's section runs to the end.
func nextBoundary(current ast.Node) ast.Node {
	root := current
	for root.Parent() != nil {
		root = root.Parent()
	}

	var next ast.Node
	foundCurrent := false
	ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering || n.Kind() != ast.KindHeading {
			return ast.WalkContinue, nil
		}
		if !foundCurrent {
			if n == current {
				foundCurrent = true
			}
			return ast.WalkContinue, nil
		}
		if n.(*ast.Heading).Level <= 2 {
			next = n
			return ast.WalkStop, nil
		}
		return ast.WalkContinue, nil
	})
	return next
}

package tools

import (
	"context"
	"errors"

	"github.com/mike-a-ellis/course-rag/internal/vectorstore"
)

// fakeStore scripts every CourseStore response.
type fakeStore struct {
	searchResults *vectorstore.SearchResults
	lastQuery     string
	lastOpts      vectorstore.SearchOptions

	resolvedTitle string
	resolveScore  float32
	resolveErr    error

	lessonLinks    map[int]string
	lessonLinksErr error
	linkCalls      int

	meta    *vectorstore.CourseMeta
	metaErr error
}

func (f *fakeStore) Search(_ context.Context, query string, opts vectorstore.SearchOptions) *vectorstore.SearchResults {
	f.lastQuery = query
	f.lastOpts = opts
	return f.searchResults
}

func (f *fakeStore) ResolveCourseTitle(context.Context, string) (string, float32, error) {
	return f.resolvedTitle, f.resolveScore, f.resolveErr
}

func (f *fakeStore) LessonLinks(context.Context, string) (map[int]string, error) {
	f.linkCalls++
	if f.lessonLinksErr != nil {
		return nil, f.lessonLinksErr
	}
	return f.lessonLinks, nil
}

func (f *fakeStore) CourseMetadata(context.Context, string) (*vectorstore.CourseMeta, error) {
	if f.metaErr != nil {
		return nil, f.metaErr
	}
	return f.meta, nil
}

var errStoreDown = errors.New("qdrant unavailable")

// Package vectorstore persists course metadata and chunk embeddings in Qdrant
// and serves fuzzy course resolution and filtered semantic search.
package vectorstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"github.com/mike-a-ellis/course-rag/internal/course"
)

// Collection names. The catalog holds one point per course (embedded by
// title, for fuzzy name resolution); content holds one point per chunk.
const (
	CatalogCollection = "course_catalog"
	ContentCollection = "course_content"
)

// Store wraps the Qdrant client with the two course collections.
type Store struct {
	client     *qdrant.Client
	embedder   Embedder
	dimension  uint64
	maxResults int
}

// NewStore creates a Store with health validation. It performs a health check
// with retry on startup and fails fast if Qdrant is unreachable.
func NewStore(host string, port int, embedder Embedder, dimension, maxResults int) (*Store, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host: host,
		Port: port,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	store := &Store{
		client:     client,
		embedder:   embedder,
		dimension:  uint64(dimension),
		maxResults: maxResults,
	}

	ctx := context.Background()
	if err := store.healthCheckWithRetry(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}

	return store, nil
}

// healthCheckWithRetry performs health check with exponential backoff.
// Initial interval 500ms, max interval 10s, max elapsed 30s.
func (s *Store) healthCheckWithRetry(ctx context.Context) error {
	exponentialBackoff := backoff.NewExponentialBackOff()
	exponentialBackoff.InitialInterval = 500 * time.Millisecond
	exponentialBackoff.MaxInterval = 10 * time.Second
	exponentialBackoff.MaxElapsedTime = 30 * time.Second

	return backoff.Retry(func() error {
		return s.Health(ctx)
	}, exponentialBackoff)
}

// Health performs a single health check against Qdrant.
func (s *Store) Health(ctx context.Context) error {
	result, err := s.client.HealthCheck(ctx)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	if result == nil || result.Title == "" {
		return fmt.Errorf("health check returned invalid response")
	}
	return nil
}

// EnsureCollections creates the catalog and content collections if missing,
// with cosine-distance vectors and payload indexes on the content filter
// fields. Idempotent - safe to call multiple times.
func (s *Store) EnsureCollections(ctx context.Context) error {
	existing, err := s.client.ListCollections(ctx)
	if err != nil {
		return fmt.Errorf("failed to list collections: %w", err)
	}
	have := make(map[string]bool, len(existing))
	for _, name := range existing {
		have[name] = true
	}

	for _, name := range []string{CatalogCollection, ContentCollection} {
		if have[name] {
			continue
		}
		err := s.client.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: name,
			VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
				Size:     s.dimension,
				Distance: qdrant.Distance_Cosine,
			}),
		})
		if err != nil {
			return fmt.Errorf("failed to create collection %s: %w", name, err)
		}
	}

	// Without these indexes, filtered content search is 10-100x slower.
	_, err = s.client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
		CollectionName: ContentCollection,
		FieldName:      "course_title",
		FieldType:      qdrant.FieldType_FieldTypeKeyword.Enum(),
	})
	if err != nil {
		return fmt.Errorf("failed to create course_title index: %w", err)
	}
	_, err = s.client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
		CollectionName: ContentCollection,
		FieldName:      "lesson_number",
		FieldType:      qdrant.FieldType_FieldTypeInteger.Enum(),
	})
	if err != nil {
		return fmt.Errorf("failed to create lesson_number index: %w", err)
	}

	return nil
}

// Close closes the Qdrant client connection.
func (s *Store) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

// catalogPointID derives a stable point ID from the course title, so
// re-ingesting a course overwrites its catalog entry instead of duplicating it.
func catalogPointID(title string) *qdrant.PointId {
	id := uuid.NewSHA1(uuid.NameSpaceURL, []byte("course-catalog:"+title))
	return qdrant.NewIDUUID(id.String())
}

// contentPointID derives a stable point ID from (title, chunk index), making
// re-ingestion a full replace of the course's chunks.
func contentPointID(title string, index int) *qdrant.PointId {
	id := uuid.NewSHA1(uuid.NameSpaceURL, fmt.Appendf(nil, "course-content:%s:%d", title, index))
	return qdrant.NewIDUUID(id.String())
}

// upsertWithRetry performs an upsert with exponential backoff.
func (s *Store) upsertWithRetry(ctx context.Context, collection string, points []*qdrant.PointStruct) error {
	exponentialBackoff := backoff.NewExponentialBackOff()
	exponentialBackoff.InitialInterval = 500 * time.Millisecond
	exponentialBackoff.MaxInterval = 10 * time.Second
	exponentialBackoff.MaxElapsedTime = 30 * time.Second

	return backoff.Retry(func() error {
		_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
			CollectionName: collection,
			Points:         points,
		})
		return err
	}, exponentialBackoff)
}

// UpsertCourse writes or overwrites the catalog entry keyed by course title.
func (s *Store) UpsertCourse(ctx context.Context, crs *course.Course) error {
	embeddings, err := s.embedder.GenerateEmbeddings(ctx, []string{crs.Title})
	if err != nil {
		return fmt.Errorf("embed course title: %w", err)
	}

	lessonsJSON, err := json.Marshal(crs.Lessons)
	if err != nil {
		return fmt.Errorf("serialize lessons: %w", err)
	}

	point := &qdrant.PointStruct{
		Id:      catalogPointID(crs.Title),
		Vectors: qdrant.NewVectors(embeddings[0]...),
		Payload: qdrant.NewValueMap(map[string]any{
			"title":        crs.Title,
			"course_link":  crs.Link,
			"instructor":   crs.Instructor,
			"lessons_json": string(lessonsJSON),
			"lesson_count": len(crs.Lessons),
		}),
	}

	return s.upsertWithRetry(ctx, CatalogCollection, []*qdrant.PointStruct{point})
}

// UpsertChunks embeds and stores content entries. Chunks are batched in
// groups of 100 for performance.
func (s *Store) UpsertChunks(ctx context.Context, chunks []course.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Content
	}
	embeddings, err := s.embedder.GenerateEmbeddings(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}
	for i, embedding := range embeddings {
		if uint64(len(embedding)) != s.dimension {
			return fmt.Errorf("%w: chunk %d has %d dimensions, expected %d",
				ErrDimensionMismatch, i, len(embedding), s.dimension)
		}
	}

	batchSize := 100
	for i := 0; i < len(chunks); i += batchSize {
		end := min(i+batchSize, len(chunks))

		points := make([]*qdrant.PointStruct, 0, end-i)
		for j := i; j < end; j++ {
			chunk := chunks[j]
			payload := map[string]any{
				"content":      chunk.Content,
				"course_title": chunk.CourseTitle,
				"chunk_index":  chunk.Index,
			}
			if chunk.LessonNumber != nil {
				payload["lesson_number"] = *chunk.LessonNumber
			}
			points = append(points, &qdrant.PointStruct{
				Id:      contentPointID(chunk.CourseTitle, chunk.Index),
				Vectors: qdrant.NewVectors(embeddings[j]...),
				Payload: qdrant.NewValueMap(payload),
			})
		}

		if err := s.upsertWithRetry(ctx, ContentCollection, points); err != nil {
			return fmt.Errorf("failed to upsert batch %d-%d: %w", i, end, err)
		}
	}

	return nil
}

// ResolveCourseTitle finds the best-matching course title for a partial or
// misspelled name via nearest-neighbor search over the catalog. The closest
// entry always wins when the catalog is non-empty - no similarity threshold
// is applied; the score is returned so callers can layer one on. An empty
// title with nil error means the catalog had no entries.
func (s *Store) ResolveCourseTitle(ctx context.Context, name string) (string, float32, error) {
	embeddings, err := s.embedder.GenerateEmbeddings(ctx, []string{name})
	if err != nil {
		return "", 0, fmt.Errorf("embed course name: %w", err)
	}

	results, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: CatalogCollection,
		Query:          qdrant.NewQuery(embeddings[0]...),
		Limit:          qdrant.PtrOf(uint64(1)),
		WithPayload:    qdrant.NewWithPayloadInclude("title"),
	})
	if err != nil {
		return "", 0, fmt.Errorf("query catalog: %w", err)
	}
	if len(results) == 0 {
		return "", 0, nil
	}

	return results[0].Payload["title"].GetStringValue(), results[0].Score, nil
}

// Search runs a filtered nearest-neighbor query over the content collection.
// A course name that resolves to nothing, and any underlying store failure,
// are captured as an error-marked result set - never returned as an error -
// so the message can flow back to the LLM as tool-result content.
func (s *Store) Search(ctx context.Context, query string, opts SearchOptions) *SearchResults {
	var courseTitle string
	if opts.CourseName != "" {
		title, _, err := s.ResolveCourseTitle(ctx, opts.CourseName)
		if err != nil {
			return ErrorResults("Search error: %v", err)
		}
		if title == "" {
			return ErrorResults("No course found matching '%s'", opts.CourseName)
		}
		courseTitle = title
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = s.maxResults
	}

	embeddings, err := s.embedder.GenerateEmbeddings(ctx, []string{query})
	if err != nil {
		return ErrorResults("Search error: %v", err)
	}

	var filter *qdrant.Filter
	var must []*qdrant.Condition
	if courseTitle != "" {
		must = append(must, qdrant.NewMatch("course_title", courseTitle))
	}
	if opts.LessonNumber != nil {
		must = append(must, qdrant.NewMatchInt("lesson_number", int64(*opts.LessonNumber)))
	}
	if len(must) > 0 {
		filter = &qdrant.Filter{Must: must}
	}

	results, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: ContentCollection,
		Query:          qdrant.NewQuery(embeddings[0]...),
		Filter:         filter,
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return ErrorResults("Search error: %v", err)
	}

	out := &SearchResults{
		Documents: make([]string, 0, len(results)),
		Metadata:  make([]ChunkMetadata, 0, len(results)),
		Scores:    make([]float32, 0, len(results)),
	}
	for _, result := range results {
		payload := result.Payload

		meta := ChunkMetadata{
			CourseTitle: payload["course_title"].GetStringValue(),
			ChunkIndex:  int(payload["chunk_index"].GetIntegerValue()),
		}
		if v, ok := payload["lesson_number"]; ok {
			n := int(v.GetIntegerValue())
			meta.LessonNumber = &n
		}

		out.Documents = append(out.Documents, payload["content"].GetStringValue())
		out.Metadata = append(out.Metadata, meta)
		out.Scores = append(out.Scores, result.Score)
	}
	return out
}

// CourseMetadata retrieves the catalog entry for an exact course title.
// Returns ErrCourseNotFound if the course has no catalog entry.
func (s *Store) CourseMetadata(ctx context.Context, title string) (*CourseMeta, error) {
	points, err := s.client.Get(ctx, &qdrant.GetPoints{
		CollectionName: CatalogCollection,
		Ids:            []*qdrant.PointId{catalogPointID(title)},
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("get catalog entry: %w", err)
	}
	if len(points) == 0 {
		return nil, ErrCourseNotFound
	}

	payload := points[0].Payload
	meta := &CourseMeta{
		Title:       payload["title"].GetStringValue(),
		Link:        payload["course_link"].GetStringValue(),
		Instructor:  payload["instructor"].GetStringValue(),
		LessonCount: int(payload["lesson_count"].GetIntegerValue()),
	}
	if raw := payload["lessons_json"].GetStringValue(); raw != "" {
		if err := json.Unmarshal([]byte(raw), &meta.Lessons); err != nil {
			return nil, fmt.Errorf("parse lessons for %q: %w", title, err)
		}
	}
	return meta, nil
}

// LessonLinks returns the lesson number to link mapping for a course, derived
// from the catalog entry's lesson list. An absent course or a lesson without
// a link simply yields a missing key, not an error.
func (s *Store) LessonLinks(ctx context.Context, courseTitle string) (map[int]string, error) {
	meta, err := s.CourseMetadata(ctx, courseTitle)
	if err != nil {
		if err == ErrCourseNotFound {
			return map[int]string{}, nil
		}
		return nil, err
	}

	links := make(map[int]string, len(meta.Lessons))
	for _, lesson := range meta.Lessons {
		if lesson.Link != "" {
			links[lesson.Number] = lesson.Link
		}
	}
	return links, nil
}

// ExistingCourseTitles lists all course titles in the catalog, sorted.
func (s *Store) ExistingCourseTitles(ctx context.Context) ([]string, error) {
	seen := make(map[string]bool)
	var titles []string
	var offset *qdrant.PointId
	batchSize := uint32(100)

	for {
		results, err := s.client.Scroll(ctx, &qdrant.ScrollPoints{
			CollectionName: CatalogCollection,
			Limit:          qdrant.PtrOf(batchSize),
			Offset:         offset,
			WithPayload:    qdrant.NewWithPayloadInclude("title"),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to scroll catalog: %w", err)
		}

		for _, result := range results {
			// The scroll offset is inclusive, so page boundaries repeat a point.
			if title := result.Payload["title"].GetStringValue(); title != "" && !seen[title] {
				seen[title] = true
				titles = append(titles, title)
			}
		}

		if uint32(len(results)) < batchSize {
			break
		}
		offset = results[len(results)-1].Id
	}

	sort.Strings(titles)
	return titles, nil
}

// CourseCount returns the number of catalog entries.
func (s *Store) CourseCount(ctx context.Context) (int, error) {
	collection, err := s.client.GetCollectionInfo(ctx, CatalogCollection)
	if err != nil {
		return 0, fmt.Errorf("failed to get catalog collection: %w", err)
	}
	return int(collection.GetPointsCount()), nil
}

// ClearAll deletes all courses and chunks by dropping and recreating both
// collections. Used by full re-ingestion.
func (s *Store) ClearAll(ctx context.Context) error {
	for _, name := range []string{CatalogCollection, ContentCollection} {
		if err := s.client.DeleteCollection(ctx, name); err != nil {
			return fmt.Errorf("failed to delete collection %s: %w", name, err)
		}
	}
	return s.EnsureCollections(ctx)
}

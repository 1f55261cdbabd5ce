package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ametel/pressbox/models"
	"github.com/ametel/pressbox/repository"
	"github.com/ametel/pressbox/utils"
)

// memStore is an in-memory ArticleStore. failures makes the next N calls
// fail with a transient error to exercise the retry path.
type memStore struct {
	mu       sync.Mutex
	seq      uint
	items    map[uint]*models.Article
	failures int
	calls    int
}

func newMemStore() *memStore {
	return &memStore{items: map[uint]*models.Article{}}
}

func (m *memStore) checkFailure() error {
	m.calls++
	if m.failures > 0 {
		m.failures--
		return errors.New("transient store failure")
	}
	return nil
}

func (m *memStore) FindByID(ctx context.Context, id uint) (*models.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkFailure(); err != nil {
		return nil, err
	}
	a, ok := m.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *memStore) FindAll(ctx context.Context) ([]models.Article, error) {
	return m.FindWhere(ctx, repository.Predicate{})
}

func (m *memStore) FindWhere(ctx context.Context, p repository.Predicate) ([]models.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkFailure(); err != nil {
		return nil, err
	}
	return m.selectLocked(p), nil
}

func (m *memStore) FindPage(ctx context.Context, offset, limit int, p repository.Predicate) ([]models.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkFailure(); err != nil {
		return nil, err
	}
	all := m.selectLocked(p)
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (m *memStore) Count(ctx context.Context, p repository.Predicate) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkFailure(); err != nil {
		return 0, err
	}
	return int64(len(m.selectLocked(p))), nil
}

func (m *memStore) Insert(ctx context.Context, a *models.Article) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkFailure(); err != nil {
		return err
	}
	m.seq++
	a.ID = m.seq
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	cp := *a
	m.items[a.ID] = &cp
	return nil
}

func (m *memStore) Save(ctx context.Context, a *models.Article) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkFailure(); err != nil {
		return err
	}
	if _, ok := m.items[a.ID]; !ok {
		return repository.ErrNotFound
	}
	a.UpdatedAt = time.Now()
	cp := *a
	m.items[a.ID] = &cp
	return nil
}

func (m *memStore) Delete(ctx context.Context, a *models.Article) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkFailure(); err != nil {
		return err
	}
	if _, ok := m.items[a.ID]; !ok {
		return repository.ErrNotFound
	}
	delete(m.items, a.ID)
	return nil
}

func (m *memStore) IncrementViews(ctx context.Context, id uint) (*models.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkFailure(); err != nil {
		return nil, err
	}
	a, ok := m.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	a.Views++
	cp := *a
	return &cp, nil
}

func (m *memStore) TogglePublished(ctx context.Context, id uint) (*models.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkFailure(); err != nil {
		return nil, err
	}
	a, ok := m.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	a.Published = !a.Published
	cp := *a
	return &cp, nil
}

func (m *memStore) Commit(ctx context.Context) error { return nil }

func (m *memStore) selectLocked(p repository.Predicate) []models.Article {
	var out []models.Article
	for _, a := range m.items {
		if p.Published != nil && a.Published != *p.Published {
			continue
		}
		if p.Term != "" && !matches(a, p.Term) {
			continue
		}
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func matches(a *models.Article, term string) bool {
	needle := strings.ToLower(term)
	return strings.Contains(strings.ToLower(a.Title), needle) ||
		strings.Contains(strings.ToLower(a.Content), needle)
}

const testSecret = "service-test-secret"

func newTestService(store repository.ArticleStore) *ArticleService {
	return NewArticleService(store, repository.NewQueryBuilder(), utils.NewDeleteTokenIssuer(testSecret), 6, time.Second)
}

func seed(t *testing.T, store *memStore, n int, published bool) []models.Article {
	t.Helper()
	svc := newTestService(store)
	out := make([]models.Article, 0, n)
	for i := 0; i < n; i++ {
		a, err := svc.Create(context.Background(), models.ArticleInput{
			Title:     fmt.Sprintf("Article %d", i+1),
			Content:   fmt.Sprintf("Content %d", i+1),
			Published: &published,
		})
		require.NoError(t, err)
		out = append(out, *a)
	}
	return out
}

func TestListPublishedPagination(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	seed(t, store, 7, true)
	seed(t, store, 3, false)

	page1, err := svc.ListPublished(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, page1.Items, 6)
	assert.Equal(t, int64(7), page1.Total)
	assert.Equal(t, 2, page1.TotalPages)
	for _, a := range page1.Items {
		assert.True(t, a.Published)
	}

	page2, err := svc.ListPublished(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, page2.Items, 1)
	assert.Equal(t, 2, page2.TotalPages)

	// Past the end: empty page, not an error.
	page3, err := svc.ListPublished(context.Background(), 3)
	require.NoError(t, err)
	assert.Empty(t, page3.Items)

	// Non-positive pages are treated as the first page.
	pageZero, err := svc.ListPublished(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, pageZero.Items, 6)
}

func TestTotalPages(t *testing.T) {
	tests := []struct {
		total int64
		size  int
		want  int
	}{
		{0, 6, 0},
		{1, 6, 1},
		{6, 6, 1},
		{7, 6, 2},
		{12, 6, 2},
		{13, 6, 3},
		{5, 1, 5},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, totalPages(tt.total, tt.size), "total=%d size=%d", tt.total, tt.size)
	}
}

func TestSearch(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)

	published := true
	draft := false
	_, err := svc.Create(context.Background(), models.ArticleInput{Title: "Go generics", Content: "deep dive", Published: &published})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), models.ArticleInput{Title: "Rust ownership", Content: "also mentions go", Published: &draft})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), models.ArticleInput{Title: "Unrelated", Content: "nothing here", Published: &published})
	require.NoError(t, err)

	// Case-insensitive, matches title or content, spans both publish states.
	items, err := svc.Search(context.Background(), "GO")
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestSearchEmptyTermRejected(t *testing.T) {
	svc := newTestService(newMemStore())

	var ve *ValidationError
	_, err := svc.Search(context.Background(), "   ")
	require.ErrorAs(t, err, &ve)
}

func TestGetForDisplayIncrementsViews(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	created := seed(t, store, 1, true)

	const k = 5
	var last *models.Article
	for i := 0; i < k; i++ {
		var err error
		last, err = svc.GetForDisplay(context.Background(), created[0].ID)
		require.NoError(t, err)
	}
	assert.Equal(t, int64(k), last.Views)
}

func TestGetForDisplayNotFound(t *testing.T) {
	svc := newTestService(newMemStore())
	_, err := svc.GetForDisplay(context.Background(), 404)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateValidationFailurePersistsNothing(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)

	var ve *ValidationError
	_, err := svc.Create(context.Background(), models.ArticleInput{Title: "  ", Content: ""})
	require.ErrorAs(t, err, &ve)
	assert.Len(t, ve.Fields, 2)

	all, err := svc.ListAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCreateSanitizesSubmission(t *testing.T) {
	svc := newTestService(newMemStore())

	a, err := svc.Create(context.Background(), models.ArticleInput{
		Title:   "Hello",
		Content: `before<script>alert("x")</script>after`,
	})
	require.NoError(t, err)
	assert.NotContains(t, a.Content, "<script>")
	assert.Contains(t, a.Content, "before")
}

func TestUpdate(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	created := seed(t, store, 1, true)

	updated, err := svc.Update(context.Background(), created[0].ID, models.ArticleInput{Title: "New title", Content: "New content"})
	require.NoError(t, err)
	assert.Equal(t, "New title", updated.Title)
	assert.True(t, updated.Published, "omitted published flag keeps the stored value")

	_, err = svc.Update(context.Background(), 404, models.ArticleInput{Title: "t", Content: "c"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTogglePublishedIsInvolution(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	created := seed(t, store, 1, true)

	once, err := svc.TogglePublished(context.Background(), created[0].ID)
	require.NoError(t, err)
	assert.False(t, once.Published)

	twice, err := svc.TogglePublished(context.Background(), created[0].ID)
	require.NoError(t, err)
	assert.True(t, twice.Published)

	_, err = svc.TogglePublished(context.Background(), 404)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteTokenGuard(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	created := seed(t, store, 2, true)
	issuer := utils.NewDeleteTokenIssuer(testSecret)

	// Wrong token: forbidden, store unchanged.
	err := svc.Delete(context.Background(), created[0].ID, "session-a", "bogus")
	assert.ErrorIs(t, err, ErrForbidden)

	// Token issued to another session: still forbidden.
	other := issuer.DeleteToken("session-b", created[0].ID)
	err = svc.Delete(context.Background(), created[0].ID, "session-a", other)
	assert.ErrorIs(t, err, ErrForbidden)

	all, err := svc.ListAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 2)

	// Correct token removes the record.
	token := issuer.DeleteToken("session-a", created[0].ID)
	require.NoError(t, svc.Delete(context.Background(), created[0].ID, "session-a", token))

	all, err = svc.ListAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestTransientFailureRetriedOnce(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	seed(t, store, 1, true)

	store.failures = 1
	items, err := svc.ListAll(context.Background())
	require.NoError(t, err, "a single transient failure is retried")
	assert.Len(t, items, 1)

	store.failures = 2
	_, err = svc.ListAll(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestLifecycleScenario(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	issuer := utils.NewDeleteTokenIssuer(testSecret)

	published := true
	a, err := svc.Create(context.Background(), models.ArticleInput{Title: "A", Content: "B", Published: &published})
	require.NoError(t, err)

	page, err := svc.ListPublished(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, int64(1), page.Total)

	_, err = svc.TogglePublished(context.Background(), a.ID)
	require.NoError(t, err)

	page, err = svc.ListPublished(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, page.Items)

	drafts, err := svc.ListUnpublished(context.Background())
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, a.ID, drafts[0].ID)

	token := issuer.DeleteToken("sess", a.ID)
	require.NoError(t, svc.Delete(context.Background(), a.ID, "sess", token))

	all, err := svc.ListAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

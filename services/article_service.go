package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ametel/pressbox/models"
	"github.com/ametel/pressbox/repository"
	"github.com/ametel/pressbox/utils"
)

// TokenVerifier checks a delete confirmation token against the session that
// issued it.
type TokenVerifier interface {
	VerifyDeleteToken(sessionID string, articleID uint, token string) bool
}

// ListResult is a page of the published listing.
type ListResult struct {
	Items      []models.Article `json:"items"`
	Total      int64            `json:"total"`
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
	TotalPages int              `json:"total_pages"`
}

// ArticleService orchestrates the article use cases over an ArticleStore.
// Dependencies are passed explicitly; the service owns no state beyond them.
type ArticleService struct {
	store    repository.ArticleStore
	queries  repository.QueryBuilder
	tokens   TokenVerifier
	pageSize int
	timeout  time.Duration
}

const defaultStoreTimeout = 3 * time.Second

func NewArticleService(store repository.ArticleStore, queries repository.QueryBuilder, tokens TokenVerifier, pageSize int, timeout time.Duration) *ArticleService {
	if pageSize <= 0 {
		pageSize = 6
	}
	if timeout <= 0 {
		timeout = defaultStoreTimeout
	}
	return &ArticleService{
		store:    store,
		queries:  queries,
		tokens:   tokens,
		pageSize: pageSize,
		timeout:  timeout,
	}
}

// PageSize returns the configured listing page size.
func (s *ArticleService) PageSize() int {
	return s.pageSize
}

// do runs op under a bounded timeout and retries transient store failures
// exactly once before surfacing ErrUnavailable. Not-found is never retried.
func (s *ArticleService) do(ctx context.Context, op func(context.Context) error) error {
	attempt := func() error {
		cctx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()
		return op(cctx)
	}

	err := attempt()
	if err == nil || errors.Is(err, repository.ErrNotFound) {
		return err
	}
	if ctx.Err() != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if utils.Sugar != nil {
		utils.Sugar.Warnf("store call failed, retrying once: %v", err)
	}
	if err = attempt(); err == nil || errors.Is(err, repository.ErrNotFound) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

func mapNotFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

// ListPublished returns the requested page of published articles in stable
// order. Pages beyond the end yield an empty page, never an error.
func (s *ArticleService) ListPublished(ctx context.Context, page int) (*ListResult, error) {
	if page < 1 {
		page = 1
	}
	pred := s.queries.PublishedOnly()

	var (
		items []models.Article
		total int64
	)
	err := s.do(ctx, func(cctx context.Context) error {
		var err error
		if total, err = s.store.Count(cctx, pred); err != nil {
			return err
		}
		items, err = s.store.FindPage(cctx, (page-1)*s.pageSize, s.pageSize, pred)
		return err
	})
	if err != nil {
		return nil, err
	}

	return &ListResult{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   s.pageSize,
		TotalPages: totalPages(total, s.pageSize),
	}, nil
}

func totalPages(total int64, pageSize int) int {
	return int((total + int64(pageSize) - 1) / int64(pageSize))
}

// Search returns every article whose title or content contains the term,
// case-insensitively, regardless of publish state. Pagination does not apply;
// the full match set is returned.
func (s *ArticleService) Search(ctx context.Context, term string) ([]models.Article, error) {
	if strings.TrimSpace(term) == "" {
		return nil, &ValidationError{Fields: []models.FieldError{{Field: "q", Message: "search term cannot be empty"}}}
	}
	var items []models.Article
	err := s.do(ctx, func(cctx context.Context) error {
		var err error
		items, err = s.store.FindWhere(cctx, s.queries.Search(term))
		return err
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// ListAll returns every article for the admin view.
func (s *ArticleService) ListAll(ctx context.Context) ([]models.Article, error) {
	var items []models.Article
	err := s.do(ctx, func(cctx context.Context) error {
		var err error
		items, err = s.store.FindAll(cctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// ListUnpublished returns the drafts shown on the history view.
func (s *ArticleService) ListUnpublished(ctx context.Context) ([]models.Article, error) {
	var items []models.Article
	err := s.do(ctx, func(cctx context.Context) error {
		var err error
		items, err = s.store.FindWhere(cctx, s.queries.UnpublishedOnly())
		return err
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// Get fetches one article without touching its view counter, for the edit
// form.
func (s *ArticleService) Get(ctx context.Context, id uint) (*models.Article, error) {
	var article *models.Article
	err := s.do(ctx, func(cctx context.Context) error {
		var err error
		article, err = s.store.FindByID(cctx, id)
		return err
	})
	if err != nil {
		return nil, mapNotFound(err)
	}
	return article, nil
}

// GetForDisplay fetches one article and durably increments its view counter,
// exactly once per call. The increment happens in the store as an atomic
// column update so concurrent displays never lose counts.
func (s *ArticleService) GetForDisplay(ctx context.Context, id uint) (*models.Article, error) {
	var article *models.Article
	err := s.do(ctx, func(cctx context.Context) error {
		var err error
		if article, err = s.store.IncrementViews(cctx, id); err != nil {
			return err
		}
		return s.store.Commit(cctx)
	})
	if err != nil {
		return nil, mapNotFound(err)
	}
	return article, nil
}

// Create validates and persists a new article. On validation failure nothing
// is persisted and a *ValidationError is returned.
func (s *ArticleService) Create(ctx context.Context, input models.ArticleInput) (*models.Article, error) {
	input = sanitizeInput(input)
	if fieldErrs := input.Validate(); len(fieldErrs) > 0 {
		return nil, &ValidationError{Fields: fieldErrs}
	}

	article := &models.Article{}
	input.Apply(article)

	err := s.do(ctx, func(cctx context.Context) error {
		if err := s.store.Insert(cctx, article); err != nil {
			return err
		}
		return s.store.Commit(cctx)
	})
	if err != nil {
		return nil, err
	}
	return article, nil
}

// Update applies a validated submission to an existing article.
func (s *ArticleService) Update(ctx context.Context, id uint, input models.ArticleInput) (*models.Article, error) {
	input = sanitizeInput(input)
	if fieldErrs := input.Validate(); len(fieldErrs) > 0 {
		return nil, &ValidationError{Fields: fieldErrs}
	}

	var article *models.Article
	err := s.do(ctx, func(cctx context.Context) error {
		var err error
		if article, err = s.store.FindByID(cctx, id); err != nil {
			return err
		}
		input.Apply(article)
		if err = s.store.Save(cctx, article); err != nil {
			return err
		}
		return s.store.Commit(cctx)
	})
	if err != nil {
		return nil, mapNotFound(err)
	}
	return article, nil
}

// TogglePublished flips the publish flag atomically and returns the updated
// article. Applying it twice restores the original state.
func (s *ArticleService) TogglePublished(ctx context.Context, id uint) (*models.Article, error) {
	var article *models.Article
	err := s.do(ctx, func(cctx context.Context) error {
		var err error
		if article, err = s.store.TogglePublished(cctx, id); err != nil {
			return err
		}
		return s.store.Commit(cctx)
	})
	if err != nil {
		return nil, mapNotFound(err)
	}
	return article, nil
}

// Delete permanently removes an article once the confirmation token checks
// out against the caller's session. An invalid token leaves the store
// untouched and yields ErrForbidden.
func (s *ArticleService) Delete(ctx context.Context, id uint, sessionID, token string) error {
	if s.tokens == nil || !s.tokens.VerifyDeleteToken(sessionID, id, token) {
		return ErrForbidden
	}

	err := s.do(ctx, func(cctx context.Context) error {
		article, err := s.store.FindByID(cctx, id)
		if err != nil {
			return err
		}
		if err = s.store.Delete(cctx, article); err != nil {
			return err
		}
		return s.store.Commit(cctx)
	})
	return mapNotFound(err)
}

func sanitizeInput(in models.ArticleInput) models.ArticleInput {
	in.Title = utils.Sanitize(strings.TrimSpace(in.Title))
	in.Content = utils.Sanitize(in.Content)
	return in
}

package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/ametel/pressbox/models"
)

// ErrNotFound is returned when no article matches the requested id.
var ErrNotFound = errors.New("article not found")

// ArticleStore is the persistence contract consumed by the service layer.
// IncrementViews and TogglePublished are single atomic updates so concurrent
// calls on the same row are serialized by the database and no increment is
// lost. Commit exists for stores with deferred writes; the MySQL store
// auto-commits each statement.
type ArticleStore interface {
	FindByID(ctx context.Context, id uint) (*models.Article, error)
	FindAll(ctx context.Context) ([]models.Article, error)
	FindWhere(ctx context.Context, p Predicate) ([]models.Article, error)
	FindPage(ctx context.Context, offset, limit int, p Predicate) ([]models.Article, error)
	Count(ctx context.Context, p Predicate) (int64, error)
	Insert(ctx context.Context, a *models.Article) error
	Save(ctx context.Context, a *models.Article) error
	Delete(ctx context.Context, a *models.Article) error
	IncrementViews(ctx context.Context, id uint) (*models.Article, error)
	TogglePublished(ctx context.Context, id uint) (*models.Article, error)
	Commit(ctx context.Context) error
}

// listOrder keeps pagination deterministic; id breaks created_at ties.
const listOrder = "created_at DESC, id DESC"

// GormArticleStore implements ArticleStore on top of GORM/MySQL.
type GormArticleStore struct {
	db *gorm.DB
}

func NewGormArticleStore(db *gorm.DB) *GormArticleStore {
	return &GormArticleStore{db: db}
}

func (s *GormArticleStore) query(ctx context.Context, p Predicate) *gorm.DB {
	tx := s.db.WithContext(ctx).Model(&models.Article{})
	if p.Published != nil {
		tx = tx.Where("published = ?", *p.Published)
	}
	if p.Term != "" {
		like := "%" + strings.ToLower(p.Term) + "%"
		tx = tx.Where("LOWER(title) LIKE ? OR LOWER(content) LIKE ?", like, like)
	}
	return tx
}

func (s *GormArticleStore) FindByID(ctx context.Context, id uint) (*models.Article, error) {
	var article models.Article
	if err := s.db.WithContext(ctx).First(&article, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find article %d: %w", id, err)
	}
	return &article, nil
}

func (s *GormArticleStore) FindAll(ctx context.Context) ([]models.Article, error) {
	return s.FindWhere(ctx, Predicate{})
}

func (s *GormArticleStore) FindWhere(ctx context.Context, p Predicate) ([]models.Article, error) {
	var articles []models.Article
	if err := s.query(ctx, p).Order(listOrder).Find(&articles).Error; err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	return articles, nil
}

func (s *GormArticleStore) FindPage(ctx context.Context, offset, limit int, p Predicate) ([]models.Article, error) {
	var articles []models.Article
	if err := s.query(ctx, p).Order(listOrder).Offset(offset).Limit(limit).Find(&articles).Error; err != nil {
		return nil, fmt.Errorf("list articles page: %w", err)
	}
	return articles, nil
}

func (s *GormArticleStore) Count(ctx context.Context, p Predicate) (int64, error) {
	var total int64
	if err := s.query(ctx, p).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("count articles: %w", err)
	}
	return total, nil
}

func (s *GormArticleStore) Insert(ctx context.Context, a *models.Article) error {
	if err := s.db.WithContext(ctx).Create(a).Error; err != nil {
		return fmt.Errorf("insert article: %w", err)
	}
	return nil
}

func (s *GormArticleStore) Save(ctx context.Context, a *models.Article) error {
	if err := s.db.WithContext(ctx).Save(a).Error; err != nil {
		return fmt.Errorf("save article %d: %w", a.ID, err)
	}
	return nil
}

func (s *GormArticleStore) Delete(ctx context.Context, a *models.Article) error {
	res := s.db.WithContext(ctx).Delete(&models.Article{}, a.ID)
	if res.Error != nil {
		return fmt.Errorf("delete article %d: %w", a.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// IncrementViews bumps the view counter with a single column-expression
// update, then re-reads the row.
func (s *GormArticleStore) IncrementViews(ctx context.Context, id uint) (*models.Article, error) {
	res := s.db.WithContext(ctx).Model(&models.Article{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", 1))
	if res.Error != nil {
		return nil, fmt.Errorf("increment views for article %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return s.FindByID(ctx, id)
}

// TogglePublished flips the flag atomically in the database.
func (s *GormArticleStore) TogglePublished(ctx context.Context, id uint) (*models.Article, error) {
	res := s.db.WithContext(ctx).Model(&models.Article{}).
		Where("id = ?", id).
		UpdateColumn("published", gorm.Expr("NOT published"))
	if res.Error != nil {
		return nil, fmt.Errorf("toggle published for article %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return s.FindByID(ctx, id)
}

// Commit is a no-op: every mutating call above runs in its own auto-committed
// statement, which matches the one-persist-per-use-case boundary.
func (s *GormArticleStore) Commit(ctx context.Context) error {
	return nil
}

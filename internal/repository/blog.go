package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/KarunyaReddyJ/My-Blog-App/internal/cache"
	"github.com/KarunyaReddyJ/My-Blog-App/internal/models"
	"github.com/KarunyaReddyJ/My-Blog-App/internal/observability"

	"gorm.io/gorm"
)

// BlogFilter describes the query-level filters for listing blogs.
// PublicOnly and OwnerID are the two listing modes: the public feed
// filters to is_public, the "my blogs" view filters to the owner and
// includes private entries.
type BlogFilter struct {
	Search        string
	Tag           string
	AuthorID      uint
	OwnerID       uint
	PublicOnly    bool
	Limit         int
	Offset        int
	CurrentUserID uint
}

// BlogRepository defines the interface for blog data operations
type BlogRepository interface {
	Create(ctx context.Context, blog *models.Blog) error
	GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Blog, error)
	List(ctx context.Context, f BlogFilter) ([]*models.Blog, int64, error)
	Update(ctx context.Context, blog *models.Blog) error
	Delete(ctx context.Context, id uint) error
	IncrementViews(ctx context.Context, id uint) error
	IsLiked(ctx context.Context, userID, blogID uint) (bool, error)
	Like(ctx context.Context, userID, blogID uint) error
	Unlike(ctx context.Context, userID, blogID uint) error
	CountLikes(ctx context.Context, blogID uint) (int64, error)
}

type blogRepository struct {
	db      *gorm.DB
	traces  *observability.TraceLayer
	metrics *observability.DatabaseMetrics
}

// NewBlogRepository creates a new blog repository
func NewBlogRepository(db *gorm.DB) BlogRepository {
	return &blogRepository{
		db:      db,
		traces:  observability.GetTraceLayer(),
		metrics: observability.NewDatabaseMetrics(db),
	}
}

// instrument opens a repository span and a latency sample for one method.
// The returned func must be deferred.
func (r *blogRepository) instrument(ctx context.Context, method string) (context.Context, func()) {
	ctx, span := r.traces.TraceRepositoryMethod(ctx, method, "blogs")
	stop := r.metrics.TrackQuery(method, "blogs")
	return ctx, func() {
		stop()
		span.End()
	}
}

func (r *blogRepository) Create(ctx context.Context, blog *models.Blog) error {
	ctx, done := r.instrument(ctx, "Create")
	defer done()

	if err := r.db.WithContext(ctx).Create(blog).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePublicFeed(ctx)
	return nil
}

func (r *blogRepository) GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Blog, error) {
	ctx, done := r.instrument(ctx, "GetByID")
	defer done()

	var blog models.Blog
	err := r.applyBlogDetails(r.db.WithContext(ctx), currentUserID).
		Preload("User").
		First(&blog, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Blog", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &blog, nil
}

func (r *blogRepository) List(ctx context.Context, f BlogFilter) ([]*models.Blog, int64, error) {
	ctx, done := r.instrument(ctx, "List")
	defer done()

	filtered := r.applyFilter(r.db.WithContext(ctx).Model(&models.Blog{}), f)

	var total int64
	if err := filtered.Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	var blogs []*models.Blog
	query := r.applyFilter(r.applyBlogDetails(r.db.WithContext(ctx), f.CurrentUserID), f).
		Preload("User").
		Order("created_at DESC").
		Limit(f.Limit).
		Offset(f.Offset)
	if err := query.Find(&blogs).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return blogs, total, nil
}

// applyFilter appends the WHERE clauses for the requested filter.
// Tags are stored as a lowercase JSON array, so an exact-tag match is a
// substring match on the quoted tag.
func (r *blogRepository) applyFilter(db *gorm.DB, f BlogFilter) *gorm.DB {
	if f.PublicOnly {
		db = db.Where("blogs.is_public = ?", true)
	}
	if f.OwnerID != 0 {
		db = db.Where("blogs.user_id = ?", f.OwnerID)
	}
	if f.AuthorID != 0 {
		db = db.Where("blogs.user_id = ?", f.AuthorID)
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		db = db.Where("blogs.title ILIKE ? OR blogs.content ILIKE ?", like, like)
	}
	if f.Tag != "" {
		db = db.Where("blogs.tags LIKE ?", `%"`+strings.ToLower(f.Tag)+`"%`)
	}
	return db
}

// applyBlogDetails adds subqueries to fetch the like count and liked status in a single query.
func (r *blogRepository) applyBlogDetails(db *gorm.DB, currentUserID uint) *gorm.DB {
	selectQuery := "blogs.*, " +
		"(SELECT COUNT(*) FROM blog_likes WHERE blog_likes.blog_id = blogs.id) as likes_count"

	if currentUserID != 0 {
		return db.Select(selectQuery+", EXISTS(SELECT 1 FROM blog_likes WHERE blog_likes.blog_id = blogs.id AND blog_likes.user_id = ?) as liked", currentUserID)
	}

	return db.Select(selectQuery + ", false as liked")
}

func (r *blogRepository) Update(ctx context.Context, blog *models.Blog) error {
	ctx, done := r.instrument(ctx, "Update")
	defer done()

	if err := r.db.WithContext(ctx).Save(blog).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePublicFeed(ctx)
	return nil
}

func (r *blogRepository) Delete(ctx context.Context, id uint) error {
	ctx, done := r.instrument(ctx, "Delete")
	defer done()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("blog_id = ?", id).Delete(&models.BlogLike{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Blog{}, id).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePublicFeed(ctx)
	return nil
}

// IncrementViews bumps the counter atomically in SQL. The cached feed is
// left alone; view counts there go stale for at most the feed TTL.
func (r *blogRepository) IncrementViews(ctx context.Context, id uint) error {
	ctx, done := r.instrument(ctx, "IncrementViews")
	defer done()

	if err := r.db.WithContext(ctx).
		Model(&models.Blog{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + 1")).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *blogRepository) IsLiked(ctx context.Context, userID, blogID uint) (bool, error) {
	ctx, done := r.instrument(ctx, "IsLiked")
	defer done()

	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.BlogLike{}).
		Where("user_id = ? AND blog_id = ?", userID, blogID).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *blogRepository) Like(ctx context.Context, userID, blogID uint) error {
	ctx, done := r.instrument(ctx, "Like")
	defer done()

	// INSERT ... ON CONFLICT DO NOTHING keeps concurrent likes from the
	// same user down to a single membership row.
	result := r.db.WithContext(ctx).Exec(
		`INSERT INTO blog_likes (user_id, blog_id, created_at)
		 VALUES (?, ?, NOW())
		 ON CONFLICT (user_id, blog_id) DO NOTHING`,
		userID, blogID,
	)
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	cache.InvalidatePublicFeed(ctx)
	return nil
}

func (r *blogRepository) Unlike(ctx context.Context, userID, blogID uint) error {
	ctx, done := r.instrument(ctx, "Unlike")
	defer done()

	err := r.db.WithContext(ctx).
		Where("user_id = ? AND blog_id = ?", userID, blogID).
		Delete(&models.BlogLike{}).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePublicFeed(ctx)
	return nil
}

func (r *blogRepository) CountLikes(ctx context.Context, blogID uint) (int64, error) {
	ctx, done := r.instrument(ctx, "CountLikes")
	defer done()

	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.BlogLike{}).
		Where("blog_id = ?", blogID).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

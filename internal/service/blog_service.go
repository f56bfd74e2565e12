// Package service implements the business rules on top of the repositories.
package service

import (
	"context"
	"math"
	"strings"

	"github.com/KarunyaReddyJ/My-Blog-App/internal/cache"
	"github.com/KarunyaReddyJ/My-Blog-App/internal/models"
	"github.com/KarunyaReddyJ/My-Blog-App/internal/observability"
	"github.com/KarunyaReddyJ/My-Blog-App/internal/repository"
)

const (
	maxTitleLen   = 200
	minContentLen = 10
	maxSummaryLen = 300
	maxTagLen     = 30
	wordsPerMin   = 200

	defaultPageSize = 9
	maxPageSize     = 100
)

// BlogService applies validation and the visibility/ownership policy
// before delegating to the repository.
type BlogService struct {
	blogRepo repository.BlogRepository
}

type CreateBlogInput struct {
	UserID   uint
	Title    string
	Content  string
	Summary  string
	Images   []string
	Tags     []string
	IsPublic bool
}

// UpdateBlogInput carries the partial update payload. Pointer fields
// distinguish "not provided" from "set to zero value".
type UpdateBlogInput struct {
	UserID   uint
	BlogID   uint
	Title    *string
	Content  *string
	Summary  *string
	Images   *[]string
	Tags     *[]string
	IsPublic *bool
}

type ListBlogsInput struct {
	Page          int
	Limit         int
	Search        string
	Tag           string
	AuthorID      uint
	CurrentUserID uint
}

// BlogPage is a page of blogs plus the pagination envelope totals.
type BlogPage struct {
	Blogs   []*models.Blog
	Current int
	Pages   int
	Total   int64
}

// LikeResult is the outcome of a like toggle.
type LikeResult struct {
	Likes int64 `json:"likes"`
	Liked bool  `json:"liked"`
}

func NewBlogService(blogRepo repository.BlogRepository) *BlogService {
	return &BlogService{blogRepo: blogRepo}
}

// canRead reports whether the requester may read the blog.
// Public blogs are readable by anyone, private blogs only by their owner.
func canRead(blog *models.Blog, requesterID uint) bool {
	return blog.IsPublic || (requesterID != 0 && requesterID == blog.UserID)
}

// canWrite reports whether the requester may mutate the blog.
func canWrite(blog *models.Blog, requesterID uint) bool {
	return requesterID != 0 && requesterID == blog.UserID
}

// computeReadTime estimates reading time in minutes at 200 words per minute.
func computeReadTime(content string) int {
	words := len(strings.Fields(content))
	rt := int(math.Ceil(float64(words) / wordsPerMin))
	if rt < 1 {
		rt = 1
	}
	return rt
}

// normalizeTags lowercases and trims tags, dropping empties and duplicates.
func normalizeTags(tags []string) ([]string, error) {
	var out []string
	seen := map[string]struct{}{}
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if len(t) > maxTagLen {
			return nil, models.NewValidationError("Tags must be 30 characters or less")
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out, nil
}

func validateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return models.NewValidationError("Title is required")
	}
	if len(title) > maxTitleLen {
		return models.NewValidationError("Title too long (max 200 characters)")
	}
	return nil
}

func validateContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return models.NewValidationError("Content is required")
	}
	if len(content) < minContentLen {
		return models.NewValidationError("Content must be at least 10 characters")
	}
	return nil
}

func validateSummary(summary string) error {
	if len(summary) > maxSummaryLen {
		return models.NewValidationError("Summary too long (max 300 characters)")
	}
	return nil
}

func (s *BlogService) CreateBlog(ctx context.Context, in CreateBlogInput) (*models.Blog, error) {
	if in.UserID == 0 {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	if err := validateTitle(in.Title); err != nil {
		return nil, err
	}
	if err := validateContent(in.Content); err != nil {
		return nil, err
	}
	if err := validateSummary(in.Summary); err != nil {
		return nil, err
	}
	tags, err := normalizeTags(in.Tags)
	if err != nil {
		return nil, err
	}

	blog := &models.Blog{
		Title:    strings.TrimSpace(in.Title),
		Content:  in.Content,
		Summary:  strings.TrimSpace(in.Summary),
		Images:   in.Images,
		Tags:     tags,
		UserID:   in.UserID,
		IsPublic: in.IsPublic,
		ReadTime: computeReadTime(in.Content),
	}
	if err := s.blogRepo.Create(ctx, blog); err != nil {
		return nil, err
	}

	return s.blogRepo.GetByID(ctx, blog.ID, in.UserID)
}

// GetBlog loads a blog and enforces the read policy. A non-owner read of
// a public blog increments the view counter exactly once; owner reads
// never do.
func (s *BlogService) GetBlog(ctx context.Context, id uint, currentUserID uint) (*models.Blog, error) {
	blog, err := s.blogRepo.GetByID(ctx, id, currentUserID)
	if err != nil {
		return nil, err
	}

	if !canRead(blog, currentUserID) {
		if currentUserID == 0 {
			return nil, models.NewUnauthorizedError("Authentication required")
		}
		return nil, models.NewForbiddenError("This blog is private")
	}

	if blog.UserID != currentUserID {
		if err := s.blogRepo.IncrementViews(ctx, id); err != nil {
			return nil, err
		}
		blog.Views++
		observability.BlogViewsTotal.Inc()
	}

	return blog, nil
}

// ListBlogs returns a page of the public feed, optionally filtered by
// search text, tag, or author.
func (s *BlogService) ListBlogs(ctx context.Context, in ListBlogsInput) (*BlogPage, error) {
	page, limit := normalizePage(in.Page, in.Limit)
	filter := repository.BlogFilter{
		Search:        in.Search,
		Tag:           in.Tag,
		AuthorID:      in.AuthorID,
		PublicOnly:    true,
		Limit:         limit,
		Offset:        (page - 1) * limit,
		CurrentUserID: in.CurrentUserID,
	}

	// Cache only the unfiltered, anonymous, default-sized first page: it is
	// the hot path and the only shape every visitor shares. The limit check
	// keeps a custom-limit request from poisoning the shared entry.
	if in.CurrentUserID == 0 && in.Search == "" && in.Tag == "" && in.AuthorID == 0 &&
		page == 1 && limit == defaultPageSize {
		var cached BlogPage
		err := cache.Aside(ctx, cache.PublicFeedKey(), &cached, cache.PublicFeedTTL, func() error {
			blogs, total, fetchErr := s.blogRepo.List(ctx, filter)
			if fetchErr != nil {
				return fetchErr
			}
			cached = BlogPage{Blogs: blogs, Current: page, Pages: totalPages(total, limit), Total: total}
			return nil
		})
		if err != nil {
			return nil, err
		}
		return &cached, nil
	}

	blogs, total, err := s.blogRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &BlogPage{Blogs: blogs, Current: page, Pages: totalPages(total, limit), Total: total}, nil
}

// ListMyBlogs returns a page of the requester's own blogs, private included.
func (s *BlogService) ListMyBlogs(ctx context.Context, userID uint, pageNum, limit int) (*BlogPage, error) {
	if userID == 0 {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	page, limit := normalizePage(pageNum, limit)
	blogs, total, err := s.blogRepo.List(ctx, repository.BlogFilter{
		OwnerID:       userID,
		Limit:         limit,
		Offset:        (page - 1) * limit,
		CurrentUserID: userID,
	})
	if err != nil {
		return nil, err
	}
	return &BlogPage{Blogs: blogs, Current: page, Pages: totalPages(total, limit), Total: total}, nil
}

func (s *BlogService) UpdateBlog(ctx context.Context, in UpdateBlogInput) (*models.Blog, error) {
	blog, err := s.blogRepo.GetByID(ctx, in.BlogID, in.UserID)
	if err != nil {
		return nil, err
	}

	if !canWrite(blog, in.UserID) {
		return nil, models.NewForbiddenError("You can only update your own blogs")
	}

	if in.Title != nil {
		if err := validateTitle(*in.Title); err != nil {
			return nil, err
		}
		blog.Title = strings.TrimSpace(*in.Title)
	}
	if in.Content != nil {
		if err := validateContent(*in.Content); err != nil {
			return nil, err
		}
		blog.Content = *in.Content
		blog.ReadTime = computeReadTime(*in.Content)
	}
	if in.Summary != nil {
		if err := validateSummary(*in.Summary); err != nil {
			return nil, err
		}
		blog.Summary = strings.TrimSpace(*in.Summary)
	}
	if in.Images != nil {
		blog.Images = *in.Images
	}
	if in.Tags != nil {
		tags, err := normalizeTags(*in.Tags)
		if err != nil {
			return nil, err
		}
		blog.Tags = tags
	}
	if in.IsPublic != nil {
		blog.IsPublic = *in.IsPublic
	}

	if err := s.blogRepo.Update(ctx, blog); err != nil {
		return nil, err
	}
	return blog, nil
}

func (s *BlogService) DeleteBlog(ctx context.Context, userID, blogID uint) error {
	blog, err := s.blogRepo.GetByID(ctx, blogID, userID)
	if err != nil {
		return err
	}

	if !canWrite(blog, userID) {
		return models.NewForbiddenError("You can only delete your own blogs")
	}

	return s.blogRepo.Delete(ctx, blogID)
}

// ToggleLike flips the requester's like membership on the blog and
// returns the resulting count and state. Only public blogs and the
// owner's own blogs can be liked.
func (s *BlogService) ToggleLike(ctx context.Context, userID, blogID uint) (*LikeResult, error) {
	if userID == 0 {
		return nil, models.NewUnauthorizedError("Authentication required")
	}

	blog, err := s.blogRepo.GetByID(ctx, blogID, userID)
	if err != nil {
		return nil, err
	}
	if !canRead(blog, userID) {
		return nil, models.NewForbiddenError("This blog is private")
	}

	liked, err := s.blogRepo.IsLiked(ctx, userID, blogID)
	if err != nil {
		return nil, err
	}

	if liked {
		if err := s.blogRepo.Unlike(ctx, userID, blogID); err != nil {
			return nil, err
		}
		observability.LikeTogglesTotal.WithLabelValues("unliked").Inc()
	} else {
		if err := s.blogRepo.Like(ctx, userID, blogID); err != nil {
			return nil, err
		}
		observability.LikeTogglesTotal.WithLabelValues("liked").Inc()
	}

	count, err := s.blogRepo.CountLikes(ctx, blogID)
	if err != nil {
		return nil, err
	}
	return &LikeResult{Likes: count, Liked: !liked}, nil
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit
}

func totalPages(total int64, limit int) int {
	if total == 0 {
		return 0
	}
	return int(math.Ceil(float64(total) / float64(limit)))
}

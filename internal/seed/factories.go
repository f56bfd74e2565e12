// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"github.com/KarunyaReddyJ/My-Blog-App/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by seed presets and tests.
type Factory struct {
	db   *gorm.DB
	opts Options
	// synthetic ID counter when running in DryRun mode
	nextID uint
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{db: db, opts: opts, nextID: 1000}
}

var sampleTags = []string{
	"golang", "webdev", "devops", "databases", "cloud",
	"testing", "career", "opinion", "tutorial", "performance",
}

// CreateUser constructs and persists a sample `models.User`.
// Optional override functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	googleID := gofakeit.UUID()
	user := &models.User{
		GoogleID: &googleID,
		Email:    gofakeit.Email(),
		Name:     gofakeit.Name(),
		Bio:      gofakeit.Sentence(10),
		Avatar:   fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
	}

	for _, override := range overrides {
		override(user)
	}

	if f.opts.DryRun {
		f.nextID++
		user.ID = f.nextID
		log.Printf("[dry-run] CreateUser: %s <%s>", user.Name, user.Email)
		return user, nil
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// BuildBlog constructs a blog struct without persisting it. Useful for batching.
func (f *Factory) BuildBlog(user *models.User, overrides ...func(*models.Blog)) *models.Blog {
	content := gofakeit.Paragraph(4, 6, 12, "\n\n")
	blog := &models.Blog{
		Title:    gofakeit.Sentence(6),
		Content:  content,
		Summary:  gofakeit.Sentence(12),
		Tags:     pickTags(),
		UserID:   user.ID,
		IsPublic: gofakeit.Number(0, 9) < 8,
		ReadTime: readTimeFor(content),
		Images: models.StringSlice{
			fmt.Sprintf("https://picsum.photos/seed/%s/1200/630", gofakeit.UUID()),
		},
	}

	// realistic created_at spread
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	// #nosec G404: acceptable for seeding
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	daysBack := r.Intn(maxDays)
	hoursBack := r.Intn(24)
	blog.CreatedAt = time.Now().Add(-time.Duration(daysBack)*24*time.Hour - time.Duration(hoursBack)*time.Hour)

	for _, override := range overrides {
		override(blog)
	}
	return blog
}

// CreateBlog constructs and persists a sample `models.Blog` for the given user.
func (f *Factory) CreateBlog(user *models.User, overrides ...func(*models.Blog)) (*models.Blog, error) {
	blog := f.BuildBlog(user, overrides...)

	if f.opts.DryRun {
		f.nextID++
		blog.ID = f.nextID
		log.Printf("[dry-run] CreateBlog: user=%d public=%t title=%q", blog.UserID, blog.IsPublic, blog.Title)
		return blog, nil
	}

	if err := f.db.Create(blog).Error; err != nil {
		return nil, err
	}
	return blog, nil
}

// CreateBlogsBatch persists multiple blogs in a single DB call when possible.
func (f *Factory) CreateBlogsBatch(blogs []*models.Blog) error {
	if f.opts.DryRun {
		for _, b := range blogs {
			f.nextID++
			b.ID = f.nextID
		}
		log.Printf("[dry-run] CreateBlogsBatch: %d blogs (no DB write)", len(blogs))
		return nil
	}
	return f.db.Create(&blogs).Error
}

// CreateLike persists a like from `user` on `blog`.
func (f *Factory) CreateLike(user *models.User, blog *models.Blog) error {
	if f.opts.DryRun {
		log.Printf("[dry-run] CreateLike: user=%d blog=%d", user.ID, blog.ID)
		return nil
	}
	like := &models.BlogLike{
		UserID: user.ID,
		BlogID: blog.ID,
	}
	return f.db.Create(like).Error
}

func pickTags() models.StringSlice {
	n := gofakeit.Number(1, 3)
	tags := make(models.StringSlice, 0, n)
	seen := map[string]struct{}{}
	for len(tags) < n {
		t := sampleTags[gofakeit.Number(0, len(sampleTags)-1)]
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		tags = append(tags, t)
	}
	return tags
}

func readTimeFor(content string) int {
	words := len(strings.Fields(content))
	rt := (words + 199) / 200
	if rt < 1 {
		rt = 1
	}
	return rt
}

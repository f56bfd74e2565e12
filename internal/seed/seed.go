package seed

import (
	"log"

	"github.com/KarunyaReddyJ/My-Blog-App/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// Options controls how seeding behaves.
type Options struct {
	// DryRun logs what would be created without touching the database.
	DryRun bool
	// Users is the number of sample users to create.
	Users int
	// BlogsPerUser is the number of blogs created for each user.
	BlogsPerUser int
	// MaxDays bounds how far in the past created_at timestamps spread.
	MaxDays int
}

// DefaultOptions returns a small demo dataset configuration.
func DefaultOptions() Options {
	return Options{
		Users:        5,
		BlogsPerUser: 6,
		MaxDays:      90,
	}
}

// Run populates the database with sample users, blogs, and likes.
func Run(db *gorm.DB, opts Options) error {
	if opts.Users <= 0 {
		opts = DefaultOptions()
	}
	f := NewFactory(db, opts)

	users := make([]*models.User, 0, opts.Users)
	for i := 0; i < opts.Users; i++ {
		user, err := f.CreateUser()
		if err != nil {
			return err
		}
		users = append(users, user)
	}

	blogs := make([]*models.Blog, 0, opts.Users*opts.BlogsPerUser)
	for _, user := range users {
		for i := 0; i < opts.BlogsPerUser; i++ {
			blogs = append(blogs, f.BuildBlog(user))
		}
	}
	if err := f.CreateBlogsBatch(blogs); err != nil {
		return err
	}

	// Sprinkle likes from other users onto public blogs.
	for _, blog := range blogs {
		if !blog.IsPublic {
			continue
		}
		for _, user := range users {
			if user.ID == blog.UserID {
				continue
			}
			if gofakeit.Number(0, 2) == 0 {
				if err := f.CreateLike(user, blog); err != nil {
					return err
				}
			}
		}
	}

	log.Printf("Seeded %d users and %d blogs", len(users), len(blogs))
	return nil
}

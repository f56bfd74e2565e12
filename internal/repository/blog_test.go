package repository

import (
	"context"
	"regexp"
	"testing"

	"github.com/KarunyaReddyJ/My-Blog-App/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func TestBlogRepository_Create(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewBlogRepository(db)
	ctx := context.Background()

	blog := &models.Blog{Title: "Test Blog", Content: "Content long enough", UserID: 1}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "blogs"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	err := repo.Create(ctx, blog)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBlogRepository_GetByID(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewBlogRepository(db)
	ctx := context.Background()

	// detail subqueries land in the SELECT list
	mock.ExpectQuery(`SELECT blogs\.\*, \(SELECT COUNT\(\*\) FROM blog_likes WHERE blog_likes\.blog_id = blogs\.id\) as likes_count, EXISTS\(SELECT 1 FROM blog_likes WHERE blog_likes\.blog_id = blogs\.id AND blog_likes\.user_id = \$1\) as liked FROM "blogs"`).
		WithArgs(2, 1, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "user_id", "likes_count", "liked"}).
			AddRow(1, "Blog 1", 10, 5, true))

	// preload author - GORM preloads after main query
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE "users"."id" = $1`)).
		WithArgs(10).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(10, "author"))

	blog, err := repo.GetByID(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, "Blog 1", blog.Title)
	assert.Equal(t, 5, blog.LikesCount)
	assert.True(t, blog.Liked)
	assert.Equal(t, "author", blog.User.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBlogRepository_GetByID_NotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewBlogRepository(db)

	mock.ExpectQuery(`SELECT blogs\.\*`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetByID(context.Background(), 99, 0)
	require.Error(t, err)
	appErr, ok := err.(*models.AppError)
	require.True(t, ok)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}

func TestBlogRepository_Like_IsIdempotent(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewBlogRepository(db)
	ctx := context.Background()

	// conflict target keeps duplicate likes down to one row
	mock.ExpectExec(`(?s)INSERT INTO blog_likes.*ON CONFLICT \(user_id, blog_id\) DO NOTHING`).
		WithArgs(3, 1).
		WillReturnResult(sqlmock.NewResult(1, 1))

	assert.NoError(t, repo.Like(ctx, 3, 1))

	// second like hits the conflict path and affects zero rows
	mock.ExpectExec(`(?s)INSERT INTO blog_likes.*ON CONFLICT \(user_id, blog_id\) DO NOTHING`).
		WithArgs(3, 1).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, repo.Like(ctx, 3, 1))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBlogRepository_Unlike(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewBlogRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "blog_likes" WHERE user_id = $1 AND blog_id = $2`)).
		WithArgs(3, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	assert.NoError(t, repo.Unlike(context.Background(), 3, 1))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBlogRepository_IncrementViews(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewBlogRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "blogs" SET "views"=views + 1 WHERE id = $1`)).
		WithArgs(1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	assert.NoError(t, repo.IncrementViews(context.Background(), 1))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBlogRepository_Delete_RemovesLikesFirst(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewBlogRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "blog_likes" WHERE blog_id = $1`)).
		WithArgs(1).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "blogs" WHERE "blogs"."id" = $1`)).
		WithArgs(1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	assert.NoError(t, repo.Delete(context.Background(), 1))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBlogRepository_CountLikes(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewBlogRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "blog_likes" WHERE blog_id = $1`)).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	count, err := repo.CountLikes(context.Background(), 1)
	assert.NoError(t, err)
	assert.Equal(t, int64(4), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

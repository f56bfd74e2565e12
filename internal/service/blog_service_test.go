package service

import (
	"context"
	"strings"
	"testing"

	"github.com/KarunyaReddyJ/My-Blog-App/internal/cache"
	"github.com/KarunyaReddyJ/My-Blog-App/internal/models"
	"github.com/KarunyaReddyJ/My-Blog-App/internal/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockBlogRepository is a mock of the BlogRepository interface
type MockBlogRepository struct {
	mock.Mock
}

func (m *MockBlogRepository) Create(ctx context.Context, blog *models.Blog) error {
	args := m.Called(ctx, blog)
	return args.Error(0)
}

func (m *MockBlogRepository) GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Blog, error) {
	args := m.Called(ctx, id, currentUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Blog), args.Error(1)
}

func (m *MockBlogRepository) List(ctx context.Context, f repository.BlogFilter) ([]*models.Blog, int64, error) {
	args := m.Called(ctx, f)
	return args.Get(0).([]*models.Blog), args.Get(1).(int64), args.Error(2)
}

func (m *MockBlogRepository) Update(ctx context.Context, blog *models.Blog) error {
	args := m.Called(ctx, blog)
	return args.Error(0)
}

func (m *MockBlogRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockBlogRepository) IncrementViews(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockBlogRepository) IsLiked(ctx context.Context, userID, blogID uint) (bool, error) {
	args := m.Called(ctx, userID, blogID)
	return args.Bool(0), args.Error(1)
}

func (m *MockBlogRepository) Like(ctx context.Context, userID, blogID uint) error {
	args := m.Called(ctx, userID, blogID)
	return args.Error(0)
}

func (m *MockBlogRepository) Unlike(ctx context.Context, userID, blogID uint) error {
	args := m.Called(ctx, userID, blogID)
	return args.Error(0)
}

func (m *MockBlogRepository) CountLikes(ctx context.Context, blogID uint) (int64, error) {
	args := m.Called(ctx, blogID)
	return args.Get(0).(int64), args.Error(1)
}

func appErrCode(t *testing.T, err error) string {
	t.Helper()
	appErr, ok := err.(*models.AppError)
	if !ok {
		t.Fatalf("expected *models.AppError, got %T: %v", err, err)
	}
	return appErr.Code
}

func TestComputeReadTime(t *testing.T) {
	tests := []struct {
		name     string
		words    int
		expected int
	}{
		{name: "Empty content floors at one", words: 0, expected: 1},
		{name: "Short content floors at one", words: 50, expected: 1},
		{name: "Exactly one minute", words: 200, expected: 1},
		{name: "Rounds up", words: 201, expected: 2},
		{name: "Long read", words: 1000, expected: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := strings.TrimSpace(strings.Repeat("word ", tt.words))
			assert.Equal(t, tt.expected, computeReadTime(content))
		})
	}
}

func TestCreateBlogValidation(t *testing.T) {
	mockRepo := new(MockBlogRepository)
	svc := NewBlogService(mockRepo)
	ctx := context.Background()

	tests := []struct {
		name  string
		input CreateBlogInput
	}{
		{
			name:  "Missing title",
			input: CreateBlogInput{UserID: 1, Title: "", Content: "this is long enough"},
		},
		{
			name:  "Title too long",
			input: CreateBlogInput{UserID: 1, Title: strings.Repeat("a", 201), Content: "this is long enough"},
		},
		{
			name:  "Content too short",
			input: CreateBlogInput{UserID: 1, Title: "Hi", Content: "short"},
		},
		{
			name:  "Summary too long",
			input: CreateBlogInput{UserID: 1, Title: "Hi", Content: "this is long enough", Summary: strings.Repeat("s", 301)},
		},
		{
			name:  "Tag too long",
			input: CreateBlogInput{UserID: 1, Title: "Hi", Content: "this is long enough", Tags: []string{strings.Repeat("t", 31)}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateBlog(ctx, tt.input)
			assert.Error(t, err)
			assert.Equal(t, "VALIDATION_ERROR", appErrCode(t, err))
		})
	}
	mockRepo.AssertNotCalled(t, "Create")
}

func TestCreateBlogNormalizesTags(t *testing.T) {
	mockRepo := new(MockBlogRepository)
	svc := NewBlogService(mockRepo)

	var created *models.Blog
	mockRepo.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		created = args.Get(1).(*models.Blog)
		created.ID = 42
	}).Return(nil)
	mockRepo.On("GetByID", mock.Anything, uint(42), uint(1)).Return(&models.Blog{ID: 42}, nil)

	_, err := svc.CreateBlog(context.Background(), CreateBlogInput{
		UserID:  1,
		Title:   "Tagged",
		Content: "this is long enough",
		Tags:    []string{" GoLang ", "golang", "", "WebDev"},
	})
	assert.NoError(t, err)
	assert.Equal(t, models.StringSlice{"golang", "webdev"}, created.Tags)
	assert.Equal(t, 1, created.ReadTime)
}

func TestGetBlogVisibility(t *testing.T) {
	privateBlog := &models.Blog{ID: 1, UserID: 7, IsPublic: false}

	tests := []struct {
		name          string
		currentUserID uint
		expectedCode  string
	}{
		{name: "Anonymous gets unauthorized", currentUserID: 0, expectedCode: "UNAUTHORIZED"},
		{name: "Non-owner gets forbidden", currentUserID: 3, expectedCode: "FORBIDDEN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockBlogRepository)
			mockRepo.On("GetByID", mock.Anything, uint(1), tt.currentUserID).Return(privateBlog, nil)
			svc := NewBlogService(mockRepo)

			_, err := svc.GetBlog(context.Background(), 1, tt.currentUserID)
			assert.Error(t, err)
			assert.Equal(t, tt.expectedCode, appErrCode(t, err))
			mockRepo.AssertNotCalled(t, "IncrementViews")
		})
	}
}

func TestGetBlogOwnerReadsPrivate(t *testing.T) {
	mockRepo := new(MockBlogRepository)
	mockRepo.On("GetByID", mock.Anything, uint(1), uint(7)).
		Return(&models.Blog{ID: 1, UserID: 7, IsPublic: false, Views: 5}, nil)
	svc := NewBlogService(mockRepo)

	blog, err := svc.GetBlog(context.Background(), 1, 7)
	assert.NoError(t, err)
	assert.Equal(t, int64(5), blog.Views)
	mockRepo.AssertNotCalled(t, "IncrementViews")
}

func TestGetBlogCountsNonOwnerViews(t *testing.T) {
	mockRepo := new(MockBlogRepository)
	mockRepo.On("GetByID", mock.Anything, uint(1), uint(3)).
		Return(&models.Blog{ID: 1, UserID: 7, IsPublic: true, Views: 5}, nil)
	mockRepo.On("IncrementViews", mock.Anything, uint(1)).Return(nil)
	svc := NewBlogService(mockRepo)

	blog, err := svc.GetBlog(context.Background(), 1, 3)
	assert.NoError(t, err)
	assert.Equal(t, int64(6), blog.Views)
	mockRepo.AssertCalled(t, "IncrementViews", mock.Anything, uint(1))
}

func TestGetBlogAnonymousPublicRead(t *testing.T) {
	mockRepo := new(MockBlogRepository)
	mockRepo.On("GetByID", mock.Anything, uint(1), uint(0)).
		Return(&models.Blog{ID: 1, UserID: 7, IsPublic: true}, nil)
	mockRepo.On("IncrementViews", mock.Anything, uint(1)).Return(nil)
	svc := NewBlogService(mockRepo)

	blog, err := svc.GetBlog(context.Background(), 1, 0)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), blog.Views)
}

func TestUpdateBlogOwnershipEnforced(t *testing.T) {
	mockRepo := new(MockBlogRepository)
	mockRepo.On("GetByID", mock.Anything, uint(1), uint(3)).
		Return(&models.Blog{ID: 1, UserID: 7, IsPublic: true}, nil)
	svc := NewBlogService(mockRepo)

	title := "New title"
	_, err := svc.UpdateBlog(context.Background(), UpdateBlogInput{UserID: 3, BlogID: 1, Title: &title})
	assert.Error(t, err)
	assert.Equal(t, "FORBIDDEN", appErrCode(t, err))
	mockRepo.AssertNotCalled(t, "Update")
}

func TestUpdateBlogPartialFields(t *testing.T) {
	mockRepo := new(MockBlogRepository)
	mockRepo.On("GetByID", mock.Anything, uint(1), uint(7)).
		Return(&models.Blog{ID: 1, UserID: 7, Title: "Old", Content: "original content here", ReadTime: 1, IsPublic: false}, nil)
	mockRepo.On("Update", mock.Anything, mock.Anything).Return(nil)
	svc := NewBlogService(mockRepo)

	isPublic := true
	blog, err := svc.UpdateBlog(context.Background(), UpdateBlogInput{
		UserID:   7,
		BlogID:   1,
		IsPublic: &isPublic,
	})
	assert.NoError(t, err)
	assert.True(t, blog.IsPublic)
	assert.Equal(t, "Old", blog.Title)
}

func TestDeleteBlogOwnershipEnforced(t *testing.T) {
	mockRepo := new(MockBlogRepository)
	mockRepo.On("GetByID", mock.Anything, uint(1), uint(3)).
		Return(&models.Blog{ID: 1, UserID: 7}, nil)
	svc := NewBlogService(mockRepo)

	err := svc.DeleteBlog(context.Background(), 3, 1)
	assert.Error(t, err)
	assert.Equal(t, "FORBIDDEN", appErrCode(t, err))
	mockRepo.AssertNotCalled(t, "Delete")
}

func TestToggleLike(t *testing.T) {
	blog := &models.Blog{ID: 1, UserID: 7, IsPublic: true}

	t.Run("Like when not liked", func(t *testing.T) {
		mockRepo := new(MockBlogRepository)
		mockRepo.On("GetByID", mock.Anything, uint(1), uint(3)).Return(blog, nil)
		mockRepo.On("IsLiked", mock.Anything, uint(3), uint(1)).Return(false, nil)
		mockRepo.On("Like", mock.Anything, uint(3), uint(1)).Return(nil)
		mockRepo.On("CountLikes", mock.Anything, uint(1)).Return(int64(4), nil)
		svc := NewBlogService(mockRepo)

		result, err := svc.ToggleLike(context.Background(), 3, 1)
		assert.NoError(t, err)
		assert.True(t, result.Liked)
		assert.Equal(t, int64(4), result.Likes)
	})

	t.Run("Unlike when already liked", func(t *testing.T) {
		mockRepo := new(MockBlogRepository)
		mockRepo.On("GetByID", mock.Anything, uint(1), uint(3)).Return(blog, nil)
		mockRepo.On("IsLiked", mock.Anything, uint(3), uint(1)).Return(true, nil)
		mockRepo.On("Unlike", mock.Anything, uint(3), uint(1)).Return(nil)
		mockRepo.On("CountLikes", mock.Anything, uint(1)).Return(int64(3), nil)
		svc := NewBlogService(mockRepo)

		result, err := svc.ToggleLike(context.Background(), 3, 1)
		assert.NoError(t, err)
		assert.False(t, result.Liked)
		assert.Equal(t, int64(3), result.Likes)
	})

	t.Run("Private blog rejected for non-owner", func(t *testing.T) {
		mockRepo := new(MockBlogRepository)
		mockRepo.On("GetByID", mock.Anything, uint(1), uint(3)).
			Return(&models.Blog{ID: 1, UserID: 7, IsPublic: false}, nil)
		svc := NewBlogService(mockRepo)

		_, err := svc.ToggleLike(context.Background(), 3, 1)
		assert.Error(t, err)
		assert.Equal(t, "FORBIDDEN", appErrCode(t, err))
		mockRepo.AssertNotCalled(t, "Like")
	})
}

func TestListBlogsPagination(t *testing.T) {
	mockRepo := new(MockBlogRepository)
	mockRepo.On("List", mock.Anything, mock.MatchedBy(func(f repository.BlogFilter) bool {
		return f.PublicOnly && f.Limit == 9 && f.Offset == 9
	})).Return([]*models.Blog{{ID: 10}}, int64(19), nil)
	svc := NewBlogService(mockRepo)

	page, err := svc.ListBlogs(context.Background(), ListBlogsInput{Page: 2, CurrentUserID: 5})
	assert.NoError(t, err)
	assert.Equal(t, 2, page.Current)
	assert.Equal(t, 3, page.Pages)
	assert.Equal(t, int64(19), page.Total)
}

func withFeedCache(t *testing.T) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	cache.SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { cache.SetClient(nil) })
}

func TestListBlogsCachesDefaultFirstPage(t *testing.T) {
	withFeedCache(t)

	mockRepo := new(MockBlogRepository)
	mockRepo.On("List", mock.Anything, mock.MatchedBy(func(f repository.BlogFilter) bool {
		return f.PublicOnly && f.Limit == 9 && f.Offset == 0
	})).Return([]*models.Blog{{ID: 1}}, int64(1), nil).Once()
	svc := NewBlogService(mockRepo)

	first, err := svc.ListBlogs(context.Background(), ListBlogsInput{})
	require.NoError(t, err)
	second, err := svc.ListBlogs(context.Background(), ListBlogsInput{})
	require.NoError(t, err)

	assert.Equal(t, first.Total, second.Total)
	mockRepo.AssertNumberOfCalls(t, "List", 1)
}

func TestListBlogsCustomLimitDoesNotPoisonFeedCache(t *testing.T) {
	withFeedCache(t)

	wide := make([]*models.Blog, 100)
	for i := range wide {
		wide[i] = &models.Blog{ID: uint(i + 1)}
	}

	mockRepo := new(MockBlogRepository)
	mockRepo.On("List", mock.Anything, mock.MatchedBy(func(f repository.BlogFilter) bool {
		return f.Limit == 100
	})).Return(wide, int64(100), nil)
	mockRepo.On("List", mock.Anything, mock.MatchedBy(func(f repository.BlogFilter) bool {
		return f.Limit == 9
	})).Return(wide[:9], int64(100), nil)
	svc := NewBlogService(mockRepo)

	big, err := svc.ListBlogs(context.Background(), ListBlogsInput{Page: 1, Limit: 100})
	require.NoError(t, err)
	require.Len(t, big.Blogs, 100)

	page, err := svc.ListBlogs(context.Background(), ListBlogsInput{Page: 1})
	require.NoError(t, err)
	assert.Len(t, page.Blogs, 9)
	assert.Equal(t, 12, page.Pages)
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, totalPages(0, 9))
	assert.Equal(t, 1, totalPages(9, 9))
	assert.Equal(t, 2, totalPages(10, 9))
	assert.Equal(t, 3, totalPages(19, 9))
}

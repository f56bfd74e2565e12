package server

import (
	"github.com/KarunyaReddyJ/My-Blog-App/internal/models"
	"github.com/KarunyaReddyJ/My-Blog-App/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateBlogRequest represents the request body for creating a blog
type CreateBlogRequest struct {
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Summary  string   `json:"summary"`
	Images   []string `json:"images"`
	Tags     []string `json:"tags"`
	IsPublic bool     `json:"is_public"`
}

// UpdateBlogRequest represents the request body for updating a blog.
// Pointer fields are only applied when present in the payload.
type UpdateBlogRequest struct {
	Title    *string   `json:"title"`
	Content  *string   `json:"content"`
	Summary  *string   `json:"summary"`
	Images   *[]string `json:"images"`
	Tags     *[]string `json:"tags"`
	IsPublic *bool     `json:"is_public"`
}

func paginationEnvelope(page *service.BlogPage) fiber.Map {
	blogs := page.Blogs
	if blogs == nil {
		blogs = []*models.Blog{}
	}
	return fiber.Map{
		"blogs": blogs,
		"pagination": fiber.Map{
			"current": page.Current,
			"pages":   page.Pages,
			"total":   page.Total,
		},
	}
}

// GetBlogs returns a page of the public feed with optional search, tag,
// and author filters. Auth is optional; a valid token resolves the
// liked flag per blog.
func (s *Server) GetBlogs(c *fiber.Ctx) error {
	page, limit := parsePageQuery(c)
	userID, _ := s.optionalUserID(c)

	in := service.ListBlogsInput{
		Page:          page,
		Limit:         limit,
		Search:        c.Query("search"),
		Tag:           c.Query("tag"),
		AuthorID:      uint(c.QueryInt("author", 0)),
		CurrentUserID: userID,
	}

	result, err := s.blogService.ListBlogs(c.UserContext(), in)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(paginationEnvelope(result))
}

// GetMyBlogs returns the authenticated user's blogs, private included.
func (s *Server) GetMyBlogs(c *fiber.Ctx) error {
	page, limit := parsePageQuery(c)

	result, err := s.blogService.ListMyBlogs(c.UserContext(), currentUserID(c), page, limit)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(paginationEnvelope(result))
}

// GetBlog returns a single blog. Public blogs are readable by anyone;
// private blogs require the owner's token.
func (s *Server) GetBlog(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	userID, _ := s.optionalUserID(c)

	blog, err := s.blogService.GetBlog(c.UserContext(), id, userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"blog": blog})
}

// CreateBlog creates a blog owned by the authenticated user.
func (s *Server) CreateBlog(c *fiber.Ctx) error {
	var req CreateBlogRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	blog, err := s.blogService.CreateBlog(c.UserContext(), service.CreateBlogInput{
		UserID:   currentUserID(c),
		Title:    req.Title,
		Content:  req.Content,
		Summary:  req.Summary,
		Images:   req.Images,
		Tags:     req.Tags,
		IsPublic: req.IsPublic,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"blog": blog})
}

// UpdateBlog applies a partial update to a blog the caller owns.
func (s *Server) UpdateBlog(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	var req UpdateBlogRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	blog, err := s.blogService.UpdateBlog(c.UserContext(), service.UpdateBlogInput{
		UserID:   currentUserID(c),
		BlogID:   id,
		Title:    req.Title,
		Content:  req.Content,
		Summary:  req.Summary,
		Images:   req.Images,
		Tags:     req.Tags,
		IsPublic: req.IsPublic,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"blog": blog})
}

// DeleteBlog removes a blog the caller owns, likes included.
func (s *Server) DeleteBlog(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.blogService.DeleteBlog(c.UserContext(), currentUserID(c), id); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Blog deleted successfully"})
}

// ToggleLike flips the caller's like on a blog and returns the new state.
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	result, err := s.blogService.ToggleLike(c.UserContext(), currentUserID(c), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(result)
}

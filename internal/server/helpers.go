package server

import (
	"errors"
	"strconv"
	"strings"

	"github.com/KarunyaReddyJ/My-Blog-App/internal/models"
	"github.com/KarunyaReddyJ/My-Blog-App/internal/observability"

	"github.com/gofiber/fiber/v2"
)

const (
	defaultPageSize = 9
	maxPageSize     = 100
)

// errResponseWritten signals that the handler already wrote an error response.
var errResponseWritten = errors.New("response written")

// parsePageQuery reads page/limit query params with the feed defaults.
func parsePageQuery(c *fiber.Ctx) (page, limit int) {
	page = c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	limit = c.QueryInt("limit", defaultPageSize)
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit
}

// parseID parses a numeric path parameter, writing a 400 response on failure.
func parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(param), 10, 32)
	if err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+humanizeParam(param)))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

func humanizeParam(param string) string {
	switch param {
	case "id":
		return "ID"
	default:
		return strings.ReplaceAll(param, "_", " ")
	}
}

// respondServiceError maps a service error to its HTTP status and writes it.
// Server-side failures are also recorded on the active trace span.
func respondServiceError(c *fiber.Ctx, err error) error {
	status := models.StatusForError(err)
	if status >= fiber.StatusInternalServerError {
		observability.RecordErrorInContext(c.UserContext(), err)
	}
	return models.RespondWithError(c, status, err)
}

// currentUserID returns the authenticated user ID stored by AuthRequired.
func currentUserID(c *fiber.Ctx) uint {
	if id, ok := c.Locals("userID").(uint); ok {
		return id
	}
	return 0
}

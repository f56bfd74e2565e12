package server

import (
	"io"
	"mime/multipart"

	"github.com/KarunyaReddyJ/My-Blog-App/internal/models"
	"github.com/KarunyaReddyJ/My-Blog-App/internal/service"

	"github.com/gofiber/fiber/v2"
)

// UploadImage accepts a single multipart "image" file, normalizes it,
// and pushes it to the external image host.
func (s *Server) UploadImage(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("No file uploaded"))
	}

	in, err := readUpload(fileHeader)
	if err != nil {
		return respondServiceError(c, err)
	}
	in.UserID = currentUserID(c)

	uploaded, err := s.imageService.Upload(c.UserContext(), *in)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"image": uploaded})
}

// UploadImages accepts up to five multipart "images" files in one request.
func (s *Server) UploadImages(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid multipart form"))
	}

	files := form.File["images"]
	if len(files) == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("No files uploaded"))
	}

	inputs := make([]service.UploadImageInput, 0, len(files))
	for _, fh := range files {
		in, err := readUpload(fh)
		if err != nil {
			return respondServiceError(c, err)
		}
		inputs = append(inputs, *in)
	}

	uploaded, err := s.imageService.UploadMultiple(c.UserContext(), currentUserID(c), inputs)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"images": uploaded})
}

// DeleteImage removes a hosted image by its public ID.
func (s *Server) DeleteImage(c *fiber.Ctx) error {
	publicID := c.Params("id")

	if err := s.imageService.Delete(c.UserContext(), currentUserID(c), publicID); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Image deleted successfully"})
}

func readUpload(fh *multipart.FileHeader) (*service.UploadImageInput, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	return &service.UploadImageInput{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Content:     content,
	}, nil
}

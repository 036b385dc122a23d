package server

import (
	"io"
	"strconv"
	"strings"

	"github.com/huzidev/dev-forum-api/internal/middleware"
	"github.com/huzidev/dev-forum-api/internal/models"
	"github.com/huzidev/dev-forum-api/internal/service"

	"github.com/gofiber/fiber/v2"
)

// readUpload reads the multipart "file" field.
func readUpload(c *fiber.Ctx) (service.UploadImageInput, error) {
	file, err := c.FormFile("file")
	if err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("No file uploaded"))
		return service.UploadImageInput{}, errResponseWritten
	}
	if file.Size > service.MaxImageUploadBytes {
		_ = models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Image exceeds 10MB limit"))
		return service.UploadImageInput{}, errResponseWritten
	}

	src, err := file.Open()
	if err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Unable to read uploaded file"))
		return service.UploadImageInput{}, errResponseWritten
	}
	defer func() { _ = src.Close() }()

	content, err := io.ReadAll(src)
	if err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Unable to read uploaded file"))
		return service.UploadImageInput{}, errResponseWritten
	}

	return service.UploadImageInput{
		Filename:    file.Filename,
		ContentType: file.Header.Get(fiber.HeaderContentType),
		Content:     content,
	}, nil
}

// UploadImage handles POST /api/posts/upload-image
// @Summary Upload an image, optionally attaching it to a post
// @Tags images
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Image"
// @Param postId formData int false "Post to attach the image to"
// @Success 201 {object} service.UploadResult
// @Router /posts/upload-image [post]
func (s *Server) UploadImage(c *fiber.Ctx) error {
	in, err := readUpload(c)
	if err != nil {
		return nil
	}
	if raw := strings.TrimSpace(c.FormValue("postId")); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 0)
		if err != nil || id == 0 {
			return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Invalid post ID"))
		}
		postID := uint(id)
		in.PostID = &postID
	}

	result, err := s.images.Upload(c.UserContext(), middleware.CurrentUser(c), in)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

// ReplacePostImage handles PATCH /api/posts/:id/image
func (s *Server) ReplacePostImage(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	in, err := readUpload(c)
	if err != nil {
		return nil
	}
	result, err := s.images.Replace(c.UserContext(), middleware.CurrentUser(c), postID, in)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(result)
}

// AttachPostImage handles POST /api/posts/:id/image with an already hosted URL.
func (s *Server) AttachPostImage(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req struct {
		ImageURL string `json:"imageUrl"`
	}
	if err := bindJSON(c, &req); err != nil {
		return nil
	}
	attached, err := s.images.AttachURL(c.UserContext(), middleware.CurrentUser(c), postID, req.ImageURL)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(attached)
}

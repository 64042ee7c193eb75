package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/nestline/nestline/pkg/domain/post"
	"github.com/sirupsen/logrus"
)

type getPostImageHandler struct {
	logger *logrus.Logger
	repo   post.Repository
}

func NewGetPostImageHandler(logger *logrus.Logger, repo post.Repository) Handler {
	return &getPostImageHandler{
		logger: logger,
		repo:   repo,
	}
}

// Handle @Summary Fetch a post image
// @Description Returns the raw image bytes with the stored content type
// @Tags Posts
// @Param post_id path string true "Post ID"
// @Success 200 {string} binary "Image payload"
// @Failure 404 {object} map[string]interface{} "Post or image not found"
// @Router /api/posts/{post_id}/image [get]
func (h *getPostImageHandler) Handle(c *fiber.Ctx) error {
	postID := c.Params("post_id")

	img, err := h.repo.GetImage(c.Context(), postID)
	if err != nil {
		if errors.Is(err, post.ErrImageNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "image not found"})
		}
		h.logger.WithError(err).Error("failed to load post image")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load post image"})
	}

	c.Set(fiber.HeaderContentType, img.MimeType)
	return c.Status(fiber.StatusOK).Send(img.Data)
}

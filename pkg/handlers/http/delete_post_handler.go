package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/nestline/nestline/pkg/domain/post"
	"github.com/nestline/nestline/pkg/infra/broadcast"
	"github.com/sirupsen/logrus"
)

type deletePostHandler struct {
	logger *logrus.Logger
	repo   post.Repository
	hub    *broadcast.Hub
}

func NewDeletePostHandler(logger *logrus.Logger, repo post.Repository, hub *broadcast.Hub) Handler {
	return &deletePostHandler{
		logger: logger,
		repo:   repo,
		hub:    hub,
	}
}

// Handle @Summary Delete a post
// @Description Removes a post and its image payload
// @Tags Admin
// @Param Authorization header string true "Authorization token"
// @Param post_id path string true "Post ID"
// @Produce json
// @Success 200 {object} map[string]interface{} "Confirmation"
// @Failure 404 {object} map[string]interface{} "Post not found"
// @Router /api/admin/posts/{post_id} [delete]
func (h *deletePostHandler) Handle(c *fiber.Ctx) error {
	postID := c.Params("post_id")

	if err := h.repo.Delete(c.Context(), postID); err != nil {
		if errors.Is(err, post.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "post not found"})
		}
		h.logger.WithError(err).Error("failed to delete post")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to delete post"})
	}

	if err := h.repo.DeleteImage(c.Context(), postID); err != nil {
		h.logger.WithError(err).WithField("post_id", postID).Warn("failed to delete post image")
	}

	h.hub.Publish(broadcast.Event{Type: broadcast.EventPostDeleted, Data: fiber.Map{"postId": postID}})

	h.logger.WithField("post_id", postID).Info("post deleted")

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "post deleted"})
}

package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/nestline/nestline/pkg/domain/post"
	"github.com/sirupsen/logrus"
)

type listPostsHandler struct {
	logger *logrus.Logger
	repo   post.Repository
}

func NewListPostsHandler(logger *logrus.Logger, repo post.Repository) Handler {
	return &listPostsHandler{
		logger: logger,
		repo:   repo,
	}
}

// Handle @Summary List posts
// @Description Returns all posts, newest first
// @Tags Posts
// @Produce json
// @Param limit query int false "Maximum number of posts"
// @Success 200 {array} post.Post "Posts"
// @Router /api/posts [get]
func (h *listPostsHandler) Handle(c *fiber.Ctx) error {
	posts, err := h.repo.List(c.Context())
	if err != nil {
		h.logger.WithError(err).Error("failed to list posts")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to list posts"})
	}

	if limit := c.QueryInt("limit"); limit > 0 && limit < len(posts) {
		posts = posts[:limit]
	}

	return c.Status(fiber.StatusOK).JSON(posts)
}

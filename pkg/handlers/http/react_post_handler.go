package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/nestline/nestline/pkg/domain/post"
	"github.com/nestline/nestline/pkg/infra/broadcast"
	"github.com/sirupsen/logrus"
)

type reactPostRequest struct {
	Emoji string `json:"emoji"`
}

type reactPostHandler struct {
	logger *logrus.Logger
	repo   post.Repository
	hub    *broadcast.Hub
}

func NewReactPostHandler(logger *logrus.Logger, repo post.Repository, hub *broadcast.Hub) Handler {
	return &reactPostHandler{
		logger: logger,
		repo:   repo,
		hub:    hub,
	}
}

// Handle @Summary React to a post
// @Description Increments the counter for one of the recognized reaction symbols
// @Tags Posts
// @Accept json
// @Produce json
// @Param post_id path string true "Post ID"
// @Success 200 {object} post.Post "Updated post"
// @Failure 400 {object} map[string]interface{} "Unknown reaction symbol"
// @Failure 404 {object} map[string]interface{} "Post not found"
// @Router /api/posts/{post_id}/reactions [post]
func (h *reactPostHandler) Handle(c *fiber.Ctx) error {
	postID := c.Params("post_id")

	var req reactPostRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if !post.IsValidReaction(req.Emoji) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unknown reaction symbol"})
	}

	p, err := h.repo.Get(c.Context(), postID)
	if err != nil {
		if errors.Is(err, post.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "post not found"})
		}
		h.logger.WithError(err).Error("failed to load post")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load post"})
	}

	// Read-modify-write on a single key; concurrent reactions resolve as
	// last write wins.
	p.NormalizeReactions()
	p.Reactions[req.Emoji]++

	if err := h.repo.Save(c.Context(), p); err != nil {
		h.logger.WithError(err).Error("failed to store reaction")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to store reaction"})
	}

	h.hub.Publish(broadcast.Event{Type: broadcast.EventReactionAdded, Data: fiber.Map{
		"postId": p.ID,
		"emoji":  req.Emoji,
		"count":  p.Reactions[req.Emoji],
	}})

	return c.Status(fiber.StatusOK).JSON(p)
}

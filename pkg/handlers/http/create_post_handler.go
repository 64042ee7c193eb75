package http

import (
	"errors"
	"time"
	"unicode/utf8"

	"github.com/gofiber/fiber/v2"
	"github.com/nestline/nestline/pkg/domain/post"
	"github.com/nestline/nestline/pkg/infra/broadcast"
	"github.com/nestline/nestline/pkg/infra/images"
	"github.com/sirupsen/logrus"
)

const maxContentRunes = 500

type createPostRequest struct {
	DisplayName string `json:"displayName"`
	Handle      string `json:"handle"`
	Content     string `json:"content"`
	Image       string `json:"image"`
	ImageType   string `json:"imageType"`
}

type createPostHandler struct {
	logger       *logrus.Logger
	repo         post.Repository
	hub          *broadcast.Hub
	timeProvider func() time.Time
}

func NewCreatePostHandler(
	logger *logrus.Logger,
	repo post.Repository,
	hub *broadcast.Hub,
	timeProvider func() time.Time,
) Handler {
	if timeProvider == nil {
		timeProvider = time.Now
	}
	return &createPostHandler{
		logger:       logger,
		repo:         repo,
		hub:          hub,
		timeProvider: timeProvider,
	}
}

// Handle @Summary Create a post
// @Description Stores a new post, optionally with a base64 image payload
// @Tags Posts
// @Accept json
// @Produce json
// @Success 201 {object} post.Post "Created post"
// @Failure 400 {object} map[string]interface{} "Validation failure"
// @Router /api/posts [post]
func (h *createPostHandler) Handle(c *fiber.Ctx) error {
	var req createPostRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	if req.DisplayName == "" || req.Content == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "displayName and content are required"})
	}
	if utf8.RuneCountInString(req.Content) > maxContentRunes {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "content exceeds maximum length"})
	}

	var img *post.Image
	if req.Image != "" {
		decoded, err := images.DecodeBase64(req.Image, req.ImageType)
		if err != nil {
			h.logger.WithError(err).Debug("rejected post image payload")
			switch {
			case errors.Is(err, images.ErrTooLarge):
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "image exceeds maximum size"})
			case errors.Is(err, images.ErrUnsupported):
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unsupported image type"})
			default:
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "image payload could not be decoded"})
			}
		}
		img = decoded
	}

	p := post.New(req.DisplayName, req.Handle, req.Content, h.timeProvider())
	p.HasImage = img != nil

	// Image first: a post must never land advertising an image that was
	// not stored.
	if img != nil {
		if err := h.repo.SaveImage(c.Context(), p.ID, img); err != nil {
			h.logger.WithError(err).Error("failed to store post image")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to store post image"})
		}
	}
	if err := h.repo.Save(c.Context(), p); err != nil {
		h.logger.WithError(err).Error("failed to store post")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to store post"})
	}

	h.hub.Publish(broadcast.Event{Type: broadcast.EventPostCreated, Data: p})

	h.logger.WithFields(logrus.Fields{
		"post_id":   p.ID,
		"has_image": p.HasImage,
	}).Info("post created")

	return c.Status(fiber.StatusCreated).JSON(p)
}
